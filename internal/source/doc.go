// Package source provides decoded video frames to the conversion pipeline.
//
// A [Source] yields frames in order with their 0-based index and reports a
// whole-number frame rate. Three implementations exist:
//
//   - [FFmpeg] probes a video with ffprobe and decodes it through an ffmpeg
//     rawvideo rgb24 pipe.
//   - [Sequence] reads a directory of numbered still images.
//   - [Slice] serves images already in memory.
//
// Sources that can discard a frame without building an image implement
// [Skipper]; the sampler uses it to avoid materializing frames it would drop.
package source
