// Command vid2pdf converts a video, or a directory of numbered frame images,
// into a PDF holding one timestamped page per visually distinct frame.
//
// Usage:
//
//	vid2pdf [flags] <video>
//	vid2pdf [flags] -frames <dir> -fps <n>
//
// Flags:
//
//	-stride N      sample every Nth frame (default SAMPLING_STRIDE or 3)
//	-threshold T   SSIM score below which a frame counts as changed
//	               (default SSIM_THRESHOLD or 0.8)
//	-o FILE        output path (default <input name>.pdf)
//	-frames DIR    read frames from DIR instead of decoding a video
//	-fps N         frame rate of the images in -frames
//	-stage KIND    staging store, "sqlite" (default) or "memory"
//
// Videos are decoded with ffmpeg, which must be on PATH. Selected frames
// are staged under WORK_DIR while the document is assembled. Progress is
// shown on stderr when it is a terminal.
package main
