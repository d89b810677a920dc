// Package mediatypes classifies files by extension for vid2pdf.
//
// Two places need it: the HTTP service rejects uploads that are not videos
// before spending a decoder on them, and the image sequence source picks the
// frame files out of a directory. Only formats that have a registered Go
// decoder count as images, so anything GetFileType reports as an image can be
// decoded by the sequence source.
//
//	mediatypes.GetFileType("talk.MP4")     // FileTypeVideo
//	mediatypes.GetFileType("frame_01.webp") // FileTypeImage
//	mediatypes.GetMimeType(".pdf")          // application/pdf
package mediatypes
