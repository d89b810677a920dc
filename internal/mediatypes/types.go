package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the type of a media file.
type FileType string

const (
	// FileTypeImage represents a decodable still image.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video container ffmpeg can read.
	FileTypeVideo FileType = "video"
	// FileTypeDocument represents an output document.
	FileTypeDocument FileType = "document"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps file extensions to whether they are decodable frame formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",

	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	".pdf": "application/pdf",
}

// Ext returns the lowercase extension of path including the leading dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// GetFileType returns the FileType for a file name or path.
func GetFileType(path string) FileType {
	ext := Ext(path)
	switch {
	case ImageExtensions[ext]:
		return FileTypeImage
	case VideoExtensions[ext]:
		return FileTypeVideo
	case ext == ".pdf":
		return FileTypeDocument
	default:
		return FileTypeOther
	}
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsVideo reports whether path has a supported video extension.
func IsVideo(path string) bool {
	return GetFileType(path) == FileTypeVideo
}

// IsImage reports whether path has a decodable image extension.
func IsImage(path string) bool {
	return GetFileType(path) == FileTypeImage
}
