package handlers

import (
	"net/http"

	"vid2pdf/internal/startup"
)

// ConverterInfo describes how uploads are converted when no query
// parameters override it.
type ConverterInfo struct {
	SamplingStride int     `json:"samplingStride"`
	SSIMThreshold  float64 `json:"ssimThreshold"`
	MaxConversions int     `json:"maxConversions"`
	MaxUploadBytes int64   `json:"maxUploadBytes"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	startup.BuildInfo
	Converter ConverterInfo `json:"converter"`
}

// GetVersion returns build information and the converter defaults.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, VersionResponse{
		BuildInfo: startup.GetBuildInfo(),
		Converter: ConverterInfo{
			SamplingStride: h.options.SamplingStride,
			SSIMThreshold:  h.options.SSIMThreshold,
			MaxConversions: cap(h.slots),
			MaxUploadBytes: h.maxUpload,
		},
	})
}
