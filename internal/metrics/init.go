package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "decode_error", "empty_stream", "extraction_error",
		"assembly_error", "staging_error", "canceled", "error"} {
		ConversionsTotal.WithLabelValues(status)
	}

	for _, stage := range []string{"select", "assemble"} {
		StageDuration.WithLabelValues(stage)
	}

	for _, backend := range []string{"sqlite", "memory"} {
		for _, op := range []string{"put", "get", "records"} {
			StagingOperations.WithLabelValues(backend, op, "success")
			StagingOperations.WithLabelValues(backend, op, "error")
		}
	}

	for _, src := range []string{"ffmpeg", "sequence"} {
		FramesDecoded.WithLabelValues(src)
		FramesSkipped.WithLabelValues(src)
	}

	OverlayColors.WithLabelValues("light")
	OverlayColors.WithLabelValues("dark")

	for _, op := range []string{"open", "readdir"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
