// Package metrics provides Prometheus instrumentation for vid2pdf.
//
// All metrics are prefixed with "vid2pdf_" and registered with promauto on
// the default registry. To expose them, mount promhttp.Handler() (the service
// does this on the metrics port).
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//   - UploadBytes: size of uploaded source videos
//
// ## Conversion Metrics
//
//   - ConversionsTotal: conversions by outcome (success, decode_error, empty_stream, ...)
//   - ConversionsInFlight, ConversionDuration
//   - StageDuration: per stage ("select", "assemble")
//
// ## Frame Metrics
//
//   - FramesSampled, FramesSelected, CandidatesDropped
//   - SimilarityScore: SSIM scores between consecutive samples
//
// ## Staging and Document Metrics
//
//   - StagedBytes, StagingOperations
//   - DocumentPages, DocumentBytes, OverlayColors
//
// ## Work Directory Metrics
//
//   - WorkDirBytes, WorkDirEntries: refreshed by Collector
//
// ## Memory Metrics
//
//   - MemoryUsageRatio, MemoryPaused, MemoryPauses: maintained by the memory monitor
//
// ## Filesystem Metrics
//
//   - FilesystemRetryAttempts, FilesystemRetryFailures, FilesystemStaleErrors
//
// Call InitializeMetrics once at startup so labelled series exist before the
// first conversion.
package metrics
