package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_upload_bytes",
			Help:    "Size of uploaded source videos in bytes",
			Buckets: prometheus.ExponentialBuckets(1<<20, 4, 8),
		},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_conversions_total",
			Help: "Total number of conversions by outcome",
		},
		[]string{"status"},
	)

	ConversionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_conversions_in_flight",
			Help: "Number of conversions currently running",
		},
	)

	ConversionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_conversion_duration_seconds",
			Help:    "End-to-end conversion duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"stage"}, // "select", "assemble"
	)
)

// Frame metrics
var (
	FramesDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_frames_decoded_total",
			Help: "Total number of frames decoded into images by source",
		},
		[]string{"source"}, // "ffmpeg", "sequence"
	)

	FramesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_frames_skipped_total",
			Help: "Total number of unsampled frames skipped without decoding",
		},
		[]string{"source"},
	)

	FramesSampled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_frames_sampled_total",
			Help: "Total number of frames forwarded by the sampler",
		},
	)

	FramesSelected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_frames_selected_total",
			Help: "Total number of frames committed by the selector",
		},
	)

	CandidatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_candidates_dropped_total",
			Help: "Total number of plateau candidates dropped inside the spacing window",
		},
	)

	SimilarityScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_similarity_score",
			Help:    "Distribution of structural similarity scores between consecutive samples",
			Buckets: []float64{-0.5, 0, 0.2, 0.4, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1},
		},
	)
)

// Staging and document metrics
var (
	StagedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_staged_bytes_total",
			Help: "Total bytes of encoded frames written to staging",
		},
	)

	StagingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_staging_operations_total",
			Help: "Total number of staging operations by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)

	DocumentPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_document_pages",
			Help:    "Number of pages per assembled document",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	DocumentBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_document_bytes",
			Help:    "Size of assembled documents in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
		},
	)

	OverlayColors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_overlay_colors_total",
			Help: "Timestamp overlay color decisions",
		},
		[]string{"color"}, // "light", "dark"
	)
)

// Work directory metrics
var (
	WorkDirBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_work_dir_bytes",
			Help: "Bytes currently used in the work directory (uploads and staging)",
		},
	)

	WorkDirEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_work_dir_entries",
			Help: "Number of files currently in the work directory",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_filesystem_retry_attempts_total",
			Help: "Total number of retried filesystem operations after a stale handle",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_memory_usage_ratio",
			Help: "Go heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_memory_admission_paused",
			Help: "1 while new conversions are held back because memory is critical",
		},
	)

	MemoryPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_memory_pauses_total",
			Help: "Number of times conversion admission was paused for memory",
		},
	)
)
