// Package main runs the vid2pdf conversion service.
//
// The service accepts a video upload, keeps only the frames that differ
// visibly from their predecessors and answers with a PDF of those frames,
// each page stamped with its position in the video.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads environment variables and prepares the
//     work, upload and staging directories
//  2. Memory Configuration: derives GOMEMLIMIT from MEMORY_LIMIT and starts
//     the memory monitor that holds back new conversions under pressure
//  3. Converter Initialization: sizes the conversion slots from GOMAXPROCS
//     and checks for ffmpeg and ffprobe
//  4. HTTP Server Setup: routes, logging, metrics and compression middleware
//  5. Graceful Shutdown: on SIGINT/SIGTERM running conversions get five
//     minutes to finish
//
// # HTTP Servers
//
//  1. Main Server (default port 8080):
//     - POST /api/convert: multipart upload in the "video" field, optional
//       stride and threshold query parameters
//     - /health, /healthz, /livez, /readyz, /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Environment Variables
//
//   - PORT, METRICS_PORT, METRICS_ENABLED
//   - WORK_DIR: uploads and staging stores (default $TMPDIR/vid2pdf)
//   - SAMPLING_STRIDE: sample every Nth frame (default 3)
//   - SSIM_THRESHOLD: score below which a frame counts as changed (default 0.8)
//   - MAX_UPLOAD_MB: largest accepted upload (default 2048)
//   - MAX_CONVERSIONS: upper bound on parallel conversions (default 4)
//   - CONVERSION_WORKERS: pins the parallel conversion count
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT
//   - LOG_LEVEL, LOG_HTTP_HEALTH
//
// # Build Requirements
//
// CGO is required for SQLite staging. ffmpeg and ffprobe must be on PATH at
// runtime. Build information is injected with -ldflags:
//
//	go build -ldflags "-X vid2pdf/internal/startup.Version=1.0.0" -o vid2pdf-server .
//
// The command line converter lives in [vid2pdf/cmd/vid2pdf].
package main
