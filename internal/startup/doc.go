// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging for the vid2pdf service.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]
// (or quietly via [FromEnv]):
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - WORK_DIR: Root for uploads and staging stores (default: $TMPDIR/vid2pdf)
//   - SAMPLING_STRIDE: Score every Nth decoded frame (default: 3)
//   - SSIM_THRESHOLD: Scores below this count as a change (default: 0.8)
//   - MAX_UPLOAD_MB: Largest accepted upload (default: 2048)
//   - MAX_CONVERSIONS: Upper bound on parallel conversions (default: 4)
//   - LOG_HTTP_HEALTH: Log health check requests (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - CONVERSION_WORKERS: Pin the parallel conversion count (see package workers)
//
// Invalid numbers fall back to their defaults with a warning; values that
// parse but are out of range fail [Config.Validate].
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X vid2pdf/internal/startup.Version=1.2.0"
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogConverterInit(slots)
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup
