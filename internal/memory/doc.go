// Package memory keeps conversions inside the container's memory budget.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from the MEMORY_LIMIT variable that
// the Kubernetes Downward API provides, keeping MEMORY_RATIO (default 0.75)
// for the Go heap and leaving the rest for ffmpeg and SQLite.
//
// [Monitor] samples heap usage and pauses admission of new conversions
// once usage crosses the critical mark. Admission resumes when usage falls
// back below the high mark. Running conversions are never interrupted.
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	if err := monitor.Wait(ctx); err != nil {
//	    return err
//	}
package memory
