/*
Package filesystem wraps the few filesystem reads vid2pdf performs on
caller-supplied media (image sequence directories and frames) with retry
logic for NFS stale file handle errors.

Only ESTALE (errno 116 on Linux) is retried; every other error is returned
immediately. Backoff doubles after each attempt up to MaxBackoff.

	f, err := filesystem.OpenWithRetry("/mnt/frames/frame_000001.png", filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

Retries, failures and stale handle observations are exported through the
vid2pdf_filesystem_* Prometheus counters.
*/
package filesystem
