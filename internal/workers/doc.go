/*
Package workers sizes the conversion concurrency limit of the HTTP service.

Each conversion runs a strictly sequential pipeline: one ffmpeg decoder, one
SSIM gate and one staging store. Running several at once is how the service
uses more than one core, so the number of parallel conversions is derived
from the CPUs actually available to the process.

runtime.NumCPU reports the host's CPUs even inside a CPU-limited container,
while GOMAXPROCS follows the cgroup limit (Go 1.19+). Count is based on
GOMAXPROCS:

	// at most MAX_CONVERSIONS, at most one per CPU
	slots := workers.ForCPU(cfg.MaxConversions)

# Environment Variable Override

CONVERSION_WORKERS overrides the calculation. The limit passed by the caller
still caps the override:

	env:
	- name: CONVERSION_WORKERS
	  value: "2"

All functions are safe for concurrent use.
*/
package workers
