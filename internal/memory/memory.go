package memory

import (
	"context"
	"errors"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/metrics"
)

// ErrStopped is returned by Wait once the monitor has been stopped.
var ErrStopped = errors.New("memory monitor stopped")

// Config holds the monitor thresholds.
type Config struct {
	// LimitBytes overrides GOMEMLIMIT when non-zero
	LimitBytes int64
	// HighWaterMark is the usage ratio below which admission resumes
	HighWaterMark float64
	// CriticalWaterMark is the usage ratio at which admission pauses
	CriticalWaterMark float64
	CheckInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     2 * time.Second,
	}
}

// Monitor gates new conversions on heap usage. A Monitor without a limit
// never pauses.
type Monitor struct {
	config Config
	limit  int64

	mu      sync.Mutex
	current uint64
	paused  bool
	resume  chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a monitor. Without LimitBytes it falls back to
// GOMEMLIMIT, and without either it is disabled.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor disabled: no memory limit configured")
	}

	return &Monitor{
		config: config,
		limit:  limit,
		resume: make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

// Start begins sampling heap usage in the background.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop ends sampling and releases every waiter with ErrStopped.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			m.observe(stats.Alloc)
		case <-m.stop:
			return
		}
	}
}

// observe applies one heap sample to the admission state.
func (m *Monitor) observe(alloc uint64) {
	if m.limit == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = alloc
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case !m.paused && usage >= m.config.CriticalWaterMark:
		logging.Warn("Memory critical (%.1f%% of limit), holding new conversions", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPauses.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.HighWaterMark:
		logging.Info("Memory recovered (%.1f%% of limit), admitting conversions", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// Wait returns immediately unless admission is paused, in which case it
// blocks until memory recovers, ctx ends or the monitor stops.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resume := m.resume
	m.mu.Unlock()

	select {
	case <-resume:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stop:
		return ErrStopped
	}
}

// Paused reports whether admission is currently held back.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Usage returns the last sampled heap usage as a fraction of the limit,
// or 0 when the monitor is disabled.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.current) / float64(m.limit)
}
