package metrics

import (
	"io/fs"
	"path/filepath"
	"time"

	"vid2pdf/internal/logging"
)

// Collector periodically measures the work directory so that leaked uploads
// or staging directories show up on dashboards.
type Collector struct {
	workDir  string
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new work directory collector
func NewCollector(workDir string, interval time.Duration) *Collector {
	return &Collector{
		workDir:  workDir,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	size, entries, err := DirUsage(c.workDir)
	if err != nil {
		logging.Debug("Work dir usage collection failed: %v", err)
		return
	}

	WorkDirBytes.Set(float64(size))
	WorkDirEntries.Set(float64(entries))

	logging.Debug("Metrics collected: work_dir_bytes=%d, work_dir_entries=%d", size, entries)
}

// DirUsage returns the total size and number of regular files below root.
// Entries that disappear during the walk are ignored.
func DirUsage(root string) (int64, int, error) {
	var size int64
	var entries int

	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size += info.Size()
		entries++
		return nil
	})

	return size, entries, err
}
