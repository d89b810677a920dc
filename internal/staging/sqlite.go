package staging

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"vid2pdf/internal/logging"
	"vid2pdf/internal/metrics"
)

const backendSQLite = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS frames (
	frame_index INTEGER PRIMARY KEY,
	timestamp_seconds INTEGER NOT NULL,
	image BLOB NOT NULL
);
`

// SQLite stages frames in a scratch database.
type SQLite struct {
	db   *sql.DB
	dir  string
	mu   sync.Mutex
	last int
	open bool
}

// NewSQLite creates a store in a new temporary directory under parentDir.
// An empty parentDir uses the system temporary directory.
func NewSQLite(ctx context.Context, parentDir string) (*SQLite, error) {
	dir, err := os.MkdirTemp(parentDir, "vid2pdf-stage-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	// Scratch data: durability is not needed.
	connStr := fmt.Sprintf("%s?_journal_mode=OFF&_synchronous=OFF&_temp_store=MEMORY",
		filepath.Join(dir, "frames.db"))

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open staging database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		closeErr := db.Close()
		_ = os.RemoveAll(dir)
		return nil, errors.Join(fmt.Errorf("failed to initialize staging schema: %w", err), closeErr)
	}

	logging.Debug("Staging store created at %s", dir)
	return &SQLite{db: db, dir: dir, last: -1, open: true}, nil
}

// Dir returns the directory holding the database.
func (s *SQLite) Dir() string {
	return s.dir
}

// Put stages a frame.
func (s *SQLite) Put(ctx context.Context, rec Record, img image.Image) (err error) {
	defer func() { observe(backendSQLite, "put", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrClosed
	}
	if rec.FrameIndex <= s.last {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, rec.FrameIndex, s.last)
	}

	data, err := encodePNG(img)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO frames (frame_index, timestamp_seconds, image) VALUES (?, ?, ?)",
		rec.FrameIndex, rec.TimestampSeconds, data,
	); err != nil {
		return fmt.Errorf("failed to stage frame %d: %w", rec.FrameIndex, err)
	}

	s.last = rec.FrameIndex
	metrics.StagedBytes.Add(float64(len(data)))
	return nil
}

// Records lists staged records by frame index.
func (s *SQLite) Records(ctx context.Context) (records []Record, err error) {
	defer func() { observe(backendSQLite, "records", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT frame_index, timestamp_seconds FROM frames ORDER BY frame_index")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged frames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.FrameIndex, &r.TimestampSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan staged frame: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list staged frames: %w", err)
	}
	return records, nil
}

// Get returns a staged frame's PNG bytes.
func (s *SQLite) Get(ctx context.Context, frameIndex int) (data []byte, err error) {
	defer func() { observe(backendSQLite, "get", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, ErrClosed
	}

	err = s.db.QueryRowContext(ctx, "SELECT image FROM frames WHERE frame_index = ?", frameIndex).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, frameIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read staged frame %d: %w", frameIndex, err)
	}
	return data, nil
}

// Close closes the database and removes its directory. It is safe to call
// more than once.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false

	err := errors.Join(s.db.Close(), os.RemoveAll(s.dir))
	if err != nil {
		return fmt.Errorf("failed to release staging store: %w", err)
	}
	logging.Debug("Staging store removed: %s", s.dir)
	return nil
}
