package eventlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/domain"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

var errClosed = errors.New("event log is closed")

// logFile is the subset of *os.File the repository writes through.
type logFile interface {
	io.Writer
	Sync() error
	Truncate(size int64) error
	Close() error
}

// Repository implements domain.EventLogRepository on a single CSV file.
// The file is opened once in append mode and every append is serialized by mu.
type Repository struct {
	path   string
	fsync  bool
	logger  *slog.Logger
	metrics *metrics.IngestMetrics

	mu     sync.Mutex
	file   logFile
	size   int64 // bytes of committed records
	failed error // set when a partial record could not be rolled back
	buf    bytes.Buffer
	enc    *csv.Writer
}

// NewRepository opens (or creates) the log at path. Existing content is kept.
// With fsync enabled every append is synced to stable storage before it returns.
// m may be nil.
func NewRepository(path string, fsync bool, m *metrics.IngestMetrics, logger *slog.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create event log directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat event log %s: %w", path, err)
	}

	r := &Repository{
		path:   path,
		fsync:  fsync,
		logger:  logger.With("component", "eventlog_repository"),
		metrics: m,
		file:    f,
		size:    stat.Size(),
	}
	r.enc = csv.NewWriter(&r.buf)
	r.logger.Info("Opened event log", "path", path, "size", r.size, "fsync", fsync)
	return r, nil
}

// Append encodes record as one CSV line and appends it to the log.
func (r *Repository) Append(ctx context.Context, record domain.EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, errClosed)
	}
	if r.failed != nil {
		return fmt.Errorf("%w: event log holds an unrecovered partial record: %w", domain.ErrWriteFailure, r.failed)
	}
	// Requests abandoned while queued on the lock are never written.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}

	r.buf.Reset()
	if err := r.enc.Write(record.Fields()); err != nil {
		return fmt.Errorf("%w: failed to encode record: %w", domain.ErrWriteFailure, err)
	}
	r.enc.Flush()
	if err := r.enc.Error(); err != nil {
		return fmt.Errorf("%w: failed to encode record: %w", domain.ErrWriteFailure, err)
	}

	n, err := r.file.Write(r.buf.Bytes())
	if err != nil {
		r.rollback(n)
		return fmt.Errorf("%w: failed to write to event log: %w", domain.ErrWriteFailure, err)
	}
	if r.fsync {
		if err := r.file.Sync(); err != nil {
			r.rollback(n)
			return fmt.Errorf("%w: failed to sync event log: %w", domain.ErrWriteFailure, err)
		}
	}

	r.size += int64(n)
	if r.metrics != nil {
		r.metrics.AppendedBytes.Add(float64(n))
	}
	return nil
}

// rollback cuts the file back to the last committed record after a failed append.
// If that fails the repository refuses further appends, since they would land
// behind the fragment.
func (r *Repository) rollback(written int) {
	if written == 0 {
		return
	}
	if err := r.file.Truncate(r.size); err != nil {
		r.failed = err
		r.logger.Error("Failed to roll back partial record", "path", r.path, "size", r.size, "error", err)
		return
	}
	r.logger.Warn("Rolled back partial record", "path", r.path, "bytes", written)
}

// Path returns the location of the log file.
func (r *Repository) Path() string {
	return r.path
}

// Close ensures the log file is synced and closed.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	syncErr := r.file.Sync()
	closeErr := r.file.Close()
	r.file = nil
	return errors.Join(syncErr, closeErr)
}

// ReadAll parses every record currently in the log at path.
func ReadAll(path string) ([]domain.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses CSV event records from rd. Field values come back byte for
// byte as they were appended.
func Decode(rd io.Reader) ([]domain.EventRecord, error) {
	dec := newRecordDecoder(rd)

	var records []domain.EventRecord
	for {
		fields, err := dec.read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("failed to parse event log: %w", err)
		}
		rec, err := domain.ParseEventRecord(fields)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
