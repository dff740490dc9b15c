package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt selects zstd compression when a log path ends with it.
const CompressedExt = ".zst"

// Logger defines the interface for session event logging.
type Logger interface {
	Log(event Event) error
	Close() error
}

// JSONLogger writes events as newline-delimited JSON (NDJSON).
type JSONLogger struct {
	mu   sync.Mutex
	file *os.File
	zw   *zstd.Encoder
	enc  *json.Encoder
	path string
}

// NewJSONLogger creates a logger that writes NDJSON to the given path.
// Parent directories are created automatically. A path ending in ".zst" is
// written as a zstd stream, which is complete only after Close.
func NewJSONLogger(path string) (*JSONLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating session log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if strings.HasSuffix(path, CompressedExt) {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}

	l := &JSONLogger{file: f, path: path}

	var w io.Writer = f
	if strings.HasSuffix(path, CompressedExt) {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		l.zw = zw
		w = zw
	}
	l.enc = json.NewEncoder(w)

	return l, nil
}

// Log writes a single event as one JSON line.
func (l *JSONLogger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(event)
}

// Close flushes and closes the underlying file.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.zw != nil {
		if err := l.zw.Close(); err != nil {
			_ = l.file.Close()
			return fmt.Errorf("flushing compressed session log: %w", err)
		}
	}
	return l.file.Close()
}

// Path returns the file path of the session log.
func (l *JSONLogger) Path() string {
	return l.path
}

// NopLogger discards all events. Useful as a default when logging is disabled.
type NopLogger struct{}

// Log is a no-op.
func (NopLogger) Log(Event) error { return nil }

// Close is a no-op.
func (NopLogger) Close() error { return nil }

// DefaultLogPath returns a timestamped session log path inside dir.
func DefaultLogPath(dir string, compress bool) string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	name := fmt.Sprintf("%s-session.jsonl", ts)
	if compress {
		name += CompressedExt
	}
	return filepath.Join(dir, name)
}
