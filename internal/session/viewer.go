package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// SessionFile represents a session log file on disk.
type SessionFile struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	NumEvents int
}

// ListSessions finds session log files in dir, newest first.
func ListSessions(dir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var files []SessionFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, "-session.jsonl") && !strings.HasSuffix(name, "-session.jsonl"+CompressedExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, name)
		events, _ := ReadEvents(path) //nolint:errcheck
		files = append(files, SessionFile{
			Path:      path,
			Name:      name,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			NumEvents: len(events),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// ReadEvents parses all events from a session log file, decompressing
// ".zst" files.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedExt) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening compressed session file: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var events []Event
	scanner := bufio.NewScanner(r)
	// Increase buffer for large lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue // skip malformed lines
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable session timeline to w.
//
//nolint:errcheck // display-only writes; errors are not actionable
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, " SESSION TIMELINE")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	start := events[0].Timestamp
	for _, ev := range events {
		elapsed := ev.Timestamp.Sub(start)
		ts := formatDuration(elapsed)

		switch ev.Type {
		case EventSessionStart:
			command, _ := ev.Data["command"].(string)   //nolint:errcheck
			provider, _ := ev.Data["provider"].(string) //nolint:errcheck
			model, _ := ev.Data["model"].(string)       //nolint:errcheck
			taskCount := jsonNumber(ev.Data["task_count"])
			fmt.Fprintf(w, "[%s] 🚀 Session started  command=%s  provider=%s  model=%s  tasks=%d\n", ts, command, provider, model, taskCount)

		case EventTaskStart:
			kind, _ := ev.Data["kind"].(string)   //nolint:errcheck
			label, _ := ev.Data["label"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ▶  Task %s %s\n", ts, kind, label)

		case EventGeneration:
			model, _ := ev.Data["model"].(string) //nolint:errcheck
			tokens := jsonNumber(ev.Data["total_tokens"])
			dur := jsonNumber(ev.Data["elapsed_ms"])
			fmt.Fprintf(w, "[%s]    ⇄ Generation  model=%s  tokens=%d  (%dms)\n", ts, model, tokens, dur)

		case EventExtractionFailed:
			n := jsonNumber(ev.Data["raw_length"])
			fmt.Fprintf(w, "[%s]    ✗ No structured document in response (%d bytes)\n", ts, n)

		case EventValidation:
			kept := jsonNumber(ev.Data["kept"])
			dropped := jsonNumber(ev.Data["dropped"])
			fmt.Fprintf(w, "[%s]    ✓ Validation  kept=%d  dropped=%d\n", ts, kept, dropped)

		case EventTaskComplete:
			kind, _ := ev.Data["kind"].(string)     //nolint:errcheck
			status, _ := ev.Data["status"].(string) //nolint:errcheck
			dur := jsonNumber(ev.Data["duration_ms"])
			icon := "✓"
			if status != "ok" {
				icon = "✗"
			}
			fmt.Fprintf(w, "[%s] %s  Task complete: %s [%s] (%dms)\n", ts, icon, kind, status, dur)

		case EventError:
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ❌ Error: %s\n", ts, msg)

		case EventSessionEnd:
			total := jsonNumber(ev.Data["total_tasks"])
			ok := jsonNumber(ev.Data["succeeded"])
			failed := jsonNumber(ev.Data["failed"])
			dur := jsonNumber(ev.Data["duration_ms"])
			fmt.Fprintf(w, "[%s] 🏁 Session complete  %d/%d succeeded  %d failed  (%dms)\n",
				ts, ok, total, failed, dur)

		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, ev.Data)
		}
	}
	fmt.Fprintln(w)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

// jsonNumber extracts a number from a JSON-decoded interface{} (float64 or json.Number).
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}
