package session

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventValidation, ValidationData("risk", 3, 1))

	if ev.Type != EventValidation {
		t.Errorf("Type = %q, want %q", ev.Type, EventValidation)
	}
	if ev.Data["kept"] != 3 || ev.Data["dropped"] != 1 {
		t.Errorf("Data = %v", ev.Data)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestEventJSON(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	ev := Event{
		Timestamp: ts,
		Type:      EventTaskStart,
		Data:      TaskStartData("cognate", "words.txt"),
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Type != EventTaskStart {
		t.Errorf("decoded.Type = %q, want %q", decoded.Type, EventTaskStart)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("decoded.Timestamp = %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Data["kind"] != "cognate" {
		t.Errorf("kind = %v, want %q", decoded.Data["kind"], "cognate")
	}
}

func TestExtractionFailedDataTruncates(t *testing.T) {
	raw := strings.Repeat("ə", 800)
	d := ExtractionFailedData("risk", raw)
	if d["raw_length"] != len(raw) {
		t.Errorf("raw_length = %v, want %d", d["raw_length"], len(raw))
	}
	preview, _ := d["raw_response"].(string)
	if n := len([]rune(preview)); n != 500 {
		t.Errorf("preview has %d runes, want 500", n)
	}
}

func TestErrorData(t *testing.T) {
	d := ErrorData("timeout exceeded", map[string]any{"kind": "risk"})
	if d["message"] != "timeout exceeded" {
		t.Errorf("message = %v", d["message"])
	}
	if d["kind"] != "risk" {
		t.Errorf("kind = %v", d["kind"])
	}
}

func sampleEvents() []Event {
	return []Event{
		NewEvent(EventSessionStart, SessionStartData("risk", "openai", "gpt-4o", 1)),
		NewEvent(EventTaskStart, TaskStartData("risk", "")),
		NewEvent(EventGeneration, GenerationData("risk", "openai", "gpt-4o", 120, 900)),
		NewEvent(EventValidation, ValidationData("risk", 2, 0)),
		NewEvent(EventTaskComplete, TaskCompleteData("risk", "", "ok", 2, 1000)),
		NewEvent(EventSessionEnd, SessionCompleteData(1, 1, 0, 1000)),
	}
}

func TestJSONLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-session.jsonl")

	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}

	for _, ev := range sampleEvents() {
		if err := logger.Log(ev); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}

	var first Event
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("Unmarshal line 0: %v", err)
	}
	if first.Type != EventSessionStart {
		t.Errorf("first event type = %q, want %q", first.Type, EventSessionStart)
	}
}

func TestCompressedLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-session.jsonl.zst")

	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}
	for _, ev := range sampleEvents() {
		if err := logger.Log(ev); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.Contains(raw, []byte("session_start")) {
		t.Error("compressed log should not contain plain text")
	}

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}
	if events[2].Type != EventGeneration {
		t.Errorf("events[2].Type = %q", events[2].Type)
	}
}

func TestJSONLoggerPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "test.jsonl")

	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLogger with subdirectory: %v", err)
	}
	defer logger.Close() //nolint:errcheck

	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	if err := logger.Log(NewEvent(EventSessionStart, nil)); err != nil {
		t.Errorf("NopLogger.Log should not error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NopLogger.Close should not error: %v", err)
	}
}

func TestDefaultLogPath(t *testing.T) {
	p := DefaultLogPath("/tmp/sessions", false)
	if filepath.Dir(p) != "/tmp/sessions" {
		t.Errorf("dir = %q, want /tmp/sessions", filepath.Dir(p))
	}
	if ext := filepath.Ext(p); ext != ".jsonl" {
		t.Errorf("ext = %q, want .jsonl", ext)
	}

	if !strings.HasSuffix(DefaultLogPath("/tmp/sessions", true), "-session.jsonl.zst") {
		t.Error("compressed path should end with -session.jsonl.zst")
	}
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"20250115T100000Z-session.jsonl",
		"20250116T100000Z-session.jsonl",
		"not-a-session.txt",
	} {
		os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644) //nolint:errcheck
	}

	logger, err := NewJSONLogger(filepath.Join(dir, "20250117T100000Z-session.jsonl.zst"))
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}
	logger.Log(NewEvent(EventSessionStart, nil)) //nolint:errcheck
	logger.Close()                               //nolint:errcheck

	files, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
}

func TestListSessionsNoDir(t *testing.T) {
	_, err := ListSessions("/nonexistent/dir")
	if err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestReadEventsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-session.jsonl")

	content := `{"timestamp":"2025-01-15T10:00:00Z","type":"session_start","data":{}}
not valid json
{"timestamp":"2025-01-15T10:00:01Z","type":"session_complete","data":{}}
`
	os.WriteFile(path, []byte(content), 0644) //nolint:errcheck

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestRenderTimeline(t *testing.T) {
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, Type: EventSessionStart, Data: SessionStartData("batch", "openai", "gpt-4o", 2)},
		{Timestamp: base.Add(100 * time.Millisecond), Type: EventTaskStart, Data: TaskStartData("effectiveness", "corpus-a")},
		{Timestamp: base.Add(200 * time.Millisecond), Type: EventExtractionFailed, Data: ExtractionFailedData("effectiveness", "no json here")},
		{Timestamp: base.Add(300 * time.Millisecond), Type: EventTaskComplete, Data: TaskCompleteData("effectiveness", "corpus-a", "extraction", 0, 200)},
		{Timestamp: base.Add(400 * time.Millisecond), Type: EventError, Data: ErrorData("something broke", nil)},
		{Timestamp: base.Add(500 * time.Millisecond), Type: EventSessionEnd, Data: SessionCompleteData(2, 1, 1, 500)},
	}

	var buf bytes.Buffer
	RenderTimeline(&buf, events)

	output := buf.String()
	for _, want := range []string{"SESSION TIMELINE", "corpus-a", "gpt-4o", "something broke", "No structured document", "1/2 succeeded"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q", want)
		}
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTimeline(&buf, nil)
	if !bytes.Contains(buf.Bytes(), []byte("No events found.")) {
		t.Error("empty events should print 'No events found.'")
	}
}
