package extract

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\r?\\n?(.*?)```")

	objectArrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*(?:,\s*\{.*?\}\s*)*\]`)
	nestedObject       = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// knownPrefixes are labels models like to put in front of their output.
var knownPrefixes = []string{"OUTPUT_TEXT:", "OUTPUT:", "JSON:"}

// Extract locates the structured document in raw. Strategies run from the
// most to the least specific and the first successful parse wins:
//
//  1. keep only the interior of a ``` fence (optionally tagged json)
//  2. drop a leading OUTPUT:/OUTPUT_TEXT: label
//  3. line scan from the first line starting with '{' until braces balance
//  4. the whole remaining content as an array or object
//  5. the first non-greedy [...] span, then the first non-greedy {...} span,
//     in the stripped content and then in raw
//  6. an array-of-objects pattern, then an object with one level of nesting
//  7. a string-aware bracket matcher tried from every opening bracket
//
// When nothing parses an *ExtractionError carrying raw is returned.
func Extract(raw string) (Document, error) {
	content := strings.TrimSpace(raw)
	content = stripFence(content)
	content = stripPrefix(content)

	strategies := []struct {
		name string
		fn   func() (Document, bool)
	}{
		{"line-scan", func() (Document, bool) { return scanLines(content) }},
		{"whole", func() (Document, bool) { return parseWhole(content) }},
		{"first-span", func() (Document, bool) { return firstSpan(content, raw) }},
		{"pattern", func() (Document, bool) { return patternSpan(content, raw) }},
		{"balanced", func() (Document, bool) { return balancedScan(raw) }},
	}

	for _, s := range strategies {
		if doc, ok := s.fn(); ok {
			slog.Debug("Extracted document", "strategy", s.name, "kind", doc.Kind())
			return doc, nil
		}
	}

	return Document{}, &ExtractionError{Raw: raw}
}

func stripFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

func stripPrefix(s string) string {
	for _, p := range knownPrefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}

// scanLines collects lines from the first one starting with '{' until a line
// ends with '}' at a point where the running close count has caught up with
// the open count.
func scanLines(content string) (Document, bool) {
	var buf []string
	opens, closes := 0, 0
	started := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !started && !strings.HasPrefix(line, "{") {
			continue
		}
		started = true
		buf = append(buf, line)
		opens += strings.Count(line, "{")
		closes += strings.Count(line, "}")

		if strings.HasSuffix(line, "}") && opens <= closes {
			return parse(strings.Join(buf, "\n"), KindObject)
		}
	}

	return Document{}, false
}

func parseWhole(content string) (Document, bool) {
	switch {
	case strings.HasPrefix(content, "[") && strings.HasSuffix(content, "]"):
		return parse(content, KindArray)
	case strings.HasPrefix(content, "{") && strings.HasSuffix(content, "}"):
		return parse(content, KindObject)
	}
	return Document{}, false
}

// firstSpan takes the first opening bracket and extends the span to each
// later closing bracket in turn, so the shortest span that parses wins.
func firstSpan(sources ...string) (Document, bool) {
	for _, src := range sources {
		if doc, ok := shortestSpan(src, '[', ']', KindArray); ok {
			return doc, true
		}
		if doc, ok := shortestSpan(src, '{', '}', KindObject); ok {
			return doc, true
		}
	}
	return Document{}, false
}

func shortestSpan(src string, open, close byte, want Kind) (Document, bool) {
	start := strings.IndexByte(src, open)
	if start < 0 {
		return Document{}, false
	}
	for end := start + 1; end < len(src); end++ {
		if src[end] != close {
			continue
		}
		if doc, ok := parse(src[start:end+1], want); ok {
			return doc, true
		}
	}
	return Document{}, false
}

func patternSpan(sources ...string) (Document, bool) {
	for _, src := range sources {
		if m := objectArrayPattern.FindString(src); m != "" {
			if doc, ok := parse(m, KindArray); ok {
				return doc, true
			}
		}
		if m := nestedObject.FindString(src); m != "" {
			if doc, ok := parse(m, KindObject); ok {
				return doc, true
			}
		}
	}
	return Document{}, false
}

// balancedScan tries every '{' and '[' in input as the start of a document
// and parses the span up to its matching bracket.
func balancedScan(input string) (Document, bool) {
	for i := 0; i < len(input); i++ {
		var want Kind
		switch input[i] {
		case '{':
			want = KindObject
		case '[':
			want = KindArray
		default:
			continue
		}

		end, ok := matchBracket(input, i)
		if !ok {
			continue
		}
		if doc, ok := parse(input[i:end+1], want); ok {
			return doc, true
		}
	}
	return Document{}, false
}

// matchBracket returns the index of the bracket closing the one at start,
// ignoring brackets inside JSON strings.
func matchBracket(input string, start int) (int, bool) {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(input); i++ {
		ch := input[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
