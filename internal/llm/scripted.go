package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// Responder produces the raw text for a request.
type Responder func(req Request) (string, error)

// ScriptedClient answers without any network traffic. It backs the "mock"
// provider used for demos and command tests.
type ScriptedClient struct {
	respond Responder

	mu    sync.Mutex
	calls []Request
}

// NewScriptedClient uses respond for every call; nil selects
// [CannedResponse].
func NewScriptedClient(respond Responder) *ScriptedClient {
	if respond == nil {
		respond = func(req Request) (string, error) { return CannedResponse(req), nil }
	}
	return &ScriptedClient{respond: respond}
}

func (c *ScriptedClient) Name() string { return string(ProviderMock) }

func (c *ScriptedClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Provider: string(ProviderMock), Err: err}
	}

	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()

	text, err := c.respond(req)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Model: string(ProviderMock), Provider: string(ProviderMock)}, nil
}

// Calls returns the requests received so far.
func (c *ScriptedClient) Calls() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.calls...)
}

var (
	inputTextPattern = regexp.MustCompile(`(?s)INPUT_TEXT:\n(.*?)\n\nTASK:`)
	lettersPattern   = regexp.MustCompile(`DETECTED_NEW_LETTERS: (.*)`)
	candidatePattern = regexp.MustCompile(`(?m)^- ([^:\s]+): (\S+) \(`)
)

// CannedResponse recognizes the task from the request and returns a
// well-formed answer for it. Transliteration echoes the input text.
func CannedResponse(req Request) string {
	switch {
	case strings.Contains(req.Instruction, "transliteration engine"):
		text := ""
		if m := inputTextPattern.FindStringSubmatch(req.Context); m != nil {
			text = m[1]
		}
		return mustJSON(map[string]any{
			"ok":          true,
			"output_text": text,
			"notes":       []string{"Türkçe metinde CTA fonetik iyileştirmeleri uygulandı."},
		})

	case strings.Contains(req.Instruction, "phonetic ambiguity risks"):
		var risks []map[string]any
		if m := lettersPattern.FindStringSubmatch(req.Context); m != nil {
			for _, letter := range strings.Split(m[1], ", ") {
				letter = strings.TrimSpace(letter)
				if letter == "" {
					continue
				}
				risks = append(risks, map[string]any{
					"letter":              letter,
					"possible_confusions": []string{"k", "h"},
					"languages":           []string{"tr", "az"},
					"examples":            []string{"qazaq"},
					"confidence":          0.7,
					"severity":            "medium",
					"context":             "Bağlama göre karışabilir.",
				})
			}
		}
		if risks == nil {
			risks = []map[string]any{}
		}
		return mustJSON(risks)

	case strings.Contains(req.Instruction, "align cognates"):
		var items []map[string]string
		for _, m := range candidatePattern.FindAllStringSubmatch(req.Context, -1) {
			items = append(items, map[string]string{"lang": m[1], "original": m[2], "cta": m[2]})
		}
		groups := []map[string]any{}
		if len(items) >= 2 {
			groups = append(groups, map[string]any{
				"similarity":    "high",
				"items":         items,
				"rationale":     "Düzenli ses denklikleri.",
				"confidence":    0.9,
				"root_analysis": "Ortak kök.",
			})
		}
		return mustJSON(map[string]any{"groups": groups})

	case strings.Contains(req.Instruction, "Phonetic Correspondence Effectiveness"):
		return mustJSON(map[string]any{
			"original_analysis": map[string]any{"upc": 25, "tpc": 120, "alc": 1.1},
			"cta_analysis":      map[string]any{"upc": 28, "tpc": 120, "alc": 1.05},
			"detailed_analysis": "CTA harfleri ses birimlerini daha iyi ayırıyor.",
		})
	}
	return "{}"
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
