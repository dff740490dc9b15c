package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/resultstore"
)

// ReportVersion is written into JSON exports.
const ReportVersion = "1.0"

// Format selects an export.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every export format.
var Formats = []Format{FormatMarkdown, FormatHTML, FormatCSV, FormatJSON}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q (supported: md, html, csv, json)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Write renders snap in format f.
func Write(w io.Writer, f Format, snap resultstore.Snapshot, opts Options) error {
	switch f {
	case FormatMarkdown:
		return WriteMarkdown(w, snap, opts)
	case FormatHTML:
		return WriteHTML(w, snap, opts)
	case FormatCSV:
		return WriteCSV(w, snap)
	case FormatJSON:
		return WriteJSON(w, snap, opts.withDefaults().GeneratedAt)
	}
	return fmt.Errorf("unknown report format %q", f)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// WriteHTML renders the Markdown report as a standalone HTML page.
func WriteHTML(w io.Writer, snap resultstore.Snapshot, opts Options) error {
	opts = opts.withDefaults()
	var src bytes.Buffer
	if err := WriteMarkdown(&src, snap, opts); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := markdown.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; text-align: left; }
blockquote { color: #a40000; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(opts.Title), body.String())
	return err
}

// csvHeader is the column set of the tabular export; one row per risk,
// cognate item and effectiveness variant.
var csvHeader = []string{"section", "key", "language", "value", "detail", "confidence", "category"}

// WriteCSV writes the stored records as one flat table.
func WriteCSV(w io.Writer, snap resultstore.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

	if o := snap.Transliteration; o != nil && o.Value != nil && o.Value.Statistics != nil {
		st := o.Value.Statistics
		for _, l := range sortedKeys(st.NewLettersUsed) {
			if err := cw.Write([]string{"transliteration", l, st.SourceLanguage, strconv.Itoa(st.NewLettersUsed[l]), "", "", ""}); err != nil {
				return err
			}
		}
	}
	if o := snap.Risk; o != nil && o.Value != nil {
		for _, r := range o.Value.Risks {
			row := []string{"risk", r.Letter, strings.Join(r.Languages, ", "), strings.Join(r.PossibleConfusions, ", "),
				r.Context, ftoa(r.Confidence), string(r.Severity)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	if o := snap.Cognate; o != nil && o.Value != nil {
		for i, g := range o.Value.Groups {
			for _, it := range g.Items {
				row := []string{"cognate", strconv.Itoa(i + 1), it.LanguageCode, it.NormalizedWord, it.OriginalWord,
					ftoa(g.Confidence), string(g.Similarity)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	if o := snap.Effectiveness; o != nil && o.Value != nil && o.Value.Metrics != nil {
		m := o.Value.Metrics
		category := ""
		if o.Value.Assessment != nil {
			category = o.Value.Assessment.ImprovementCategory
		}
		for _, v := range []struct {
			name string
			m    models.VariantMetrics
		}{{"original", m.Original}, {"normalized", m.Normalized}} {
			detail := fmt.Sprintf("upc=%d tpc=%d alc=%s", v.m.UniquePhonemeCount, v.m.TotalPhonemeCount, ftoa(v.m.AverageLettersPerPhoneme))
			row := []string{"effectiveness", v.name, o.Value.Metadata.DatasetLabel, ftoa(v.m.WeightedScore), detail, "", category}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export is the envelope of a JSON export.
type Export struct {
	Timestamp     time.Time            `json:"timestamp"`
	ReportVersion string               `json:"report_version"`
	Results       resultstore.Snapshot `json:"results"`
	Metadata      ExportMetadata       `json:"metadata"`
}

type ExportMetadata struct {
	Generator    string `json:"generator"`
	ExportFormat string `json:"export_format"`
}

// WriteJSON writes snap inside an export envelope.
func WriteJSON(w io.Writer, snap resultstore.Snapshot, at time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(Export{
		Timestamp:     at.UTC(),
		ReportVersion: ReportVersion,
		Results:       snap,
		Metadata:      ExportMetadata{Generator: "ctaeval", ExportFormat: "JSON"},
	})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
