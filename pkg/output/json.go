package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/gooracle/pkg/location"
	"github.com/ccollicutt/gooracle/pkg/resolve"
)

// JSONFormatter writes one JSON object per line (NDJSON).
type JSONFormatter struct {
	enc  *json.Encoder
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter writing to w.
func NewJSONFormatter(w io.Writer, opts FormatOptions) *JSONFormatter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONFormatter{enc: enc, opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

type jsonLine struct {
	Type   string     `json:"type"`
	Offset int        `json:"offset"`
	Text   string     `json:"text"`
	Links  []jsonLink `json:"links"`
}

type jsonLink struct {
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Path     string        `json:"path"`
	File     *resolve.File `json:"file,omitempty"`
	Row      int           `json:"row"`
	Column   int           `json:"column"`
	Message  string        `json:"message"`
	Resolved bool          `json:"resolved"`
}

type jsonSummary struct {
	Type string `json:"type"`
	*Report
}

// WriteLine encodes a line. Lines without links are skipped unless
// AllLines is set.
func (f *JSONFormatter) WriteLine(_ context.Context, line *Line) error {
	if line.Result.Len() == 0 && !f.opts.AllLines {
		return nil
	}

	out := jsonLine{
		Type:   "line",
		Offset: line.Offset,
		Text:   line.Text,
		Links:  []jsonLink{},
	}
	if line.Result != nil {
		for _, l := range line.Result.Links {
			out.Links = append(out.Links, toJSONLink(l))
		}
	}

	return f.enc.Encode(out)
}

func toJSONLink(l location.Link) jsonLink {
	return jsonLink{
		Start:    l.Start,
		End:      l.End,
		Path:     l.Path,
		File:     l.File,
		Row:      l.Row,
		Column:   l.Column,
		Message:  l.Message,
		Resolved: l.Resolved(),
	}
}

// Finish writes the summary object when requested.
func (f *JSONFormatter) Finish(_ context.Context, report *Report) error {
	if !f.opts.Summary {
		return nil
	}
	return f.enc.Encode(jsonSummary{Type: "summary", Report: report})
}
