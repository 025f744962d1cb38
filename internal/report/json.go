package report

import (
	"encoding/json"
	"io"

	"github.com/JNZader/eslintsync/internal/standard"
)

// JSONReporter generates JSON reports.
type JSONReporter struct {
	Indent bool
}

func (r *JSONReporter) Format() string { return "json" }

func (r *JSONReporter) Extension() string { return ".json" }

func (r *JSONReporter) Write(result *standard.Result, w io.Writer) error {
	return r.encode(result, w)
}

func (r *JSONReporter) WriteInspection(in *Inspection, w io.Writer) error {
	return r.encode(in, w)
}

func (r *JSONReporter) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if r.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
