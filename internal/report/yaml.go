package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/JNZader/eslintsync/internal/standard"
)

// YAMLReporter generates YAML reports.
type YAMLReporter struct{}

func (r *YAMLReporter) Format() string { return "yaml" }

func (r *YAMLReporter) Extension() string { return ".yaml" }

func (r *YAMLReporter) Write(result *standard.Result, w io.Writer) error {
	return r.encode(result, w)
}

func (r *YAMLReporter) WriteInspection(in *Inspection, w io.Writer) error {
	return r.encode(in, w)
}

func (r *YAMLReporter) encode(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
