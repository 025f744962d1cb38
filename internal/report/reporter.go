// Package report renders sync results and offline inspections.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JNZader/eslintsync/internal/diag"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/standard"
)

// Reporter defines the interface for rendering results.
type Reporter interface {
	// Write writes the result of a sync run.
	Write(result *standard.Result, w io.Writer) error

	// WriteInspection writes the outcome of an offline inspection.
	WriteInspection(in *Inspection, w io.Writer) error

	// Format returns the format name.
	Format() string

	// Extension returns the file extension, including the dot.
	Extension() string
}

// Inspection is the outcome of converting a configuration without
// contacting Codacy.
type Inspection struct {
	Source      string           `json:"source" yaml:"source"`
	RulesCount  int              `json:"rules_count" yaml:"rules_count"`
	Patterns    []eslint.Pattern `json:"patterns" yaml:"patterns"`
	Match       *CatalogMatch    `json:"catalog_match,omitempty" yaml:"catalog_match,omitempty"`
	Diagnostics diag.List        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// CatalogMatch summarizes how the patterns resolve against a cached catalog.
type CatalogMatch struct {
	FetchedAt   time.Time `json:"fetched_at" yaml:"fetched_at"`
	CatalogSize int       `json:"catalog_size" yaml:"catalog_size"`
	Matched     int       `json:"matched" yaml:"matched"`
	Unmatched   []string  `json:"unmatched_rules,omitempty" yaml:"unmatched_rules,omitempty"`
}

// NewReporter creates a reporter for the given format.
func NewReporter(format string) (Reporter, error) {
	switch format {
	case "json", "":
		return &JSONReporter{Indent: true}, nil
	case "yaml", "yml":
		return &YAMLReporter{}, nil
	case "markdown", "md":
		return &MarkdownReporter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// AvailableFormats returns the list of supported formats.
func AvailableFormats() []string {
	return []string{"json", "yaml", "markdown"}
}

// ResultFileName derives the artifact name from the standard name:
// lower-cased, spaces replaced by underscores.
func ResultFileName(name, ext string) string {
	if ext == "" {
		ext = ".json"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_")) + "_result" + ext
}

// WriteFile renders result into dir and returns the written path.
func WriteFile(r Reporter, result *standard.Result, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, ResultFileName(result.Name, r.Extension()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create result file: %w", err)
	}
	if err := r.Write(result, f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close result file: %w", err)
	}
	return path, nil
}
