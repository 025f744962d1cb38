package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JNZader/eslintsync/internal/diag"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/standard"
)

// MarkdownReporter generates Markdown reports.
type MarkdownReporter struct{}

func (r *MarkdownReporter) Format() string { return "markdown" }

func (r *MarkdownReporter) Extension() string { return ".md" }

func (r *MarkdownReporter) Write(result *standard.Result, w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Coding Standard %s\n\n", result.Name)

	fmt.Fprintf(&sb, "## Summary\n\n")
	fmt.Fprintf(&sb, "- **Standard ID:** %d\n", result.StandardID)
	fmt.Fprintf(&sb, "- **Organization:** %s (%s)\n", result.Organization, result.Provider)
	fmt.Fprintf(&sb, "- **Rules configured:** %d\n", result.PatternsCount)
	fmt.Fprintf(&sb, "- **Patterns enabled:** %d\n", result.Enabled)
	fmt.Fprintf(&sb, "- **Patterns disabled:** %d\n", result.Disabled)
	fmt.Fprintf(&sb, "- **Promoted:** %t\n", result.Promoted)
	if result.Duration > 0 {
		fmt.Fprintf(&sb, "- **Duration:** %s\n", result.Duration)
	}
	sb.WriteString("\n")

	r.writePatterns(&sb, result.Patterns)

	if len(result.UnmatchedRules) > 0 {
		fmt.Fprintf(&sb, "## Unmatched Rules\n\n")
		for _, name := range result.UnmatchedRules {
			fmt.Fprintf(&sb, "- `%s`\n", name)
		}
		sb.WriteString("\n")
	}

	r.writeDiagnostics(&sb, result.Diagnostics)

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *MarkdownReporter) WriteInspection(in *Inspection, w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# ESLint Inspection\n\n")
	fmt.Fprintf(&sb, "- **Source:** %s\n", in.Source)
	fmt.Fprintf(&sb, "- **Rules declared:** %d\n", in.RulesCount)
	fmt.Fprintf(&sb, "- **Patterns produced:** %d\n\n", len(in.Patterns))

	r.writePatterns(&sb, in.Patterns)

	if m := in.Match; m != nil {
		sb.WriteString("## Catalog Match\n\n")
		fmt.Fprintf(&sb, "Matched %d of %d patterns against %d catalog entries fetched %s.\n\n",
			m.Matched, len(in.Patterns), m.CatalogSize, m.FetchedAt.Format(time.RFC3339))
		for _, name := range m.Unmatched {
			fmt.Fprintf(&sb, "- `%s` has no catalog pattern\n", name)
		}
		if len(m.Unmatched) > 0 {
			sb.WriteString("\n")
		}
	}

	r.writeDiagnostics(&sb, in.Diagnostics)

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *MarkdownReporter) writePatterns(sb *strings.Builder, patterns []eslint.Pattern) {
	if len(patterns) == 0 {
		sb.WriteString("No enabled rules.\n\n")
		return
	}

	sb.WriteString("## Patterns\n\n")
	sb.WriteString("| Rule | Severity | Parameters |\n")
	sb.WriteString("|------|----------|------------|\n")
	for _, p := range patterns {
		params := make([]string, 0, len(p.Parameters))
		for _, param := range p.Parameters {
			params = append(params, fmt.Sprintf("`%s=%s`", param.Name, escapeCell(param.Value)))
		}
		severity := p.Severity
		if severity == "" {
			severity = "-"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s |\n", p.ID, severity, strings.Join(params, " "))
	}
	sb.WriteString("\n")
}

func (r *MarkdownReporter) writeDiagnostics(sb *strings.Builder, list diag.List) {
	if len(list) == 0 {
		return
	}
	sb.WriteString("## Diagnostics\n\n")
	for _, d := range list {
		fmt.Fprintf(sb, "- %s %s\n", severityLabel(d.Severity), d.String())
	}
	sb.WriteString("\n")
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "[ERROR]"
	case diag.SeverityWarning:
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
