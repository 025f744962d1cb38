package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JNZader/eslintsync/internal/codacy"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/metrics"
	"github.com/JNZader/eslintsync/internal/standard"
)

// printError prints the error chain, plus the offending text for parse
// failures and the response body for API failures.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var nerr *eslint.NormalizationError
	if errors.As(err, &nerr) && nerr.Text != "" {
		fmt.Fprintf(w, "\nContent that failed (%s stage):\n%s\n", nerr.Stage, numberLines(nerr.Text))
	}

	var apiErr *codacy.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "\nHTTP %d from %s %s\n", apiErr.StatusCode, apiErr.Method, apiErr.URL)
		if body := strings.TrimSpace(apiErr.Body); body != "" {
			fmt.Fprintf(w, "Response: %s\n", body)
		}
	}
}

func numberLines(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%4d | %s\n", i+1, line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PrintSummary prints a summary of a sync run.
func PrintSummary(w io.Writer, result *standard.Result, path string) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "  Coding Standard Created\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "  Standard ID:       %d\n", result.StandardID)
	fmt.Fprintf(w, "  Rules configured:  %d\n", result.PatternsCount)
	fmt.Fprintf(w, "  Patterns enabled:  %d\n", result.Enabled)
	fmt.Fprintf(w, "  Patterns disabled: %d\n", result.Disabled)
	if n := len(result.UnmatchedRules); n > 0 {
		fmt.Fprintf(w, "  Unmatched rules:   %d\n", n)
	}
	fmt.Fprintf(w, "  Promoted:          %t\n", result.Promoted)
	fmt.Fprintf(w, "  Results saved to:  %s\n", path)
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

// writeMetrics prints the collected metrics, as JSON when the result format
// is JSON and as a short table otherwise.
func writeMetrics(w io.Writer, m *metrics.Collector, format string) error {
	if format != "json" {
		return m.WriteSummary(w)
	}
	data, err := m.Export()
	if err != nil {
		return fmt.Errorf("export metrics: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
