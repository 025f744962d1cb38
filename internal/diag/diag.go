// Package diag carries non-fatal findings produced while converting and
// reconciling rules.
//
// Components return a List next to their result instead of printing, so the
// CLI decides how to render them and tests can assert on them.
package diag

import "fmt"

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Diagnostic is a single finding about one subject (usually a rule name).
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Stage    string   `json:"stage" yaml:"stage"`
	Subject  string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Subject == "" {
		return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Stage, d.Subject, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(sev Severity, stage, subject, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Severity: sev,
		Stage:    stage,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Infof appends an informational diagnostic.
func (l *List) Infof(stage, subject, format string, args ...interface{}) {
	l.Add(SeverityInfo, stage, subject, format, args...)
}

// Warnf appends a warning.
func (l *List) Warnf(stage, subject, format string, args ...interface{}) {
	l.Add(SeverityWarning, stage, subject, format, args...)
}

// Errorf appends an error-level diagnostic. It does not abort anything.
func (l *List) Errorf(stage, subject, format string, args ...interface{}) {
	l.Add(SeverityError, stage, subject, format, args...)
}

// Merge appends all diagnostics of other.
func (l *List) Merge(other List) {
	*l = append(*l, other...)
}

// AtLeast returns the diagnostics with severity >= min.
func (l List) AtLeast(min Severity) List {
	var out List
	for _, d := range l {
		if d.Severity >= min {
			out = append(out, d)
		}
	}
	return out
}

// Subjects returns the subjects of the diagnostics raised at the given stage.
func (l List) Subjects(stage string) []string {
	var out []string
	for _, d := range l {
		if d.Stage == stage && d.Subject != "" {
			out = append(out, d.Subject)
		}
	}
	return out
}
