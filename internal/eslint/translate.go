package eslint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/JNZader/eslintsync/internal/diag"
)

// StageTranslate is the diagnostic stage for rule translation.
const StageTranslate = "translate"

// ESLint severities.
const (
	SeverityOff   = "off"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// Parameter is a pattern option. Codacy only accepts string values.
type Parameter struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Pattern is a rule translated into Codacy's pattern shape. ID is still the
// ESLint rule name; the catalog identifier is resolved later.
type Pattern struct {
	ID         string      `json:"id" yaml:"id"`
	Enabled    bool        `json:"enabled" yaml:"enabled"`
	PatternID  string      `json:"patternId" yaml:"patternId"`
	Severity   string      `json:"-" yaml:"-"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// TranslationError is returned for rule values of an unexpected shape.
type TranslationError struct {
	Rule   string
	Reason string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Reason)
}

// Translate converts one rule declaration. A nil pattern with a nil error
// means the rule is disabled.
func Translate(name string, value any) (*Pattern, error) {
	p, _, err := translate(name, value)
	return p, err
}

// TranslateAll translates every rule in order. Failures are reported as
// diagnostics and never stop the remaining rules.
func TranslateAll(rules []Rule) ([]Pattern, diag.List) {
	var diags diag.List
	patterns := make([]Pattern, 0, len(rules))

	for _, r := range rules {
		p, notes, err := translate(r.Name, r.Value)
		diags.Merge(notes)
		var terr *TranslationError
		if errors.As(err, &terr) {
			diags.Errorf(StageTranslate, r.Name, "%s", terr.Reason)
			continue
		}
		if p != nil {
			patterns = append(patterns, *p)
		}
	}
	return patterns, diags
}

func translate(name string, value any) (*Pattern, diag.List, error) {
	var notes diag.List
	var severity, payload any

	switch v := value.(type) {
	case json.Number, string:
		severity = v
	case []any:
		if len(v) == 0 {
			return nil, nil, &TranslationError{Rule: name, Reason: "empty rule declaration"}
		}
		severity = v[0]
		if len(v) > 1 {
			payload = v[1]
		}
		if len(v) > 2 {
			notes.Infof(StageTranslate, name, "only the first option of %d is mapped", len(v)-1)
		}
	case *Object:
		severity = SeverityError
		payload = v
	default:
		return nil, nil, &TranslationError{Rule: name, Reason: fmt.Sprintf("unexpected rule value of type %s", typeName(value))}
	}

	level, err := resolveSeverity(name, severity)
	if err != nil {
		return nil, nil, err
	}
	switch level {
	case SeverityOff:
		return nil, notes, nil
	case SeverityWarn, SeverityError:
	default:
		notes.Warnf(StageTranslate, name, "unknown severity %q, treating rule as disabled", level)
		return nil, notes, nil
	}

	p := &Pattern{ID: name, Enabled: true, PatternID: name, Severity: level}

	switch opts := payload.(type) {
	case nil:
	case *Object:
		params, err := flattenOptions(opts)
		if err != nil {
			return nil, nil, &TranslationError{Rule: name, Reason: err.Error()}
		}
		p.Parameters = params
	default:
		notes.Infof(StageTranslate, name, "%s option is not mapped to pattern parameters", typeName(opts))
	}
	return p, notes, nil
}

// resolveSeverity maps numeric and symbolic severities to their names.
// Unknown values are returned as-is for the caller to reject.
func resolveSeverity(name string, severity any) (string, error) {
	switch s := severity.(type) {
	case string:
		return s, nil
	case json.Number:
		switch s.String() {
		case "0", "0.0":
			return SeverityOff, nil
		case "1", "1.0":
			return SeverityWarn, nil
		case "2", "2.0":
			return SeverityError, nil
		}
		return s.String(), nil
	default:
		return "", &TranslationError{Rule: name, Reason: fmt.Sprintf("unexpected severity of type %s", typeName(severity))}
	}
}

func flattenOptions(opts *Object) ([]Parameter, error) {
	params := make([]Parameter, 0, opts.Len())
	for _, m := range opts.Members {
		val, err := parameterValue(m.Value)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", m.Key, err)
		}
		params = append(params, Parameter{Name: m.Key, Value: val})
	}
	return params, nil
}

// parameterValue renders an option the way standards created by the earlier
// Python tooling spell it: str() for scalars and json.dumps for collections.
func parameterValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "True", nil
		}
		return "False", nil
	case nil:
		return "None", nil
	case []any, *Object:
		var sb strings.Builder
		if err := dumpJSON(&sb, t); err != nil {
			return "", err
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("unsupported option type %T", v)
	}
}

// dumpJSON writes v with ", " and ": " separators and non-ASCII escaped,
// matching json.dumps defaults.
func dumpJSON(sb *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case json.Number:
		sb.WriteString(t.String())
	case string:
		quoteASCII(sb, t)
	case []any:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := dumpJSON(sb, e); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case *Object:
		if t == nil {
			sb.WriteString("null")
			return nil
		}
		sb.WriteByte('{')
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(", ")
			}
			quoteASCII(sb, m.Key)
			sb.WriteString(": ")
			if err := dumpJSON(sb, m.Value); err != nil {
				return fmt.Errorf("%s: %w", m.Key, err)
			}
		}
		sb.WriteByte('}')
	default:
		return fmt.Errorf("unsupported option type %T", v)
	}
	return nil
}

func quoteASCII(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r <= 0xffff):
				fmt.Fprintf(sb, `\u%04x`, r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(sb, `\u%04x\u%04x`, r1, r2)
			default:
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}
