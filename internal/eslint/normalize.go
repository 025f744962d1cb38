// Package eslint reads ESLint configuration sources and translates their
// rules into Codacy patterns.
//
// Configuration files are usually JavaScript (.eslintrc.js) rather than JSON.
// TextNormalizer rewrites the conventional shape of such a file into JSON with
// a fixed series of text transforms; it is not a JavaScript parser.
package eslint

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Normalization stages reported in NormalizationError.
const (
	StageRead      = "read"
	StageTransform = "transform"
	StageParse     = "parse"
)

// ErrEmptyConfig is returned for blank configuration sources.
var ErrEmptyConfig = errors.New("configuration source is empty")

// Normalizer turns configuration source text into structured data.
type Normalizer interface {
	Normalize(src string) (*Object, error)
}

// NormalizationError reports why a source could not be turned into an object.
// Text holds the content that failed: the transformed text for parse
// failures, the original source otherwise.
type NormalizationError struct {
	Stage string
	Text  string
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize eslint config (%s): %v", e.Stage, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

var (
	exportPrefixRe  = regexp.MustCompile(`\b(?:module\.exports\s*=|export\s+default)\s*`)
	trailingSemiRe  = regexp.MustCompile(`;\s*$`)
	commentRe       = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*`)
	nodeEnvRe       = regexp.MustCompile(`process\.env\.NODE_ENV\s*===\s*['"]production['"]\s*\?\s*['"]error['"]\s*:\s*['"]warn['"]`)
	bareKeyRe       = regexp.MustCompile(`([A-Za-z0-9_-]+)(\s*:)`)
	extendsArrayRe  = regexp.MustCompile(`(?s)"extends"\s*:\s*\[(.*?)\]`)
	extendsScalarRe = regexp.MustCompile(`"extends"\s*:\s*("[^\[\n{}]*?")(\s*[,}\n])`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// TextNormalizer is the regexp based Normalizer.
type TextNormalizer struct{}

// Normalize rewrites src into JSON and parses it.
func (TextNormalizer) Normalize(src string) (obj *Object, err error) {
	if strings.TrimSpace(src) == "" {
		return nil, &NormalizationError{Stage: StageRead, Err: ErrEmptyConfig}
	}

	defer func() {
		if r := recover(); r != nil {
			obj = nil
			err = &NormalizationError{Stage: StageTransform, Text: src, Err: fmt.Errorf("%v", r)}
		}
	}()

	cleaned := Clean(src)

	obj, err = decodeObject([]byte(cleaned))
	if err != nil {
		return nil, &NormalizationError{Stage: StageParse, Text: cleaned, Err: withPosition(cleaned, err)}
	}
	return obj, nil
}

// Clean applies the text transforms without parsing the result.
func Clean(src string) string {
	s := exportPrefixRe.ReplaceAllString(src, "")
	s = commentRe.ReplaceAllString(s, "")
	s = trailingSemiRe.ReplaceAllString(s, "")
	// NODE_ENV ternaries always resolve to the development branch.
	s = nodeEnvRe.ReplaceAllString(s, `"warn"`)
	s = strings.ReplaceAll(s, "'", `"`)
	s = bareKeyRe.ReplaceAllString(s, `"$1"$2`)
	s = repairExtends(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// repairExtends undoes the damage key quoting does to "plugin:x" style
// entries of the extends list.
func repairExtends(s string) string {
	s = extendsArrayRe.ReplaceAllStringFunc(s, func(match string) string {
		body := extendsArrayRe.FindStringSubmatch(match)[1]
		entries := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == '\n' })

		quoted := make([]string, 0, len(entries))
		for _, entry := range entries {
			if e := requoteExtend(entry); e != "" {
				quoted = append(quoted, e)
			}
		}
		return "\"extends\": [\n        " + strings.Join(quoted, ",\n        ") + "\n    ]"
	})

	return extendsScalarRe.ReplaceAllStringFunc(s, func(match string) string {
		m := extendsScalarRe.FindStringSubmatch(match)
		return `"extends": ` + requoteExtend(m[1]) + m[2]
	})
}

// requoteExtend returns entry as a single JSON string, or "" when blank.
func requoteExtend(entry string) string {
	e := strings.Trim(strings.TrimSpace(entry), `,"`)
	e = strings.TrimSpace(e)
	switch {
	case e == "":
		return ""
	case strings.HasPrefix(e, "eslint:"), strings.HasPrefix(e, "plugin:"):
		return `"` + e + `"`
	case e == "prettier":
		return `"prettier"`
	case strings.Contains(e, ":"):
		return `"` + strings.ReplaceAll(e, `"`, "") + `"`
	default:
		return `"` + e + `"`
	}
}

// withPosition decorates JSON syntax errors with a line:column location.
func withPosition(text string, err error) error {
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		return err
	}
	line, col := 1, 1
	for i, r := range text {
		if int64(i) >= syn.Offset-1 {
			break
		}
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return fmt.Errorf("line %d, column %d: %w", line, col, err)
}
