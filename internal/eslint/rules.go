package eslint

import (
	"fmt"
	"os"

	"github.com/JNZader/eslintsync/internal/diag"
)

// StageLoad is the diagnostic stage for reading a configuration file.
const StageLoad = "load"

// Rule is a single entry of the "rules" section: the rule name and its raw
// declared value (severity, [severity, options] or an options mapping).
type Rule struct {
	Name  string
	Value any
}

// Config is a parsed ESLint configuration.
type Config struct {
	Path  string
	Root  *Object
	Rules []Rule
}

// ReadRules reads and normalizes the configuration at path and returns its
// rules in declaration order.
func ReadRules(path string, n Normalizer) (*Config, diag.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading eslint config: %w", err)
	}
	if n == nil {
		n = TextNormalizer{}
	}
	root, err := n.Normalize(string(data))
	if err != nil {
		return nil, nil, err
	}

	cfg, diags := FromObject(root)
	cfg.Path = path
	return cfg, diags, nil
}

// FromObject extracts the rules of an already normalized configuration.
func FromObject(root *Object) (*Config, diag.List) {
	var diags diag.List
	cfg := &Config{Root: root}

	raw, ok := root.Get("rules")
	if !ok {
		diags.Warnf(StageLoad, "", "no rules found in the configuration (top-level keys: %v)", root.Keys())
		return cfg, diags
	}
	rules, ok := raw.(*Object)
	if !ok {
		diags.Errorf(StageLoad, "rules", "expected an object, got %s", typeName(raw))
		return cfg, diags
	}
	if rules.Len() == 0 {
		diags.Warnf(StageLoad, "", "rules section is empty")
	}

	seen := make(map[string]int, rules.Len())
	for _, m := range rules.Members {
		if i, dup := seen[m.Key]; dup {
			// Later declarations win.
			cfg.Rules[i].Value = m.Value
			diags.Warnf(StageLoad, m.Key, "declared more than once, using the last declaration")
			continue
		}
		seen[m.Key] = len(cfg.Rules)
		cfg.Rules = append(cfg.Rules, Rule{Name: m.Key, Value: m.Value})
	}
	return cfg, diags
}
