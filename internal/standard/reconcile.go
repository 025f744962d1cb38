package standard

import (
	"strings"

	"github.com/JNZader/eslintsync/internal/codacy"
	"github.com/JNZader/eslintsync/internal/diag"
	"github.com/JNZader/eslintsync/internal/eslint"
)

// StageReconcile is the diagnostic stage for catalog matching.
const StageReconcile = "reconcile"

// NormalizeID replaces path separators of plugin rules with underscores,
// which is how the catalog spells them.
func NormalizeID(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}

// Index resolves rule names to catalog patterns.
type Index struct {
	catalog []codacy.CatalogPattern
	keys    map[string]int
}

// NewIndex indexes every catalog entry under its raw id, the id without
// prefix and the normalized id without prefix. When two entries share a key
// the first one keeps it.
func NewIndex(catalog []codacy.CatalogPattern, prefix string) (*Index, diag.List) {
	var diags diag.List
	idx := &Index{catalog: catalog, keys: make(map[string]int, len(catalog)*2)}

	for i, p := range catalog {
		id := p.PatternDefinition.ID
		if id == "" {
			diags.Warnf(StageReconcile, "", "catalog entry %d has no pattern id, skipped", i)
			continue
		}
		base := strings.TrimPrefix(id, prefix)
		for _, key := range []string{id, base, NormalizeID(base)} {
			if _, taken := idx.keys[key]; !taken {
				idx.keys[key] = i
			}
		}
	}
	return idx, diags
}

// Lookup finds the catalog entry for a rule name, trying the name as is and
// then its normalized form.
func (x *Index) Lookup(rule string) (codacy.CatalogPattern, bool) {
	for _, key := range []string{rule, NormalizeID(rule)} {
		if i, ok := x.keys[key]; ok {
			return x.catalog[i], true
		}
	}
	return codacy.CatalogPattern{}, false
}

// Plan is the outcome of reconciling translated rules with a catalog.
type Plan struct {
	Enable      []codacy.PatternUpdate
	Disable     []codacy.PatternUpdate
	Unmatched   []string
	Diagnostics diag.List
}

// Reconcile matches patterns against the catalog. Matched rules are enabled
// under their catalog id with their parameters; every other catalog entry is
// disabled with no parameters, in catalog order.
func Reconcile(catalog []codacy.CatalogPattern, patterns []eslint.Pattern, prefix string) *Plan {
	idx, diags := NewIndex(catalog, prefix)
	plan := &Plan{Diagnostics: diags}

	enabled := make(map[string]string, len(patterns))
	for _, p := range patterns {
		entry, ok := idx.Lookup(p.ID)
		if !ok {
			plan.Unmatched = append(plan.Unmatched, p.ID)
			plan.Diagnostics.Warnf(StageReconcile, p.ID, "no matching pattern in the catalog")
			continue
		}
		id := entry.PatternDefinition.ID
		if owner, dup := enabled[id]; dup {
			plan.Diagnostics.Warnf(StageReconcile, p.ID, "resolves to %s, already enabled by %s", id, owner)
			continue
		}
		enabled[id] = p.ID
		plan.Enable = append(plan.Enable, codacy.PatternUpdate{
			ID:         id,
			Enabled:    true,
			Parameters: toParameters(p.Parameters),
		})
	}

	for _, entry := range catalog {
		id := entry.PatternDefinition.ID
		if id == "" {
			continue
		}
		if _, ok := enabled[id]; ok {
			continue
		}
		plan.Disable = append(plan.Disable, codacy.PatternUpdate{
			ID:         id,
			Enabled:    false,
			Parameters: []codacy.Parameter{},
		})
	}
	return plan
}

func toParameters(params []eslint.Parameter) []codacy.Parameter {
	out := make([]codacy.Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, codacy.Parameter{Name: p.Name, Value: p.Value})
	}
	return out
}
