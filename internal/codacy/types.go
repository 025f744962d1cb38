package codacy

// Git providers accepted by the organization endpoints.
const (
	ProviderGitHub    = "gh"
	ProviderGitLab    = "gl"
	ProviderBitbucket = "bb"
)

// CodingStandard is a coding standard as returned on creation.
type CodingStandard struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name,omitempty"`
	IsDraft   bool     `json:"isDraft,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// Tool is a tool entry of a coding standard.
type Tool struct {
	UUID      string `json:"uuid"`
	IsEnabled bool   `json:"isEnabled"`
}

// PatternDefinition describes a catalog pattern.
type PatternDefinition struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
}

// CatalogPattern is one entry of a tool's pattern catalog.
type CatalogPattern struct {
	PatternDefinition PatternDefinition `json:"patternDefinition"`
	Enabled           bool              `json:"enabled"`
}

// Parameter is a pattern parameter. Values are always strings.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PatternUpdate enables or disables a single pattern.
type PatternUpdate struct {
	ID         string      `json:"id"`
	Enabled    bool        `json:"enabled"`
	Parameters []Parameter `json:"parameters"`
}

// ToolUpdate is the body of a tool PATCH request.
type ToolUpdate struct {
	Enabled  bool            `json:"enabled"`
	Patterns []PatternUpdate `json:"patterns"`
}

type createStandardRequest struct {
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
}

type createStandardResponse struct {
	Data CodingStandard `json:"data"`
}

type listToolsResponse struct {
	Data []Tool `json:"data"`
}

type pagination struct {
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Total  int    `json:"total,omitempty"`
}

type listPatternsResponse struct {
	Data       []CatalogPattern `json:"data"`
	Pagination *pagination      `json:"pagination,omitempty"`
}
