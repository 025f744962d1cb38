package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JNZader/eslintsync/internal/codacy"
	"github.com/JNZader/eslintsync/internal/config"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/history"
	"github.com/JNZader/eslintsync/internal/standard"
)

const (
	testHost  = "https://codacy.test"
	testToken = "cli-secret-token"
	eslintID  = "f8b29663-2cb2-498d-b923-a10c6a8c05cd"
	stdPath   = "/api/v3/organizations/gh/acme/coding-standards/42"

	testESLintConfig = `module.exports = {
  rules: {
    semi: 'error',
    quotes: ['warn', { avoidEscape: true }],
    'no-debugger': 'off',
  },
};
`
)

// sandbox isolates a test from config files and environment of the host.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("CODACY_API_TOKEN", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".eslintrc.js"), []byte(testESLintConfig), 0o600))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	Version, Commit, BuildDate = "1.2.3", "abc123def", "2024-01-15T10:00:00Z"
	defer func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	}()

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name: "default output",
			args: []string{"version"},
			contains: []string{
				"eslintsync version 1.2.3",
				"Commit:     abc123def",
				"Built:      2024-01-15T10:00:00Z",
				runtime.Version(),
			},
		},
		{
			name:     "short flag",
			args:     []string{"version", "--short"},
			contains: []string{"1.2.3"},
		},
		{
			name:     "json flag",
			args:     []string{"version", "--json"},
			contains: []string{`"version": "1.2.3"`, `"commit": "abc123def"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestInspect_PrintsTranslatedPatterns(t *testing.T) {
	sandbox(t)

	out, _, err := execute(t, "inspect", "--eslint-config", ".eslintrc.js", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Source     string           `json:"source"`
		RulesCount int              `json:"rules_count"`
		Patterns   []eslint.Pattern `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ".eslintrc.js", got.Source)
	assert.Equal(t, 3, got.RulesCount)
	require.Len(t, got.Patterns, 2)
	assert.Equal(t, "semi", got.Patterns[0].ID)
	assert.Equal(t, "quotes", got.Patterns[1].ID)
	assert.Equal(t, []eslint.Parameter{{Name: "avoidEscape", Value: "True"}}, got.Patterns[1].Parameters)
}

func TestInspect_MissingConfigFile(t *testing.T) {
	sandbox(t)

	_, _, err := execute(t, "inspect", "--eslint-config", "missing.js")
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "standard.eslint_config", verr.Field)
}

func TestCreate_RejectsInvalidProviderBeforeNetwork(t *testing.T) {
	sandbox(t)
	defer gock.Off()
	gock.New(testHost).Reply(500)

	_, _, err := execute(t, "create",
		"--api-token", testToken,
		"--organization", "acme",
		"--provider", "github",
		"--name", "Frontend Standard",
		"--eslint-config", ".eslintrc.js",
	)
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "codacy.provider", verr.Field)
	assert.False(t, gock.IsDone(), "no request may be sent")
}

func TestCreate_NoEnabledRules(t *testing.T) {
	dir := sandbox(t)
	path := filepath.Join(dir, "off.js")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules": {"semi": "off"}}`), 0o600))

	_, _, err := execute(t, "create",
		"--api-token", testToken,
		"--organization", "acme",
		"--provider", "gh",
		"--name", "Empty",
		"--eslint-config", path,
	)
	assert.ErrorIs(t, err, standard.ErrNoPatterns)
}

func TestCreate_EndToEnd(t *testing.T) {
	dir := sandbox(t)
	defer gock.Off()

	gock.New(testHost).
		Post("/api/v3/organizations/gh/acme/coding-standards$").
		MatchHeader("api-token", testToken).
		MatchType("json").
		JSON(map[string]any{"name": "Frontend Standard", "languages": []string{"Javascript", "TypeScript"}}).
		Reply(200).
		JSON(map[string]any{"data": map[string]any{"id": 42, "isDraft": true}})

	gock.New(testHost).
		Get(stdPath + "/tools$").
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{
			{"uuid": "other-tool", "isEnabled": true},
			{"uuid": eslintID, "isEnabled": true},
		}})

	disabled := map[string]any{"enabled": false, "patterns": []any{}}
	gock.New(testHost).Patch(stdPath + "/tools/other-tool$").
		MatchType("json").JSON(disabled).Reply(200)
	gock.New(testHost).Patch(stdPath + "/tools/" + eslintID + "$").
		MatchType("json").JSON(disabled).Reply(200)

	gock.New(testHost).
		Get(stdPath+"/tools/"+eslintID+"/patterns$").
		MatchParam("limit", "100").
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{
			{"patternDefinition": map[string]any{"id": "ESLint8_semi"}, "enabled": false},
			{"patternDefinition": map[string]any{"id": "ESLint8_quotes"}, "enabled": false},
			{"patternDefinition": map[string]any{"id": "ESLint8_no-debugger"}, "enabled": true},
		}})

	gock.New(testHost).Patch(stdPath + "/tools/" + eslintID + "$").
		MatchType("json").
		JSON(map[string]any{"enabled": true, "patterns": []any{
			map[string]any{"id": "ESLint8_semi", "enabled": true, "parameters": []any{}},
			map[string]any{"id": "ESLint8_quotes", "enabled": true, "parameters": []any{
				map[string]any{"name": "avoidEscape", "value": "True"},
			}},
		}}).
		Reply(200)
	gock.New(testHost).Patch(stdPath + "/tools/" + eslintID + "$").
		MatchType("json").
		JSON(map[string]any{"enabled": true, "patterns": []any{
			map[string]any{"id": "ESLint8_no-debugger", "enabled": false, "parameters": []any{}},
		}}).
		Reply(200)

	gock.New(testHost).Post(stdPath + "/promote$").Reply(200)

	out, stderr, err := execute(t, "create",
		"--base-url", testHost+"/api/v3",
		"--api-token", testToken,
		"--organization", "acme",
		"--provider", "gh",
		"--name", "Frontend Standard",
		"--eslint-config", ".eslintrc.js",
	)
	require.NoError(t, err, stderr)
	assert.True(t, gock.IsDone(), "pending mocks: %d", len(gock.Pending()))
	assert.NotContains(t, stderr, testToken)

	assert.Contains(t, out, "Standard ID:       42")
	assert.Contains(t, out, "Promoted:          true")

	data, err := os.ReadFile(filepath.Join(dir, "frontend_standard_result.json"))
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, float64(42), result["standard_id"])
	assert.Equal(t, "Frontend Standard", result["name"])
	assert.Equal(t, "acme", result["organization"])
	assert.Equal(t, "gh", result["provider"])
	assert.Equal(t, float64(2), result["patterns_count"])
	assert.Len(t, result["patterns"], 2)

	out, _, err = execute(t, "history", "--json")
	require.NoError(t, err)
	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, int64(42), runs[0].StandardID)
	assert.Equal(t, history.StatusSucceeded, runs[0].Status)
	assert.Equal(t, 1, runs[0].Disabled)
	assert.True(t, runs[0].Promoted)

	out, _, err = execute(t, "history", "latest", "--organization", "acme")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	// The catalog drained by create is cached for offline matching.
	out, _, err = execute(t, "inspect", "--eslint-config", ".eslintrc.js", "--match")
	require.NoError(t, err)
	var inspection struct {
		Match struct {
			CatalogSize int      `json:"catalog_size"`
			Matched     int      `json:"matched"`
			Unmatched   []string `json:"unmatched_rules"`
		} `json:"catalog_match"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &inspection))
	assert.Equal(t, 3, inspection.Match.CatalogSize)
	assert.Equal(t, 2, inspection.Match.Matched)
	assert.Empty(t, inspection.Match.Unmatched)
}

func TestCreate_RecordsFailedRun(t *testing.T) {
	sandbox(t)
	defer gock.Off()

	gock.New(testHost).
		Post("/api/v3/organizations/gh/acme/coding-standards$").
		Reply(401).
		BodyString(`{"error":"invalid token"}`)

	_, _, err := execute(t, "create",
		"--base-url", testHost+"/api/v3",
		"--api-token", testToken,
		"--organization", "acme",
		"--provider", "gh",
		"--name", "Frontend Standard",
		"--eslint-config", ".eslintrc.js",
	)
	var apiErr *codacy.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	out, _, err := execute(t, "history", "--status", "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "Frontend Standard")
	assert.Contains(t, out, "gh/acme")
	assert.Contains(t, out, "1 runs recorded, 0 succeeded, 1 failed")

	_, _, err = execute(t, "history", "latest")
	assert.ErrorContains(t, err, "no successful run recorded")
}

func TestHistory_Empty(t *testing.T) {
	sandbox(t)

	out, _, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, _, err = execute(t, "history", "--status", "pending")
	assert.ErrorContains(t, err, "unknown status")
}

func TestInspect_MatchWithoutCachedCatalog(t *testing.T) {
	sandbox(t)

	_, _, err := execute(t, "inspect", "--eslint-config", ".eslintrc.js", "--match")
	assert.ErrorContains(t, err, "no cached catalog")
}

func TestCatalog_ListsToolsAndPatterns(t *testing.T) {
	sandbox(t)
	defer gock.Off()

	gock.New(testHost).
		Get(stdPath + "/tools$").
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{{"uuid": eslintID, "isEnabled": true}}})
	gock.New(testHost).
		Get(stdPath + "/tools/" + eslintID + "/patterns$").
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{
			{"patternDefinition": map[string]any{"id": "ESLint8_semi", "category": "CodeStyle", "level": "Info"}, "enabled": true},
			{"patternDefinition": map[string]any{"id": "ESLint8_eqeqeq", "category": "ErrorProne", "level": "Warning"}, "enabled": false},
		}})

	t.Setenv("CODACY_API_TOKEN", testToken)
	out, _, err := execute(t, "catalog",
		"--base-url", testHost+"/api/v3",
		"--organization", "acme",
		"--provider", "gh",
		"--standard-id", "42",
		"--enabled-only",
	)
	require.NoError(t, err)
	assert.True(t, gock.IsDone())
	assert.Contains(t, out, eslintID+"  enabled")
	assert.Contains(t, out, "ESLint patterns (2)")
	assert.Contains(t, out, "ESLint8_semi")
	assert.NotContains(t, out, "ESLint8_eqeqeq")

	_, _, err = execute(t, "inspect", "--eslint-config", ".eslintrc.js", "--match")
	require.NoError(t, err)

	out, _, err = execute(t, "catalog", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog cache cleared")

	_, _, err = execute(t, "inspect", "--eslint-config", ".eslintrc.js", "--match")
	assert.ErrorContains(t, err, "no cached catalog")
}

func TestConfigShow_MasksToken(t *testing.T) {
	sandbox(t)
	t.Setenv("CODACY_API_TOKEN", testToken)

	out, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No config file found")
	assert.Contains(t, out, "***REDACTED***")
	assert.NotContains(t, out, testToken)
	assert.Contains(t, out, "tool_uuid: "+eslintID)
}

func TestConfigInit(t *testing.T) {
	dir := sandbox(t)

	_, _, err := execute(t, "config", "init")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Sync, cfg.Sync)
	assert.Equal(t, ".eslintrc.js", cfg.Standard.ESLintConfig)

	_, _, err = execute(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestPrintError(t *testing.T) {
	t.Run("normalization error shows numbered text", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, &eslint.NormalizationError{
			Stage: eslint.StageParse,
			Text:  "{\n  \"semi\": /x/\n}",
			Err:   errors.New("invalid character '/'"),
		})
		out := buf.String()
		assert.Contains(t, out, "Error: normalize eslint config (parse)")
		assert.Contains(t, out, `   2 |   "semi": /x/`)
	})

	t.Run("api error shows status and body", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, &codacy.APIError{
			StatusCode: 400,
			Status:     "400 Bad Request",
			Method:     "PATCH",
			URL:        "https://codacy.test/api/v3/x",
			Body:       `{"error":"bad pattern"}` + "\n",
		})
		out := buf.String()
		assert.Contains(t, out, "HTTP 400 from PATCH https://codacy.test/api/v3/x")
		assert.Contains(t, out, `Response: {"error":"bad pattern"}`)
	})
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf)

	p.Step("Disabling all tools")
	p.Batch("Disabling tools", 1, 2, 1)
	p.Batch("Disabling tools", 2, 2, 1)
	p.Step("Promoting coding standard")
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "==> Disabling all tools\n")
	assert.Contains(t, out, "50% (1/2, 1 items)")
	assert.Contains(t, out, "100% (2/2, 1 items)\n==> Promoting coding standard")
	assert.Contains(t, out, "Finished in")
	assert.Equal(t, 1, strings.Count(out, "Promoting"))
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat("░", 20)+"]", renderBar(0))
	assert.Equal(t, "["+strings.Repeat("█", 10)+strings.Repeat("░", 10)+"]", renderBar(50))
	assert.Equal(t, "["+strings.Repeat("█", 20)+"]", renderBar(150))
}
