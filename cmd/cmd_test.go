package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/bulk"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/seeder"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// execute runs the root command against a config file holding configYAML,
// with HOME pointed at an empty directory.
func execute(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfgPath := filepath.Join(t.TempDir(), "entraseed.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--config", cfgPath, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

const baseConfig = "version: \"1.0\"\n"

// Test command initialization and registration
func TestCommandsRegistered(t *testing.T) {
	expected := map[string]bool{
		"generate":  false,
		"push":      false,
		"locations": false,
		"config":    false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := expected[cmd.Name()]; ok {
			expected[cmd.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("expected command '%s' to be registered with root command", name)
		}
	}
}

func TestConfigCommandHasValidate(t *testing.T) {
	var found bool
	for _, sub := range configCmd.Commands() {
		if sub.Name() == "validate" {
			found = true
		}
	}
	assert.True(t, found, "config validate should be registered")
}

func TestGenerateFlags(t *testing.T) {
	for _, name := range []string{"users", "window-days", "seed", "anchor", "output", "index", "sink", "metrics-file", "preview"} {
		assert.NotNil(t, generateCmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "u", generateCmd.Flags().Lookup("users").Shorthand)
	assert.Equal(t, "o", generateCmd.Flags().Lookup("output").Shorthand)
}

var totalLine = regexp.MustCompile(`Total events generated: (\d+)`)

func TestGenerate_WritesBulkFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ndjson")
	stdout, err := execute(t, baseConfig,
		"generate",
		"--users", "2",
		"--seed", "42",
		"--anchor", "2025-06-01T00:00:00Z",
		"--output", out,
		"--sink", "file",
		"--preview", "2",
	)
	require.NoError(t, err, stdout)

	m := totalLine.FindStringSubmatch(stdout)
	require.NotNil(t, m, stdout)
	total, err := strconv.Atoi(m[1])
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	events, err := bulk.ReadAll(f)
	require.NoError(t, err)
	assert.Len(t, events, total)

	assert.Contains(t, stdout, "✓ file: "+strconv.Itoa(total)+" documents")
	assert.Contains(t, stdout, "Seed 42, anchor 2025-06-01T00:00:00Z")
}

func TestGenerate_IndexFlag(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ndjson")
	_, err := execute(t, baseConfig,
		"generate",
		"--users", "1",
		"--seed", "42",
		"--anchor", "2025-06-01T00:00:00Z",
		"--output", out,
		"--sink", "file",
		"--index", "entra",
		"--preview", "0",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(`{"index":{"_index":"entra"}}`+"\n")))
}

func TestGenerate_InvalidUsers(t *testing.T) {
	_, err := execute(t, baseConfig,
		"generate",
		"--users", "0",
		"--output", filepath.Join(t.TempDir(), "out.ndjson"),
		"--sink", "file",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users must be positive")
}

func TestPush_WithoutNetworkSinks(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ndjson")
	_, err := execute(t, baseConfig,
		"generate",
		"--users", "1",
		"--seed", "42",
		"--anchor", "2025-06-01T00:00:00Z",
		"--output", out,
		"--sink", "file",
		"--index", "",
		"--preview", "0",
	)
	require.NoError(t, err)

	_, err = execute(t, baseConfig, "push", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, seeder.ErrNoSinks)
}

func TestPush_RequiresFile(t *testing.T) {
	_, err := execute(t, baseConfig, "push")
	require.Error(t, err)
}

func TestLocations_JSON(t *testing.T) {
	stdout, err := execute(t, baseConfig, "locations", "--output-format", "json")
	require.NoError(t, err)

	var views []locationView
	require.NoError(t, json.Unmarshal([]byte(stdout), &views))
	catalog := geo.Catalog()
	require.Len(t, views, len(catalog))
	for i, l := range catalog {
		assert.Equal(t, l.Name, views[i].Name)
		assert.Equal(t, l.Timezone, views[i].Timezone)
		assert.Equal(t, l.CIDRStrings(), views[i].CIDRs)
	}
}

func TestLocations_YAML(t *testing.T) {
	stdout, err := execute(t, baseConfig, "locations", "--output-format", "yaml")
	require.NoError(t, err)

	var views []locationView
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &views))
	assert.Len(t, views, len(geo.Catalog()))
}

func TestLocations_Table(t *testing.T) {
	stdout, err := execute(t, baseConfig, "locations", "--output-format", "table")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TIMEZONE")
	assert.Contains(t, stdout, "Asia/Tokyo")
	assert.Contains(t, stdout, "São Paulo")
}

func TestLocations_UnknownFormat(t *testing.T) {
	_, err := execute(t, baseConfig, "locations", "--output-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestConfigValidate(t *testing.T) {
	stdout, err := execute(t, `
version: "1.0"
sinks:
  enabled: [file, hec]
  hec:
    url: http://hec:8088
    token: super-secret
`, "config", "validate")
	require.NoError(t, err, stdout)

	assert.Contains(t, stdout, "✓ Configuration is valid")
	assert.Contains(t, stdout, masked)
	assert.NotContains(t, stdout, "super-secret")
	assert.Contains(t, stdout, "users: 1000")
}

func TestConfigValidate_Invalid(t *testing.T) {
	_, err := execute(t, `
generator:
  home_rate: 1.5
`, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home_rate")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"file", "opensearch"}, splitList(" file, opensearch ,,"))
	assert.Nil(t, splitList(""))
}

func TestRedact(t *testing.T) {
	cfg := seeder.DefaultConfig()
	cfg.Sinks.HEC.Token = "t"
	cfg.Sinks.Elasticsearch.APIKey = "k"

	r := redact(*cfg)
	assert.Equal(t, masked, r.Sinks.HEC.Token)
	assert.Equal(t, masked, r.Sinks.Elasticsearch.APIKey)
	assert.Empty(t, r.Sinks.NATS.Token)
	assert.Equal(t, "t", cfg.Sinks.HEC.Token, "original is untouched")
}
