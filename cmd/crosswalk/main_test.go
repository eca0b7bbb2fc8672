package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frogJSON = `{
  "@context": "https://doi.org/10.5063/schema/codemeta-2.0",
  "@type": "SoftwareSourceCode",
  "@id": "https://example.org/frog",
  "name": "frog",
  "version": "1.0",
  "author": [{"@type": "Person", "@id": "https://example.org/maarten", "givenName": "Maarten"}]
}`

const pypiJSON = `{
  "@context": "https://doi.org/10.5063/schema/codemeta-2.0",
  "@type": "SoftwareSourceCode",
  "@id": "https://pypi.org/project/frog",
  "version": "1.1"
}`

// workspace isolates the config layers and returns a directory holding the
// test inputs.
func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CROSSWALK_BASE_URI", "")
	t.Setenv("CROSSWALK_NATS_URL", "")

	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codemeta.json"), []byte(frogJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pypi.jsonld"), []byte(pypiJSON), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestFrameCommand(t *testing.T) {
	workspace(t)

	out, err := execute(t, "frame", "codemeta.json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "https://example.org/frog", doc["@id"])
	assert.Equal(t, "frog", doc["name"])
	assert.Contains(t, doc, "@context")
}

func TestMergeCommandUnifiesRoots(t *testing.T) {
	workspace(t)

	out, err := execute(t, "merge", "codemeta.json", "pypi.jsonld", "--format", "nt")
	require.NoError(t, err)

	assert.Contains(t, out, `<https://example.org/frog> <http://schema.org/version> "1.1" .`)
	assert.NotContains(t, out, "pypi.org")
}

func TestExportCommandWritesFile(t *testing.T) {
	dir := workspace(t)
	output := filepath.Join(dir, "dist", "frog.ttl")

	out, err := execute(t, "export", "*.json*", "--output", output, "--set", "name=Toad")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	turtle := string(data)
	assert.Contains(t, turtle, "@prefix schema: <http://schema.org/> .")
	assert.Contains(t, turtle, `schema:name "Toad"`)
	assert.NotContains(t, turtle, `"frog"`)

	// Only the final file is left behind.
	entries, err := os.ReadDir(filepath.Dir(output))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"frame", "missing.json"}, "no such file"},
		{"bad format", []string{"export", "codemeta.json", "--format", "rdfxml"}, "unsupported"},
		{"bad assignment", []string{"frame", "codemeta.json", "--set", "name"}, "invalid property assignment"},
		{"unknown predicate", []string{"frame", "codemeta.json", "--set", "colour=green"}, "unknown predicate"},
		{"bad base uri", []string{"--base-uri", "not a uri", "frame", "codemeta.json"}, "base_uri"},
		{"no inputs", []string{"frame"}, "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t)
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProjectConfig(t *testing.T) {
	dir := workspace(t)
	cfg := "base_uri: https://frog.example/\noutput:\n  format: ntriples\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crosswalk.yaml"), []byte(cfg), 0644))

	out, err := execute(t, "export", "codemeta.json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, " .\n"), "configured N-Triples output: %s", out)
	assert.Contains(t, out, "<https://frog.example/stub/H")
}

func TestStoreCommands(t *testing.T) {
	dir := workspace(t)
	cfg := "nats:\n  store_dir: " + filepath.Join(t.TempDir(), "jetstream") + "\n"
	cfgPath := filepath.Join(dir, "store.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, err := execute(t, "--config", cfgPath, "store", "put", "codemeta.json", "pypi.jsonld")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/frog (revision 1)\n", out)

	out, err = execute(t, "--config", cfgPath, "store", "list")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/frog\n", out)

	out, err = execute(t, "--config", cfgPath, "store", "get", "https://example.org/frog")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "1.1", doc["version"])

	out, err = execute(t, "--config", cfgPath, "store", "get", "https://example.org/frog", "-f", "turtle")
	require.NoError(t, err)
	assert.Contains(t, out, `schema:version "1.1"`)

	_, err = execute(t, "--config", cfgPath, "store", "delete", "https://example.org/frog")
	require.NoError(t, err)

	_, err = execute(t, "--config", cfgPath, "store", "get", "https://example.org/frog")
	assert.ErrorContains(t, err, "not found")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "crosswalk version "+Version+" (build: "+BuildTime+")\n", out)
}
