package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/meur/gearforge/internal/console"
	"github.com/meur/gearforge/internal/extensions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHome(t *testing.T, registry string) string {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, ".vscode-server", "extensions")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extensions.json"), []byte(registry), 0o644))
	return home
}

func TestRunRegistersIntoHome(t *testing.T) {
	home := setupHome(t, `[{"identifier":{"id":"pamir-ai.pamir-welcome"}}]`)

	var buf bytes.Buffer
	require.NoError(t, run([]string{"-home", home, "-backup"}, console.NewWriter(&buf)))

	path := filepath.Join(home, ".vscode-server", "extensions", "extensions.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []extensions.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 5)
	assert.Equal(t, filepath.ToSlash(filepath.Join(home, ".vscode-server", "extensions", "pamir-ai.device-manager-1.1.0-universal")), entries[1].Location.Path)

	assert.FileExists(t, path+".bak")
	assert.Contains(t, buf.String(), "✓ Added: pamir-ai.device-manager\n")
	assert.Contains(t, buf.String(), "⊙ Already exists: pamir-ai.pamir-welcome\n")
	assert.Contains(t, buf.String(), "✓ Successfully added 4 extension(s)")
	assert.Contains(t, buf.String(), "✓ Total extensions: 5")
}

func TestRunDryRun(t *testing.T) {
	home := setupHome(t, `[]`)

	var buf bytes.Buffer
	require.NoError(t, run([]string{"-home", home, "-dry-run"}, console.NewWriter(&buf)))

	data, err := os.ReadFile(filepath.Join(home, ".vscode-server", "extensions", "extensions.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Contains(t, buf.String(), "Dry run: would add 5 extension(s)")
}

func TestRunMissingRegistry(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{"-home", t.TempDir()}, console.NewWriter(&buf))
	assert.ErrorIs(t, err, extensions.ErrRegistryNotFound)
}

func TestRunInvalidRegistry(t *testing.T) {
	registry := filepath.Join(t.TempDir(), "extensions.json")
	require.NoError(t, os.WriteFile(registry, []byte("{oops"), 0o644))

	var buf bytes.Buffer
	err := run([]string{"-registry", registry}, console.NewWriter(&buf))
	assert.ErrorIs(t, err, extensions.ErrInvalidRegistry)
}
