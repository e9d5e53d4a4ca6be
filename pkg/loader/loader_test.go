package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackast/trackast/pkg/frontend/javascript"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDiscoversDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "utils.js", "function loadData() {}\n")
	entry := writeFile(t, dir, "main.js", `
const { loadData } = require('./utils.js');
function mainEntry() {
    loadData();
}
`)

	f := javascript.New()
	trees, err := Load(f, entry, Options{Root: dir, Discover: true})
	require.NoError(t, err)

	var allFns []string
	for _, tr := range trees {
		for _, fn := range tr.Functions {
			allFns = append(allFns, fn.Name)
		}
	}
	assert.Contains(t, allFns, "mainEntry")
	assert.Contains(t, allFns, "loadData")
}

func TestLoadNoDiscoverTranslatesOnlyEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "utils.js", "function loadData() {}\n")
	entry := writeFile(t, dir, "main.js", `
const { loadData } = require('./utils.js');
function mainEntry() {
    loadData();
}
`)

	f := javascript.New()
	trees, err := Load(f, entry, Options{Root: dir, Discover: false})
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, "main", trees[0].ModulePath)
}

func TestLoadFatalOnMissingEntry(t *testing.T) {
	dir := t.TempDir()
	f := javascript.New()
	_, err := Load(f, filepath.Join(dir, "missing.js"), Options{Root: dir, Discover: true})
	assert.Error(t, err)
}

func TestLoadDropsUnresolvedImportSilently(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.js", `
const missing = require('./does-not-exist.js');
function mainEntry() {}
`)
	f := javascript.New()
	trees, err := Load(f, entry, Options{Root: dir, Discover: true})
	require.NoError(t, err)
	require.Len(t, trees, 1)
}
