package python

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "m.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTranslateFileExternalCall(t *testing.T) {
	path := writeFile(t, "def main():\n    print(\"hi\")\n")
	f := New()
	tree, err := f.TranslateFile(path, "m")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 1)
	assert.Equal(t, "main", tree.Functions[0].Name)
	require.Len(t, tree.Functions[0].Calls, 1)
	assert.Equal(t, "print", tree.Functions[0].Calls[0].TargetName)
}

func TestTranslateFileClassMethod(t *testing.T) {
	path := writeFile(t, `
class Server:
    def start(self):
        self.listen()

    def listen(self):
        pass
`)
	f := New()
	tree, err := f.TranslateFile(path, "server")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 2)
	assert.Equal(t, "Server.start", tree.Functions[0].Name)
	require.Len(t, tree.Functions[0].Calls, 1)
	assert.Equal(t, "Server.listen", tree.Functions[0].Calls[0].TargetName)
}

func TestTranslateFileDropsSelfParam(t *testing.T) {
	path := writeFile(t, `
class Widget:
    def resize(self, w, h):
        pass
`)
	f := New()
	tree, err := f.TranslateFile(path, "widget")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 1)
	require.Len(t, tree.Functions[0].Signature.Params, 2)
	assert.Equal(t, "w", tree.Functions[0].Signature.Params[0].Name)
}

func TestExtractImports(t *testing.T) {
	path := writeFile(t, `
import os
import numpy as np
from collections import OrderedDict
from . import helpers
`)
	f := New()
	imports, err := f.ExtractImports(path)
	require.NoError(t, err)
	require.Len(t, imports, 4)
	assert.Equal(t, "os", imports[0].Target)
	assert.Equal(t, "numpy", imports[1].Target)
	assert.Equal(t, "np", imports[1].Alias)
	assert.Equal(t, "collections", imports[2].Target)
	assert.Equal(t, "helpers", imports[3].Target)
}

func TestIsKnownExternal(t *testing.T) {
	f := New()
	assert.True(t, f.IsKnownExternal("os.path"))
	assert.True(t, f.IsKnownExternal("json"))
	assert.False(t, f.IsKnownExternal("myapp.models"))
}

func TestModuleResolutionProperties(t *testing.T) {
	f := New()
	assert.Equal(t, ".", f.ModuleSeparator())
	assert.Equal(t, "py", f.ModuleFileExt())
	assert.Equal(t, "__init__", f.IndexBasename())
}
