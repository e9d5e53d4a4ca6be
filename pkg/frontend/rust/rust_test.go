package rust

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
	path := filepath.Join(dir, "f.rs")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTranslateFileSingleFileRecursion(t *testing.T) {
	path := writeFile(t, "fn a() { a(); b(); }\nfn b() {}\n")
	f := New()
	tree, err := f.TranslateFile(path, "f")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 2)

	a := tree.Functions[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "()", a.Signature.ReturnType)
	require.Len(t, a.Calls, 2)
	assert.Equal(t, "a", a.Calls[0].TargetName)
	assert.Equal(t, "b", a.Calls[1].TargetName)

	b := tree.Functions[1]
	assert.Equal(t, "b", b.Name)
	assert.Empty(t, b.Calls)
}

func TestTranslateFileImplMethod(t *testing.T) {
	path := writeFile(t, `
struct Server {}
impl Server {
    fn start(&self) {
        self.listen();
    }
    fn listen(&self) {}
}
`)
	f := New()
	tree, err := f.TranslateFile(path, "server")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 2)
	assert.Equal(t, "Server::start", tree.Functions[0].Name)
	assert.Equal(t, "Server::listen", tree.Functions[0].Calls[0].TargetName)
}

func TestTranslateFileScopedCall(t *testing.T) {
	path := writeFile(t, `
fn main() {
    other::helper();
}
`)
	f := New()
	tree, err := f.TranslateFile(path, "main")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 1)
	require.Len(t, tree.Functions[0].Calls, 1)
	assert.Equal(t, "other", tree.Functions[0].Calls[0].TargetModule)
	assert.Equal(t, "helper", tree.Functions[0].Calls[0].TargetName)
}

func TestTranslateFileActixRoutingCaptureRecordsHandlerAsCall(t *testing.T) {
	path := writeFile(t, `
fn configure() {
    App::new().route("/", web::get().to(handler));
}
fn handler() {}
`)
	f := New()
	tree, err := f.TranslateFile(path, "app")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 2)

	configure := tree.Functions[0]
	assert.Equal(t, "configure", configure.Name)

	var sawHandler bool
	for _, c := range configure.Calls {
		if c.TargetName == "handler" {
			sawHandler = true
		}
	}
	assert.True(t, sawHandler, "expected the .to(handler) routing builder call to record a call to handler")
}

func TestTranslateFileActixRoutingCaptureIgnoresNonIdentifierArgs(t *testing.T) {
	path := writeFile(t, `
fn configure() {
    App::new().route("/", web::get().to(other::handler));
}
`)
	f := New()
	tree, err := f.TranslateFile(path, "app")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 1)

	for _, c := range tree.Functions[0].Calls {
		assert.NotEqual(t, "other::handler", c.TargetName)
	}
}

func TestTranslateFileModulePseudoFunctionCapturesTopLevelCalls(t *testing.T) {
	path := writeFile(t, "fn helper() {}\nhelper();\n")
	f := New()
	tree, err := f.TranslateFile(path, "main")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 2)

	assert.Equal(t, "helper", tree.Functions[0].Name)

	moduleFn := tree.Functions[1]
	assert.Equal(t, "<module>", moduleFn.Name)
	require.Len(t, moduleFn.Calls, 1)
	assert.Equal(t, "helper", moduleFn.Calls[0].TargetName)
}

func TestTranslateFileNoModulePseudoFunctionWhenNoTopLevelCalls(t *testing.T) {
	path := writeFile(t, "fn helper() {}\n")
	f := New()
	tree, err := f.TranslateFile(path, "main")
	require.NoError(t, err)
	require.Len(t, tree.Functions, 1)
	assert.Equal(t, "helper", tree.Functions[0].Name)
}

func TestExtractImportsSimpleAndAliased(t *testing.T) {
	path := writeFile(t, `
use std::collections::HashMap;
use serde::Serialize as Ser;
`)
	f := New()
	imports, err := f.ExtractImports(path)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "std::collections::HashMap", imports[0].Target)
	assert.Equal(t, "serde::Serialize", imports[1].Target)
	assert.Equal(t, "Ser", imports[1].Alias)
}

func TestIsKnownExternal(t *testing.T) {
	f := New()
	assert.True(t, f.IsKnownExternal("std::collections::HashMap"))
	assert.True(t, f.IsKnownExternal("serde::Serialize"))
	assert.False(t, f.IsKnownExternal("my_crate::module"))
}

func TestModuleResolutionProperties(t *testing.T) {
	f := New()
	assert.Equal(t, "::", f.ModuleSeparator())
	assert.Equal(t, "rs", f.ModuleFileExt())
	assert.Equal(t, "mod", f.IndexBasename())
	assert.Equal(t, []string{".rs"}, f.Extensions())
}
