// Package frontend defines the language frontend capability from spec
// §4.2: given a source file and a logical module path, produce an
// Abstract AST plus the import declarations the file makes. Concrete
// frontends (one per supported language) are collaborators registered
// here by file extension.
package frontend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/trackast/trackast/pkg/ast"
	"github.com/trackast/trackast/pkg/errs"
)

// Language is a frontend's language tag, selected by file extension.
type Language string

const (
	Rust       Language = "rust"
	Python     Language = "python"
	JavaScript Language = "javascript"
)

// Import is a module-level import declaration: the local alias
// introduced (if any) and the target module specifier as written.
type Import struct {
	Alias  string
	Target string
}

// Frontend is a language-specific adapter satisfying spec §4.2. It must
// not resolve calls; TranslateFile records every call site exactly as
// written syntactically, leaving resolution to pkg/builder.
type Frontend interface {
	// Language returns this frontend's language tag.
	Language() Language

	// Extensions lists the file extensions this frontend claims,
	// including the leading dot (e.g. ".rs").
	Extensions() []string

	// ModuleSeparator is the language-appropriate module path
	// separator used to join path segments into a module path
	// ("::" Rust-style, "." Python-style, "/" JS-style).
	ModuleSeparator() string

	// ModuleFileExt is the file extension (without the leading dot)
	// used by the first module resolution candidate,
	// "root/<path>.<ext>".
	ModuleFileExt() string

	// IndexBasename is the filename stem (without extension) used by
	// the second module resolution candidate,
	// "root/<path>/<index>.<ext>" (e.g. "mod", "__init__", "index").
	IndexBasename() string

	// IsKnownExternal reports whether specifier names a standard
	// library module or well-known ecosystem prefix that module
	// resolution should never attempt to load from the local root.
	IsKnownExternal(specifier string) bool

	// TranslateFile parses path and returns its Abstract AST, with
	// every FunctionDef's Module field set to modulePath verbatim.
	TranslateFile(path, modulePath string) (*ast.AbstractAST, error)

	// ExtractImports returns the module-level import declarations
	// path makes, in source order.
	ExtractImports(path string) ([]Import, error)
}

// Registry dispatches to a Frontend by file extension.
type Registry struct {
	byExt  map[string]Frontend
	byLang map[Language]Frontend
}

// NewRegistry builds a registry from a set of frontends, indexing each
// by every extension it claims and by its language tag.
func NewRegistry(frontends ...Frontend) *Registry {
	r := &Registry{
		byExt:  make(map[string]Frontend),
		byLang: make(map[Language]Frontend),
	}
	for _, f := range frontends {
		r.byLang[f.Language()] = f
		for _, ext := range f.Extensions() {
			r.byExt[ext] = f
		}
	}
	return r
}

// ForPath returns the frontend registered for path's extension.
func (r *Registry) ForPath(path string) (Frontend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := r.byExt[ext]
	if !ok {
		return nil, &errs.UnsupportedLanguage{Ext: ext}
	}
	return f, nil
}

// ForLanguage returns the frontend registered for the given language tag.
func (r *Registry) ForLanguage(lang Language) (Frontend, error) {
	f, ok := r.byLang[lang]
	if !ok {
		return nil, fmt.Errorf("no frontend registered for language %q", lang)
	}
	return f, nil
}

// DetectLanguage implements spec §6's extension-based language
// detection: .rs -> rust, .py -> python, .js/.mjs -> javascript.
func DetectLanguage(path string) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rs":
		return Rust, nil
	case ".py":
		return Python, nil
	case ".js", ".mjs":
		return JavaScript, nil
	default:
		return "", &errs.UnsupportedLanguage{Ext: filepath.Ext(path)}
	}
}
