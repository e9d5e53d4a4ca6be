// Package loader implements the module loader from spec §4.3: starting
// from one entry file, it recursively discovers dependencies by asking
// the frontend for imports, resolves import specifiers to filesystem
// paths under a configured root, and yields the merged Abstract AST.
//
// Grounded on _examples/original_source/trackast/src/module_loader.rs
// for the worklist/loaded-set algorithm and the candidate-file
// resolution order. Runs single-threaded and synchronously per spec §5;
// the teacher's own cross-file resolver (pkg/callgraph/resolver.go)
// parallelizes this with goroutines, which this package deliberately
// does not copy.
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/trackast/trackast/internal/log"
	"github.com/trackast/trackast/pkg/ast"
	"github.com/trackast/trackast/pkg/errs"
	"github.com/trackast/trackast/pkg/frontend"
)

// Options configures one Load call.
type Options struct {
	Root     string // module-resolution root
	Discover bool   // follow imports if true; translate only the entry file if false
	Logger   log.Logger
}

// Load runs the worklist algorithm from spec §4.3 starting at entry,
// using f to translate files and discover imports. Returns the
// concatenation of every visited file's AbstractAST, in the order the
// files were translated (the worklist is processed last-in, first-out).
func Load(f frontend.Frontend, entry string, opts Options) ([]ast.AbstractAST, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.Component("loader")

	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return nil, &errs.IoError{Path: entry, Err: err}
	}
	root := opts.Root
	if root == "" {
		root = filepath.Dir(absEntry)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &errs.IoError{Path: root, Err: err}
	}

	if _, err := os.Stat(absEntry); err != nil {
		return nil, &errs.IoError{Path: absEntry, Err: err}
	}

	worklist := []string{absEntry}
	loaded := make(map[string]bool)
	var out []ast.AbstractAST

	for len(worklist) > 0 {
		n := len(worklist) - 1
		file := worklist[n]
		worklist = worklist[:n]

		canon, err := filepath.EvalSymlinks(file)
		if err != nil {
			canon = file
		}
		if loaded[canon] {
			continue
		}
		loaded[canon] = true

		modulePath := deriveModulePath(file, absRoot, f.ModuleSeparator())

		tree, err := f.TranslateFile(file, modulePath)
		if err != nil {
			if file == absEntry {
				return nil, err
			}
			logger.Warn("dropping unreadable dependency", "path", file, "error", err.Error())
			continue
		}
		out = append(out, *tree)

		if !opts.Discover {
			continue
		}

		imports, err := f.ExtractImports(file)
		if err != nil {
			logger.Warn("failed to extract imports", "path", file, "error", err.Error())
			continue
		}

		for _, imp := range imports {
			resolved, ok := resolveModule(f, absRoot, imp.Target)
			if !ok {
				logger.Debug("unresolved import", "specifier", imp.Target)
				continue
			}
			c, err := filepath.EvalSymlinks(resolved)
			if err != nil {
				c = resolved
			}
			if !loaded[c] {
				worklist = append(worklist, resolved)
			}
		}
	}

	return out, nil
}

// deriveModulePath strips file's extension, makes it relative to root,
// and joins path segments with the frontend's separator (spec §4.3
// step 2a).
func deriveModulePath(file, root, sep string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	segments := strings.Split(filepath.ToSlash(rel), "/")
	return strings.Join(segments, sep)
}

// resolveModule implements module resolution from spec §4.3: translate
// the specifier's separators to filesystem separators, try
// "root/<path>.<ext>" then "root/<path>/<index>.<ext>", excluding known
// externals.
func resolveModule(f frontend.Frontend, root, specifier string) (string, bool) {
	if f.IsKnownExternal(specifier) {
		return "", false
	}

	sep := f.ModuleSeparator()
	relPath := specifier
	if sep != "" {
		relPath = strings.ReplaceAll(specifier, sep, string(filepath.Separator))
	}
	// Some frontends (JS) write import specifiers with the file extension
	// already attached ("./utils.js"); strip it so it isn't doubled below.
	relPath = strings.TrimSuffix(relPath, "."+f.ModuleFileExt())

	candidate1 := filepath.Join(root, relPath+"."+f.ModuleFileExt())
	if fileExists(candidate1) {
		return candidate1, true
	}

	candidate2 := filepath.Join(root, relPath, f.IndexBasename()+"."+f.ModuleFileExt())
	if fileExists(candidate2) {
		return candidate2, true
	}

	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
