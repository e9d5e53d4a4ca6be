// Package python implements the Python language frontend using
// tree-sitter, grounded on the teacher's pkg/extractor/python.go for the
// function/class walking style and pkg/callgraph/callgraph.go's
// extractCall for how "call"/"attribute" nodes are dispatched.
package python

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"gopkg.in/yaml.v3"

	"github.com/trackast/trackast/pkg/ast"
	"github.com/trackast/trackast/pkg/errs"
	"github.com/trackast/trackast/pkg/frontend"
	"github.com/trackast/trackast/pkg/frontend/paramparse"
)

//go:embed known_external.yaml
var knownExternalYAML []byte

var knownExternalPrefixes = mustLoadPrefixes()

type prefixList struct {
	Prefixes []string `yaml:"prefixes"`
}

func mustLoadPrefixes() map[string]struct{} {
	var pl prefixList
	if err := yaml.Unmarshal(knownExternalYAML, &pl); err != nil {
		panic(fmt.Sprintf("python: parsing embedded known_external.yaml: %v", err))
	}
	out := make(map[string]struct{}, len(pl.Prefixes))
	for _, p := range pl.Prefixes {
		out[p] = struct{}{}
	}
	return out
}

var parserPool = sync.Pool{
	New: func() interface{} {
		p := sitter.NewParser()
		p.SetLanguage(python.GetLanguage())
		return p
	},
}

// Frontend is the Python language frontend.
type Frontend struct{}

// New returns a Python frontend.
func New() *Frontend { return &Frontend{} }

func (f *Frontend) Language() frontend.Language { return frontend.Python }
func (f *Frontend) Extensions() []string        { return []string{".py", ".pyw"} }
func (f *Frontend) ModuleSeparator() string     { return "." }
func (f *Frontend) ModuleFileExt() string       { return "py" }
func (f *Frontend) IndexBasename() string       { return "__init__" }

func (f *Frontend) IsKnownExternal(specifier string) bool {
	first := specifier
	if idx := strings.Index(specifier, "."); idx >= 0 {
		first = specifier[:idx]
	}
	_, known := knownExternalPrefixes[first]
	return known
}

func (f *Frontend) parse(content []byte) (*sitter.Tree, error) {
	p := parserPool.Get().(*sitter.Parser)
	defer parserPool.Put(p)
	tree := p.Parse(nil, content)
	if tree == nil {
		return nil, fmt.Errorf("parsing failed")
	}
	return tree, nil
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

// TranslateFile parses a Python source file into an AbstractAST.
// Top-level functions, class methods ("Class.method"), and nested
// functions ("outer.inner") are all returned as FunctionDefs.
func (f *Frontend) TranslateFile(path, modulePath string) (*ast.AbstractAST, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.IoError{Path: path, Err: err}
	}
	tree, err := f.parse(content)
	if err != nil {
		return nil, &errs.ParseFailure{Path: path, Detail: err.Error()}
	}
	defer tree.Close()

	w := &walker{content: content, module: modulePath}
	w.walk(tree.RootNode(), "")
	return &ast.AbstractAST{ModulePath: modulePath, Functions: w.defs}, nil
}

type walker struct {
	content []byte
	module  string
	defs    []ast.FunctionDef
}

// walk visits node, threading scope (the dotted prefix of enclosing
// classes/functions, empty at module level) through recursion.
func (w *walker) walk(node *sitter.Node, scope string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_definition":
		name := w.identifierChild(node)
		body := w.fieldOrTyped(node, "body")
		newScope := name
		if scope != "" {
			newScope = scope + "." + name
		}
		if body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				w.walk(body.Child(i), newScope)
			}
		}
		return

	case "function_definition":
		fn := w.parseFunction(node, scope)
		if fn == nil {
			return
		}
		w.defs = append(w.defs, *fn)
		body := w.fieldOrTyped(node, "body")
		if body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				w.walk(body.Child(i), fn.Name)
			}
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), scope)
	}
}

func (w *walker) identifierChild(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && c.Type() == "identifier" {
			return nodeText(c, w.content)
		}
	}
	return ""
}

func (w *walker) fieldOrTyped(node *sitter.Node, field string) *sitter.Node {
	if n := node.ChildByFieldName(field); n != nil {
		return n
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c != nil && c.Type() == "block" {
			return c
		}
	}
	return nil
}

func (w *walker) parseFunction(node *sitter.Node, scope string) *ast.FunctionDef {
	name := w.identifierChild(node)
	if name == "" {
		return nil
	}
	scopedName := name
	if scope != "" {
		scopedName = scope + "." + name
	}

	var sig ast.Signature
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "parameters":
			sig.Params = parseParams(nodeText(c, w.content))
		case "type":
			sig.ReturnType = nodeText(c, w.content)
		}
	}
	if sig.ReturnType == "" {
		sig.ReturnType = "None"
	}

	// self/cls are implicit receivers; drop them for methods, matching
	// how the module treats implContext-scoped names for other languages.
	isMethod := strings.Contains(scopedName, ".") && len(sig.Params) > 0 &&
		(sig.Params[0].Name == "self" || sig.Params[0].Name == "cls")
	if isMethod {
		sig.Params = sig.Params[1:]
	}

	className := ""
	if idx := strings.LastIndex(scope, "."); idx >= 0 {
		className = scope[idx+1:]
	} else {
		className = scope
	}

	var calls []ast.FunctionCall
	body := w.fieldOrTyped(node, "body")
	if body != nil {
		w.collectCalls(body, className, &calls)
	}

	return &ast.FunctionDef{Name: scopedName, Signature: sig, Module: w.module, Calls: calls}
}

// collectCalls records "call" nodes, resolving "self.method(...)" and
// "cls.method(...)" to "<className>.method" when className is known.
func (w *walker) collectCalls(node *sitter.Node, className string, out *[]ast.FunctionCall) {
	if node == nil {
		return
	}
	if node.Type() == "call" && node.ChildCount() > 0 {
		fn := node.Child(0)
		line := int(node.StartPoint().Row) + 1
		switch fn.Type() {
		case "identifier":
			*out = append(*out, ast.FunctionCall{TargetName: nodeText(fn, w.content), Line: line})
		case "attribute":
			base, method := attributeParts(fn, w.content)
			if (base == "self" || base == "cls") && className != "" {
				*out = append(*out, ast.FunctionCall{TargetName: className + "." + method, Line: line})
			} else {
				// module.func() or obj.method() -- treat the base as an
				// explicit target-module hint; when no function of that
				// name exists in that module, the resolver records an
				// external call rather than searching by simple name.
				*out = append(*out, ast.FunctionCall{TargetModule: base, TargetName: method, Line: line})
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.collectCalls(node.Child(i), className, out)
	}
}

// attributeParts splits an "attribute" node "a.b.c" into base "a.b" and
// method "c".
func attributeParts(node *sitter.Node, content []byte) (base, method string) {
	obj := node.ChildByFieldName("object")
	attr := node.ChildByFieldName("attribute")
	if attr != nil {
		method = nodeText(attr, content)
	}
	if obj != nil {
		base = nodeText(obj, content)
	}
	return base, method
}

func parseParams(raw string) []ast.Param {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	var params []ast.Param
	for _, part := range paramparse.SplitTopLevel(raw) {
		// Strip default values ("x=1" -> "x").
		if idx := strings.Index(part, "="); idx >= 0 && !strings.Contains(part[:idx], ":") {
			part = strings.TrimSpace(part[:idx])
		}
		name, typ := paramparse.NameType(part)
		if name == "" && typ != "" && !strings.Contains(typ, "=") {
			name = typ
			typ = ""
		}
		params = append(params, ast.Param{Name: name, Type: typ})
	}
	return params
}

// ExtractImports returns every top-level "import x" / "from x import y"
// declaration in path.
func (f *Frontend) ExtractImports(path string) ([]frontend.Import, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.IoError{Path: path, Err: err}
	}
	tree, err := f.parse(content)
	if err != nil {
		return nil, &errs.ParseFailure{Path: path, Detail: err.Error()}
	}
	defer tree.Close()

	var imports []frontend.Import
	walkImports(tree.RootNode(), content, &imports)
	return imports, nil
}

func walkImports(node *sitter.Node, content []byte, out *[]frontend.Import) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "import_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			if c == nil {
				continue
			}
			switch c.Type() {
			case "dotted_name", "identifier":
				*out = append(*out, frontend.Import{Target: nodeText(c, content)})
			case "aliased_import":
				name := c.ChildByFieldName("name")
				alias := c.ChildByFieldName("alias")
				if name != nil {
					imp := frontend.Import{Target: nodeText(name, content)}
					if alias != nil {
						imp.Alias = nodeText(alias, content)
					}
					*out = append(*out, imp)
				}
			}
		}
		return
	case "import_from_statement":
		moduleNode := node.ChildByFieldName("module_name")
		if moduleNode == nil {
			return
		}
		target := nodeText(moduleNode, content)
		if strings.HasPrefix(target, ".") {
			target = strings.TrimLeft(target, ".")
			if target == "" {
				// "from . import helpers[, more]" - each imported name is
				// itself a sibling submodule, not an attribute of one.
				for i := 0; i < int(node.ChildCount()); i++ {
					c := node.Child(i)
					if c != nil && c.Type() == "dotted_name" && c != moduleNode {
						*out = append(*out, frontend.Import{Target: nodeText(c, content)})
					}
				}
				return
			}
		}
		*out = append(*out, frontend.Import{Target: target})
		return
	case "function_definition":
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkImports(node.Child(i), content, out)
	}
}
