// Package rust implements the Rust language frontend using tree-sitter,
// grounded on the teacher's pkg/extractor/rust.go for the parser-pool and
// recursive node-walking style, and on
// _examples/original_source/trackast/src/translators/rust.rs for the
// impl-context threading, actix routing-call capture, and module-level
// pseudo-function behavior.
package rust

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
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
		panic(fmt.Sprintf("rust: parsing embedded known_external.yaml: %v", err))
	}
	out := make(map[string]struct{}, len(pl.Prefixes))
	for _, p := range pl.Prefixes {
		out[p] = struct{}{}
	}
	return out
}

// routingMethods are actix-web-style builder methods whose identifier
// arguments name handler functions; the original Rust implementation
// captures these as implicit calls so router registration shows up in
// the call graph.
var routingMethods = map[string]bool{
	"to": true, "service": true, "route": true, "middleware": true, "guard": true,
}

var parserPool = sync.Pool{
	New: func() interface{} {
		p := sitter.NewParser()
		p.SetLanguage(rust.GetLanguage())
		return p
	},
}

// Frontend is the Rust language frontend.
type Frontend struct{}

// New returns a Rust frontend.
func New() *Frontend { return &Frontend{} }

func (f *Frontend) Language() frontend.Language { return frontend.Rust }
func (f *Frontend) Extensions() []string        { return []string{".rs"} }
func (f *Frontend) ModuleSeparator() string     { return "::" }
func (f *Frontend) ModuleFileExt() string       { return "rs" }
func (f *Frontend) IndexBasename() string       { return "mod" }

func (f *Frontend) IsKnownExternal(specifier string) bool {
	first := specifier
	if idx := strings.Index(specifier, "::"); idx >= 0 {
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

// TranslateFile parses a Rust source file into an AbstractAST. Function
// definitions at any depth (including inside impl blocks) are returned;
// calls are recorded exactly as written.
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
	if w.moduleFn != nil {
		w.defs = append(w.defs, *w.moduleFn)
	}
	return &ast.AbstractAST{ModulePath: modulePath, Functions: w.defs}, nil
}

type walker struct {
	content  []byte
	module   string
	defs     []ast.FunctionDef
	moduleFn *ast.FunctionDef // synthesized "<module>" pseudo-function for top-level statements
}

// walk recursively visits node, tracking implContext (the enclosing impl
// block's type name, empty at top level) to scope method names.
func (w *walker) walk(node *sitter.Node, implContext string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "impl_item":
		implType := w.implTypeName(node)
		for i := 0; i < int(node.ChildCount()); i++ {
			w.walk(node.Child(i), implType)
		}
		return

	case "function_item":
		fn := w.parseFunction(node, implContext)
		if fn != nil {
			w.defs = append(w.defs, *fn)
		}
		return

	case "expression_statement", "call_expression":
		if implContext == "" && node.Parent() != nil && node.Parent().Type() == "source_file" {
			w.recordTopLevelCalls(node)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), implContext)
	}
}

func (w *walker) implTypeName(node *sitter.Node) string {
	if t := node.ChildByFieldName("type"); t != nil {
		if t.Type() == "generic_type" {
			if base := t.ChildByFieldName("type"); base != nil {
				t = base
			}
		}
		return nodeText(t, w.content)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		if c.Type() == "type_identifier" || c.Type() == "identifier" {
			return nodeText(c, w.content)
		}
	}
	return ""
}

func (w *walker) parseFunction(node *sitter.Node, implContext string) *ast.FunctionDef {
	var name string
	var sig ast.Signature
	foundArrow := false

	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "identifier":
			if name == "" {
				name = nodeText(c, w.content)
			}
		case "parameters":
			sig.Params = parseParams(nodeText(c, w.content))
		case "->":
			foundArrow = true
		case "primitive_type", "type_identifier", "scoped_type_identifier", "generic_type", "array_type", "reference_type", "unit_type", "tuple_type":
			if foundArrow && sig.ReturnType == "" {
				sig.ReturnType = nodeText(c, w.content)
			}
		}
	}
	if name == "" {
		return nil
	}
	if sig.ReturnType == "" {
		sig.ReturnType = "()"
	}
	scopedName := name
	if implContext != "" {
		scopedName = implContext + "::" + name
	}

	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c != nil && c.Type() == "block" {
			body = c
		}
	}
	var calls []ast.FunctionCall
	if body != nil {
		w.collectCalls(body, implContext, &calls)
	}

	return &ast.FunctionDef{Name: scopedName, Signature: sig, Module: w.module, Calls: calls}
}

// collectCalls walks a function body recording call sites, resolving
// self.method() to "<implContext>::method" when inside an impl block,
// and additionally capturing routingMethods' identifier arguments.
func (w *walker) collectCalls(node *sitter.Node, implContext string, out *[]ast.FunctionCall) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if c := w.callFromExpression(node, implContext); c != nil {
			*out = append(*out, *c)
		}
		if fn := node.ChildByFieldName("function"); fn != nil && fn.Type() == "field_expression" {
			method := fn.ChildByFieldName("field")
			if method != nil && routingMethods[nodeText(method, w.content)] {
				if args := node.ChildByFieldName("arguments"); args != nil {
					for i := 0; i < int(args.ChildCount()); i++ {
						a := args.Child(i)
						if a != nil && a.Type() == "identifier" {
							*out = append(*out, ast.FunctionCall{
								TargetName: nodeText(a, w.content),
								Line:       int(a.StartPoint().Row) + 1,
							})
						}
					}
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.collectCalls(node.Child(i), implContext, out)
	}
}

func (w *walker) callFromExpression(node *sitter.Node, implContext string) *ast.FunctionCall {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	line := int(node.StartPoint().Row) + 1

	switch fn.Type() {
	case "identifier":
		return &ast.FunctionCall{TargetName: nodeText(fn, w.content), Line: line}

	case "scoped_identifier":
		text := nodeText(fn, w.content)
		idx := strings.LastIndex(text, "::")
		if idx < 0 {
			return &ast.FunctionCall{TargetName: text, Line: line}
		}
		return &ast.FunctionCall{TargetModule: text[:idx], TargetName: text[idx+2:], Line: line}

	case "field_expression":
		receiver := fn.ChildByFieldName("value")
		method := fn.ChildByFieldName("field")
		if method == nil {
			return nil
		}
		name := nodeText(method, w.content)
		if receiver != nil && nodeText(receiver, w.content) == "self" && implContext != "" {
			return &ast.FunctionCall{TargetName: implContext + "::" + name, Line: line}
		}
		return &ast.FunctionCall{TargetName: name, Line: line}
	}
	return nil
}

// recordTopLevelCalls attributes top-level call expressions to a
// synthesized "<module>" pseudo-function, matching the original
// implementation's handling of module-scope setup code (e.g. actix-web
// App::new().route(...) outside any fn).
func (w *walker) recordTopLevelCalls(node *sitter.Node) {
	var calls []ast.FunctionCall
	w.collectCalls(node, "", &calls)
	if len(calls) == 0 {
		return
	}
	if w.moduleFn == nil {
		w.moduleFn = &ast.FunctionDef{Name: "<module>", Signature: ast.Empty(), Module: w.module}
	}
	w.moduleFn.Calls = append(w.moduleFn.Calls, calls...)
}

func parseParams(raw string) []ast.Param {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	var params []ast.Param
	for _, part := range paramparse.SplitTopLevel(raw) {
		if part == "self" || part == "&self" || part == "&mut self" {
			continue
		}
		name, typ := paramparse.NameType(part)
		params = append(params, ast.Param{Name: name, Type: typ})
	}
	return params
}

// ExtractImports returns every top-level use declaration in path.
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
	walkUse(tree.RootNode(), content, &imports)
	return imports, nil
}

func walkUse(node *sitter.Node, content []byte, out *[]frontend.Import) {
	if node == nil || node.Type() == "function_item" {
		return
	}
	if node.Type() == "use_declaration" {
		if imp := parseUseDeclaration(node, content); imp != nil {
			*out = append(*out, *imp)
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkUse(node.Child(i), content, out)
	}
}

// parseUseDeclaration handles the common shapes: "use a::b::c;",
// "use a::b::c as d;", and "use a::{b, c};". A use list yields a single
// Import whose Target is the list's text as written ("a::{b, c}"); it is
// not split into one Import per name.
func parseUseDeclaration(node *sitter.Node, content []byte) *frontend.Import {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "use_as_clause":
			path := c.ChildByFieldName("path")
			alias := c.ChildByFieldName("alias")
			if path == nil {
				continue
			}
			target := nodeText(path, content)
			aliasName := ""
			if alias != nil {
				aliasName = nodeText(alias, content)
			}
			return &frontend.Import{Alias: aliasName, Target: target}
		case "scoped_identifier", "identifier":
			return &frontend.Import{Target: nodeText(c, content)}
		case "scoped_use_list", "use_list":
			target := nodeText(c, content)
			return &frontend.Import{Target: target}
		}
	}
	return nil
}
