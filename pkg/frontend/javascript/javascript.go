// Package javascript implements the JavaScript language frontend using
// tree-sitter, grounded on the teacher's pkg/extractor/typescript_imports.go
// for the import_statement/require walking style (JS import syntax is a
// subset of TypeScript's) and on other_examples/AleutianAI-AleutianFOSS__javascript_parser.go
// for the call_expression "function"/"arguments"/"object"/"property"
// field names, using the javascript grammar directly rather than
// borrowing the TypeScript parser.
package javascript

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
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
		panic(fmt.Sprintf("javascript: parsing embedded known_external.yaml: %v", err))
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
		p.SetLanguage(javascript.GetLanguage())
		return p
	},
}

// Frontend is the JavaScript language frontend.
type Frontend struct{}

// New returns a JavaScript frontend.
func New() *Frontend { return &Frontend{} }

func (f *Frontend) Language() frontend.Language { return frontend.JavaScript }
func (f *Frontend) Extensions() []string        { return []string{".js", ".mjs", ".cjs"} }
func (f *Frontend) ModuleSeparator() string     { return "/" }
func (f *Frontend) ModuleFileExt() string       { return "js" }
func (f *Frontend) IndexBasename() string       { return "index" }

func (f *Frontend) IsKnownExternal(specifier string) bool {
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return false
	}
	first := specifier
	if idx := strings.Index(specifier, "/"); idx >= 0 {
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

// TranslateFile parses a JavaScript source file into an AbstractAST.
// Function declarations, expressions assigned to a name, and class
// methods ("Class/method") are returned as FunctionDefs.
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

func (w *walker) walk(node *sitter.Node, scope string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_declaration":
		name := w.identifierChild(node)
		newScope := name
		if scope != "" {
			newScope = scope + "/" + name
		}
		body := node.ChildByFieldName("body")
		if body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				w.walk(body.Child(i), newScope)
			}
		}
		return

	case "function_declaration", "method_definition", "generator_function_declaration":
		fn := w.parseFunction(node, scope)
		if fn != nil {
			w.defs = append(w.defs, *fn)
		}
		return

	case "variable_declarator":
		// const foo = function(...) {...} / const foo = (...) => {...}
		nameNode := node.ChildByFieldName("name")
		valueNode := node.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			break
		}
		if valueNode.Type() == "arrow_function" || valueNode.Type() == "function_expression" {
			fn := w.parseAnonymousFunction(valueNode, nodeText(nameNode, w.content), scope)
			if fn != nil {
				w.defs = append(w.defs, *fn)
			}
			return
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), scope)
	}
}

func (w *walker) identifierChild(node *sitter.Node) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return nodeText(n, w.content)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && (c.Type() == "identifier" || c.Type() == "property_identifier") {
			return nodeText(c, w.content)
		}
	}
	return ""
}

func (w *walker) parseFunction(node *sitter.Node, scope string) *ast.FunctionDef {
	name := w.identifierChild(node)
	if name == "" {
		return nil
	}
	return w.buildDef(node, name, scope)
}

func (w *walker) parseAnonymousFunction(node *sitter.Node, name, scope string) *ast.FunctionDef {
	return w.buildDef(node, name, scope)
}

func (w *walker) buildDef(node *sitter.Node, name, scope string) *ast.FunctionDef {
	scopedName := name
	if scope != "" {
		scopedName = scope + "/" + name
	}

	var sig ast.Signature
	if params := node.ChildByFieldName("parameters"); params != nil {
		sig.Params = parseParams(nodeText(params, w.content))
	}
	sig.ReturnType = "undefined"

	var calls []ast.FunctionCall
	if body := node.ChildByFieldName("body"); body != nil {
		w.collectCalls(body, &calls)
	}

	return &ast.FunctionDef{Name: scopedName, Signature: sig, Module: w.module, Calls: calls}
}

func (w *walker) collectCalls(node *sitter.Node, out *[]ast.FunctionCall) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		fn := node.ChildByFieldName("function")
		line := int(node.StartPoint().Row) + 1
		if fn != nil {
			switch fn.Type() {
			case "identifier":
				*out = append(*out, ast.FunctionCall{TargetName: nodeText(fn, w.content), Line: line})
			case "member_expression":
				obj := fn.ChildByFieldName("object")
				prop := fn.ChildByFieldName("property")
				if prop != nil {
					method := nodeText(prop, w.content)
					if obj != nil {
						*out = append(*out, ast.FunctionCall{TargetModule: nodeText(obj, w.content), TargetName: method, Line: line})
					} else {
						*out = append(*out, ast.FunctionCall{TargetName: method, Line: line})
					}
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.collectCalls(node.Child(i), out)
	}
}

func parseParams(raw string) []ast.Param {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	var params []ast.Param
	for _, part := range paramparse.SplitTopLevel(raw) {
		if idx := strings.Index(part, "="); idx >= 0 {
			part = strings.TrimSpace(part[:idx])
		}
		name, typ := paramparse.NameType(part)
		if name == "" {
			name = typ
			typ = ""
		}
		params = append(params, ast.Param{Name: name, Type: typ})
	}
	return params
}

// ExtractImports returns every "import ... from '...'" and
// "require('...')" declaration in path.
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
		var alias string
		src := node.ChildByFieldName("source")
		clause := node.ChildByFieldName("import_clause")
		if clause != nil {
			alias = firstBindingName(clause, content)
		}
		if src != nil {
			*out = append(*out, frontend.Import{Alias: alias, Target: unquote(nodeText(src, content))})
		}
		return
	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Type() == "identifier" && nodeText(fn, content) == "require" {
			args := node.ChildByFieldName("arguments")
			if args != nil {
				for i := 0; i < int(args.ChildCount()); i++ {
					arg := args.Child(i)
					if arg != nil && arg.Type() == "string" {
						*out = append(*out, frontend.Import{Target: unquote(nodeText(arg, content))})
						break
					}
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkImports(node.Child(i), content, out)
	}
}

func firstBindingName(clause *sitter.Node, content []byte) string {
	for i := 0; i < int(clause.ChildCount()); i++ {
		c := clause.Child(i)
		if c != nil && (c.Type() == "identifier" || c.Type() == "namespace_import") {
			return nodeText(c, content)
		}
	}
	return ""
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
