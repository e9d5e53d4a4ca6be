// Package builder converts a merged AbstractAST into a CallGraph,
// implementing the four-phase call resolver + graph builder from spec §4.4.
package builder

import (
	"sort"
	"strings"

	"github.com/trackast/trackast/pkg/ast"
	"github.com/trackast/trackast/pkg/errs"
	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
)

// Build runs all four phases over defs (the merged AbstractAST's
// functions) and returns the resulting CallGraph.
//
// Phase 1 indexes every FunctionId, failing fast on a duplicate. Phase 2
// creates one internal node per definition, in input order. Phase 3
// resolves every call site to a target FunctionId, synthesizing external
// leaves for anything it can't resolve. Phase 4 validates the result.
func Build(defs []ast.FunctionDef) (*graph.CallGraph, error) {
	// Phase 1: indexing.
	byID := make(map[functionid.FunctionId]ast.FunctionDef, len(defs))
	bySimpleName := make(map[string][]functionid.FunctionId)
	for _, f := range defs {
		id := functionid.Of(f)
		if _, dup := byID[id]; dup {
			return nil, &errs.DuplicateFunction{ID: string(id)}
		}
		byID[id] = f
		bySimpleName[f.Name] = append(bySimpleName[f.Name], id)
	}

	// Phase 2: node creation, stable insertion order over the input.
	g := graph.New()
	for _, f := range defs {
		id := functionid.Of(f)
		if err := g.InsertNode(graph.Node{ID: id, IsExternal: false, Metadata: f}); err != nil {
			return nil, err
		}
	}

	// Phase 3: call resolution.
	for _, f := range defs {
		fromID := functionid.Of(f)
		for _, c := range f.Calls {
			resolved := resolveCall(f, c, byID, bySimpleName)
			if _, ok := g.GetNode(resolved); !ok {
				if err := g.InsertNode(graph.Node{ID: resolved, IsExternal: true}); err != nil {
					return nil, err
				}
			}
			if err := g.InsertEdge(graph.Edge{From: fromID, To: resolved, Line: c.Line}); err != nil {
				return nil, err
			}
		}
	}

	// Phase 4: validation.
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// resolveCall implements spec §4.4 phase 3 steps 1-3.
func resolveCall(
	f ast.FunctionDef,
	c ast.FunctionCall,
	byID map[functionid.FunctionId]ast.FunctionDef,
	bySimpleName map[string][]functionid.FunctionId,
) functionid.FunctionId {
	// Step 1: explicit target module - match by module+name, permitting
	// any signature, tie-broken by lexicographically smallest display.
	// A qualified call that names a module goes straight to step 3 on
	// failure; it must never fall back to the unqualified search below,
	// or a call to a nonexistent function in a named module could
	// silently resolve to an unrelated same-named function elsewhere.
	if c.TargetModule != "" {
		if id, ok := bestMatchInModule(c.TargetModule, c.TargetName, byID); ok {
			return id
		}
		return functionid.External(c.TargetName)
	}

	// Step 2 (else): search f.module, then walk up the module hierarchy
	// one segment at a time, matching by simple name.
	if id, ok := ancestorWalk(f.Module, c.TargetName, byID, bySimpleName); ok {
		return id
	}

	// Global simple-name fallback (spec §8 scenario 5): if the ancestor
	// walk found nothing, use the only candidate with that simple name if
	// exactly one exists, else the lexicographically smallest.
	if candidates := bySimpleName[c.TargetName]; len(candidates) > 0 {
		return smallest(candidates)
	}

	// Step 3: synthesize an external leaf.
	return functionid.External(c.TargetName)
}

// bestMatchInModule finds every FunctionId generated from (module, name,
// *) and returns the one with the lexicographically smallest signature
// display.
func bestMatchInModule(module, name string, byID map[functionid.FunctionId]ast.FunctionDef) (functionid.FunctionId, bool) {
	var matches []functionid.FunctionId
	for id, f := range byID {
		if f.Module == module && f.Name == name {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	return smallest(matches), true
}

// ancestorWalk searches module, then each ancestor module (as computed by
// ancestorModules, shrinking one segment at a time), then the root/empty module,
// matching candidates by simple name. Ties within one level are broken
// by lexicographically smallest FunctionId.
func ancestorWalk(module, name string, byID map[functionid.FunctionId]ast.FunctionDef, bySimpleName map[string][]functionid.FunctionId) (functionid.FunctionId, bool) {
	candidates := bySimpleName[name]
	if len(candidates) == 0 {
		return "", false
	}

	for _, m := range ancestorModules(module) {
		var atLevel []functionid.FunctionId
		for _, id := range candidates {
			if byID[id].Module == m {
				atLevel = append(atLevel, id)
			}
		}
		if len(atLevel) > 0 {
			return smallest(atLevel), true
		}
	}
	return "", false
}

// moduleSeparators lists the frontend-provided module path separators
// this core is aware of (spec §4.3: "::" Rust-style, "." Python-style,
// "/" JS-style). ancestorModules is separator-agnostic: it detects
// whichever one actually occurs in the module path and walks up by it.
var moduleSeparators = []string{"::", "/", "."}

// ancestorModules returns module, then each prefix formed by dropping its
// last path segment one at a time, ending with "".
func ancestorModules(module string) []string {
	sep := ""
	for _, s := range moduleSeparators {
		if strings.Contains(module, s) {
			sep = s
			break
		}
	}
	out := []string{module}
	if sep == "" {
		if module != "" {
			out = append(out, "")
		}
		return out
	}
	cur := module
	for {
		idx := strings.LastIndex(cur, sep)
		if idx < 0 {
			break
		}
		cur = cur[:idx]
		out = append(out, cur)
	}
	if out[len(out)-1] != "" {
		out = append(out, "")
	}
	return out
}

func smallest(ids []functionid.FunctionId) functionid.FunctionId {
	sorted := make([]functionid.FunctionId, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[0]
}
