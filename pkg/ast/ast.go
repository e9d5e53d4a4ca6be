// Package ast defines the language-neutral abstract AST model that every
// frontend produces and every downstream stage (loader, builder, query,
// export) consumes.
package ast

import "strings"

// Param is a single (name, type) pair in a Signature. Name is empty when
// the source language allows unnamed parameters.
type Param struct {
	Name string
	Type string
}

// Signature is the ordered parameter list and return type of a function,
// stored as verbatim source-language text. Generic parameters are kept
// literally; there is no monomorphization.
type Signature struct {
	Params     []Param
	ReturnType string
}

// Empty returns the canonical zero-argument, zero-return signature, used
// for synthesized functions such as the Rust frontend's "<module>"
// pseudo-function. External node ids do not use it; see
// functionid.External.
func Empty() Signature {
	return Signature{ReturnType: "()"}
}

// Display renders the signature's canonical string form:
// "(p1: T1, p2: T2) -> R". A parameter with no name emits only its type.
func (s Signature) Display() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteString(": ")
		}
		b.WriteString(p.Type)
	}
	b.WriteString(") -> ")
	if s.ReturnType == "" {
		b.WriteString("()")
	} else {
		b.WriteString(s.ReturnType)
	}
	return b.String()
}

// Equal reports whether two signatures are byte-identical in their
// parameter sequence and return string.
func (s Signature) Equal(o Signature) bool {
	if s.ReturnType != o.ReturnType || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

// FunctionCall is a single unresolved call site as written syntactically.
// TargetModule is set only when the source syntax made the target module
// explicit (e.g. a qualified path); otherwise resolution is by simple name.
type FunctionCall struct {
	TargetName   string
	TargetModule string // empty when not explicit
	Line         int    // 1-based
}

// FunctionDef is a function as seen in one module.
type FunctionDef struct {
	Name      string
	Signature Signature
	Module    string
	Calls     []FunctionCall
}

// Equal reports whether two FunctionDefs match on all four fields.
func (f FunctionDef) Equal(o FunctionDef) bool {
	if f.Name != o.Name || f.Module != o.Module || !f.Signature.Equal(o.Signature) {
		return false
	}
	if len(f.Calls) != len(o.Calls) {
		return false
	}
	for i := range f.Calls {
		if f.Calls[i] != o.Calls[i] {
			return false
		}
	}
	return true
}

// AbstractAST is the translation of exactly one source file.
type AbstractAST struct {
	ModulePath string
	Functions  []FunctionDef
}

// Merge concatenates the functions of every AbstractAST in all, in order,
// into one flat FunctionDef slice: the merged sequence the builder
// consumes from the loader's one-AbstractAST-per-file output. It does not check for duplicate
// identities — that is the builder's job (spec §4.4 phase 1).
func Merge(all []AbstractAST) []FunctionDef {
	var out []FunctionDef
	for _, a := range all {
		out = append(out, a.Functions...)
	}
	return out
}
