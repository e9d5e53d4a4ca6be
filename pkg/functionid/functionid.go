// Package functionid implements the deterministic FunctionId scheme:
// generate_id in spec terms.
package functionid

import (
	"strings"

	"github.com/trackast/trackast/pkg/ast"
)

// FunctionId is the canonical "<module>::<name>::<signature-display>"
// identifier. Identity of a FunctionDef is equality of its FunctionId.
type FunctionId string

// Generate concatenates module, name, and the signature's canonical
// display with "::" separators. Pure and total; the inverse is not
// required, IDs are never parsed back.
func Generate(module, name string, sig ast.Signature) FunctionId {
	var b strings.Builder
	b.WriteString(module)
	b.WriteString("::")
	b.WriteString(name)
	b.WriteString("::")
	b.WriteString(sig.Display())
	return FunctionId(b.String())
}

// Of is a convenience for generating the id of a FunctionDef directly.
func Of(f ast.FunctionDef) FunctionId {
	return Generate(f.Module, f.Name, f.Signature)
}

// External synthesizes the id for an unresolved external callee, per
// spec §4.4 phase 3 step 3: "<external>::<target_name>::()". The
// signature slot is the bare literal "()", not the display form of an
// empty Signature ("() -> ()") - ground truth hardcodes the literal
// rather than computing it.
func External(targetName string) FunctionId {
	var b strings.Builder
	b.WriteString("<external>")
	b.WriteString("::")
	b.WriteString(targetName)
	b.WriteString("::()")
	return FunctionId(b.String())
}
