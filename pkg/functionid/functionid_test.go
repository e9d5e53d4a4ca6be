package functionid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trackast/trackast/pkg/ast"
)

func TestGenerate(t *testing.T) {
	sig := ast.Signature{ReturnType: "()"}
	id := Generate("f", "a", sig)
	assert.Equal(t, FunctionId("f::a::() -> ()"), id)
}

func TestOf(t *testing.T) {
	def := ast.FunctionDef{Name: "a", Module: "f", Signature: ast.Empty()}
	assert.Equal(t, FunctionId("f::a::() -> ()"), Of(def))
}

func TestExternal(t *testing.T) {
	assert.Equal(t, FunctionId("<external>::print::()"), External("print"))
}
