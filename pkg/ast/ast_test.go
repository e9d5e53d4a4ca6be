package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureDisplay(t *testing.T) {
	sig := Signature{
		Params:     []Param{{Name: "p1", Type: "T1"}, {Name: "p2", Type: "T2"}},
		ReturnType: "R",
	}
	assert.Equal(t, "(p1: T1, p2: T2) -> R", sig.Display())
}

func TestSignatureDisplayUnnamedParam(t *testing.T) {
	sig := Signature{Params: []Param{{Type: "i32"}}, ReturnType: "i32"}
	assert.Equal(t, "(i32) -> i32", sig.Display())
}

func TestSignatureDisplayEmpty(t *testing.T) {
	assert.Equal(t, "() -> ()", Empty().Display())
}

func TestSignatureEqual(t *testing.T) {
	a := Signature{Params: []Param{{Name: "x", Type: "int"}}, ReturnType: "int"}
	b := Signature{Params: []Param{{Name: "x", Type: "int"}}, ReturnType: "int"}
	c := Signature{Params: []Param{{Name: "x", Type: "int"}}, ReturnType: "string"}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestFunctionDefEqual(t *testing.T) {
	a := FunctionDef{Name: "f", Module: "m", Signature: Empty(), Calls: []FunctionCall{{TargetName: "g", Line: 1}}}
	b := a
	c := a
	c.Calls = []FunctionCall{{TargetName: "h", Line: 1}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestMerge(t *testing.T) {
	all := []AbstractAST{
		{ModulePath: "a", Functions: []FunctionDef{{Name: "f1", Module: "a"}}},
		{ModulePath: "b", Functions: []FunctionDef{{Name: "f2", Module: "b"}}},
	}
	merged := Merge(all)
	assert.Len(t, merged, 2)
	assert.Equal(t, "f1", merged[0].Name)
	assert.Equal(t, "f2", merged[1].Name)
}
