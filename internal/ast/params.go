package ast

import (
	"krait/internal/source"
)

type ParamKind uint8

const (
	ParamPositionalOnly ParamKind = iota + 1
	ParamRegular
	ParamVararg // *args
	ParamKeywordOnly
	ParamKwarg // **kwargs
)

type Param struct {
	Name       Identifier
	Kind       ParamKind
	Annotation ExprID
	Default    ExprID
	Span       source.Span
}

// Parameters is the parameter list of a def or lambda.
type Parameters struct {
	PosOnly []ParamID
	Args    []ParamID
	Vararg  ParamID
	KwOnly  []ParamID
	Kwarg   ParamID
	Span    source.Span
}

// All returns every parameter in declaration order.
func (p Parameters) All() []ParamID {
	out := make([]ParamID, 0, len(p.PosOnly)+len(p.Args)+len(p.KwOnly)+2)
	out = append(out, p.PosOnly...)
	out = append(out, p.Args...)
	if p.Vararg.IsValid() {
		out = append(out, p.Vararg)
	}
	out = append(out, p.KwOnly...)
	if p.Kwarg.IsValid() {
		out = append(out, p.Kwarg)
	}
	return out
}

// Positional returns positional-only and regular parameters.
func (p Parameters) Positional() []ParamID {
	out := make([]ParamID, 0, len(p.PosOnly)+len(p.Args))
	out = append(out, p.PosOnly...)
	return append(out, p.Args...)
}

// Len counts parameters, including *args and **kwargs.
func (p Parameters) Len() int {
	n := len(p.PosOnly) + len(p.Args) + len(p.KwOnly)
	if p.Vararg.IsValid() {
		n++
	}
	if p.Kwarg.IsValid() {
		n++
	}
	return n
}

// Params stores parameters of every function and lambda in a module.
type Params struct {
	Arena *Arena[Param]
}

func NewParams(capHint uint) *Params {
	return &Params{Arena: NewArena[Param](capHint)}
}

func (p *Params) New(param Param) ParamID {
	return ParamID(p.Arena.Allocate(param))
}

func (p *Params) Get(id ParamID) *Param {
	return p.Arena.Get(uint32(id))
}

// Append adds param to the list matching its kind.
func (ps *Parameters) Append(id ParamID, kind ParamKind) {
	switch kind {
	case ParamPositionalOnly:
		ps.PosOnly = append(ps.PosOnly, id)
	case ParamVararg:
		ps.Vararg = id
	case ParamKeywordOnly:
		ps.KwOnly = append(ps.KwOnly, id)
	case ParamKwarg:
		ps.Kwarg = id
	default:
		ps.Args = append(ps.Args, id)
	}
}
