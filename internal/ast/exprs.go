package ast

import (
	"krait/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena      *Arena[Expr]
	Names      *Arena[NameExpr]
	Attributes *Arena[AttributeExpr]
	Calls      *Arena[CallExpr]
	Literals   *Arena[LiteralExpr]
	FStrings   *Arena[FStringExpr]
	BinOps     *Arena[BinOpExpr]
	BoolOps    *Arena[BoolOpExpr]
	UnaryOps   *Arena[UnaryOpExpr]
	Compares   *Arena[CompareExpr]
	IfExps     *Arena[IfExpExpr]
	Lambdas    *Arena[LambdaExpr]
	Seqs       *Arena[SeqExpr]
	Dicts      *Arena[DictExpr]
	Comps      *Arena[CompExpr]
	Subscripts *Arena[SubscriptExpr]
	Slices     *Arena[SliceExpr]
	Starreds   *Arena[StarredExpr]
	Values     *Arena[ValueExpr]
	NamedExprs *Arena[NamedExpr]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint/4 + 1
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Names:      NewArena[NameExpr](capHint),
		Attributes: NewArena[AttributeExpr](small),
		Calls:      NewArena[CallExpr](small),
		Literals:   NewArena[LiteralExpr](small),
		FStrings:   NewArena[FStringExpr](0),
		BinOps:     NewArena[BinOpExpr](small),
		BoolOps:    NewArena[BoolOpExpr](0),
		UnaryOps:   NewArena[UnaryOpExpr](0),
		Compares:   NewArena[CompareExpr](small),
		IfExps:     NewArena[IfExpExpr](0),
		Lambdas:    NewArena[LambdaExpr](0),
		Seqs:       NewArena[SeqExpr](small),
		Dicts:      NewArena[DictExpr](0),
		Comps:      NewArena[CompExpr](0),
		Subscripts: NewArena[SubscriptExpr](small),
		Slices:     NewArena[SliceExpr](0),
		Starreds:   NewArena[StarredExpr](0),
		Values:     NewArena[ValueExpr](0),
		NamedExprs: NewArena[NamedExpr](0),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Kind returns the kind of an expression or ExprInvalid.
func (e *Exprs) Kind(id ExprID) ExprKind {
	if ex := e.Get(id); ex != nil {
		return ex.Kind
	}
	return ExprInvalid
}

// Span returns the span of an expression, zero for NoExprID.
func (e *Exprs) Span(id ExprID) source.Span {
	if ex := e.Get(id); ex != nil {
		return ex.Span
	}
	return source.Span{}
}

func exprPayload[T any](e *Exprs, arena *Arena[T], id ExprID, kinds ...ExprKind) (*T, bool) {
	ex := e.Get(id)
	if ex == nil {
		return nil, false
	}
	for _, k := range kinds {
		if ex.Kind == k {
			return arena.Get(uint32(ex.Payload)), true
		}
	}
	return nil, false
}

// NewName creates a new identifier expression.
func (e *Exprs) NewName(span source.Span, name string, ctx Context) ExprID {
	return e.new(ExprName, span, e.Names.Allocate(NameExpr{Name: name, Ctx: ctx}))
}

// Name returns the identifier data for the given expression ID.
func (e *Exprs) Name(id ExprID) (*NameExpr, bool) {
	return exprPayload(e, e.Names, id, ExprName)
}

func (e *Exprs) NewAttribute(span source.Span, value ExprID, attr Identifier, ctx Context) ExprID {
	return e.new(ExprAttribute, span, e.Attributes.Allocate(AttributeExpr{Value: value, Attr: attr, Ctx: ctx}))
}

func (e *Exprs) Attribute(id ExprID) (*AttributeExpr, bool) {
	return exprPayload(e, e.Attributes, id, ExprAttribute)
}

func (e *Exprs) NewCall(span source.Span, fn ExprID, args []ExprID, keywords []Keyword) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(CallExpr{Func: fn, Args: args, Keywords: keywords}))
}

func (e *Exprs) Call(id ExprID) (*CallExpr, bool) {
	return exprPayload(e, e.Calls, id, ExprCall)
}

func (e *Exprs) NewLiteral(span source.Span, kind LiteralKind, raw, value string) ExprID {
	return e.new(ExprLiteral, span, e.Literals.Allocate(LiteralExpr{Kind: kind, Raw: raw, Value: value}))
}

func (e *Exprs) Literal(id ExprID) (*LiteralExpr, bool) {
	return exprPayload(e, e.Literals, id, ExprLiteral)
}

// IsLiteral reports whether id is a literal of one of the kinds.
func (e *Exprs) IsLiteral(id ExprID, kinds ...LiteralKind) bool {
	lit, ok := e.Literal(id)
	if !ok {
		return false
	}
	for _, k := range kinds {
		if lit.Kind == k {
			return true
		}
	}
	return len(kinds) == 0
}

func (e *Exprs) NewFString(span source.Span, parts []FStringPart) ExprID {
	return e.new(ExprFString, span, e.FStrings.Allocate(FStringExpr{Parts: parts}))
}

func (e *Exprs) FString(id ExprID) (*FStringExpr, bool) {
	return exprPayload(e, e.FStrings, id, ExprFString)
}

func (e *Exprs) NewBinOp(span source.Span, left ExprID, op Operator, right ExprID) ExprID {
	return e.new(ExprBinOp, span, e.BinOps.Allocate(BinOpExpr{Left: left, Op: op, Right: right}))
}

func (e *Exprs) BinOp(id ExprID) (*BinOpExpr, bool) {
	return exprPayload(e, e.BinOps, id, ExprBinOp)
}

func (e *Exprs) NewBoolOp(span source.Span, op BoolOp, values []ExprID) ExprID {
	return e.new(ExprBoolOp, span, e.BoolOps.Allocate(BoolOpExpr{Op: op, Values: values}))
}

func (e *Exprs) BoolOp(id ExprID) (*BoolOpExpr, bool) {
	return exprPayload(e, e.BoolOps, id, ExprBoolOp)
}

func (e *Exprs) NewUnaryOp(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnaryOp, span, e.UnaryOps.Allocate(UnaryOpExpr{Op: op, Operand: operand}))
}

func (e *Exprs) UnaryOp(id ExprID) (*UnaryOpExpr, bool) {
	return exprPayload(e, e.UnaryOps, id, ExprUnaryOp)
}

func (e *Exprs) NewCompare(span source.Span, data CompareExpr) ExprID {
	return e.new(ExprCompare, span, e.Compares.Allocate(data))
}

func (e *Exprs) Compare(id ExprID) (*CompareExpr, bool) {
	return exprPayload(e, e.Compares, id, ExprCompare)
}

func (e *Exprs) NewIfExp(span source.Span, test, body, orelse ExprID) ExprID {
	return e.new(ExprIfExp, span, e.IfExps.Allocate(IfExpExpr{Test: test, Body: body, Orelse: orelse}))
}

func (e *Exprs) IfExp(id ExprID) (*IfExpExpr, bool) {
	return exprPayload(e, e.IfExps, id, ExprIfExp)
}

func (e *Exprs) NewLambda(span source.Span, params Parameters, body ExprID) ExprID {
	return e.new(ExprLambda, span, e.Lambdas.Allocate(LambdaExpr{Params: params, Body: body}))
}

func (e *Exprs) Lambda(id ExprID) (*LambdaExpr, bool) {
	return exprPayload(e, e.Lambdas, id, ExprLambda)
}

// NewSeq allocates a list, tuple or set display.
func (e *Exprs) NewSeq(kind ExprKind, span source.Span, elts []ExprID, ctx Context) ExprID {
	return e.new(kind, span, e.Seqs.Allocate(SeqExpr{Elts: elts, Ctx: ctx}))
}

// Seq returns the payload of list, tuple and set displays.
func (e *Exprs) Seq(id ExprID) (*SeqExpr, bool) {
	return exprPayload(e, e.Seqs, id, ExprList, ExprTuple, ExprSet)
}

func (e *Exprs) NewDict(span source.Span, keys, values []ExprID) ExprID {
	return e.new(ExprDict, span, e.Dicts.Allocate(DictExpr{Keys: keys, Values: values}))
}

func (e *Exprs) Dict(id ExprID) (*DictExpr, bool) {
	return exprPayload(e, e.Dicts, id, ExprDict)
}

// NewComp allocates a comprehension of the given kind.
func (e *Exprs) NewComp(kind ExprKind, span source.Span, data CompExpr) ExprID {
	return e.new(kind, span, e.Comps.Allocate(data))
}

func (e *Exprs) Comp(id ExprID) (*CompExpr, bool) {
	return exprPayload(e, e.Comps, id, ExprListComp, ExprSetComp, ExprDictComp, ExprGenerator)
}

func (e *Exprs) NewSubscript(span source.Span, value, slice ExprID, ctx Context) ExprID {
	return e.new(ExprSubscript, span, e.Subscripts.Allocate(SubscriptExpr{Value: value, Slice: slice, Ctx: ctx}))
}

func (e *Exprs) Subscript(id ExprID) (*SubscriptExpr, bool) {
	return exprPayload(e, e.Subscripts, id, ExprSubscript)
}

func (e *Exprs) NewSlice(span source.Span, lower, upper, step ExprID) ExprID {
	return e.new(ExprSlice, span, e.Slices.Allocate(SliceExpr{Lower: lower, Upper: upper, Step: step}))
}

func (e *Exprs) Slice(id ExprID) (*SliceExpr, bool) {
	return exprPayload(e, e.Slices, id, ExprSlice)
}

func (e *Exprs) NewStarred(span source.Span, value ExprID, ctx Context) ExprID {
	return e.new(ExprStarred, span, e.Starreds.Allocate(StarredExpr{Value: value, Ctx: ctx}))
}

func (e *Exprs) Starred(id ExprID) (*StarredExpr, bool) {
	return exprPayload(e, e.Starreds, id, ExprStarred)
}

// NewValue allocates await, yield and yield-from expressions.
func (e *Exprs) NewValue(kind ExprKind, span source.Span, value ExprID) ExprID {
	return e.new(kind, span, e.Values.Allocate(ValueExpr{Value: value}))
}

func (e *Exprs) Value(id ExprID) (*ValueExpr, bool) {
	return exprPayload(e, e.Values, id, ExprAwait, ExprYield, ExprYieldFrom)
}

func (e *Exprs) NewNamed(span source.Span, target, value ExprID) ExprID {
	return e.new(ExprNamed, span, e.NamedExprs.Allocate(NamedExpr{Target: target, Value: value}))
}

func (e *Exprs) Named(id ExprID) (*NamedExpr, bool) {
	return exprPayload(e, e.NamedExprs, id, ExprNamed)
}

// SetContext marks an assignment or deletion target, descending into
// tuple, list and starred targets.
func (e *Exprs) SetContext(id ExprID, ctx Context) {
	ex := e.Get(id)
	if ex == nil {
		return
	}
	switch ex.Kind {
	case ExprName:
		e.Names.Get(uint32(ex.Payload)).Ctx = ctx
	case ExprAttribute:
		e.Attributes.Get(uint32(ex.Payload)).Ctx = ctx
	case ExprSubscript:
		e.Subscripts.Get(uint32(ex.Payload)).Ctx = ctx
	case ExprStarred:
		st := e.Starreds.Get(uint32(ex.Payload))
		st.Ctx = ctx
		e.SetContext(st.Value, ctx)
	case ExprTuple, ExprList:
		seq := e.Seqs.Get(uint32(ex.Payload))
		seq.Ctx = ctx
		for _, elt := range seq.Elts {
			e.SetContext(elt, ctx)
		}
	}
}
