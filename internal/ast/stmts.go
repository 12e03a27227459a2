package ast

import (
	"krait/internal/source"
)

// Stmts manages allocation of statements.
type Stmts struct {
	Arena        *Arena[Stmt]
	FunctionDefs *Arena[FunctionDefStmt]
	ClassDefs    *Arena[ClassDefStmt]
	Returns      *Arena[ReturnStmt]
	Deletes      *Arena[DeleteStmt]
	Assigns      *Arena[AssignStmt]
	AugAssigns   *Arena[AugAssignStmt]
	AnnAssigns   *Arena[AnnAssignStmt]
	Fors         *Arena[ForStmt]
	Whiles       *Arena[WhileStmt]
	Ifs          *Arena[IfStmt]
	Withs        *Arena[WithStmt]
	Raises       *Arena[RaiseStmt]
	Trys         *Arena[TryStmt]
	Asserts      *Arena[AssertStmt]
	Imports      *Arena[ImportStmt]
	ImportFroms  *Arena[ImportFromStmt]
	Names        *Arena[NamesStmt]
	ExprStmts    *Arena[ExprStmt]
	Handlers     *Arena[Handler]
}

// NewStmts creates the statement arenas with capHint as the initial capacity.
func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint/4 + 1
	return &Stmts{
		Arena:        NewArena[Stmt](capHint),
		FunctionDefs: NewArena[FunctionDefStmt](small),
		ClassDefs:    NewArena[ClassDefStmt](small),
		Returns:      NewArena[ReturnStmt](small),
		Deletes:      NewArena[DeleteStmt](0),
		Assigns:      NewArena[AssignStmt](small),
		AugAssigns:   NewArena[AugAssignStmt](0),
		AnnAssigns:   NewArena[AnnAssignStmt](0),
		Fors:         NewArena[ForStmt](small),
		Whiles:       NewArena[WhileStmt](0),
		Ifs:          NewArena[IfStmt](small),
		Withs:        NewArena[WithStmt](0),
		Raises:       NewArena[RaiseStmt](0),
		Trys:         NewArena[TryStmt](0),
		Asserts:      NewArena[AssertStmt](0),
		Imports:      NewArena[ImportStmt](small),
		ImportFroms:  NewArena[ImportFromStmt](small),
		Names:        NewArena[NamesStmt](0),
		ExprStmts:    NewArena[ExprStmt](small),
		Handlers:     NewArena[Handler](0),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the statement with the given ID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// Kind returns the kind of a statement or StmtInvalid.
func (s *Stmts) Kind(id StmtID) StmtKind {
	if st := s.Get(id); st != nil {
		return st.Kind
	}
	return StmtInvalid
}

func stmtPayload[T any](s *Stmts, arena *Arena[T], id StmtID, kind StmtKind) (*T, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return nil, false
	}
	return arena.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewFunctionDef(span source.Span, data FunctionDefStmt) StmtID {
	return s.new(StmtFunctionDef, span, s.FunctionDefs.Allocate(data))
}

func (s *Stmts) FunctionDef(id StmtID) (*FunctionDefStmt, bool) {
	return stmtPayload(s, s.FunctionDefs, id, StmtFunctionDef)
}

func (s *Stmts) NewClassDef(span source.Span, data ClassDefStmt) StmtID {
	return s.new(StmtClassDef, span, s.ClassDefs.Allocate(data))
}

func (s *Stmts) ClassDef(id StmtID) (*ClassDefStmt, bool) {
	return stmtPayload(s, s.ClassDefs, id, StmtClassDef)
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	return stmtPayload(s, s.Returns, id, StmtReturn)
}

func (s *Stmts) NewDelete(span source.Span, targets []ExprID) StmtID {
	return s.new(StmtDelete, span, s.Deletes.Allocate(DeleteStmt{Targets: targets}))
}

func (s *Stmts) Delete(id StmtID) (*DeleteStmt, bool) {
	return stmtPayload(s, s.Deletes, id, StmtDelete)
}

func (s *Stmts) NewAssign(span source.Span, targets []ExprID, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Targets: targets, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	return stmtPayload(s, s.Assigns, id, StmtAssign)
}

func (s *Stmts) NewAugAssign(span source.Span, target ExprID, op Operator, value ExprID) StmtID {
	return s.new(StmtAugAssign, span, s.AugAssigns.Allocate(AugAssignStmt{Target: target, Op: op, Value: value}))
}

func (s *Stmts) AugAssign(id StmtID) (*AugAssignStmt, bool) {
	return stmtPayload(s, s.AugAssigns, id, StmtAugAssign)
}

func (s *Stmts) NewAnnAssign(span source.Span, target, annotation, value ExprID) StmtID {
	return s.new(StmtAnnAssign, span, s.AnnAssigns.Allocate(AnnAssignStmt{Target: target, Annotation: annotation, Value: value}))
}

func (s *Stmts) AnnAssign(id StmtID) (*AnnAssignStmt, bool) {
	return stmtPayload(s, s.AnnAssigns, id, StmtAnnAssign)
}

func (s *Stmts) NewFor(span source.Span, data ForStmt) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(data))
}

func (s *Stmts) For(id StmtID) (*ForStmt, bool) {
	return stmtPayload(s, s.Fors, id, StmtFor)
}

func (s *Stmts) NewWhile(span source.Span, data WhileStmt) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(data))
}

func (s *Stmts) While(id StmtID) (*WhileStmt, bool) {
	return stmtPayload(s, s.Whiles, id, StmtWhile)
}

func (s *Stmts) NewIf(span source.Span, data IfStmt) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(data))
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	return stmtPayload(s, s.Ifs, id, StmtIf)
}

func (s *Stmts) NewWith(span source.Span, data WithStmt) StmtID {
	return s.new(StmtWith, span, s.Withs.Allocate(data))
}

func (s *Stmts) With(id StmtID) (*WithStmt, bool) {
	return stmtPayload(s, s.Withs, id, StmtWith)
}

func (s *Stmts) NewRaise(span source.Span, exc, cause ExprID) StmtID {
	return s.new(StmtRaise, span, s.Raises.Allocate(RaiseStmt{Exc: exc, Cause: cause}))
}

func (s *Stmts) Raise(id StmtID) (*RaiseStmt, bool) {
	return stmtPayload(s, s.Raises, id, StmtRaise)
}

func (s *Stmts) NewTry(span source.Span, data TryStmt) StmtID {
	return s.new(StmtTry, span, s.Trys.Allocate(data))
}

func (s *Stmts) Try(id StmtID) (*TryStmt, bool) {
	return stmtPayload(s, s.Trys, id, StmtTry)
}

func (s *Stmts) NewAssert(span source.Span, test, msg ExprID) StmtID {
	return s.new(StmtAssert, span, s.Asserts.Allocate(AssertStmt{Test: test, Msg: msg}))
}

func (s *Stmts) Assert(id StmtID) (*AssertStmt, bool) {
	return stmtPayload(s, s.Asserts, id, StmtAssert)
}

func (s *Stmts) NewImport(span source.Span, names []Alias) StmtID {
	return s.new(StmtImport, span, s.Imports.Allocate(ImportStmt{Names: names}))
}

func (s *Stmts) Import(id StmtID) (*ImportStmt, bool) {
	return stmtPayload(s, s.Imports, id, StmtImport)
}

func (s *Stmts) NewImportFrom(span source.Span, data ImportFromStmt) StmtID {
	return s.new(StmtImportFrom, span, s.ImportFroms.Allocate(data))
}

func (s *Stmts) ImportFrom(id StmtID) (*ImportFromStmt, bool) {
	return stmtPayload(s, s.ImportFroms, id, StmtImportFrom)
}

func (s *Stmts) NewGlobal(span source.Span, names []Identifier) StmtID {
	return s.new(StmtGlobal, span, s.Names.Allocate(NamesStmt{Names: names}))
}

func (s *Stmts) NewNonlocal(span source.Span, names []Identifier) StmtID {
	return s.new(StmtNonlocal, span, s.Names.Allocate(NamesStmt{Names: names}))
}

// Declared returns the names of a global or nonlocal statement.
func (s *Stmts) Declared(id StmtID) (*NamesStmt, bool) {
	st := s.Get(id)
	if st == nil || (st.Kind != StmtGlobal && st.Kind != StmtNonlocal) {
		return nil, false
	}
	return s.Names.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, value ExprID) StmtID {
	return s.new(StmtExpr, span, s.ExprStmts.Allocate(ExprStmt{Value: value}))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	return stmtPayload(s, s.ExprStmts, id, StmtExpr)
}

// NewSimple allocates pass, break and continue statements.
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return s.new(kind, span, 0)
}

func (s *Stmts) NewHandler(h Handler) HandlerID {
	return HandlerID(s.Handlers.Allocate(h))
}

func (s *Stmts) Handler(id HandlerID) *Handler {
	return s.Handlers.Get(uint32(id))
}
