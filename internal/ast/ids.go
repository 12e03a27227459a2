package ast

type (
	// главные сущности
	StmtID uint32
	ExprID uint32
	// подсущности
	PayloadID uint32
	ParamID   uint32
	HandlerID uint32
)

const (
	NoStmtID    StmtID    = 0
	NoExprID    ExprID    = 0
	NoPayloadID PayloadID = 0
	NoParamID   ParamID   = 0
	NoHandlerID HandlerID = 0
)

func (id StmtID) IsValid() bool    { return id != NoStmtID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
func (id ParamID) IsValid() bool   { return id != NoParamID }
func (id HandlerID) IsValid() bool { return id != NoHandlerID }
