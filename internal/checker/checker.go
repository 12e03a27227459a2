package checker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/semantic"
	"krait/internal/settings"
	"krait/internal/source"
	"krait/internal/trace"
)

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("checker: already run")

// State is the lifecycle of a Checker.
type State uint8

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Finished:
		return "finished"
	default:
		return "not-started"
	}
}

// Options configures one traversal.
type Options struct {
	Settings *settings.Settings
	// Dispatch is the hook table; nil runs the traversal without hooks.
	Dispatch *Dispatch
	// Enabled narrows the dispatch table's rules for this module, e.g.
	// after per-file ignores. The zero set means Dispatch.Enabled().
	Enabled rule.Set
	// Universe replaces the Python builtins, used by the Starlark frontend.
	Universe []string
}

// Fault records a hook that panicked or reported outside the source.
type Fault struct {
	Hook  string
	Rules []rule.Rule
	Kind  Kind
	Span  source.Span
	Value string
	Stack string
}

func (f Fault) Error() string {
	codes := make([]string, len(f.Rules))
	for i, r := range f.Rules {
		codes[i] = r.Code()
	}
	return fmt.Sprintf("hook %s [%s] on %s at %s: %s", f.Hook, strings.Join(codes, ","), f.Kind, f.Span, f.Value)
}

// Stats counts traversal work.
type Stats struct {
	Stmts       int
	Exprs       int
	Dispatched  int
	Invocations int
	Deferred    int
	Scopes      int
}

// Result is the output of one traversal. Diagnostics are in report
// order; sorting and suppression happen in diag.Collection.Finalize.
type Result struct {
	Diagnostics []diag.Diagnostic
	Faults      []Fault
	Model       *semantic.Model
	Stats       Stats
}

type deferredFunc struct {
	stmt ast.StmtID
	expr ast.ExprID
	snap semantic.Snapshot
}

type deferredLoop struct {
	stmt ast.StmtID
	snap semantic.Snapshot
}

// storeTarget describes how names in a store context are bound.
type storeTarget struct {
	kind semantic.BindingKind
	src  semantic.Source
}

// Checker performs a single traversal of one module.
type Checker struct {
	module   *ast.Module
	tree     *ast.Builder
	settings *settings.Settings
	dispatch *Dispatch
	enabled  rule.Set
	model    *semantic.Model
	state    State

	ctx        context.Context
	tracer     trace.Tracer
	traceHooks bool
	parentSpan uint64

	funcs []deferredFunc
	loops []deferredLoop
	seen  map[nodeKey]struct{}
	store storeTarget

	undefinedExports []semantic.ExportName

	diags  []diag.Diagnostic
	faults []Fault
	stats  Stats
}

// New prepares a checker; nothing is traversed until Run.
func New(module *ast.Module, opts Options) *Checker {
	if module == nil {
		module = ast.NewModule(nil, nil)
	}
	if module.Tree == nil {
		module.Tree = ast.NewBuilder(ast.Hints{})
	}
	s := opts.Settings
	if s == nil {
		s = settings.Default()
	}
	enabled := opts.Enabled
	if enabled.IsEmpty() {
		enabled = opts.Dispatch.Enabled()
	} else {
		enabled = enabled.Intersect(opts.Dispatch.Enabled())
	}
	return &Checker{
		module:   module,
		tree:     module.Tree,
		settings: s,
		dispatch: opts.Dispatch,
		enabled:  enabled,
		model: semantic.New(semantic.Options{
			Builtins: s.Builtins,
			Universe: opts.Universe,
			Span:     module.Span(),
		}),
		seen:   make(map[nodeKey]struct{}),
		tracer: trace.Nop,
	}
}

// Check runs a fresh checker over module.
func Check(ctx context.Context, module *ast.Module, opts Options) (*Result, error) {
	return New(module, opts).Run(ctx)
}

// State returns the lifecycle state.
func (c *Checker) State() State { return c.state }

// Depth returns the scope depth while InProgress.
func (c *Checker) Depth() int {
	if c.state != InProgress {
		return 0
	}
	return c.model.Depth()
}

// Run traverses the module once. Cancellation is checked between
// deferred units; a cancelled run returns the partial result and the
// context error.
func (c *Checker) Run(ctx context.Context) (*Result, error) {
	if c.state != NotStarted {
		return nil, ErrAlreadyRun
	}
	c.state = InProgress
	defer func() { c.state = Finished }()

	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.tracer = trace.FromContext(ctx)
	c.traceHooks = c.tracer.Level().ShouldEmit(trace.KindSpanBegin, trace.ScopeHook)
	c.parentSpan = trace.CurrentSpan(ctx).SpanID

	err := c.walk()
	return c.result(), err
}

func (c *Checker) walk() error {
	m := c.model
	c.visitBody(ast.NoStmtID, 0, c.module.Body)

	// отложенные тела сдвигают current на свои scope
	top := m.Snapshot()
	if err := c.drainFunctions(); err != nil {
		return err
	}
	m.Restore(top)
	c.undefinedExports = m.ResolveExports()
	m.ExitScope()
	if m.Depth() != 0 || !m.Balanced() {
		return fmt.Errorf("checker: unbalanced scope stack (depth %d)", m.Depth())
	}

	for _, d := range c.loops {
		m.Restore(d.snap)
		c.dispatchNode(Node{Kind: KindForLoop, Stmt: d.stmt, Span: c.stmtSpan(d.stmt)})
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}

	order := m.ExitOrder()
	c.stats.Scopes = len(order)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		sc := m.Scope(id)
		m.Restore(semantic.Snapshot{Scope: id})
		c.dispatchNode(Node{Kind: KindScope, Scope: id, Stmt: sc.Owner.Stmt, Expr: sc.Owner.Expr, Span: sc.Span})
	}

	if c.dispatch.Has(KindBinding) {
		for id, b := range m.AllBindings() {
			if b.Kind == semantic.BindBuiltin {
				continue
			}
			m.Restore(semantic.Snapshot{Scope: b.Scope, Branch: b.Branch})
			c.dispatchNode(Node{Kind: KindBinding, Binding: id, Scope: b.Scope, Span: b.Span})
		}
	}

	m.Restore(semantic.Snapshot{Scope: m.ModuleScope()})
	c.dispatchNode(Node{Kind: KindModule, Span: c.module.Span()})
	return nil
}

// drainFunctions visits deferred function and lambda bodies in FIFO
// order; bodies found meanwhile are appended to the queue.
func (c *Checker) drainFunctions() error {
	m := c.model
	for i := 0; i < len(c.funcs); i++ {
		if i%64 == 0 {
			if err := c.ctx.Err(); err != nil {
				return err
			}
		}
		d := c.funcs[i]
		c.stats.Deferred++
		m.Restore(d.snap)
		m.ClearFlags(semantic.InLoop | semantic.InFinally | semantic.InBooleanTest |
			semantic.InAnnotation | semantic.InExceptHandler | semantic.InAsyncFunction | semantic.InDunderAll)

		if d.stmt.IsValid() {
			fn, ok := c.tree.Stmts.FunctionDef(d.stmt)
			if !ok {
				continue
			}
			if fn.IsAsync {
				m.PushFlags(semantic.InAsyncFunction)
			}
			m.EnterScope(semantic.ScopeFunction, semantic.Owner{Stmt: d.stmt}, c.stmtSpan(d.stmt))
			c.bindParameters(fn.Params, semantic.Source{Stmt: d.stmt}, d.stmt, ast.NoExprID)
			c.visitBody(d.stmt, 0, fn.Body)
			m.ExitScope()
			continue
		}

		lam, ok := c.tree.Exprs.Lambda(d.expr)
		if !ok {
			continue
		}
		m.EnterScope(semantic.ScopeLambda, semantic.Owner{Expr: d.expr}, c.tree.Exprs.Span(d.expr))
		c.bindParameters(lam.Params, semantic.Source{Expr: d.expr}, ast.NoStmtID, d.expr)
		c.visitExpr(lam.Body)
		m.ExitScope()
	}
	return nil
}

func (c *Checker) bindParameters(params ast.Parameters, src semantic.Source, stmt ast.StmtID, expr ast.ExprID) {
	c.dispatchNode(Node{Kind: KindParameters, Stmt: stmt, Expr: expr, Span: params.Span})
	for _, pid := range params.All() {
		p := c.tree.Params.Get(pid)
		if p == nil || p.Name.Name == "" {
			continue
		}
		bid := c.model.Bind(p.Name.Name, semantic.BindArgument, p.Name.Span, src)
		c.dispatchNode(Node{Kind: KindParameter, Stmt: stmt, Expr: expr, Param: pid, Binding: bid, Span: p.Span})
	}
}

// dispatchNode runs the active hooks of n.Kind once per node.
func (c *Checker) dispatchNode(n Node) {
	hooks := c.dispatch.Hooks(n.Kind)
	if len(hooks) == 0 {
		return
	}
	key := n.key()
	if _, done := c.seen[key]; done {
		return
	}
	c.seen[key] = struct{}{}
	c.stats.Dispatched++
	for _, h := range hooks {
		c.invoke(h, n)
	}
}

func (c *Checker) invoke(h *Hook, n Node) {
	c.stats.Invocations++
	snap := &Snapshot{c: c, node: n, hook: h}
	if c.traceHooks {
		span := trace.Begin(c.tracer, trace.ScopeHook, h.Name, c.parentSpan)
		defer span.End(n.Kind.String())
	}
	defer func() {
		v := recover()
		snap.closed = true
		if v != nil {
			c.recordFault(h, n, fmt.Sprint(v), string(debug.Stack()))
			return
		}
		c.diags = append(c.diags, snap.buf...)
	}()
	h.Run(snap, n)
}

func (c *Checker) recordFault(h *Hook, n Node, value, stack string) {
	f := Fault{Kind: n.Kind, Span: n.Span, Value: value, Stack: stack}
	if h != nil {
		f.Hook = h.Name
		f.Rules = h.Rules
	}
	c.faults = append(c.faults, f)
	path := ""
	if c.module.File != nil {
		path = c.module.File.Path
	}
	trace.Error(c.tracer, trace.ScopeHook, "hook fault", f.Error(), map[string]string{
		"hook": f.Hook,
		"kind": n.Kind.String(),
		"file": path,
	})
}

func (c *Checker) result() *Result {
	return &Result{
		Diagnostics: c.diags,
		Faults:      c.faults,
		Model:       c.model,
		Stats:       c.stats,
	}
}

func (c *Checker) stmtSpan(id ast.StmtID) source.Span {
	if st := c.tree.Stmts.Get(id); st != nil {
		return st.Span
	}
	return source.Span{}
}
