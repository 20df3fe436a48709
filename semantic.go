package blink

import "fmt"

// funcSignature is what the analyzer remembers about a declared function:
// its return type and the declared types of its parameters, in order.
type funcSignature struct {
	ReturnType Type
	Args       []Type
}

// Analyzer walks a parsed statement list and accepts or rejects it before
// codegen runs, grounded on the same four pieces of state the original
// semantic pass threads through every call: a scope of variable types, a
// flat function table, a stack of enclosing-function return types, and a
// loop-nesting depth counter.
type Analyzer struct {
	variables           *Scope[Type]
	functions           map[string]funcSignature
	functionsTypesStack []Type
	loopsBlocksDeep     int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		variables: NewScope[Type](),
		functions: make(map[string]funcSignature),
	}
}

func (a *Analyzer) fail(tok *Token, format string, args ...any) error {
	e := &Error{Subsystem: SubsystemSemantic, Msg: fmt.Sprintf(format, args...)}
	if tok != nil {
		e.Filename = tok.Filename
		e.Line = tok.Line
		e.Column = tok.Col
		e.Token = tok
	}
	return e
}

// Analyze validates every top-level statement in order, stopping at the
// first error (the compiler has no error-recovery/collection tier).
func (a *Analyzer) Analyze(stmts []Stmt) error {
	for _, s := range stmts {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeStmt(s Stmt) error {
	switch n := s.(type) {
	case *VarDeclStmt:
		return a.analyzeVarDecl(n)
	case *FuncDeclStmt:
		return a.analyzeFuncDecl(n)
	case *FuncCallStmt:
		return a.analyzeFuncCallStmt(n)
	case *VarAsgnStmt:
		return a.analyzeVarAsgn(n)
	case *IfStmt:
		return a.analyzeIf(n)
	case *ForCycleStmt:
		return a.analyzeFor(n)
	case *WhileCycleStmt:
		return a.analyzeWhile(n)
	case *DoWhileCycleStmt:
		return a.analyzeDoWhile(n)
	case *BreakStmt:
		if a.loopsBlocksDeep == 0 {
			return a.fail(n.Anchor(), "`break` statement must be inside the loop")
		}
		return nil
	case *ContinueStmt:
		if a.loopsBlocksDeep == 0 {
			return a.fail(n.Anchor(), "`continue` statement must be inside the loop")
		}
		return nil
	case *ReturnStmt:
		return a.analyzeReturn(n)
	default:
		return a.fail(s.Anchor(), "Unsupported statement")
	}
}

// analyzeVarDecl rejects a redeclaration anywhere in the currently-visible
// scope chain (not just the innermost frame), then -- if there's an
// initializer -- requires it to unify with the declared type.
func (a *Analyzer) analyzeVarDecl(n *VarDeclStmt) error {
	if a.variables.DeclaredInAnyFrame(n.Name) {
		return a.fail(n.Anchor(), "Variable '%s' already exist", n.Name)
	}
	if n.Initializer != nil {
		initType, err := a.analyzeExpr(n.Initializer)
		if err != nil {
			return err
		}
		if _, err := commonType(n.Type, initType); err != nil {
			return a.fail(n.Anchor(), "%s", err.Error())
		}
	}
	a.variables.Declare(n.Name, n.Type)
	return nil
}

// analyzeFuncDecl registers the function before analyzing its body (so a
// function may call itself), in a fresh variable frame seeded with its
// parameters and a fresh return-type stack entry.
func (a *Analyzer) analyzeFuncDecl(n *FuncDeclStmt) error {
	if _, exists := a.functions[n.Name]; exists {
		return a.fail(n.Anchor(), "Function '%s %s(%s)' already exist", n.ReturnType, n.Name, argsString(n.Args))
	}

	argTypes := make([]Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = arg.Type
	}
	a.functions[n.Name] = funcSignature{ReturnType: n.ReturnType, Args: argTypes}

	a.variables.Enter()
	a.functionsTypesStack = append(a.functionsTypesStack, n.ReturnType)

	for _, arg := range n.Args {
		a.variables.Declare(arg.Name, arg.Type)
	}
	for _, stmt := range n.Body {
		if err := a.analyzeStmt(stmt); err != nil {
			return err
		}
	}

	a.functionsTypesStack = a.functionsTypesStack[:len(a.functionsTypesStack)-1]
	a.variables.Leave()
	return nil
}

func argsString(args []Arg) string {
	s := ""
	for i, arg := range args {
		if i > 0 {
			s += ", "
		}
		s += arg.Type.String() + " " + arg.Name
	}
	return s
}

// checkCall validates a call's arity/types and returns the callee's return
// type, special-casing the implicitly-declared variadic `printf`.
func (a *Analyzer) checkCall(tok *Token, name string, args []Expr) (Type, error) {
	if name == "printf" {
		for _, arg := range args {
			if _, err := a.analyzeExpr(arg); err != nil {
				return Type{}, err
			}
		}
		return Type{Tag: I32, Name: "i32"}, nil
	}

	sig, exists := a.functions[name]
	if !exists {
		return Type{}, a.fail(tok, "Function '%s(%s)' does not exist", name, exprTypesString(a, args))
	}
	if len(args) != len(sig.Args) {
		return Type{}, a.fail(tok, "Function '%s' takes %d argument(s), got %d", name, len(sig.Args), len(args))
	}
	for i, arg := range args {
		argType, err := a.analyzeExpr(arg)
		if err != nil {
			return Type{}, err
		}
		if i < len(sig.Args) {
			if _, err := commonType(argType, sig.Args[i]); err != nil {
				return Type{}, a.fail(tok, "%s", err.Error())
			}
		}
	}
	return sig.ReturnType, nil
}

func exprTypesString(a *Analyzer, args []Expr) string {
	s := ""
	for i, arg := range args {
		if i > 0 {
			s += ", "
		}
		if t, err := a.analyzeExpr(arg); err == nil {
			s += t.String()
		}
	}
	return s
}

func (a *Analyzer) analyzeFuncCallStmt(n *FuncCallStmt) error {
	_, err := a.checkCall(n.Anchor(), n.Name, n.Args)
	return err
}

// analyzeVarAsgn validates that the target resolves and the RHS is
// well-typed. There is deliberately no commonType check between the two --
// unlike a declaration's initializer, plain assignment never unifies LHS
// and RHS at analysis time, matching the source.
func (a *Analyzer) analyzeVarAsgn(n *VarAsgnStmt) error {
	if !a.variables.DeclaredInAnyFrame(n.Name) {
		return a.fail(n.Anchor(), "Variable '%s' does not exist", n.Name)
	}
	_, err := a.analyzeExpr(n.RHS)
	return err
}

// analyzeIf requires a non-null condition and unconditionally analyzes
// both branches, regardless of the condition's constant value.
func (a *Analyzer) analyzeIf(n *IfStmt) error {
	if n.Cond == nil {
		return a.fail(n.Anchor(), "Conditional expression must not be null")
	}
	if _, err := a.analyzeExpr(n.Cond); err != nil {
		return err
	}
	a.variables.Enter()
	for _, s := range n.ThenBlock {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	a.variables.Leave()

	a.variables.Enter()
	for _, s := range n.ElseBlock {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	a.variables.Leave()
	return nil
}

func (a *Analyzer) analyzeFor(n *ForCycleStmt) error {
	a.variables.Enter()
	if err := a.analyzeStmt(n.Init); err != nil {
		return err
	}
	if _, err := a.analyzeExpr(n.Cond); err != nil {
		return err
	}
	if err := a.analyzeStmt(n.Step); err != nil {
		return err
	}

	a.loopsBlocksDeep++
	for _, s := range n.Body {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	a.loopsBlocksDeep--
	a.variables.Leave()
	return nil
}

func (a *Analyzer) analyzeWhile(n *WhileCycleStmt) error {
	if _, err := a.analyzeExpr(n.Cond); err != nil {
		return err
	}
	a.variables.Enter()
	a.loopsBlocksDeep++
	for _, s := range n.Body {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	a.loopsBlocksDeep--
	a.variables.Leave()
	return nil
}

func (a *Analyzer) analyzeDoWhile(n *DoWhileCycleStmt) error {
	a.variables.Enter()
	a.loopsBlocksDeep++
	for _, s := range n.Body {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	a.loopsBlocksDeep--
	a.variables.Leave()
	_, err := a.analyzeExpr(n.Cond)
	return err
}

// analyzeReturn unconditionally analyzes the returned expression. A bare
// `return;` (Expr == nil) therefore always fails here -- this replicates
// the source's unconditional dereference of the return expression rather
// than adding a leniency the original never had.
func (a *Analyzer) analyzeReturn(n *ReturnStmt) error {
	if len(a.functionsTypesStack) == 0 {
		return a.fail(n.Anchor(), "`return` statement must be inside the function")
	}
	if n.Expr == nil {
		return a.fail(n.Anchor(), "Returned expression must not be null")
	}
	exprType, err := a.analyzeExpr(n.Expr)
	if err != nil {
		return err
	}
	want := a.functionsTypesStack[len(a.functionsTypesStack)-1]
	if _, err := commonType(exprType, want); err != nil {
		return a.fail(n.Anchor(), "%s", err.Error())
	}
	return nil
}

func (a *Analyzer) analyzeExpr(e Expr) (Type, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value.Type, nil
	case *BinaryExpr:
		left, err := a.analyzeExpr(n.Left)
		if err != nil {
			return Type{}, err
		}
		right, err := a.analyzeExpr(n.Right)
		if err != nil {
			return Type{}, err
		}
		ct, err := commonType(left, right)
		if err != nil {
			return Type{}, a.fail(n.Anchor(), "%s", err.Error())
		}
		return ct, nil
	case *UnaryExpr:
		return a.analyzeExpr(n.Operand)
	case *VarExpr:
		t, ok := a.variables.Lookup(n.Name)
		if !ok {
			return Type{}, a.fail(n.Anchor(), "Variable '%s' does not exist", n.Name)
		}
		return t, nil
	case *FuncCallExpr:
		return a.checkCall(n.Anchor(), n.Name, n.Args)
	default:
		return Type{}, a.fail(e.Anchor(), "Unsupported expression")
	}
}

// commonType implements the promotion lattice in exact tag order:
// I8..F64 (0..5), U8..U64 (6..9), then BOOL..ENUM (10..14, never unifiable).
func commonType(l, r Type) (Type, error) {
	if l.Equal(r) {
		return l, nil
	}
	if l.Tag <= F64 && r.Tag <= F64 {
		if l.Tag > r.Tag {
			return l, nil
		}
		return r, nil
	}
	if l.Tag <= F64 && r.Tag <= U64 {
		if int(l.Tag) > int(r.Tag)-6 {
			return l, nil
		}
		return r, nil
	}
	if l.Tag >= STRING || r.Tag >= STRING {
		return Type{}, fmt.Errorf("There is no common type between %s and %s", l, r)
	}
	if l.Tag <= U64 && r.Tag <= F64 {
		if int(r.Tag) > int(l.Tag)-6 {
			return r, nil
		}
		return l, nil
	}
	if l.Tag >= U8 && l.Tag <= U64 && r.Tag >= U8 && r.Tag <= U64 {
		if l.Tag > r.Tag {
			return l, nil
		}
		return r, nil
	}
	return Type{}, fmt.Errorf("There is no common type between %s and %s", l, r)
}
