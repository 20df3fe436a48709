package blink

// Expr is the sum type of every expression node. Each concrete variant
// carries the anchor token it was parsed from, for diagnostics.
type Expr interface {
	Anchor() *Token
	exprNode()
}

// Stmt is the sum type of every statement node.
type Stmt interface {
	Anchor() *Token
	stmtNode()
}

type base struct {
	tok *Token
}

func (b base) Anchor() *Token { return b.tok }

// Literal is a constant value of a known type: integer, float, char, string,
// or bool, per the lexer's four literal-producing token kinds.
type Literal struct {
	base
	Value Value
}

func (*Literal) exprNode() {}

// BinaryExpr is `left op right` for any of the binary operator tokens
// (&&, ||, ==, !=, <, <=, >, >=, +, -, *, /, %).
type BinaryExpr struct {
	base
	Op          string
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is a prefix `-` or `!` applied to operand.
type UnaryExpr struct {
	base
	Op      string
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// VarExpr reads the current value of a variable.
type VarExpr struct {
	base
	Name string
}

func (*VarExpr) exprNode() {}

// FuncCallExpr calls a function for its return value.
type FuncCallExpr struct {
	base
	Name string
	Args []Expr
}

func (*FuncCallExpr) exprNode() {}

// Arg is a single formal parameter of a function declaration.
type Arg struct {
	Type    Type
	Name    string
	Default Expr
}

// VarDeclStmt declares a variable or constant, optionally with an
// initializer. Type.IsConst is set when the declaration used `const`.
type VarDeclStmt struct {
	base
	Type        Type
	Name        string
	Initializer Expr
}

func (*VarDeclStmt) stmtNode() {}

// FuncDeclStmt declares a function with a fixed-arity parameter list.
type FuncDeclStmt struct {
	base
	ReturnType Type
	Name       string
	Args       []Arg
	Body       []Stmt
}

func (*FuncDeclStmt) stmtNode() {}

// FuncCallStmt calls a function for its side effects, discarding any
// return value.
type FuncCallStmt struct {
	base
	Name string
	Args []Expr
}

func (*FuncCallStmt) stmtNode() {}

// VarAsgnStmt assigns rhs to the variable named Name. Compound assignment
// operators are desugared by the parser into `Name = Name op rhs` before
// this node is constructed, so this node only ever represents plain `=`.
type VarAsgnStmt struct {
	base
	Name string
	RHS  Expr
}

func (*VarAsgnStmt) stmtNode() {}

// IfStmt is `if (Cond) ThenBlock else ElseBlock`. ElseBlock is nil when
// there is no else clause.
type IfStmt struct {
	base
	Cond      Expr
	ThenBlock []Stmt
	ElseBlock []Stmt
}

func (*IfStmt) stmtNode() {}

// ForCycleStmt is `for (Init; Cond; Step) Body`. Init is either a
// VarDeclStmt or a VarAsgnStmt.
type ForCycleStmt struct {
	base
	Init Stmt
	Cond Expr
	Step Stmt
	Body []Stmt
}

func (*ForCycleStmt) stmtNode() {}

// WhileCycleStmt is `while (Cond) Body`.
type WhileCycleStmt struct {
	base
	Cond Expr
	Body []Stmt
}

func (*WhileCycleStmt) stmtNode() {}

// DoWhileCycleStmt is `do Body while (Cond);`.
type DoWhileCycleStmt struct {
	base
	Cond Expr
	Body []Stmt
}

func (*DoWhileCycleStmt) stmtNode() {}

// BreakStmt and ContinueStmt carry no payload beyond their anchor token;
// the semantic analyzer enforces that they only occur inside a loop body.
type BreakStmt struct{ base }

func (*BreakStmt) stmtNode() {}

type ContinueStmt struct{ base }

func (*ContinueStmt) stmtNode() {}

// ReturnStmt returns from the enclosing function. Expr is nil for a bare
// `return;`; the semantic analyzer rejects a nil Expr whatever the
// function's return type.
type ReturnStmt struct {
	base
	Expr Expr
}

func (*ReturnStmt) stmtNode() {}
