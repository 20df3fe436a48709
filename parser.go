package blink

import (
	"github.com/juju/errors"
)

// Parser walks a flat token vector with small lookahead, grounded on the
// same Peek/Match/Consume navigation style the lexer's tokens are built
// for, adapted to blink's closed statement/expression grammar instead of
// a tag-extensible template grammar.
type Parser struct {
	name   string
	idx    int
	tokens []*Token
}

func newParser(name string, tokens []*Token) *Parser {
	return &Parser{name: name, tokens: tokens}
}

func (p *Parser) Consume()        { p.idx++ }
func (p *Parser) ConsumeN(n int)  { p.idx += n }
func (p *Parser) Current() *Token { return p.Get(p.idx) }
func (p *Parser) Remaining() int  { return len(p.tokens) - p.idx }

func (p *Parser) Get(i int) *Token {
	if i >= 0 && i < len(p.tokens) {
		return p.tokens[i]
	}
	return nil
}

func (p *Parser) PeekN(shift int, typ TokenType) *Token {
	t := p.Get(p.idx + shift)
	if t != nil && t.Typ == typ {
		return t
	}
	return nil
}

func (p *Parser) PeekType(typ TokenType) *Token { return p.PeekN(0, typ) }

func (p *Parser) PeekVal(shift int, typ TokenType, val string) *Token {
	t := p.PeekN(shift, typ)
	if t != nil && t.Val == val {
		return t
	}
	return nil
}

func (p *Parser) MatchType(typ TokenType) *Token {
	if t := p.PeekType(typ); t != nil {
		p.Consume()
		return t
	}
	return nil
}

func (p *Parser) Match(typ TokenType, val string) *Token {
	if t := p.PeekVal(0, typ, val); t != nil {
		p.Consume()
		return t
	}
	return nil
}

func (p *Parser) MatchOne(typ TokenType, vals ...string) *Token {
	for _, v := range vals {
		if t := p.Match(typ, v); t != nil {
			return t
		}
	}
	return nil
}

func (p *Parser) PeekOneVal(typ TokenType, vals ...string) *Token {
	for _, v := range vals {
		if t := p.PeekVal(0, typ, v); t != nil {
			return t
		}
	}
	return nil
}

// Error formats a parse-time diagnostic the way the rest of the compiler
// does: an Error value carrying the subsystem tag and the offending
// token's position, never a bare string.
func (p *Parser) Error(msg string, token *Token) error {
	if token == nil {
		token = p.Current()
		if token == nil && len(p.tokens) > 0 {
			token = p.tokens[len(p.tokens)-1]
		}
	}
	e := &Error{Subsystem: SubsystemParser, Msg: msg}
	if token != nil {
		e.Filename = token.Filename
		e.Line = token.Line
		e.Column = token.Col
		e.Token = token
	}
	return errors.Trace(e)
}

// expectSymbol consumes the next token if it is the given symbol, else
// returns a parse error naming what was expected.
func (p *Parser) expectSymbol(val string) (*Token, error) {
	if t := p.Match(TokenSymbol, val); t != nil {
		return t, nil
	}
	return nil, p.Error("expected '"+val+"'", p.Current())
}

func (p *Parser) expectIdentifier() (*Token, error) {
	if t := p.MatchType(TokenIdentifier); t != nil {
		return t, nil
	}
	return nil, p.Error("expected an identifier", p.Current())
}

// Parse consumes the entire token vector and returns the top-level
// statement list. Module scope makes no distinction from function-body
// scope: globals are plain VarDeclStmt nodes at depth 0.
func (p *Parser) Parse() ([]Stmt, error) {
	var stmts []Stmt
	for p.Remaining() > 0 {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// parseStmt dispatches on the leading token, per the statement grammar.
func (p *Parser) parseStmt() (Stmt, error) {
	cur := p.Current()
	if cur == nil {
		return nil, p.Error("unexpected end of input", nil)
	}

	switch {
	case p.PeekOneVal(TokenKeyword, "var", "const") != nil:
		return p.parseVarDecl()
	case p.PeekVal(0, TokenKeyword, "func") != nil:
		return p.parseFuncDecl()
	case cur.Typ == TokenIdentifier && p.PeekVal(1, TokenSymbol, "(") != nil:
		return p.parseFuncCallStmt()
	case cur.Typ == TokenIdentifier:
		return p.parseAssignment()
	case p.PeekVal(0, TokenKeyword, "if") != nil:
		return p.parseIf()
	case p.PeekVal(0, TokenKeyword, "for") != nil:
		return p.parseFor()
	case p.PeekVal(0, TokenKeyword, "while") != nil:
		return p.parseWhile()
	case p.PeekVal(0, TokenKeyword, "do") != nil:
		return p.parseDoWhile()
	case p.PeekVal(0, TokenKeyword, "break") != nil:
		tok := p.Current()
		p.Consume()
		if _, err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return &BreakStmt{base{tok}}, nil
	case p.PeekVal(0, TokenKeyword, "continue") != nil:
		tok := p.Current()
		p.Consume()
		if _, err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return &ContinueStmt{base{tok}}, nil
	case p.PeekVal(0, TokenKeyword, "return") != nil:
		return p.parseReturn()
	default:
		return nil, p.Error("Unsupported token", cur)
	}
}

// parseType consumes a primitive-type keyword with an optional leading
// `const` and trailing `*`.
func (p *Parser) parseType() (Type, error) {
	isConst := p.Match(TokenKeyword, "const") != nil

	tok := p.MatchType(TokenType_)
	if tok == nil {
		return Type{}, p.Error("expected a type", p.Current())
	}
	t, err := builtinType(tok.Val, false)
	if err != nil {
		return Type{}, p.Error(err.Error(), tok)
	}
	t.IsConst = isConst
	if p.Match(TokenSymbol, "*") != nil {
		t.IsPointer = true
	}
	return t, nil
}

// parseVarDecl parses `(var|const) ID ':' type ('=' expr)? ';'`.
func (p *Parser) parseVarDecl() (Stmt, error) {
	declTok := p.Current()
	isConst := declTok.Val == "const"
	p.Consume()

	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	typ.IsConst = typ.IsConst || isConst

	var initializer Expr
	if p.Match(TokenSymbol, "=") != nil {
		initializer, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	return &VarDeclStmt{base{declTok}, typ, nameTok.Val, initializer}, nil
}

// parseArgList parses `arg-list?` for a function declaration, where each
// argument is `ID ':' (const)? type ('=' expr)?`. A trailing comma before
// ')' is not accepted.
func (p *Parser) parseArgList() ([]Arg, error) {
	var args []Arg
	if p.PeekVal(0, TokenSymbol, ")") != nil {
		return args, nil
	}
	for {
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		var def Expr
		if p.Match(TokenSymbol, "=") != nil {
			def, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		args = append(args, Arg{Type: typ, Name: nameTok.Val, Default: def})

		if p.Match(TokenSymbol, ",") != nil {
			continue
		}
		break
	}
	return args, nil
}

// parseFuncDecl parses `func ID '(' arg-list? ')' ':' (const)? type '{' stmt* '}'`.
func (p *Parser) parseFuncDecl() (Stmt, error) {
	funcTok := p.Current()
	p.Consume()

	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.PeekVal(0, TokenSymbol, "{") == nil {
		return nil, p.Error("expected '{'", p.Current())
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FuncDeclStmt{base{funcTok}, retType, nameTok.Val, args, body}, nil
}

// parseBlock parses either a single statement or a `{ stmt* }` block,
// matching the shared body grammar of if/while/do-while/for.
func (p *Parser) parseBlock() ([]Stmt, error) {
	if p.Match(TokenSymbol, "{") == nil {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return []Stmt{stmt}, nil
	}
	var stmts []Stmt
	for p.PeekVal(0, TokenSymbol, "}") == nil {
		if p.Remaining() == 0 {
			return nil, p.Error("expected '}'", p.Current())
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.Consume()
	return stmts, nil
}

func (p *Parser) parseFuncCallArgs() ([]Expr, error) {
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var args []Expr
	if p.PeekVal(0, TokenSymbol, ")") == nil {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.Match(TokenSymbol, ",") != nil {
				continue
			}
			break
		}
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseFuncCallStmt() (Stmt, error) {
	nameTok, _ := p.expectIdentifier()
	args, err := p.parseFuncCallArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &FuncCallStmt{base{nameTok}, nameTok.Val, args}, nil
}

var compoundAssignOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
}

// parseAssignment parses `ID ('=' | compound-op) expr ';'`. Compound
// operators are desugared here into `ID = ID op expr`, over a fresh VarExpr
// for the LHS, so later stages only ever see plain assignment.
func (p *Parser) parseAssignment() (Stmt, error) {
	nameTok, _ := p.expectIdentifier()

	if eq := p.Match(TokenSymbol, "="); eq != nil {
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return &VarAsgnStmt{base{nameTok}, nameTok.Val, rhs}, nil
	}

	for sym, op := range compoundAssignOps {
		if ct := p.Match(TokenSymbol, sym); ct != nil {
			rhs, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
			desugared := &BinaryExpr{base{ct}, op, &VarExpr{base{nameTok}, nameTok.Val}, rhs}
			return &VarAsgnStmt{base{nameTok}, nameTok.Val, desugared}, nil
		}
	}

	return nil, p.Error("unsupported compound assignment", p.Current())
}

func (p *Parser) parseIf() (Stmt, error) {
	ifTok := p.Current()
	p.Consume()
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock []Stmt
	if p.Match(TokenKeyword, "else") != nil {
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{base{ifTok}, cond, thenBlock, elseBlock}, nil
}

// parseForInit decides between a VarDeclStmt and a VarAsgnStmt by whether
// the header starts with a `var`/`const` keyword.
func (p *Parser) parseForInit() (Stmt, error) {
	if p.PeekOneVal(TokenKeyword, "var", "const") != nil {
		return p.parseVarDecl()
	}
	return p.parseAssignment()
}

// parseForStep parses an assignment without a trailing ';' (the header's
// semicolons are supplied by init/cond, not step).
func (p *Parser) parseForStep() (Stmt, error) {
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if eq := p.Match(TokenSymbol, "="); eq != nil {
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &VarAsgnStmt{base{nameTok}, nameTok.Val, rhs}, nil
	}
	for sym, op := range compoundAssignOps {
		if ct := p.Match(TokenSymbol, sym); ct != nil {
			rhs, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			desugared := &BinaryExpr{base{ct}, op, &VarExpr{base{nameTok}, nameTok.Val}, rhs}
			return &VarAsgnStmt{base{nameTok}, nameTok.Val, desugared}, nil
		}
	}
	return nil, p.Error("unsupported compound assignment", p.Current())
}

func (p *Parser) parseFor() (Stmt, error) {
	forTok := p.Current()
	p.Consume()
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	init, err := p.parseForInit()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	step, err := p.parseForStep()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForCycleStmt{base{forTok}, init, cond, step, body}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	whileTok := p.Current()
	p.Consume()
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileCycleStmt{base{whileTok}, cond, body}, nil
}

func (p *Parser) parseDoWhile() (Stmt, error) {
	doTok := p.Current()
	p.Consume()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if p.Match(TokenKeyword, "while") == nil {
		return nil, p.Error("expected 'while'", p.Current())
	}
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &DoWhileCycleStmt{base{doTok}, cond, body}, nil
}

// parseReturn parses `return expr? ;`. The grammar allows a bare
// `return;`; whether that is accepted is a semantic-analyzer concern (and,
// matching the source behavior being preserved, it is not -- the analyzer
// unconditionally dereferences the returned expression).
func (p *Parser) parseReturn() (Stmt, error) {
	retTok := p.Current()
	p.Consume()

	var expr Expr
	if p.PeekVal(0, TokenSymbol, ";") == nil {
		var err error
		expr, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ReturnStmt{base{retTok}, expr}, nil
}
