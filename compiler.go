package blink

import (
	"github.com/juju/errors"
	"github.com/llir/llvm/ir"
)

// Compiler ties the four pipeline stages together, grounded on the same
// lex-then-parse-then-act shape the teacher uses to turn source text into
// a finished artifact, generalized to blink's extra semantic-analysis
// stage and its IR-module output instead of a rendered string.
type Compiler struct {
	name   string
	src    string
	loader *FileLoader

	tokens []*Token
	stmts  []Stmt
}

// NewCompiler creates a compiler for a named source with the given include
// loader. Pass a nil loader if the source is known not to use $include.
func NewCompiler(name, src string, loader *FileLoader) *Compiler {
	return &Compiler{name: name, src: src, loader: loader}
}

// Lex runs the lexical stage, including recursive $include expansion.
func (c *Compiler) Lex() error {
	tokens, err := lex(c.name, c.src, c.loader, nil)
	if err != nil {
		return errors.Trace(err)
	}
	c.tokens = tokens
	return nil
}

// Parse runs the parsing stage over the already-lexed token stream.
func (c *Compiler) Parse() error {
	p := newParser(c.name, c.tokens)
	stmts, err := p.Parse()
	if err != nil {
		return errors.Trace(err)
	}
	c.stmts = stmts
	return nil
}

// Analyze runs the semantic analyzer over the already-parsed statement list.
func (c *Compiler) Analyze() error {
	a := NewAnalyzer()
	return errors.Trace(a.Analyze(c.stmts))
}

// Generate runs the code generator and returns the finished module.
func (c *Compiler) Generate() (*ir.Module, error) {
	cg := NewCodegen(c.name)
	m, err := cg.Generate(c.stmts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m, nil
}

// Compile runs all four stages in order and returns the finished module,
// matching the package's strict pipeline: no stage starts before the
// previous one has fully succeeded.
func Compile(name, src string, loader *FileLoader) (*ir.Module, error) {
	c := NewCompiler(name, src, loader)
	if err := c.Lex(); err != nil {
		return nil, err
	}
	logger.Debugf("lexed %s: %d tokens", name, len(c.tokens))
	if err := c.Parse(); err != nil {
		return nil, err
	}
	logger.Debugf("parsed %s: %d top-level statements", name, len(c.stmts))
	if err := c.Analyze(); err != nil {
		return nil, err
	}
	logger.Debugf("analyzed %s", name)
	return c.Generate()
}
