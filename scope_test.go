package blink

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up go-check into the "go test" runner.
func TestScope(t *testing.T) { TestingT(t) }

type ScopeSuite struct{}

var _ = Suite(&ScopeSuite{})

func (s *ScopeSuite) TestDeclareAndLookup(c *C) {
	sc := NewScope[Type]()
	i32, _ := builtinType("i32", false)
	sc.Declare("x", i32)

	v, ok := sc.Lookup("x")
	c.Assert(ok, Equals, true)
	c.Assert(v, Equals, i32)
}

func (s *ScopeSuite) TestShadowing(c *C) {
	sc := NewScope[Type]()
	i32, _ := builtinType("i32", false)
	f64, _ := builtinType("f64", false)

	sc.Declare("x", i32)
	sc.Enter()
	sc.Declare("x", f64)

	v, _ := sc.Lookup("x")
	c.Assert(v, Equals, f64)

	sc.Leave()
	v, _ = sc.Lookup("x")
	c.Assert(v, Equals, i32)
}

func (s *ScopeSuite) TestDeclaredInAnyFrame(c *C) {
	sc := NewScope[Type]()
	i32, _ := builtinType("i32", false)
	sc.Declare("x", i32)
	sc.Enter()

	c.Assert(sc.DeclaredInAnyFrame("x"), Equals, true)
	c.Assert(sc.DeclaredInAnyFrame("y"), Equals, false)
}

func (s *ScopeSuite) TestUnresolvedAfterLeave(c *C) {
	sc := NewScope[Type]()
	sc.Enter()
	i32, _ := builtinType("i32", false)
	sc.Declare("local", i32)
	sc.Leave()

	_, ok := sc.Lookup("local")
	c.Assert(ok, Equals, false)
}
