package blink

import (
	"strings"
	"testing"
)

func TestSubsystemString(t *testing.T) {
	cases := map[Subsystem]string{
		SubsystemLexer:    "lexer",
		SubsystemParser:   "parser",
		SubsystemSemantic: "semantic",
		SubsystemCodegen:  "codegen",
	}
	for sub, want := range cases {
		if got := sub.String(); got != want {
			t.Errorf("Subsystem(%d).String() = %q, want %q", int(sub), got, want)
		}
	}
}

func TestErrorError(t *testing.T) {
	e := &Error{Subsystem: SubsystemSemantic, Msg: "Variable 'x' does not exist"}
	got := e.Error()
	if !strings.HasPrefix(got, "semantic:") {
		t.Errorf("Error() = %q, want prefix %q", got, "semantic:")
	}
	if !strings.Contains(got, "Variable 'x' does not exist") {
		t.Errorf("Error() = %q, missing message", got)
	}
}
