package blink

import (
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("blink")

// Subsystem identifies which of the four pipeline stages raised a
// diagnostic, matching the vocabulary printed in the "In file:" header.
type Subsystem int

const (
	SubsystemLexer Subsystem = iota
	SubsystemParser
	SubsystemSemantic
	SubsystemCodegen
)

func (s Subsystem) String() string {
	switch s {
	case SubsystemLexer:
		return "lexer"
	case SubsystemParser:
		return "parser"
	case SubsystemSemantic:
		return "semantic"
	case SubsystemCodegen:
		return "codegen"
	default:
		return "unknown"
	}
}

// Error is the single diagnostic type threaded through all four pipeline
// stages. Every fatal condition anywhere in the compiler is reported as one
// of these, never a bare string.
type Error struct {
	Filename  string
	Line      int
	Column    int
	Token     *Token
	Subsystem Subsystem
	Msg       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Subsystem, e.Msg)
}

// Report prints the two-line diagnostic format the compiler has always
// used and terminates the process with the given exit code. Diagnostics
// are single-shot: the pipeline halts at the first error, so unlike the
// original C++ error service there is no need for a "have we already
// printed the header" flag threaded across calls.
func Report(err error, exitCode int) {
	var e *Error
	if ce, ok := errors.Cause(err).(*Error); ok {
		e = ce
	} else {
		e = &Error{Msg: err.Error()}
	}
	fmt.Fprintf(os.Stderr, "In file: %s:%d:\n", e.Filename, e.Line)
	fmt.Fprintf(os.Stderr, "%s: %s\n", e.Subsystem, e.Msg)
	logger.Errorf("compilation aborted: %s", e.Error())
	os.Exit(exitCode)
}
