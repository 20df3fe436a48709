package blink

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/juju/errors"
)

// lexerStateFn follows Rob Pike's "Lexical Scanning in Go" shape: each state
// does a bit of work and returns the next state, or nil to stop.
type lexerStateFn func() lexerStateFn

type lexer struct {
	name       string
	input      string
	start, pos int
	width      int
	tokens     []*Token
	errored    bool
	errMsg     string

	startline, startcol int
	line, col           int

	// includeSet tracks every file absolute path already pulled in by this
	// compilation, threaded per-invocation (not a package-level singleton)
	// so two independent compiles never interfere with each other.
	includeSet map[string]bool
	loader     *FileLoader
}

// lex tokenizes input and resolves any $include directives encountered
// along the way via loader, recording every pulled-in file in includeSet.
func lex(name, input string, loader *FileLoader, includeSet map[string]bool) ([]*Token, error) {
	if includeSet == nil {
		includeSet = make(map[string]bool)
	}
	l := &lexer{
		name:       name,
		input:      input,
		line:       1,
		col:        1,
		includeSet: includeSet,
		loader:     loader,
	}

	state := l.stateCode
	for state != nil {
		state = state()
	}

	if l.errored {
		last := l.tokens[len(l.tokens)-1]
		return nil, errors.Annotatef(
			&Error{Subsystem: SubsystemLexer, Filename: name, Line: last.Line, Msg: l.errMsg},
			"lexing %s", name,
		)
	}

	return l.tokens, nil
}

func (l *lexer) value() string {
	return l.input[l.start:l.pos]
}

func (l *lexer) length() int {
	return l.pos - l.start
}

func (l *lexer) emit(t TokenType) {
	tok := &Token{
		Filename: l.name,
		Typ:      t,
		Val:      l.value(),
		Line:     l.startline,
		Col:      l.startcol,
	}
	if t == TokenString || t == TokenChar {
		tok.Val = stringEscapeReplacer.Replace(tok.Val)
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.pos
	l.startline = l.line
	l.startcol = l.col
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
	if l.width == 1 && l.pos < len(l.input) && l.input[l.pos] == '\n' {
		l.line--
	} else {
		l.col--
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startline = l.line
	l.startcol = l.col
}

func (l *lexer) accept(charset string) bool {
	if strings.ContainsRune(charset, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(charset string) {
	for strings.ContainsRune(charset, l.next()) {
	}
	l.backup()
}

func (l *lexer) errorf(format string, args ...any) lexerStateFn {
	l.errMsg = fmt.Sprintf(format, args...)
	l.errored = true
	l.tokens = append(l.tokens, &Token{
		Filename: l.name,
		Typ:      TokenError,
		Val:      l.errMsg,
		Line:     l.startline,
		Col:      l.startcol,
	})
	return nil
}

const tokenSpaceChars = " \t\r\n"

func (l *lexer) stateCode() lexerStateFn {
	for {
		l.acceptRun(tokenSpaceChars)
		l.ignore()

		if l.pos >= len(l.input) {
			return nil
		}

		r := l.peek()

		switch {
		case r == '$':
			return l.stateInclude
		case r == '"':
			return l.stateString
		case r == '\'':
			return l.stateChar
		case strings.ContainsRune(tokenDigits, r):
			return l.stateNumber
		case strings.ContainsRune(tokenIdentifierChars, r):
			return l.stateIdentifier
		case r == '/' && l.peekAhead(1) == '/':
			l.skipLineComment()
			continue
		case r == '/' && l.peekAhead(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return l.errorf("%s", err.Error())
			}
			continue
		default:
			if sym := l.matchSymbol(); sym != "" {
				l.emit(TokenSymbol)
				continue
			}
			return l.errorf("lexer: unsupported operator character '%c'", r)
		}
	}
}

func (l *lexer) peekAhead(n int) rune {
	pos := l.pos
	var r rune
	for i := 0; i <= n; i++ {
		if pos >= len(l.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(l.input[pos:])
		pos += w
	}
	return r
}

func (l *lexer) skipLineComment() {
	for {
		r := l.next()
		if r == 0 || r == '\n' {
			break
		}
	}
	l.ignore()
}

func (l *lexer) skipBlockComment() error {
	l.next()
	l.next()
	for {
		r := l.next()
		if r == 0 {
			return errors.New("unterminated block comment")
		}
		if r == '*' && l.peek() == '/' {
			l.next()
			break
		}
	}
	l.ignore()
	return nil
}

func (l *lexer) matchSymbol() string {
	rest := l.input[l.pos:]
	for _, sym := range TokenSymbols {
		if strings.HasPrefix(rest, sym) {
			for range sym {
				l.next()
			}
			return sym
		}
	}
	return ""
}

func (l *lexer) stateIdentifier() lexerStateFn {
	l.acceptRun(tokenIdentifierCharsWithDigits)
	word := l.value()
	switch {
	case tokenKeywordsMap[word]:
		l.emit(TokenKeyword)
	case tokenTypeNamesMap[word]:
		l.emit(TokenType_)
	default:
		l.emit(TokenIdentifier)
	}
	return l.stateCode
}

func (l *lexer) stateNumber() lexerStateFn {
	l.acceptRun(tokenDigits)
	isFloat := false
	if l.accept(".") {
		isFloat = true
		l.acceptRun(tokenDigits)
		if l.accept(".") {
			return l.errorf("lexer: Invalid number literal")
		}
	}
	if isFloat {
		l.emit(TokenFloatNumber)
	} else {
		l.emit(TokenIntNumber)
	}
	return l.stateCode
}

// readEscapedRun consumes runes up to and including the closing delimiter,
// validating every backslash escape against the closed set the language
// accepts (\n \t \\ \" \' \a \b \r \f \v); anything else is fatal.
func (l *lexer) readEscapedRun(delim rune, what string) lexerStateFn {
	for {
		r := l.next()
		if r == 0 || r == '\n' {
			return l.errorf("lexer: unterminated %s literal", what)
		}
		if r == '\\' {
			esc := l.next()
			if _, ok := stringEscapeChars[byte(esc)]; !ok {
				return l.errorf("lexer: unsupported escape sequence '\\%c'", esc)
			}
			continue
		}
		if r == delim {
			return nil
		}
	}
}

func (l *lexer) stateString() lexerStateFn {
	l.next() // opening quote
	l.ignore()
	if errState := l.readEscapedRun('"', "string"); errState != nil {
		return errState
	}
	l.backup()
	l.emit(TokenString)
	l.next()
	l.ignore()
	return l.stateCode
}

func (l *lexer) stateChar() lexerStateFn {
	l.next() // opening quote
	l.ignore()
	if errState := l.readEscapedRun('\'', "char"); errState != nil {
		return errState
	}
	l.backup()
	l.emit(TokenChar)
	l.next()
	l.ignore()
	return l.stateCode
}

// stateInclude handles a `$include <name>` preprocessor directive (the
// angle brackets may be omitted: `$include name`). The named file gains
// the ".bl" extension and is resolved by the loader: against its base
// directory when one is set, else relative to the current file's
// directory. If its absolute path is already in the
// per-invocation includeSet, the directive is a no-op (cycle/duplicate
// guard); otherwise it is lexed with the same includeSet and its tokens
// are spliced into the current stream in place of the directive.
func (l *lexer) stateInclude() lexerStateFn {
	l.next() // '$'
	l.acceptRun(tokenIdentifierChars)
	if l.value() != "$include" {
		return l.errorf("lexer: unsupported preprocessor directive '%s'", l.value())
	}
	l.ignore()

	l.acceptRun(tokenSpaceChars)
	l.ignore()

	bracketed := l.accept("<")
	l.ignore()

	if !strings.ContainsRune(tokenIdentifierChars, l.peek()) {
		return l.errorf("lexer: malformed include directive, expected a name")
	}
	l.acceptRun(tokenIdentifierCharsWithDigits)
	name := l.value() + ".bl"
	l.ignore()

	if bracketed && !l.accept(">") {
		return l.errorf("lexer: malformed include directive, expected '>'")
	}
	l.ignore()

	if l.loader == nil {
		return l.errorf("lexer: cannot resolve include '%s', no loader configured", name)
	}

	abs := l.loader.Abs(l.name, name)
	if !l.includeSet[abs] {
		l.includeSet[abs] = true
		src, err := l.loader.Get(abs)
		if err != nil {
			return l.errorf("lexer: cannot include '%s': %s", name, err.Error())
		}
		subTokens, err := lex(abs, src, l.loader, l.includeSet)
		if err != nil {
			l.errored = true
			l.errMsg = err.Error()
			return nil
		}
		l.tokens = append(l.tokens, subTokens...)
	}

	return l.stateCode
}
