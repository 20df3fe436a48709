package blink

import "strings"

// TokenType identifies the lexical category of a Token.
type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenIdentifier
	TokenKeyword
	TokenType_ // built-in type name (i32, u8, f64, ...)
	TokenIntNumber
	TokenFloatNumber
	TokenString
	TokenChar
	TokenSymbol
)

func (t TokenType) String() string {
	switch t {
	case TokenError:
		return "error"
	case TokenEOF:
		return "eof"
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenType_:
		return "type"
	case TokenIntNumber:
		return "int"
	case TokenFloatNumber:
		return "float"
	case TokenString:
		return "string"
	case TokenChar:
		return "char"
	case TokenSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Token is a single lexeme with its source position.
type Token struct {
	Filename string
	Typ      TokenType
	Val      string
	Line     int
	Col      int
}

// String formats a token the way the compiler prints them while tracing
// a source file, e.g. "'identifier' : 'x' (3:8)".
func (t *Token) String() string {
	return "'" + t.Typ.String() + "' : '" + t.Val + "' (" +
		itoa(t.Line) + ":" + itoa(t.Col) + ")"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// tokenKeywords is the closed set of reserved words. Order doesn't matter;
// lookups go through tokenKeywordsMap.
var tokenKeywords = []string{
	"var", "const", "func", "class", "enum", "sizeof",
	"if", "else", "while", "do", "for",
	"break", "continue", "return",
	"true", "false",
}

var tokenKeywordsMap = func() map[string]bool {
	m := make(map[string]bool, len(tokenKeywords))
	for _, k := range tokenKeywords {
		m[k] = true
	}
	return m
}()

// tokenTypeNames is the closed set of built-in type-name spellings.
var tokenTypeNames = []string{
	"i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64",
	"f32", "f64", "bool", "nothing",
}

var tokenTypeNamesMap = func() map[string]bool {
	m := make(map[string]bool, len(tokenTypeNames))
	for _, n := range tokenTypeNames {
		m[n] = true
	}
	return m
}()

// TokenSymbols is ordered longest-prefix-first so the lexer's greedy scan
// matches multi-char operators before their single-char prefixes.
var TokenSymbols = []string{
	"==", "!=", "<=", ">=", "&&", "||", ">>", "<<",
	"+=", "-=", "*=", "/=", "%=",
	"(", ")", "{", "}", "[", "]",
	";", ":", ",", ".", "?",
	"+", "-", "*", "/", "%", "^",
	"=", "<", ">", "!", "~", "&", "|",
}

const tokenIdentifierChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
const tokenDigits = "0123456789"
const tokenIdentifierCharsWithDigits = tokenIdentifierChars + tokenDigits

// stringEscapeChars is the closed escape set accepted inside char/string
// literals: \n \t \\ \" \' \a \b \r \f \v. Anything else is fatal.
var stringEscapeChars = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'a':  '\a',
	'b':  '\b',
	'r':  '\r',
	'f':  '\f',
	'v':  '\v',
}

var stringEscapeReplacer = strings.NewReplacer(
	`\n`, "\n",
	`\t`, "\t",
	`\\`, "\\",
	`\"`, "\"",
	`\'`, "'",
	`\a`, "\a",
	`\b`, "\b",
	`\r`, "\r",
	`\f`, "\f",
	`\v`, "\v",
)
