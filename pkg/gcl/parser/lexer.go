package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mercator-hq/ganymede/pkg/gcl/ast"
	gclerrors "mercator-hq/ganymede/pkg/gcl/errors"
)

// lexer converts GCL rule text into a flat token stream.
// It is line-aware: newlines are emitted as tokens because clauses are
// line-delimited, and the parser decides where they are significant.
type lexer struct {
	input  string
	file   string
	pos    int // byte offset of next rune
	line   int
	column int
	tokens []token
}

func newLexer(input, file string) *lexer {
	return &lexer{
		input:  input,
		file:   file,
		line:   1,
		column: 1,
	}
}

// run tokenizes the entire input. On a lexical error it stops and returns
// a rich error with the offending location.
func (l *lexer) run() ([]token, *gclerrors.Error) {
	for l.pos < len(l.input) {
		c := l.input[l.pos]

		switch {
		case c == '\n':
			l.emit(tokenNewline, "\n")
			l.advance(1)
			l.line++
			l.column = 1

		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)

		case c == '#':
			// Comment runs to end of line; the newline itself is kept.
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advanceRune()
			}

		case c == '.':
			l.emit(tokenDot, ".")
			l.advance(1)

		case c == '*':
			l.emit(tokenStar, "*")
			l.advance(1)

		case c == '[':
			l.emit(tokenLBracket, "[")
			l.advance(1)

		case c == ']':
			l.emit(tokenRBracket, "]")
			l.advance(1)

		case c == '{':
			l.emit(tokenLBrace, "{")
			l.advance(1)

		case c == '}':
			l.emit(tokenRBrace, "}")
			l.advance(1)

		case c == ',':
			l.emit(tokenComma, ",")
			l.advance(1)

		case c == '=':
			if l.peekAt(1) == '=' {
				l.emit(tokenEq, "==")
				l.advance(2)
			} else {
				l.emit(tokenAssign, "=")
				l.advance(1)
			}

		case c == '!':
			if l.peekAt(1) == '=' {
				l.emit(tokenNeq, "!=")
				l.advance(2)
			} else {
				l.emit(tokenBang, "!")
				l.advance(1)
			}

		case c == '<':
			if l.peekAt(1) != '<' {
				return nil, l.errorf("unexpected character %q", c)
			}
			if err := l.lexMessage(); err != nil {
				return nil, err
			}

		case c == '\'' || c == '"':
			if err := l.lexString(c); err != nil {
				return nil, err
			}

		case c == '%':
			if err := l.lexVariable(); err != nil {
				return nil, err
			}

		case c >= '0' && c <= '9', c == '-':
			if err := l.lexNumber(); err != nil {
				return nil, err
			}

		case isIdentStart(c):
			l.lexIdent()

		default:
			return nil, l.errorf("unexpected character %q", c)
		}
	}

	l.emit(tokenEOF, "")
	return l.tokens, nil
}

// lexMessage scans a <<...>> block, keeping the raw interior text.
// Message blocks may span multiple lines.
func (l *lexer) lexMessage() *gclerrors.Error {
	startLine, startCol := l.line, l.column
	l.advance(2) // consume <<

	start := l.pos
	for l.pos < len(l.input) {
		if l.input[l.pos] == '>' && l.peekAt(1) == '>' {
			text := strings.TrimSpace(l.input[start:l.pos])
			l.tokens = append(l.tokens, token{typ: tokenMessage, text: text, line: startLine, column: startCol})
			l.advance(2)
			return nil
		}
		if l.input[l.pos] == '\n' {
			l.line++
			l.column = 0
		}
		l.advanceRune()
	}

	return &gclerrors.Error{
		Type:       gclerrors.ErrorTypeSyntax,
		Message:    "unterminated message block",
		Location:   ast.Location{File: l.file, Line: startLine, Column: startCol},
		Suggestion: "close the message block with '>>'",
	}
}

func (l *lexer) lexString(quote byte) *gclerrors.Error {
	startLine, startCol := l.line, l.column
	l.advance(1) // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case quote:
			l.advance(1)
			l.tokens = append(l.tokens, token{typ: tokenString, text: sb.String(), line: startLine, column: startCol})
			return nil
		case '\\':
			if l.pos+1 < len(l.input) {
				sb.WriteByte(l.input[l.pos+1])
				l.advance(2)
				continue
			}
			l.advance(1)
		case '\n':
			return &gclerrors.Error{
				Type:       gclerrors.ErrorTypeSyntax,
				Message:    "unterminated string literal",
				Location:   ast.Location{File: l.file, Line: startLine, Column: startCol},
				Suggestion: fmt.Sprintf("close the string with %q", string(quote)),
			}
		default:
			_, size := utf8.DecodeRuneInString(l.input[l.pos:])
			sb.WriteString(l.input[l.pos : l.pos+size])
			l.pos += size
			l.column++
		}
	}

	return &gclerrors.Error{
		Type:       gclerrors.ErrorTypeSyntax,
		Message:    "unterminated string literal",
		Location:   ast.Location{File: l.file, Line: startLine, Column: startCol},
		Suggestion: fmt.Sprintf("close the string with %q", string(quote)),
	}
}

func (l *lexer) lexVariable() *gclerrors.Error {
	startLine, startCol := l.line, l.column
	l.advance(1) // consume %

	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance(1)
	}
	if l.pos == start {
		return &gclerrors.Error{
			Type:       gclerrors.ErrorTypeSyntax,
			Message:    "'%' must be followed by a variable name",
			Location:   ast.Location{File: l.file, Line: startLine, Column: startCol},
			Suggestion: "reference a let binding as %name",
		}
	}

	l.tokens = append(l.tokens, token{typ: tokenVariable, text: l.input[start:l.pos], line: startLine, column: startCol})
	return nil
}

func (l *lexer) lexNumber() *gclerrors.Error {
	startLine, startCol := l.line, l.column
	start := l.pos

	if l.input[l.pos] == '-' {
		l.advance(1)
		if l.pos >= len(l.input) || l.input[l.pos] < '0' || l.input[l.pos] > '9' {
			return &gclerrors.Error{
				Type:     gclerrors.ErrorTypeSyntax,
				Message:  "'-' must be followed by a digit",
				Location: ast.Location{File: l.file, Line: startLine, Column: startCol},
			}
		}
	}

	seenDot := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c >= '0' && c <= '9' {
			l.advance(1)
			continue
		}
		// A dot is part of the number only when followed by a digit,
		// so path expressions like `Port.80` never arise in practice
		// but `3.total` would lex as number then path separator.
		if c == '.' && !seenDot && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
			seenDot = true
			l.advance(1)
			continue
		}
		break
	}

	l.tokens = append(l.tokens, token{typ: tokenNumber, text: l.input[start:l.pos], line: startLine, column: startCol})
	return nil
}

func (l *lexer) lexIdent() {
	startLine, startCol := l.line, l.column
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance(1)
	}
	l.tokens = append(l.tokens, token{typ: tokenIdent, text: l.input[start:l.pos], line: startLine, column: startCol})
}

func (l *lexer) emit(typ tokenType, text string) {
	l.tokens = append(l.tokens, token{typ: typ, text: text, line: l.line, column: l.column})
}

// advance consumes n bytes. Callers use it only for ASCII runs, where bytes
// and columns coincide.
func (l *lexer) advance(n int) {
	l.pos += n
	l.column += n
}

// advanceRune consumes one rune, counting the column in runes so reported
// locations line up with what editors display for non-ASCII text.
func (l *lexer) advanceRune() {
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	l.column++
}

// peekAt returns the byte n positions ahead, or 0 at end of input.
func (l *lexer) peekAt(n int) byte {
	if l.pos+n < len(l.input) {
		return l.input[l.pos+n]
	}
	return 0
}

func (l *lexer) errorf(format string, args ...interface{}) *gclerrors.Error {
	return &gclerrors.Error{
		Type:     gclerrors.ErrorTypeSyntax,
		Message:  fmt.Sprintf(format, args...),
		Location: ast.Location{File: l.file, Line: l.line, Column: l.column},
	}
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
