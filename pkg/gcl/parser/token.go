package parser

import "fmt"

// tokenType identifies the lexical class of a token.
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNewline
	tokenIdent    // bare identifier or keyword (let, rule, when, exists, ...)
	tokenVariable // %name
	tokenString   // 'text' or "text"
	tokenNumber   // 42, 3.5, -1
	tokenMessage  // <<...>> block, raw interior text
	tokenDot      // .
	tokenStar     // *
	tokenLBracket // [
	tokenRBracket // ]
	tokenLBrace   // {
	tokenRBrace   // }
	tokenComma    // ,
	tokenAssign   // =
	tokenEq       // ==
	tokenNeq      // !=
	tokenBang     // !
)

var tokenNames = map[tokenType]string{
	tokenEOF:      "end of file",
	tokenNewline:  "end of line",
	tokenIdent:    "identifier",
	tokenVariable: "variable",
	tokenString:   "string literal",
	tokenNumber:   "number literal",
	tokenMessage:  "message block",
	tokenDot:      "'.'",
	tokenStar:     "'*'",
	tokenLBracket: "'['",
	tokenRBracket: "']'",
	tokenLBrace:   "'{'",
	tokenRBrace:   "'}'",
	tokenComma:    "','",
	tokenAssign:   "'='",
	tokenEq:       "'=='",
	tokenNeq:      "'!='",
	tokenBang:     "'!'",
}

// token is a single lexeme with its source position.
type token struct {
	typ    tokenType
	text   string
	line   int // 1-based
	column int // 1-based
}

// String returns a display form used in error messages.
func (t token) String() string {
	switch t.typ {
	case tokenEOF, tokenNewline:
		return tokenNames[t.typ]
	case tokenIdent, tokenVariable, tokenString, tokenNumber:
		return fmt.Sprintf("%s %q", tokenNames[t.typ], t.text)
	default:
		return tokenNames[t.typ]
	}
}
