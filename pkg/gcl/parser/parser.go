package parser

import (
	"fmt"
	"os"
	"strconv"

	"mercator-hq/ganymede/pkg/gcl/ast"
	gclerrors "mercator-hq/ganymede/pkg/gcl/errors"
)

// Parser parses GCL rule files into Abstract Syntax Trees.
// Syntax errors are fatal to the file being parsed; they are accumulated
// into an ErrorList so a single pass reports every problem in the file.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// Parse parses a rule file at the given path and returns the AST.
// It returns an error if the file cannot be read or contains syntax errors.
func (p *Parser) Parse(path string) (*ast.RuleSet, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &gclerrors.Error{
			Type:     gclerrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &gclerrors.Error{
			Type:     gclerrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &gclerrors.Error{
			Type:     gclerrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	ruleSet, err := p.ParseBytes(data, path)
	if err != nil {
		// Enrich errors with source context now that the file is on disk.
		if errList, ok := err.(*gclerrors.ErrorList); ok {
			for i, e := range errList.Errors {
				errList.Errors[i] = gclerrors.AddContextToError(e)
			}
		}
		return nil, err
	}

	return ruleSet, nil
}

// ParseBytes parses rule text from a byte slice.
// This is useful for testing or parsing rules from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.RuleSet, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &gclerrors.Error{
			Type:     gclerrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	tokens, lexErr := newLexer(string(data), sourcePath).run()
	if lexErr != nil {
		errList := gclerrors.NewErrorList()
		errList.Add(lexErr)
		return nil, errList
	}

	fp := &fileParser{
		tokens: tokens,
		file:   sourcePath,
		errs:   gclerrors.NewErrorList(),
	}

	ruleSet := fp.parseFile()
	if fp.errs.HasErrors() {
		return nil, fp.errs
	}

	return ruleSet, nil
}

// fileParser holds the state for a single recursive-descent pass.
type fileParser struct {
	tokens []token
	pos    int
	file   string
	errs   *gclerrors.ErrorList
}

func (fp *fileParser) parseFile() *ast.RuleSet {
	ruleSet := &ast.RuleSet{SourceFile: fp.file}

	for {
		fp.skipNewlines()
		tok := fp.peek()
		if tok.typ == tokenEOF {
			break
		}

		switch {
		case tok.typ == tokenIdent && tok.text == "let":
			let, err := fp.parseLet()
			if err != nil {
				fp.errs.Add(err)
				fp.syncTopLevel()
				continue
			}
			ruleSet.Lets = append(ruleSet.Lets, let)

		case tok.typ == tokenIdent && tok.text == "rule":
			rule, err := fp.parseRule()
			if err != nil {
				fp.errs.Add(err)
				fp.syncTopLevel()
				continue
			}
			ruleSet.Rules = append(ruleSet.Rules, rule)

		default:
			fp.errs.Add(fp.errorAt(tok, "expected 'let' or 'rule', found %s", tok))
			fp.syncTopLevel()
		}
	}

	return ruleSet
}

// parseLet parses `let <name> = <path-expression>` up to end of line.
func (fp *fileParser) parseLet() (*ast.LetStatement, *gclerrors.Error) {
	letTok := fp.next() // consume 'let'

	nameTok := fp.next()
	if nameTok.typ != tokenIdent {
		return nil, fp.errorAt(nameTok, "expected binding name after 'let', found %s", nameTok)
	}

	if tok := fp.next(); tok.typ != tokenAssign {
		return nil, fp.errorAt(tok, "expected '=' after 'let %s', found %s", nameTok.text, tok)
	}

	path, err := fp.parsePath()
	if err != nil {
		return nil, err
	}

	if tok := fp.peek(); tok.typ != tokenNewline && tok.typ != tokenEOF {
		return nil, fp.errorAt(tok, "unexpected %s after let binding", tok)
	}

	return &ast.LetStatement{
		Name:     nameTok.text,
		Path:     path,
		Location: fp.loc(letTok),
	}, nil
}

// parseRule parses `rule <NAME> [when <guard-clauses>] { <body> }`.
func (fp *fileParser) parseRule() (*ast.Rule, *gclerrors.Error) {
	ruleTok := fp.next() // consume 'rule'

	nameTok := fp.next()
	if nameTok.typ != tokenIdent {
		return nil, fp.errorAt(nameTok, "expected rule name after 'rule', found %s", nameTok)
	}

	rule := &ast.Rule{
		Name:     nameTok.text,
		Location: fp.loc(ruleTok),
	}

	if tok := fp.peek(); tok.typ == tokenIdent && tok.text == "when" {
		fp.next() // consume 'when'
		for {
			fp.skipNewlines()
			if fp.peek().typ == tokenLBrace {
				break
			}
			clause, err := fp.parseClause()
			if err != nil {
				return nil, err
			}
			rule.Guard = append(rule.Guard, clause)
		}
		if len(rule.Guard) == 0 {
			return nil, fp.errorAt(fp.peek(), "rule %q has a 'when' keyword but no guard clause", rule.Name)
		}
	}

	if tok := fp.next(); tok.typ != tokenLBrace {
		return nil, fp.errorAt(tok, "expected '{' to open rule %q body, found %s", rule.Name, tok)
	}

	for {
		fp.skipNewlines()
		tok := fp.peek()

		switch {
		case tok.typ == tokenRBrace:
			fp.next()
			return rule, nil

		case tok.typ == tokenEOF:
			return nil, fp.errorAt(tok, "unterminated rule %q: expected '}'", rule.Name)

		case tok.typ == tokenIdent && tok.text == "let":
			let, err := fp.parseLet()
			if err != nil {
				return nil, err
			}
			rule.Lets = append(rule.Lets, let)

		default:
			clause, err := fp.parseClause()
			if err != nil {
				return nil, err
			}
			rule.Body = append(rule.Body, clause)
			if clause.Message != "" {
				coverPrecedingClauses(rule.Body)
			}
		}
	}
}

// coverPrecedingClauses extends the newest clause's message backwards over
// the contiguous run of message-less clauses before it, so a single <<...>>
// block written after a group of assertions covers the whole group. A clause
// with its own message ends the run.
func coverPrecedingClauses(body []*ast.Clause) {
	message := body[len(body)-1].Message
	for i := len(body) - 2; i >= 0; i-- {
		if body[i].Message != "" {
			return
		}
		body[i].Message = message
	}
}

// parseClause parses `<path> <predicate>` with an optional trailing
// <<message>> block. The message may start on a following line.
func (fp *fileParser) parseClause() (*ast.Clause, *gclerrors.Error) {
	start := fp.peek()

	path, err := fp.parsePath()
	if err != nil {
		return nil, err
	}

	pred, err := fp.parsePredicate()
	if err != nil {
		return nil, err
	}

	clause := &ast.Clause{
		Path:      path,
		Predicate: pred,
		Location:  fp.loc(start),
	}

	// Attach a message block if it is the next non-newline token.
	save := fp.pos
	fp.skipNewlines()
	if tok := fp.peek(); tok.typ == tokenMessage {
		fp.next()
		clause.Message = tok.text
	} else {
		fp.pos = save
	}

	return clause, nil
}

// parsePath parses a path expression: an optional %variable base followed by
// dot-separated segments with wildcard and filter forms.
func (fp *fileParser) parsePath() (*ast.PathExpression, *gclerrors.Error) {
	start := fp.peek()
	path := &ast.PathExpression{Location: fp.loc(start)}

	switch start.typ {
	case tokenVariable:
		fp.next()
		path.Variable = start.text

	case tokenIdent:
		fp.next()
		path.Segments = append(path.Segments, &ast.Segment{
			Type:     ast.SegmentTypeKey,
			Key:      start.text,
			Location: fp.loc(start),
		})

	default:
		return nil, fp.errorAt(start, "expected path expression, found %s", start)
	}

	for {
		switch fp.peek().typ {
		case tokenDot:
			fp.next()
			seg, err := fp.parseSegment()
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, seg)

		case tokenLBracket:
			seg, err := fp.parseBracketSegment()
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, seg)

		default:
			return path, nil
		}
	}
}

// parseSegment parses the segment after a '.': a key or a wildcard.
// A wildcard immediately followed by a filter bracket (`*[ pred ]`) becomes
// a single filter segment: expand children, keep those matching the predicate.
func (fp *fileParser) parseSegment() (*ast.Segment, *gclerrors.Error) {
	tok := fp.next()

	switch tok.typ {
	case tokenIdent:
		return &ast.Segment{
			Type:     ast.SegmentTypeKey,
			Key:      tok.text,
			Location: fp.loc(tok),
		}, nil

	case tokenStar:
		if fp.peek().typ == tokenLBracket && !fp.bracketIsWildcard() {
			filter, err := fp.parseFilter()
			if err != nil {
				return nil, err
			}
			return &ast.Segment{
				Type:     ast.SegmentTypeFilter,
				Filter:   filter,
				Location: fp.loc(tok),
			}, nil
		}
		return &ast.Segment{
			Type:     ast.SegmentTypeWildcard,
			Location: fp.loc(tok),
		}, nil

	default:
		return nil, fp.errorAt(tok, "expected key or '*' after '.', found %s", tok)
	}
}

// parseBracketSegment parses a bracket directly attached to the previous
// segment: `[*]` distributes over a sequence, `[ pred ]` filters children.
func (fp *fileParser) parseBracketSegment() (*ast.Segment, *gclerrors.Error) {
	open := fp.next() // consume '['

	if fp.peek().typ == tokenStar {
		fp.next()
		if tok := fp.next(); tok.typ != tokenRBracket {
			return nil, fp.errorAt(tok, "expected ']' after '[*', found %s", tok)
		}
		return &ast.Segment{
			Type:     ast.SegmentTypeWildcard,
			Location: fp.loc(open),
		}, nil
	}

	fp.pos-- // rewind to '[' so parseFilter owns the brackets
	filter, err := fp.parseFilter()
	if err != nil {
		return nil, err
	}
	return &ast.Segment{
		Type:     ast.SegmentTypeFilter,
		Filter:   filter,
		Location: fp.loc(open),
	}, nil
}

// parseFilter parses `[ <relative-path> <predicate> ]`.
func (fp *fileParser) parseFilter() (*ast.Filter, *gclerrors.Error) {
	open := fp.next() // consume '['
	fp.skipNewlines()

	path, err := fp.parsePath()
	if err != nil {
		return nil, err
	}

	pred, err := fp.parsePredicate()
	if err != nil {
		return nil, err
	}

	fp.skipNewlines()
	if tok := fp.next(); tok.typ != tokenRBracket {
		return nil, fp.errorAt(tok, "expected ']' to close filter, found %s", tok)
	}

	return &ast.Filter{
		Path:      path,
		Predicate: pred,
		Location:  fp.loc(open),
	}, nil
}

// parsePredicate parses one of: exists, !exists, empty, !empty, ==, !=,
// in, not in. Binary operators consume a literal operand.
func (fp *fileParser) parsePredicate() (*ast.Predicate, *gclerrors.Error) {
	tok := fp.next()

	switch {
	case tok.typ == tokenBang:
		kw := fp.next()
		if kw.typ != tokenIdent || (kw.text != "exists" && kw.text != "empty") {
			return nil, fp.errorAt(kw, "expected 'exists' or 'empty' after '!', found %s", kw)
		}
		op := ast.OperatorNotExists
		if kw.text == "empty" {
			op = ast.OperatorNotEmpty
		}
		return &ast.Predicate{Operator: op, Location: fp.loc(tok)}, nil

	case tok.typ == tokenIdent && tok.text == "exists":
		return &ast.Predicate{Operator: ast.OperatorExists, Location: fp.loc(tok)}, nil

	case tok.typ == tokenIdent && tok.text == "empty":
		return &ast.Predicate{Operator: ast.OperatorEmpty, Location: fp.loc(tok)}, nil

	case tok.typ == tokenIdent && tok.text == "in":
		value, err := fp.parseValue()
		if err != nil {
			return nil, err
		}
		return &ast.Predicate{Operator: ast.OperatorIn, Value: value, Location: fp.loc(tok)}, nil

	case tok.typ == tokenIdent && tok.text == "not":
		kw := fp.next()
		if kw.typ != tokenIdent || kw.text != "in" {
			return nil, fp.errorAt(kw, "expected 'in' after 'not', found %s", kw)
		}
		value, err := fp.parseValue()
		if err != nil {
			return nil, err
		}
		return &ast.Predicate{Operator: ast.OperatorNotIn, Value: value, Location: fp.loc(tok)}, nil

	case tok.typ == tokenEq:
		value, err := fp.parseValue()
		if err != nil {
			return nil, err
		}
		return &ast.Predicate{Operator: ast.OperatorEqual, Value: value, Location: fp.loc(tok)}, nil

	case tok.typ == tokenNeq:
		value, err := fp.parseValue()
		if err != nil {
			return nil, err
		}
		return &ast.Predicate{Operator: ast.OperatorNotEqual, Value: value, Location: fp.loc(tok)}, nil

	default:
		return nil, &gclerrors.Error{
			Type:       gclerrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("unknown predicate: found %s", tok),
			Location:   fp.loc(tok),
			Suggestion: "expected one of: exists, !exists, empty, !empty, ==, !=, in, not in",
		}
	}
}

// parseValue parses a literal: string, number, boolean, null, or a
// [v1, v2, ...] set. Set literals may span lines.
func (fp *fileParser) parseValue() (*ast.ValueNode, *gclerrors.Error) {
	tok := fp.next()

	switch tok.typ {
	case tokenString:
		return &ast.ValueNode{Type: ast.ValueTypeString, Value: tok.text, Location: fp.loc(tok)}, nil

	case tokenNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fp.errorAt(tok, "invalid number literal %q", tok.text)
		}
		return &ast.ValueNode{Type: ast.ValueTypeNumber, Value: f, Location: fp.loc(tok)}, nil

	case tokenIdent:
		switch tok.text {
		case "true":
			return &ast.ValueNode{Type: ast.ValueTypeBoolean, Value: true, Location: fp.loc(tok)}, nil
		case "false":
			return &ast.ValueNode{Type: ast.ValueTypeBoolean, Value: false, Location: fp.loc(tok)}, nil
		case "null":
			return &ast.ValueNode{Type: ast.ValueTypeNull, Value: nil, Location: fp.loc(tok)}, nil
		}
		return nil, fp.errorAt(tok, "expected literal value, found %s", tok)

	case tokenLBracket:
		set := &ast.ValueNode{Type: ast.ValueTypeSet, Location: fp.loc(tok)}
		fp.skipNewlines()
		if fp.peek().typ == tokenRBracket {
			fp.next()
			return set, nil
		}
		for {
			item, err := fp.parseValue()
			if err != nil {
				return nil, err
			}
			set.Items = append(set.Items, item)

			fp.skipNewlines()
			next := fp.next()
			if next.typ == tokenRBracket {
				return set, nil
			}
			if next.typ != tokenComma {
				return nil, fp.errorAt(next, "expected ',' or ']' in set literal, found %s", next)
			}
			fp.skipNewlines()
		}

	default:
		return nil, fp.errorAt(tok, "expected literal value, found %s", tok)
	}
}

// bracketIsWildcard reports whether the bracket at the current position is
// exactly `[*]`, without consuming tokens.
func (fp *fileParser) bracketIsWildcard() bool {
	return fp.peekAt(1).typ == tokenStar && fp.peekAt(2).typ == tokenRBracket
}

// syncTopLevel skips tokens until a top-level statement boundary so parsing
// can continue after an error. Brace depth is tracked so a malformed rule is
// skipped as a whole.
func (fp *fileParser) syncTopLevel() {
	depth := 0
	for {
		tok := fp.next()
		switch tok.typ {
		case tokenEOF:
			fp.pos--
			return
		case tokenLBrace:
			depth++
		case tokenRBrace:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				return
			}
		case tokenNewline:
			if depth == 0 {
				return
			}
		}
	}
}

func (fp *fileParser) peek() token {
	return fp.tokens[fp.pos]
}

func (fp *fileParser) peekAt(n int) token {
	if fp.pos+n < len(fp.tokens) {
		return fp.tokens[fp.pos+n]
	}
	return fp.tokens[len(fp.tokens)-1] // EOF
}

func (fp *fileParser) next() token {
	tok := fp.tokens[fp.pos]
	if tok.typ != tokenEOF {
		fp.pos++
	}
	return tok
}

func (fp *fileParser) skipNewlines() {
	for fp.peek().typ == tokenNewline {
		fp.pos++
	}
}

func (fp *fileParser) loc(tok token) ast.Location {
	return ast.Location{File: fp.file, Line: tok.line, Column: tok.column}
}

func (fp *fileParser) errorAt(tok token, format string, args ...interface{}) *gclerrors.Error {
	return &gclerrors.Error{
		Type:     gclerrors.ErrorTypeSyntax,
		Message:  fmt.Sprintf(format, args...),
		Location: fp.loc(tok),
	}
}
