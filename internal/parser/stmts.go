package parser

import (
	"github.com/arafura-lang/arafura/internal/ast"
	"github.com/arafura-lang/arafura/internal/lexer"
)

var augAssignOps = map[lexer.TokenType]string{
	lexer.PLUS_ASSIGN:    "+",
	lexer.MINUS_ASSIGN:   "-",
	lexer.STAR_ASSIGN:    "*",
	lexer.SLASH_ASSIGN:   "/",
	lexer.PERCENT_ASSIGN: "%",
	lexer.AMP_ASSIGN:     "&",
	lexer.PIPE_ASSIGN:    "|",
	lexer.CARET_ASSIGN:   "^",
	lexer.LSHIFT_ASSIGN:  "<<",
	lexer.RSHIFT_ASSIGN:  ">>",
}

// startsExpression reports whether a token can begin an expression. Used to
// tell the soft keyword `match` apart from an ordinary identifier.
func startsExpression(tt lexer.TokenType) bool {
	switch tt {
	case lexer.IDENT, lexer.INT, lexer.FLOAT, lexer.STRING,
		lexer.TRUE, lexer.FALSE, lexer.NONE,
		lexer.NOT, lexer.TILDE, lexer.MINUS, lexer.PLUS, lexer.LPAREN:
		return true
	}
	return false
}

// parseStatement parses one statement (or one simple-statement line, which
// may hold several separated by ';'). It is entered with curTok on the first
// token and returns with curTok on the first token of the next statement.
func (p *Parser) parseStatement() []ast.Stmt {
	switch p.curTok.Type {
	case lexer.AT:
		return p.parseDecorated()
	case lexer.DEF:
		return p.parseFunctionDef(nil)
	case lexer.CLASS:
		return p.parseClassDef(nil)
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.IDENT:
		if p.curTok.Value == "match" && startsExpression(p.peekTok.Type) {
			return p.parseMatch()
		}
	}
	return p.parseSimpleStatementLine()
}

// parseSuite parses the body of a compound statement: either an inline
// simple-statement line after the colon, or a NEWLINE INDENT ... DEDENT
// block. Entered with curTok on the last header token; returns with curTok
// on the first token after the suite.
func (p *Parser) parseSuite() []ast.Stmt {
	if !p.expect(lexer.COLON) {
		return nil
	}

	if p.peekTok.Type != lexer.NEWLINE {
		p.nextToken()
		return p.parseSimpleStatementLine()
	}

	p.nextToken() // NEWLINE
	if p.peekTok.Type != lexer.INDENT {
		p.reportError("expected an indented block", p.peekTok.Span)
		return nil
	}
	p.nextToken() // INDENT
	p.nextToken() // first statement token

	var stmts []ast.Stmt
	for p.curTok.Type != lexer.DEDENT && p.curTok.Type != lexer.EOF {
		if p.curTok.Type == lexer.NEWLINE {
			p.nextToken()
			continue
		}
		prev := p.curTok
		s := p.parseStatement()
		if s == nil {
			p.recoverStatement(prev)
			continue
		}
		stmts = append(stmts, s...)
	}
	if p.curTok.Type == lexer.DEDENT {
		p.nextToken()
	}

	if len(stmts) == 0 {
		p.reportError("expected at least one statement in block", p.curTok.Span)
		return nil
	}
	return stmts
}

// parseSimpleStatementLine parses a line of ';'-separated simple statements
// and consumes the terminating NEWLINE.
func (p *Parser) parseSimpleStatementLine() []ast.Stmt {
	var stmts []ast.Stmt
	for {
		s := p.parseSimpleStatement()
		if s == nil {
			return nil
		}
		stmts = append(stmts, s)

		if p.peekTok.Type == lexer.SEMICOLON {
			p.nextToken() // ';'
			if p.peekTok.Type == lexer.NEWLINE || p.peekTok.Type == lexer.EOF {
				break
			}
			p.nextToken()
			continue
		}
		break
	}

	switch p.peekTok.Type {
	case lexer.NEWLINE:
		p.nextToken() // NEWLINE
		p.nextToken() // first token of the next statement
	case lexer.EOF:
		p.nextToken()
	default:
		p.reportError("expected end of line", p.peekTok.Span)
		return nil
	}
	return stmts
}

// parseSimpleStatement parses one simple statement, leaving curTok on its
// last token.
func (p *Parser) parseSimpleStatement() ast.Stmt {
	switch p.curTok.Type {
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		return ast.NewBreak(p.curTok.Span)
	case lexer.CONTINUE:
		return ast.NewContinue(p.curTok.Span)
	case lexer.PASS:
		return ast.NewPass(p.curTok.Span)
	case lexer.RAISE:
		return p.parseRaise()
	case lexer.DEL:
		return p.parseDelete()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.FROM:
		return p.parseImportFrom()
	case lexer.IDENT:
		if p.curTok.Value == "type" && p.peekTok.Type == lexer.IDENT {
			return p.parseTypeAlias()
		}
	}
	return p.parseExprStatement()
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.curTok.Span

	switch p.peekTok.Type {
	case lexer.NEWLINE, lexer.SEMICOLON, lexer.EOF:
		return ast.NewReturn(nil, start)
	}

	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		return nil
	}
	return ast.NewReturn(value, mergeSpan(start, value.Span()))
}

func (p *Parser) parseRaise() ast.Stmt {
	start := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	target := ast.NewName(p.curTok.Value, p.curTok.Span)
	return ast.NewRaise(target, mergeSpan(start, target.Span()))
}

func (p *Parser) parseDelete() ast.Stmt {
	start := p.curTok.Span

	var names []*ast.Name
	for {
		if !p.expect(lexer.IDENT) {
			return nil
		}
		names = append(names, ast.NewName(p.curTok.Value, p.curTok.Span))

		if p.peekTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}

	return ast.NewDelete(names, mergeSpan(start, names[len(names)-1].Span()))
}

func (p *Parser) parseImport() ast.Stmt {
	start := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	module := ast.NewName(p.curTok.Value, p.curTok.Span)
	return ast.NewImport(module, mergeSpan(start, module.Span()))
}

// parseImportFrom parses `from NAME import *`.
func (p *Parser) parseImportFrom() ast.Stmt {
	start := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	module := ast.NewName(p.curTok.Value, p.curTok.Span)

	if !p.expect(lexer.IMPORT) {
		return nil
	}
	if !p.expect(lexer.ASTERISK) {
		return nil
	}

	return ast.NewImportFrom(module, mergeSpan(start, p.curTok.Span))
}

// parseTypeAlias parses `type NAME = T`; `type` is a soft keyword recognised
// only when followed by a name.
func (p *Parser) parseTypeAlias() ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	name := ast.NewName(p.curTok.Value, p.curTok.Span)

	if !p.expect(lexer.ASSIGN) {
		return nil
	}

	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		return nil
	}

	return ast.NewTypeAlias(name, value, mergeSpan(start, value.Span()))
}

// parseExprStatement parses an expression line: a bare expression, an
// assignment chain, an annotated assignment, or an augmented assignment.
func (p *Parser) parseExprStatement() ast.Stmt {
	start := p.curTok.Span
	first := p.parseExpression(precedenceLowest)
	if first == nil {
		return nil
	}

	switch p.peekTok.Type {
	case lexer.COLON:
		target, ok := first.(*ast.Name)
		if !ok {
			p.reportError("annotated target must be a name", first.Span())
			return nil
		}
		p.nextToken() // ':'
		p.nextToken()
		annotation := p.parseExpression(precedenceLowest)
		if annotation == nil {
			return nil
		}

		var value ast.Expr
		end := annotation.Span()
		if p.peekTok.Type == lexer.ASSIGN {
			p.nextToken() // '='
			p.nextToken()
			value = p.parseExpression(precedenceLowest)
			if value == nil {
				return nil
			}
			end = value.Span()
		}
		return ast.NewAnnAssign(target, annotation, value, mergeSpan(start, end))

	case lexer.ASSIGN:
		exprs := []ast.Expr{first}
		for p.peekTok.Type == lexer.ASSIGN {
			p.nextToken() // '='
			p.nextToken()
			e := p.parseExpression(precedenceLowest)
			if e == nil {
				return nil
			}
			exprs = append(exprs, e)
		}
		value := exprs[len(exprs)-1]
		targets := exprs[:len(exprs)-1]
		return ast.NewAssign(targets, value, mergeSpan(start, value.Span()))
	}

	if op, ok := augAssignOps[p.peekTok.Type]; ok {
		p.nextToken() // the operator
		p.nextToken()
		value := p.parseExpression(precedenceLowest)
		if value == nil {
			return nil
		}
		return ast.NewAugAssign(first, op, value, mergeSpan(start, value.Span()))
	}

	return ast.NewExprStmt(first, mergeSpan(start, first.Span()))
}

// ----------------------------------------------------------------------------
// Compound statements

func (p *Parser) parseIf() []ast.Stmt {
	stmt := p.parseIfClause()
	if stmt == nil {
		return nil
	}
	return []ast.Stmt{stmt}
}

// parseIfClause parses an if or elif clause; an elif chain nests as a single
// If statement in Orelse.
func (p *Parser) parseIfClause() ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	test := p.parseExpression(precedenceLowest)
	if test == nil {
		return nil
	}

	body := p.parseSuite()
	if body == nil {
		return nil
	}

	var orelse []ast.Stmt
	switch p.curTok.Type {
	case lexer.ELIF:
		nested := p.parseIfClause()
		if nested == nil {
			return nil
		}
		orelse = []ast.Stmt{nested}
	case lexer.ELSE:
		orelse = p.parseSuite()
		if orelse == nil {
			return nil
		}
	}

	end := body[len(body)-1].Span()
	if len(orelse) > 0 {
		end = orelse[len(orelse)-1].Span()
	}
	return ast.NewIf(test, body, orelse, mergeSpan(start, end))
}

func (p *Parser) parseWhile() []ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	test := p.parseExpression(precedenceLowest)
	if test == nil {
		return nil
	}

	body := p.parseSuite()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body[len(body)-1].Span())
	return []ast.Stmt{ast.NewWhile(test, body, span)}
}

func (p *Parser) parseFor() []ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	target := p.parseExpression(precedenceLowest)
	if target == nil {
		return nil
	}
	// A bare comma list of loop variables folds into a tuple target.
	if p.peekTok.Type == lexer.COMMA {
		elts := []ast.Expr{target}
		for p.peekTok.Type == lexer.COMMA {
			p.nextToken() // ','
			p.nextToken()
			elt := p.parseExpression(precedenceLowest)
			if elt == nil {
				return nil
			}
			elts = append(elts, elt)
		}
		target = ast.NewTuple(elts, mergeSpan(elts[0].Span(), elts[len(elts)-1].Span()))
	}

	if !p.expect(lexer.IN) {
		return nil
	}

	p.nextToken()
	iter := p.parseExpression(precedenceLowest)
	if iter == nil {
		return nil
	}

	body := p.parseSuite()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body[len(body)-1].Span())
	return []ast.Stmt{ast.NewFor(target, iter, body, span)}
}

// parseMatch parses a match statement; `match` is a soft keyword recognised
// only when the next token can start an expression.
func (p *Parser) parseMatch() []ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	subject := p.parseExpression(precedenceLowest)
	if subject == nil {
		return nil
	}

	if !p.expect(lexer.COLON) {
		return nil
	}
	if p.peekTok.Type != lexer.NEWLINE {
		p.reportError("match body must be an indented block of case clauses", p.peekTok.Span)
		return nil
	}
	p.nextToken() // NEWLINE
	if p.peekTok.Type != lexer.INDENT {
		p.reportError("expected an indented block", p.peekTok.Span)
		return nil
	}
	p.nextToken() // INDENT
	p.nextToken() // first 'case'

	var cases []*ast.MatchCase
	for p.curTok.Type != lexer.DEDENT && p.curTok.Type != lexer.EOF {
		if p.curTok.Type == lexer.NEWLINE {
			p.nextToken()
			continue
		}
		if p.curTok.Type != lexer.IDENT || p.curTok.Value != "case" {
			p.reportError("expected a 'case' clause", p.curTok.Span)
			return nil
		}
		caseStart := p.curTok.Span

		p.nextToken()
		pattern := p.parseExpression(precedenceLowest)
		if pattern == nil {
			return nil
		}

		body := p.parseSuite()
		if body == nil {
			return nil
		}

		cases = append(cases, ast.NewMatchCase(pattern, body, mergeSpan(caseStart, body[len(body)-1].Span())))
	}
	if p.curTok.Type == lexer.DEDENT {
		p.nextToken()
	}

	if len(cases) == 0 {
		p.reportError("match statement has no case clauses", start)
		return nil
	}

	span := mergeSpan(start, cases[len(cases)-1].Span())
	return []ast.Stmt{ast.NewMatch(subject, cases, span)}
}

// parseDecorated parses one or more decorator lines followed by a def or
// class statement.
func (p *Parser) parseDecorated() []ast.Stmt {
	var decorators []ast.Expr
	for p.curTok.Type == lexer.AT {
		p.nextToken()
		d := p.parseExpression(precedenceLowest)
		if d == nil {
			return nil
		}
		decorators = append(decorators, d)

		if p.peekTok.Type != lexer.NEWLINE {
			p.reportError("expected end of decorator line", p.peekTok.Span)
			return nil
		}
		p.nextToken() // NEWLINE
		p.nextToken()
	}

	switch p.curTok.Type {
	case lexer.DEF:
		return p.parseFunctionDef(decorators)
	case lexer.CLASS:
		return p.parseClassDef(decorators)
	}
	p.reportError("decorators must be followed by 'def' or 'class'", p.curTok.Span)
	return nil
}

func (p *Parser) parseFunctionDef(decorators []ast.Expr) []ast.Stmt {
	start := p.curTok.Span

	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewName(p.curTok.Value, p.curTok.Span)

	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	var vararg *ast.Name
	result, ok := parseDelimited(p, delimitedConfig{
		Closing:           lexer.RPAREN,
		AllowEmpty:        true,
		AllowTrailing:     true,
		MissingElementMsg: "expected a parameter",
	}, func(int) (*ast.Param, bool) {
		if p.curTok.Type == lexer.ASTERISK {
			if vararg != nil {
				p.reportError("only one '*' parameter is allowed", p.curTok.Span)
				return nil, false
			}
			if !p.expect(lexer.IDENT) {
				return nil, false
			}
			vararg = ast.NewName(p.curTok.Value, p.curTok.Span)
			return nil, true
		}
		if vararg != nil {
			p.reportError("parameter follows '*' parameter", p.curTok.Span)
			return nil, false
		}
		if p.curTok.Type != lexer.IDENT {
			p.reportError("expected a parameter name", p.curTok.Span)
			return nil, false
		}

		pname := ast.NewName(p.curTok.Value, p.curTok.Span)
		var annotation ast.Expr
		end := p.curTok.Span
		if p.peekTok.Type == lexer.COLON {
			p.nextToken() // ':'
			p.nextToken()
			annotation = p.parseExpression(precedenceLowest)
			if annotation == nil {
				return nil, false
			}
			end = annotation.Span()
		}
		return ast.NewParam(pname, annotation, mergeSpan(pname.Span(), end)), true
	})
	if !ok {
		return nil
	}

	params := make([]*ast.Param, 0, len(result.Items))
	for _, prm := range result.Items {
		if prm != nil {
			params = append(params, prm)
		}
	}

	var returns ast.Expr
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken() // '->'
		p.nextToken()
		returns = p.parseExpression(precedenceLowest)
		if returns == nil {
			return nil
		}
	}

	body := p.parseSuite()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body[len(body)-1].Span())
	return []ast.Stmt{ast.NewFunctionDef(name, params, vararg, returns, body, decorators, span)}
}

func (p *Parser) parseClassDef(decorators []ast.Expr) []ast.Stmt {
	start := p.curTok.Span

	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewName(p.curTok.Value, p.curTok.Span)

	var bases []*ast.Name
	if p.peekTok.Type == lexer.LPAREN {
		p.nextToken() // '('
		p.nextToken()
		result, ok := parseDelimited(p, delimitedConfig{
			Closing:           lexer.RPAREN,
			AllowEmpty:        true,
			AllowTrailing:     true,
			MissingElementMsg: "expected a base name",
		}, func(int) (*ast.Name, bool) {
			if p.curTok.Type != lexer.IDENT {
				p.reportError("expected a base name", p.curTok.Span)
				return nil, false
			}
			return ast.NewName(p.curTok.Value, p.curTok.Span), true
		})
		if !ok {
			return nil
		}
		bases = result.Items
	}

	body := p.parseSuite()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body[len(body)-1].Span())
	return []ast.Stmt{ast.NewClassDef(name, bases, body, decorators, span)}
}
