package parser

import (
	"github.com/arafura-lang/arafura/internal/ast"
	"github.com/arafura-lang/arafura/internal/lexer"
)

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

// parseExpression is the Pratt core: it dispatches on the current token's
// prefix function and folds infix operators while they bind tighter than the
// caller's precedence.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.reportError("unexpected token '"+p.curTok.Raw+"'", p.curTok.Span)
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekTok.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parseIdentifier() ast.Expr {
	return ast.NewName(p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parseNumberLiteral() ast.Expr {
	kind := ast.ConstInt
	if p.curTok.Type == lexer.FLOAT {
		kind = ast.ConstFloat
	}
	return ast.NewConstant(kind, p.curTok.Raw, p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return ast.NewConstant(ast.ConstString, p.curTok.Raw, p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	kind := ast.ConstTrue
	if p.curTok.Type == lexer.FALSE {
		kind = ast.ConstFalse
	}
	return ast.NewConstant(kind, p.curTok.Raw, p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parseNoneLiteral() ast.Expr {
	return ast.NewConstant(ast.ConstNone, p.curTok.Raw, p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	start := p.curTok.Span
	op := p.curTok.Raw

	p.nextToken()
	operand := p.parseExpression(precedencePrefix)
	if operand == nil {
		return nil
	}

	return ast.NewUnaryOp(op, operand, mergeSpan(start, operand.Span()))
}

// parseNotExpr parses `not E`. The operand is parsed one level below
// comparisons so `not a == b` negates the whole comparison.
func (p *Parser) parseNotExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	operand := p.parseExpression(precedenceNot)
	if operand == nil {
		return nil
	}

	return ast.NewUnaryOp("not", operand, mergeSpan(start, operand.Span()))
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Raw
	precedence := precedences[p.curTok.Type]

	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	return ast.NewBinOp(left, op, right, mergeSpan(left.Span(), right.Span()))
}

// parsePowerExpr parses `**` right-associatively, so the right operand is
// parsed one level looser than the operator itself.
func (p *Parser) parsePowerExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Raw

	p.nextToken()
	right := p.parseExpression(precedencePower - 1)
	if right == nil {
		return nil
	}

	return ast.NewBinOp(left, op, right, mergeSpan(left.Span(), right.Span()))
}

// parseComparisonExpr folds consecutive comparison operators into a single
// Compare chain, mirroring the surface grammar. Chains longer than one link
// still parse here; lowering rejects them.
func (p *Parser) parseComparisonExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Raw

	p.nextToken()
	right := p.parseExpression(precedenceComparison)
	if right == nil {
		return nil
	}

	if chain, ok := left.(*ast.Compare); ok {
		chain.Ops = append(chain.Ops, op)
		chain.Comparators = append(chain.Comparators, right)
		return ast.NewCompare(chain.Left, chain.Ops, chain.Comparators, mergeSpan(chain.Span(), right.Span()))
	}

	return ast.NewCompare(left, []string{op}, []ast.Expr{right}, mergeSpan(left.Span(), right.Span()))
}

// parseBoolOpExpr folds same-operator chains: `a and b and c` becomes a
// single BoolOp with three values.
func (p *Parser) parseBoolOpExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Raw
	precedence := precedences[p.curTok.Type]

	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	if chain, ok := left.(*ast.BoolOp); ok && chain.Op == op {
		values := append(chain.Values, right)
		return ast.NewBoolOp(op, values, mergeSpan(chain.Span(), right.Span()))
	}

	return ast.NewBoolOp(op, []ast.Expr{left, right}, mergeSpan(left.Span(), right.Span()))
}

// parseTernaryExpr parses `BODY if TEST else ORELSE` with the body already
// consumed as left.
func (p *Parser) parseTernaryExpr(body ast.Expr) ast.Expr {
	p.nextToken()
	test := p.parseExpression(precedenceTernary)
	if test == nil {
		return nil
	}

	if !p.expect(lexer.ELSE) {
		return nil
	}

	p.nextToken()
	orelse := p.parseExpression(precedenceTernary - 1)
	if orelse == nil {
		return nil
	}

	return ast.NewIfExp(test, body, orelse, mergeSpan(body.Span(), orelse.Span()))
}

func (p *Parser) parseWalrusExpr(left ast.Expr) ast.Expr {
	target, ok := left.(*ast.Name)
	if !ok {
		p.reportError("':=' target must be a name", left.Span())
		return nil
	}

	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		return nil
	}

	return ast.NewNamedExpr(target, value, mergeSpan(target.Span(), value.Span()))
}

// parseParenExpr parses a parenthesised expression or a tuple display. A bare
// `()` is an empty tuple; a trailing comma forces a tuple even for one
// element.
func (p *Parser) parseParenExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	result, ok := parseDelimited(p, delimitedConfig{
		Closing:           lexer.RPAREN,
		AllowEmpty:        true,
		AllowTrailing:     true,
		MissingElementMsg: "expected an expression",
	}, func(int) (ast.Expr, bool) {
		e := p.parseExpression(precedenceLowest)
		return e, e != nil
	})
	if !ok {
		return nil
	}

	span := mergeSpan(start, p.curTok.Span)
	if len(result.Items) == 1 && !result.Trailing {
		return result.Items[0]
	}
	return ast.NewTuple(result.Items, span)
}

func (p *Parser) parseListDisplay() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	result, ok := parseDelimited(p, delimitedConfig{
		Closing:           lexer.RBRACKET,
		AllowEmpty:        true,
		AllowTrailing:     true,
		MissingElementMsg: "expected an expression",
	}, func(int) (ast.Expr, bool) {
		e := p.parseExpression(precedenceLowest)
		return e, e != nil
	})
	if !ok {
		return nil
	}

	return ast.NewList(result.Items, mergeSpan(start, p.curTok.Span))
}

type dictEntry struct {
	key   ast.Expr
	value ast.Expr
}

func (p *Parser) parseDictDisplay() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	result, ok := parseDelimited(p, delimitedConfig{
		Closing:           lexer.RBRACE,
		AllowEmpty:        true,
		AllowTrailing:     true,
		MissingElementMsg: "expected a 'key: value' entry",
	}, func(int) (dictEntry, bool) {
		key := p.parseExpression(precedenceLowest)
		if key == nil {
			return dictEntry{}, false
		}
		if !p.expect(lexer.COLON) {
			return dictEntry{}, false
		}
		p.nextToken()
		value := p.parseExpression(precedenceLowest)
		if value == nil {
			return dictEntry{}, false
		}
		return dictEntry{key: key, value: value}, true
	})
	if !ok {
		return nil
	}

	keys := make([]ast.Expr, 0, len(result.Items))
	values := make([]ast.Expr, 0, len(result.Items))
	for _, entry := range result.Items {
		keys = append(keys, entry.key)
		values = append(values, entry.value)
	}

	return ast.NewDict(keys, values, mergeSpan(start, p.curTok.Span))
}

type callArg struct {
	positional ast.Expr
	keyword    *ast.Keyword
}

// parseCallExpr parses an argument list. A `name=value` argument becomes a
// Keyword node; everything else is positional.
func (p *Parser) parseCallExpr(fn ast.Expr) ast.Expr {
	p.nextToken()
	result, ok := parseDelimited(p, delimitedConfig{
		Closing:           lexer.RPAREN,
		AllowEmpty:        true,
		AllowTrailing:     true,
		MissingElementMsg: "expected an argument",
	}, func(int) (callArg, bool) {
		if p.curTok.Type == lexer.IDENT && p.peekTok.Type == lexer.ASSIGN {
			name := p.curTok.Value
			start := p.curTok.Span
			p.nextToken() // '='
			p.nextToken()
			value := p.parseExpression(precedenceLowest)
			if value == nil {
				return callArg{}, false
			}
			return callArg{keyword: ast.NewKeyword(name, value, mergeSpan(start, value.Span()))}, true
		}

		e := p.parseExpression(precedenceLowest)
		if e == nil {
			return callArg{}, false
		}
		return callArg{positional: e}, true
	})
	if !ok {
		return nil
	}

	var args []ast.Expr
	var keywords []*ast.Keyword
	for _, arg := range result.Items {
		if arg.keyword != nil {
			keywords = append(keywords, arg.keyword)
			continue
		}
		if len(keywords) > 0 {
			p.reportError("positional argument follows keyword argument", arg.positional.Span())
			return nil
		}
		args = append(args, arg.positional)
	}

	return ast.NewCall(fn, args, keywords, mergeSpan(fn.Span(), p.curTok.Span))
}

// parseSubscriptExpr parses `value[index]`; a comma-separated index such as
// `list[int, 10]` becomes a Tuple.
func (p *Parser) parseSubscriptExpr(value ast.Expr) ast.Expr {
	lbracket := p.curTok.Span

	p.nextToken()
	result, ok := parseDelimited(p, delimitedConfig{
		Closing:           lexer.RBRACKET,
		MissingElementMsg: "expected a subscript expression",
	}, func(int) (ast.Expr, bool) {
		e := p.parseExpression(precedenceLowest)
		return e, e != nil
	})
	if !ok {
		return nil
	}

	span := mergeSpan(value.Span(), p.curTok.Span)

	var index ast.Expr
	if len(result.Items) == 1 {
		index = result.Items[0]
	} else {
		index = ast.NewTuple(result.Items, mergeSpan(lbracket, p.curTok.Span))
	}

	return ast.NewSubscript(value, index, span)
}

func (p *Parser) parseAttributeExpr(value ast.Expr) ast.Expr {
	if !p.expect(lexer.IDENT) {
		return nil
	}

	return ast.NewAttribute(value, p.curTok.Value, mergeSpan(value.Span(), p.curTok.Span))
}
