package parser

import (
	"github.com/arafura-lang/arafura/internal/ast"
	"github.com/arafura-lang/arafura/internal/diag"
	"github.com/arafura-lang/arafura/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

type Option func(*options)

type options struct {
	filename string
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

const (
	precedenceLowest = iota
	precedenceWalrus
	precedenceTernary
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceBitOr
	precedenceBitXor
	precedenceBitAnd
	precedenceShift
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedencePower
	precedencePostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.WALRUS:   precedenceWalrus,
	lexer.IF:       precedenceTernary,
	lexer.OR:       precedenceOr,
	lexer.AND:      precedenceAnd,
	lexer.LT:       precedenceComparison,
	lexer.LE:       precedenceComparison,
	lexer.GT:       precedenceComparison,
	lexer.GE:       precedenceComparison,
	lexer.EQ:       precedenceComparison,
	lexer.NOT_EQ:   precedenceComparison,
	lexer.PIPE:     precedenceBitOr,
	lexer.CARET:    precedenceBitXor,
	lexer.AMP:      precedenceBitAnd,
	lexer.LSHIFT:   precedenceShift,
	lexer.RSHIFT:   precedenceShift,
	lexer.PLUS:     precedenceSum,
	lexer.MINUS:    precedenceSum,
	lexer.ASTERISK: precedenceProduct,
	lexer.SLASH:    precedenceProduct,
	lexer.FLOORDIV: precedenceProduct,
	lexer.PERCENT:  precedenceProduct,
	lexer.POW:      precedencePower,
	lexer.LPAREN:   precedencePostfix,
	lexer.LBRACKET: precedencePostfix,
	lexer.DOT:      precedencePostfix,
}

// ParseError captures a recoverable parsing error with location context.
type ParseError struct {
	Message  string
	Span     lexer.Span
	Severity diag.Severity
}

// ToDiagnostic converts a parse error into the shared diagnostic structure.
func (e ParseError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: e.Severity,
		Code:     diag.CodeParseError,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Parser implements a Pratt-style recursive descent parser for the surface
// grammar. Invariants:
//   - Lookahead: curTok always reflects the token currently under examination;
//     peekTok mirrors the next token pulled from the lexer. The pair forms the
//     parser's sole lookahead window and is only mutated via nextToken.
//   - Positioning: every parse function is entered with curTok on the first
//     token of its construct and returns with curTok on the construct's last
//     token. Statement parsers additionally consume their terminating NEWLINE
//     (or the DEDENT closing their suite) and leave curTok on the next
//     statement's first token.
//   - Diagnostics: errors is an append-only accumulator of recoverable
//     diagnostics. Callers are expected to consult Errors() after ParseModule
//     to surface them.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	errors []ParseError

	filename string

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New returns a parser initialised with the provided source input.
func New(input string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{
		lx:        lexer.New(input),
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
		filename:  cfg.filename,
	}

	if cfg.filename != "" {
		p.lx.SetFilename(cfg.filename)
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseNumberLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.NONE, p.parseNoneLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpr)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpr)
	p.registerPrefix(lexer.TILDE, p.parsePrefixExpr)
	p.registerPrefix(lexer.NOT, p.parseNotExpr)
	p.registerPrefix(lexer.LPAREN, p.parseParenExpr)
	p.registerPrefix(lexer.LBRACKET, p.parseListDisplay)
	p.registerPrefix(lexer.LBRACE, p.parseDictDisplay)

	p.registerInfix(lexer.PLUS, p.parseInfixExpr)
	p.registerInfix(lexer.MINUS, p.parseInfixExpr)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpr)
	p.registerInfix(lexer.SLASH, p.parseInfixExpr)
	p.registerInfix(lexer.FLOORDIV, p.parseInfixExpr)
	p.registerInfix(lexer.PERCENT, p.parseInfixExpr)
	p.registerInfix(lexer.AMP, p.parseInfixExpr)
	p.registerInfix(lexer.PIPE, p.parseInfixExpr)
	p.registerInfix(lexer.CARET, p.parseInfixExpr)
	p.registerInfix(lexer.LSHIFT, p.parseInfixExpr)
	p.registerInfix(lexer.RSHIFT, p.parseInfixExpr)
	p.registerInfix(lexer.POW, p.parsePowerExpr)
	p.registerInfix(lexer.LT, p.parseComparisonExpr)
	p.registerInfix(lexer.LE, p.parseComparisonExpr)
	p.registerInfix(lexer.GT, p.parseComparisonExpr)
	p.registerInfix(lexer.GE, p.parseComparisonExpr)
	p.registerInfix(lexer.EQ, p.parseComparisonExpr)
	p.registerInfix(lexer.NOT_EQ, p.parseComparisonExpr)
	p.registerInfix(lexer.AND, p.parseBoolOpExpr)
	p.registerInfix(lexer.OR, p.parseBoolOpExpr)
	p.registerInfix(lexer.IF, p.parseTernaryExpr)
	p.registerInfix(lexer.WALRUS, p.parseWalrusExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseSubscriptExpr)
	p.registerInfix(lexer.DOT, p.parseAttributeExpr)

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns all recoverable parse errors that were encountered.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// Diagnostics returns lexer and parser errors as renderable diagnostics,
// lexer errors first.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, e := range p.lx.Errors {
		out = append(out, e.ToDiagnostic())
	}
	for _, e := range p.errors {
		out = append(out, e.ToDiagnostic())
	}
	return out
}

// Failed reports whether any lexer or parser error was recorded.
func (p *Parser) Failed() bool {
	return len(p.errors) > 0 || len(p.lx.Errors) > 0
}

// ParseModule parses a full compilation unit and returns its AST.
func (p *Parser) ParseModule() *ast.Module {
	module := ast.NewModule(p.curTok.Span)

	for p.curTok.Type != lexer.EOF {
		if p.curTok.Type == lexer.NEWLINE {
			p.nextToken()
			continue
		}

		prevTok := p.curTok
		stmts := p.parseStatement()
		if stmts == nil {
			p.recoverStatement(prevTok)
			continue
		}
		module.Stmts = append(module.Stmts, stmts...)
	}

	module.SetSpan(mergeSpan(module.Span(), p.curTok.Span))

	return module
}

// nextToken advances the parser's token window.
// Contract: after calling nextToken, curTok == old(peekTok). The lexer is only
// queried from this hop to keep lookahead bookkeeping centralized.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

// expect asserts that the peek token matches the provided type.
// The caller is responsible for inspecting curTok before invoking expect,
// because expect never rewinds; on success it promotes peekTok into curTok.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}

	lexeme := string(tt)
	msg := "expected '" + lexeme + "'"
	p.reportError(msg, p.peekTok.Span)
	return false
}

func (p *Parser) emitParseDiagnostic(msg string, span lexer.Span, severity diag.Severity) {
	span = p.spanWithFilename(span)
	p.errors = append(p.errors, ParseError{
		Message:  msg,
		Span:     span,
		Severity: severity,
	})
}

func (p *Parser) spanWithFilename(span lexer.Span) lexer.Span {
	if span.Filename == "" && p.filename != "" {
		span.Filename = p.filename
	}
	return span
}

// reportError records a recoverable diagnostic without aborting parsing.
func (p *Parser) reportError(msg string, span lexer.Span) {
	p.emitParseDiagnostic(msg, span, diag.SeverityError)
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixFns[tokenType] = fn
}

func sameTokenPosition(a, b lexer.Token) bool {
	return a.Type == b.Type && a.Span.Start == b.Span.Start && a.Span.End == b.Span.End
}

// recoverStatement skips to the start of the next statement after a parse
// failure: past the next NEWLINE at the current nesting, or up to a DEDENT.
func (p *Parser) recoverStatement(prev lexer.Token) {
	if sameTokenPosition(p.curTok, prev) && p.curTok.Type != lexer.EOF {
		p.nextToken()
	}

	for p.curTok.Type != lexer.EOF {
		switch p.curTok.Type {
		case lexer.NEWLINE:
			p.nextToken()
			return
		case lexer.DEDENT:
			return
		}
		p.nextToken()
	}
}

// mergeSpan assumes start.End <= end.End and returns a span covering both.
// The parser relies on lexer spans being half-open; callers should pass the
// earliest start span first to preserve monotonic growth for AST nodes.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start

	if span.Filename == "" {
		span.Filename = end.Filename
	}

	if span.Line == 0 && end.Line != 0 {
		span.Line = end.Line
		span.Column = end.Column
		span.Start = end.Start
	}

	if end.End > span.End {
		span.End = end.End
	}

	return span
}
