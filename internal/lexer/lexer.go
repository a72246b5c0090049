package lexer

import (
	"strconv"
	"unicode"

	"github.com/arafura-lang/arafura/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrIllegalRune
	ErrInconsistentDedent
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedString:
		return diag.CodeLexerUnterminatedString
	case ErrIllegalRune:
		return diag.CodeLexerIllegalRune
	case ErrInconsistentDedent:
		return diag.CodeLexerInconsistentDedent
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
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

// A tab advances the indentation counter to the next multiple of tabWidth.
const tabWidth = 8

// Lexer scans surface source into tokens. Line structure is significant:
// the lexer synthesises NEWLINE at the end of each logical line and
// INDENT/DEDENT tokens from an indentation stack, suppressing all three
// inside bracketed expressions.
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	pending     []Token // queued INDENT/DEDENT tokens
	indents     []int   // indentation stack, always starts with 0
	depth       int     // open bracket depth; >0 joins lines implicitly
	atLineStart bool
	lastType    TokenType

	Errors []LexerError
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

// New creates a new lexer for the given input
func New(input string) *Lexer {
	r := []rune(input)
	l := &Lexer{
		input:       r,
		pos:         -1, // start before first rune
		ch:          0,
		line:        1,
		column:      0, // will be 1 after first read()
		indents:     []int{0},
		atLineStart: true,
	}
	l.read() // move to first character
	return l
}

// SetFilename attributes all subsequently produced spans to the given file.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// read advances the lexer to the next character
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.ch = 0 // EOF
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && prevPos < inputLen && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

// peek2 returns the character two positions ahead without advancing
func (l *Lexer) peek2() rune {
	if l.pos+2 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+2]
}

// currentSpanStart returns the current position for span tracking
func (l *Lexer) currentSpanStart() (line, column, pos int) {
	return l.line, l.column, l.pos
}

// makeToken creates a token with span information
func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos, endPos int, raw, value string) Token {
	return Token{
		Type:  tokType,
		Raw:   raw,
		Value: value,
		Span: Span{
			Filename: l.filename,
			Line:     startLine,
			Column:   startColumn,
			Start:    startPos,
			End:      endPos,
		},
	}
}

// emit records the token type before handing the token to the caller so the
// EOF path knows whether a final NEWLINE is still owed.
func (l *Lexer) emit(tok Token) Token {
	l.lastType = tok.Type
	return tok
}

// markerToken builds a zero-width line-structure token at the current position.
func (l *Lexer) markerToken(tokType TokenType) Token {
	line, column, pos := l.currentSpanStart()
	if column == 0 {
		column = 1
	}
	return l.makeToken(tokType, line, column, pos, pos, "", "")
}

// handleLineStart measures the indentation of the line under the cursor and
// queues INDENT/DEDENT tokens against the indentation stack. Blank and
// comment-only lines produce no tokens at all.
func (l *Lexer) handleLineStart() {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width = (width/tabWidth + 1) * tabWidth
			} else {
				width++
			}
			l.read()
		}

		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.read()
			}
		}
		if l.ch == '\r' {
			l.read()
		}
		if l.ch == '\n' {
			l.read()
			continue // blank line, re-measure the next one
		}
		if l.ch == 0 {
			l.atLineStart = false
			return
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.pending = append(l.pending, l.markerToken(INDENT))
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, l.markerToken(DEDENT))
			}
			if l.indents[len(l.indents)-1] != width {
				line, column, pos := l.currentSpanStart()
				l.addError(
					ErrInconsistentDedent,
					"unindent does not match any outer indentation level",
					Span{Filename: l.filename, Line: line, Column: column, Start: pos, End: pos},
				)
			}
		}
		l.atLineStart = false
		return
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return l.emit(tok)
		}

		if l.atLineStart && l.depth == 0 {
			l.handleLineStart()
			continue
		}

		// Skip inline whitespace.
		for l.ch == ' ' || l.ch == '\t' {
			l.read()
		}

		// Comments run to end of line and produce nothing.
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != '\r' && l.ch != 0 {
				l.read()
			}
			continue
		}

		// Explicit line joining.
		if l.ch == '\\' && (l.peek() == '\n' || l.peek() == '\r') {
			l.read() // consume '\'
			if l.ch == '\r' {
				l.read()
			}
			if l.ch == '\n' {
				l.read()
			}
			continue
		}

		if l.ch == '\n' || l.ch == '\r' {
			startLine, startColumn, startPos := l.currentSpanStart()
			if l.ch == '\r' {
				l.read()
			}
			if l.ch == '\n' {
				l.read()
			}
			if l.depth > 0 {
				continue // implicit line joining inside brackets
			}
			l.atLineStart = true
			return l.emit(l.makeToken(NEWLINE, startLine, startColumn, startPos, l.pos, "\n", "\n"))
		}

		if l.ch == 0 {
			// Close the final logical line, then unwind the indent stack.
			if l.lastType != "" && l.lastType != NEWLINE && l.lastType != DEDENT && l.lastType != INDENT {
				return l.emit(l.markerToken(NEWLINE))
			}
			if len(l.indents) > 1 {
				l.indents = l.indents[:len(l.indents)-1]
				return l.emit(l.markerToken(DEDENT))
			}
			return l.emit(l.markerToken(EOF))
		}

		return l.emit(l.scanToken())
	}
}

// scanToken scans a single non-structural token. The cursor is known to sit
// on a non-space, non-newline, non-EOF rune.
func (l *Lexer) scanToken() Token {
	startLine, startColumn, startPos := l.currentSpanStart()

	single := func(tt TokenType) Token {
		raw := string(l.ch)
		l.read()
		return l.makeToken(tt, startLine, startColumn, startPos, l.pos, raw, raw)
	}
	double := func(tt TokenType) Token {
		raw := string(l.ch)
		l.read()
		raw += string(l.ch)
		l.read()
		return l.makeToken(tt, startLine, startColumn, startPos, l.pos, raw, raw)
	}
	triple := func(tt TokenType) Token {
		raw := string(l.ch)
		l.read()
		raw += string(l.ch)
		l.read()
		raw += string(l.ch)
		l.read()
		return l.makeToken(tt, startLine, startColumn, startPos, l.pos, raw, raw)
	}

	switch l.ch {
	case '=':
		if l.peek() == '=' {
			return double(EQ)
		}
		return single(ASSIGN)
	case '+':
		if l.peek() == '=' {
			return double(PLUS_ASSIGN)
		}
		return single(PLUS)
	case '-':
		if l.peek() == '>' {
			return double(ARROW)
		}
		if l.peek() == '=' {
			return double(MINUS_ASSIGN)
		}
		return single(MINUS)
	case '*':
		if l.peek() == '*' {
			return double(POW)
		}
		if l.peek() == '=' {
			return double(STAR_ASSIGN)
		}
		return single(ASTERISK)
	case '/':
		if l.peek() == '/' {
			return double(FLOORDIV)
		}
		if l.peek() == '=' {
			return double(SLASH_ASSIGN)
		}
		return single(SLASH)
	case '%':
		if l.peek() == '=' {
			return double(PERCENT_ASSIGN)
		}
		return single(PERCENT)
	case '~':
		return single(TILDE)
	case '&':
		if l.peek() == '=' {
			return double(AMP_ASSIGN)
		}
		return single(AMP)
	case '|':
		if l.peek() == '=' {
			return double(PIPE_ASSIGN)
		}
		return single(PIPE)
	case '^':
		if l.peek() == '=' {
			return double(CARET_ASSIGN)
		}
		return single(CARET)
	case '<':
		if l.peek() == '<' {
			if l.peek2() == '=' {
				return triple(LSHIFT_ASSIGN)
			}
			return double(LSHIFT)
		}
		if l.peek() == '=' {
			return double(LE)
		}
		return single(LT)
	case '>':
		if l.peek() == '>' {
			if l.peek2() == '=' {
				return triple(RSHIFT_ASSIGN)
			}
			return double(RSHIFT)
		}
		if l.peek() == '=' {
			return double(GE)
		}
		return single(GT)
	case '!':
		if l.peek() == '=' {
			return double(NOT_EQ)
		}
	case ':':
		if l.peek() == '=' {
			return double(WALRUS)
		}
		return single(COLON)
	case ',':
		return single(COMMA)
	case ';':
		return single(SEMICOLON)
	case '.':
		return single(DOT)
	case '@':
		return single(AT)
	case '(':
		l.depth++
		return single(LPAREN)
	case ')':
		if l.depth > 0 {
			l.depth--
		}
		return single(RPAREN)
	case '[':
		l.depth++
		return single(LBRACKET)
	case ']':
		if l.depth > 0 {
			l.depth--
		}
		return single(RBRACKET)
	case '{':
		l.depth++
		return single(LBRACE)
	case '}':
		if l.depth > 0 {
			l.depth--
		}
		return single(RBRACE)
	case '"', '\'':
		raw, value, terminated := l.readString(startLine, startColumn, startPos, l.ch)
		if !terminated {
			return l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, raw)
		}
		return l.makeToken(STRING, startLine, startColumn, startPos, l.pos, raw, value)
	}

	if isLetter(l.ch) {
		literal := l.readIdentifier()
		tokType := LookupIdent(literal)
		return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, literal, literal)
	}
	if isDigit(l.ch) {
		literal, tokType := l.readNumber()
		return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, literal, literal)
	}

	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, raw)
	l.addError(
		ErrIllegalRune,
		"illegal character "+strconv.Quote(raw),
		tok.Span,
	)
	return tok
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads a number literal (decimal, hex 0x..., binary 0b..., float).
// The raw source text is preserved; numeric values are never re-rendered.
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.pos
	isFloat := false

	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.read() // '0'
		l.read() // 'x'
		for isHexDigit(l.ch) {
			l.read()
		}
		return string(l.input[start:l.pos]), INT
	}
	if l.ch == '0' && (l.peek() == 'b' || l.peek() == 'B') {
		l.read() // '0'
		l.read() // 'b'
		for l.ch == '0' || l.ch == '1' {
			l.read()
		}
		return string(l.input[start:l.pos]), INT
	}

	for isDigit(l.ch) {
		l.read()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		isFloat = true
		l.read() // '.'
		for isDigit(l.ch) {
			l.read()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peek()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek2())) {
			isFloat = true
			l.read() // 'e'
			if l.ch == '+' || l.ch == '-' {
				l.read()
			}
			for isDigit(l.ch) {
				l.read()
			}
		}
	}

	if isFloat {
		return string(l.input[start:l.pos]), FLOAT
	}
	return string(l.input[start:l.pos]), INT
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}

// isHexDigit checks if a rune is a hexadecimal digit
func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') ||
		(ch >= 'a' && ch <= 'f') ||
		(ch >= 'A' && ch <= 'F')
}

// readString reads a string literal, handling escape sequences.
// Returns both raw (with escapes) and decoded (without escapes) values,
// along with a flag indicating whether the string was properly terminated.
func (l *Lexer) readString(startLine, startColumn, startPos int, quote rune) (raw string, value string, terminated bool) {
	var rawRunes []rune
	var decodedRunes []rune

	rawRunes = append(rawRunes, quote) // include opening quote
	l.read()                           // skip opening quote

	for {
		if l.ch == 0 {
			l.addError(
				ErrUnterminatedString,
				"unterminated string literal",
				Span{Filename: l.filename, Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			break
		}
		if l.ch == quote {
			rawRunes = append(rawRunes, quote) // include closing quote
			l.read()                           // consume closing quote
			return string(rawRunes), string(decodedRunes), true
		}
		if l.ch == '\n' || l.ch == '\r' {
			l.addError(
				ErrUnterminatedString,
				"newline in string literal",
				Span{Filename: l.filename, Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			break
		}
		if l.ch == '\\' {
			rawRunes = append(rawRunes, '\\')
			l.read() // skip '\'
			if l.ch == 0 {
				continue
			}

			// \xNN: exactly two hex digits decode to one byte.
			if l.ch == 'x' {
				rawRunes = append(rawRunes, 'x')
				l.read()
				var digits []rune
				for len(digits) < 2 && isHexDigit(l.ch) {
					digits = append(digits, l.ch)
					rawRunes = append(rawRunes, l.ch)
					l.read()
				}
				if len(digits) == 2 {
					v, _ := strconv.ParseUint(string(digits), 16, 8)
					decodedRunes = append(decodedRunes, rune(v))
				} else {
					// Malformed \x keeps its spelling.
					decodedRunes = append(decodedRunes, '\\', 'x')
					decodedRunes = append(decodedRunes, digits...)
				}
				continue
			}

			// \N, \NN, \NNN: up to three octal digits (\0 is the common case).
			if l.ch >= '0' && l.ch <= '7' {
				digits := []rune{l.ch}
				rawRunes = append(rawRunes, l.ch)
				l.read()
				for len(digits) < 3 && l.ch >= '0' && l.ch <= '7' {
					digits = append(digits, l.ch)
					rawRunes = append(rawRunes, l.ch)
					l.read()
				}
				v, _ := strconv.ParseUint(string(digits), 8, 16)
				decodedRunes = append(decodedRunes, rune(v))
				continue
			}

			rawRunes = append(rawRunes, l.ch)
			switch l.ch {
			case 'n':
				decodedRunes = append(decodedRunes, '\n')
			case 't':
				decodedRunes = append(decodedRunes, '\t')
			case 'r':
				decodedRunes = append(decodedRunes, '\r')
			case '\\':
				decodedRunes = append(decodedRunes, '\\')
			case '\'':
				decodedRunes = append(decodedRunes, '\'')
			case '"':
				decodedRunes = append(decodedRunes, '"')
			default:
				// Unknown escapes pass through with the backslash.
				decodedRunes = append(decodedRunes, '\\')
				decodedRunes = append(decodedRunes, l.ch)
			}
			l.read() // skip escaped char
			continue
		}
		rawRunes = append(rawRunes, l.ch)
		decodedRunes = append(decodedRunes, l.ch)
		l.read()
	}

	// If we get here, the string was not terminated properly (newline or EOF).
	return string(rawRunes), string(decodedRunes), false
}
