package lexer

import (
	"testing"
)

func TestNextToken_Operators(t *testing.T) {
	input := `+ - * ** / // % ~ & | ^ << >> < > <= >= == != = := -> @`

	tests := []struct {
		expectedType TokenType
		expectedRaw  string
	}{
		{PLUS, "+"},
		{MINUS, "-"},
		{ASTERISK, "*"},
		{POW, "**"},
		{SLASH, "/"},
		{FLOORDIV, "//"},
		{PERCENT, "%"},
		{TILDE, "~"},
		{AMP, "&"},
		{PIPE, "|"},
		{CARET, "^"},
		{LSHIFT, "<<"},
		{RSHIFT, ">>"},
		{LT, "<"},
		{GT, ">"},
		{LE, "<="},
		{GE, ">="},
		{EQ, "=="},
		{NOT_EQ, "!="},
		{ASSIGN, "="},
		{WALRUS, ":="},
		{ARROW, "->"},
		{AT, "@"},
		{NEWLINE, ""},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tt.expectedRaw != "" && tok.Raw != tt.expectedRaw {
			t.Fatalf("tests[%d] - raw wrong. expected=%q, got=%q",
				i, tt.expectedRaw, tok.Raw)
		}
	}
}

func TestNextToken_AugmentedAssign(t *testing.T) {
	input := `x += 1; x -= 1; x *= 2; x /= 2; x %= 3; x &= 1; x |= 2; x ^= 4; x <<= 1; x >>= 1`

	expected := []TokenType{
		IDENT, PLUS_ASSIGN, INT, SEMICOLON,
		IDENT, MINUS_ASSIGN, INT, SEMICOLON,
		IDENT, STAR_ASSIGN, INT, SEMICOLON,
		IDENT, SLASH_ASSIGN, INT, SEMICOLON,
		IDENT, PERCENT_ASSIGN, INT, SEMICOLON,
		IDENT, AMP_ASSIGN, INT, SEMICOLON,
		IDENT, PIPE_ASSIGN, INT, SEMICOLON,
		IDENT, CARET_ASSIGN, INT, SEMICOLON,
		IDENT, LSHIFT_ASSIGN, INT, SEMICOLON,
		IDENT, RSHIFT_ASSIGN, INT,
		NEWLINE, EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q (raw %q)", i, typ, tok.Type, tok.Raw)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := `def class return if elif else while for in raise del import from and or not None True False break continue pass`

	expected := []TokenType{
		DEF, CLASS, RETURN, IF, ELIF, ELSE, WHILE, FOR, IN, RAISE, DEL,
		IMPORT, FROM, AND, OR, NOT, NONE, TRUE, FALSE, BREAK, CONTINUE, PASS,
		NEWLINE, EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q (raw %q)", i, typ, tok.Type, tok.Raw)
		}
	}
}

func TestSoftKeywordsLexAsIdent(t *testing.T) {
	input := `match case type`

	l := New(input)
	for i := 0; i < 3; i++ {
		tok := l.NextToken()
		if tok.Type != IDENT {
			t.Fatalf("step %d - soft keyword should lex as IDENT, got %q", i, tok.Type)
		}
	}
}

func TestNextToken_Numbers(t *testing.T) {
	input := `0 42 0x1F 0b101 3.14 1e9 2.5e-3`

	tests := []struct {
		expectedType TokenType
		expectedRaw  string
	}{
		{INT, "0"},
		{INT, "42"},
		{INT, "0x1F"},
		{INT, "0b101"},
		{FLOAT, "3.14"},
		{FLOAT, "1e9"},
		{FLOAT, "2.5e-3"},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (raw %q)",
				i, tt.expectedType, tok.Type, tok.Raw)
		}
		if tok.Raw != tt.expectedRaw {
			t.Fatalf("tests[%d] - raw wrong. expected=%q, got=%q", i, tt.expectedRaw, tok.Raw)
		}
	}
}

func TestNextToken_StringEscapes(t *testing.T) {
	input := `"hello" "a\nb" "tab\there" "quote\"end" 'single'`

	tests := []struct {
		expectedValue string
	}{
		{"hello"},
		{"a\nb"},
		{"tab\there"},
		{"quote\"end"},
		{"single"},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("tests[%d] - expected STRING, got %q (raw %q)", i, tok.Type, tok.Raw)
		}
		if tok.Value != tt.expectedValue {
			t.Fatalf("tests[%d] - decoded value wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Value)
		}
	}
}

func TestIndentation(t *testing.T) {
	input := "if x:\n    y = 1\n    z = 2\nw = 3\n"

	expected := []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, IDENT, ASSIGN, INT, NEWLINE,
		IDENT, ASSIGN, INT, NEWLINE,
		DEDENT, IDENT, ASSIGN, INT, NEWLINE,
		EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q (raw %q)", i, typ, tok.Type, tok.Raw)
		}
	}
}

func TestNestedIndentation(t *testing.T) {
	input := "if a:\n    if b:\n        x = 1\ny = 2\n"

	expected := []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, IF, IDENT, COLON, NEWLINE,
		INDENT, IDENT, ASSIGN, INT, NEWLINE,
		DEDENT, DEDENT, IDENT, ASSIGN, INT, NEWLINE,
		EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q", i, typ, tok.Type)
		}
	}
}

func TestBlankLinesAndCommentsSkipped(t *testing.T) {
	input := "x = 1\n\n# a comment\n   # indented comment\ny = 2\n"

	expected := []TokenType{
		IDENT, ASSIGN, INT, NEWLINE,
		IDENT, ASSIGN, INT, NEWLINE,
		EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q (raw %q)", i, typ, tok.Type, tok.Raw)
		}
	}
}

func TestBracketsSuppressNewlines(t *testing.T) {
	input := "f(a,\n  b,\n  c)\n"

	expected := []TokenType{
		IDENT, LPAREN, IDENT, COMMA, IDENT, COMMA, IDENT, RPAREN, NEWLINE, EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q", i, typ, tok.Type)
		}
	}
}

func TestBackslashContinuation(t *testing.T) {
	input := "x = 1 + \\\n    2\n"

	expected := []TokenType{
		IDENT, ASSIGN, INT, PLUS, INT, NEWLINE, EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q", i, typ, tok.Type)
		}
	}
}

func TestFinalNewlineSynthesised(t *testing.T) {
	// Source without a trailing newline still terminates the last logical line.
	input := "x = 1"

	expected := []TokenType{IDENT, ASSIGN, INT, NEWLINE, EOF}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q", i, typ, tok.Type)
		}
	}
}

func TestDanglingDedentsBeforeEOF(t *testing.T) {
	input := "if x:\n    if y:\n        z = 1"

	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}

	dedents := 0
	for _, typ := range types {
		if typ == DEDENT {
			dedents++
		}
	}
	if dedents != 2 {
		t.Fatalf("expected 2 closing DEDENT tokens, got %d (stream %v)", dedents, types)
	}
	if types[len(types)-1] != EOF {
		t.Fatalf("stream must end in EOF, got %q", types[len(types)-1])
	}
}

func TestSpans(t *testing.T) {
	input := "x = 10\n"

	l := New(input)
	l.SetFilename("test.py")

	tok := l.NextToken() // x
	if tok.Span.Line != 1 || tok.Span.Column != 1 {
		t.Fatalf("x span wrong: line=%d col=%d", tok.Span.Line, tok.Span.Column)
	}
	if tok.Span.Filename != "test.py" {
		t.Fatalf("span filename wrong: %q", tok.Span.Filename)
	}

	l.NextToken()       // =
	tok = l.NextToken() // 10
	if tok.Span.Line != 1 || tok.Span.Column != 5 {
		t.Fatalf("10 span wrong: line=%d col=%d", tok.Span.Line, tok.Span.Column)
	}
}

func TestNextToken_HexAndOctalEscapes(t *testing.T) {
	input := `"\x41" "\101" "\0end" "\xZQ"`

	tests := []struct {
		expectedValue string
	}{
		{"A"},
		{"A"},
		{"\x00end"},
		{`\xZQ`},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("tests[%d] - expected STRING, got %q (raw %q)", i, tok.Type, tok.Raw)
		}
		if tok.Value != tt.expectedValue {
			t.Fatalf("tests[%d] - decoded value wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Value)
		}
	}
}
