package lexer

// TokenType represents the type of a token
type TokenType string

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // index in []rune or original string
	End      int    // exclusive end index
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Raw   string // exact runes from source
	Value string // decoded value (for strings, same as Raw for others)
	Span  Span   // source location information
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Line structure
	NEWLINE TokenType = "NEWLINE"
	INDENT  TokenType = "INDENT"
	DEDENT  TokenType = "DEDENT"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"  // x, printf, Node, ...
	INT    TokenType = "INT"    // 1343456, 0x1F, 0b101
	FLOAT  TokenType = "FLOAT"  // 3.14, 1e9
	STRING TokenType = "STRING" // "hello"

	// Operators
	ASSIGN   TokenType = "="
	WALRUS   TokenType = ":="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	POW      TokenType = "**"
	SLASH    TokenType = "/"
	FLOORDIV TokenType = "//"
	PERCENT  TokenType = "%"
	TILDE    TokenType = "~"
	AMP      TokenType = "&"
	PIPE     TokenType = "|"
	CARET    TokenType = "^"
	LSHIFT   TokenType = "<<"
	RSHIFT   TokenType = ">>"

	LT     TokenType = "<"
	GT     TokenType = ">"
	LE     TokenType = "<="
	GE     TokenType = ">="
	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="

	PLUS_ASSIGN    TokenType = "+="
	MINUS_ASSIGN   TokenType = "-="
	STAR_ASSIGN    TokenType = "*="
	SLASH_ASSIGN   TokenType = "/="
	PERCENT_ASSIGN TokenType = "%="
	AMP_ASSIGN     TokenType = "&="
	PIPE_ASSIGN    TokenType = "|="
	CARET_ASSIGN   TokenType = "^="
	LSHIFT_ASSIGN  TokenType = "<<="
	RSHIFT_ASSIGN  TokenType = ">>="

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	DOT       TokenType = "."
	AT        TokenType = "@"
	ARROW     TokenType = "->"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"

	// Keywords
	DEF      TokenType = "DEF"
	CLASS    TokenType = "CLASS"
	RETURN   TokenType = "RETURN"
	IF       TokenType = "IF"
	ELIF     TokenType = "ELIF"
	ELSE     TokenType = "ELSE"
	WHILE    TokenType = "WHILE"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	RAISE    TokenType = "RAISE"
	DEL      TokenType = "DEL"
	IMPORT   TokenType = "IMPORT"
	FROM     TokenType = "FROM"
	AND      TokenType = "AND"
	OR       TokenType = "OR"
	NOT      TokenType = "NOT"
	NONE     TokenType = "NONE"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	PASS     TokenType = "PASS"
)

// Keywords of the surface grammar. `match`, `case`, and `type` are soft
// keywords: they lex as IDENT and the parser recognises them by position.
var keywords = map[string]TokenType{
	"def":      DEF,
	"class":    CLASS,
	"return":   RETURN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"raise":    RAISE,
	"del":      DEL,
	"import":   IMPORT,
	"from":     FROM,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"None":     NONE,
	"True":     TRUE,
	"False":    FALSE,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
}

// LookupIdent checks if the identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
