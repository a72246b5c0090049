package ast

import "github.com/arafura-lang/arafura/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node. Type annotations are ordinary
// expressions; the lowering stage decides which shapes are valid in type
// position.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Module represents a parsed compilation unit.
type Module struct {
	Stmts []Stmt
	span  lexer.Span
}

// Span returns the span covering the entire module.
func (m *Module) Span() lexer.Span { return m.span }

// NewModule constructs a module node with the provided span.
func NewModule(span lexer.Span) *Module {
	return &Module{span: span}
}

// SetSpan updates the module span.
func (m *Module) SetSpan(span lexer.Span) {
	m.span = span
}

// ----------------------------------------------------------------------------
// Expressions

// Name represents an identifier in expression or type position.
type Name struct {
	Name string
	span lexer.Span
}

// Span returns the identifier span.
func (e *Name) Span() lexer.Span { return e.span }

// NewName constructs an identifier node.
func NewName(name string, span lexer.Span) *Name {
	return &Name{Name: name, span: span}
}

func (*Name) exprNode() {}

// ConstKind discriminates constant literals.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstTrue
	ConstFalse
	ConstNone
)

// Constant represents a literal. Numeric literals keep their raw source
// text; string literals carry the decoded value.
type Constant struct {
	Kind  ConstKind
	Raw   string // source text, as written
	Value string // decoded value for strings, same as Raw otherwise
	span  lexer.Span
}

// Span returns the literal span.
func (e *Constant) Span() lexer.Span { return e.span }

// NewConstant constructs a constant node.
func NewConstant(kind ConstKind, raw, value string, span lexer.Span) *Constant {
	return &Constant{Kind: kind, Raw: raw, Value: value, span: span}
}

func (*Constant) exprNode() {}

// Attribute represents member access: value.attr.
type Attribute struct {
	Value Expr
	Attr  string
	span  lexer.Span
}

// Span returns the attribute access span.
func (e *Attribute) Span() lexer.Span { return e.span }

// NewAttribute constructs an attribute access node.
func NewAttribute(value Expr, attr string, span lexer.Span) *Attribute {
	return &Attribute{Value: value, Attr: attr, span: span}
}

func (*Attribute) exprNode() {}

// Subscript represents subscription: value[index]. A multi-element index
// such as list[int, 10] parses as a Tuple in Index.
type Subscript struct {
	Value Expr
	Index Expr
	span  lexer.Span
}

// Span returns the subscription span.
func (e *Subscript) Span() lexer.Span { return e.span }

// NewSubscript constructs a subscription node.
func NewSubscript(value, index Expr, span lexer.Span) *Subscript {
	return &Subscript{Value: value, Index: index, span: span}
}

func (*Subscript) exprNode() {}

// Keyword represents a keyword argument in a call: name=value.
type Keyword struct {
	Name  string
	Value Expr
	span  lexer.Span
}

// Span returns the keyword argument span.
func (k *Keyword) Span() lexer.Span { return k.span }

// NewKeyword constructs a keyword argument node.
func NewKeyword(name string, value Expr, span lexer.Span) *Keyword {
	return &Keyword{Name: name, Value: value, span: span}
}

// Call represents a call: func(args, keywords).
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
	span     lexer.Span
}

// Span returns the call span.
func (e *Call) Span() lexer.Span { return e.span }

// NewCall constructs a call node.
func NewCall(fn Expr, args []Expr, keywords []*Keyword, span lexer.Span) *Call {
	return &Call{Func: fn, Args: args, Keywords: keywords, span: span}
}

func (*Call) exprNode() {}

// BinOp represents a binary arithmetic or bitwise operation. Op holds the
// surface operator text ("+", "**", "//", "<<", ...).
type BinOp struct {
	Left  Expr
	Op    string
	Right Expr
	span  lexer.Span
}

// Span returns the operation span.
func (e *BinOp) Span() lexer.Span { return e.span }

// NewBinOp constructs a binary operation node.
func NewBinOp(left Expr, op string, right Expr, span lexer.Span) *BinOp {
	return &BinOp{Left: left, Op: op, Right: right, span: span}
}

func (*BinOp) exprNode() {}

// UnaryOp represents a unary operation. Op is one of "-", "+", "~", "not".
type UnaryOp struct {
	Op      string
	Operand Expr
	span    lexer.Span
}

// Span returns the operation span.
func (e *UnaryOp) Span() lexer.Span { return e.span }

// NewUnaryOp constructs a unary operation node.
func NewUnaryOp(op string, operand Expr, span lexer.Span) *UnaryOp {
	return &UnaryOp{Op: op, Operand: operand, span: span}
}

func (*UnaryOp) exprNode() {}

// BoolOp represents a short-circuit boolean chain. Op is "and" or "or".
type BoolOp struct {
	Op     string
	Values []Expr
	span   lexer.Span
}

// Span returns the chain span.
func (e *BoolOp) Span() lexer.Span { return e.span }

// NewBoolOp constructs a boolean operation node.
func NewBoolOp(op string, values []Expr, span lexer.Span) *BoolOp {
	return &BoolOp{Op: op, Values: values, span: span}
}

func (*BoolOp) exprNode() {}

// Compare represents a comparison chain: Left Ops[0] Comparators[0] ...
// Chains longer than one comparison parse but are rejected at lowering.
type Compare struct {
	Left        Expr
	Ops         []string
	Comparators []Expr
	span        lexer.Span
}

// Span returns the comparison span.
func (e *Compare) Span() lexer.Span { return e.span }

// NewCompare constructs a comparison node.
func NewCompare(left Expr, ops []string, comparators []Expr, span lexer.Span) *Compare {
	return &Compare{Left: left, Ops: ops, Comparators: comparators, span: span}
}

func (*Compare) exprNode() {}

// IfExp represents a conditional expression: body if test else orelse.
type IfExp struct {
	Test   Expr
	Body   Expr
	Orelse Expr
	span   lexer.Span
}

// Span returns the conditional span.
func (e *IfExp) Span() lexer.Span { return e.span }

// NewIfExp constructs a conditional expression node.
func NewIfExp(test, body, orelse Expr, span lexer.Span) *IfExp {
	return &IfExp{Test: test, Body: body, Orelse: orelse, span: span}
}

func (*IfExp) exprNode() {}

// NamedExpr represents a walrus assignment expression: (target := value).
type NamedExpr struct {
	Target *Name
	Value  Expr
	span   lexer.Span
}

// Span returns the expression span.
func (e *NamedExpr) Span() lexer.Span { return e.span }

// NewNamedExpr constructs a walrus expression node.
func NewNamedExpr(target *Name, value Expr, span lexer.Span) *NamedExpr {
	return &NamedExpr{Target: target, Value: value, span: span}
}

func (*NamedExpr) exprNode() {}

// Tuple represents a tuple display, parenthesised or bare.
type Tuple struct {
	Elts []Expr
	span lexer.Span
}

// Span returns the tuple span.
func (e *Tuple) Span() lexer.Span { return e.span }

// NewTuple constructs a tuple node.
func NewTuple(elts []Expr, span lexer.Span) *Tuple {
	return &Tuple{Elts: elts, span: span}
}

// SetSpan updates the tuple span.
func (e *Tuple) SetSpan(span lexer.Span) {
	e.span = span
}

func (*Tuple) exprNode() {}

// List represents a list display.
type List struct {
	Elts []Expr
	span lexer.Span
}

// Span returns the list span.
func (e *List) Span() lexer.Span { return e.span }

// NewList constructs a list node.
func NewList(elts []Expr, span lexer.Span) *List {
	return &List{Elts: elts, span: span}
}

func (*List) exprNode() {}

// Dict represents a dict display; Keys and Values are parallel.
type Dict struct {
	Keys   []Expr
	Values []Expr
	span   lexer.Span
}

// Span returns the dict span.
func (e *Dict) Span() lexer.Span { return e.span }

// NewDict constructs a dict node.
func NewDict(keys, values []Expr, span lexer.Span) *Dict {
	return &Dict{Keys: keys, Values: values, span: span}
}

func (*Dict) exprNode() {}

// ----------------------------------------------------------------------------
// Statements

// ExprStmt represents an expression statement.
type ExprStmt struct {
	X    Expr
	span lexer.Span
}

// Span returns the statement span.
func (s *ExprStmt) Span() lexer.Span { return s.span }

// NewExprStmt constructs an expression statement node.
func NewExprStmt(x Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{X: x, span: span}
}

func (*ExprStmt) stmtNode() {}

// Assign represents an assignment, possibly chained: a = b = value.
type Assign struct {
	Targets []Expr
	Value   Expr
	span    lexer.Span
}

// Span returns the statement span.
func (s *Assign) Span() lexer.Span { return s.span }

// NewAssign constructs an assignment node.
func NewAssign(targets []Expr, value Expr, span lexer.Span) *Assign {
	return &Assign{Targets: targets, Value: value, span: span}
}

func (*Assign) stmtNode() {}

// AugAssign represents an augmented assignment. Op holds the base operator
// text without '=' ("+", "<<", ...).
type AugAssign struct {
	Target Expr
	Op     string
	Value  Expr
	span   lexer.Span
}

// Span returns the statement span.
func (s *AugAssign) Span() lexer.Span { return s.span }

// NewAugAssign constructs an augmented assignment node.
func NewAugAssign(target Expr, op string, value Expr, span lexer.Span) *AugAssign {
	return &AugAssign{Target: target, Op: op, Value: value, span: span}
}

func (*AugAssign) stmtNode() {}

// AnnAssign represents an annotated assignment: target: annotation [= value].
type AnnAssign struct {
	Target     *Name
	Annotation Expr
	Value      Expr
	span       lexer.Span
}

// Span returns the statement span.
func (s *AnnAssign) Span() lexer.Span { return s.span }

// NewAnnAssign constructs an annotated assignment node.
func NewAnnAssign(target *Name, annotation, value Expr, span lexer.Span) *AnnAssign {
	return &AnnAssign{Target: target, Annotation: annotation, Value: value, span: span}
}

func (*AnnAssign) stmtNode() {}

// Return represents a return statement; Value may be nil.
type Return struct {
	Value Expr
	span  lexer.Span
}

// Span returns the statement span.
func (s *Return) Span() lexer.Span { return s.span }

// NewReturn constructs a return statement node.
func NewReturn(value Expr, span lexer.Span) *Return {
	return &Return{Value: value, span: span}
}

func (*Return) stmtNode() {}

// Break represents a break statement.
type Break struct {
	span lexer.Span
}

// Span returns the statement span.
func (s *Break) Span() lexer.Span { return s.span }

// NewBreak constructs a break statement node.
func NewBreak(span lexer.Span) *Break { return &Break{span: span} }

func (*Break) stmtNode() {}

// Continue represents a continue statement.
type Continue struct {
	span lexer.Span
}

// Span returns the statement span.
func (s *Continue) Span() lexer.Span { return s.span }

// NewContinue constructs a continue statement node.
func NewContinue(span lexer.Span) *Continue { return &Continue{span: span} }

func (*Continue) stmtNode() {}

// Pass represents a pass statement; it lowers to nothing.
type Pass struct {
	span lexer.Span
}

// Span returns the statement span.
func (s *Pass) Span() lexer.Span { return s.span }

// NewPass constructs a pass statement node.
func NewPass(span lexer.Span) *Pass { return &Pass{span: span} }

func (*Pass) stmtNode() {}

// Raise represents raise NAME, the surface encoding of goto.
type Raise struct {
	Target *Name
	span   lexer.Span
}

// Span returns the statement span.
func (s *Raise) Span() lexer.Span { return s.span }

// NewRaise constructs a raise statement node.
func NewRaise(target *Name, span lexer.Span) *Raise {
	return &Raise{Target: target, span: span}
}

func (*Raise) stmtNode() {}

// Delete represents del NAME, ..., the surface encoding of #undef.
type Delete struct {
	Names []*Name
	span  lexer.Span
}

// Span returns the statement span.
func (s *Delete) Span() lexer.Span { return s.span }

// NewDelete constructs a delete statement node.
func NewDelete(names []*Name, span lexer.Span) *Delete {
	return &Delete{Names: names, span: span}
}

func (*Delete) stmtNode() {}

// Import represents import NAME.
type Import struct {
	Module *Name
	span   lexer.Span
}

// Span returns the statement span.
func (s *Import) Span() lexer.Span { return s.span }

// NewImport constructs an import statement node.
func NewImport(module *Name, span lexer.Span) *Import {
	return &Import{Module: module, span: span}
}

func (*Import) stmtNode() {}

// ImportFrom represents from NAME import *.
type ImportFrom struct {
	Module *Name
	span   lexer.Span
}

// Span returns the statement span.
func (s *ImportFrom) Span() lexer.Span { return s.span }

// NewImportFrom constructs a from-import statement node.
func NewImportFrom(module *Name, span lexer.Span) *ImportFrom {
	return &ImportFrom{Module: module, span: span}
}

func (*ImportFrom) stmtNode() {}

// TypeAlias represents type ALIAS = T.
type TypeAlias struct {
	Name  *Name
	Value Expr
	span  lexer.Span
}

// Span returns the statement span.
func (s *TypeAlias) Span() lexer.Span { return s.span }

// NewTypeAlias constructs a type alias node.
func NewTypeAlias(name *Name, value Expr, span lexer.Span) *TypeAlias {
	return &TypeAlias{Name: name, Value: value, span: span}
}

func (*TypeAlias) stmtNode() {}

// If represents an if statement. An elif chain nests as a single If in
// Orelse; a plain else is any other non-empty Orelse.
type If struct {
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
	span   lexer.Span
}

// Span returns the statement span.
func (s *If) Span() lexer.Span { return s.span }

// NewIf constructs an if statement node.
func NewIf(test Expr, body, orelse []Stmt, span lexer.Span) *If {
	return &If{Test: test, Body: body, Orelse: orelse, span: span}
}

func (*If) stmtNode() {}

// While represents a while statement.
type While struct {
	Test Expr
	Body []Stmt
	span lexer.Span
}

// Span returns the statement span.
func (s *While) Span() lexer.Span { return s.span }

// NewWhile constructs a while statement node.
func NewWhile(test Expr, body []Stmt, span lexer.Span) *While {
	return &While{Test: test, Body: body, span: span}
}

func (*While) stmtNode() {}

// For represents for TARGET in ITER: ..., the surface encoding of the
// C-style for loop.
type For struct {
	Target Expr
	Iter   Expr
	Body   []Stmt
	span   lexer.Span
}

// Span returns the statement span.
func (s *For) Span() lexer.Span { return s.span }

// NewFor constructs a for statement node.
func NewFor(target, iter Expr, body []Stmt, span lexer.Span) *For {
	return &For{Target: target, Iter: iter, Body: body, span: span}
}

func (*For) stmtNode() {}

// MatchCase represents one case arm of a match statement.
type MatchCase struct {
	Pattern Expr
	Body    []Stmt
	span    lexer.Span
}

// Span returns the case span.
func (c *MatchCase) Span() lexer.Span { return c.span }

// NewMatchCase constructs a match case node.
func NewMatchCase(pattern Expr, body []Stmt, span lexer.Span) *MatchCase {
	return &MatchCase{Pattern: pattern, Body: body, span: span}
}

// Match represents a match statement, the surface encoding of switch.
type Match struct {
	Subject Expr
	Cases   []*MatchCase
	span    lexer.Span
}

// Span returns the statement span.
func (s *Match) Span() lexer.Span { return s.span }

// NewMatch constructs a match statement node.
func NewMatch(subject Expr, cases []*MatchCase, span lexer.Span) *Match {
	return &Match{Subject: subject, Cases: cases, span: span}
}

func (*Match) stmtNode() {}

// Param represents a function parameter with an optional annotation.
type Param struct {
	Name       *Name
	Annotation Expr
	span       lexer.Span
}

// Span returns the parameter span.
func (p *Param) Span() lexer.Span { return p.span }

// NewParam constructs a parameter node.
func NewParam(name *Name, annotation Expr, span lexer.Span) *Param {
	return &Param{Name: name, Annotation: annotation, span: span}
}

// FunctionDef represents def NAME(params) [-> returns]: body, which lowers
// to either a C function or a function-like macro.
type FunctionDef struct {
	Name       *Name
	Params     []*Param
	Vararg     *Name // trailing *args parameter, nil if absent
	Returns    Expr  // return annotation, nil if absent
	Body       []Stmt
	Decorators []Expr
	span       lexer.Span
}

// Span returns the definition span.
func (s *FunctionDef) Span() lexer.Span { return s.span }

// NewFunctionDef constructs a function definition node.
func NewFunctionDef(name *Name, params []*Param, vararg *Name, returns Expr, body []Stmt, decorators []Expr, span lexer.Span) *FunctionDef {
	return &FunctionDef{
		Name:       name,
		Params:     params,
		Vararg:     vararg,
		Returns:    returns,
		Body:       body,
		Decorators: decorators,
		span:       span,
	}
}

func (*FunctionDef) stmtNode() {}

// ClassDef represents class NAME[(BASE)]: body, which lowers to a composite
// type definition.
type ClassDef struct {
	Name       *Name
	Bases      []*Name
	Body       []Stmt
	Decorators []Expr
	span       lexer.Span
}

// Span returns the definition span.
func (s *ClassDef) Span() lexer.Span { return s.span }

// NewClassDef constructs a class definition node.
func NewClassDef(name *Name, bases []*Name, body []Stmt, decorators []Expr, span lexer.Span) *ClassDef {
	return &ClassDef{
		Name:       name,
		Bases:      bases,
		Body:       body,
		Decorators: decorators,
		span:       span,
	}
}

func (*ClassDef) stmtNode() {}
