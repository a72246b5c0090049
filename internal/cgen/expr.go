package cgen

import (
	"strings"

	"github.com/arafura-lang/arafura/internal/ast"
	"github.com/arafura-lang/arafura/internal/diag"
)

// expr lowers an expression node to C text.
func (t *translator) expr(node ast.Expr) (string, error) {
	switch n := node.(type) {
	case *ast.Constant:
		return t.constant(n), nil

	case *ast.Name:
		if n.Name == wildcard {
			return "", reservedMisuse(n.Span(), "'%s' is only valid in its wildcard forms", wildcard)
		}
		return t.escapeIdent(n.Name), nil

	case *ast.BinOp:
		return t.binOp(n)

	case *ast.UnaryOp:
		operand, err := t.expr(n.Operand)
		if err != nil {
			return "", err
		}
		op := n.Op
		if op == "not" {
			op = "!"
		}
		return op + operand, nil

	case *ast.Compare:
		return t.compare(n)

	case *ast.BoolOp:
		return t.boolOp(n)

	case *ast.IfExp:
		test, err := t.expr(n.Test)
		if err != nil {
			return "", err
		}
		body, err := t.expr(n.Body)
		if err != nil {
			return "", err
		}
		orelse, err := t.expr(n.Orelse)
		if err != nil {
			return "", err
		}
		return "(" + test + " ? " + body + " : " + orelse + ")", nil

	case *ast.NamedExpr:
		value, err := t.expr(n.Value)
		if err != nil {
			return "", err
		}
		return "(" + t.escapeIdent(n.Target.Name) + " = " + value + ")", nil

	case *ast.Call:
		return t.call(n)

	case *ast.Attribute:
		return t.attribute(n)

	case *ast.Subscript:
		return t.subscript(n)

	case *ast.List:
		elts, err := t.exprList(n.Elts)
		if err != nil {
			return "", err
		}
		return "{" + elts + "}", nil

	case *ast.Dict:
		items := make([]string, 0, len(n.Keys))
		for i, k := range n.Keys {
			key, err := t.expr(k)
			if err != nil {
				return "", err
			}
			val, err := t.expr(n.Values[i])
			if err != nil {
				return "", err
			}
			items = append(items, "["+key+"] = "+val)
		}
		return "{" + strings.Join(items, ", ") + "}", nil

	case *ast.Tuple:
		return t.exprList(n.Elts)
	}

	return "", unrecognised(node.Span(), "unsupported expression")
}

func (t *translator) exprList(elts []ast.Expr) (string, error) {
	parts := make([]string, 0, len(elts))
	for _, e := range elts {
		s, err := t.expr(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func (t *translator) constant(n *ast.Constant) string {
	switch n.Kind {
	case ast.ConstTrue:
		return "1"
	case ast.ConstFalse:
		return "0"
	case ast.ConstNone:
		return "NULL"
	case ast.ConstString:
		escaped := strings.NewReplacer(
			"\\", "\\\\",
			"\"", "\\\"",
			"\n", "\\n",
			"\r", "\\r",
			"\t", "\\t",
		).Replace(n.Value)
		return "\"" + escaped + "\""
	}
	// Numerics pass through as written in the source.
	return n.Raw
}

// binOp lowers a binary operation. The power and floor-division operators
// exist only as increment/decrement spellings against the wildcard; with two
// ordinary operands they are rejected.
func (t *translator) binOp(n *ast.BinOp) (string, error) {
	switch n.Op {
	case "**", "//":
		return t.incDec(n)
	}

	left, err := t.expr(n.Left)
	if err != nil {
		return "", err
	}
	right, err := t.expr(n.Right)
	if err != nil {
		return "", err
	}
	return "(" + left + " " + n.Op + " " + right + ")", nil
}

func (t *translator) incDec(n *ast.BinOp) (string, error) {
	op := "++"
	if n.Op == "//" {
		op = "--"
	}

	if name, ok := n.Right.(*ast.Name); ok && name.Name == wildcard {
		left, err := t.expr(n.Left)
		if err != nil {
			return "", err
		}
		return left + op, nil
	}
	if name, ok := n.Left.(*ast.Name); ok && name.Name == wildcard {
		right, err := t.expr(n.Right)
		if err != nil {
			return "", err
		}
		return op + right, nil
	}

	return "", unrecognised(n.Span(),
		"'%s' requires a wildcard operand: 'e %s %s' or '%s %s e'", n.Op, n.Op, wildcard, wildcard, n.Op)
}

// compare lowers a single comparison without outer parentheses. Chained
// comparisons have no C equivalent and are rejected.
func (t *translator) compare(n *ast.Compare) (string, error) {
	if len(n.Ops) != 1 {
		return "", unrecognised(n.Span(), "chained comparisons are not supported")
	}
	left, err := t.expr(n.Left)
	if err != nil {
		return "", err
	}
	right, err := t.expr(n.Comparators[0])
	if err != nil {
		return "", err
	}
	return left + " " + n.Ops[0] + " " + right, nil
}

func (t *translator) boolOp(n *ast.BoolOp) (string, error) {
	op := " && "
	if n.Op == "or" {
		op = " || "
	}
	parts := make([]string, 0, len(n.Values))
	for _, v := range n.Values {
		s, err := t.expr(v)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+s+")")
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

// call lowers a call expression, dispatching the special forms first: casts,
// sizeof, static_assert, wildcard compound literals, and constructor calls.
func (t *translator) call(n *ast.Call) (string, error) {
	// Cast, list spelling: [T](e).
	if list, ok := n.Func.(*ast.List); ok {
		if len(list.Elts) != 1 {
			return "", unrecognised(n.Func.Span(), "a cast names exactly one type")
		}
		return t.cast(n, list.Elts[0])
	}
	// Cast, keyword spelling: cast[T](e).
	if sub, ok := n.Func.(*ast.Subscript); ok {
		if head, ok := sub.Value.(*ast.Name); ok && head.Name == "cast" {
			return t.cast(n, sub.Index)
		}
	}

	if fn, ok := n.Func.(*ast.Name); ok {
		switch fn.Name {
		case "sizeof":
			return t.sizeofCall(n)
		case "static_assert":
			args, err := t.exprList(n.Args)
			if err != nil {
				return "", err
			}
			return "_Static_assert(" + args + ")", nil
		case wildcard:
			return t.wildcardLiteral(n)
		}

		if tag, _, ok := t.tags.lookup(fn.Name); ok {
			init, err := t.braceInit(n.Args, n.Keywords)
			if err != nil {
				return "", err
			}
			return "(" + t.tags.displayName(tag) + ")" + init, nil
		}
	}

	if len(n.Keywords) > 0 {
		return "", unrecognised(n.Span(), "keyword arguments are only valid in initialisers")
	}
	fn, err := t.expr(n.Func)
	if err != nil {
		return "", err
	}
	args, err := t.exprList(n.Args)
	if err != nil {
		return "", err
	}
	return fn + "(" + args + ")", nil
}

func (t *translator) cast(n *ast.Call, typ ast.Expr) (string, error) {
	if len(n.Args) != 1 || len(n.Keywords) != 0 {
		return "", unrecognised(n.Span(), "a cast takes exactly one operand")
	}
	typeStr, err := t.typeDecl(typ, "")
	if err != nil {
		return "", err
	}
	operand, err := t.expr(n.Args[0])
	if err != nil {
		return "", err
	}
	return "((" + typeStr + ")(" + operand + "))", nil
}

func (t *translator) sizeofCall(n *ast.Call) (string, error) {
	if len(n.Args) != 1 || len(n.Keywords) != 0 {
		return "", unrecognised(n.Span(), "sizeof takes exactly one operand")
	}
	arg := n.Args[0]

	var inner string
	var err error
	if t.isTypeShaped(arg) {
		inner, err = t.typeDecl(arg, "")
	} else {
		inner, err = t.expr(arg)
	}
	if err != nil {
		return "", err
	}
	return "sizeof(" + inner + ")", nil
}

// wildcardLiteral lowers W(...) into a compound literal typed from the
// innermost declaration context.
func (t *translator) wildcardLiteral(n *ast.Call) (string, error) {
	typeStr, ok := t.contextType()
	if !ok {
		return "", errAt(diag.CodeMissingContext, n.Span(),
			"'%s(...)' needs a surrounding declaration to take its type from", wildcard)
	}
	init, err := t.braceInit(n.Args, n.Keywords)
	if err != nil {
		return "", err
	}
	return "(" + typeStr + ")" + init, nil
}

// braceInit renders a brace initialiser from positional and designated
// parts: {1, 2} or {.x = 1, .y = 2}.
func (t *translator) braceInit(args []ast.Expr, keywords []*ast.Keyword) (string, error) {
	items := make([]string, 0, len(args)+len(keywords))
	for _, a := range args {
		s, err := t.expr(a)
		if err != nil {
			return "", err
		}
		items = append(items, s)
	}
	for _, kw := range keywords {
		s, err := t.expr(kw.Value)
		if err != nil {
			return "", err
		}
		items = append(items, "."+t.escapeIdent(kw.Name)+" = "+s)
	}
	return "{" + strings.Join(items, ", ") + "}", nil
}

// attribute lowers member access, recognising the wildcard forms before
// falling back to plain dot access:
//
//	W.x    ->  &x
//	e.W    ->  (*e)
//	p.W.x  ->  p->x
func (t *translator) attribute(n *ast.Attribute) (string, error) {
	if name, ok := n.Value.(*ast.Name); ok && name.Name == wildcard {
		if n.Attr == wildcard {
			return "", reservedMisuse(n.Span(), "'%s.%s' has no meaning", wildcard, wildcard)
		}
		return "&" + t.escapeIdent(n.Attr), nil
	}

	if n.Attr == wildcard {
		value, err := t.expr(n.Value)
		if err != nil {
			return "", err
		}
		return "(*" + value + ")", nil
	}

	if inner, ok := n.Value.(*ast.Attribute); ok && inner.Attr == wildcard {
		ptr, err := t.expr(inner.Value)
		if err != nil {
			return "", err
		}
		return ptr + "->" + t.escapeIdent(n.Attr), nil
	}

	value, err := t.expr(n.Value)
	if err != nil {
		return "", err
	}
	return value + "." + t.escapeIdent(n.Attr), nil
}

func (t *translator) subscript(n *ast.Subscript) (string, error) {
	if head, ok := n.Value.(*ast.Name); ok && head.Name == "alignof" {
		typeStr, err := t.typeDecl(n.Index, "")
		if err != nil {
			return "", err
		}
		return "_Alignof(" + typeStr + ")", nil
	}

	value, err := t.expr(n.Value)
	if err != nil {
		return "", err
	}
	index, err := t.expr(n.Index)
	if err != nil {
		return "", err
	}
	return value + "[" + index + "]", nil
}
