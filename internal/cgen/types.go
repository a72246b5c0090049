package cgen

import (
	"strings"

	"github.com/arafura-lang/arafura/internal/ast"
)

var primitiveTypes = map[string]bool{
	"int":    true,
	"char":   true,
	"float":  true,
	"double": true,
	"long":   true,
	"short":  true,
	"void":   true,
}

// typeQualifiers maps surface qualifier heads to their C spelling. The plain
// ones pass through; the C11 ones map to their underscore keywords.
var typeQualifiers = map[string]string{
	"const":        "const",
	"volatile":     "volatile",
	"unsigned":     "unsigned",
	"signed":       "signed",
	"static":       "static",
	"extern":       "extern",
	"long":         "long",
	"atomic":       "_Atomic",
	"thread_local": "_Thread_local",
}

// typeHeads lists every subscript head that changes the meaning of a
// subscript in type position; any other subscript is an array dimension.
var typeHeads = map[string]bool{
	"type":         true,
	"enum":         true,
	"union":        true,
	"const":        true,
	"volatile":     true,
	"unsigned":     true,
	"signed":       true,
	"static":       true,
	"extern":       true,
	"long":         true,
	"atomic":       true,
	"thread_local": true,
	"alignas":      true,
	"list":         true,
	"bit":          true,
}

// joinDecl merges a base type with a declarator string: "int" + "x[10]" is
// "int x[10]", and an empty declarator leaves the bare base.
func joinDecl(base, decl string) string {
	if decl == "" {
		return base
	}
	return base + " " + decl
}

// typeDecl lowers a type-position node into full C declarator text. decl is
// the declarator accumulated so far (the variable name, or empty for
// abstract declarators as in casts and parameter types); the recursion
// threads it through pointer, array, and function shapes so it ends up in
// the right position.
func (t *translator) typeDecl(node ast.Expr, decl string) (string, error) {
	switch n := node.(type) {
	case *ast.Name:
		return t.namedType(n, decl)

	case *ast.UnaryOp:
		switch n.Op {
		case "-":
			return t.pointerType(n, decl)
		case "+":
			return t.pointerToArrayType(n, decl)
		}
		return "", unrecognised(n.Span(), "'%s' is not a type operator", n.Op)

	case *ast.Subscript:
		return t.subscriptType(n, decl)

	case *ast.Call:
		if params, ok := n.Func.(*ast.Tuple); ok {
			// (P1, ...)(R): plain function type.
			if len(n.Args) != 1 {
				return "", unrecognised(n.Span(), "function type needs exactly one result type")
			}
			return t.funcType(n.Args[0], params.Elts, decl)
		}
		// R(P1, ...): pointer to function returning R.
		return t.funcType(n.Func, n.Args, "(*"+decl+")")
	}

	return "", unrecognised(node.Span(), "expected a type expression")
}

func (t *translator) namedType(n *ast.Name, decl string) (string, error) {
	name := n.Name
	switch name {
	case wildcard, "label", "macro", "list", "bit":
		return "", reservedMisuse(n.Span(), "'%s' cannot be used as a type name", name)
	}

	if primitiveTypes[name] || t.tags.isTypedefName(name) {
		return joinDecl(name, decl), nil
	}
	if _, ok := t.tags.tags[name]; ok {
		return "", unrecognised(n.Span(), "tag '%s' is not typedef'd; refer to it as type[%s]", name, name)
	}

	// External type name (size_t, FILE, ...), emitted as written.
	return joinDecl(name, decl), nil
}

// pointerType lowers UnaryNeg over a type. Named declarators collect stars
// immediately before the name ("int **pp"); abstract declarators trail the
// base with no space ("int**"). Pointers to function types parenthesise.
func (t *translator) pointerType(n *ast.UnaryOp, decl string) (string, error) {
	if call, ok := n.Operand.(*ast.Call); ok {
		if params, isTuple := call.Func.(*ast.Tuple); isTuple {
			if len(call.Args) != 1 {
				return "", unrecognised(call.Span(), "function type needs exactly one result type")
			}
			return t.funcType(call.Args[0], params.Elts, "(*"+decl+")")
		}
	}

	inner, err := t.typeDecl(n.Operand, "")
	if err != nil {
		return "", err
	}
	if decl == "" {
		return inner + "*", nil
	}

	base := strings.TrimRight(inner, "*")
	stars := len(inner) - len(base)
	if stars > 0 {
		return base + " " + strings.Repeat("*", stars+1) + decl, nil
	}
	return inner + " *" + decl, nil
}

// pointerToArrayType lowers UnaryPos over an array type into the
// parenthesised declarator "X (*name)[n]".
func (t *translator) pointerToArrayType(n *ast.UnaryOp, decl string) (string, error) {
	sub, ok := n.Operand.(*ast.Subscript)
	if !ok {
		return "", unrecognised(n.Span(), "pointer-to-array requires an array type operand")
	}

	dims := ""
	var current ast.Expr = sub
	for {
		s, ok := current.(*ast.Subscript)
		if !ok || isTypeHead(s) {
			break
		}
		d, err := t.expr(s.Index)
		if err != nil {
			return "", err
		}
		dims = "[" + d + "]" + dims
		current = s.Value
	}
	if dims == "" {
		return "", unrecognised(n.Span(), "pointer-to-array requires an array type operand")
	}

	elem, err := t.typeDecl(current, "")
	if err != nil {
		return "", err
	}
	return elem + " (*" + decl + ")" + dims, nil
}

func (t *translator) subscriptType(n *ast.Subscript, decl string) (string, error) {
	head, ok := n.Value.(*ast.Name)
	if !ok {
		return t.arrayType(n, decl)
	}

	switch head.Name {
	case "type", "enum", "union":
		inner, ok := n.Index.(*ast.Name)
		if !ok {
			return "", unrecognised(n.Index.Span(), "%s[...] takes a single tag name", head.Name)
		}
		kw := "struct"
		if head.Name != "type" {
			kw = head.Name
		}
		return joinDecl(kw+" "+inner.Name, decl), nil

	case "alignas":
		tup, ok := n.Index.(*ast.Tuple)
		if !ok || len(tup.Elts) != 2 {
			return "", unrecognised(n.Index.Span(), "alignas[...] takes an alignment and a type")
		}
		align, err := t.expr(tup.Elts[0])
		if err != nil {
			return "", err
		}
		inner, err := t.typeDecl(tup.Elts[1], decl)
		if err != nil {
			return "", err
		}
		return "_Alignas(" + align + ") " + inner, nil

	case "list":
		if tup, ok := n.Index.(*ast.Tuple); ok {
			if len(tup.Elts) != 2 {
				return "", unrecognised(n.Index.Span(), "list[...] takes an element type and an extent")
			}
			extent, err := t.expr(tup.Elts[1])
			if err != nil {
				return "", err
			}
			return t.typeDecl(tup.Elts[0], decl+"["+extent+"]")
		}
		// list[T]: flexible array member; position is validated by the
		// struct emitter.
		return t.typeDecl(n.Index, decl+"[]")

	case "bit":
		tup, ok := n.Index.(*ast.Tuple)
		if !ok || len(tup.Elts) != 2 {
			return "", unrecognised(n.Index.Span(), "bit[...] takes a base type and a width")
		}
		base, err := t.typeDecl(tup.Elts[0], decl)
		if err != nil {
			return "", err
		}
		width, err := t.expr(tup.Elts[1])
		if err != nil {
			return "", err
		}
		return base + " : " + width, nil
	}

	if kw, ok := typeQualifiers[head.Name]; ok {
		inner, err := t.typeDecl(n.Index, decl)
		if err != nil {
			return "", err
		}
		return kw + " " + inner, nil
	}

	return t.arrayType(n, decl)
}

// arrayType collapses stacked array subscripts into dimension suffixes:
// int[2][3] with declarator "m" becomes "int m[2][3]". Extents are emitted
// verbatim as C expressions.
func (t *translator) arrayType(node *ast.Subscript, decl string) (string, error) {
	dims := ""
	var current ast.Expr = node
	for {
		sub, ok := current.(*ast.Subscript)
		if !ok || isTypeHead(sub) {
			break
		}
		d, err := t.expr(sub.Index)
		if err != nil {
			return "", err
		}
		dims = "[" + d + "]" + dims
		current = sub.Value
	}
	return t.typeDecl(current, decl+dims)
}

// funcType lowers a function type: the result type becomes the base and the
// parameter list is appended to the declarator, so "cb" over (int)(void)
// yields "void cb(int)" and "(*cb)" yields "void (*cb)(int)". An empty
// parameter list spells "(void)".
func (t *translator) funcType(ret ast.Expr, params []ast.Expr, decl string) (string, error) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s, err := t.typeDecl(p, "")
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	paramList := strings.Join(parts, ", ")
	if paramList == "" {
		paramList = "void"
	}
	return t.typeDecl(ret, decl+"("+paramList+")")
}

func isTypeHead(sub *ast.Subscript) bool {
	head, ok := sub.Value.(*ast.Name)
	return ok && typeHeads[head.Name]
}

// isBitfieldType reports a bit[T, n] annotation; valid only as a
// struct/union field.
func isBitfieldType(node ast.Expr) bool {
	sub, ok := node.(*ast.Subscript)
	if !ok {
		return false
	}
	head, ok := sub.Value.(*ast.Name)
	return ok && head.Name == "bit"
}

// isFlexibleArrayType reports a single-argument list[T] annotation; valid
// only as the final struct field.
func isFlexibleArrayType(node ast.Expr) bool {
	sub, ok := node.(*ast.Subscript)
	if !ok {
		return false
	}
	head, ok := sub.Value.(*ast.Name)
	if !ok || head.Name != "list" {
		return false
	}
	_, isTuple := sub.Index.(*ast.Tuple)
	return !isTuple
}

// isTypeShaped discriminates sizeof arguments: true when the node can only
// be read as a type under the type rules.
func (t *translator) isTypeShaped(node ast.Expr) bool {
	switch n := node.(type) {
	case *ast.Name:
		if _, ok := t.tags.tags[n.Name]; ok {
			return true
		}
		return primitiveTypes[n.Name] || t.tags.isTypedefName(n.Name)
	case *ast.UnaryOp:
		if n.Op != "-" && n.Op != "+" {
			return false
		}
		if call, ok := n.Operand.(*ast.Call); ok {
			if _, isTuple := call.Func.(*ast.Tuple); isTuple {
				return true
			}
		}
		return t.isTypeShaped(n.Operand)
	case *ast.Subscript:
		if isTypeHead(n) {
			return true
		}
		return t.isTypeShaped(n.Value)
	case *ast.Call:
		if _, ok := n.Func.(*ast.Tuple); ok {
			return true
		}
		return t.isTypeShaped(n.Func)
	}
	return false
}
