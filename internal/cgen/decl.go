package cgen

import (
	"strings"

	"github.com/arafura-lang/arafura/internal/ast"
	"github.com/arafura-lang/arafura/internal/diag"
)

// annAssign lowers an annotated assignment, which covers labels, object-like
// macros, constructor-annotated declarations, and ordinary variable
// declarations.
func (t *translator) annAssign(n *ast.AnnAssign) error {
	name := t.escapeIdent(n.Target.Name)

	if ann, ok := n.Annotation.(*ast.Name); ok {
		switch ann.Name {
		case "label":
			if n.Value != nil {
				return reservedMisuse(n.Value.Span(), "a label declaration takes no value")
			}
			// Labels sit at column 0 regardless of nesting.
			t.emit(name + ":")
			return nil

		case "macro":
			if n.Value == nil {
				return reservedMisuse(ann.Span(), "a macro declaration needs a value")
			}
			value, err := t.expr(n.Value)
			if err != nil {
				return err
			}
			t.emit(t.pad() + "#define " + name + " " + value)
			return nil
		}
	}

	if call, ok := n.Annotation.(*ast.Call); ok {
		if display, ok := t.constructorDisplay(call); ok {
			if n.Value != nil {
				return unrecognised(n.Value.Span(),
					"a constructor-annotated declaration carries its initialiser in the annotation")
			}
			t.pushContext(display)
			init, err := t.braceInit(call.Args, call.Keywords)
			t.popContext()
			if err != nil {
				return err
			}
			t.emit(t.pad() + display + " " + name + " = " + init + ";")
			return nil
		}
	}

	if err := fieldOnlyType(n.Annotation); err != nil {
		return err
	}

	typeStr, err := t.typeDecl(n.Annotation, name)
	if err != nil {
		return err
	}
	if n.Value == nil {
		t.emit(t.pad() + typeStr + ";")
		return nil
	}

	ctx, err := t.typeDecl(n.Annotation, "")
	if err != nil {
		return err
	}
	t.pushContext(ctx)
	init, err := t.initExpr(n.Annotation, n.Value)
	t.popContext()
	if err != nil {
		return err
	}
	t.emit(t.pad() + typeStr + " = " + init + ";")
	return nil
}

// constructorDisplay resolves the declared type of a constructor annotation
// such as Point(x=5). Known tags use their display spelling; an unknown name
// with designated fields is taken as an external struct.
func (t *translator) constructorDisplay(call *ast.Call) (string, bool) {
	fn, ok := call.Func.(*ast.Name)
	if !ok {
		return "", false
	}
	if tag, _, ok := t.tags.lookup(fn.Name); ok {
		return t.tags.displayName(tag), true
	}
	if len(call.Keywords) > 0 {
		return "struct " + fn.Name, true
	}
	return "", false
}

// initExpr lowers a declaration initialiser. Constructor calls become bare
// brace initialisers here; list displays recurse with the element type
// pushed as context for nested wildcard literals.
func (t *translator) initExpr(annotation ast.Expr, value ast.Expr) (string, error) {
	switch v := value.(type) {
	case *ast.List:
		elemAnn := elementAnnotation(annotation)
		elemCtx, err := t.typeDecl(elemAnn, "")
		if err != nil {
			return "", err
		}
		t.pushContext(elemCtx)
		defer t.popContext()

		parts := make([]string, 0, len(v.Elts))
		for _, elt := range v.Elts {
			s, err := t.initExpr(elemAnn, elt)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil

	case *ast.Call:
		if fn, ok := v.Func.(*ast.Name); ok {
			if _, _, known := t.tags.lookup(fn.Name); known {
				return t.braceInit(v.Args, v.Keywords)
			}
		}
	}

	return t.expr(value)
}

// elementAnnotation strips one array dimension off a declaration type, for
// typing the elements of a list initialiser.
func elementAnnotation(annotation ast.Expr) ast.Expr {
	sub, ok := annotation.(*ast.Subscript)
	if !ok {
		return annotation
	}
	if head, ok := sub.Value.(*ast.Name); ok && head.Name == "list" {
		if tup, ok := sub.Index.(*ast.Tuple); ok && len(tup.Elts) == 2 {
			return tup.Elts[0]
		}
		return sub.Index
	}
	if isTypeHead(sub) {
		return annotation
	}
	return dropInnerDim(sub)
}

// dropInnerDim removes the dimension nearest the base from a stacked array
// subscript. The element of int[2][3] is the row type int[3], and the [2]
// extent sits at the bottom of the subscript chain.
func dropInnerDim(sub *ast.Subscript) ast.Expr {
	if inner, ok := sub.Value.(*ast.Subscript); ok && !isTypeHead(inner) {
		return ast.NewSubscript(dropInnerDim(inner), sub.Index, sub.Span())
	}
	return sub.Value
}

// fieldOnlyType rejects type forms that only exist as struct/union fields
// when they appear in an ordinary declaration position.
func fieldOnlyType(node ast.Expr) error {
	if isBitfieldType(node) {
		return annotationMismatch(node.Span(),
			"a bitfield is only valid as a struct or union field")
	}
	if isFlexibleArrayType(node) {
		return annotationMismatch(node.Span(),
			"a flexible array member is only valid as the last struct field")
	}
	return nil
}

func (t *translator) typeAlias(n *ast.TypeAlias) error {
	if err := fieldOnlyType(n.Value); err != nil {
		return err
	}
	typeStr, err := t.typeDecl(n.Value, t.escapeIdent(n.Name.Name))
	if err != nil {
		return err
	}
	t.emit(t.pad() + "typedef " + typeStr + ";")
	return nil
}

// classDecorators holds the validated decorator set of a class definition.
type classDecorators struct {
	typedefName string
	varNames    []string
}

func (t *translator) decoratorsOf(n *ast.ClassDef) (classDecorators, error) {
	var decs classDecorators
	for _, dec := range n.Decorators {
		call, ok := dec.(*ast.Call)
		if !ok {
			return decs, errAt(diag.CodeUnknownDecorator, dec.Span(),
				"a class decorator is Typedef(NAME) or Var(NAMES...)")
		}
		fn, ok := call.Func.(*ast.Name)
		if !ok {
			return decs, errAt(diag.CodeUnknownDecorator, call.Func.Span(),
				"a class decorator is Typedef(NAME) or Var(NAMES...)")
		}

		switch fn.Name {
		case "Typedef":
			if len(call.Args) != 1 || len(call.Keywords) != 0 {
				return decs, errAt(diag.CodeUnknownDecorator, call.Span(),
					"Typedef takes exactly one name")
			}
			name, ok := call.Args[0].(*ast.Name)
			if !ok {
				return decs, errAt(diag.CodeUnknownDecorator, call.Args[0].Span(),
					"Typedef takes a name")
			}
			decs.typedefName = t.escapeIdent(name.Name)

		case "Var":
			if len(call.Args) == 0 || len(call.Keywords) != 0 {
				return decs, errAt(diag.CodeUnknownDecorator, call.Span(),
					"Var takes at least one name")
			}
			for _, arg := range call.Args {
				name, ok := arg.(*ast.Name)
				if !ok {
					return decs, errAt(diag.CodeUnknownDecorator, arg.Span(),
						"Var takes names")
				}
				decs.varNames = append(decs.varNames, t.escapeIdent(name.Name))
			}

		default:
			return decs, errAt(diag.CodeUnknownDecorator, fn.Span(),
				"unknown decorator '%s'", fn.Name)
		}
	}
	return decs, nil
}

// classDef lowers a class into a struct, union, or enum definition. nested
// marks definitions embedded in another aggregate, where an anonymous class
// becomes an anonymous member.
func (t *translator) classDef(n *ast.ClassDef, nested bool) error {
	decs, err := t.decoratorsOf(n)
	if err != nil {
		return err
	}

	kind := classKind(n)
	for _, base := range n.Bases {
		if base.Name != "Union" && base.Name != "Enum" {
			return unrecognised(base.Span(), "a class base is Union or Enum")
		}
	}

	anonymous := n.Name.Name == wildcard
	if anonymous {
		if decs.typedefName != "" {
			return annotationMismatch(n.Span(), "an anonymous aggregate cannot be typedef'd")
		}
		if !nested && len(decs.varNames) == 0 {
			return annotationMismatch(n.Span(),
				"a top-level anonymous aggregate needs Var(...) to declare something")
		}
	}

	header := kind.Keyword()
	if !anonymous {
		header += " " + n.Name.Name
	}
	if decs.typedefName != "" {
		header = "typedef " + header
	}
	t.emit(t.pad() + header + " {")

	t.indent++
	if kind == TagEnum {
		err = t.enumBody(n.Body)
	} else {
		err = t.aggregateBody(n.Body)
	}
	t.indent--
	if err != nil {
		return err
	}

	switch {
	case decs.typedefName != "":
		t.emit(t.pad() + "} " + decs.typedefName + ";")
		if len(decs.varNames) > 0 {
			t.emit(t.pad() + decs.typedefName + " " + strings.Join(decs.varNames, ", ") + ";")
		}
	case len(decs.varNames) > 0:
		t.emit(t.pad() + "} " + strings.Join(decs.varNames, ", ") + ";")
	default:
		t.emit(t.pad() + "};")
	}
	return nil
}

// enumBody lowers enumerator lines: NAME = VALUE assignments or bare names,
// each with a trailing comma.
func (t *translator) enumBody(body []ast.Stmt) error {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.Assign:
			if len(s.Targets) != 1 {
				return unrecognised(s.Span(), "an enumerator has a single name")
			}
			name, ok := s.Targets[0].(*ast.Name)
			if !ok {
				return unrecognised(s.Targets[0].Span(), "an enumerator has a single name")
			}
			value, err := t.expr(s.Value)
			if err != nil {
				return err
			}
			t.emit(t.pad() + t.escapeIdent(name.Name) + " = " + value + ",")

		case *ast.ExprStmt:
			name, ok := s.X.(*ast.Name)
			if !ok {
				return unrecognised(s.X.Span(), "an enumerator has a single name")
			}
			t.emit(t.pad() + t.escapeIdent(name.Name) + ",")

		case *ast.Pass:

		default:
			return unrecognised(stmt.Span(), "an enum body holds only enumerators")
		}
	}
	return nil
}

// aggregateBody lowers struct and union members: annotated fields and nested
// class definitions. A flexible array member must come last.
func (t *translator) aggregateBody(body []ast.Stmt) error {
	for i, stmt := range body {
		switch s := stmt.(type) {
		case *ast.AnnAssign:
			if s.Value != nil {
				return unrecognised(s.Value.Span(), "a field declaration takes no value")
			}
			if isFlexibleArrayType(s.Annotation) && i != len(body)-1 {
				return annotationMismatch(s.Annotation.Span(),
					"a flexible array member must be the last field")
			}
			field, err := t.typeDecl(s.Annotation, t.escapeIdent(s.Target.Name))
			if err != nil {
				return err
			}
			t.emit(t.pad() + field + ";")

		case *ast.ClassDef:
			if err := t.classDef(s, true); err != nil {
				return err
			}

		case *ast.Pass:

		default:
			return unrecognised(stmt.Span(), "a struct or union body holds fields and nested classes")
		}
	}
	return nil
}

// functionDef lowers a def into either a C function (fully annotated) or a
// function-like macro (no annotations at all).
func (t *translator) functionDef(n *ast.FunctionDef) error {
	if len(n.Decorators) > 0 {
		return errAt(diag.CodeUnknownDecorator, n.Decorators[0].Span(),
			"decorators apply to classes only")
	}

	annotated := 0
	for _, p := range n.Params {
		if p.Annotation != nil {
			annotated++
		}
	}

	switch {
	case n.Returns != nil && annotated == len(n.Params):
		return t.emitFunction(n)
	case n.Returns == nil && annotated == 0:
		return t.emitMacro(n)
	}
	return annotationMismatch(n.Name.Span(),
		"'%s' must be fully annotated (a function) or unannotated (a macro)", n.Name.Name)
}

func (t *translator) emitFunction(n *ast.FunctionDef) error {
	if err := fieldOnlyType(n.Returns); err != nil {
		return err
	}
	retType, err := t.typeDecl(n.Returns, "")
	if err != nil {
		return err
	}

	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		if err := fieldOnlyType(p.Annotation); err != nil {
			return err
		}
		param, err := t.typeDecl(p.Annotation, t.escapeIdent(p.Name.Name))
		if err != nil {
			return err
		}
		params = append(params, param)
	}
	paramStr := strings.Join(params, ", ")
	switch {
	case n.Vararg != nil && paramStr != "":
		paramStr += ", ..."
	case n.Vararg != nil:
		paramStr = "..."
	case paramStr == "":
		paramStr = "void"
	}

	t.emit(t.pad() + retType + " " + t.escapeIdent(n.Name.Name) + "(" + paramStr + ") {")
	t.indent++
	if err := t.stmts(n.Body); err != nil {
		return err
	}
	t.indent--
	t.emit(t.pad() + "}")
	return nil
}

// emitMacro lowers an unannotated def into a function-like macro. A single
// expression body becomes a one-line define; anything longer wraps in the
// do/while(0) idiom with continuation backslashes.
func (t *translator) emitMacro(n *ast.FunctionDef) error {
	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, t.escapeIdent(p.Name.Name))
	}
	paramStr := strings.Join(params, ", ")
	if n.Vararg != nil {
		if paramStr != "" {
			paramStr += ", ..."
		} else {
			paramStr = "..."
		}
	}

	name := t.escapeIdent(n.Name.Name)
	t.inMacroBody = true
	defer func() { t.inMacroBody = false }()

	if len(n.Body) == 1 {
		if exprStmt, ok := n.Body[0].(*ast.ExprStmt); ok {
			body, err := t.expr(exprStmt.X)
			if err != nil {
				return err
			}
			t.emit(t.pad() + "#define " + name + "(" + paramStr + ") (" + body + ")")
			return nil
		}
	}

	t.emit(t.pad() + "#define " + name + "(" + paramStr + ") do { \\")

	saved := t.lines
	t.lines = nil
	t.indent++
	err := t.stmts(n.Body)
	t.indent--
	bodyLines := t.lines
	t.lines = saved
	if err != nil {
		return err
	}
	for _, line := range bodyLines {
		t.emit(line + " \\")
	}

	t.emit(t.pad() + "} while(0)")
	return nil
}
