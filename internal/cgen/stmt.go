package cgen

import (
	"strings"

	"github.com/arafura-lang/arafura/internal/ast"
)

// stmt lowers one statement, appending output lines at the current indent.
func (t *translator) stmt(node ast.Stmt) error {
	switch n := node.(type) {
	case *ast.ExprStmt:
		s, err := t.expr(n.X)
		if err != nil {
			return err
		}
		t.emit(t.pad() + s + ";")
		return nil

	case *ast.Assign:
		return t.assign(n)

	case *ast.AugAssign:
		target, err := t.expr(n.Target)
		if err != nil {
			return err
		}
		value, err := t.expr(n.Value)
		if err != nil {
			return err
		}
		t.emit(t.pad() + target + " " + n.Op + "= " + value + ";")
		return nil

	case *ast.AnnAssign:
		return t.annAssign(n)

	case *ast.Return:
		if n.Value == nil {
			t.emit(t.pad() + "return;")
			return nil
		}
		value, err := t.expr(n.Value)
		if err != nil {
			return err
		}
		t.emit(t.pad() + "return " + value + ";")
		return nil

	case *ast.Break:
		t.emit(t.pad() + "break;")
		return nil

	case *ast.Continue:
		t.emit(t.pad() + "continue;")
		return nil

	case *ast.Pass:
		return nil

	case *ast.Raise:
		t.emit(t.pad() + "goto " + t.escapeIdent(n.Target.Name) + ";")
		return nil

	case *ast.Delete:
		for _, name := range n.Names {
			t.emit(t.pad() + "#undef " + t.escapeIdent(name.Name))
		}
		return nil

	case *ast.Import:
		t.emit("#include \"" + n.Module.Name + ".h\"")
		return nil

	case *ast.ImportFrom:
		t.emit("#include <" + n.Module.Name + ".h>")
		return nil

	case *ast.TypeAlias:
		return t.typeAlias(n)

	case *ast.If:
		return t.ifStmt(n)

	case *ast.While:
		return t.whileStmt(n)

	case *ast.For:
		return t.forStmt(n)

	case *ast.Match:
		return t.matchStmt(n)

	case *ast.FunctionDef:
		return t.functionDef(n)

	case *ast.ClassDef:
		return t.classDef(n, false)
	}

	return unrecognised(node.Span(), "unsupported statement")
}

func (t *translator) stmts(body []ast.Stmt) error {
	for _, s := range body {
		if err := t.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// assign lowers an assignment; a chained assignment becomes one statement
// per target.
func (t *translator) assign(n *ast.Assign) error {
	value, err := t.expr(n.Value)
	if err != nil {
		return err
	}
	for _, target := range n.Targets {
		s, err := t.expr(target)
		if err != nil {
			return err
		}
		t.emit(t.pad() + s + " = " + value + ";")
	}
	return nil
}

// ifStmt dispatches between the preprocessor form, whose test is a
// single-element list display, and the runtime if chain.
func (t *translator) ifStmt(n *ast.If) error {
	if cond, ok := ppCondition(n); ok {
		return t.ppIf(n, cond, true)
	}
	return t.ifChain(n)
}

// ppCondition extracts the bracketed condition of a preprocessor
// conditional, if the statement is one.
func ppCondition(n *ast.If) (ast.Expr, bool) {
	list, ok := n.Test.(*ast.List)
	if !ok || len(list.Elts) != 1 {
		return nil, false
	}
	return list.Elts[0], true
}

// ppIf lowers a preprocessor conditional chain. Directives sit at the
// current indent and bodies are emitted unbraced at the same level.
func (t *translator) ppIf(n *ast.If, cond ast.Expr, first bool) error {
	directive, err := t.ppDirective(cond, first)
	if err != nil {
		return err
	}
	t.emit(t.pad() + directive)
	if err := t.stmts(n.Body); err != nil {
		return err
	}

	if len(n.Orelse) == 0 {
		t.emit(t.pad() + "#endif")
		return nil
	}
	if len(n.Orelse) == 1 {
		if next, ok := n.Orelse[0].(*ast.If); ok {
			cond, ok := ppCondition(next)
			if !ok {
				return unrecognised(next.Test.Span(),
					"a preprocessor chain needs every condition in brackets")
			}
			return t.ppIf(next, cond, false)
		}
	}

	t.emit(t.pad() + "#else")
	if err := t.stmts(n.Orelse); err != nil {
		return err
	}
	t.emit(t.pad() + "#endif")
	return nil
}

func (t *translator) ppDirective(cond ast.Expr, first bool) (string, error) {
	if name, ok := cond.(*ast.Name); ok {
		if first {
			return "#ifdef " + t.escapeIdent(name.Name), nil
		}
		return "#elif defined(" + t.escapeIdent(name.Name) + ")", nil
	}
	if not, ok := cond.(*ast.UnaryOp); ok && not.Op == "not" {
		if name, ok := not.Operand.(*ast.Name); ok {
			if first {
				return "#ifndef " + t.escapeIdent(name.Name), nil
			}
			return "#elif !defined(" + t.escapeIdent(name.Name) + ")", nil
		}
	}

	s, err := t.expr(cond)
	if err != nil {
		return "", err
	}
	if first {
		return "#if " + s, nil
	}
	return "#elif " + s, nil
}

func (t *translator) ifChain(n *ast.If) error {
	cond, err := t.expr(n.Test)
	if err != nil {
		return err
	}
	t.emit(t.pad() + "if (" + cond + ") {")
	t.indent++
	if err := t.stmts(n.Body); err != nil {
		return err
	}
	t.indent--
	return t.emitOrelse(n.Orelse)
}

func (t *translator) emitOrelse(orelse []ast.Stmt) error {
	if len(orelse) == 0 {
		t.emit(t.pad() + "}")
		return nil
	}

	if len(orelse) == 1 {
		if next, ok := orelse[0].(*ast.If); ok {
			if _, pp := ppCondition(next); !pp {
				cond, err := t.expr(next.Test)
				if err != nil {
					return err
				}
				t.emit(t.pad() + "} else if (" + cond + ") {")
				t.indent++
				if err := t.stmts(next.Body); err != nil {
					return err
				}
				t.indent--
				return t.emitOrelse(next.Orelse)
			}
		}
	}

	t.emit(t.pad() + "} else {")
	t.indent++
	if err := t.stmts(orelse); err != nil {
		return err
	}
	t.indent--
	t.emit(t.pad() + "}")
	return nil
}

// whileStmt lowers the three loop spellings that share the while keyword:
// an ordinary condition becomes a while loop; an empty-tuple condition is a
// bottom-tested loop, becoming do-while when the body ends in
// "if COND: continue" and an infinite for(;;) otherwise.
func (t *translator) whileStmt(n *ast.While) error {
	if tup, ok := n.Test.(*ast.Tuple); ok && len(tup.Elts) == 0 {
		if cond, body, ok := doWhileParts(n.Body); ok {
			condStr, err := t.expr(cond)
			if err != nil {
				return err
			}
			t.emit(t.pad() + "do {")
			t.indent++
			if err := t.stmts(body); err != nil {
				return err
			}
			t.indent--
			t.emit(t.pad() + "} while (" + condStr + ");")
			return nil
		}

		t.emit(t.pad() + "for (;;) {")
		t.indent++
		if err := t.stmts(n.Body); err != nil {
			return err
		}
		t.indent--
		t.emit(t.pad() + "}")
		return nil
	}

	cond, err := t.expr(n.Test)
	if err != nil {
		return err
	}
	t.emit(t.pad() + "while (" + cond + ") {")
	t.indent++
	if err := t.stmts(n.Body); err != nil {
		return err
	}
	t.indent--
	t.emit(t.pad() + "}")
	return nil
}

// doWhileParts matches a body ending in "if COND: continue" and splits off
// the condition.
func doWhileParts(body []ast.Stmt) (ast.Expr, []ast.Stmt, bool) {
	if len(body) == 0 {
		return nil, nil, false
	}
	last, ok := body[len(body)-1].(*ast.If)
	if !ok || len(last.Orelse) != 0 || len(last.Body) != 1 {
		return nil, nil, false
	}
	if _, ok := last.Body[0].(*ast.Continue); !ok {
		return nil, nil, false
	}
	return last.Test, body[:len(body)-1], true
}

// forStmt lowers "for VARS in TYPE(INIT)(COND)(STEP)" into a C for loop.
// The iterable must be the triple-call shape; initialisers are walrus
// expressions, and every loop variable shares the single declared type.
func (t *translator) forStmt(n *ast.For) error {
	stepCall, ok := n.Iter.(*ast.Call)
	if !ok {
		return unrecognised(n.Iter.Span(), "a for loop iterates TYPE(INIT)(COND)(STEP)")
	}
	condCall, ok := stepCall.Func.(*ast.Call)
	if !ok {
		return unrecognised(n.Iter.Span(), "a for loop iterates TYPE(INIT)(COND)(STEP)")
	}
	initCall, ok := condCall.Func.(*ast.Call)
	if !ok {
		return unrecognised(n.Iter.Span(), "a for loop iterates TYPE(INIT)(COND)(STEP)")
	}

	varNames, typeExprs, err := t.forVariables(n, initCall.Func)
	if err != nil {
		return err
	}

	typeStr, err := t.typeDecl(typeExprs[0], "")
	if err != nil {
		return err
	}
	for _, typ := range typeExprs[1:] {
		other, err := t.typeDecl(typ, "")
		if err != nil {
			return err
		}
		if other != typeStr {
			return annotationMismatch(typ.Span(),
				"loop variables must share one type; got '%s' and '%s'", typeStr, other)
		}
	}

	initStr, err := t.forInit(initCall, varNames, typeStr)
	if err != nil {
		return err
	}
	condStr := ""
	if len(condCall.Args) == 1 {
		if condStr, err = t.expr(condCall.Args[0]); err != nil {
			return err
		}
	}
	stepStr := ""
	if len(stepCall.Args) > 0 {
		steps := make([]string, 0, len(stepCall.Args))
		for _, arg := range stepCall.Args {
			s, err := t.expr(arg)
			if err != nil {
				return err
			}
			steps = append(steps, s)
		}
		stepStr = strings.Join(steps, ", ")
	}

	t.emit(t.pad() + "for (" + initStr + "; " + condStr + "; " + stepStr + ") {")
	t.indent++
	if err := t.stmts(n.Body); err != nil {
		return err
	}
	t.indent--
	t.emit(t.pad() + "}")
	return nil
}

func (t *translator) forVariables(n *ast.For, types ast.Expr) ([]string, []ast.Expr, error) {
	if tup, ok := n.Target.(*ast.Tuple); ok {
		names := make([]string, 0, len(tup.Elts))
		for _, elt := range tup.Elts {
			name, ok := elt.(*ast.Name)
			if !ok {
				return nil, nil, unrecognised(elt.Span(), "loop variables must be names")
			}
			names = append(names, t.escapeIdent(name.Name))
		}
		if ttup, ok := types.(*ast.Tuple); ok {
			if len(ttup.Elts) != len(names) {
				return nil, nil, annotationMismatch(types.Span(),
					"loop has %d variables but %d types", len(names), len(ttup.Elts))
			}
			return names, ttup.Elts, nil
		}
		typeExprs := make([]ast.Expr, len(names))
		for i := range typeExprs {
			typeExprs[i] = types
		}
		return names, typeExprs, nil
	}

	name, ok := n.Target.(*ast.Name)
	if !ok {
		return nil, nil, unrecognised(n.Target.Span(), "loop variables must be names")
	}
	return []string{t.escapeIdent(name.Name)}, []ast.Expr{types}, nil
}

func (t *translator) forInit(initCall *ast.Call, varNames []string, typeStr string) (string, error) {
	if len(initCall.Args) == 0 {
		return "", nil
	}

	items := initCall.Args
	if tup, ok := initCall.Args[0].(*ast.Tuple); ok && len(initCall.Args) == 1 {
		items = tup.Elts
	}
	if len(items) != len(varNames) {
		return "", unrecognised(initCall.Span(),
			"loop has %d variables but %d initialisers", len(varNames), len(items))
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		walrus, ok := item.(*ast.NamedExpr)
		if !ok {
			return "", unrecognised(item.Span(), "loop initialisers use ':='")
		}
		val, err := t.expr(walrus.Value)
		if err != nil {
			return "", err
		}
		if i == 0 {
			parts = append(parts, typeStr+" "+varNames[i]+" = "+val)
		} else {
			parts = append(parts, varNames[i]+" = "+val)
		}
	}
	return strings.Join(parts, ", "), nil
}

// matchStmt lowers match to switch. Case labels sit at the switch indent
// and nothing inserts break, so fallthrough works as in C; the wildcard arm
// becomes default.
func (t *translator) matchStmt(n *ast.Match) error {
	subject, err := t.expr(n.Subject)
	if err != nil {
		return err
	}
	t.emit(t.pad() + "switch (" + subject + ") {")

	for _, arm := range n.Cases {
		label, err := t.caseLabel(arm.Pattern)
		if err != nil {
			return err
		}
		t.emit(t.pad() + label)
		t.indent++
		if err := t.stmts(arm.Body); err != nil {
			return err
		}
		t.indent--
	}

	t.emit(t.pad() + "}")
	return nil
}

func (t *translator) caseLabel(pattern ast.Expr) (string, error) {
	switch p := pattern.(type) {
	case *ast.Name:
		if p.Name == wildcard {
			return "default:", nil
		}
		return "case " + t.escapeIdent(p.Name) + ":", nil
	case *ast.Constant:
		switch p.Kind {
		case ast.ConstInt, ast.ConstString:
			return "case " + t.constant(p) + ":", nil
		}
	case *ast.UnaryOp:
		if p.Op == "-" {
			if c, ok := p.Operand.(*ast.Constant); ok && c.Kind == ast.ConstInt {
				return "case -" + c.Raw + ":", nil
			}
		}
	}
	return "", unrecognised(pattern.Span(), "a case pattern must be a constant or a name")
}
