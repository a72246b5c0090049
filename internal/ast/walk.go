package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	walkStmts := func(stmts []Stmt) {
		for _, s := range stmts {
			Walk(s, fn)
		}
	}
	walkExprs := func(exprs []Expr) {
		for _, e := range exprs {
			Walk(e, fn)
		}
	}

	switch n := node.(type) {
	case *Module:
		walkStmts(n.Stmts)

	case *Attribute:
		Walk(n.Value, fn)

	case *Subscript:
		Walk(n.Value, fn)
		Walk(n.Index, fn)

	case *Call:
		Walk(n.Func, fn)
		walkExprs(n.Args)
		for _, kw := range n.Keywords {
			Walk(kw, fn)
		}

	case *Keyword:
		Walk(n.Value, fn)

	case *BinOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryOp:
		Walk(n.Operand, fn)

	case *BoolOp:
		walkExprs(n.Values)

	case *Compare:
		Walk(n.Left, fn)
		walkExprs(n.Comparators)

	case *IfExp:
		Walk(n.Test, fn)
		Walk(n.Body, fn)
		Walk(n.Orelse, fn)

	case *NamedExpr:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *Tuple:
		walkExprs(n.Elts)

	case *List:
		walkExprs(n.Elts)

	case *Dict:
		walkExprs(n.Keys)
		walkExprs(n.Values)

	case *ExprStmt:
		Walk(n.X, fn)

	case *Assign:
		walkExprs(n.Targets)
		Walk(n.Value, fn)

	case *AugAssign:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *AnnAssign:
		Walk(n.Target, fn)
		Walk(n.Annotation, fn)
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *Return:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *Raise:
		Walk(n.Target, fn)

	case *Delete:
		for _, name := range n.Names {
			Walk(name, fn)
		}

	case *Import:
		Walk(n.Module, fn)

	case *ImportFrom:
		Walk(n.Module, fn)

	case *TypeAlias:
		Walk(n.Name, fn)
		Walk(n.Value, fn)

	case *If:
		Walk(n.Test, fn)
		walkStmts(n.Body)
		walkStmts(n.Orelse)

	case *While:
		Walk(n.Test, fn)
		walkStmts(n.Body)

	case *For:
		Walk(n.Target, fn)
		Walk(n.Iter, fn)
		walkStmts(n.Body)

	case *Match:
		Walk(n.Subject, fn)
		for _, c := range n.Cases {
			Walk(c, fn)
		}

	case *MatchCase:
		Walk(n.Pattern, fn)
		walkStmts(n.Body)

	case *FunctionDef:
		Walk(n.Name, fn)
		walkExprs(n.Decorators)
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.Vararg != nil {
			Walk(n.Vararg, fn)
		}
		if n.Returns != nil {
			Walk(n.Returns, fn)
		}
		walkStmts(n.Body)

	case *Param:
		Walk(n.Name, fn)
		if n.Annotation != nil {
			Walk(n.Annotation, fn)
		}

	case *ClassDef:
		Walk(n.Name, fn)
		walkExprs(n.Decorators)
		for _, b := range n.Bases {
			Walk(b, fn)
		}
		walkStmts(n.Body)
	}
}
