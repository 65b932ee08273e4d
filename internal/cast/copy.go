package cast

// CopyKind returns a structural deep copy of a kind. Statement identifiers
// inside the copy are reset to 0 so the patch transform never re-targets
// freshly inserted fragments.
func CopyKind(k Kind) Kind {
	switch k := k.(type) {
	case *Block:
		stmts := make([]*Stmt, len(k.Stmts))
		for i, s := range k.Stmts {
			stmts[i] = CopyStmt(s)
		}

		return &Block{Stmts: stmts}
	case *If:
		return &If{Cond: k.Cond, Then: CopyStmt(k.Then), Else: CopyStmt(k.Else)}
	case *While:
		return &While{Cond: k.Cond, Body: CopyStmt(k.Body)}
	case *DoWhile:
		return &DoWhile{Cond: k.Cond, Body: CopyStmt(k.Body)}
	case *For:
		return &For{Init: k.Init, Cond: k.Cond, Post: k.Post, Body: CopyStmt(k.Body)}
	case *Return:
		return &Return{Expr: k.Expr}
	case *Instr:
		instrs := make([]Expr, len(k.Instrs))
		copy(instrs, k.Instrs)

		return &Instr{Instrs: instrs}
	case *Raw:
		return &Raw{Text: k.Text}
	}

	return nil
}

// CopyStmt deep-copies a statement with its identifier reset to 0.
func CopyStmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}

	labels := make([]string, len(s.Labels))
	copy(labels, s.Labels)

	return &Stmt{ID: 0, Labels: labels, Kind: CopyKind(s.Kind)}
}
