package irgen

import (
	"zcc/pkg/ast"
	"zcc/pkg/ir"
)

func (l *Lowerer) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		l.lowerBlock(n)
	case *ast.ExprStmt:
		l.lowerExpr(n.X)
	case *ast.DeclStmt:
		l.lowerDeclaration(n.Decl, false)
	case *ast.NullStmt:
		// nothing to emit
	case *ast.GotoStmt:
		l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: n.Label})
	case *ast.LabelStmt:
		l.b.Emit(n.Name, ir.Instr{Op: ir.OpNop})
		l.lowerStmt(n.Stmt)
	case *ast.ReturnStmt:
		l.lowerReturn(n)
	case *ast.IfStmt:
		l.lowerIf(n)
	case *ast.WhileStmt:
		l.lowerWhile(n)
	case *ast.DoWhileStmt:
		l.lowerDoWhile(n)
	case *ast.ForStmt:
		l.lowerFor(n)
	case *ast.SwitchStmt:
		l.lowerSwitch(n)
	case *ast.CaseStmt:
		// Case labels are consumed wholesale by lowerSwitch, which
		// re-walks the body; seeing one here (outside a recognized
		// switch body shape) means it wasn't reachable from a switch.
		l.errorf("irgen: case/default label outside a recognized switch body")
	case *ast.BreakStmt:
		l.lowerBreak()
	case *ast.ContinueStmt:
		l.lowerContinue()
	case *ast.LoopMacroStmt:
		// A loop-macro invocation expands through pkg/macro before
		// irgen runs; one reaching here names an unexpanded macro.
		l.errorf("irgen: unexpanded loop macro %q", identName(n.Call.Fn))
	case *ast.AsmStmt:
		// Inline asm bypasses the IR entirely in a full implementation
		// (its template lowers straight to physical Z80 instructions
		// spliced into the selector's output); not yet wired here.
		l.errorf("irgen: inline asm statements not yet lowered")
	default:
		l.errorf("irgen: unsupported statement %T", s)
	}
}

func identName(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}
	return "?"
}

func (l *Lowerer) lowerReturn(n *ast.ReturnStmt) {
	if n.Value == nil {
		l.b.Emit("", ir.Instr{Op: ir.OpRet})
		return
	}
	v, t := l.lowerExpr(n.Value)
	l.b.Emit("", ir.Instr{Op: ir.OpRetv, Width: widthOf(t), Src1: v})
}

func (l *Lowerer) lowerIf(n *ast.IfStmt) {
	cond, ct := l.lowerExpr(n.Cond)
	if n.Else == nil {
		endLbl := l.newLabel("if_end")
		l.b.Emit("", ir.Instr{Op: ir.OpJz, Width: widthOf(ct), Src1: cond, Label: endLbl})
		l.lowerStmt(n.Then)
		l.b.Emit(endLbl, ir.Instr{Op: ir.OpNop})
		return
	}
	elseLbl := l.newLabel("if_else")
	endLbl := l.newLabel("if_end")
	l.b.Emit("", ir.Instr{Op: ir.OpJz, Width: widthOf(ct), Src1: cond, Label: elseLbl})
	l.lowerStmt(n.Then)
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: endLbl})
	l.b.Emit(elseLbl, ir.Instr{Op: ir.OpNop})
	l.lowerStmt(n.Else)
	l.b.Emit(endLbl, ir.Instr{Op: ir.OpNop})
}

func (l *Lowerer) pushLoop(breakLbl, continueLbl string) {
	l.breakLabels = append(l.breakLabels, breakLbl)
	l.continueLabels = append(l.continueLabels, continueLbl)
}

func (l *Lowerer) popLoop() {
	l.breakLabels = l.breakLabels[:len(l.breakLabels)-1]
	l.continueLabels = l.continueLabels[:len(l.continueLabels)-1]
}

func (l *Lowerer) lowerBreak() {
	if len(l.breakLabels) == 0 {
		l.errorf("irgen: break outside a loop or switch")
		return
	}
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: l.breakLabels[len(l.breakLabels)-1]})
}

func (l *Lowerer) lowerContinue() {
	if len(l.continueLabels) == 0 {
		l.errorf("irgen: continue outside a loop")
		return
	}
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: l.continueLabels[len(l.continueLabels)-1]})
}

func (l *Lowerer) lowerWhile(n *ast.WhileStmt) {
	topLbl := l.newLabel("while_top")
	endLbl := l.newLabel("while_end")
	l.pushLoop(endLbl, topLbl)
	l.b.Emit(topLbl, ir.Instr{Op: ir.OpNop})
	cond, ct := l.lowerExpr(n.Cond)
	l.b.Emit("", ir.Instr{Op: ir.OpJz, Width: widthOf(ct), Src1: cond, Label: endLbl})
	l.lowerStmt(n.Body)
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: topLbl})
	l.b.Emit(endLbl, ir.Instr{Op: ir.OpNop})
	l.popLoop()
}

func (l *Lowerer) lowerDoWhile(n *ast.DoWhileStmt) {
	topLbl := l.newLabel("do_top")
	contLbl := l.newLabel("do_cont")
	endLbl := l.newLabel("do_end")
	l.pushLoop(endLbl, contLbl)
	l.b.Emit(topLbl, ir.Instr{Op: ir.OpNop})
	l.lowerStmt(n.Body)
	l.b.Emit(contLbl, ir.Instr{Op: ir.OpNop})
	cond, ct := l.lowerExpr(n.Cond)
	l.b.Emit("", ir.Instr{Op: ir.OpJnz, Width: widthOf(ct), Src1: cond, Label: topLbl})
	l.b.Emit(endLbl, ir.Instr{Op: ir.OpNop})
	l.popLoop()
}

func (l *Lowerer) lowerFor(n *ast.ForStmt) {
	if n.Init != nil {
		l.lowerStmt(n.Init)
	}
	topLbl := l.newLabel("for_top")
	contLbl := l.newLabel("for_cont")
	endLbl := l.newLabel("for_end")
	l.pushLoop(endLbl, contLbl)
	l.b.Emit(topLbl, ir.Instr{Op: ir.OpNop})
	if n.Cond != nil {
		cond, ct := l.lowerExpr(n.Cond)
		l.b.Emit("", ir.Instr{Op: ir.OpJz, Width: widthOf(ct), Src1: cond, Label: endLbl})
	}
	l.lowerStmt(n.Body)
	l.b.Emit(contLbl, ir.Instr{Op: ir.OpNop})
	if n.Post != nil {
		l.lowerExpr(n.Post)
	}
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: topLbl})
	l.b.Emit(endLbl, ir.Instr{Op: ir.OpNop})
	l.popLoop()
}

// lowerSwitch lowers `switch (tag) { case v: ...; default: ...; }` as
// a linear chain of tag-vs-value compares followed by a jump, then the
// body falling straight through case boundaries the way C itself does
// -- there is no jump-table construction here, only the chain of
// equality tests a naive switch always reduces to.
func (l *Lowerer) lowerSwitch(n *ast.SwitchStmt) {
	tag, tt := l.lowerExpr(n.Tag)
	body, ok := n.Body.(*ast.BlockStmt)
	if !ok {
		l.errorf("irgen: switch body must be a block")
		return
	}

	// A switch introduces a new break target but, per C, leaves continue
	// aimed at whatever loop already enclosed it.
	endLbl := l.newLabel("switch_end")
	l.breakLabels = append(l.breakLabels, endLbl)
	l.continueLabels = append(l.continueLabels, peekContinue(l))

	caseLbls := make([]string, len(body.Stmts))
	defaultLbl := ""
	for i, s := range body.Stmts {
		cs, ok := s.(*ast.CaseStmt)
		if !ok {
			continue
		}
		caseLbls[i] = l.newLabel("case")
		if cs.Default {
			defaultLbl = caseLbls[i]
		}
	}

	for i, s := range body.Stmts {
		cs, ok := s.(*ast.CaseStmt)
		if !ok || cs.Default {
			continue
		}
		val, _ := l.constEval(cs.Value)
		eq := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpEq, Width: widthOf(tt), Dest: eq, Src1: tag, Src2: ir.Imm(val)})
		l.b.Emit("", ir.Instr{Op: ir.OpJnz, Src1: eq, Label: caseLbls[i]})
	}
	if defaultLbl != "" {
		l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: defaultLbl})
	} else {
		l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: endLbl})
	}

	for i, s := range body.Stmts {
		if _, ok := s.(*ast.CaseStmt); ok {
			l.b.Emit(caseLbls[i], ir.Instr{Op: ir.OpNop})
			continue
		}
		l.lowerStmt(s)
	}
	l.b.Emit(endLbl, ir.Instr{Op: ir.OpNop})
	l.popLoop()
}

// peekContinue preserves whatever continue target was active before a
// switch (a switch establishes a new break target but, per C, leaves
// continue aimed at the enclosing loop).
func peekContinue(l *Lowerer) string {
	if len(l.continueLabels) == 0 {
		return ""
	}
	return l.continueLabels[len(l.continueLabels)-1]
}
