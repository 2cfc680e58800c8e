package parser

import (
	"fmt"
	"strings"

	"zombie/scroll"
)

// PrintTree renders a parsed scroll as an indented, human-readable tree
// for the CLI's -t/--tree flag.
func PrintTree(s *scroll.Scroll) string {
	var b strings.Builder
	for _, e := range s.EntitiesInOrder() {
		fmt.Fprintf(&b, "entity %s (%s) active=%t memory=%s\n", e.Name, e.Species, e.InitiallyActive, e.InitialMemory)
		for _, t := range e.TaskByOrder() {
			fmt.Fprintf(&b, "  task %s active=%t\n", t.Name, t.InitiallyActive)
			printStmts(&b, t.Statements, "    ")
		}
	}
	return b.String()
}

func printStmts(b *strings.Builder, stmts []scroll.Stmt, indent string) {
	for _, s := range stmts {
		printStmt(b, s, indent)
	}
}

func printStmt(b *strings.Builder, s scroll.Stmt, indent string) {
	switch s.Kind {
	case scroll.StmtAnimate:
		fmt.Fprintf(b, "%sanimate %s\n", indent, target(s.Target))
	case scroll.StmtDisturb:
		fmt.Fprintf(b, "%sdisturb %s\n", indent, target(s.Target))
	case scroll.StmtBanish:
		fmt.Fprintf(b, "%sbanish %s\n", indent, target(s.Target))
	case scroll.StmtForget:
		fmt.Fprintf(b, "%sforget %s\n", indent, target(s.Target))
	case scroll.StmtInvoke:
		fmt.Fprintf(b, "%sinvoke %s\n", indent, target(s.Target))
	case scroll.StmtRemember:
		fmt.Fprintf(b, "%sremember %s %s\n", indent, target(s.Target), printExprs(s.Exprs))
	case scroll.StmtSay:
		fmt.Fprintf(b, "%ssay %s %s\n", indent, target(s.Target), printExprs(s.Exprs))
	case scroll.StmtStumble:
		fmt.Fprintf(b, "%sstumble\n", indent)
	case scroll.StmtShambleAround:
		fmt.Fprintf(b, "%sshamble\n", indent)
		printStmts(b, s.Body, indent+"  ")
		fmt.Fprintf(b, "%saround\n", indent)
	case scroll.StmtShambleUntil:
		fmt.Fprintf(b, "%sshamble\n", indent)
		printStmts(b, s.Then, indent+"  ")
		fmt.Fprintf(b, "%suntil %s\n", indent, printExprs(s.Cond))
	case scroll.StmtTaste:
		fmt.Fprintf(b, "%staste %s\n", indent, printExprs(s.Cond))
		fmt.Fprintf(b, "%sgood\n", indent)
		printStmts(b, s.Then, indent+"  ")
		fmt.Fprintf(b, "%sbad\n", indent)
		printStmts(b, s.Else, indent+"  ")
		fmt.Fprintf(b, "%sspit\n", indent)
	}
}

func target(t string) string {
	if t == "" {
		return "self"
	}
	return t
}

func printExprs(exprs []scroll.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = printExpr(e)
	}
	return strings.Join(parts, " ")
}

func printExpr(e scroll.Expr) string {
	switch e.Kind {
	case scroll.ExprMoan:
		return "moan " + target(e.Target)
	case scroll.ExprRemembering:
		return "remembering " + target(e.Target) + " " + e.Value.Display()
	case scroll.ExprRend:
		return "rend"
	case scroll.ExprTurn:
		return "turn"
	case scroll.ExprValue:
		return e.Value.String()
	default:
		return "?"
	}
}
