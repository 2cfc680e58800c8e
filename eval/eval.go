// Package eval implements the expression evaluator: a small stack
// machine, seeded with Void, that folds an expression list from last
// to first.
package eval

import (
	"zombie/scroll"
	"zombie/state"
	"zombie/value"
)

// Memory looks up a named entity's memory. Both *state.State and any
// test double implement it.
type Memory interface {
	MemoryOf(name string) value.Value
}

// resolveTarget returns target, or self when target is empty.
func resolveTarget(target, self string) string {
	if target == "" {
		return self
	}
	return target
}

// Exprs folds exprs in reverse order into a single Value, starting the
// stack at [Void]. self names the entity the evaluation runs within,
// for unqualified Moan/Remembering.
func Exprs(mem Memory, self string, exprs []scroll.Expr) value.Value {
	stack := []value.Value{value.Void{}}
	for i := len(exprs) - 1; i >= 0; i-- {
		stack = step(mem, self, exprs[i], stack)
	}
	return stack[len(stack)-1]
}

// Expr evaluates a single expression standalone, the form used by
// Taste/ShambleUntil conditions.
func Expr(mem Memory, self string, e scroll.Expr) value.Value {
	stack := step(mem, self, e, []value.Value{value.Void{}})
	return stack[len(stack)-1]
}

// step applies one expression to the stack and returns the new stack.
// A malformed program that applies Rend to a single-element stack would
// underflow in the source interpreter; here the missing operand is
// treated as Void rather than panicking, keeping evaluation total the
// same way Value's own arithmetic never fails.
func step(mem Memory, self string, e scroll.Expr, stack []value.Value) []value.Value {
	top := stack[len(stack)-1]
	switch e.Kind {
	case scroll.ExprValue:
		return append(stack, e.Value)
	case scroll.ExprMoan:
		target := resolveTarget(e.Target, self)
		stack[len(stack)-1] = value.Add(mem.MemoryOf(target), top)
		return stack
	case scroll.ExprRemembering:
		target := resolveTarget(e.Target, self)
		eq := value.Equal(mem.MemoryOf(target), e.Value)
		return append(stack, value.NewBoolean(eq))
	case scroll.ExprRend:
		popped := top
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			stack = append(stack, value.Void{})
		}
		stack[len(stack)-1] = value.Div(stack[len(stack)-1], popped)
		return stack
	case scroll.ExprTurn:
		stack[len(stack)-1] = value.Neg(top)
		return stack
	default:
		return stack
	}
}

var _ Memory = (*state.State)(nil)
