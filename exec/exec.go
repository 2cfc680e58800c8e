// Package exec implements the statement executor: it runs one statement
// at a time within a runner bound to an entity named self, against the
// shared state, evaluating expressions through eval and emitting
// control messages through state.State's bus.
package exec

import (
	"context"
	"fmt"
	"runtime"

	"zombie/eval"
	"zombie/scroll"
	"zombie/state"
	"zombie/value"
)

// FatalError is a structural failure that kills only the runner that hit
// it: a non-boolean loop/branch condition, or a statement/expression
// target naming an entity that does not exist.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

func fatalf(format string, args ...any) error {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// TaskState is the task-local activity flag a Stumble statement clears.
// It is distinct from entity-wide activity: once false, the current
// task ends, but the runner moves on to its next task.
type TaskState struct {
	Active bool
}

// Executor runs statements for one entity ("self").
type Executor struct {
	St   *state.State
	Scr  *scroll.Scroll
	Self string
}

// New builds an Executor bound to self.
func New(st *state.State, scr *scroll.Scroll, self string) *Executor {
	return &Executor{St: st, Scr: scr, Self: self}
}

func resolveTarget(target, self string) string {
	if target == "" {
		return self
	}
	return target
}

func (x *Executor) checkTarget(name string) error {
	if name != "" && !x.St.Exists(name) {
		return fatalf("%s: unknown entity %q", x.Self, name)
	}
	return nil
}

func (x *Executor) checkExprTargets(exprs []scroll.Expr) error {
	for _, e := range exprs {
		if (e.Kind == scroll.ExprMoan || e.Kind == scroll.ExprRemembering) && e.Target != "" {
			if err := x.checkTarget(e.Target); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExecStmts runs a sequence of statements, gating on entity activity
// before each one and yielding between them so other runners get a
// turn.
func (x *Executor) ExecStmts(ctx context.Context, ts *TaskState, stmts []scroll.Stmt) error {
	for _, s := range stmts {
		if !ts.Active {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !x.St.WaitUntilActive(ctx, x.Self) {
			return ctx.Err()
		}
		if err := x.ExecStmt(ctx, ts, s); err != nil {
			return err
		}
		if !ts.Active {
			return nil
		}
		runtime.Gosched()
	}
	return nil
}

// ExecStmt runs a single statement.
func (x *Executor) ExecStmt(ctx context.Context, ts *TaskState, s scroll.Stmt) error {
	switch s.Kind {
	case scroll.StmtAnimate:
		target := resolveTarget(s.Target, x.Self)
		if err := x.checkTarget(target); err != nil {
			return err
		}
		x.St.Send(state.Message{Kind: state.MsgAnimate, Target: target})
		return nil

	case scroll.StmtDisturb:
		target := resolveTarget(s.Target, x.Self)
		if err := x.checkTarget(target); err != nil {
			return err
		}
		x.St.Send(state.Message{Kind: state.MsgDisturb, Target: target})
		return nil

	case scroll.StmtInvoke:
		target := resolveTarget(s.Target, x.Self)
		if err := x.checkTarget(target); err != nil {
			return err
		}
		x.St.Send(state.Message{Kind: state.MsgInvoke, Target: target})
		return nil

	case scroll.StmtBanish:
		target := resolveTarget(s.Target, x.Self)
		if err := x.checkTarget(target); err != nil {
			return err
		}
		x.St.SetActiveOf(target, false)
		return nil

	case scroll.StmtForget:
		target := resolveTarget(s.Target, x.Self)
		if err := x.checkTarget(target); err != nil {
			return err
		}
		x.St.SetMemoryOf(target, value.Void{})
		return nil

	case scroll.StmtRemember:
		target := resolveTarget(s.Target, x.Self)
		if err := x.checkTarget(target); err != nil {
			return err
		}
		if err := x.checkExprTargets(s.Exprs); err != nil {
			return err
		}
		v := eval.Exprs(x.St, x.Self, s.Exprs)
		x.St.SetMemoryOf(target, v)
		return nil

	case scroll.StmtSay:
		if err := x.checkExprTargets(s.Exprs); err != nil {
			return err
		}
		v := eval.Exprs(x.St, x.Self, s.Exprs)
		x.St.Send(state.Message{Kind: state.MsgSay, Target: resolveTarget(s.Target, x.Self), Value: v})
		return nil

	case scroll.StmtStumble:
		ts.Active = false
		return nil

	case scroll.StmtShambleAround:
		for {
			if err := x.ExecStmts(ctx, ts, s.Body); err != nil {
				return err
			}
			if !ts.Active {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

	case scroll.StmtShambleUntil:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			b, err := x.evalCond(s.Cond)
			if err != nil {
				return err
			}
			if b {
				return nil
			}
			if err := x.ExecStmts(ctx, ts, s.Then); err != nil {
				return err
			}
			if !ts.Active {
				return nil
			}
		}

	case scroll.StmtTaste:
		b, err := x.evalCond(s.Cond)
		if err != nil {
			return err
		}
		if b {
			return x.ExecStmts(ctx, ts, s.Then)
		}
		return x.ExecStmts(ctx, ts, s.Else)

	default:
		return fatalf("%s: unknown statement kind %v", x.Self, s.Kind)
	}
}

// evalCond evaluates a Taste/ShambleUntil condition, which must reduce
// to a Boolean; anything else is a fatal runner error.
func (x *Executor) evalCond(cond []scroll.Expr) (bool, error) {
	if err := x.checkExprTargets(cond); err != nil {
		return false, err
	}
	v := eval.Expr(x.St, x.Self, cond[0])
	b, ok := v.(value.Boolean)
	if !ok {
		return false, fatalf("%s: condition is not a boolean: %s", x.Self, v)
	}
	return b.Bool(), nil
}
