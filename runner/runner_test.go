package runner

import (
	"context"
	"testing"
	"time"

	"zombie/scroll"
	"zombie/state"
	"zombie/value"
)

func entityWithTasks(name string, species scroll.Species, tasks ...*scroll.Task) *scroll.Entity {
	e := &scroll.Entity{
		Name:            name,
		Species:         species,
		InitiallyActive: true,
		InitialMemory:   value.Void{},
		Tasks:           map[string]*scroll.Task{},
	}
	for _, t := range tasks {
		e.TaskOrder = append(e.TaskOrder, t.Name)
		e.Tasks[t.Name] = t
	}
	return e
}

func sayTask(name string, n int64) *scroll.Task {
	return &scroll.Task{
		Name:            name,
		InitiallyActive: true,
		Statements: []scroll.Stmt{{
			Kind:  scroll.StmtSay,
			Exprs: []scroll.Expr{{Kind: scroll.ExprValue, Value: value.NewIntegerFromInt64(n)}},
		}},
	}
}

func drainSays(t *testing.T, st *state.State, n int) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var got []string
	for i := 0; i < n; i++ {
		m, ok := st.Recv(ctx)
		if !ok {
			t.Fatalf("bus closed after %d of %d expected messages", i, n)
		}
		if m.Kind != state.MsgSay {
			t.Fatalf("expected a say message, got kind %v", m.Kind)
		}
		got = append(got, m.Value.Display())
	}
	return got
}

func TestZombieRunsTasksOnceInOrder(t *testing.T) {
	e := entityWithTasks("Peter", scroll.Zombie, sayTask("A", 1), sayTask("B", 2), sayTask("C", 3))
	scr := scroll.New()
	scr.Add(e)
	st := state.New(scr)

	r := New(st, scr, e)
	r.Run(context.Background())

	got := drainSays(t, st, 3)
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestVampireRunsEveryTaskExactlyOnce(t *testing.T) {
	e := entityWithTasks("V", scroll.Vampire, sayTask("A", 1), sayTask("B", 2), sayTask("C", 3))
	scr := scroll.New()
	scr.Add(e)
	st := state.New(scr)

	r := New(st, scr, e)
	r.Run(context.Background())

	got := drainSays(t, st, 3)
	seen := map[string]bool{}
	for _, line := range got {
		seen[line] = true
	}
	for _, want := range []string{"1", "2", "3"} {
		if !seen[want] {
			t.Fatalf("expected task output %q somewhere in %v", want, got)
		}
	}
}

func TestDemonRunsEveryTaskAtLeastOnce(t *testing.T) {
	e := entityWithTasks("D", scroll.Demon, sayTask("A", 1), sayTask("B", 2), sayTask("C", 3))
	scr := scroll.New()
	scr.Add(e)
	st := state.New(scr)

	r := New(st, scr, e)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case <-timeout:
			t.Fatalf("timed out before seeing all 3 tasks; saw %v", seen)
		default:
		}
		m, ok := st.Recv(ctx)
		if !ok {
			t.Fatalf("bus closed before seeing all 3 tasks; saw %v", seen)
		}
		seen[m.Value.Display()] = true
	}
	cancel()
	<-done
}

func TestDjinnMayRunZeroOrMoreTasksAndCompletes(t *testing.T) {
	e := entityWithTasks("J", scroll.Djinn, sayTask("A", 1))
	scr := scroll.New()
	scr.Add(e)
	st := state.New(scr)

	r := New(st, scr, e)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("djinn runner did not complete within its sample")
	}
}

func TestGhostDoesNotSleepAfterLastTask(t *testing.T) {
	e := entityWithTasks("G", scroll.Ghost, sayTask("Only", 1))
	scr := scroll.New()
	scr.Add(e)
	st := state.New(scr)

	r := New(st, scr, e)
	start := time.Now()
	r.Run(context.Background())
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("expected a single-task ghost to finish quickly, took %s", elapsed)
	}
	drainSays(t, st, 1)
}

func TestRandDurationStaysInBounds(t *testing.T) {
	lo, hi := 500*time.Millisecond, 10*time.Second
	for i := 0; i < 50; i++ {
		d := randDuration(lo, hi)
		if d < lo || d > hi {
			t.Fatalf("randDuration returned %s, outside [%s, %s]", d, lo, hi)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{10, 5, 2},
		{11, 5, 3},
		{1, 5, 1},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := ceilDiv(c.a, c.b); got != c.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
