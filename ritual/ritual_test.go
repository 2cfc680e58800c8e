package ritual

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"zombie/output"
	"zombie/scroll"
	"zombie/value"
)

func sayTask(name string, text string) *scroll.Task {
	return &scroll.Task{
		Name:            name,
		InitiallyActive: true,
		Statements: []scroll.Stmt{{
			Kind:  scroll.StmtSay,
			Exprs: []scroll.Expr{{Kind: scroll.ExprValue, Value: value.NewString(text)}},
		}},
	}
}

func addEntity(s *scroll.Scroll, name string, species scroll.Species, active bool, tasks ...*scroll.Task) *scroll.Entity {
	e := &scroll.Entity{
		Name:            name,
		Species:         species,
		InitiallyActive: active,
		InitialMemory:   value.Void{},
		Tasks:           map[string]*scroll.Task{},
	}
	for _, t := range tasks {
		e.TaskOrder = append(e.TaskOrder, t.Name)
		e.Tasks[t.Name] = t
	}
	s.Add(e)
	return e
}

func runWithTimeout(t *testing.T, r *Ritual, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("ritual did not finish within the deadline")
	}
}

func TestRitualRunsSingleZombieAndWritesOutput(t *testing.T) {
	scr := scroll.New()
	addEntity(scr, "Peter", scroll.Zombie, true, sayTask("Greet", "Hello World"))

	var buf bytes.Buffer
	r := New(scr, output.NewWriter(&buf))
	runWithTimeout(t, r, 3*time.Second)

	if got := strings.TrimSpace(buf.String()); got != "Hello World" {
		t.Fatalf("expected output %q, got %q", "Hello World", got)
	}
}

func TestRitualDisturbWakesGhost(t *testing.T) {
	scr := scroll.New()
	addEntity(scr, "G", scroll.Ghost, false, sayTask("T", "boo"))
	wakerTask := &scroll.Task{
		Name:            "Wake",
		InitiallyActive: true,
		Statements: []scroll.Stmt{
			{Kind: scroll.StmtDisturb, Target: "G"},
			{Kind: scroll.StmtBanish},
		},
	}
	addEntity(scr, "Z", scroll.Zombie, true, wakerTask)

	var buf bytes.Buffer
	r := New(scr, output.NewWriter(&buf))
	runWithTimeout(t, r, 3*time.Second)

	if got := strings.TrimSpace(buf.String()); got != "boo" {
		t.Fatalf("expected %q, got %q", "boo", got)
	}
}

func TestRitualWatchdogEndsAnInactiveScroll(t *testing.T) {
	scr := scroll.New()
	addEntity(scr, "G", scroll.Ghost, false, sayTask("T", "never"))

	var buf bytes.Buffer
	r := New(scr, output.NewWriter(&buf))
	runWithTimeout(t, r, 3*time.Second)

	if buf.Len() != 0 {
		t.Fatalf("expected no output from a never-activated ghost, got %q", buf.String())
	}
}

func TestRitualFailedReportsFatalRunnerError(t *testing.T) {
	scr := scroll.New()
	addEntity(scr, "Z", scroll.Zombie, true, &scroll.Task{
		Name:            "BadTarget",
		InitiallyActive: true,
		Statements:      []scroll.Stmt{{Kind: scroll.StmtAnimate, Target: "Nobody"}},
	})

	var buf bytes.Buffer
	r := New(scr, output.NewWriter(&buf))
	runWithTimeout(t, r, 3*time.Second)

	if !r.Failed() {
		t.Fatal("expected Failed() to report the fatal runner error")
	}
}

func TestRitualNotFailedOnCleanRun(t *testing.T) {
	scr := scroll.New()
	addEntity(scr, "Peter", scroll.Zombie, true, sayTask("Greet", "Hello World"))

	var buf bytes.Buffer
	r := New(scr, output.NewWriter(&buf))
	runWithTimeout(t, r, 3*time.Second)

	if r.Failed() {
		t.Fatal("expected Failed() to be false after a clean run")
	}
}

func TestRitualStopAbortsImmediately(t *testing.T) {
	loopTask := &scroll.Task{
		Name:            "Loop",
		InitiallyActive: true,
		Statements: []scroll.Stmt{{
			Kind: scroll.StmtShambleUntil,
			Cond: []scroll.Expr{{Kind: scroll.ExprRemembering, Value: value.NewIntegerFromInt64(-1)}},
			Then: []scroll.Stmt{{
				Kind:  scroll.StmtSay,
				Exprs: []scroll.Expr{{Kind: scroll.ExprValue, Value: value.NewIntegerFromInt64(1)}},
			}},
		}},
	}
	scr := scroll.New()
	addEntity(scr, "F", scroll.Zombie, true, loopTask)

	var buf bytes.Buffer
	r := New(scr, output.NewWriter(&buf))

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run()
	}()

	time.Sleep(50 * time.Millisecond)
	r.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not abort a runaway loop in time")
	}
}
