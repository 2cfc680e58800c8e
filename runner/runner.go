// Package runner applies the per-species task-scheduling disciplines
// to a single entity: Zombie and Ghost run their tasks
// sequentially once each in declaration order (Ghost sleeping between
// them); Vampire runs them once each in a random order; Demon and
// Djinn run a resampled, possibly-repeating task list in small
// concurrent batches.
package runner

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"zombie/exec"
	"zombie/scroll"
	"zombie/state"
	"zombie/zlog"
)

// Runner executes one entity's tasks under its species' discipline.
type Runner struct {
	St     *state.State
	Scr    *scroll.Scroll
	Entity *scroll.Entity
}

// New builds a Runner for the given entity.
func New(st *state.State, scr *scroll.Scroll, entity *scroll.Entity) *Runner {
	return &Runner{St: st, Scr: scr, Entity: entity}
}

// Run executes the entity's species-specific schedule to completion,
// then snuffs its candle. Run returns when the schedule completes or
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer r.St.SnuffCandle(r.Entity.Name)

	tasks := r.Entity.TaskByOrder()
	switch r.Entity.Species {
	case scroll.Zombie:
		r.runOnceEach(ctx, tasks)
	case scroll.Ghost:
		r.runGhost(ctx, tasks)
	case scroll.Vampire:
		shuffled := append([]*scroll.Task(nil), tasks...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		r.runOnceEach(ctx, shuffled)
	case scroll.Demon:
		r.runDemon(ctx, tasks)
	case scroll.Djinn:
		r.runDjinn(ctx, tasks)
	}
}

// runOnceEach runs every task sequentially, one at a time, in the given
// order (Zombie and shuffled-Vampire schedules).
func (r *Runner) runOnceEach(ctx context.Context, tasks []*scroll.Task) {
	for _, t := range tasks {
		if ctx.Err() != nil {
			return
		}
		r.perform(ctx, t)
	}
}

// runGhost runs every task sequentially, sleeping a random interval in
// [500ms, 10s] between each one.
func (r *Runner) runGhost(ctx context.Context, tasks []*scroll.Task) {
	for i, t := range tasks {
		if ctx.Err() != nil {
			return
		}
		r.perform(ctx, t)
		if i == len(tasks)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(randDuration(500*time.Millisecond, 10*time.Second)):
		}
	}
}

func randDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo+1)))
}

// ceilDiv computes ceil(a/b) for positive a, b.
func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// runDemon implements the Demon schedule: a random permutation of every
// task index, extended by 0..=5 resampling rounds each adding up to
// ceil(n/3) extra indices sampled with replacement, executed
// concurrently in batches of random size up to ceil(remaining/5), with
// a helper invocation sent after each batch dispatch with probability
// 33/(100*remaining_after_dispatch). The exact
// distribution is not load-bearing; what matters is the set of
// guarantees it implements: every task runs at least once, some may
// run more than once, batches run concurrently, and helpers are
// occasionally spawned.
func (r *Runner) runDemon(ctx context.Context, tasks []*scroll.Task) {
	n := len(tasks)
	if n == 0 {
		return
	}

	sample := make([]int, n)
	for i := range sample {
		sample[i] = i
	}
	rand.Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })

	rounds := rand.IntN(6) // 0..=5
	for round := 0; round < rounds; round++ {
		extra := ceilDiv(n, 3)
		if extra == 0 {
			continue
		}
		resampleSize := rand.IntN(extra + 1)
		for i := 0; i < resampleSize; i++ {
			sample = append(sample, rand.IntN(n))
		}
	}

	r.runBatches(ctx, tasks, sample, true)
}

// runDjinn implements the Djinn schedule: a sample of size uniform in
// [1, 10*n] drawn with replacement up front, run concurrently in
// batches. Tasks may not run at all if never drawn; no helper
// invocation.
func (r *Runner) runDjinn(ctx context.Context, tasks []*scroll.Task) {
	n := len(tasks)
	if n == 0 {
		return
	}

	sampleSize := 1 + rand.IntN(10*n)
	sample := make([]int, sampleSize)
	for i := range sample {
		sample[i] = rand.IntN(n)
	}

	r.runBatches(ctx, tasks, sample, false)
}

// runBatches pops indices off the end of sample in batches of random
// size up to ceil(remaining/5), running each batch's tasks
// concurrently and joining before starting the next. When
// helperInvocation is set, each dispatched batch has a chance to send
// an Invoke(self) message.
func (r *Runner) runBatches(ctx context.Context, tasks []*scroll.Task, sample []int, helperInvocation bool) {
	for len(sample) > 0 {
		if ctx.Err() != nil {
			return
		}
		batchSize := 1 + rand.IntN(ceilDiv(len(sample), 5))
		if batchSize > len(sample) {
			batchSize = len(sample)
		}
		batch := sample[len(sample)-batchSize:]
		sample = sample[:len(sample)-batchSize]

		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range batch {
			t := tasks[idx]
			g.Go(func() error {
				r.perform(gctx, t)
				return nil
			})
		}
		_ = g.Wait()

		if helperInvocation && len(sample) > 0 {
			if rand.IntN(100*len(sample)) < 33 {
				zlog.Debugf("%s spawning helper", r.Entity.Name)
				r.St.Send(state.Message{Kind: state.MsgInvoke, Target: r.Entity.Name})
			}
		}
	}
}

// perform runs one task to completion, seeding its task-local activity
// flag from the task's own declared initial activity.
func (r *Runner) perform(ctx context.Context, t *scroll.Task) {
	zlog.Debugf("%s performing task %s", r.Entity.Name, t.Name)
	ts := &exec.TaskState{Active: t.InitiallyActive}
	x := exec.New(r.St, r.Scr, r.Entity.Name)
	if err := x.ExecStmts(ctx, ts, t.Statements); err != nil {
		if _, ok := err.(*exec.FatalError); ok {
			zlog.Errorf("%s: %s", r.Entity.Name, err)
			r.St.MarkFatal()
		}
	}
}
