// Package ritual is the supervisor that wires together scroll, state,
// runners, and the output sink into a full run of a ZOMBIE program: it
// spawns one runner per initial entity, drives the message loop, runs
// the watchdog, and waits for clean shutdown.
package ritual

import (
	"context"
	"sync"
	"time"

	"zombie/output"
	"zombie/runner"
	"zombie/scroll"
	"zombie/state"
	"zombie/zlog"
)

// Ritual supervises one run of a scroll.
type Ritual struct {
	scr  *scroll.Scroll
	st   *state.State
	sink output.Sink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Ritual ready to Run the given scroll, writing Say output
// to sink.
func New(scr *scroll.Scroll, sink output.Sink) *Ritual {
	ctx, cancel := context.WithCancel(context.Background())
	return &Ritual{
		scr:    scr,
		st:     state.New(scr),
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run executes the scroll to completion: spawns initial runners, drives
// the message loop and watchdog, and returns once every runner has
// finished.
func (r *Ritual) Run() {
	for _, e := range r.scr.EntitiesInOrder() {
		if e.InitiallyActive {
			r.spawn(e.Name)
		}
	}

	msgDone := make(chan struct{})
	go func() {
		defer close(msgDone)
		r.messageLoop()
	}()

	watchdogDone := make(chan struct{})
	go func() {
		defer close(watchdogDone)
		r.watchdog()
	}()

	runnersDone := make(chan struct{})
	go func() {
		defer close(runnersDone)
		r.wg.Wait()
	}()

	<-runnersDone
	r.cancel()
	r.st.CloseBus()
	<-msgDone
	<-watchdogDone
}

// Stop aborts every runner immediately, as if the watchdog had fired.
// Safe to call concurrently with Run; idempotent.
func (r *Ritual) Stop() {
	r.cancel()
}

// Failed reports whether any runner died of a fatal error during Run,
// for the CLI's exit status.
func (r *Ritual) Failed() bool {
	return r.st.HadFatal()
}

// spawn lights a candle and starts a new runner for the named entity.
// Reused by Animate/Disturb/Invoke dispatch.
func (r *Ritual) spawn(name string) {
	e, ok := r.scr.Lookup(name)
	if !ok {
		zlog.Errorf("ritual: cannot spawn unknown entity %q", name)
		return
	}
	r.st.LightCandle(name)
	rn := runner.New(r.st, r.scr, e)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		rn.Run(r.ctx)
	}()
}

// messageLoop receives control messages from every runner and
// dispatches them.
func (r *Ritual) messageLoop() {
	for {
		m, ok := r.st.Recv(r.ctx)
		if !ok {
			return
		}
		switch m.Kind {
		case state.MsgSay:
			if err := r.sink.WriteLine(m.Value.Display()); err != nil {
				zlog.Errorf("ritual: output write failed: %s", err)
			}
		case state.MsgAnimate:
			if e, ok := r.scr.Lookup(m.Target); ok && e.Species == scroll.Zombie {
				r.st.SetActiveOf(m.Target, true)
				r.spawn(m.Target)
			}
		case state.MsgDisturb:
			if e, ok := r.scr.Lookup(m.Target); ok && e.Species == scroll.Ghost {
				r.st.SetActiveOf(m.Target, true)
				r.spawn(m.Target)
			}
		case state.MsgInvoke:
			r.spawn(m.Target)
		}
	}
}

// watchdog aborts every runner once every entity is either inactive or
// down to at most one live runner.
func (r *Ritual) watchdog() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if r.allQuiescent() {
				zlog.Debugf("ritual: watchdog triggered shutdown")
				r.cancel()
				return
			}
		}
	}
}

// allQuiescent reports whether every entity is either inactive, or
// active with at most one live runner (its own).
func (r *Ritual) allQuiescent() bool {
	for _, name := range r.st.Names() {
		if r.st.ActiveOf(name) && r.st.CandleCount(name) > 1 {
			return false
		}
	}
	return true
}
