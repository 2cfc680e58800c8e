// Package state holds the shared, concurrently-accessed runtime state
// for a single ritual: per-entity memory and activity, candle counts,
// the wakeup notifier, and the inter-runner message bus.
package state

import (
	"context"
	"sync"
	"sync/atomic"

	"zombie/scroll"
	"zombie/value"
)

// State is shared by every runner and the ritual for the lifetime of a
// run. The entity set is fixed at construction; only memory, activity,
// and candle counts vary afterward.
type State struct {
	mu     sync.RWMutex
	memory map[string]value.Value
	active map[string]bool

	// candles is populated once at construction and never mutated after
	// (only the counters it points to are), so concurrent reads of the
	// map itself need no lock.
	candles map[string]*atomic.Int64

	notifier *notifier
	bus      *bus
	fatal    atomic.Bool
}

// New builds shared state for every entity declared in scr, seeded with
// each entity's initial memory and activity.
func New(scr *scroll.Scroll) *State {
	s := &State{
		memory:  make(map[string]value.Value),
		active:  make(map[string]bool),
		candles: make(map[string]*atomic.Int64),
		notifier: newNotifier(),
		bus:      newBus(),
	}
	for _, e := range scr.EntitiesInOrder() {
		s.memory[e.Name] = e.InitialMemory.Clone()
		s.active[e.Name] = e.InitiallyActive
		s.candles[e.Name] = &atomic.Int64{}
	}
	return s
}

// Exists reports whether name is a declared entity.
func (s *State) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[name]
	return ok
}

// MemoryOf returns a clone of the entity's current memory.
func (s *State) MemoryOf(name string) value.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.memory[name]
	if !ok {
		return value.Void{}
	}
	return v.Clone()
}

// SetMemoryOf overwrites the entity's memory unconditionally (Remember
// has no concept of "forgetting previous" beyond overwriting).
func (s *State) SetMemoryOf(name string, v value.Value) {
	s.mu.Lock()
	s.memory[name] = v
	s.mu.Unlock()
}

// ActiveOf returns the entity's current activity flag.
func (s *State) ActiveOf(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[name]
}

// SetActiveOf sets the entity's activity flag. A false-to-true
// transition wakes every runner parked on the notifier.
func (s *State) SetActiveOf(name string, active bool) {
	s.mu.Lock()
	was := s.active[name]
	s.active[name] = active
	s.mu.Unlock()
	if active && !was {
		s.notifier.broadcast()
	}
}

// WaitUntilActive blocks until the entity is active, ctx is done, or it
// already is active. It returns false only when ctx ends first.
func (s *State) WaitUntilActive(ctx context.Context, name string) bool {
	for {
		ch := s.notifier.wait()
		if s.ActiveOf(name) {
			return true
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}
	}
}

// LightCandle increments the entity's live-runner count and returns the
// new value.
func (s *State) LightCandle(name string) int64 {
	return s.candles[name].Add(1)
}

// SnuffCandle decrements the entity's live-runner count and returns the
// new value.
func (s *State) SnuffCandle(name string) int64 {
	return s.candles[name].Add(-1)
}

// CandleCount returns the entity's current live-runner count.
func (s *State) CandleCount(name string) int64 {
	return s.candles[name].Load()
}

// Send enqueues a control message from a runner (Say/Animate/Disturb/
// Invoke). Never blocks on the ritual's consumption.
func (s *State) Send(m Message) {
	s.bus.send(m)
}

// Recv receives the next control message, the way the ritual's message
// loop does.
func (s *State) Recv(ctx context.Context) (Message, bool) {
	return s.bus.recv(ctx)
}

// CloseBus shuts down the message bus.
func (s *State) CloseBus() {
	s.bus.close()
}

// MarkFatal records that some runner died of a fatal error, for the
// top-level exit status.
func (s *State) MarkFatal() {
	s.fatal.Store(true)
}

// HadFatal reports whether any runner has called MarkFatal.
func (s *State) HadFatal() bool {
	return s.fatal.Load()
}

// Names returns every declared entity name (order unspecified; used for
// the watchdog's sweep over all entities).
func (s *State) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.active))
	for name := range s.active {
		names = append(names, name)
	}
	return names
}
