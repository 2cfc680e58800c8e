package state

import "sync"

// notifier is the global wakeup gate: a false-to-true transition of any
// entity's active flag must wake every runner parked
// on it, and a spurious wakeup must simply cause the waiter to recheck
// its own entity's flag. It is the idiomatic Go shape of a broadcast
// condition variable: waiters grab the current generation's channel and
// block on it; Broadcast closes that channel (waking everyone) and
// swaps in a fresh one for the next generation.
type notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

// wait returns the channel for the current generation. It closes when
// the next broadcast happens.
func (n *notifier) wait() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

func (n *notifier) broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	close(n.ch)
	n.ch = make(chan struct{})
}
