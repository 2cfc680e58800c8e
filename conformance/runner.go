package conformance

import (
	"sync"
	"time"

	"zombie/parser"
	"zombie/ritual"
)

// memSink is an in-memory output.Sink collecting every line written,
// safe for the ritual's single message-loop writer.
type memSink struct {
	mu    sync.Mutex
	lines []string
}

func (m *memSink) WriteLine(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, text)
	return nil
}

func (m *memSink) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Run parses and executes a scroll to completion, returning every line
// written to its output sink in order.
func Run(scroll string) ([]string, error) {
	scr, err := parser.Parse(scroll)
	if err != nil {
		return nil, err
	}
	sink := &memSink{}
	r := ritual.New(scr, sink)
	r.Run()
	return sink.Lines(), nil
}

// RunWithDeadline runs a scroll the same way as Run but returns whatever
// lines were written within d instead of blocking until the ritual
// settles on its own. Some scrolls (e.g. an until loop whose condition
// the driving arithmetic never satisfies) have no guaranteed end, so a
// caller exercising those needs partial output rather than a hang.
func RunWithDeadline(scroll string, d time.Duration) ([]string, error) {
	scr, err := parser.Parse(scroll)
	if err != nil {
		return nil, err
	}
	sink := &memSink{}
	r := ritual.New(scr, sink)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run()
	}()
	select {
	case <-done:
	case <-time.After(d):
		r.Stop()
		<-done
	}
	return sink.Lines(), nil
}
