package status

import (
	"strings"
	"sync"
)

// Recorder is a Sink for tests that stores every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of all recorded events in order
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Messages returns just the message strings in order
func (r *Recorder) Messages() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Message
	}
	return out
}

// Count returns how many events of the given severity contain substr.
// An empty substr matches every event of that severity.
func (r *Recorder) Count(severity Severity, substr string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Severity == severity && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

// Has reports whether any event at the given severity contains substr
func (r *Recorder) Has(severity Severity, substr string) bool {
	return r.Count(severity, substr) > 0
}
