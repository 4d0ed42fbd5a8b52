// Package status carries ordered progress events from the pipeline to
// whatever front-end is driving it.
package status

// Severity classifies a status event for rendering
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the lowercase name of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single human-readable progress message
type Event struct {
	Message  string
	Severity Severity
}

// Sink receives events in emission order. Implementations decide how to
// render or forward them; Emit must be safe to call from the worker
// goroutine.
type Sink interface {
	Emit(Event)
}

// FuncSink adapts a function to the Sink interface
type FuncSink func(Event)

func (f FuncSink) Emit(e Event) {
	f(e)
}

// Discard is a Sink that drops every event
var Discard Sink = FuncSink(func(Event) {})

// Info emits an info event
func Info(s Sink, msg string) {
	s.Emit(Event{Message: msg, Severity: SeverityInfo})
}

// Success emits a success event
func Success(s Sink, msg string) {
	s.Emit(Event{Message: msg, Severity: SeveritySuccess})
}

// Warning emits a warning event
func Warning(s Sink, msg string) {
	s.Emit(Event{Message: msg, Severity: SeverityWarning})
}

// Error emits an error event
func Error(s Sink, msg string) {
	s.Emit(Event{Message: msg, Severity: SeverityError})
}

// ChannelSink bridges the producing worker goroutine and a consuming
// renderer. Events preserve emission order; Emit blocks once the buffer
// fills, so a stalled consumer slows the pipeline instead of losing
// messages.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer size
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

func (c *ChannelSink) Emit(e Event) {
	c.ch <- e
}

// Events returns the receive side for the consumer to range over
func (c *ChannelSink) Events() <-chan Event {
	return c.ch
}

// Close marks the end of the stream. Only the producer may call it, and
// only after the last Emit.
func (c *ChannelSink) Close() {
	close(c.ch)
}
