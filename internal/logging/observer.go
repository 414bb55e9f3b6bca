package logging

import (
	"log/slog"
	"sync"
)

// Observer receives the pipeline's events. Arguments follow slog's
// alternating key/value convention.
type Observer interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Critical(msg string, args ...any)
}

// SlogObserver forwards events to a *slog.Logger.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps logger. A nil logger discards everything.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = Discard()
	}
	return &SlogObserver{logger: logger}
}

// With returns an observer that attaches args to every event.
func (o *SlogObserver) With(args ...any) *SlogObserver {
	return &SlogObserver{logger: o.logger.With(args...)}
}

func (o *SlogObserver) Info(msg string, args ...any)  { o.logger.Info(msg, args...) }
func (o *SlogObserver) Warn(msg string, args ...any)  { o.logger.Warn(msg, args...) }
func (o *SlogObserver) Error(msg string, args ...any) { o.logger.Error(msg, args...) }

func (o *SlogObserver) Critical(msg string, args ...any) {
	critical(o.logger, msg, args...)
}

// =============================================================================
// RECORDER
// =============================================================================

// Event is one call recorded by a Recorder.
type Event struct {
	Level slog.Level
	Msg   string
	Args  []any
}

// Attr returns the value passed for key, if any.
func (e Event) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1], true
		}
	}
	return nil, false
}

// Recorder keeps every event in memory, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level slog.Level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Msg: msg, Args: append([]any(nil), args...)})
}

func (r *Recorder) Info(msg string, args ...any)     { r.record(slog.LevelInfo, msg, args) }
func (r *Recorder) Warn(msg string, args ...any)     { r.record(slog.LevelWarn, msg, args) }
func (r *Recorder) Error(msg string, args ...any)    { r.record(slog.LevelError, msg, args) }
func (r *Recorder) Critical(msg string, args ...any) { r.record(LevelCritical, msg, args) }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// AtLevel returns the recorded events with exactly the given level.
func (r *Recorder) AtLevel(level slog.Level) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
