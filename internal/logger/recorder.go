package logger

import "sync"

// Record is one rendered log line with its level.
type Record struct {
	Level   string
	Message string
}

// Recorder is a Logger that keeps rendered lines in memory, in emission
// order. Tests use it to match the exact messages the indexer produced.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) append(level, msg string, ctx Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Level: level, Message: Interpolate(msg, ctx)})
}

// Debug records a debug line.
func (r *Recorder) Debug(msg string, ctx Context) { r.append("debug", msg, ctx) }

// Info records an info line.
func (r *Recorder) Info(msg string, ctx Context) { r.append("info", msg, ctx) }

// Warning records a warning line.
func (r *Recorder) Warning(msg string, ctx Context) { r.append("warning", msg, ctx) }

// Error records an error line.
func (r *Recorder) Error(msg string, ctx Context) { r.append("error", msg, ctx) }

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Lines returns the recorded lines as "level: message" strings.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.records))
	for i, rec := range r.records {
		lines[i] = rec.Level + ": " + rec.Message
	}
	return lines
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
