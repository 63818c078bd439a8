package logsink

import (
	"context"
	"sync"

	"github.com/glimte/reqlog-go/interceptors"
)

// Recorder keeps every entry in memory
type Recorder struct {
	mu      sync.Mutex
	entries []interceptors.Entry
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write implements interceptors.Sink
func (r *Recorder) Write(_ context.Context, entry interceptors.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of the recorded entries in write order
func (r *Recorder) Entries() []interceptors.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]interceptors.Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Messages returns the recorded entry messages in write order
func (r *Recorder) Messages() []string {
	entries := r.Entries()
	messages := make([]string, len(entries))
	for i, entry := range entries {
		messages[i] = entry.Message
	}
	return messages
}

// Reset drops all recorded entries
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
