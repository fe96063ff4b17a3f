package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

type Recorded struct {
	Subject string
	Payload any
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Recorded{Subject: subject, Payload: payload})

	return nil
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Recorded, len(r.events))
	copy(out, r.events)

	return out
}

// Subjects returns the subjects in publish order.
func (r *Recorder) Subjects() []string {
	evs := r.Events()

	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Subject
	}

	return out
}
