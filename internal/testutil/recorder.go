package testutil

import (
	"sync"

	"github.com/roach88/canopy/internal/store"
)

// Event kinds recorded by the Recorder.
const (
	KindMutation    = "mutation"
	KindActionStart = "action:before"
	KindActionDone  = "action:after"
	KindActionError = "action:error"
)

// Event is one recorded store notification. Seq is a recorder-local
// counter, assigned in notification order.
type Event struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
	Token   string `json:"token,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Recorder captures a store's mutation and action notifications for
// assertions. Attach it before driving the store; events accumulate in
// notification order.
type Recorder struct {
	mu     sync.Mutex
	seq    int64
	events []Event
}

// Attach subscribes the recorder to a store's mutation and action
// streams. Returns a detach function.
func (r *Recorder) Attach(s *store.Store) func() {
	offMutations := s.Subscribe(func(m store.MutationInfo, st map[string]any) {
		r.record(Event{Kind: KindMutation, Name: m.Type, Payload: m.Payload})
	})
	offActions := s.SubscribeAction(store.ActionSubscriber{
		Before: func(a store.ActionInfo, st map[string]any) {
			r.record(Event{Kind: KindActionStart, Name: a.Type, Payload: a.Payload, Token: a.Token})
		},
		After: func(a store.ActionInfo, result any, st map[string]any) {
			r.record(Event{Kind: KindActionDone, Name: a.Type, Token: a.Token, Result: result})
		},
		Error: func(a store.ActionInfo, err error, st map[string]any) {
			r.record(Event{Kind: KindActionError, Name: a.Type, Token: a.Token, Error: err.Error()})
		},
	})
	return func() {
		offMutations()
		offActions()
	}
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e.Seq = r.seq
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded names of the given kind, in order.
func (r *Recorder) Names(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		if e.Kind == kind {
			names = append(names, e.Name)
		}
	}
	return names
}

// Count returns how many events of the given kind and name were
// recorded. An empty name counts every event of the kind.
func (r *Recorder) Count(kind, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind && (name == "" || e.Name == name) {
			n++
		}
	}
	return n
}

// Reset discards recorded events and restarts the sequence counter.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = 0
	r.events = nil
}
