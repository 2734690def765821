package store

import (
	"fmt"

	"github.com/roach88/canopy/internal/reactive"
	"github.com/roach88/canopy/internal/state"
)

// SubscribeOptions adjusts subscriber registration.
type SubscribeOptions struct {
	// Prepend places the subscriber at the front of the notification
	// order instead of the back.
	Prepend bool
}

// ActionSubscriber hooks the action dispatch lifecycle. Any subset of
// hooks may be set. Before fires synchronously prior to handler
// invocation, After on success with the result, Error on failure before
// the error propagates to the dispatch caller.
//
// Panics inside hooks are caught and logged; subscribers can never abort
// a dispatch or silence each other.
type ActionSubscriber struct {
	Before func(a ActionInfo, st map[string]any)
	After  func(a ActionInfo, result any, st map[string]any)
	Error  func(a ActionInfo, err error, st map[string]any)
}

// WatchOptions adjusts Watch behavior.
type WatchOptions struct {
	// Immediate fires the callback right away with the current value
	// (old value nil) instead of waiting for the first change.
	Immediate bool
}

type mutationSubscriber struct {
	fn func(m MutationInfo, st map[string]any)
}

type actionSubscriber struct {
	sub ActionSubscriber
}

// Subscribe registers a mutation subscriber, invoked after every commit
// with the mutation descriptor and the post-commit state. Returns the
// unsubscribe function.
func (s *Store) Subscribe(fn func(m MutationInfo, st map[string]any), opts ...SubscribeOptions) func() {
	h := &mutationSubscriber{fn: fn}

	s.mu.Lock()
	if prepend(opts) {
		s.subscribers = append([]*mutationSubscriber{h}, s.subscribers...)
	} else {
		s.subscribers = append(s.subscribers, h)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.subscribers {
			if existing == h {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAction registers an action subscriber. Returns the
// unsubscribe function.
func (s *Store) SubscribeAction(sub ActionSubscriber, opts ...SubscribeOptions) func() {
	h := &actionSubscriber{sub: sub}

	s.mu.Lock()
	if prepend(opts) {
		s.actionSubs = append([]*actionSubscriber{h}, s.actionSubs...)
	} else {
		s.actionSubs = append(s.actionSubs, h)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.actionSubs {
			if existing == h {
				s.actionSubs = append(s.actionSubs[:i], s.actionSubs[i+1:]...)
				return
			}
		}
	}
}

// Watch evaluates getter against the store's state and getters after
// every commit and invokes cb when the result changes. Change detection
// is deep, via canonical encoding. Returns the unwatch function.
func (s *Store) Watch(
	getter func(st map[string]any, getters state.GetterReader) any,
	cb func(newVal, oldVal any),
	opts ...WatchOptions,
) func() {
	w := reactive.NewWatcher(
		func() any { return getter(s.State(), s.Getters()) },
		s.changeKey,
		cb,
	)
	remove := s.container.Watch(w)

	if len(opts) > 0 && opts[len(opts)-1].Immediate {
		cb(w.Current(), nil)
	}
	return remove
}

// changeKey reduces a watched value to a comparable string. Values the
// canonical encoder rejects fall back to the verbose Go representation.
// Coarser, but a watcher on a non-data value should still fire.
func (s *Store) changeKey(v any) string {
	b, err := state.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

func prepend(opts []SubscribeOptions) bool {
	return len(opts) > 0 && opts[len(opts)-1].Prepend
}

func (s *Store) snapshotActionSubs() []*actionSubscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := make([]*actionSubscriber, len(s.actionSubs))
	copy(subs, s.actionSubs)
	return subs
}

func (s *Store) notifyActionBefore(info ActionInfo) {
	st := s.State()
	for _, h := range s.snapshotActionSubs() {
		if h.sub.Before != nil {
			s.safely("action before subscriber", func() { h.sub.Before(info, st) })
		}
	}
}

func (s *Store) notifyActionAfter(info ActionInfo, result any) {
	st := s.State()
	for _, h := range s.snapshotActionSubs() {
		if h.sub.After != nil {
			s.safely("action after subscriber", func() { h.sub.After(info, result, st) })
		}
	}
}

func (s *Store) notifyActionError(info ActionInfo, err error) {
	st := s.State()
	for _, h := range s.snapshotActionSubs() {
		if h.sub.Error != nil {
			s.safely("action error subscriber", func() { h.sub.Error(info, err, st) })
		}
	}
}

// safely runs a subscriber hook, converting panics into log entries so a
// broken subscriber cannot abort dispatch or starve its peers.
func (s *Store) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked", "subscriber", what, "panic", r)
		}
	}()
	fn()
}
