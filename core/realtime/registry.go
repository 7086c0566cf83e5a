package realtime

import (
	"sort"
	"sync"
)

// HandlerFunc receives dispatched events. Handlers run on the channel's read
// goroutine and must not block.
type HandlerFunc func(Event)

type subscriberID int

// Subscription is the disposer token returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel removes the listener. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// registry is a typed publish/subscribe mapping from event kind to an ordered
// set of listener handles. Dispatch order follows subscription order.
type registry struct {
	mu        sync.RWMutex
	handlers  map[EventKind]map[subscriberID]HandlerFunc
	lastSubID subscriberID
}

func newRegistry() *registry {
	return &registry{
		handlers: make(map[EventKind]map[subscriberID]HandlerFunc),
	}
}

func (r *registry) subscribe(kind EventKind, h HandlerFunc) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastSubID++
	id := r.lastSubID
	if r.handlers[kind] == nil {
		r.handlers[kind] = make(map[subscriberID]HandlerFunc)
	}
	r.handlers[kind][id] = h

	return &Subscription{
		cancel: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.handlers[kind], id)
		},
	}
}

func (r *registry) dispatch(ev Event) {
	r.mu.RLock()
	ids := make([]subscriberID, 0, len(r.handlers[ev.Kind]))
	for id := range r.handlers[ev.Kind] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]HandlerFunc, len(ids))
	for i, id := range ids {
		handlers[i] = r.handlers[ev.Kind][id]
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
