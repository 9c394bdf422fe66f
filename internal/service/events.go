package service

import (
	"sync"

	"github.com/templui/gallery/internal/model"
)

// SessionBroker fans session events out to subscribers.
// Callbacks run on the publisher's goroutine and must not block.
type SessionBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(model.SessionEvent)
}

func NewSessionBroker() *SessionBroker {
	return &SessionBroker{
		subs: make(map[int]func(model.SessionEvent)),
	}
}

// Subscribe registers fn and returns the function that removes it.
// The returned function is safe to call more than once.
func (b *SessionBroker) Subscribe(fn func(model.SessionEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *SessionBroker) Publish(event model.SessionEvent) {
	b.mu.RLock()
	fns := make([]func(model.SessionEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}

// Subscribers returns the number of live subscriptions
func (b *SessionBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
