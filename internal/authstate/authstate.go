// Package authstate broadcasts authentication transitions to interested
// components, such as the sync coordinator.
package authstate

import "sync"

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Event is one transition. UserID is empty for Unauthenticated.
type Event struct {
	State  State
	UserID string
	// Wipe asks listeners to drop local data, e.g. on explicit sign-out.
	Wipe bool
}

// Broadcaster fans events out to subscribers. A slow subscriber loses its
// oldest pending event rather than blocking the publisher.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	next    int
	current Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[int]chan Event{}}
}

// Subscribe returns a channel of future events and a cancel function that
// closes it.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = e
	for _, ch := range b.subs {
		select {
		case ch <- e:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- e:
		default:
		}
	}
}

// Current returns the last published event.
func (b *Broadcaster) Current() Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
