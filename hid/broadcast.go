package hid

import (
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans events out to any number of subscribers.
// Slow subscribers lose events rather than stall the emitter.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]chan interface{}
	size int
}

// NewBroadcaster creates a Broadcaster whose subscriber
// channels buffer up to size messages.
func NewBroadcaster(size int) *Broadcaster {
	if size <= 0 {
		size = 64
	}
	return &Broadcaster{subs: make(map[string]chan interface{}), size: size}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (b *Broadcaster) Subscribe() (string, <-chan interface{}) {
	id := uuid.NewString()
	ch := make(chan interface{}, b.size)
	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes subscriber id and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish sends v to every subscriber without blocking.
func (b *Broadcaster) Publish(v interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Channels returns emitter channels publishing an Event per call.
func (b *Broadcaster) Channels() Channels {
	return Wrap(func(name string) Channel {
		return broadcastChannel{b: b, name: name}
	})
}

type broadcastChannel struct {
	b    *Broadcaster
	name string
}

func (c broadcastChannel) Press(code byte) error {
	c.b.Publish(Event{Channel: c.name, Action: ActionPress, Code: code})
	return nil
}

func (c broadcastChannel) ReleaseAll() error {
	c.b.Publish(Event{Channel: c.name, Action: ActionRelease})
	return nil
}
