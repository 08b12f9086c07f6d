package hid

import "sync"

// Recorder is an in-memory emitter keeping every event it receives.
// It tracks which codes are currently held per channel.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	held   map[string][]byte
}

func NewRecorder() *Recorder {
	return &Recorder{held: make(map[string][]byte)}
}

// Channels returns the three channels writing into r.
func (r *Recorder) Channels() Channels {
	return Wrap(func(name string) Channel {
		return recorderChannel{r: r, name: name}
	})
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Held returns the codes currently pressed on channel name.
func (r *Recorder) Held(name string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.held[name]...)
}

// Count returns how many events match channel and action.
func (r *Recorder) Count(channel, action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, e := range r.events {
		if e.Channel == channel && e.Action == action {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.held = make(map[string][]byte)
	r.mu.Unlock()
}

type recorderChannel struct {
	r    *Recorder
	name string
}

func (c recorderChannel) Press(code byte) error {
	c.r.mu.Lock()
	c.r.events = append(c.r.events, Event{Channel: c.name, Action: ActionPress, Code: code})
	c.r.held[c.name] = append(c.r.held[c.name], code)
	c.r.mu.Unlock()
	return nil
}

func (c recorderChannel) ReleaseAll() error {
	c.r.mu.Lock()
	c.r.events = append(c.r.events, Event{Channel: c.name, Action: ActionRelease})
	delete(c.r.held, c.name)
	c.r.mu.Unlock()
	return nil
}
