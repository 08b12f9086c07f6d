// Package hid is the key-emission boundary of the box: three independent
// channels (keyboard, consumer/media, system/power), each able to press
// a code and release everything it holds.
package hid

// Channel emits key events on one HID report category.
type Channel interface {
	Press(code byte) error
	ReleaseAll() error
}

// Channels groups the three independent channels of the device.
type Channels struct {
	Keyboard Channel
	Consumer Channel
	System   Channel
}

// Event is a single emitted key action, as seen by monitors.
type Event struct {
	Channel string `json:"channel"`
	Action  string `json:"action"` // "press" or "release"
	Code    byte   `json:"code,omitempty"`
}

const (
	ActionPress   = "press"
	ActionRelease = "release"
)

// Channel names used in events.
const (
	NameKeyboard = "keyboard"
	NameConsumer = "consumer"
	NameSystem   = "system"
)

// Wrap builds Channels where each channel is produced by fn from its name.
func Wrap(fn func(name string) Channel) Channels {
	return Channels{
		Keyboard: fn(NameKeyboard),
		Consumer: fn(NameConsumer),
		System:   fn(NameSystem),
	}
}

// Tee returns Channels forwarding each call to every set in chs, in order.
// The first error is returned but every set is still called.
func Tee(chs ...Channels) Channels {
	pick := func(f func(Channels) Channel) Channel {
		var t tee
		for _, c := range chs {
			if ch := f(c); ch != nil {
				t = append(t, ch)
			}
		}
		return t
	}
	return Channels{
		Keyboard: pick(func(c Channels) Channel { return c.Keyboard }),
		Consumer: pick(func(c Channels) Channel { return c.Consumer }),
		System:   pick(func(c Channels) Channel { return c.System }),
	}
}

type tee []Channel

func (t tee) Press(code byte) (err error) {
	for _, ch := range t {
		if e := ch.Press(code); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (t tee) ReleaseAll() (err error) {
	for _, ch := range t {
		if e := ch.ReleaseAll(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
