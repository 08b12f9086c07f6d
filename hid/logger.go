package hid

import "log"

// Logger returns channels that only log key events. It stands in for
// real USB reports when the box runs on a host without a HID gadget.
func Logger() Channels {
	return Wrap(func(name string) Channel {
		return logChannel(name)
	})
}

type logChannel string

func (c logChannel) Press(code byte) error {
	log.Printf("hid %s: press 0x%02X", string(c), code)
	return nil
}

func (c logChannel) ReleaseAll() error {
	log.Printf("hid %s: release all", string(c))
	return nil
}
