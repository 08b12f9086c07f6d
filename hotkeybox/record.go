package hotkeybox

import (
	"fmt"

	"github.com/solar3s/gohotkey/hid"
)

//go:generate stringer -type=KeyType
type KeyType byte

const (
	Keyboard KeyType = iota + 1
	Consumer
	System
)

// Valid reports whether t names one of the three HID channels.
func (t KeyType) Valid() bool {
	return t >= Keyboard && t <= System
}

// channel picks the HID channel t presses on.
func (t KeyType) channel(ch hid.Channels) (hid.Channel, bool) {
	switch t {
	case Keyboard:
		return ch.Keyboard, ch.Keyboard != nil
	case Consumer:
		return ch.Consumer, ch.Consumer != nil
	case System:
		return ch.System, ch.System != nil
	}
	return nil, false
}

// ValidationError describes a hotkey field outside of its allowed range.
type ValidationError struct {
	Field string
	Value int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

// Record is one persisted hotkey. On storage it takes HotkeySize bytes:
//
//	[keyCount][keyType][code0][code1][code2][delayHi][delayLo][reserved]
type Record struct {
	KeyCount byte
	KeyType  KeyType
	KeyCodes [MaxKeys]byte
	DelayMs  uint16
}

// Codes returns the active key codes.
func (r Record) Codes() []byte {
	n := int(r.KeyCount)
	if n > MaxKeys {
		n = MaxKeys
	}
	return r.KeyCodes[:n]
}

// Validate checks r against the ranges every stored record must satisfy.
func (r Record) Validate() error {
	if !r.KeyType.Valid() {
		return &ValidationError{Field: "key type", Value: int(r.KeyType)}
	}
	if r.KeyCount < 1 || r.KeyCount > MaxKeys {
		return &ValidationError{Field: "key count", Value: int(r.KeyCount)}
	}
	if r.DelayMs > MaxDelayMs {
		return &ValidationError{Field: "delay", Value: int(r.DelayMs)}
	}
	return nil
}

// MarshalBinary encodes r in its storage layout.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, HotkeySize)
	b[0] = r.KeyCount
	b[1] = byte(r.KeyType)
	copy(b[2:5], r.KeyCodes[:])
	b[5] = byte(r.DelayMs >> 8)
	b[6] = byte(r.DelayMs)
	return b, nil
}

// UnmarshalBinary decodes a storage slot. No range checks are made,
// erased or corrupted slots decode as-is.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < HotkeySize {
		return fmt.Errorf("hotkey record too short: got %d bytes, expected %d", len(b), HotkeySize)
	}
	r.KeyCount = b[0]
	r.KeyType = KeyType(b[1])
	copy(r.KeyCodes[:], b[2:5])
	r.DelayMs = uint16(b[5])<<8 | uint16(b[6])
	return nil
}

// SlotAddress is where slot index starts in persistent storage.
func SlotAddress(index int) int {
	return StorageBaseAddress + index*HotkeySize
}

// ValidIndex reports whether index addresses one of the HotkeyCount slots.
func ValidIndex(index int) bool {
	return index >= 0 && index < HotkeyCount
}
