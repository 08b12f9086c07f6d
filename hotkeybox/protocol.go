// Package hotkeybox runs a programmable macro-key box: a framed serial
// protocol stores hotkeys into persistent memory and triggers them on
// three HID channels.
package hotkeybox

// see firmware/src/main.cpp

// Request commands, host -> box.
const (
	CmdSetHotkey byte = 0x01 + iota
	CmdRunHotkey
	CmdListHotkeys
)

// CmdResponse prefixes every frame sent back to the host.
const CmdResponse byte = 0x04

// Frame layout: [command][length][payload...][checksum].
const (
	FrameHeader  = 2   // command + length
	FrameTrailer = 1   // checksum
	FrameMax     = 128 // receive buffer size
	MaxPayload   = FrameMax - FrameHeader - FrameTrailer
)

// Hotkey storage layout.
const (
	HotkeyCount        = 32
	HotkeySize         = 8
	StorageBaseAddress = 0
	MaxKeys            = 3
	MaxDelayMs         = 5000
)

// Minimum payload sizes.
const (
	setHotkeyMinPayload = 7
	runHotkeyMinPayload = 1
)
