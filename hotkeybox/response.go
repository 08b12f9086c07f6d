package hotkeybox

import (
	"fmt"
	"strconv"
	"strings"
)

// Status classifies a response. Only the message text goes on the wire,
// the status is kept for logs and monitors.
type Status int

const (
	StatusOK Status = iota
	StatusFraming
	StatusInvalid
	StatusBusy
	StatusStorage
	StatusUnsupported
)

var statusNames = [...]string{"ok", "framing", "invalid", "busy", "storage", "unsupported"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// Wire messages.
const (
	MsgSuccess        = "success"
	MsgPayloadShort   = "payload too short"
	MsgIndexRange     = "index out of range"
	MsgInvalidType    = "invalid key type"
	MsgInvalidCount   = "invalid key count"
	MsgInvalidDelay   = "invalid delay"
	MsgTaskActive     = "task already active"
	MsgUnknownType    = "unknown key type"
	MsgNotImplemented = "not implemented"
	MsgUnknownCommand = "unknown command"
	MsgChecksum       = "checksum error"
	MsgOverflow       = "frame overflow"
	MsgWriteTimeout   = "storage write timeout"
	MsgStorageError   = "storage error"
	MsgReadError      = "storage read error"
	MsgStarted        = "hotkey started"
	MsgComplete       = "hotkey complete"
)

// Response is a status message sent back to the host.
type Response struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func (r Response) Failed() bool {
	return r.Status != StatusOK
}

// Frame encodes r for the wire.
func (r Response) Frame() []byte {
	return EncodeResponse(r.Message)
}

func response(s Status, msg string) Response {
	return Response{Status: s, Message: msg}
}

func success() Response {
	return response(StatusOK, MsgSuccess)
}

func invalid(msg string) Response {
	return response(StatusInvalid, msg)
}

func hotkeyStarted(index int) Response {
	return response(StatusOK, fmt.Sprintf("%s: %d", MsgStarted, index))
}

func hotkeyComplete() Response {
	return response(StatusOK, MsgComplete)
}

// IsStarted reports whether msg acknowledges a RUN_HOTKEY.
func IsStarted(msg string) bool {
	return strings.HasPrefix(msg, MsgStarted)
}

// StatusOf recovers the status of a message received from the wire.
func StatusOf(msg string) Status {
	switch {
	case msg == MsgSuccess, msg == MsgComplete, IsStarted(msg):
		return StatusOK
	case msg == MsgChecksum, msg == MsgOverflow:
		return StatusFraming
	case msg == MsgTaskActive:
		return StatusBusy
	case msg == MsgWriteTimeout, msg == MsgStorageError, msg == MsgReadError:
		return StatusStorage
	case msg == MsgNotImplemented, msg == MsgUnknownCommand:
		return StatusUnsupported
	}
	return StatusInvalid
}
