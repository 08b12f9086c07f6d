package hotkeybox

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrEmptyRead = errors.New("response was empty")

// Conn is the host side of a serial link.
type Conn interface {
	Write(b []byte) error
	ReadByte() (byte, error)
}

// ResponseError is a response reporting a failure.
type ResponseError struct {
	Command byte
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("command 0x%02X rejected: %s", e.Command, e.Message)
}

// Client drives a box from the host.
type Client struct {
	sync.Mutex
	conn Conn
}

func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// SetHotkey stores r in slot index.
func (c *Client) SetHotkey(index int, r Record) (string, error) {
	payload := []byte{
		byte(index), byte(r.KeyType), r.KeyCount,
		r.KeyCodes[0], r.KeyCodes[1], r.KeyCodes[2],
		byte(r.DelayMs >> 8), byte(r.DelayMs),
	}
	msg, err := c.Talk(CmdSetHotkey, payload)
	if err == nil && msg != MsgSuccess {
		err = &ResponseError{Command: CmdSetHotkey, Message: msg}
	}
	return msg, err
}

// RunHotkey triggers slot index.
func (c *Client) RunHotkey(index int) (string, error) {
	msg, err := c.Talk(CmdRunHotkey, []byte{byte(index)})
	if err == nil && !IsStarted(msg) {
		err = &ResponseError{Command: CmdRunHotkey, Message: msg}
	}
	return msg, err
}

// ListHotkeys asks for the hotkey list, which the firmware doesn't implement.
func (c *Client) ListHotkeys() (string, error) {
	return c.Talk(CmdListHotkeys, nil)
}

const (
	pingRetries  = 16
	testConnPoll = time.Millisecond * 250
)

// TestConnection sends a ping every testConnPoll,
// and returns on success or after pingRetries tries.
func (c *Client) TestConnection() (_ time.Duration, err error) {
	t0 := time.Now()
	for i := 0; i < pingRetries; i++ {
		err = c.Ping()
		if err == nil {
			break
		}
		time.Sleep(testConnPoll)
	}
	return time.Since(t0), err
}

// Ping checks that the other end answers like a box. LIST_HOTKEYS is
// used since it never changes any state.
func (c *Client) Ping() error {
	msg, err := c.Talk(CmdListHotkeys, nil)
	if err != nil {
		return err
	}
	if msg != MsgNotImplemented {
		return fmt.Errorf("unexpected ping response %q", msg)
	}
	return nil
}

// Talk sends one request and waits for its response. Completion notices
// of previous hotkeys are skipped.
func (c *Client) Talk(cmd byte, payload []byte) (string, error) {
	frame, err := EncodeFrame(cmd, payload)
	if err != nil {
		return "", err
	}
	c.Lock()
	defer c.Unlock()
	if err = c.conn.Write(frame); err != nil {
		return "", err
	}
	for {
		msg, err := c.readResponse()
		if err != nil || msg != MsgComplete {
			return msg, err
		}
	}
}

// ReadResponse waits for the next response frame.
func (c *Client) ReadResponse() (string, error) {
	c.Lock()
	defer c.Unlock()
	return c.readResponse()
}

func (c *Client) readResponse() (string, error) {
	var d Decoder
	for {
		b, err := c.conn.ReadByte()
		if err != nil {
			return "", err
		}
		if d.Buffered() == 0 && b != CmdResponse {
			// not the start of a response, resync
			continue
		}
		f, err := d.Feed(b)
		if err != nil {
			return "", err
		}
		if f == nil {
			continue
		}
		if len(f.Payload) == 0 {
			return "", ErrEmptyRead
		}
		return string(f.Payload), nil
	}
}
