package hotkeybox

import (
	"errors"
	"fmt"
)

var (
	ErrChecksum    = errors.New("checksum error")
	ErrOverflow    = errors.New("frame buffer overflow")
	ErrFrameLength = errors.New("frame length mismatch")
)

// ChecksumError reports a frame whose trailing byte doesn't
// match the sum of the bytes preceding it.
type ChecksumError struct {
	Command  byte
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum error on command 0x%02X: expected 0x%02X, got 0x%02X",
		e.Command, e.Expected, e.Actual)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}

// Frame is a complete, checksum-verified request or response.
type Frame struct {
	Command byte
	Payload []byte
}

// Checksum sums data modulo 256.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// EncodeFrame builds [cmd][len][payload][checksum].
func EncodeFrame(cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), MaxPayload)
	}
	frame := make([]byte, 0, FrameHeader+len(payload)+FrameTrailer)
	frame = append(frame, cmd, byte(len(payload)))
	frame = append(frame, payload...)
	return append(frame, Checksum(frame)), nil
}

// EncodeResponse wraps a status message into a response frame.
// Messages longer than 255 bytes are truncated.
func EncodeResponse(msg string) []byte {
	if len(msg) > 0xff {
		msg = msg[:0xff]
	}
	frame := make([]byte, 0, FrameHeader+len(msg)+FrameTrailer)
	frame = append(frame, CmdResponse, byte(len(msg)))
	frame = append(frame, msg...)
	return append(frame, Checksum(frame))
}

// DecodeFrame decodes exactly one frame held in b.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < FrameHeader+FrameTrailer {
		return Frame{}, fmt.Errorf("%w: got %d bytes, minimum is %d", ErrFrameLength, len(b), FrameHeader+FrameTrailer)
	}
	if want := int(b[1]) + FrameHeader + FrameTrailer; len(b) != want {
		return Frame{}, fmt.Errorf("%w: got %d bytes, expected %d", ErrFrameLength, len(b), want)
	}
	var d Decoder
	for _, c := range b[:len(b)-1] {
		if _, err := d.Feed(c); err != nil {
			return Frame{}, err
		}
	}
	f, err := d.Feed(b[len(b)-1])
	if err != nil {
		return Frame{}, err
	}
	if f == nil {
		return Frame{}, ErrFrameLength
	}
	return *f, nil
}

// Decoder reassembles frames from a byte stream, one byte at a time.
// The zero value is ready to use.
type Decoder struct {
	buf [FrameMax]byte
	n   int
}

// Feed appends b to the frame being assembled. It returns the frame once
// complete and valid, nil while more bytes are needed. Checksum mismatches
// and buffer overflows discard the partial frame and return an error.
func (d *Decoder) Feed(b byte) (*Frame, error) {
	if d.n >= len(d.buf) {
		d.Reset()
		return nil, ErrOverflow
	}
	d.buf[d.n] = b
	d.n++

	if d.n < FrameHeader {
		return nil, nil
	}
	size := int(d.buf[1]) + FrameHeader + FrameTrailer
	if d.n < size {
		if size > len(d.buf) && d.n == len(d.buf) {
			// next byte can't fit, the frame is lost either way
			d.Reset()
			return nil, ErrOverflow
		}
		return nil, nil
	}

	defer d.Reset()
	sum := Checksum(d.buf[:size-1])
	if sum != d.buf[size-1] {
		return nil, &ChecksumError{Command: d.buf[0], Expected: sum, Actual: d.buf[size-1]}
	}
	payload := make([]byte, size-FrameHeader-FrameTrailer)
	copy(payload, d.buf[FrameHeader:size-1])
	return &Frame{Command: d.buf[0], Payload: payload}, nil
}

// Reset drops any partially assembled frame.
func (d *Decoder) Reset() {
	d.n = 0
}

// Buffered returns the number of bytes of the frame in progress.
func (d *Decoder) Buffered() int {
	return d.n
}
