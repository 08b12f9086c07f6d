package hotkeybox

import (
	"bytes"
	"testing"

	"github.com/solar3s/gohotkey/eeprom"
	"github.com/solar3s/gohotkey/hid"
)

func expect(t *testing.T, test, v, to string) {
	t.Helper()
	if v != to {
		t.Errorf("%s: expected \"%s\" to equal \"%s\".", test, v, to)
	}
}

// fakeLink is a synchronous Link: bytes appended to in are handed
// to the box one per TryReadByte, writes accumulate in out.
type fakeLink struct {
	in     []byte
	out    bytes.Buffer
	state  State
	closed bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{state: Connected}
}

func (l *fakeLink) TryReadByte() (byte, bool) {
	if len(l.in) == 0 {
		return 0, false
	}
	b := l.in[0]
	l.in = l.in[1:]
	return b, true
}

func (l *fakeLink) Write(b []byte) error {
	l.out.Write(b)
	return nil
}

func (l *fakeLink) State() State {
	return l.state
}

func (l *fakeLink) Close() error {
	l.closed = true
	l.state = Disconnected
	return nil
}

// responses decodes and consumes every response frame written so far.
func (l *fakeLink) responses(t *testing.T) []string {
	t.Helper()
	var msgs []string
	var d Decoder
	for _, b := range l.out.Bytes() {
		f, err := d.Feed(b)
		if err != nil {
			t.Fatalf("undecodable response: %s", err)
		}
		if f != nil {
			if f.Command != CmdResponse {
				t.Fatalf("response command = 0x%02X, want 0x%02X", f.Command, CmdResponse)
			}
			msgs = append(msgs, string(f.Payload))
		}
	}
	if d.Buffered() != 0 {
		t.Fatalf("%d trailing response bytes", d.Buffered())
	}
	l.out.Reset()
	return msgs
}

func newMemory() *eeprom.EEPROM {
	return eeprom.New(eeprom.NewMemory(eeprom.AT24C256Size, 0))
}

type testBox struct {
	*Box
	link  *fakeLink
	rec   *hid.Recorder
	clock *ManualClock
	mem   *eeprom.EEPROM
}

func newTestBox() *testBox {
	tb := &testBox{
		link:  newFakeLink(),
		rec:   hid.NewRecorder(),
		clock: new(ManualClock),
		mem:   newMemory(),
	}
	tb.Box = NewBox(tb.link, tb.mem, tb.rec.Channels(), nil, WithClock(tb.clock))
	return tb
}

// send pushes b on the link and ticks once per byte.
func (tb *testBox) send(b []byte) {
	tb.link.in = append(tb.link.in, b...)
	for range b {
		tb.Tick()
	}
}

func mustFrame(t *testing.T, cmd byte, payload ...byte) []byte {
	t.Helper()
	f, err := EncodeFrame(cmd, payload)
	if err != nil {
		t.Fatal(err)
	}
	return f
}
