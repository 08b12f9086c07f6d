package hotkeybox

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/solar3s/gohotkey/hid"
)

func TestRunnerPressRelease(t *testing.T) {
	rec := hid.NewRecorder()
	clock := new(ManualClock)
	r := NewRunner(rec.Channels(), clock)

	err := r.Start(0, Record{KeyCount: 2, KeyType: Keyboard, KeyCodes: [MaxKeys]byte{4, 5, 6}, DelayMs: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Active() {
		t.Fatal("runner not active after Start")
	}
	if held := rec.Held(hid.NameKeyboard); !bytes.Equal(held, []byte{4, 5}) {
		t.Errorf("held % X, want 04 05", held)
	}

	clock.Advance(99 * time.Millisecond)
	if r.Poll() {
		t.Fatal("released before delay")
	}
	clock.Advance(time.Millisecond)
	if !r.Poll() {
		t.Fatal("not released once delay elapsed")
	}
	if r.Active() {
		t.Error("runner still active after release")
	}
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		if r.Poll() {
			t.Error("released twice")
		}
	}
	if n := rec.Count(hid.NameKeyboard, hid.ActionRelease); n != 1 {
		t.Errorf("%d releases, want 1", n)
	}
	if len(rec.Held(hid.NameKeyboard)) != 0 {
		t.Error("keys still held after release")
	}
}

func TestRunnerZeroDelay(t *testing.T) {
	rec := hid.NewRecorder()
	r := NewRunner(rec.Channels(), new(ManualClock))

	if err := r.Start(1, Record{KeyCount: 1, KeyType: System, KeyCodes: [MaxKeys]byte{0x81}}); err != nil {
		t.Fatal(err)
	}
	if !r.Poll() {
		t.Error("zero delay task not released on first poll")
	}
}

func TestRunnerWraparound(t *testing.T) {
	rec := hid.NewRecorder()
	clock := new(ManualClock)
	clock.Set(0xFFFFFFF0)
	r := NewRunner(rec.Channels(), clock)

	if err := r.Start(0, Record{KeyCount: 1, KeyType: Keyboard, KeyCodes: [MaxKeys]byte{4}, DelayMs: 100}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(50 * time.Millisecond)
	if clock.Millis() > 0xFFFFFFF0 {
		t.Fatal("clock didn't wrap")
	}
	if r.Poll() {
		t.Fatal("released early across wraparound")
	}
	clock.Advance(50 * time.Millisecond)
	if !r.Poll() {
		t.Fatal("not released across wraparound")
	}
}

func TestRunnerChannels(t *testing.T) {
	for _, tt := range []struct {
		kt   KeyType
		name string
	}{
		{Keyboard, hid.NameKeyboard},
		{Consumer, hid.NameConsumer},
		{System, hid.NameSystem},
	} {
		rec := hid.NewRecorder()
		r := NewRunner(rec.Channels(), new(ManualClock))
		if err := r.Start(0, Record{KeyCount: 1, KeyType: tt.kt, KeyCodes: [MaxKeys]byte{0x42}}); err != nil {
			t.Fatal(err)
		}
		r.Poll()
		for _, e := range rec.Events() {
			if e.Channel != tt.name {
				t.Errorf("%s hotkey emitted on %s", tt.kt, e.Channel)
			}
		}
		if n := len(rec.Events()); n != 2 {
			t.Errorf("%s: %d events, want 2", tt.kt, n)
		}
	}
}

func TestRunnerRejects(t *testing.T) {
	rec := hid.NewRecorder()
	r := NewRunner(rec.Channels(), new(ManualClock))

	err := r.Start(0, Record{KeyCount: 1, KeyType: 0xff})
	if !errors.Is(err, ErrUnknownKeyType) {
		t.Errorf("error = %v, want %v", err, ErrUnknownKeyType)
	}
	var verr *ValidationError
	for _, n := range []byte{0, 4, 0xff} {
		err = r.Start(0, Record{KeyCount: n, KeyType: Keyboard})
		if !errors.As(err, &verr) {
			t.Errorf("count %d: error = %v, want *ValidationError", n, err)
		}
	}
	if len(rec.Events()) != 0 || r.Active() {
		t.Fatal("rejected records pressed keys")
	}

	if err = r.Start(0, Record{KeyCount: 1, KeyType: Keyboard, KeyCodes: [MaxKeys]byte{4}, DelayMs: 10}); err != nil {
		t.Fatal(err)
	}
	err = r.Start(1, Record{KeyCount: 1, KeyType: Consumer, KeyCodes: [MaxKeys]byte{0xcd}})
	if !errors.Is(err, ErrTaskActive) {
		t.Errorf("error = %v, want %v", err, ErrTaskActive)
	}
	if r.Task().Index != 0 || rec.Count(hid.NameConsumer, hid.ActionPress) != 0 {
		t.Error("second Start interfered with the active task")
	}
}

func TestRunnerMissingChannel(t *testing.T) {
	rec := hid.NewRecorder()
	ch := rec.Channels()
	ch.System = nil
	r := NewRunner(ch, new(ManualClock))

	err := r.Start(0, Record{KeyCount: 1, KeyType: System, KeyCodes: [MaxKeys]byte{0x81}})
	if !errors.Is(err, ErrUnknownKeyType) {
		t.Errorf("error = %v, want %v", err, ErrUnknownKeyType)
	}
}
