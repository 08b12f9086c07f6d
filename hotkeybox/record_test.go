package hotkeybox

import (
	"bytes"
	"errors"
	"testing"
)

func TestRecordBinaryLayout(t *testing.T) {
	r := Record{
		KeyCount: 2,
		KeyType:  Keyboard,
		KeyCodes: [MaxKeys]byte{4, 5, 0},
		DelayMs:  0x1388,
	}
	b, err := r.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{2, 1, 4, 5, 0, 0x13, 0x88, 0}
	if !bytes.Equal(b, want) {
		t.Errorf("MarshalBinary = % X, want % X", b, want)
	}

	var back Record
	if err := back.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if back != r {
		t.Errorf("UnmarshalBinary = %+v, want %+v", back, r)
	}

	if err := back.UnmarshalBinary(b[:HotkeySize-1]); err == nil {
		t.Error("expected error on short slot")
	}
}

func TestRecordErasedSlot(t *testing.T) {
	var r Record
	if err := r.UnmarshalBinary(bytes.Repeat([]byte{0xff}, HotkeySize)); err != nil {
		t.Fatal(err)
	}
	if r.KeyType.Valid() {
		t.Errorf("erased slot decoded with valid key type %s", r.KeyType)
	}
	if len(r.Codes()) != MaxKeys {
		t.Errorf("Codes() should be capped to %d, got %d", MaxKeys, len(r.Codes()))
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		field string
	}{
		{"valid", Record{KeyCount: 1, KeyType: System, DelayMs: MaxDelayMs}, ""},
		{"type zero", Record{KeyCount: 1}, "key type"},
		{"type four", Record{KeyCount: 1, KeyType: 4}, "key type"},
		{"count zero", Record{KeyType: Keyboard}, "key count"},
		{"count four", Record{KeyCount: 4, KeyType: Keyboard}, "key count"},
		{"delay", Record{KeyCount: 3, KeyType: Consumer, DelayMs: MaxDelayMs + 1}, "delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("unexpected error: %s", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			expect(t, tt.name, verr.Field, tt.field)
		})
	}
}

func TestSlotAddress(t *testing.T) {
	for i, want := range map[int]int{0: 0, 1: 8, 31: 248} {
		if got := SlotAddress(i); got != want {
			t.Errorf("SlotAddress(%d) = %d, want %d", i, got, want)
		}
	}
	if !ValidIndex(0) || !ValidIndex(HotkeyCount-1) || ValidIndex(HotkeyCount) || ValidIndex(-1) {
		t.Error("ValidIndex boundaries are wrong")
	}
}

func TestStore(t *testing.T) {
	s := NewStore(newMemory())
	r := Record{KeyCount: 3, KeyType: Consumer, KeyCodes: [MaxKeys]byte{0xe9, 0xea, 0xe2}, DelayMs: 250}

	for i := 0; i < 2; i++ {
		if err := s.Write(7, r); err != nil {
			t.Fatal(err)
		}
		got, err := s.Read(7)
		if err != nil {
			t.Fatal(err)
		}
		if got != r {
			t.Errorf("write #%d: read back %+v, want %+v", i, got, r)
		}
	}

	// neighbours untouched
	for _, i := range []int{6, 8} {
		got, err := s.Read(i)
		if err != nil {
			t.Fatal(err)
		}
		if got.KeyCount != 0xff || got.KeyType != 0xff {
			t.Errorf("slot %d was modified: %+v", i, got)
		}
	}

	if err := s.Write(HotkeyCount, r); err == nil {
		t.Error("expected error writing past last slot")
	}
	if _, err := s.Read(-1); err == nil {
		t.Error("expected error reading negative slot")
	}
}
