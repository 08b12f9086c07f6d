package hotkeybox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

func TestTypesMarshallers(t *testing.T) {
	var (
		s        State
		k        KeyType
		st       Status
		expected string
		b        []byte
		err      error
	)

	s = State(Connected)
	expected = fmt.Sprintf("\"%s\"", s)
	b, err = json.Marshal(s)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "State_MarshallJSON", string(b), expected)
	}

	k = KeyType(Consumer)
	b, err = json.Marshal(k)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "KeyType_MarshallJSON", string(b), "\"consumer\"")
	}

	st = Status(StatusBusy)
	b, err = json.Marshal(st)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "Status_MarshallJSON", string(b), "\"busy\"")
	}

	_, err = json.Marshal(KeyType(0))
	if err == nil {
		t.Error("KeyType_MarshallJSON: expected error on invalid key type")
	}
}

func TestUnmarshallers(t *testing.T) {
	var (
		s   State
		k   KeyType
		b   *bytes.Buffer
		dec *json.Decoder
		err error
	)

	b = new(bytes.Buffer)
	b.WriteString("\"Connected\"")
	dec = json.NewDecoder(b)
	err = dec.Decode(&s)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "State_UnmarshallJSON", s.String(), Connected.String())
	}

	for in, want := range map[string]KeyType{
		"keyboard": Keyboard,
		"Consumer": Consumer,
		"SYSTEM":   System,
		"1":        Keyboard,
		"3":        System,
	} {
		if err := k.UnmarshalText([]byte(in)); err != nil {
			t.Errorf("KeyType_UnmarshalText(%q): %s", in, err)
			continue
		}
		expect(t, "KeyType_UnmarshalText("+in+")", k.String(), want.String())
	}

	for _, in := range []string{"", "mouse", "0", "4", "256", "-1"} {
		if err := k.UnmarshalText([]byte(in)); err == nil {
			t.Errorf("KeyType_UnmarshalText(%q): expected error, got %s", in, k)
		}
	}
}

func TestStringers(t *testing.T) {
	expect(t, "KeyType", Keyboard.String(), "Keyboard")
	expect(t, "KeyType", System.String(), "System")
	expect(t, "KeyType", KeyType(9).String(), "KeyType(9)")
	expect(t, "State", ReadError.String(), "ReadError")
	expect(t, "State", NilBox.String(), "NilBox")
	expect(t, "Status", StatusStorage.String(), "storage")
}
