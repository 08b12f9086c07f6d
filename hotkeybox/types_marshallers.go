package hotkeybox

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// This file contains (un)marshallers for various byte types
// used in hotkeybox, allowing to more easily encode / decode
// string values instead of byte values, making communication
// with any front-end or preset files easier.

// ---- type State int

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	str := string(b)
	for i := 0; i < len(_State_index)-1; i++ {
		if strings.EqualFold(_State_name[_State_index[i]:_State_index[i+1]], str) {
			*s = State(i)
			return nil
		}
	}
	i, err := strconv.Atoi(str)
	if err == nil {
		*s = State(i)
		return nil
	}
	return fmt.Errorf("Cannot unmarshall \"%s\" to State. Is it mispelled?", str)
}

// ---- type KeyType byte

func (t KeyType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", t)
	}
	return []byte(strings.ToLower(t.String())), nil
}

func (t *KeyType) UnmarshalText(b []byte) error {
	str := string(b)
	if str == "" {
		return errors.New("KeyType.UnmarshalText: empty value")
	}
	for i := 0; i < len(_KeyType_index)-1; i++ {
		if strings.EqualFold(_KeyType_name[_KeyType_index[i]:_KeyType_index[i+1]], str) {
			*t = KeyType(i + 1)
			return nil
		}
	}
	i, err := strconv.Atoi(str)
	if err == nil && i >= 0 && i < 256 && KeyType(i).Valid() {
		*t = KeyType(i)
		return nil
	}
	return fmt.Errorf("Cannot unmarshall \"%s\" to KeyType. Is it mispelled?", str)
}

// ---- type Status int

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
