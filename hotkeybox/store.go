package hotkeybox

import (
	"fmt"
	"log"
)

// Storage is the byte-addressable persistent memory hotkeys live in.
type Storage interface {
	Write(addr int, data []byte) error
	Read(addr int, n int) ([]byte, error)
}

// Store maps slot indexes to records. Nothing is cached, every
// call goes to storage.
type Store struct {
	mem Storage
}

func NewStore(mem Storage) *Store {
	return &Store{mem: mem}
}

// Write persists r in slot index.
func (s *Store) Write(index int, r Record) error {
	if !ValidIndex(index) {
		return &ValidationError{Field: "index", Value: index}
	}
	b, _ := r.MarshalBinary()
	err := s.mem.Write(SlotAddress(index), b)
	if err != nil {
		log.Printf("in Store.Write(%d): %s", index, err)
	}
	return err
}

// Read loads slot index. The record isn't validated.
func (s *Store) Read(index int) (r Record, err error) {
	if !ValidIndex(index) {
		return r, &ValidationError{Field: "index", Value: index}
	}
	b, err := s.mem.Read(SlotAddress(index), HotkeySize)
	if err != nil {
		log.Printf("in Store.Read(%d): %s", index, err)
		return r, err
	}
	if err = r.UnmarshalBinary(b); err != nil {
		return r, fmt.Errorf("slot %d: %w", index, err)
	}
	return r, nil
}
