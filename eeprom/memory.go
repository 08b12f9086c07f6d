package eeprom

import (
	"sync"
	"time"
)

// Memory is a volatile Chip. Its content starts erased and every write
// keeps the chip busy for WriteCycle.
type Memory struct {
	mu         sync.Mutex
	data       []byte
	writeCycle time.Duration
	busyUntil  time.Time
	stuck      bool
}

// NewMemory returns an erased chip of size bytes.
func NewMemory(size int, writeCycle time.Duration) *Memory {
	m := &Memory{data: make([]byte, size), writeCycle: writeCycle}
	for i := range m.data {
		m.data[i] = Erased
	}
	return m
}

func (m *Memory) WriteAt(addr int, data []byte) error {
	m.mu.Lock()
	copy(m.data[addr:], data)
	m.busyUntil = time.Now().Add(m.writeCycle)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadAt(addr int, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data[addr:addr+n]...), nil
}

func (m *Memory) Ack() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.stuck && !time.Now().Before(m.busyUntil)
}

func (m *Memory) Size() int {
	return len(m.data)
}

// SetStuck makes the chip stop acknowledging writes, the data
// is still stored.
func (m *Memory) SetStuck(stuck bool) {
	m.mu.Lock()
	m.stuck = stuck
	m.mu.Unlock()
}
