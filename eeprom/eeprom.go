// Package eeprom provides the byte-addressable persistent store the box
// keeps its hotkeys in, modelled on an I2C AT24C256: writes start an
// internal write cycle that must be acknowledged before the chip answers
// again.
package eeprom

import (
	"errors"
	"fmt"
	"time"
)

// AT24C256Size is the capacity in bytes of the reference chip.
const AT24C256Size = 32 * 1024

// Erased is the value of a byte that was never written.
const Erased byte = 0xff

var (
	ErrWriteTimeout = errors.New("eeprom write timeout")
	ErrOutOfRange   = errors.New("address out of range")
)

// Chip is the raw device: WriteAt starts a write cycle, Ack reports
// whether the chip finished it and answers again.
type Chip interface {
	WriteAt(addr int, data []byte) error
	ReadAt(addr int, n int) ([]byte, error)
	Ack() bool
	Size() int
}

// Config holds the write acknowledgement polling parameters.
type Config struct {
	// WriteTimeout bounds the wait for the chip to acknowledge a write
	WriteTimeout time.Duration

	// PollInterval is the delay between two acknowledgement polls
	PollInterval time.Duration
}

func defaultConfig() Config {
	return Config{
		WriteTimeout: 10 * time.Millisecond,
		PollInterval: 100 * time.Microsecond,
	}
}

// Option is a functional option for configuring an EEPROM.
type Option func(*Config)

// WithWriteTimeout sets the write acknowledgement timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.WriteTimeout = d
		}
	}
}

// WithPollInterval sets the delay between acknowledgement polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// EEPROM wraps a Chip with bounds checks and a bounded wait
// for write acknowledgement.
type EEPROM struct {
	chip   Chip
	config Config
}

func New(chip Chip, opts ...Option) *EEPROM {
	if chip == nil {
		panic("chip cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &EEPROM{chip: chip, config: cfg}
}

// Config returns the active configuration.
func (e *EEPROM) Config() Config {
	return e.config
}

// Write stores data at addr, then polls the chip until it acknowledges
// the write cycle. ErrWriteTimeout is returned once WriteTimeout elapsed
// without acknowledgement, the data may or may not have been written.
func (e *EEPROM) Write(addr int, data []byte) error {
	if err := e.checkRange(addr, len(data)); err != nil {
		return err
	}
	if err := e.chip.WriteAt(addr, data); err != nil {
		return fmt.Errorf("write 0x%04X: %w", addr, err)
	}

	t0 := time.Now()
	for !e.chip.Ack() {
		if time.Since(t0) > e.config.WriteTimeout {
			return ErrWriteTimeout
		}
		time.Sleep(e.config.PollInterval)
	}
	return nil
}

// Read returns n bytes starting at addr.
func (e *EEPROM) Read(addr int, n int) ([]byte, error) {
	if err := e.checkRange(addr, n); err != nil {
		return nil, err
	}
	b, err := e.chip.ReadAt(addr, n)
	if err != nil {
		return nil, fmt.Errorf("read 0x%04X: %w", addr, err)
	}
	return b, nil
}

func (e *EEPROM) checkRange(addr, n int) error {
	if addr < 0 || n < 0 || addr+n > e.chip.Size() {
		return fmt.Errorf("%w: [0x%04X, 0x%04X) on %d bytes chip", ErrOutOfRange, addr, addr+n, e.chip.Size())
	}
	return nil
}
