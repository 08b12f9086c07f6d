package hotkeybox

import (
	"errors"
	"log"

	"github.com/solar3s/gohotkey/hid"
)

var (
	ErrTaskActive     = errors.New("task already active")
	ErrUnknownKeyType = errors.New("unknown key type")
)

// Task is the hotkey currently held down.
type Task struct {
	Active    bool          `json:"active"`
	Index     int           `json:"index"`
	StartTime uint32        `json:"start_ms"`
	DelayMs   uint16        `json:"delay_ms"`
	KeyType   KeyType       `json:"key_type,omitempty"`
	KeyCount  byte          `json:"key_count"`
	KeyCodes  [MaxKeys]byte `json:"key_codes"`
}

// Runner presses a hotkey's codes, then releases them once its delay
// elapsed. It never blocks: Poll must be called on every tick. Only one
// task runs at a time.
type Runner struct {
	channels hid.Channels
	clock    Clock
	task     Task
	channel  hid.Channel
}

func NewRunner(channels hid.Channels, clock Clock) *Runner {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Runner{channels: channels, clock: clock}
}

// Active reports whether a task is in flight.
func (r *Runner) Active() bool {
	return r.task.Active
}

// Task returns a copy of the current task.
func (r *Runner) Task() Task {
	return r.task
}

// Start presses rec's codes on the channel selected by its key type.
// Nothing is pressed when a task is already active or rec is unusable.
func (r *Runner) Start(index int, rec Record) error {
	if r.task.Active {
		return ErrTaskActive
	}
	ch, ok := rec.KeyType.channel(r.channels)
	if !ok {
		return ErrUnknownKeyType
	}
	if rec.KeyCount < 1 || rec.KeyCount > MaxKeys {
		return &ValidationError{Field: "key count", Value: int(rec.KeyCount)}
	}

	r.task = Task{
		Active:    true,
		Index:     index,
		StartTime: r.clock.Millis(),
		DelayMs:   rec.DelayMs,
		KeyType:   rec.KeyType,
		KeyCount:  rec.KeyCount,
		KeyCodes:  rec.KeyCodes,
	}
	r.channel = ch
	for _, code := range rec.Codes() {
		if err := ch.Press(code); err != nil {
			log.Printf("in %s.Press(0x%02X): %s", rec.KeyType, code, err)
		}
	}
	return nil
}

// Poll releases the active task once its delay elapsed,
// returning true on the tick it does so.
func (r *Runner) Poll() bool {
	if !r.task.Active {
		return false
	}
	if elapsed(r.clock.Millis(), r.task.StartTime) < uint32(r.task.DelayMs) {
		return false
	}
	if err := r.channel.ReleaseAll(); err != nil {
		log.Printf("in %s.ReleaseAll: %s", r.task.KeyType, err)
	}
	r.task = Task{}
	r.channel = nil
	return true
}
