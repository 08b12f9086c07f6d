package hotkeybox

import (
	"errors"
	"log"

	"github.com/solar3s/gohotkey/eeprom"
)

// Dispatcher interprets decoded frames, validating their payload before
// touching the store or the runner. Every command yields one Response.
type Dispatcher struct {
	store   *Store
	runner  *Runner
	verbose bool
}

func NewDispatcher(store *Store, runner *Runner) *Dispatcher {
	return &Dispatcher{store: store, runner: runner}
}

func (d *Dispatcher) Dispatch(f Frame) Response {
	if d.verbose {
		log.Printf("dispatch command 0x%02X, payload % X", f.Command, f.Payload)
	}
	switch f.Command {
	case CmdSetHotkey:
		return d.setHotkey(f.Payload)
	case CmdRunHotkey:
		return d.runHotkey(f.Payload)
	case CmdListHotkeys:
		return d.listHotkeys()
	}
	log.Printf("unknown command 0x%02X", f.Command)
	return response(StatusUnsupported, MsgUnknownCommand)
}

// setHotkey payload: [index][keyType][keyCount][code0][code1][code2][delayHi][delayLo]
func (d *Dispatcher) setHotkey(p []byte) Response {
	if len(p) < setHotkeyMinPayload {
		return invalid(MsgPayloadShort)
	}
	index := int(p[0])
	rec := Record{
		KeyType:  KeyType(p[1]),
		KeyCount: p[2],
		KeyCodes: [MaxKeys]byte{p[3], p[4], p[5]},
		DelayMs:  uint16(p[6]) << 8,
	}
	if len(p) > setHotkeyMinPayload {
		rec.DelayMs |= uint16(p[7])
	}

	if !ValidIndex(index) {
		return invalid(MsgIndexRange)
	}
	if !rec.KeyType.Valid() {
		return invalid(MsgInvalidType)
	}
	if rec.KeyCount < 1 || rec.KeyCount > MaxKeys {
		return invalid(MsgInvalidCount)
	}
	if rec.DelayMs > MaxDelayMs {
		return invalid(MsgInvalidDelay)
	}

	err := d.store.Write(index, rec)
	switch {
	case err == nil:
		return success()
	case errors.Is(err, eeprom.ErrWriteTimeout):
		return response(StatusStorage, MsgWriteTimeout)
	default:
		return response(StatusStorage, MsgStorageError)
	}
}

// runHotkey payload: [index]
func (d *Dispatcher) runHotkey(p []byte) Response {
	if d.runner.Active() {
		return response(StatusBusy, MsgTaskActive)
	}
	if len(p) < runHotkeyMinPayload {
		return invalid(MsgPayloadShort)
	}
	index := int(p[0])
	if !ValidIndex(index) {
		return invalid(MsgIndexRange)
	}

	rec, err := d.store.Read(index)
	if err != nil {
		return response(StatusStorage, MsgReadError)
	}

	err = d.runner.Start(index, rec)
	var verr *ValidationError
	switch {
	case err == nil:
		return hotkeyStarted(index)
	case errors.Is(err, ErrUnknownKeyType):
		log.Printf("slot %d holds unknown key type %d", index, rec.KeyType)
		return invalid(MsgUnknownType)
	case errors.As(err, &verr):
		log.Printf("slot %d holds %s", index, verr)
		return invalid(MsgInvalidCount)
	case errors.Is(err, ErrTaskActive):
		return response(StatusBusy, MsgTaskActive)
	}
	log.Printf("in runner.Start(%d): %s", index, err)
	return response(StatusInvalid, err.Error())
}

func (d *Dispatcher) listHotkeys() Response {
	return response(StatusUnsupported, MsgNotImplemented)
}
