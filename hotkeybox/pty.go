//go:build !windows

package hotkeybox

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// ptyPort reads and writes the master side, the slave is kept
// open so reads don't fail while no host is attached.
type ptyPort struct {
	*os.File
	slave *os.File
}

func (p ptyPort) Close() error {
	err := p.File.Close()
	if serr := p.slave.Close(); err == nil {
		err = serr
	}
	return err
}

// OpenPTY creates a pseudo-terminal in raw mode and returns a connection
// on its master side. Hosts talk to the box by opening conn.Path().
func OpenPTY() (*SerialConnection, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}
	if _, err := term.MakeRaw(int(slave.Fd())); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("raw mode on %s: %w", slave.Name(), err)
	}
	return NewSerial(ptyPort{File: master, slave: slave}, nil, slave.Name()), nil
}
