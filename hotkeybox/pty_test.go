//go:build !windows

package hotkeybox

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func TestOpenPTY(t *testing.T) {
	conn, err := OpenPTY()
	if err != nil {
		t.Skip("no pseudo-terminal available:", err)
	}
	conn.Start()
	defer conn.Close()

	host, err := os.OpenFile(conn.Path(), os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer host.Close()

	frame := mustFrame(t, CmdRunHotkey, 0x0d)
	if _, err := host.Write(frame); err != nil {
		t.Fatal(err)
	}
	for i, want := range frame {
		b, err := conn.ReadByte()
		if err != nil {
			t.Fatalf("byte %d: %s", i, err)
		}
		if b != want {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", i, b, want)
		}
	}

	resp := EncodeResponse(MsgSuccess)
	if err := conn.Write(resp); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(resp))
	if _, err := io.ReadFull(host, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, resp) {
		t.Errorf("host read % X, want % X", got, resp)
	}
}
