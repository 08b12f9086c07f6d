package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/solar3s/gohotkey/eeprom"
	"github.com/solar3s/gohotkey/hid"
	"github.com/solar3s/gohotkey/hotkeybox"
)

func testServer(t *testing.T) (*Server, *hid.Broadcaster) {
	t.Helper()
	monitor := hid.NewBroadcaster(0)
	mem := eeprom.New(eeprom.NewMemory(eeprom.AT24C256Size, 0))
	box := hotkeybox.NewBox(nil, mem, monitor.Channels(), nil, hotkeybox.WithMonitor(monitor))
	return NewServer(nil, box, monitor), monitor
}

func TestStatus(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var snap struct {
		State string `json:"state"`
		Task  struct {
			Active bool `json:"active"`
		} `json:"task"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != hotkeybox.Disconnected.String() || snap.Task.Active {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestFrame(t *testing.T) {
	s, monitor := testServer(t)
	_, events := monitor.Subscribe()

	body := strings.NewReader(`{"command": 3, "payload": [7]}`)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/frame", body))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code %d: %s", rec.Code, rec.Body)
	}
	var queued map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&queued); err != nil {
		t.Fatal(err)
	}
	if queued["queued"] != 4 {
		t.Errorf("queued %d bytes, want 4", queued["queued"])
	}

	for i := 0; i < 4; i++ {
		s.Box.Tick()
	}
	select {
	case v := <-events:
		r, ok := v.(hotkeybox.Response)
		if !ok || r.Message != hotkeybox.MsgNotImplemented {
			t.Errorf("published %+v", v)
		}
	default:
		t.Fatal("no response published")
	}

	for _, bad := range []string{`{"command": 1`, `{"command": 1, "payload": [256]}`, `{"command": 1, "payload": [-1]}`} {
		rec = httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/frame", strings.NewReader(bad)))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status code %d, want %d", bad, rec.Code, http.StatusUnprocessableEntity)
		}
	}

	long, _ := json.Marshal(FrameRequest{Command: 1, Payload: make([]int, hotkeybox.MaxPayload+1)})
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/frame", bytes.NewReader(long)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("oversized payload: status code %d", rec.Code)
	}
}

func TestRaw(t *testing.T) {
	s, monitor := testServer(t)
	_, events := monitor.Subscribe()

	frame, _ := hotkeybox.EncodeFrame(hotkeybox.CmdSetHotkey, []byte{0, 1, 1, 4, 0, 0, 0, 10})
	frame = append(frame, hotkeybox.EncodeResponse("x")...)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/raw", bytes.NewReader(frame)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code %d", rec.Code)
	}

	var msgs []string
	for range frame {
		s.Box.Tick()
	}
	for len(events) > 0 {
		if r, ok := (<-events).(hotkeybox.Response); ok {
			msgs = append(msgs, r.Message)
		}
	}
	if len(msgs) != 2 || msgs[0] != hotkeybox.MsgSuccess || msgs[1] != hotkeybox.MsgUnknownCommand {
		t.Errorf("responses %q", msgs)
	}
}

func TestEvents(t *testing.T) {
	s, monitor := testServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for monitor.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("websocket never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	monitor.Publish(hid.Event{Channel: hid.NameKeyboard, Action: hid.ActionPress, Code: 4})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string    `json:"type"`
		Data hid.Event `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "key" || msg.Data.Code != 4 || msg.Data.Channel != hid.NameKeyboard {
		t.Errorf("received %+v", msg)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for monitor.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription leaked after client left")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEnvelope(t *testing.T) {
	if m := envelope(hotkeybox.Response{Message: "success"}); m.Type != "response" {
		t.Errorf("response envelope type %q", m.Type)
	}
	if m := envelope(42); m.Type != "unknown" {
		t.Errorf("unknown envelope type %q", m.Type)
	}
}
