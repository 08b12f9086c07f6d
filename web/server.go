package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rkjdid/util"
	"github.com/solar3s/gohotkey/hid"
	"github.com/solar3s/gohotkey/hotkeybox"
)

type ServerConfig struct {
	Enabled      bool
	ListenAddr   string
	Verbose      bool
	PingInterval util.Duration // Websocket keep-alive period
}

var DefaultServerConfig = ServerConfig{
	ListenAddr:   "localhost:3637",
	PingInterval: util.Duration(30 * time.Second),
}

// Server exposes a running box for monitoring: its status snapshot, a
// websocket stream of key events and responses, and frame injection.
type Server struct {
	Config  *ServerConfig
	Box     *hotkeybox.Box
	Monitor *hid.Broadcaster

	router     *mux.Router
	wsUpgrader *websocket.Upgrader
}

// FrameRequest is the JSON body accepted by /frame.
type FrameRequest struct {
	Command byte  `json:"command"`
	Payload []int `json:"payload"`
}

// Message wraps everything sent on /events.
type Message struct {
	Type string      `json:"type"` // "key" or "response"
	Data interface{} `json:"data"`
}

func NewServer(cfg *ServerConfig, box *hotkeybox.Box, monitor *hid.Broadcaster) *Server {
	if cfg == nil {
		c := DefaultServerConfig
		cfg = &c
	}
	s := &Server{
		Config:  cfg,
		Box:     box,
		Monitor: monitor,
	}
	s.wsUpgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	verbose := s.Config.Verbose
	s.router = mux.NewRouter()

	// shh
	s.router.Handle("/favicon.ico", http.HandlerFunc(NilHandler))

	s.router.Handle("/status",
		Logger(http.HandlerFunc(s.Status), "status", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/events",
		Logger(http.HandlerFunc(s.Events), "ws-events", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/frame",
		Logger(http.HandlerFunc(s.Frame), "frame", verbose)).
		Methods("POST")
	s.router.Handle("/raw",
		Logger(http.HandlerFunc(s.Raw), "raw", verbose)).
		Methods("POST")
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the http server fails.
func (s *Server) ListenAndServe() error {
	httpServer := &http.Server{
		Handler:     s.router,
		Addr:        s.Config.ListenAddr,
		ReadTimeout: 4 * time.Second,
	}
	return httpServer.ListenAndServe()
}

// Status encodes the box snapshot as json to w.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Box.Snapshot())
}

// Frame builds a request frame from a json FrameRequest
// and queues it on the box input.
func (s *Server) Frame(w http.ResponseWriter, r *http.Request) {
	var req FrameRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "couldn't decode provided json", http.StatusUnprocessableEntity)
		return
	}
	payload := make([]byte, len(req.Payload))
	for i, v := range req.Payload {
		if v < 0 || v > 0xff {
			http.Error(w, fmt.Sprintf("payload[%d] = %d is not a byte", i, v), http.StatusUnprocessableEntity)
			return
		}
		payload[i] = byte(v)
	}
	frame, err := hotkeybox.EncodeFrame(req.Command, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.inject(w, frame)
}

// Raw queues the request body, as-is, on the box input.
func (s *Server) Raw(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, 4*hotkeybox.FrameMax))
	if err != nil {
		http.Error(w, "couldn't read body", http.StatusBadRequest)
		return
	}
	s.inject(w, b)
}

func (s *Server) inject(w http.ResponseWriter, b []byte) {
	n, err := s.Box.Inject(b)
	if err != nil {
		log.Printf("in Box.Inject: %s (%d/%d bytes queued)", err, n, len(b))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]int{"queued": n})
}

// Events upgrades to a websocket streaming key events and responses.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	if s.Monitor == nil {
		http.Error(w, "no monitor attached", http.StatusNotFound)
		return
	}
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("error subscribing to websocket:", err)
		return
	}

	id, events := s.Monitor.Subscribe()
	if s.Config.Verbose {
		log.Printf("websocket - subscription %s from %s", id, conn.RemoteAddr())
	}

	// drain client frames, so close messages get processed
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	go func(conn *websocket.Conn) {
		defer func() {
			s.Monitor.Unsubscribe(id)
			conn.Close()
			if s.Config.Verbose {
				log.Printf("websocket - lost connection to %s", conn.RemoteAddr())
			}
		}()
		interval := time.Duration(s.Config.PingInterval)
		if interval <= 0 {
			interval = time.Duration(DefaultServerConfig.PingInterval)
		}
		ping := time.NewTicker(interval)
		defer ping.Stop()
		for {
			select {
			case v, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(envelope(v)); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	}(conn)
}

func envelope(v interface{}) Message {
	switch v.(type) {
	case hid.Event:
		return Message{Type: "key", Data: v}
	case hotkeybox.Response:
		return Message{Type: "response", Data: v}
	}
	return Message{Type: "unknown", Data: v}
}
