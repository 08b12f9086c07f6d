package hotkeybox

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/rkjdid/util"
	"github.com/solar3s/gohotkey/hid"
)

var ErrInjectFull = errors.New("inject queue is full")

//go:generate stringer -type=State
type State int

const (
	Disconnected State = iota
	Connected
	WriteError
	ReadError
	NilBox
)

// Link is the serial side of the box. TryReadByte must not block.
type Link interface {
	TryReadByte() (byte, bool)
	Write(b []byte) error
	State() State
}

// Publisher receives every response and key event, for monitoring.
type Publisher interface {
	Publish(v interface{})
}

type Config struct {
	TickInterval util.Duration // Scheduler period, one input byte is handled per tick
	Verbose      bool          // Log every frame and response
}

var DefaultConfig = Config{
	TickInterval: util.Duration(time.Millisecond),
}

// Stats counts frames seen by the decoder.
type Stats struct {
	Frames         uint64 `json:"frames"`
	ChecksumErrors uint64 `json:"checksum_errors"`
	Overflows      uint64 `json:"overflows"`
	Responses      uint64 `json:"responses"`
}

type Snapshot struct {
	Time  time.Time `json:"time"`
	State State     `json:"state"`
	Task  Task      `json:"task"`
	Stats Stats     `json:"stats"`
}

// Option configures a Box.
type Option func(*Box)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(b *Box) {
		b.clock = c
	}
}

// WithMonitor publishes responses and key events to p.
func WithMonitor(p Publisher) Option {
	return func(b *Box) {
		b.monitor = p
	}
}

// Box is the macro-key device: it decodes frames coming in on its Link,
// dispatches them, and drives the hotkey runner. All of its state is
// only touched from Tick, under the box lock.
type Box struct {
	sync.Mutex
	link       Link
	config     *Config
	clock      Clock
	monitor    Publisher
	decoder    Decoder
	store      *Store
	runner     *Runner
	dispatcher *Dispatcher
	stats      Stats
	injected   chan byte
}

func NewBox(link Link, mem Storage, channels hid.Channels, cfg *Config, opts ...Option) *Box {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	b := &Box{
		link:     link,
		config:   cfg,
		injected: make(chan byte, 4*FrameMax),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock == nil {
		b.clock = NewSystemClock()
	}
	b.store = NewStore(mem)
	b.runner = NewRunner(channels, b.clock)
	b.dispatcher = NewDispatcher(b.store, b.runner)
	b.dispatcher.verbose = cfg.Verbose
	return b
}

// Run ticks the box every TickInterval until ctx is done.
func (b *Box) Run(ctx context.Context) error {
	interval := time.Duration(b.config.TickInterval)
	if interval <= 0 {
		interval = time.Duration(DefaultConfig.TickInterval)
	}
	log.Println("device ready")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.Tick()
		}
	}
}

// Tick handles at most one input byte, then checks whether
// the active hotkey is due for release.
func (b *Box) Tick() {
	b.Lock()
	defer b.Unlock()

	if c, ok := b.next(); ok {
		b.feed(c)
	}
	if b.runner.Poll() {
		b.respond(hotkeyComplete())
	}
}

// Inject queues raw request bytes as if they came in on the link.
func (b *Box) Inject(p []byte) (int, error) {
	for i, c := range p {
		select {
		case b.injected <- c:
		default:
			return i, ErrInjectFull
		}
	}
	return len(p), nil
}

// Relink swaps the link the box talks on, returning the previous one.
func (b *Box) Relink(link Link) Link {
	b.Lock()
	old := b.link
	b.link = link
	b.decoder.Reset()
	b.Unlock()
	return old
}

// State returns the state of the link.
func (b *Box) State() State {
	if b == nil {
		return NilBox
	}
	b.Lock()
	defer b.Unlock()
	return b.state()
}

// Snapshot retrieves the state of b at a given time.
func (b *Box) Snapshot() Snapshot {
	s := Snapshot{Time: time.Now(), State: b.State()}
	if s.State == NilBox {
		return s
	}
	b.Lock()
	s.Task = b.runner.Task()
	s.Stats = b.stats
	b.Unlock()
	return s
}

func (b *Box) Config() Config {
	return *b.config
}

func (b *Box) state() State {
	if b.link == nil {
		return Disconnected
	}
	return b.link.State()
}

func (b *Box) next() (byte, bool) {
	select {
	case c := <-b.injected:
		return c, true
	default:
	}
	if b.link == nil {
		return 0, false
	}
	return b.link.TryReadByte()
}

func (b *Box) feed(c byte) {
	f, err := b.decoder.Feed(c)
	switch {
	case errors.Is(err, ErrChecksum):
		b.stats.ChecksumErrors++
		log.Println(err)
		b.respond(response(StatusFraming, MsgChecksum))
	case errors.Is(err, ErrOverflow):
		b.stats.Overflows++
		log.Println(err)
		b.respond(response(StatusFraming, MsgOverflow))
	case f != nil:
		b.stats.Frames++
		b.respond(b.dispatcher.Dispatch(*f))
	}
}

func (b *Box) respond(r Response) {
	b.stats.Responses++
	if b.config.Verbose || r.Failed() {
		log.Printf("response (%s): %s", r.Status, r.Message)
	}
	if b.monitor != nil {
		b.monitor.Publish(r)
	}
	if b.link == nil {
		return
	}
	if err := b.link.Write(r.Frame()); err != nil {
		log.Println("in link.Write:", err)
	}
}
