package hotkeybox

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/rkjdid/util"
)

type Watcher struct {
	box    *Box
	cfg    *WatcherConfig
	open   func() (*SerialConnection, error)
	stopCh chan struct{}
	wg     sync.WaitGroup
}

type WatcherConfig struct {
	ConnPollRate util.Duration
	Verbose      bool
}

var DefaultWatcherConfig = WatcherConfig{
	ConnPollRate: util.Duration(time.Second),
}

// NewWatcher returns a Watcher which re-opens box's link through open
// whenever it goes into an error state.
func NewWatcher(box *Box, cfg *WatcherConfig, open func() (*SerialConnection, error)) *Watcher {
	if cfg == nil {
		cfg = &DefaultWatcherConfig
	}
	return &Watcher{
		box:  box,
		cfg:  cfg,
		open: open,
	}
}

func (w *Watcher) Stop() {
	if w.stopCh == nil {
		return
	}
	log.Println("stopping conn watcher")
	close(w.stopCh)
	w.wg.Wait()
	w.stopCh = nil
}

func (w *Watcher) WatchConn() {
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	go func(stop chan struct{}) {
		defer w.wg.Done()
		for {
			select {
			case <-time.After(time.Duration(w.cfg.ConnPollRate)):
			case <-stop:
				return
			}
			w.check()
		}
	}(w.stopCh)
}

// check replaces the box link if it isn't healthy, and reports
// whether the box is connected afterwards.
func (w *Watcher) check() bool {
	st := w.box.State()
	if st == Connected {
		return true
	}

	conn, err := w.open()
	if err != nil {
		if w.cfg.Verbose {
			log.Printf("link is %s, couldn't reopen: %s", st, err)
		}
		return false
	}
	conn.Start()
	old := w.box.Relink(conn)
	log.Printf("link was %s, reconnected to \"%s\"", st, conn.Path())
	if c, ok := old.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Println("in Close:", err)
		}
	}
	return true
}
