package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/solar3s/gohotkey/config"
	"github.com/solar3s/gohotkey/hid"
	"github.com/solar3s/gohotkey/hotkeybox"
	"github.com/solar3s/gohotkey/web"
)

var (
	device   = flag.String("dev", "", "path to serial port the box listens on (overrides config)")
	usePty   = flag.Bool("pty", false, "listen on a new pseudo-terminal (overrides config)")
	rootPath = flag.String("root", "", "path to gohotkey's main directory (defaults to executable path)")
	cfgPath  = flag.String("config", "", "path to config (defaults to <root>/config.toml)")
	webAddr  = flag.String("web", "", "enable monitor web server on this address")
	verbose  = flag.Bool("v", false, "higher verbosity")
	version  = flag.Bool("version", false, "print version & exit")
)

func main() {
	flag.Parse()

	// print version & exit
	if *version {
		fmt.Printf("gohotkey %s\n", Version)
		os.Exit(0)
	}

	if *rootPath == "" {
		exe, err := os.Executable()
		if err != nil {
			log.Fatalf("couldn't get path to executable: %s", err)
		}
		*rootPath = filepath.Dir(exe)
	}
	if *cfgPath == "" {
		*cfgPath = filepath.Join(*rootPath, config.FileName)
	}

	cfg, created, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if created {
		log.Printf("created new config file \"%s\"", *cfgPath)
	}
	log.Printf("using config file: %s", *cfgPath)

	if *verbose {
		cfg.Box.Verbose = true
		cfg.Web.Verbose = true
		cfg.Watcher.Verbose = true
	}
	if *device != "" {
		cfg.Link.Device = *device
		cfg.Link.PTY = false
	}
	if *usePty {
		cfg.Link.PTY = true
	}
	if *webAddr != "" {
		cfg.Web.Enabled = true
		cfg.Web.ListenAddr = *webAddr
	}

	mem, closeStorage, err := cfg.Storage.Open(*rootPath)
	if err != nil {
		log.Fatalf("error opening %s storage: %s", cfg.Storage.Backend, err)
	}

	var conn *hotkeybox.SerialConnection
	switch {
	case cfg.Link.PTY:
		conn, err = hotkeybox.OpenPTY()
		if err != nil {
			log.Fatal("error opening pseudo-terminal: ", err)
		}
		log.Printf("listening on pseudo-terminal \"%s\"", conn.Path())
	case cfg.Link.Device != "":
		conn, err = openDevice(cfg)
		if err != nil {
			log.Fatal("error opening serial port: ", err)
		}
		log.Printf("listening on \"%s\"", conn.Path())
	default:
		log.Fatal("no link configured, use -dev or -pty")
	}
	conn.Start()

	monitor := hid.NewBroadcaster(0)
	channels := hid.Tee(hid.Logger(), monitor.Channels())
	box := hotkeybox.NewBox(conn, mem, channels, &cfg.Box, hotkeybox.WithMonitor(monitor))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		box.Run(ctx)
	}()

	var watcher *hotkeybox.Watcher
	if !cfg.Link.PTY {
		log.Printf("starting conn watcher (poll rate: %s)", cfg.Watcher.ConnPollRate)
		watcher = hotkeybox.NewWatcher(box, &cfg.Watcher, func() (*hotkeybox.SerialConnection, error) {
			return openDevice(cfg)
		})
		watcher.WatchConn()
	}

	if cfg.Web.Enabled {
		log.Printf("starting monitor on http://%s ...", cfg.Web.ListenAddr)
		srv := web.NewServer(&cfg.Web, box, monitor)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Fatal("http.ListenAndServe: ", err)
			}
		}()
	}

	// small delay to allow for fatal in ListenAndServe
	<-time.After(time.Millisecond * 500)
	log.Println("Press <Ctrl-C> to quit")

	trap := make(chan os.Signal, 1)
	signal.Notify(trap, os.Interrupt)
	<-trap
	fmt.Println()
	log.Println("quit received...")

	cleanExit := make(chan struct{})
	go func() {
		if watcher != nil {
			watcher.Stop()
		}
		cancel()
		<-done
		if link, ok := box.Relink(nil).(*hotkeybox.SerialConnection); ok && link != nil {
			link.Close()
		}
		if err := closeStorage(); err != nil {
			log.Println("in closeStorage:", err)
		}
		close(cleanExit)
	}()
	select {
	case <-time.After(time.Second * 10):
		log.Panicln("no clean exit after 10sec")
	case <-cleanExit:
	}
}

func openDevice(cfg *config.Config) (*hotkeybox.SerialConnection, error) {
	mode := cfg.Link.Serial
	port, mode2, err := hotkeybox.OpenPortName(cfg.Link.Device, &mode)
	if err != nil {
		return nil, err
	}
	return hotkeybox.NewSerial(port, mode2, cfg.Link.Device), nil
}
