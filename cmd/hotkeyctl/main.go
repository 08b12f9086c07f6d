// Command hotkeyctl talks to a hotkey box over a serial link.
//
//	hotkeyctl [-dev port] set <index> <keyboard|consumer|system> <delay_ms> <code>...
//	hotkeyctl [-dev port] run <index>
//	hotkeyctl [-dev port] list
//	hotkeyctl [-dev port] load [-watch] <presets.toml|presets.yaml>
//	hotkeyctl ports
//	hotkeyctl presets <dir>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/solar3s/gohotkey/hotkeybox"
	"github.com/solar3s/gohotkey/presets"
)

var (
	device  = flag.String("dev", "", "path to serial port, if empty it will be searched automatically")
	baud    = flag.Int("baud", hotkeybox.DefaultSerialConfig.BaudRate, "serial baud rate")
	timeout = flag.Duration("timeout", hotkeybox.DefaultTimeout, "response timeout")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hotkeyctl [flags] <set|run|list|load|ports|presets> [args]")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if cmd == "ports" {
		ports, err := hotkeybox.Ports()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}
	if cmd == "presets" {
		if len(args) != 1 {
			usage()
		}
		infos, err := presets.List(args[0])
		if err != nil {
			log.Fatal(err)
		}
		for _, i := range infos {
			fmt.Printf("%s\t%s\n", i, i.ModTime.Format("2006-01-02 15:04:05"))
		}
		return
	}

	conn, err := connect()
	if err != nil {
		log.Fatal("error connecting to box: ", err)
	}
	defer conn.Close()
	client := hotkeybox.NewClient(conn)

	switch cmd {
	case "set":
		err = set(client, args)
	case "run":
		err = run(client, args)
	case "list":
		var msg string
		msg, err = client.ListHotkeys()
		if err == nil {
			fmt.Println(msg)
		}
	case "load":
		err = load(client, args)
	default:
		usage()
	}
	if err != nil {
		conn.Close()
		log.Fatal(err)
	}
}

func connect() (*hotkeybox.SerialConnection, error) {
	mode := *hotkeybox.DefaultSerialConfig
	mode.BaudRate = *baud
	if *device == "" {
		return hotkeybox.FindSerial(&mode)
	}
	port, cfg, err := hotkeybox.OpenPortName(*device, &mode)
	if err != nil {
		return nil, err
	}
	conn := hotkeybox.NewSerial(port, cfg, *device)
	conn.ReadTimeout = *timeout
	conn.WriteTimeout = *timeout
	conn.Start()
	return conn, nil
}

func set(client *hotkeybox.Client, args []string) error {
	if len(args) < 4 {
		return errors.New("usage: set <index> <type> <delay_ms> <code>...")
	}
	h := presets.Hotkey{}
	var err error
	if h.Index, err = strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err = h.Type.UnmarshalText([]byte(args[1])); err != nil {
		return err
	}
	if h.DelayMs, err = strconv.Atoi(args[2]); err != nil {
		return fmt.Errorf("delay: %w", err)
	}
	for _, a := range args[3:] {
		c, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return fmt.Errorf("code %q: %w", a, err)
		}
		h.Codes = append(h.Codes, int(c))
	}
	return apply(client, []presets.Hotkey{h})
}

func run(client *hotkeybox.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: run <index>")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	msg, err := client.RunHotkey(index)
	if err != nil {
		return err
	}
	fmt.Println(msg)

	// wait for release, it can take up to MaxDelayMs
	t0 := time.Now()
	for time.Since(t0) < hotkeybox.MaxDelayMs*time.Millisecond+*timeout {
		msg, err = client.ReadResponse()
		if err == nil {
			fmt.Println(msg)
			return nil
		}
	}
	return fmt.Errorf("no completion notice: %w", err)
}

func load(client *hotkeybox.Client, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	watch := fs.Bool("watch", false, "re-apply the presets each time the file changes")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: load [-watch] <file>")
	}
	path := fs.Arg(0)

	hotkeys, err := presets.Load(path)
	if err != nil {
		return err
	}
	if err = apply(client, hotkeys); err != nil || !*watch {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	log.Printf("watching \"%s\", press <Ctrl-C> to quit", path)
	err = presets.Watch(ctx, path, func(hotkeys []presets.Hotkey, err error) {
		if err != nil {
			log.Println("in presets.Watch:", err)
			return
		}
		if err := apply(client, hotkeys); err != nil {
			log.Println(err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func apply(client *hotkeybox.Client, hotkeys []presets.Hotkey) error {
	for _, h := range hotkeys {
		rec, err := h.Record()
		if err != nil {
			return fmt.Errorf("slot %d: %w", h.Index, err)
		}
		msg, err := client.SetHotkey(h.Index, rec)
		if err != nil {
			return fmt.Errorf("slot %d: %w", h.Index, err)
		}
		log.Printf("slot %d (%s %v, %dms): %s", h.Index, rec.KeyType, rec.Codes(), rec.DelayMs, msg)
	}
	return nil
}
