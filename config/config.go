package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rkjdid/util"
	"github.com/solar3s/gohotkey/eeprom"
	"github.com/solar3s/gohotkey/hotkeybox"
	"github.com/solar3s/gohotkey/web"
	"go.bug.st/serial.v1"
)

const FileName = "config.toml"

var DefaultConfig = Config{
	Box:     hotkeybox.DefaultConfig,
	Storage: DefaultStorageConfig,
	Link:    DefaultLinkConfig,
	Watcher: hotkeybox.DefaultWatcherConfig,
	Web:     web.DefaultServerConfig,
}

type Config struct {
	Box     hotkeybox.Config
	Storage StorageConfig
	Link    LinkConfig
	Watcher hotkeybox.WatcherConfig
	Web     web.ServerConfig
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type StorageConfig struct {
	Backend      string        // "memory" or "sqlite"
	Path         string        // sqlite database, relative to root directory
	Size         int           // Capacity in bytes
	WriteTimeout util.Duration // Maximum wait for a write acknowledgement
	PollInterval util.Duration // Delay between two acknowledgement polls
	WriteCycle   util.Duration // Simulated write time of the memory backend
}

var DefaultStorageConfig = StorageConfig{
	Backend:      BackendSQLite,
	Path:         "hotkeys.db",
	Size:         eeprom.AT24C256Size,
	WriteTimeout: util.Duration(10 * time.Millisecond),
	PollInterval: util.Duration(100 * time.Microsecond),
	WriteCycle:   util.Duration(5 * time.Millisecond),
}

type LinkConfig struct {
	Device string // Serial port path, ignored when PTY is set
	PTY    bool   // Expose the box on a new pseudo-terminal
	Serial serial.Mode
}

var DefaultLinkConfig = LinkConfig{
	PTY:    true,
	Serial: *hotkeybox.DefaultSerialConfig,
}

// Load reads config at path. When path doesn't exist, it is
// created with default values and created is true.
func Load(path string) (cfg *Config, created bool, err error) {
	cfg = new(Config)
	*cfg = DefaultConfig
	err = util.ReadTomlFile(cfg, path)
	if err == nil {
		return cfg, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("error reading config \"%s\": %w", path, err)
	}

	*cfg = DefaultConfig
	if err = Save(cfg, path); err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("couldn't mkdir \"%s\": %w", filepath.Dir(path), err)
	}
	if err := util.WriteTomlFile(cfg, path); err != nil {
		return fmt.Errorf("error creating config \"%s\": %w", path, err)
	}
	return nil
}

// Open creates the persistent store described by s. Relative sqlite
// paths are resolved against root. closeFn must be called on exit.
func (s StorageConfig) Open(root string) (mem *eeprom.EEPROM, closeFn func() error, err error) {
	size := s.Size
	if size <= 0 {
		size = eeprom.AT24C256Size
	}
	opts := []eeprom.Option{
		eeprom.WithWriteTimeout(time.Duration(s.WriteTimeout)),
		eeprom.WithPollInterval(time.Duration(s.PollInterval)),
	}

	switch s.Backend {
	case BackendMemory:
		chip := eeprom.NewMemory(size, time.Duration(s.WriteCycle))
		return eeprom.New(chip, opts...), func() error { return nil }, nil
	case BackendSQLite, "":
		path := s.Path
		if path == "" {
			path = DefaultStorageConfig.Path
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		chip, err := eeprom.OpenSQLite(path, size)
		if err != nil {
			return nil, nil, err
		}
		return eeprom.New(chip, opts...), chip.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend \"%s\"", s.Backend)
}
