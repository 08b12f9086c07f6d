// Package presets reads hotkey definitions from TOML or YAML files so a
// whole set of slots can be written to a box in one go.
//
// TOML:
//
//	[[hotkey]]
//	index = 0
//	type = "keyboard"
//	codes = [4, 5]
//	delay_ms = 100
//
// YAML:
//
//	hotkeys:
//	  - index: 0
//	    type: keyboard
//	    codes: [4, 5]
//	    delay_ms: 100
package presets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/solar3s/gohotkey/hotkeybox"
	"go.yaml.in/yaml/v3"
)

type Hotkey struct {
	Index   int               `toml:"index" yaml:"index"`
	Type    hotkeybox.KeyType `toml:"type" yaml:"type"`
	Codes   []int             `toml:"codes" yaml:"codes"`
	DelayMs int               `toml:"delay_ms" yaml:"delay_ms"`
}

type File struct {
	Hotkeys []Hotkey `toml:"hotkey" yaml:"hotkeys"`
}

// Record converts h, checking every field against the box limits.
func (h Hotkey) Record() (r hotkeybox.Record, err error) {
	if !hotkeybox.ValidIndex(h.Index) {
		return r, &hotkeybox.ValidationError{Field: "index", Value: h.Index}
	}
	if len(h.Codes) > hotkeybox.MaxKeys {
		return r, &hotkeybox.ValidationError{Field: "key count", Value: len(h.Codes)}
	}
	for i, c := range h.Codes {
		if c < 0 || c > 0xff {
			return r, fmt.Errorf("code #%d: %d is not a byte", i, c)
		}
		r.KeyCodes[i] = byte(c)
	}
	if h.DelayMs < 0 || h.DelayMs > hotkeybox.MaxDelayMs {
		return r, &hotkeybox.ValidationError{Field: "delay", Value: h.DelayMs}
	}
	r.KeyType = h.Type
	r.KeyCount = byte(len(h.Codes))
	r.DelayMs = uint16(h.DelayMs)
	return r, r.Validate()
}

// Load decodes path according to its extension (.toml, .yaml or .yml)
// and validates every hotkey.
func Load(path string) ([]Hotkey, error) {
	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported preset format \"%s\"", ext)
	}

	seen := make(map[int]bool)
	for i, h := range f.Hotkeys {
		if _, err := h.Record(); err != nil {
			return nil, fmt.Errorf("hotkey #%d: %w", i, err)
		}
		if seen[h.Index] {
			return nil, fmt.Errorf("hotkey #%d: slot %d defined twice", i, h.Index)
		}
		seen[h.Index] = true
	}
	return f.Hotkeys, nil
}
