package presets

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info summarizes a preset file found by List.
type Info struct {
	Slots   []int
	ModTime time.Time
	relPath string
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%d hotkeys, slots %v)", i.Path(), len(i.Slots), i.Slots)
}

// Path of the file, relative to the listed directory.
func (i Info) Path() string {
	return i.relPath
}

// List returns the valid preset files of dir. Files that fail
// to load are logged and skipped.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		hk, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Printf("error parsing preset: %s", err)
			continue
		}
		info := Info{relPath: e.Name()}
		if fi, err := e.Info(); err == nil {
			info.ModTime = fi.ModTime()
		}
		for _, h := range hk {
			info.Slots = append(info.Slots, h.Index)
		}
		sort.Ints(info.Slots)
		infos = append(infos, info)
	}
	return infos, nil
}

func supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}
