// Package snapshot writes the designated worker's slab to disk between
// generations.
package snapshot

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Frame is one worker's real columns at a generation, column-major.
type Frame struct {
	Gen    int
	Width  int
	Height int
	Cells  []uint8
}

// Writer persists frames in one file format.
type Writer interface {
	Ext() string
	// WriteFrame stores f and returns the path written.
	WriteFrame(f Frame) (string, error)
}

// Options configures writers built from the registry.
type Options struct {
	Dir   string
	Scale int // pixels per cell for image formats
}

// Factory constructs a Writer.
type Factory func(opts Options) Writer

var formats = map[string]Factory{}

// Register adds a format factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	formats[name] = f
}

// Formats lists the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds writers for a comma-separated list of format names.
func New(list string, opts Options) ([]Writer, error) {
	var out []Writer
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		factory, ok := formats[name]
		if !ok {
			return nil, fmt.Errorf("unknown snapshot format %q (have %s)", name, strings.Join(Formats(), ", "))
		}
		out = append(out, factory(opts))
	}
	return out, nil
}

// Path names the snapshot file for a generation.
func Path(dir string, gen int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("life_%06d.%s", gen, ext))
}
