package app

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the command-line parameters shared by the run and view
// commands.
type Config struct {
	NP          int
	Threads     int
	Out         string
	Formats     string
	Scale       int
	Chart       string
	DialTimeout time.Duration
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{NP: 1, Threads: 1, Out: ".", Formats: "vtk", Scale: 4, DialTimeout: 30 * time.Second}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.NP, "np", c.NP, "in-process workers when no HALO_SIZE is set")
	fs.IntVar(&c.Threads, "threads", c.Threads, "step goroutines per worker")
	fs.StringVar(&c.Out, "out", c.Out, "snapshot directory")
	fs.StringVar(&c.Formats, "formats", c.Formats, "comma-separated snapshot formats")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per cell")
	fs.StringVar(&c.Chart, "chart", c.Chart, "population chart path (empty disables)")
	fs.DurationVar(&c.DialTimeout, "dial-timeout", c.DialTimeout, "time to wait for TCP neighbours")
}

// Identity is a worker's place in a multi-process ring.
type Identity struct {
	Rank  int
	Size  int
	Peers []string
}

// ErrIdentity reports inconsistent process identity variables.
var ErrIdentity = errors.New("app: bad worker identity")

// IdentityFromEnv reads HALO_RANK, HALO_SIZE and HALO_PEERS through getenv.
// The second result is false when HALO_SIZE is unset, meaning the process
// should run an in-process cluster instead.
func IdentityFromEnv(getenv func(string) string) (Identity, bool, error) {
	rawSize := strings.TrimSpace(getenv("HALO_SIZE"))
	if rawSize == "" {
		return Identity{}, false, nil
	}
	size, err := strconv.Atoi(rawSize)
	if err != nil || size < 1 {
		return Identity{}, false, fmt.Errorf("%w: HALO_SIZE=%q", ErrIdentity, rawSize)
	}
	rawRank := strings.TrimSpace(getenv("HALO_RANK"))
	rank, err := strconv.Atoi(rawRank)
	if err != nil || rank < 0 || rank >= size {
		return Identity{}, false, fmt.Errorf("%w: HALO_RANK=%q of %d", ErrIdentity, rawRank, size)
	}
	var peers []string
	for _, p := range strings.Split(getenv("HALO_PEERS"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			peers = append(peers, p)
		}
	}
	if len(peers) != size {
		return Identity{}, false, fmt.Errorf("%w: %d peers for %d workers", ErrIdentity, len(peers), size)
	}
	return Identity{Rank: rank, Size: size, Peers: peers}, true, nil
}
