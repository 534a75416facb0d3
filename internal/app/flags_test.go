package app

import (
	"errors"
	"flag"
	"slices"
	"testing"
	"time"
)

func TestBindParsesFlags(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("life", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-np", "3", "-formats", "vtk,png", "-dial-timeout", "2s", "scenario.txt"}); err != nil {
		t.Fatal(err)
	}
	if cfg.NP != 3 || cfg.Formats != "vtk,png" || cfg.DialTimeout != 2*time.Second {
		t.Fatalf("parsed %+v", cfg)
	}
	if cfg.Out != "." || cfg.Scale != 4 || cfg.Threads != 1 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if fs.Arg(0) != "scenario.txt" {
		t.Fatalf("positional argument = %q", fs.Arg(0))
	}
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestIdentityFromEnv(t *testing.T) {
	id, ok, err := IdentityFromEnv(env(map[string]string{
		"HALO_SIZE":  "2",
		"HALO_RANK":  "1",
		"HALO_PEERS": "10.0.0.1:7000, 10.0.0.2:7000",
	}))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if id.Rank != 1 || id.Size != 2 || !slices.Equal(id.Peers, []string{"10.0.0.1:7000", "10.0.0.2:7000"}) {
		t.Fatalf("identity = %+v", id)
	}

	if _, ok, err := IdentityFromEnv(env(nil)); ok || err != nil {
		t.Fatalf("unset HALO_SIZE: ok=%v err=%v", ok, err)
	}

	tests := []map[string]string{
		{"HALO_SIZE": "zero"},
		{"HALO_SIZE": "2", "HALO_RANK": "2", "HALO_PEERS": "a:1,b:1"},
		{"HALO_SIZE": "2", "HALO_RANK": "0", "HALO_PEERS": "a:1"},
	}
	for _, vars := range tests {
		if _, _, err := IdentityFromEnv(env(vars)); !errors.Is(err, ErrIdentity) {
			t.Fatalf("%v: err = %v, want ErrIdentity", vars, err)
		}
	}
}
