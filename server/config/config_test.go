package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if *cfg != *def {
		t.Fatalf("got %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":9090\"\ncode_length: 2\ndefault_max_players: 6\nmax_room_players: 3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.CodeLength != 4 {
		t.Fatalf("code_length = %d, want clamp to 4", cfg.CodeLength)
	}
	// The room cap can never sit below the default room size.
	if cfg.MaxRoomPlayers != 6 {
		t.Fatalf("max_room_players = %d, want raised to 6", cfg.MaxRoomPlayers)
	}
	// Unset fields keep their defaults.
	if cfg.DataDir != "data" || cfg.ReadTimeout != 15 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml should fail loudly")
	}
}
