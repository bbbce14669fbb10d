package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := Default()
	want.Server.Addr = ":9999"
	want.Render.Quality = "high"
	want.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Server.Addr != ":9999" || got.Render.Quality != "high" || got.FFmpeg != want.FFmpeg {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file must error so callers can fall back to flags")
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	body := []byte("server:\n  addr: \":7000\"\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Server.Addr != ":7000" {
		t.Fatalf("expected override, got %s", got.Server.Addr)
	}
	if got.Render.FPS != Default().Render.FPS {
		t.Fatal("unset fields must keep defaults")
	}
}
