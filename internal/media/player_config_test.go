package media

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testRegistry(goos string) *PlayerRegistry {
	return &PlayerRegistry{
		goos: goos,
		players: map[string]PlayerDefinition{
			"mpv": {
				Description: "Test player",
				Platforms:   []string{"darwin", "linux", "windows"},
				Args:        []string{"--really-quiet"},
			},
			"vlc": {
				Description: "VLC player",
				Platforms:   []string{"darwin", "linux"},
				Args:        []string{"--play-and-exit"},
				ArgsDarwin:  []string{"--intf", "macosx"},
			},
		},
	}
}

func TestPlayerRegistry_Args(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		player  string
		want    []string
		wantErr bool
	}{
		{"generic args", "linux", "mpv", []string{"--really-quiet", "clip.mp4"}, false},
		{"platform args win", "darwin", "vlc", []string{"--intf", "macosx", "clip.mp4"}, false},
		{"fallback to generic", "linux", "vlc", []string{"--play-and-exit", "clip.mp4"}, false},
		{"unsupported platform", "windows", "vlc", nil, true},
		{"unknown player", "linux", "totem", []string{"clip.mp4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testRegistry(tt.goos).Args(tt.player, "clip.mp4")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Args() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayerRegistry_ArgsDoesNotAliasDefinition(t *testing.T) {
	r := testRegistry("linux")
	first, _ := r.Args("mpv", "a.mp4")
	second, _ := r.Args("mpv", "b.mp4")

	if first[len(first)-1] != "a.mp4" || second[len(second)-1] != "b.mp4" {
		t.Errorf("argument lists share storage: %v %v", first, second)
	}
}

func TestNewPlayerRegistry_Embedded(t *testing.T) {
	r, err := NewPlayerRegistry()
	if err != nil {
		t.Fatalf("NewPlayerRegistry() error = %v", err)
	}
	for _, name := range []string{"mpv", "vlc", "iina"} {
		if _, ok := r.players[name]; !ok {
			t.Errorf("embedded definitions missing %s", name)
		}
	}
}

func TestPlayerRegistry_LoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.toml")
	content := `
[players.mpv]
description = "custom mpv"
platforms = ["linux"]
args = ["--loop-file=inf"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	r := testRegistry("linux")
	if err := r.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	got, _ := r.Args("mpv", "clip.mp4")
	if !reflect.DeepEqual(got, []string{"--loop-file=inf", "clip.mp4"}) {
		t.Errorf("override not applied: %v", got)
	}

	if err := r.LoadOverrides(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing override file")
	}
}

func TestPlayerRegistry_FindAvailablePlayer(t *testing.T) {
	r := testRegistry("linux")
	if got := r.FindAvailablePlayer([]string{"definitely-not-a-player-xyz"}); got != "" {
		t.Errorf("FindAvailablePlayer() = %q, want empty", got)
	}
}
