package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition defines how a video player is invoked
type PlayerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type PlayersConfig struct {
	Players map[string]PlayerDefinition `toml:"players"`
}

type PlayerRegistry struct {
	players map[string]PlayerDefinition
	goos    string
}

// NewPlayerRegistry loads the embedded definitions, then any overrides in
// ~/.config/reel/players.toml.
func NewPlayerRegistry() (*PlayerRegistry, error) {
	var config PlayersConfig
	if err := toml.Unmarshal(playersTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}

	registry := &PlayerRegistry{
		players: config.Players,
		goos:    runtime.GOOS,
	}
	if registry.players == nil {
		registry.players = make(map[string]PlayerDefinition)
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "reel", "players.toml")
		if _, statErr := os.Stat(path); statErr == nil {
			if err := registry.LoadOverrides(path); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

// LoadOverrides merges definitions from path, replacing built-ins by name.
func (r *PlayerRegistry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var user PlayersConfig
	if err := toml.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, def := range user.Players {
		r.players[name] = def
	}
	return nil
}

// Args returns the argument list for playing uri with the named player.
// Unknown players are invoked with the URI alone.
func (r *PlayerRegistry) Args(playerName, uri string) ([]string, error) {
	player, exists := r.players[playerName]
	if !exists {
		return []string{uri}, nil
	}

	supported := false
	for _, p := range player.Platforms {
		if p == r.goos {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%s not supported on %s", playerName, r.goos)
	}

	args := append([]string(nil), r.platformArgs(player)...)
	return append(args, uri), nil
}

func (r *PlayerRegistry) platformArgs(player PlayerDefinition) []string {
	switch r.goos {
	case "darwin":
		if len(player.ArgsDarwin) > 0 {
			return player.ArgsDarwin
		}
	case "linux":
		if len(player.ArgsLinux) > 0 {
			return player.ArgsLinux
		}
	case "windows":
		if len(player.ArgsWindows) > 0 {
			return player.ArgsWindows
		}
	}
	return player.Args
}

// FindAvailablePlayer returns the first candidate found on PATH.
func (r *PlayerRegistry) FindAvailablePlayer(candidates []string) string {
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}
