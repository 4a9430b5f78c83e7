package media

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/plugins"
	"github.com/pders01/reel/internal/validation"
)

var (
	// ErrUnplayable means a URI is not something a video player can open.
	ErrUnplayable = errors.New("media not playable")
	// ErrNoPlayer means none of the configured players is installed.
	ErrNoPlayer = errors.New("no video player found")
)

const resolveTimeout = 10 * time.Second

// Launcher builds media handles for feed items: the URI is resolved through
// the plugin registry, validated, classified, and bound to a player.
type Launcher struct {
	player    string
	headless  bool
	registry  *PlayerRegistry
	detector  *TypeDetector
	validator *validation.URLValidator
	resolvers *plugins.Registry
}

func NewLauncher(cfg *config.Config, resolvers *plugins.Registry) (*Launcher, error) {
	registry, err := NewPlayerRegistry()
	if err != nil {
		return nil, err
	}
	detector, err := NewTypeDetector()
	if err != nil {
		return nil, err
	}

	validator := validation.NewMediaURLValidator()
	if cfg.Source.Permissive {
		validator = validator.Permissive()
	}

	l := &Launcher{
		headless:  cfg.Media.Headless,
		registry:  registry,
		detector:  detector,
		validator: validator,
		resolvers: resolvers,
	}

	var players config.MediaPlayers
	switch runtime.GOOS {
	case "darwin":
		players = cfg.Media.Darwin
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Linux
	}
	if !l.headless {
		l.player = registry.FindAvailablePlayer(players.Video)
	}
	return l, nil
}

// Player returns the chosen player command, or "" when headless or none
// was found.
func (l *Launcher) Player() string { return l.player }

// NewHandle returns a handle for uri. Failures wrap ErrUnplayable or
// ErrNoPlayer.
func (l *Launcher) NewHandle(uri string) (Handle, error) {
	stream := uri
	if l.resolvers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		info, err := l.resolvers.Resolve(ctx, uri)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: resolving %s: %v", ErrUnplayable, uri, err)
		}
		stream = info.StreamURL
	}

	normalized, err := l.validator.ValidateAndNormalize(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnplayable, err)
	}

	switch kind := l.detector.DetectType(normalized); kind {
	case TypeAudio, TypeImage:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnplayable, normalized, kind)
	}

	if l.headless {
		return &HeadlessHandle{URI: normalized}, nil
	}
	if l.player == "" {
		return nil, ErrNoPlayer
	}

	args, err := l.registry.Args(l.player, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPlayer, err)
	}
	debuglog.WithFields(debuglog.Fields{"player": l.player}).Debugf("handle for %s", normalized)
	return NewProcessHandle(l.player, args), nil
}
