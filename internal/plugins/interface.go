package plugins

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// MediaInfo is what a plugin learned about a media URI
type MediaInfo struct {
	// OriginalURL is the URI as it appeared in the feed
	OriginalURL string
	// StreamURL is what the player should open
	StreamURL string
	// Title is an optional human-readable name for the stream
	Title string
	// Metadata carries plugin-specific details
	Metadata map[string]string
}

// Plugin rewrites host-specific media URIs into something a player can open
type Plugin interface {
	// Name returns the plugin name for identification
	Name() string

	// CanHandle returns true if this plugin can resolve the given URI
	CanHandle(uri string) bool

	// Resolve returns the playable stream for uri. It may perform HTTP
	// requests with client.
	Resolve(ctx context.Context, uri string, client *http.Client) (*MediaInfo, error)

	// Priority returns the priority of this plugin (higher = higher priority)
	Priority() int
}

// Registry manages all registered plugins
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	client  *http.Client
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		plugins: make([]Plugin, 0),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *Registry) Register(plugin Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, plugin)
}

// FindPlugin returns the highest-priority plugin that can handle uri
func (r *Registry) FindPlugin(uri string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Plugin
	highest := -1
	for _, plugin := range r.plugins {
		if plugin.CanHandle(uri) && plugin.Priority() > highest {
			best = plugin
			highest = plugin.Priority()
		}
	}
	return best
}

// Resolve runs the best plugin for uri. Without a plugin the URI is
// returned unchanged.
func (r *Registry) Resolve(ctx context.Context, uri string) (*MediaInfo, error) {
	plugin := r.FindPlugin(uri)
	if plugin == nil {
		return &MediaInfo{
			OriginalURL: uri,
			StreamURL:   uri,
			Metadata:    make(map[string]string),
		}, nil
	}
	return plugin.Resolve(ctx, uri, r.client)
}

func (r *Registry) ListPlugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}
