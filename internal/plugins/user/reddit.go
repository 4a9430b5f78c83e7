package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pders01/reel/internal/plugins"
)

// RedditPlugin turns reddit video links into their HLS playlists.
// v.redd.it links are rewritten directly; post permalinks are looked up
// through the post's .json listing.
type RedditPlugin struct{}

func NewRedditPlugin() *RedditPlugin {
	return &RedditPlugin{}
}

func (p *RedditPlugin) Name() string {
	return "reddit"
}

func (p *RedditPlugin) CanHandle(uri string) bool {
	return strings.Contains(uri, "://v.redd.it/") ||
		(strings.Contains(uri, "reddit.com/r/") && strings.Contains(uri, "/comments/"))
}

func (p *RedditPlugin) Priority() int {
	return 50
}

func (p *RedditPlugin) Resolve(ctx context.Context, rawURL string, client *http.Client) (*plugins.MediaInfo, error) {
	if strings.Contains(rawURL, "://v.redd.it/") {
		return resolveVReddit(rawURL)
	}
	return resolvePost(ctx, rawURL, client)
}

func resolveVReddit(rawURL string) (*plugins.MediaInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return nil, fmt.Errorf("no video id in %s", rawURL)
	}
	id := segments[0]

	stream := rawURL
	if len(segments) == 1 {
		stream = "https://v.redd.it/" + id + "/HLSPlaylist.m3u8"
	}
	return &plugins.MediaInfo{
		OriginalURL: rawURL,
		StreamURL:   stream,
		Metadata: map[string]string{
			"plugin":   "reddit",
			"video_id": id,
		},
	}, nil
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				Subreddit   string `json:"subreddit"`
				SecureMedia *struct {
					RedditVideo *struct {
						HLSURL      string `json:"hls_url"`
						FallbackURL string `json:"fallback_url"`
					} `json:"reddit_video"`
				} `json:"secure_media"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func resolvePost(ctx context.Context, rawURL string, client *http.Client) (*plugins.MediaInfo, error) {
	endpoint := strings.TrimSuffix(strings.SplitN(rawURL, "?", 2)[0], "/") + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "reel/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching post: HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading post: %w", err)
	}
	var listings []listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("decoding post: %w", err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return nil, fmt.Errorf("post %s has no data", rawURL)
	}

	post := listings[0].Data.Children[0].Data
	if post.SecureMedia == nil || post.SecureMedia.RedditVideo == nil {
		return nil, fmt.Errorf("post %s has no reddit video", rawURL)
	}
	stream := post.SecureMedia.RedditVideo.HLSURL
	if stream == "" {
		stream = post.SecureMedia.RedditVideo.FallbackURL
	}

	return &plugins.MediaInfo{
		OriginalURL: rawURL,
		StreamURL:   stream,
		Title:       post.Title,
		Metadata: map[string]string{
			"plugin":    "reddit",
			"subreddit": post.Subreddit,
		},
	}, nil
}

// RegisterAll adds every bundled plugin to registry.
func RegisterAll(registry *plugins.Registry) {
	registry.Register(NewRedditPlugin())
}
