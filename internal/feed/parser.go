package feed

import (
	"fmt"
	"hash/fnv"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/pders01/reel/internal/storage"
)

var videoTagRegex = regexp.MustCompile(`<(?:video|source)[^>]+src=["']([^"']+)["']`)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".m3u8": true,
	".mpd":  true,
}

// Parser turns RSS/Atom documents into videos. Only items that carry a
// video (enclosure, media:content, or an inline <video> tag) are kept.
type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

func (p *Parser) Parse(reader io.Reader, feedURL string) ([]*storage.Video, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %v", ErrDecode, err)
	}

	channel := feed.Title
	if channel == "" {
		channel = feedURL
	}
	avatar := ""
	if feed.Image != nil {
		avatar = feed.Image.URL
	}
	userID := hashID(feedURL)

	videos := make([]*storage.Video, 0, len(feed.Items))
	for _, item := range feed.Items {
		media := extractVideoURL(item)
		if media == "" {
			continue
		}

		username := channel
		if item.Author != nil && item.Author.Name != "" {
			username = item.Author.Name
		}
		topic := ""
		if len(item.Categories) > 0 {
			topic = item.Categories[0]
		}
		thumbnail := ""
		if item.Image != nil {
			thumbnail = item.Image.URL
		}
		guid := item.GUID
		if guid == "" {
			guid = media
		}

		videos = append(videos, &storage.Video{
			ID:            hashID(feedURL + "\x00" + guid),
			UserID:        userID,
			Username:      username,
			ProfilePicURL: avatar,
			Description:   strings.TrimSpace(item.Title),
			Topic:         topic,
			Video:         media,
			Thumbnail:     thumbnail,
		})
	}

	return videos, nil
}

func extractVideoURL(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure.URL != "" && isVideo(enclosure.Type, enclosure.URL) {
			return enclosure.URL
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		if u := mediaContentURL(media["content"]); u != "" {
			return u
		}
		for _, group := range media["group"] {
			if u := mediaContentURL(group.Children["content"]); u != "" {
				return u
			}
		}
	}

	for _, html := range []string{item.Content, item.Description} {
		if match := videoTagRegex.FindStringSubmatch(html); len(match) > 1 {
			return match[1]
		}
	}
	return ""
}

func mediaContentURL(contents []ext.Extension) string {
	for _, c := range contents {
		u := c.Attrs["url"]
		if u == "" {
			continue
		}
		if c.Attrs["medium"] == "video" || isVideo(c.Attrs["type"], u) {
			return u
		}
	}
	return ""
}

func isVideo(mimeType, rawURL string) bool {
	mimeType = strings.ToLower(mimeType)
	if strings.HasPrefix(mimeType, "video/") ||
		mimeType == "application/x-mpegurl" ||
		mimeType == "application/vnd.apple.mpegurl" {
		return true
	}
	u := rawURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return videoExtensions[strings.ToLower(path.Ext(u))]
}

// hashID derives a stable positive id from s.
func hashID(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & (1<<63 - 1))
}
