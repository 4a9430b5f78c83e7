package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/reel/internal/feed"
	"github.com/pders01/reel/internal/search"
	"github.com/pders01/reel/internal/storage"
)

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Card.WordWrapMaxWidth
	if maxWidth <= 0 {
		maxWidth = 100
	}
	wordWrapWidth := a.contentWidth() - 6
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || a.rendererWidth != wordWrapWidth {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
		a.descriptions = make(map[int64]string)
	}
	return a.glamourRenderer, nil
}

// renderDescription renders the description as markdown, once per video
// and renderer width.
func (a *App) renderDescription(v *storage.Video) string {
	desc := strings.TrimSpace(v.Description)
	if limit := a.config.UI.Card.MaxDescriptionLength; limit > 0 {
		desc = truncateEnd(desc, limit)
	}
	if desc == "" {
		return ""
	}

	r, err := a.getRenderer()
	if err != nil {
		return desc
	}
	if cached, ok := a.descriptions[v.ID]; ok {
		return cached
	}
	out, err := r.Render(desc)
	if err != nil {
		out = desc
	}
	out = strings.Trim(out, "\n")
	a.descriptions[v.ID] = out
	return out
}

func playbackBadge(item feed.ItemView) string {
	switch {
	case item.Inert:
		return InertStyle.Render("✗ unavailable")
	case item.Playing:
		return PlayingStyle.Render("▶ playing")
	case item.Active:
		return PausedStyle.Render("❚❚ paused")
	default:
		return CounterStyle.Render("○")
	}
}

func (a *App) renderCard(item feed.ItemView, comments []*storage.Comment, width int) string {
	v := item.Video
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	byline := UsernameStyle.Render("@" + v.Username)
	if v.Topic != "" {
		byline += "  " + TopicStyle.Render("#"+v.Topic)
	}

	counters := CounterStyle.Render(fmt.Sprintf("%s viewers · %s likes",
		formatCount(v.Viewers), formatCount(v.Likes)))

	rows := []string{
		byline,
		playbackBadge(item) + "  " + counters,
		"",
	}
	if desc := a.renderDescription(&v); desc != "" {
		rows = append(rows, desc, "")
	}
	rows = append(rows, renderMuted(truncateMiddle(v.Video, inner)))

	if shown := a.config.UI.Card.CommentsShown; shown > 0 && len(comments) > 0 {
		rows = append(rows, "", renderSeparator(inner))
		if len(comments) > shown {
			comments = comments[:shown]
		}
		for _, c := range comments {
			text := truncateEnd(c.Comment, inner-len([]rune(c.Username))-2)
			rows = append(rows, UsernameStyle.Render("@"+c.Username)+" "+text)
		}
	}

	style := CardStyle
	if item.Active {
		style = ActiveCard
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderPeek is the one-line preview of a neighboring item.
func renderPeek(label string, item feed.ItemView, width int) string {
	text := fmt.Sprintf("%s @%s  %s", label, item.Video.Username, item.Video.Description)
	return renderMuted(truncateEnd(text, width))
}

type searchResultItem struct {
	result *search.Result
}

func (i searchResultItem) Title() string {
	title := "@" + i.result.Username
	if i.result.Topic != "" {
		title += "  #" + i.result.Topic
	}
	return title
}

func (i searchResultItem) Description() string {
	return truncateEnd(i.result.Description, 60)
}

func (i searchResultItem) FilterValue() string {
	return i.result.Username + " " + i.result.Description
}
