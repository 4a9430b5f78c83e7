package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/reel/internal/config"
)

const AppName = "reel"

// LogoLines is the canonical block logo.
var LogoLines = []string{
	"█▀▀▄ █▀▀ █▀▀ █   ",
	"█▄▄▀ █▀▀ █▀▀ █   ",
	"█  █ █▄▄ █▄▄ █▄▄ ",
}

const CompactLogo = `reel ▶`

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF0080"),
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#4ECDC4"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF0080")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	TextColor    = lipgloss.Color("#EAEAEA")
	MutedColor   = lipgloss.Color("#94A3B8")
	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
	WarnColor    = lipgloss.Color("#FFE66D")
)

var (
	LogoStyle      lipgloss.Style
	HeaderStyle    lipgloss.Style
	UsernameStyle  lipgloss.Style
	TopicStyle     lipgloss.Style
	CounterStyle   lipgloss.Style
	PlayingStyle   lipgloss.Style
	PausedStyle    lipgloss.Style
	InertStyle     lipgloss.Style
	HelpStyle      lipgloss.Style
	SeparatorStyle lipgloss.Style
	CardStyle      lipgloss.Style
	ActiveCard     lipgloss.Style

	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyColors replaces the palette with the configured colors. Empty
// entries keep the built-in value.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	HeaderStyle = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	UsernameStyle = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	TopicStyle = lipgloss.NewStyle().Foreground(AccentColor)
	CounterStyle = lipgloss.NewStyle().Foreground(MutedColor)
	PlayingStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	PausedStyle = lipgloss.NewStyle().Foreground(WarnColor)
	InertStyle = lipgloss.NewStyle().Foreground(ErrorColor)
	HelpStyle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	SeparatorStyle = lipgloss.NewStyle().Foreground(MutedColor)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Padding(0, 1)
	ActiveCard = CardStyle.BorderForeground(PrimaryColor)

	StatusInfoStyle = lipgloss.NewStyle().Foreground(MutedColor)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StatusWarnStyle = lipgloss.NewStyle().Foreground(WarnColor)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
}

func GetWelcomeMessage() string {
	return GetCompactBanner("Loading feed…")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	return lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, coloredLines...),
		"",
		HelpStyle.Render(message),
	)
}

// Banner returns the startup banner with a version tagline.
func Banner(version string) string {
	lines := make([]string, 0, len(LogoLines)+2)
	lines = append(lines, LogoLines...)
	lines = append(lines, "")

	tagline := "Short-Video Feed"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("%s %s", tagline, version)
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	border := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	boxed := lipgloss.NewStyle().
		Border(border).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("▶ ▷ ▶ ▷ ▶")

	center := lipgloss.NewStyle().Width(60).Align(lipgloss.Center)
	return lipgloss.JoinVertical(lipgloss.Left,
		center.Render(boxed),
		center.MarginBottom(1).Render(separator),
	)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
