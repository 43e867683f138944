package ui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle renders the app header.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Padding(0, 1)

	// TabActiveStyle highlights the current category tab.
	TabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12")).
			Padding(0, 1)

	// TabInactiveStyle renders the remaining tabs.
	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("7")).
				Padding(0, 1)

	// FilterActiveStyle marks the selected filter.
	FilterActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("11"))

	// FilterInactiveStyle renders the other filters.
	FilterInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	// SelectedRowStyle highlights the card under the cursor.
	SelectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("8")).
				Bold(true)

	// MetaStyle renders author/version/download metadata.
	MetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// NoticeStyle renders transient success notifications.
	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	// ErrorStyle renders dismissible error banners.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	// FooterStyle renders the key help line.
	FooterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
)

// monogramPalette holds the background colors used for placeholder art.
var monogramPalette = []string{"63", "99", "135", "171", "69", "105", "141", "177"}

// Monogram renders placeholder card art for records without an image URL:
// the first rune of the name on a colored block, with the color derived
// from the name so each record keeps a stable look.
func Monogram(name string) string {
	letter := "?"
	for _, r := range name {
		letter = string(r)
		break
	}

	h := fnv.New32a()
	h.Write([]byte(name))
	color := monogramPalette[h.Sum32()%uint32(len(monogramPalette))]

	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(letter)
}
