package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/lastcard/internal/deck"
)

// Styles contains styling for match output
type Styles struct {
	Table     lipgloss.Style
	Winner    lipgloss.Style
	Current   lipgloss.Style
	Away      lipgloss.Style
	Separator lipgloss.Style
	colors    [deck.Wild + 1]lipgloss.Style
}

// NewStyles creates styles bound to r's colour profile
func NewStyles(r *lipgloss.Renderer) *Styles {
	s := &Styles{
		Table: r.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true),
		Winner: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Current: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Away: r.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Italic(true),
		Separator: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
	s.colors[deck.Red] = r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	s.colors[deck.Green] = r.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	s.colors[deck.Blue] = r.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true)
	s.colors[deck.Yellow] = r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	s.colors[deck.Wild] = r.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3C3C3C")).Bold(true)
	return s
}

// Color renders a colour name in that colour
func (s *Styles) Color(c deck.Color) string {
	return s.colorStyle(c).Render(c.String())
}

// Card renders a card in its colour
func (s *Styles) Card(c deck.Card) string {
	return s.colorStyle(c.Color).Render(c.String())
}

// Hand renders cards separated by spaces
func (s *Styles) Hand(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = s.Card(c)
	}
	return strings.Join(parts, " ")
}

func (s *Styles) colorStyle(c deck.Color) lipgloss.Style {
	if c > deck.Wild {
		c = deck.Wild
	}
	return s.colors[c]
}
