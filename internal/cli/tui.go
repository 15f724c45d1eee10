package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// VersionPickerModel - Interactive version selection
// =============================================================================

// VersionPickerModel is the bubbletea model for choosing one version of
// a package from its published releases.
type VersionPickerModel struct {
	Name     string
	Versions []Entry
	Cursor   int
	Selected *Entry
	Height   int
	Offset   int
}

// NewVersionPickerModel creates a picker over the given releases,
// expected newest first.
func NewVersionPickerModel(name string, versions []Entry) VersionPickerModel {
	return VersionPickerModel{
		Name:     name,
		Versions: versions,
		Height:   15,
	}
}

func (m VersionPickerModel) Init() tea.Cmd {
	return nil
}

func (m VersionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Versions[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m VersionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select version of " + m.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Versions) {
		end = len(m.Versions)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Versions[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		channel := "stable"
		if e.Prerelease {
			channel = "prerelease"
		}

		rows = append(rows, []string{cursor, e.Version, channel})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "Version", "Channel").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Versions) {
				return lipgloss.NewStyle()
			}
			e := m.Versions[actualIdx]

			base := lipgloss.NewStyle()
			if actualIdx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if e.Prerelease {
				return base.Foreground(colorYellow)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Versions))))

	return b.String()
}
