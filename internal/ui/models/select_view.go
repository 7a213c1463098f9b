package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fenilsonani/fsweep/internal/ui/components"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/fsweep/internal/ui/utils"
	"github.com/fenilsonani/fsweep/pkg/utils"
)

// SelectItem is one row of the selection list
type SelectItem struct {
	Label    string
	Size     int64
	Selected bool
}

type selectKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap
func (k selectKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.None, k.Confirm, k.Quit}
}

// FullHelp implements help.KeyMap
func (k selectKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.All, k.None},
		{k.Confirm, k.Quit},
	}
}

func defaultSelectKeys() selectKeyMap {
	return selectKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all"),
		),
		None: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "none"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

// SelectModel lets the user pick which matched folders to act on.
// Every item starts selected.
type SelectModel struct {
	items     []SelectItem
	cursor    int
	offset    int
	width     int
	height    int
	keys      selectKeyMap
	help      help.Model
	confirmed bool
	cancelled bool
}

// NewSelectModel creates a selection model over items
func NewSelectModel(items []SelectItem) *SelectModel {
	for i := range items {
		items[i].Selected = true
	}

	return &SelectModel{
		items:  items,
		width:  uiutils.MinTerminalWidth,
		height: uiutils.MinTerminalHeight,
		keys:   defaultSelectKeys(),
		help:   help.New(),
	}
}

// Init initializes the selection view
func (m *SelectModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if m.cursor < len(m.items) {
				m.items[m.cursor].Selected = !m.items[m.cursor].Selected
			}
		case key.Matches(msg, m.keys.All):
			m.setAll(true)
		case key.Matches(msg, m.keys.None):
			m.setAll(false)
		}
		m.clampOffset()
	}

	return m, nil
}

func (m *SelectModel) setAll(selected bool) {
	for i := range m.items {
		m.items[i].Selected = selected
	}
}

// clampOffset keeps the cursor inside the visible page
func (m *SelectModel) clampOffset() {
	page := uiutils.CalculatePageSize(m.height)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
}

// View renders the selection list
func (m *SelectModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Interactive Selection"))
	b.WriteString("\n")

	page := uiutils.CalculatePageSize(m.height)
	end := m.offset + page
	if end > len(m.items) {
		end = len(m.items)
	}

	labelWidth := m.width - 30
	if labelWidth < 20 {
		labelWidth = 20
	}

	for i := m.offset; i < end; i++ {
		item := m.items[i]

		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("> ")
		}
		checkbox := styles.UncheckedBox()
		if item.Selected {
			checkbox = styles.CheckedBox()
		}

		label := uiutils.TruncatePath(item.Label, labelWidth)
		if i == m.cursor {
			label = styles.SelectedStyle.Render(label)
		} else {
			label = styles.FilePathStyle.Render(label)
		}

		fmt.Fprintf(&b, "%s%s %3d  %s  %s\n",
			cursor, checkbox, i+1, label,
			styles.FileSizeStyle.Render(utils.FormatBytes(item.Size)))
	}

	if len(m.items) > page {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  showing %d-%d of %d", m.offset+1, end, len(m.items))))
		b.WriteString("\n")
	}

	count, size := m.selectedTotals()
	bar := components.NewStatusBar("Select folders")
	bar.SetSelection(count, len(m.items), size)
	bar.SetHint(m.help.View(m.keys))

	b.WriteString("\n")
	b.WriteString(bar.Render(m.width))
	b.WriteString("\n")

	return b.String()
}

func (m *SelectModel) selectedTotals() (int, int64) {
	count := 0
	var size int64
	for _, item := range m.items {
		if item.Selected {
			count++
			size += item.Size
		}
	}
	return count, size
}

// Selected returns the indexes of the selected items in list order. A
// cancelled selection selects nothing.
func (m *SelectModel) Selected() []int {
	if m.cancelled {
		return nil
	}

	var indexes []int
	for i, item := range m.items {
		if item.Selected {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// Cancelled reports whether the user quit without confirming
func (m *SelectModel) Cancelled() bool {
	return m.cancelled
}
