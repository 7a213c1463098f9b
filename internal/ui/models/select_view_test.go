package models

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(n int) *SelectModel {
	items := make([]SelectItem, n)
	for i := range items {
		items[i] = SelectItem{Label: "proj/" + string(rune('a'+i)) + "/node_modules", Size: int64(i+1) * 1024}
	}
	return NewSelectModel(items)
}

func send(m *SelectModel, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestSelectModelStartsAllSelected(t *testing.T) {
	m := newTestModel(3)
	if got := m.Selected(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Selected() = %v, want all", got)
	}
}

func TestSelectModelKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want []int
	}{
		{"toggle first", []tea.Msg{tea.KeyMsg{Type: tea.KeySpace}}, []int{1, 2}},
		{"move and toggle", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, runes("x")}, []int{0, 2}},
		{"vim keys", []tea.Msg{runes("j"), runes("j"), runes("k"), runes("x")}, []int{0, 2}},
		{"none then one", []tea.Msg{runes("n"), tea.KeyMsg{Type: tea.KeyDown}, runes("x")}, []int{1}},
		{"none then all", []tea.Msg{runes("n"), runes("a")}, []int{0, 1, 2}},
		{"cursor stops at end", []tea.Msg{
			tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
			tea.KeyMsg{Type: tea.KeyDown}, runes("x"),
		}, []int{0, 1}},
		{"cursor stops at top", []tea.Msg{tea.KeyMsg{Type: tea.KeyUp}, runes("x")}, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(3)
			send(m, tt.keys...)
			if got := m.Selected(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Selected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectModelConfirmAndCancel(t *testing.T) {
	m := newTestModel(2)
	cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}
	if m.Cancelled() || len(m.Selected()) != 2 {
		t.Errorf("confirmed model: cancelled=%v selected=%v", m.Cancelled(), m.Selected())
	}

	m = newTestModel(2)
	if cmd := send(m, runes("q")); cmd == nil {
		t.Fatal("q should quit the program")
	}
	if !m.Cancelled() || m.Selected() != nil {
		t.Errorf("cancelled model: cancelled=%v selected=%v", m.Cancelled(), m.Selected())
	}

	m = newTestModel(2)
	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.Cancelled() {
		t.Error("esc should cancel")
	}
}

func TestSelectModelView(t *testing.T) {
	m := newTestModel(2)
	view := m.View()

	for _, want := range []string{"Interactive Selection", "proj/a/node_modules", "2/2 selected", "1.00 KB"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.View() != "" {
		t.Error("view should be empty once confirmed")
	}
}

func TestSelectModelScrollsLongLists(t *testing.T) {
	items := make([]SelectItem, 40)
	for i := range items {
		items[i] = SelectItem{Label: "p/node_modules", Size: 1}
	}
	m := NewSelectModel(items)
	send(m, tea.WindowSizeMsg{Width: 100, Height: 20})

	for i := 0; i < 30; i++ {
		send(m, tea.KeyMsg{Type: tea.KeyDown})
	}

	page := 10 // height 20 minus reserved lines
	if m.cursor != 30 || m.offset != 30-page+1 {
		t.Errorf("cursor=%d offset=%d", m.cursor, m.offset)
	}
	if !strings.Contains(m.View(), "showing 22-31 of 40") {
		t.Errorf("missing scroll hint:\n%s", m.View())
	}
}
