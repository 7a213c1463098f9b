package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fenilsonani/fsweep/internal/scanner"
	"github.com/fenilsonani/fsweep/internal/ui/models"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	"github.com/fenilsonani/fsweep/pkg/utils"
)

// RunSelector shows the full-screen selection list and returns the chosen
// items in scan order. Quitting without confirming selects nothing.
func RunSelector(items []scanner.MatchedItem, in io.Reader, out io.Writer) ([]scanner.MatchedItem, error) {
	rows := make([]models.SelectItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.SelectItem{Label: item.RelPath, Size: item.Size})
	}

	m := models.NewSelectModel(rows)
	p := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running interactive selection: %w", err)
	}

	return pick(items, m.Selected()), nil
}

// Prompter asks line-based questions. It is used when stdin is not a
// terminal and for the destructive-run confirmation.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading answers from in
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks a yes/no question. Anything but y or yes, including EOF,
// is a no.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	answer, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ChooseItems prints a numbered list and reads "all", "none" or a comma
// separated list of 1-based indexes. An empty answer means all.
func (p *Prompter) ChooseItems(items []scanner.MatchedItem) ([]scanner.MatchedItem, error) {
	fmt.Fprintln(p.out, styles.TitleStyle.Render("Interactive Selection"))
	for i, item := range items {
		fmt.Fprintf(p.out, "%4d  %s  %s\n", i+1, item.RelPath, utils.FormatBytes(item.Size))
	}
	fmt.Fprintf(p.out, "Select folders %s: ", styles.HelpStyle.Render("([all], none, or comma-separated indexes)"))

	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	indexes, err := ParseSelection(answer, len(items))
	if err != nil {
		return nil, err
	}
	return pick(items, indexes), nil
}

// ParseSelection turns a selection answer into 0-based indexes in the
// order given, without duplicates.
func ParseSelection(input string, count int) ([]int, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "", "all", "a":
		all := make([]int, count)
		for i := range all {
			all[i] = i
		}
		return all, nil
	case "none", "n":
		return []int{}, nil
	}

	seen := make(map[int]bool)
	var indexes []int
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("selection must be 'all', 'none', or comma-separated integers: %q", token)
		}
		if n < 1 || n > count {
			return nil, fmt.Errorf("selection index out of range: %d", n)
		}
		if !seen[n-1] {
			seen[n-1] = true
			indexes = append(indexes, n-1)
		}
	}

	return indexes, nil
}

func pick(items []scanner.MatchedItem, indexes []int) []scanner.MatchedItem {
	selected := make([]scanner.MatchedItem, 0, len(indexes))
	for _, i := range indexes {
		selected = append(selected, items[i])
	}
	return selected
}
