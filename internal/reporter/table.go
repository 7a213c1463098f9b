package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/fenilsonani/fsweep/internal/cleaner"
	"github.com/fenilsonani/fsweep/internal/scanner"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	"github.com/fenilsonani/fsweep/pkg/utils"
	"github.com/shirou/gopsutil/v4/disk"
)

// Banner writes the mode panel shown before the results table
func Banner(w io.Writer, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, styles.BannerStyle.BorderForeground(styles.Warning).Render(
			styles.WarningStyle.Render("DRY-RUN MODE")))
		return
	}
	fmt.Fprintln(w, styles.BannerStyle.BorderForeground(styles.Info).Render(
		styles.InfoStyle.Render("Developer Workspace FSweep")))
}

// ResultsTable writes one numbered row per matched folder
func ResultsTable(w io.Writer, root string, items []scanner.MatchedItem) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("#", "Directory Relative Path", "Type", "Size").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.BoldStyle.Padding(0, 1)
			}
			switch col {
			case 1:
				return styles.FilePathStyle.Padding(0, 1)
			case 2:
				return styles.CategoryStyle.Padding(0, 1)
			case 3:
				return styles.FileSizeStyle.Padding(0, 1).Align(lipgloss.Right)
			default:
				return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
			}
		})

	for i, item := range items {
		t.Row(strconv.Itoa(i+1), item.RelPath, item.Type, utils.FormatBytes(item.Size))
	}

	fmt.Fprintln(w, styles.TitleStyle.Render("Results for "+filepath.Base(root)))
	fmt.Fprintln(w, t.Render())
}

// Savings writes the total size line under the results table
func Savings(w io.Writer, dryRun bool, total int64) {
	label := "Total Potential Savings:"
	if dryRun {
		label = "Total Estimated Savings (Simulation):"
	}
	fmt.Fprintf(w, "\n%s %s\n\n", styles.BoldStyle.Render(label),
		styles.SuccessStyle.Render(utils.FormatBytes(total)))
}

// Completion writes the line printed once cleanup finished
func Completion(w io.Writer, result *cleaner.CleanResult, total int64) {
	size := utils.FormatBytes(total)
	switch {
	case result.DryRun():
		fmt.Fprintln(w, styles.WarningStyle.Render(
			fmt.Sprintf("\nDry-run complete. Would have recovered %s.", size)))
	case result.Mode == cleaner.ModeTrash:
		fmt.Fprintln(w, styles.SuccessStyle.Render(
			fmt.Sprintf("\nMoved up to %s to %s.", size, result.TrashRoot)))
	default:
		fmt.Fprintln(w, styles.SuccessStyle.Render(
			fmt.Sprintf("\nRecovered up to %s.", size)))
	}
}

// SummaryTable writes the per-status counts of a cleanup
func SummaryTable(w io.Writer, stats cleaner.Stats) {
	colors := []lipgloss.Color{styles.Success, styles.Secondary, styles.Warning, styles.Danger}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("Deleted", "Trashed", "Skipped", "Failed").
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style.Foreground(colors[col%len(colors)])
		}).
		Row(
			strconv.Itoa(stats.Deleted),
			strconv.Itoa(stats.Trashed),
			strconv.Itoa(stats.Skipped),
			strconv.Itoa(stats.Failed),
		)

	fmt.Fprintln(w, styles.SubtitleStyle.Render("Cleanup Summary"))
	fmt.Fprintln(w, t.Render())
}

// FreeSpace describes the free space on the volume holding path. It returns
// an empty string when the volume cannot be queried.
func FreeSpace(path string) string {
	usage, err := disk.Usage(path)
	if err != nil || usage.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%s free of %s (%.1f%% used)",
		utils.FormatBytes(int64(usage.Free)),
		utils.FormatBytes(int64(usage.Total)),
		usage.UsedPercent)
}

// reportTable renders a finished payload the way the interactive run shows
// it. Report files get the same layout without escape sequences.
func (r *Reporter) reportTable(p *Payload) error {
	var b strings.Builder
	Banner(&b, p.DryRun)

	items := make([]scanner.MatchedItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, scanner.MatchedItem{
			Path:    item.Path,
			RelPath: item.RelativePath,
			Type:    item.Type,
			Size:    item.SizeBytes,
		})
	}
	ResultsTable(&b, p.Path, items)
	Savings(&b, p.DryRun, p.Summary.TotalBytes)
	SummaryTable(&b, cleaner.Stats{
		Deleted: p.Summary.Deleted,
		Trashed: p.Summary.Trashed,
		Skipped: p.Summary.Skipped,
		Failed:  p.Summary.Failed,
	})

	out := b.String()
	if r.plain {
		out = ansi.Strip(out)
	}
	_, err := io.WriteString(r.writer, out)
	return err
}
