package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/fsweep/internal/cleaner"
	"github.com/fenilsonani/fsweep/internal/scanner"
	"github.com/fenilsonani/fsweep/pkg/utils"
	"gopkg.in/yaml.v3"
)

// SchemaVersion tags every machine-readable payload
const SchemaVersion = "1"

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"
	FormatJSON     OutputFormat = "json"
	FormatYAML     OutputFormat = "yaml"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseOutputFormat accepts the --output values
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table or json)", s)
	}
}

// FormatForPath picks the report format from a file extension
func FormatForPath(path string) OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".txt":
		return FormatTable
	default:
		return FormatMarkdown
	}
}

// Payload is the result of one run. Fields are declared in key order so
// the JSON output is sorted like the index file.
type Payload struct {
	Action        string        `json:"action" yaml:"action"`
	DryRun        bool          `json:"dry_run" yaml:"dry_run"`
	Items         []ItemPayload `json:"items" yaml:"items"`
	Path          string        `json:"path" yaml:"path"`
	SchemaVersion string        `json:"schema_version" yaml:"schema_version"`
	Summary       Summary       `json:"summary" yaml:"summary"`
}

// Summary aggregates a run
type Summary struct {
	Deleted      int    `json:"deleted" yaml:"deleted"`
	Failed       int    `json:"failed" yaml:"failed"`
	MatchedCount int    `json:"matched_count" yaml:"matched_count"`
	Simulated    int    `json:"simulated" yaml:"simulated"`
	Skipped      int    `json:"skipped" yaml:"skipped"`
	TotalBytes   int64  `json:"total_bytes" yaml:"total_bytes"`
	TotalHuman   string `json:"total_human" yaml:"total_human"`
	Trashed      int    `json:"trashed" yaml:"trashed"`
}

// ItemPayload describes one matched folder and what happened to it
type ItemPayload struct {
	Action           string  `json:"action" yaml:"action"`
	Error            *string `json:"error" yaml:"error"`
	Path             string  `json:"path" yaml:"path"`
	RelativePath     string  `json:"relative_path" yaml:"relative_path"`
	SizeBytes        int64   `json:"size_bytes" yaml:"size_bytes"`
	SizeHuman        string  `json:"size_human" yaml:"size_human"`
	Status           string  `json:"status" yaml:"status"`
	TrashDestination *string `json:"trash_destination" yaml:"trash_destination"`
	Type             string  `json:"type" yaml:"type"`
}

// ErrorPayload is printed instead of a Payload when a run is refused
type ErrorPayload struct {
	Error         string `json:"error" yaml:"error"`
	ExitCode      int    `json:"exit_code" yaml:"exit_code"`
	SchemaVersion string `json:"schema_version" yaml:"schema_version"`
}

// NewErrorPayload builds the error payload for message and exit code
func NewErrorPayload(message string, exitCode int) ErrorPayload {
	return ErrorPayload{
		Error:         message,
		ExitCode:      exitCode,
		SchemaVersion: SchemaVersion,
	}
}

// BuildPayload combines the selected items and their cleanup outcomes.
// result may be nil when nothing was selected.
func BuildPayload(root string, items []scanner.MatchedItem, result *cleaner.CleanResult, trash bool) *Payload {
	action := cleaner.ModeDelete.String()
	if trash {
		action = cleaner.ModeTrash.String()
	}

	dryRun := true
	outcomes := make(map[string]cleaner.Outcome)
	var stats cleaner.Stats
	if result != nil {
		dryRun = result.DryRun()
		stats = result.Stats
		for _, o := range result.Outcomes {
			outcomes[o.Path] = o
		}
	}

	itemAction := action
	if dryRun {
		itemAction = cleaner.ModeSimulate.String()
	}

	p := &Payload{
		Action:        action,
		DryRun:        dryRun,
		Items:         make([]ItemPayload, 0, len(items)),
		Path:          root,
		SchemaVersion: SchemaVersion,
	}

	var total int64
	for _, item := range items {
		total += item.Size

		entry := ItemPayload{
			Action:       itemAction,
			Path:         item.Path,
			RelativePath: item.RelPath,
			SizeBytes:    item.Size,
			SizeHuman:    utils.FormatBytes(item.Size),
			Type:         item.Type,
		}
		if o, ok := outcomes[item.Path]; ok {
			entry.Status = string(o.Status)
			entry.Error = optional(o.Error)
			entry.TrashDestination = optional(o.TrashDestination)
		}
		p.Items = append(p.Items, entry)
	}

	p.Summary = Summary{
		Deleted:      stats.Deleted,
		Failed:       stats.Failed,
		MatchedCount: len(items),
		Simulated:    stats.Simulated,
		Skipped:      stats.Skipped,
		TotalBytes:   total,
		TotalHuman:   utils.FormatBytes(total),
		Trashed:      stats.Trashed,
	}

	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
	now    func() time.Time
	plain  bool // strip terminal styling from table output
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
		now:    time.Now,
	}
}

// Report writes the payload in the reporter's format
func (r *Reporter) Report(p *Payload) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(p)
	case FormatJSON:
		return WriteJSON(r.writer, p)
	case FormatYAML:
		return r.reportYAML(p)
	case FormatMarkdown:
		return r.reportMarkdown(p)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(p *Payload) error {
	encoder := yaml.NewEncoder(r.writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(p)
}

// reportMarkdown writes the human-readable report file
func (r *Reporter) reportMarkdown(p *Payload) error {
	var b strings.Builder

	b.WriteString("# fsweep report\n\n")
	fmt.Fprintf(&b, "- generated_at_utc: %s\n", r.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- path: `%s`\n", p.Path)
	fmt.Fprintf(&b, "- dry_run: `%t`\n", p.DryRun)
	fmt.Fprintf(&b, "- action: `%s`\n", p.Action)
	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- matched_count: %d\n", p.Summary.MatchedCount)
	fmt.Fprintf(&b, "- total_human: %s\n", p.Summary.TotalHuman)
	fmt.Fprintf(&b, "- deleted: %d\n", p.Summary.Deleted)
	fmt.Fprintf(&b, "- trashed: %d\n", p.Summary.Trashed)
	fmt.Fprintf(&b, "- skipped: %d\n", p.Summary.Skipped)
	fmt.Fprintf(&b, "- failed: %d\n", p.Summary.Failed)
	b.WriteString("\n## Items\n\n")
	b.WriteString("| path | size | status | error |\n")
	b.WriteString("| :--- | ---: | :----- | :---- |\n")
	for _, item := range p.Items {
		errText := ""
		if item.Error != nil {
			errText = escapeCell(*item.Error)
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", item.Path, item.SizeHuman, item.Status, errText)
	}

	_, err := io.WriteString(r.writer, b.String())
	return err
}

// escapeCell keeps a table row on one line
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// SaveToFile writes the payload to path, creating parent directories
func SaveToFile(p *Payload, path string, format OutputFormat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	r := New(file, format)
	r.plain = true
	if err := r.Report(p); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return file.Close()
}
