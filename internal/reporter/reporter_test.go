package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/fsweep/internal/cleaner"
	"github.com/fenilsonani/fsweep/internal/scanner"
	"gopkg.in/yaml.v3"
)

func sampleItems() []scanner.MatchedItem {
	return []scanner.MatchedItem{
		{Path: "/work/a/node_modules", RelPath: "a/node_modules", Type: "node_modules", Size: 2048},
		{Path: "/work/b/venv", RelPath: "b/venv", Type: "venv", Size: 1024},
	}
}

func deleteResult() *cleaner.CleanResult {
	return &cleaner.CleanResult{
		Mode: cleaner.ModeDelete,
		Outcomes: []cleaner.Outcome{
			{Path: "/work/a/node_modules", Size: 2048, Status: cleaner.StatusDeleted},
			{Path: "/work/b/venv", Size: 1024, Status: cleaner.StatusFailed, Error: "permission denied"},
		},
		Stats: cleaner.Stats{Deleted: 1, Failed: 1, FreedBytes: 2048},
	}
}

// =============================================================================
// Payload Tests
// =============================================================================

func TestBuildPayloadDelete(t *testing.T) {
	p := BuildPayload("/work", sampleItems(), deleteResult(), false)

	if p.SchemaVersion != SchemaVersion || p.Path != "/work" || p.DryRun || p.Action != "delete" {
		t.Errorf("header = %+v", p)
	}

	want := Summary{Deleted: 1, Failed: 1, MatchedCount: 2, TotalBytes: 3072, TotalHuman: "3.00 KB"}
	if p.Summary != want {
		t.Errorf("summary = %+v, want %+v", p.Summary, want)
	}

	if len(p.Items) != 2 {
		t.Fatalf("items = %d", len(p.Items))
	}
	first, second := p.Items[0], p.Items[1]
	if first.Status != "deleted" || first.Error != nil || first.Action != "delete" || first.SizeHuman != "2.00 KB" {
		t.Errorf("first item = %+v", first)
	}
	if second.Status != "failed" || second.Error == nil || *second.Error != "permission denied" {
		t.Errorf("second item = %+v", second)
	}
}

func TestBuildPayloadDryRunTrash(t *testing.T) {
	result := &cleaner.CleanResult{
		Mode: cleaner.ModeSimulate,
		Outcomes: []cleaner.Outcome{
			{Path: "/work/a/node_modules", Status: cleaner.StatusSimulated},
			{Path: "/work/b/venv", Status: cleaner.StatusSimulated},
		},
		Stats: cleaner.Stats{Simulated: 2},
	}

	p := BuildPayload("/work", sampleItems(), result, true)
	if !p.DryRun || p.Action != "trash" {
		t.Errorf("DryRun=%v Action=%q", p.DryRun, p.Action)
	}
	for _, item := range p.Items {
		if item.Action != "simulate" || item.Status != "simulated" {
			t.Errorf("item = %+v", item)
		}
	}
	if p.Summary.Simulated != 2 || p.Summary.Skipped != 0 {
		t.Errorf("summary = %+v", p.Summary)
	}
}

func TestBuildPayloadEmpty(t *testing.T) {
	p := BuildPayload("/work", nil, nil, false)
	if !p.DryRun || p.Items == nil || len(p.Items) != 0 || p.Summary.MatchedCount != 0 {
		t.Errorf("payload = %+v", p)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, p); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"items": []`) {
		t.Errorf("empty items should encode as []:\n%s", buf.String())
	}
}

func TestPayloadJSONShape(t *testing.T) {
	result := deleteResult()
	result.Mode = cleaner.ModeTrash
	result.Outcomes[0].Status = cleaner.StatusTrashed
	result.Outcomes[0].TrashDestination = "/trash/20240102T030405Z/a/node_modules"

	var buf bytes.Buffer
	if err := New(&buf, FormatJSON).Report(BuildPayload("/work", sampleItems(), result, true)); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"schema_version", "path", "dry_run", "action", "summary", "items"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	items := decoded["items"].([]interface{})
	first := items[0].(map[string]interface{})
	if first["trash_destination"] != "/trash/20240102T030405Z/a/node_modules" {
		t.Errorf("trash_destination = %v", first["trash_destination"])
	}
	second := items[1].(map[string]interface{})
	if v, ok := second["trash_destination"]; !ok || v != nil {
		t.Errorf("trash_destination should be null, got %v (present=%v)", v, ok)
	}

	// Keys come out sorted.
	out := buf.String()
	if strings.Index(out, `"action"`) > strings.Index(out, `"dry_run"`) ||
		strings.Index(out, `"path"`) > strings.Index(out, `"schema_version"`) {
		t.Errorf("keys not in sorted order:\n%s", out)
	}
}

func TestErrorPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewErrorPayload("Destructive mode requires --yes-delete.", 1)); err != nil {
		t.Fatal(err)
	}

	var decoded ErrorPayload
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ExitCode != 1 || decoded.SchemaVersion != SchemaVersion || !strings.Contains(decoded.Error, "--yes-delete") {
		t.Errorf("decoded = %+v", decoded)
	}
}

// =============================================================================
// Format Tests
// =============================================================================

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want OutputFormat
	}{
		{"report.md", FormatMarkdown},
		{"report", FormatMarkdown},
		{"out/report.YAML", FormatYAML},
		{"report.yml", FormatYAML},
		{"report.json", FormatJSON},
		{"report.TXT", FormatTable},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMarkdownReport(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatMarkdown)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	result := deleteResult()
	result.Outcomes[1].Error = "bad | pipe\nnewline"
	if err := r.Report(BuildPayload("/work", sampleItems(), result, false)); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# fsweep report\n",
		"- generated_at_utc: 2024-01-02T03:04:05Z",
		"- path: `/work`",
		"- dry_run: `false`",
		"- action: `delete`",
		"## Summary",
		"- matched_count: 2",
		"- total_human: 3.00 KB",
		"- deleted: 1",
		"- failed: 1",
		"## Items",
		"| path | size | status | error |",
		"| `/work/a/node_modules` | 2.00 KB | deleted |  |",
		"| `/work/b/venv` | 1.00 KB | failed | bad \\| pipe newline |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatYAML).Report(BuildPayload("/work", sampleItems(), deleteResult(), false)); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	var decoded Payload
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if decoded.Summary.MatchedCount != 2 || len(decoded.Items) != 2 || decoded.Items[1].Status != "failed" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestTableReport(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatTable).Report(BuildPayload("/work", sampleItems(), deleteResult(), false)); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Developer Workspace FSweep",
		"Results for work",
		"a/node_modules",
		"venv",
		"Total Potential Savings:",
		"3.00 KB",
		"Cleanup Summary",
		"Deleted",
		"Failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTableHelpersDryRun(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, true)
	Savings(&buf, true, 1024)
	Completion(&buf, &cleaner.CleanResult{Mode: cleaner.ModeSimulate}, 1024)

	out := buf.String()
	for _, want := range []string{
		"DRY-RUN MODE",
		"Total Estimated Savings (Simulation):",
		"Dry-run complete. Would have recovered 1.00 KB.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Completion(&buf, &cleaner.CleanResult{Mode: cleaner.ModeTrash, TrashRoot: "/t/20240102T030405Z"}, 1024)
	if !strings.Contains(buf.String(), "Moved up to 1.00 KB to /t/20240102T030405Z.") {
		t.Errorf("trash completion = %q", buf.String())
	}
}

func TestFreeSpace(t *testing.T) {
	line := FreeSpace(t.TempDir())
	if line == "" {
		t.Skip("disk usage not available here")
	}
	if !strings.Contains(line, "free of") {
		t.Errorf("FreeSpace() = %q", line)
	}
}

// =============================================================================
// File Output Tests
// =============================================================================

func TestSaveToFileTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	p := BuildPayload("/work", sampleItems(), deleteResult(), false)
	if err := SaveToFile(p, path, FormatForPath(path)); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Results for work", "a/node_modules", "Cleanup Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("table report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("table report contains escape sequences:\n%q", out)
	}
}

func TestSaveToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.md")

	p := BuildPayload("/work", sampleItems(), deleteResult(), false)
	if err := SaveToFile(p, path, FormatForPath(path)); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# fsweep report") {
		t.Errorf("unexpected report:\n%s", data)
	}
}
