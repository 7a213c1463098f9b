package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// GetDefault Tests
// =============================================================================

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()

	if cfg == nil {
		t.Fatal("GetDefault returned nil")
	}
	if len(cfg.TargetFolders) != 30 {
		t.Errorf("expected 30 default target folders, got %d", len(cfg.TargetFolders))
	}
	if cfg.MaxDeleteCount != 50 {
		t.Errorf("expected MaxDeleteCount 50, got %d", cfg.MaxDeleteCount)
	}
	if cfg.NoDeleteLimit {
		t.Error("expected NoDeleteLimit to be false by default")
	}

	for _, want := range []string{"node_modules", "venv", "__pycache__", "target", ".terraform"} {
		if !containsString(cfg.TargetFolders, want) {
			t.Errorf("expected %q in default target folders", want)
		}
	}
}

func TestGetDefaultReturnsCopy(t *testing.T) {
	cfg := GetDefault()
	cfg.TargetFolders[0] = "changed"

	if DefaultTargetFolders[0] == "changed" {
		t.Error("GetDefault must not share the default slice")
	}
}

// =============================================================================
// LoadOverrides Tests
// =============================================================================

func TestLoadOverridesTopLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, `
target_folders: [".expo"]
exclude_patterns: ["vendor/*"]
protected_paths: ["keep"]
max_delete_count: 10
no_delete_limit: true
`)

	ov, err := LoadOverrides(configPath)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	if len(ov.TargetFolders) != 1 || ov.TargetFolders[0] != ".expo" {
		t.Errorf("unexpected target folders: %v", ov.TargetFolders)
	}
	if ov.MaxDeleteCount == nil || *ov.MaxDeleteCount != 10 {
		t.Errorf("expected max_delete_count 10, got %v", ov.MaxDeleteCount)
	}
	if ov.NoDeleteLimit == nil || !*ov.NoDeleteLimit {
		t.Errorf("expected no_delete_limit true, got %v", ov.NoDeleteLimit)
	}
	if want := filepath.Join(tmpDir, "keep"); ov.ProtectedPaths[0] != want {
		t.Errorf("relative protected path should resolve against config dir: got %q, want %q", ov.ProtectedPaths[0], want)
	}
}

func TestLoadOverridesNestedTable(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
fsweep:
  target_folders: ["elm-stuff"]
  max_delete_count: 3
`)

	ov, err := LoadOverrides(configPath)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}
	if len(ov.TargetFolders) != 1 || ov.TargetFolders[0] != "elm-stuff" {
		t.Errorf("unexpected target folders: %v", ov.TargetFolders)
	}
	if ov.MaxDeleteCount == nil || *ov.MaxDeleteCount != 3 {
		t.Errorf("expected max_delete_count 3, got %v", ov.MaxDeleteCount)
	}
}

func TestLoadOverridesUnsetScalarsStayNil(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "exclude_patterns: [\"*.bak\"]\n")

	ov, err := LoadOverrides(configPath)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}
	if ov.MaxDeleteCount != nil {
		t.Errorf("expected nil max_delete_count, got %d", *ov.MaxDeleteCount)
	}
	if ov.NoDeleteLimit != nil {
		t.Errorf("expected nil no_delete_limit, got %v", *ov.NoDeleteLimit)
	}
}

func TestLoadEmptyConfig(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "")

	ov, err := LoadOverrides(configPath)
	if err != nil {
		t.Fatalf("empty config should load: %v", err)
	}
	if len(ov.TargetFolders) != 0 || ov.MaxDeleteCount != nil {
		t.Errorf("expected empty overrides, got %+v", ov)
	}
}

func TestLoadOverridesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"invalid yaml", "target_folders: [unclosed", "failed to parse"},
		{"max delete count zero", "max_delete_count: 0", "max_delete_count must be >= 1"},
		{"max delete count not int", "max_delete_count: lots", "failed to parse"},
		{"no delete limit not bool", "no_delete_limit: 7", "failed to parse"},
		{"target folder with separator", "target_folders: [\"a/b\"]", "bare folder name"},
		{"empty exclude pattern", "exclude_patterns: [\"\"]", "invalid exclude pattern"},
		{"top level list", "- node_modules", "mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadOverrides(configPath)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

// =============================================================================
// Merge / Build Tests
// =============================================================================

func TestMergeUnionsSetsAndOverwritesScalars(t *testing.T) {
	cfg := &SweepConfig{
		TargetFolders:  []string{"node_modules"},
		MaxDeleteCount: 50,
	}
	max := 5
	cfg.Merge(&Overrides{
		TargetFolders:  []string{"node_modules", "dist"},
		MaxDeleteCount: &max,
	})

	if strings.Join(cfg.TargetFolders, ",") != "node_modules,dist" {
		t.Errorf("unexpected target folders: %v", cfg.TargetFolders)
	}
	if cfg.MaxDeleteCount != 5 {
		t.Errorf("expected MaxDeleteCount 5, got %d", cfg.MaxDeleteCount)
	}
	if cfg.NoDeleteLimit {
		t.Error("NoDeleteLimit should be untouched when not set")
	}
}

func TestBuildPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	globalDir := filepath.Join(tmpDir, "global")
	localDir := filepath.Join(tmpDir, "root")
	explicitDir := filepath.Join(tmpDir, "explicit")
	for _, d := range []string{globalDir, localDir, explicitDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	globalPath := writeConfig(t, globalDir, "target_folders: [g]\nmax_delete_count: 1\nno_delete_limit: true\n")
	localPath := writeConfig(t, localDir, "target_folders: [l]\nmax_delete_count: 2\n")
	explicitPath := writeConfig(t, explicitDir, "target_folders: [e]\nmax_delete_count: 3\n")

	cliMax := 4
	cliNoLimit := false
	cfg, err := Build(Sources{
		GlobalPath:   globalPath,
		LocalPath:    localPath,
		ExplicitPath: explicitPath,
		CLI: Overrides{
			TargetFolders:  []string{"c"},
			MaxDeleteCount: &cliMax,
			NoDeleteLimit:  &cliNoLimit,
		},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, name := range []string{"node_modules", "g", "l", "e", "c"} {
		if !containsString(cfg.TargetFolders, name) {
			t.Errorf("expected %q in merged target folders", name)
		}
	}
	if cfg.MaxDeleteCount != 4 {
		t.Errorf("command line should win: MaxDeleteCount = %d, want 4", cfg.MaxDeleteCount)
	}
	if cfg.NoDeleteLimit {
		t.Error("command line should overwrite no_delete_limit to false")
	}
}

func TestBuildScalarFromLowerSourceSurvives(t *testing.T) {
	tmpDir := t.TempDir()
	globalPath := writeConfig(t, tmpDir, "max_delete_count: 7\n")

	cfg, err := Build(Sources{GlobalPath: globalPath})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.MaxDeleteCount != 7 {
		t.Errorf("MaxDeleteCount = %d, want 7", cfg.MaxDeleteCount)
	}
}

func TestBuildMissingOptionalFiles(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Build(Sources{
		GlobalPath: filepath.Join(tmpDir, "nope", FileName),
		LocalPath:  filepath.Join(tmpDir, FileName),
	})
	if err != nil {
		t.Fatalf("missing optional files should be ignored: %v", err)
	}
	if cfg.MaxDeleteCount != DefaultMaxDeleteCount {
		t.Errorf("expected default MaxDeleteCount, got %d", cfg.MaxDeleteCount)
	}
}

func TestBuildMissingExplicitFile(t *testing.T) {
	_, err := Build(Sources{ExplicitPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestBuildInvalidCLI(t *testing.T) {
	zero := 0
	_, err := Build(Sources{CLI: Overrides{MaxDeleteCount: &zero}})
	if err == nil {
		t.Fatal("expected error for max delete count 0")
	}
}

func TestBuildResolvesProtectedPaths(t *testing.T) {
	tmpDir := t.TempDir()
	real, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(real, "target")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(real, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	cfg, err := Build(Sources{CLI: Overrides{ProtectedPaths: []string{link, target}}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(cfg.ProtectedPaths) != 1 || cfg.ProtectedPaths[0] != target {
		t.Errorf("expected a single resolved protected path %q, got %v", target, cfg.ProtectedPaths)
	}
}

// =============================================================================
// Save / Paths Tests
// =============================================================================

func TestSaveAndLoadRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := GetDefault()
	cfg.MaxDeleteCount = 12

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ov, err := LoadOverrides(configPath)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}
	if ov.MaxDeleteCount == nil || *ov.MaxDeleteCount != 12 {
		t.Errorf("expected max_delete_count 12 after round trip, got %v", ov.MaxDeleteCount)
	}
	if len(ov.TargetFolders) != len(DefaultTargetFolders) {
		t.Errorf("expected %d target folders, got %d", len(DefaultTargetFolders), len(ov.TargetFolders))
	}
}

func TestEnsureConfigExists(t *testing.T) {
	configPath := GlobalPath(t.TempDir())

	created, err := EnsureConfigExists(configPath)
	if err != nil {
		t.Fatalf("EnsureConfigExists failed: %v", err)
	}
	if !created {
		t.Error("expected config to be created")
	}

	created, err = EnsureConfigExists(configPath)
	if err != nil {
		t.Fatalf("second EnsureConfigExists failed: %v", err)
	}
	if created {
		t.Error("existing config must not be overwritten")
	}
}

func TestLegacyFiles(t *testing.T) {
	globalDir := filepath.Join(t.TempDir(), "fsweep")
	root := t.TempDir()
	src := Sources{GlobalPath: filepath.Join(globalDir, FileName), LocalPath: LocalPath(root)}

	if got := LegacyFiles(src); len(got) != 0 {
		t.Errorf("LegacyFiles() = %v, want none", got)
	}

	localTOML := writeConfigNamed(t, root, LegacyFileName, "[fsweep]\nmax_delete_count = 3\n")
	globalTOML := writeConfigNamed(t, globalDir, LegacyFileName, "")

	got := LegacyFiles(src)
	if len(got) != 2 || got[0] != globalTOML || got[1] != localTOML {
		t.Errorf("LegacyFiles() = %v, want [%s %s]", got, globalTOML, localTOML)
	}

	// The TOML file is reported, never loaded.
	cfg, err := Build(src)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDeleteCount != DefaultMaxDeleteCount {
		t.Errorf("MaxDeleteCount = %d, legacy file should be ignored", cfg.MaxDeleteCount)
	}
}

func TestPaths(t *testing.T) {
	if got := GlobalPath("/home/u/.config"); got != "/home/u/.config/fsweep/fsweep.yaml" {
		t.Errorf("GlobalPath = %q", got)
	}
	if got := LocalPath("/work/app"); got != "/work/app/fsweep.yaml" {
		t.Errorf("LocalPath = %q", got)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	return writeConfigNamed(t, dir, FileName, content)
}

func writeConfigNamed(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configPath := filepath.Join(dir, name)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
