package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/fsweep/internal/security"
	"gopkg.in/yaml.v3"
)

// FileName is the per-root and per-user config file name.
const FileName = "fsweep.yaml"

// LegacyFileName is the TOML config name of earlier releases. It is never
// read; LegacyFiles finds copies so users can be told to migrate.
const LegacyFileName = "fsweep.toml"

// SweepConfig is the effective configuration for one scan.
type SweepConfig struct {
	TargetFolders   []string `yaml:"target_folders"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	ProtectedPaths  []string `yaml:"protected_paths"`
	MaxDeleteCount  int      `yaml:"max_delete_count"`
	NoDeleteLimit   bool     `yaml:"no_delete_limit"`
}

// Overrides is one config source. Nil scalars mean "not set" so a later
// source only overwrites what it actually names.
type Overrides struct {
	TargetFolders   []string `yaml:"target_folders"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	ProtectedPaths  []string `yaml:"protected_paths"`
	MaxDeleteCount  *int     `yaml:"max_delete_count"`
	NoDeleteLimit   *bool    `yaml:"no_delete_limit"`
}

// Sources lists every config source for a scan, lowest precedence first.
type Sources struct {
	GlobalPath   string // skipped when empty or missing
	LocalPath    string // skipped when empty or missing
	ExplicitPath string // must exist when set
	CLI          Overrides
}

// LoadOverrides reads one YAML config file. Keys may sit at the top level
// or under a "fsweep:" mapping. Relative protected paths are resolved
// against the file's directory.
func LoadOverrides(configPath string) (*Overrides, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ov, err := parseOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := ov.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	baseDir := filepath.Dir(configPath)
	for i, p := range ov.ProtectedPaths {
		p = expandHome(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		ov.ProtectedPaths[i] = p
	}

	return ov, nil
}

func parseOverrides(data []byte) (*Overrides, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	ov := &Overrides{}
	if len(doc.Content) == 0 {
		return ov, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at the top level")
	}

	// A "fsweep:" table wins over top-level keys.
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "fsweep" && root.Content[i+1].Kind == yaml.MappingNode {
			root = root.Content[i+1]
			break
		}
	}

	if err := root.Decode(ov); err != nil {
		return nil, err
	}
	return ov, nil
}

// Validate validates the configuration source
func (o *Overrides) Validate() error {
	if o.MaxDeleteCount != nil && *o.MaxDeleteCount < 1 {
		return fmt.Errorf("max_delete_count must be >= 1, got %d", *o.MaxDeleteCount)
	}

	for _, name := range o.TargetFolders {
		if name == "" || strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
			return fmt.Errorf("target folder must be a bare folder name: %q", name)
		}
		if name == "." || name == ".." {
			return fmt.Errorf("target folder must be a bare folder name: %q", name)
		}
	}

	for _, pattern := range o.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	for _, p := range o.ProtectedPaths {
		if p == "" {
			return fmt.Errorf("protected path must not be empty")
		}
	}

	return nil
}

// Merge applies a source on top of the config. Set-like fields gain the
// entries they do not already hold; scalars are overwritten when present.
func (c *SweepConfig) Merge(o *Overrides) {
	if o == nil {
		return
	}
	c.TargetFolders = union(c.TargetFolders, o.TargetFolders)
	c.ExcludePatterns = union(c.ExcludePatterns, o.ExcludePatterns)
	c.ProtectedPaths = union(c.ProtectedPaths, o.ProtectedPaths)
	if o.MaxDeleteCount != nil {
		c.MaxDeleteCount = *o.MaxDeleteCount
	}
	if o.NoDeleteLimit != nil {
		c.NoDeleteLimit = *o.NoDeleteLimit
	}
}

// Build layers defaults, the global file, the local file, the explicit
// file and the command line, then resolves protected paths once.
func Build(src Sources) (*SweepConfig, error) {
	cfg := GetDefault()

	for _, optional := range []string{src.GlobalPath, src.LocalPath} {
		if optional == "" {
			continue
		}
		ov, err := LoadOverrides(optional)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		cfg.Merge(ov)
	}

	if src.ExplicitPath != "" {
		ov, err := LoadOverrides(src.ExplicitPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(ov)
	}

	cli := src.CLI
	if err := cli.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command line option: %w", err)
	}
	cfg.Merge(&cli)

	resolved := make([]string, 0, len(cfg.ProtectedPaths))
	for _, p := range cfg.ProtectedPaths {
		r, err := security.ResolvePath(expandHome(p))
		if err != nil {
			return nil, fmt.Errorf("cannot resolve protected path %s: %w", p, err)
		}
		resolved = append(resolved, r)
	}
	cfg.ProtectedPaths = union(nil, resolved)

	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func Save(config *SweepConfig, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GlobalPath returns the per-user config file under configDir.
func GlobalPath(configDir string) string {
	return filepath.Join(configDir, "fsweep", FileName)
}

// LocalPath returns the per-root config file.
func LocalPath(root string) string {
	return filepath.Join(root, FileName)
}

// LegacyFiles returns the TOML config files sitting next to the global and
// local YAML paths of src.
func LegacyFiles(src Sources) []string {
	var found []string
	for _, p := range []string{src.GlobalPath, src.LocalPath} {
		if p == "" {
			continue
		}
		legacy := filepath.Join(filepath.Dir(p), LegacyFileName)
		if info, err := os.Stat(legacy); err == nil && !info.IsDir() {
			found = append(found, legacy)
		}
	}
	return found
}

// EnsureConfigExists writes the default config to configPath if no file is
// there yet. It reports whether a file was created.
func EnsureConfigExists(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if err := Save(GetDefault(), configPath); err != nil {
		return false, err
	}
	return true, nil
}

func union(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
