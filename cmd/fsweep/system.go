package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fenilsonani/fsweep/internal/config"
	"github.com/fenilsonani/fsweep/internal/platform"
	"github.com/fenilsonani/fsweep/internal/security"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSystemCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "system",
		Short: "Show hints for cleaning global toolchain caches",
		Long:  `Lists cleanup commands for caches that live outside any workspace, such as the Docker, npm and Go caches.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := platform.GetInfo()
			if err != nil {
				return &exitError{code: 1, msg: err.Error()}
			}

			fmt.Fprintln(a.stdout, styles.BannerStyle.BorderForeground(styles.Info).Render(
				styles.InfoStyle.Render("System-wide Cleanup Recommendations")))

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("Tool", "Cleanup Command", "Description").
				StyleFunc(func(row, col int) lipgloss.Style {
					style := lipgloss.NewStyle().PaddingRight(2)
					if row == table.HeaderRow {
						return style.Bold(true)
					}
					switch col {
					case 0:
						return style.Inherit(styles.CategoryStyle)
					case 1:
						return style.Inherit(styles.WarningStyle)
					default:
						return style.Inherit(styles.DimStyle)
					}
				})
			for _, rec := range info.Recommendations {
				t.Row(rec.Tool, rec.Command, rec.Description)
			}

			fmt.Fprintln(a.stdout, t.Render())
			fmt.Fprintln(a.stdout, styles.WarningStyle.Render(
				"\nNote: Run these with caution as they affect your whole system."))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var (
		path       string
		initGlobal bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows which config files apply to a workspace and prints the merged
configuration. With --init, writes the defaults to the global config file.

Config files are YAML (fsweep.yaml). TOML files named fsweep.toml are not
read; a warning names any that are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := platform.GetInfo()
			if err != nil {
				return &exitError{code: 1, msg: err.Error()}
			}
			globalPath := config.GlobalPath(info.ConfigDir)

			if initGlobal {
				created, err := config.EnsureConfigExists(globalPath)
				if err != nil {
					return &exitError{code: 1, msg: err.Error()}
				}
				if created {
					fmt.Fprintf(a.stdout, "Created %s\n", globalPath)
				} else {
					fmt.Fprintf(a.stdout, "%s already exists\n", globalPath)
				}
				return nil
			}

			root, err := security.ResolvePath(path)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("Path %s does not exist.", path)}
			}
			localPath := config.LocalPath(root)

			sources := config.Sources{
				GlobalPath:   globalPath,
				LocalPath:    localPath,
				ExplicitPath: a.configPath,
			}
			cfg, err := config.Build(sources)
			if err != nil {
				return &exitError{code: 1, msg: err.Error()}
			}
			a.warnLegacyConfig(sources)

			fmt.Fprintf(a.stdout, "Global config: %s%s\n", globalPath, presence(globalPath))
			fmt.Fprintf(a.stdout, "Local config:  %s%s\n", localPath, presence(localPath))
			if a.configPath != "" {
				fmt.Fprintf(a.stdout, "Extra config:  %s\n", a.configPath)
			}
			fmt.Fprintln(a.stdout)

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "workspace directory whose local config applies")
	cmd.Flags().BoolVar(&initGlobal, "init", false, "write the default config to the global config file")

	return cmd
}

// warnLegacyConfig tells the user about TOML config files that are no
// longer read. The notice goes to stderr so JSON output stays clean.
func (a *app) warnLegacyConfig(src config.Sources) {
	for _, legacy := range config.LegacyFiles(src) {
		yamlPath := filepath.Join(filepath.Dir(legacy), config.FileName)
		fmt.Fprintln(a.stderr, styles.WarningStyle.Render(fmt.Sprintf(
			"Warning: %s is ignored. Move its settings to %s.", legacy, yamlPath)))
	}
}

func presence(path string) string {
	if _, err := os.Stat(path); err != nil {
		return " (not found)"
	}
	return ""
}
