package config

// DefaultMaxDeleteCount caps a destructive batch unless the limit is disabled.
const DefaultMaxDeleteCount = 50

// DefaultTargetFolders are the folder basenames fsweep treats as junk.
var DefaultTargetFolders = []string{
	// JavaScript / TypeScript
	"node_modules",
	".next",
	".nuxt",
	".svelte-kit",
	".astro",
	".turbo",
	".parcel-cache",
	".vite",

	// Python
	"venv",
	".venv",
	"__pycache__",
	".pytest_cache",
	".tox",
	".nox",
	".mypy_cache",
	".ruff_cache",
	".ipynb_checkpoints",

	// Build output and coverage
	"build",
	"dist",
	"out",
	"coverage",
	"htmlcov",
	".nyc_output",
	".cache",

	// JVM, Rust, .NET
	".gradle",
	"target",
	"bin",
	"obj",

	// Infrastructure
	".terraform",
	".terragrunt-cache",
}

// GetDefault returns the default configuration
func GetDefault() *SweepConfig {
	targets := make([]string, len(DefaultTargetFolders))
	copy(targets, DefaultTargetFolders)

	return &SweepConfig{
		TargetFolders:   targets,
		ExcludePatterns: []string{},
		ProtectedPaths:  []string{},
		MaxDeleteCount:  DefaultMaxDeleteCount,
		NoDeleteLimit:   false,
	}
}
