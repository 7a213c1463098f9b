package platform

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// TrashDirName is the directory under the home directory that holds trash sessions.
const TrashDirName = ".fsweep_trash"

// Info contains platform-specific information and paths
type Info struct {
	OS        Platform
	HomeDir   string
	Username  string
	ConfigDir string // base directory for per-user config, e.g. ~/.config
	TrashDir  string

	// Recommendations lists toolchain cache commands that live outside any workspace.
	Recommendations []Recommendation
}

// Recommendation is a global cleanup hint shown by the system command.
type Recommendation struct {
	Tool        string
	Command     string
	Description string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// GetInfo returns platform-specific information.
// The home directory honours $HOME so tests and sandboxes can relocate it.
func GetInfo() (*Info, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, &PlatformError{"cannot determine home directory: " + err.Error()}
	}

	username := ""
	if currentUser, err := user.Current(); err == nil {
		username = currentUser.Username
	}

	switch Detect() {
	case MacOS:
		return getMacOSInfo(homeDir, username), nil
	case Linux:
		return getLinuxInfo(homeDir, username), nil
	default:
		return getGenericInfo(homeDir, username), nil
	}
}

// configBase returns $XDG_CONFIG_HOME when set and ~/.config otherwise.
func configBase(homeDir string) string {
	if configDir := os.Getenv("XDG_CONFIG_HOME"); configDir != "" {
		return configDir
	}
	return filepath.Join(homeDir, ".config")
}

func getGenericInfo(homeDir, username string) *Info {
	return &Info{
		OS:              Unknown,
		HomeDir:         homeDir,
		Username:        username,
		ConfigDir:       configBase(homeDir),
		TrashDir:        filepath.Join(homeDir, TrashDirName),
		Recommendations: commonRecommendations(),
	}
}

// commonRecommendations are valid on every supported platform.
func commonRecommendations() []Recommendation {
	return []Recommendation{
		{"Docker", "docker system prune", "Removes unused data (images, caches)"},
		{"uv", "uv cache prune", "Removes outdated wheel/source caches"},
		{"pnpm", "pnpm store prune", "Removes unreferenced packages from store"},
		{"npm", "npm cache clean --force", "Clears the global npm cache"},
		{"Cargo", "cargo install cargo-sweep && cargo sweep -v", "Cleans Rust build artifacts"},
		{"Go", "go clean -cache -modcache", "Clears the Go build and module caches"},
	}
}

// Errors
var (
	ErrUnsupportedPlatform = &PlatformError{"unsupported platform"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
