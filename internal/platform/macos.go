package platform

import "path/filepath"

// getMacOSInfo returns platform-specific information for macOS.
// Config lives under ~/.config rather than ~/Library so one fsweep.yaml
// works across machines.
func getMacOSInfo(homeDir, username string) *Info {
	recs := commonRecommendations()
	recs = append(recs,
		Recommendation{"Brew", "brew cleanup", "Removes old versions of installed formulae"},
		Recommendation{"Xcode", "xcrun simctl delete unavailable", "Removes simulators for uninstalled runtimes"},
	)

	return &Info{
		OS:              MacOS,
		HomeDir:         homeDir,
		Username:        username,
		ConfigDir:       configBase(homeDir),
		TrashDir:        filepath.Join(homeDir, TrashDirName),
		Recommendations: recs,
	}
}
