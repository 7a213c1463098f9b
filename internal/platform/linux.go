package platform

import "path/filepath"

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir, username string) *Info {
	recs := commonRecommendations()
	recs = append(recs,
		Recommendation{"apt", "sudo apt-get clean", "Clears downloaded package archives"},
		Recommendation{"journald", "journalctl --vacuum-time=2weeks", "Trims old systemd journal entries"},
	)

	return &Info{
		OS:              Linux,
		HomeDir:         homeDir,
		Username:        username,
		ConfigDir:       configBase(homeDir),
		TrashDir:        filepath.Join(homeDir, TrashDirName),
		Recommendations: recs,
	}
}
