package buildinfo

import "runtime"

// Set with -ldflags "-X github.com/avivbaron/uri-analyzer/internal/buildinfo.Version=..."
var (
	Version   = "dev"     // e.g., git tag or short SHA
	Commit    = "none"    // short SHA
	BuildTime = "unknown" // RFC3339 UTC
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
}

func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildTime: BuildTime, Go: runtime.Version()}
}
