package config

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// SetBuildFlags records the values injected with -ldflags
func SetBuildFlags(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}
