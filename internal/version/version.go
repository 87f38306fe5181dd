// Package version provides build-time version information for the application.
package version

var (
	// Version is the application version (e.g., git tag or "dev")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "dev"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info is the payload served by /version
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// Current returns the build information for the named service
func Current(service string) Info {
	return Info{
		Service:   service,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

// String renders the build information on one line for CLI output
func (i Info) String() string {
	return i.Service + " " + i.Version + " (commit " + i.Commit + ", built " + i.BuildTime + ")"
}
