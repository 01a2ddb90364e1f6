// Package version exposes the build version stamped in at link time.
package version

// Version is injected by the build system via ldflags.
var Version string

// GitCommit is the commit sha the binary was built from, injected via ldflags.
var GitCommit string

// GetVersion returns the version string, falling back to a development
// default when the binary was built without ldflags. A commit sha, when
// present, is shortened and appended.
func GetVersion() string {
	v := Version
	if v == "" {
		v = "v0.1.0"
	}
	commit := GitCommit
	if commit == "" {
		return v
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return v + "-" + commit
}
