package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built software's version.
	Version = LightringSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

// LightringSemVer is the current semantic version of lightring.
const LightringSemVer = "0.1.0"
