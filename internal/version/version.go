package version

// Version is the sitebuilder release, injected at link time:
// go build -ldflags "-X git.home.luguber.info/inful/sitebuilder/internal/version.Version=v0.3.0".
var Version = "dev"

// Commit and Date describe the build that produced the binary.
var (
	Commit = "none"
	Date   = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
