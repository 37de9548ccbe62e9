package version

import (
	"fmt"
	"runtime"
	"time"
)

// Overridden at build time with -ldflags "-X github.com/MrSnakeDoc/shelf/internal/version.Version=..."
var (
	Version   = "dev"                           // ex: v0.3.0
	Commit    = "none"                          // ex: 9f1c2ab
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-03-02T09:14:00Z
	GoVersion = runtime.Version()               // go version
)

// String renders the build metadata on one line for startup logs.
func String() string {
	return fmt.Sprintf("shelf %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
