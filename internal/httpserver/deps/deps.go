package deps

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/records"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed to access /api
	AllowedCIDRS []string // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string // browser origins allowed to call /api

	Records *records.Service      // bookmark, tag and category operations
	Auth    *auth.Authenticator   // login + token verification
	Covers  records.CoverResolver // og:image lookup for /api/fetch-cover
	Store   store.Store           // backend, for readiness
	Health  *scheduler.HealthMonitor

	LoginBurst        int // rate limit on login and fetch-cover
	LoginRefillPerMin int
}
