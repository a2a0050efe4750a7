package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/sitelist/internal/directory"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/mq"
)

// Pinger is an optional backend the ops endpoints report on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Directory    *directory.Service // every directory operation
	StoreBackend string             // "mongo" | "memory"
	Cache        Pinger             // listing cache, nil when disabled
	Events       mq.Publisher       // event publisher, mq.Noop when disabled
	AllowedHosts []string           // Host headers allowed on ops routes
	AllowedCIDRS []string           // IPs allowed on ops routes
	TrustProxy   bool               // true if running behind a trusted reverse proxy

	// WriteLimit rate-limits public write routes. Set by httpserver.New so
	// every route shares one limiter.
	WriteLimit func(http.Handler) http.Handler
}
