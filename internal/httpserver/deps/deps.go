package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// BookmarkService is the storage collaborator behind the bookmark routes.
// *service.BookmarkService implements it.
type BookmarkService interface {
	Test(ctx context.Context) (string, error)
	Create(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error)
	Retrieve(ctx context.Context, userID string) ([]*domain.Bookmark, error)
	Update(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error)
	Delete(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time   // for testing, defaults to time.Now
	BasePath     string             // mount point of the bookmark routes, ex: "/Bookmark"
	StoreBackend string             // "redis" | "sqlite" | "memory", reported by readyz
	Bookmarks    BookmarkService    // storage collaborator
	Verifier     auth.Verifier      // identity collaborator
	AllowedHosts []string           // Host headers allowed to access the API
	AllowedCIDRS []string           // IPs allowed to access healthz/readyz/reload endpoints
	TrustProxy   bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimit    mw.RateLimitConfig // per-IP limits on the bookmark routes
	SeedTrigger  chan struct{}      // manual seed re-import (nil if seeding disabled)
}
