// Package access provides the access bounded context module: stored roles,
// active-role preferences and the routing guard.
package access

import (
	"time"

	"campaign_portal_backend/internal/access/handler"
	"campaign_portal_backend/internal/access/repository"
	"campaign_portal_backend/internal/access/service"
	"campaign_portal_backend/internal/events"
	apphttp "campaign_portal_backend/internal/http"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Options selects the optional Redis-backed stores.
type Options struct {
	// Redis enables the role cache when set.
	Redis redis.UniversalClient
	// RedisPreferences stores active-role preferences in Redis instead of
	// user_preferences. Requires Redis.
	RedisPreferences bool
	RoleCacheTTL     time.Duration
}

// Module is the access bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the access module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger, opts Options) *Module {
	repo := repository.New(pool)

	var roles repository.RoleReader = repo
	var prefs repository.PreferenceStore = repo
	if opts.Redis != nil {
		ttl := opts.RoleCacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		roles = repository.NewCachedRoleReader(repo, opts.Redis, ttl)
		if opts.RedisPreferences {
			prefs = repository.NewRedisPreferenceStore(opts.Redis)
		}
	}

	svc := service.New(roles, prefs, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "access"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// LoadRoles implements http.RoleLoader.
func (m *Module) LoadRoles() gin.HandlerFunc {
	return m.handler.LoadRoles()
}

// RegisterRoutes mounts access routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/access"))

	ctx.V1.POST("/access/resolve", ctx.OptionalAuth, m.handler.LoadRoles(), m.handler.Resolve)
}

// Compile-time checks
var (
	_ apphttp.Module     = (*Module)(nil)
	_ apphttp.RoleLoader = (*Module)(nil)
)
