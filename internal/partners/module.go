// Package partners provides the partners bounded context module: partner
// records, creative asset collection and asset review.
package partners

import (
	"campaign_portal_backend/internal/adapters/storage"
	"campaign_portal_backend/internal/events"
	apphttp "campaign_portal_backend/internal/http"
	"campaign_portal_backend/internal/partners/handler"
	"campaign_portal_backend/internal/partners/repository"
	"campaign_portal_backend/internal/partners/service"
	"campaign_portal_backend/internal/partners/transport"
	"campaign_portal_backend/platform/httpkit"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the partners bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the partners module. storageSvc may be
// nil when MinIO is not configured.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	storageSvc storage.StorageService,
	assetBucket string,
	val *validator.Validator,
	log *logger.Logger,
) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, err
	}

	svc := service.New(repository.New(pool), eventBus, storageSvc, assetBucket, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "partners"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts partner routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/partners"))
	m.handler.RegisterReviewRoutes(ctx.Admin.Group("/assets"))
	m.handler.RegisterPartnerRoutes(ctx.Protected.Group("/partner", httpkit.RequireRole("partner")))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
