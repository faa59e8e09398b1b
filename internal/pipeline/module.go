// Package pipeline provides the prospect pipeline and partner campaign
// status module.
package pipeline

import (
	"campaign_portal_backend/internal/events"
	apphttp "campaign_portal_backend/internal/http"
	"campaign_portal_backend/internal/pipeline/handler"
	"campaign_portal_backend/internal/pipeline/repository"
	"campaign_portal_backend/internal/pipeline/service"
	"campaign_portal_backend/internal/pipeline/transport"
	"campaign_portal_backend/platform/httpkit"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the pipeline module. invites may be nil, in which case
// closed_won transitions report a failed invite.
func NewModule(pool *pgxpool.Pool, invites service.InviteDispatcher, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, repo, invites, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/prospects"))
	m.handler.RegisterCampaignRoutes(ctx.Admin.Group("/campaigns"))

	ctx.Protected.GET("/partner/campaign", httpkit.RequireRole("partner"), m.handler.MyCampaignStatus)
}

var _ apphttp.Module = (*Module)(nil)
