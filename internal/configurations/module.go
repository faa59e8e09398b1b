// Package configurations provides the dropdown vocabularies (industries,
// sources, networks) shared by the admin and partner portals.
package configurations

import (
	"context"

	"campaign_portal_backend/internal/configurations/handler"
	"campaign_portal_backend/internal/configurations/repository"
	"campaign_portal_backend/internal/configurations/service"
	"campaign_portal_backend/internal/configurations/transport"
	apphttp "campaign_portal_backend/internal/http"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the configurations module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the configurations module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, err
	}

	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "configurations"
}

// Seed writes the default vocabularies into an empty table.
func (m *Module) Seed(ctx context.Context) error {
	_, err := m.service.SeedDefaults(ctx)
	return err
}

// RegisterRoutes mounts configuration routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/configurations"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/configurations"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
