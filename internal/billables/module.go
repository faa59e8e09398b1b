// Package billables provides the billables reconciliation module.
package billables

import (
	"campaign_portal_backend/internal/billables/handler"
	"campaign_portal_backend/internal/billables/repository"
	"campaign_portal_backend/internal/billables/service"
	"campaign_portal_backend/internal/billables/transport"
	"campaign_portal_backend/internal/events"
	apphttp "campaign_portal_backend/internal/http"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the billables bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the billables module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, err
	}

	svc := service.New(repository.New(pool), eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "billables"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts billables routes under the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/billables"))
}

var _ apphttp.Module = (*Module)(nil)
