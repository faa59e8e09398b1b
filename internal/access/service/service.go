// Package service implements role loading, active-role preferences and the
// routing guard endpoint for the access bounded context.
package service

import (
	"context"

	"campaign_portal_backend/internal/access/domain"
	"campaign_portal_backend/internal/access/repository"
	"campaign_portal_backend/internal/access/transport"
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Service provides business logic for access.
type Service struct {
	roles    repository.RoleReader
	prefs    repository.PreferenceStore
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new access service.
func New(roles repository.RoleReader, prefs repository.PreferenceStore, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{roles: roles, prefs: prefs, eventBus: eventBus, log: log}
}

// Roles returns the known roles held by userID.
func (s *Service) Roles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	raw, err := s.roles.ListRoles(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load roles", err)
	}
	return domain.ParseRoles(raw), nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.MeResponse, error) {
	roles, err := s.Roles(ctx, userID)
	if err != nil {
		return transport.MeResponse{}, err
	}

	stored, err := s.storedPreference(ctx, userID)
	if err != nil {
		return transport.MeResponse{}, err
	}

	return buildMe(userID, roles, domain.ResolveActiveRole(roles, stored)), nil
}

// SetActiveRole stores the dashboard choice of a user. The role must be one
// the user holds.
func (s *Service) SetActiveRole(ctx context.Context, userID uuid.UUID, req transport.SetActiveRoleRequest) (transport.MeResponse, error) {
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return transport.MeResponse{}, apperr.Validation("unknown role")
	}

	roles, err := s.Roles(ctx, userID)
	if err != nil {
		return transport.MeResponse{}, err
	}
	if !domain.HasRole(roles, role) {
		s.log.AccessDenied(userID.String(), "active role not held: "+string(role))
		return transport.MeResponse{}, apperr.Forbidden("role not assigned to user")
	}

	if err := s.prefs.Set(ctx, userID, repository.ActiveRoleKey, string(role)); err != nil {
		return transport.MeResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store active role", err)
	}

	s.eventBus.Publish(ctx, events.ActiveRoleChanged{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
		Role:      string(role),
	})

	return buildMe(userID, roles, domain.ResolveActiveRole(roles, &role)), nil
}

// Resolve runs the routing guard. userID is nil for anonymous callers.
func (s *Service) Resolve(ctx context.Context, userID *uuid.UUID, req transport.ResolveRequest) (transport.ResolveResponse, error) {
	in := domain.Input{PreviewMode: req.PreviewMode}

	if req.RequiredRole != nil {
		required, ok := domain.ParseRole(*req.RequiredRole)
		if !ok {
			return transport.ResolveResponse{}, apperr.Validation("unknown required role")
		}
		in.RequiredRole = &required
	}

	switch {
	case req.AuthLoading:
		in.Auth = domain.AuthLoading
	case userID == nil:
		in.Auth = domain.AuthAnonymous
	default:
		in.Auth = domain.AuthAuthenticated
		roles, err := s.Roles(ctx, *userID)
		if err != nil {
			return transport.ResolveResponse{}, err
		}
		stored, err := s.storedPreference(ctx, *userID)
		if err != nil {
			return transport.ResolveResponse{}, err
		}
		in.Roles = roles
		in.StoredPreference = stored
	}

	decision := domain.Resolve(in)
	resp := transport.ResolveResponse{
		Decision: string(decision.Kind),
		Path:     decision.Path,
		Rule:     decision.Rule,
	}
	if in.Auth == domain.AuthAuthenticated {
		if active := domain.ResolveActiveRole(in.Roles, in.StoredPreference); active != nil {
			value := string(*active)
			resp.ActiveRole = &value
		}
	}
	return resp, nil
}

func (s *Service) storedPreference(ctx context.Context, userID uuid.UUID) (*domain.Role, error) {
	value, ok, err := s.prefs.Get(ctx, userID, repository.ActiveRoleKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load active role", err)
	}
	if !ok {
		return nil, nil
	}
	role, known := domain.ParseRole(value)
	if !known {
		return nil, nil
	}
	return &role, nil
}

func buildMe(userID uuid.UUID, roles []domain.Role, active *domain.Role) transport.MeResponse {
	resp := transport.MeResponse{
		UserID:   userID,
		Roles:    domain.Strings(roles),
		HomePath: domain.PathSelectRole,
	}
	if active != nil {
		value := string(*active)
		resp.ActiveRole = &value
		resp.HomePath = domain.HomePath(*active)
	} else {
		resp.NeedsRoleSelection = true
	}
	return resp
}
