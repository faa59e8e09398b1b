package handler

import (
	"net/http"

	"campaign_portal_backend/internal/access/domain"
	"campaign_portal_backend/internal/access/service"
	"campaign_portal_backend/internal/access/transport"
	"campaign_portal_backend/platform/httpkit"
	"campaign_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for access.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new access handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the authenticated access routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.PUT("/me/active-role", h.SetActiveRole)
}

// LoadRoles replaces the token's role claims with the roles stored in
// user_roles. Anonymous requests pass through untouched.
func (h *Handler) LoadRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.GetIdentity(c)
		if !identity.IsAuthenticated() {
			c.Next()
			return
		}

		roles, err := h.svc.Roles(c.Request.Context(), identity.UserID())
		if httpkit.HandleError(c, err) {
			c.Abort()
			return
		}

		httpkit.SetRoles(c, domain.Strings(roles))
		c.Next()
	}
}

func (h *Handler) Me(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Me(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) SetActiveRole(c *gin.Context) {
	var req transport.SetActiveRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.SetActiveRole(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Resolve(c *gin.Context) {
	var req transport.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	identity := httpkit.GetIdentity(c)
	var userID *uuid.UUID
	if identity.IsAuthenticated() {
		id := identity.UserID()
		userID = &id
	}

	result, err := h.svc.Resolve(c.Request.Context(), userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
