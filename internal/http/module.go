// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"campaign_portal_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RoleLoader supplies middleware that loads the caller's stored roles.
type RoleLoader interface {
	LoadRoles() gin.HandlerFunc
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the /api/v1 route group. Routes here are public unless they add
	// OptionalAuth or AuthMiddleware themselves.
	V1 *gin.RouterGroup
	// Protected is the authenticated route group under /api/v1.
	Protected *gin.RouterGroup
	// Admin is the admin-only route group under /api/v1/admin.
	Admin *gin.RouterGroup
	// Config is the JWT configuration for auth middleware (scoped access).
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
	// OptionalAuth sets the identity when a token is present.
	OptionalAuth gin.HandlerFunc
}
