package transport

import "github.com/google/uuid"

type MeResponse struct {
	UserID             uuid.UUID `json:"userId"`
	Roles              []string  `json:"roles"`
	ActiveRole         *string   `json:"activeRole"`
	NeedsRoleSelection bool      `json:"needsRoleSelection"`
	HomePath           string    `json:"homePath"`
}

type SetActiveRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin partner"`
}

// ResolveRequest asks the routing guard what to do for a navigation.
// AuthLoading lets a client ask while its session is still rehydrating.
type ResolveRequest struct {
	RequiredRole *string `json:"requiredRole" validate:"omitempty,oneof=admin partner"`
	PreviewMode  bool    `json:"previewMode"`
	AuthLoading  bool    `json:"authLoading"`
}

type ResolveResponse struct {
	Decision   string  `json:"decision"`
	Path       string  `json:"path,omitempty"`
	Rule       int     `json:"rule"`
	ActiveRole *string `json:"activeRole,omitempty"`
}
