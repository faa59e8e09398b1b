// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"campaign_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Access Domain Events
// =============================================================================

// ActiveRoleChanged is published when a multi-role user stores a new
// active role preference.
type ActiveRoleChanged struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role"`
}

func (e ActiveRoleChanged) EventName() string { return "access.active_role.changed" }

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// ProspectCreated is published when a prospect enters the pipeline.
type ProspectCreated struct {
	BaseEvent
	ProspectID  uuid.UUID `json:"prospectId"`
	CompanyName string    `json:"companyName"`
	Stage       string    `json:"stage"`
	CreatedBy   uuid.UUID `json:"createdBy"`
}

func (e ProspectCreated) EventName() string { return "pipeline.prospect.created" }

// ProspectStageChanged is published after every committed prospect transition,
// including transitions to the stage the prospect was already in.
type ProspectStageChanged struct {
	BaseEvent
	ProspectID uuid.UUID `json:"prospectId"`
	FromStage  string    `json:"fromStage"`
	ToStage    string    `json:"toStage"`
	ChangedBy  uuid.UUID `json:"changedBy"`
}

func (e ProspectStageChanged) EventName() string { return "pipeline.prospect.stage_changed" }

// PartnerInviteFailed is published when the closed-won invite could not be
// dispatched. The stage change itself stands.
type PartnerInviteFailed struct {
	BaseEvent
	ProspectID   uuid.UUID `json:"prospectId"`
	ContactEmail string    `json:"contactEmail"`
	Reason       string    `json:"reason"`
}

func (e PartnerInviteFailed) EventName() string { return "pipeline.partner_invite.failed" }

// CampaignStatusUpdated is published when an admin changes a partner's
// campaign stage, priority or dates.
type CampaignStatusUpdated struct {
	BaseEvent
	PartnerID uuid.UUID `json:"partnerId"`
	Stage     string    `json:"stage"`
	Priority  string    `json:"priority"`
	UpdatedBy uuid.UUID `json:"updatedBy"`
}

func (e CampaignStatusUpdated) EventName() string { return "pipeline.campaign_status.updated" }

// =============================================================================
// Billables Domain Events
// =============================================================================

// BillablesApproved is published after a brand-month approval.
type BillablesApproved struct {
	BaseEvent
	MasterBrandID uuid.UUID `json:"masterBrandId"`
	BillingMonth  string    `json:"billingMonth"`
	ApprovedBy    uuid.UUID `json:"approvedBy"`
	RowCount      int       `json:"rowCount"`
}

func (e BillablesApproved) EventName() string { return "billables.approved" }

// BillablesDisputed is published after a dispute is initiated.
type BillablesDisputed struct {
	BaseEvent
	MasterBrandID uuid.UUID `json:"masterBrandId"`
	BillingMonth  string    `json:"billingMonth"`
	InitiatedBy   uuid.UUID `json:"initiatedBy"`
	Notes         string    `json:"notes"`
	RowCount      int       `json:"rowCount"`
}

func (e BillablesDisputed) EventName() string { return "billables.disputed" }

// =============================================================================
// Partner Domain Events
// =============================================================================

// AssetFeedbackUpdated is published when an admin reviews a creative asset.
type AssetFeedbackUpdated struct {
	BaseEvent
	AssetID    uuid.UUID `json:"assetId"`
	PartnerID  uuid.UUID `json:"partnerId"`
	Status     string    `json:"status"`
	ReviewedBy uuid.UUID `json:"reviewedBy"`
}

func (e AssetFeedbackUpdated) EventName() string { return "partners.asset_feedback.updated" }
