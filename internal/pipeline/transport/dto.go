package transport

import (
	"time"

	"campaign_portal_backend/internal/pipeline/domain"
	"campaign_portal_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidators adds the pipeline enumeration tags used below.
func RegisterValidators(val *validator.Validator) error {
	if err := val.RegisterOneOf("prospect_stage", domain.ProspectStages()); err != nil {
		return err
	}
	if err := val.RegisterOneOf("campaign_stage", domain.CampaignStages()); err != nil {
		return err
	}
	return val.RegisterOneOf("campaign_priority", domain.Priorities())
}

type CreateProspectRequest struct {
	CompanyName    string     `json:"companyName" validate:"required,min=1,max=200"`
	ContactName    string     `json:"contactName" validate:"required,min=1,max=120"`
	ContactEmail   string     `json:"contactEmail" validate:"required,email"`
	ContactPhone   string     `json:"contactPhone,omitempty" validate:"omitempty,max=50"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty" validate:"omitempty,gte=0"`
	Stage          string     `json:"stage,omitempty" validate:"omitempty,prospect_stage"`
	Notes          string     `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Source         string     `json:"source,omitempty" validate:"omitempty,max=120"`
	Industry       string     `json:"industry,omitempty" validate:"omitempty,max=120"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
}

type UpdateProspectRequest struct {
	CompanyName    *string    `json:"companyName,omitempty" validate:"omitempty,min=1,max=200"`
	ContactName    *string    `json:"contactName,omitempty" validate:"omitempty,min=1,max=120"`
	ContactEmail   *string    `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone   *string    `json:"contactPhone,omitempty" validate:"omitempty,max=50"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty" validate:"omitempty,gte=0"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Source         *string    `json:"source,omitempty" validate:"omitempty,max=120"`
	Industry       *string    `json:"industry,omitempty" validate:"omitempty,max=120"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
}

type ListProspectsRequest struct {
	Stage      string `form:"stage" validate:"omitempty,prospect_stage"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

type TransitionRequest struct {
	Stage string `json:"stage" validate:"required,prospect_stage"`
}

type ProspectResponse struct {
	ID             uuid.UUID  `json:"id"`
	CompanyName    string     `json:"companyName"`
	ContactName    string     `json:"contactName"`
	ContactEmail   string     `json:"contactEmail"`
	ContactPhone   *string    `json:"contactPhone,omitempty"`
	EstimatedValue *float64   `json:"estimatedValue"`
	Stage          string     `json:"stage"`
	Notes          *string    `json:"notes,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Industry       *string    `json:"industry,omitempty"`
	CreatedBy      uuid.UUID  `json:"createdBy"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	StageUpdatedAt time.Time  `json:"stageUpdatedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type ListProspectsResponse struct {
	Items []ProspectResponse `json:"items"`
	Total int                `json:"total"`
}

// Invite dispatch outcomes reported with a transition.
const (
	InviteStatusQueued = "queued"
	InviteStatusSent   = "sent"
	InviteStatusFailed = "failed"
)

type InviteResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// TransitionResponse always carries the committed prospect. Invite is set
// only for transitions to closed_won.
type TransitionResponse struct {
	Prospect      ProspectResponse `json:"prospect"`
	PreviousStage string           `json:"previousStage"`
	Invite        *InviteResult    `json:"invite,omitempty"`
}

type BoardColumn[T any] struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Items []T     `json:"items"`
}

type ProspectBoardResponse struct {
	Columns []BoardColumn[ProspectResponse] `json:"columns"`
	Unknown []ProspectResponse              `json:"unknown,omitempty"`
}

type UpsertCampaignStatusRequest struct {
	Stage           *string    `json:"stage,omitempty" validate:"omitempty,campaign_stage"`
	Priority        *string    `json:"priority,omitempty" validate:"omitempty,campaign_priority"`
	LaunchDate      *time.Time `json:"launchDate,omitempty"`
	NextMeetingDate *time.Time `json:"nextMeetingDate,omitempty"`
	ConclusionDate  *time.Time `json:"conclusionDate,omitempty"`
}

// CampaignStatusResponse reports progress only when the stage is known.
type CampaignStatusResponse struct {
	PartnerID       uuid.UUID  `json:"partnerId"`
	Priority        string     `json:"priority"`
	Stage           string     `json:"stage"`
	StageKnown      bool       `json:"stageKnown"`
	ProgressPercent *float64   `json:"progressPercent,omitempty"`
	StageIndex      *int       `json:"stageIndex,omitempty"`
	TotalStages     int        `json:"totalStages"`
	LaunchDate      *time.Time `json:"launchDate,omitempty"`
	NextMeetingDate *time.Time `json:"nextMeetingDate,omitempty"`
	ConclusionDate  *time.Time `json:"conclusionDate,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CampaignCardResponse struct {
	PartnerID   uuid.UUID               `json:"partnerId"`
	CompanyName string                  `json:"companyName"`
	ContactName string                  `json:"contactName"`
	Status      *CampaignStatusResponse `json:"status,omitempty"`
}

type CampaignBoardResponse struct {
	Columns []BoardColumn[CampaignCardResponse] `json:"columns"`
	// Unknown holds partners whose stage is outside the canonical order.
	Unknown []CampaignCardResponse `json:"unknown,omitempty"`
	// Unassigned holds partners without a campaign status row.
	Unassigned []CampaignCardResponse `json:"unassigned,omitempty"`
}
