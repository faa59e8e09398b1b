package repository

import (
	"time"

	"github.com/google/uuid"
)

type Prospect struct {
	ID             uuid.UUID
	CompanyName    string
	ContactName    string
	ContactEmail   string
	ContactPhone   *string
	EstimatedValue *float64
	Stage          string
	Notes          *string
	Source         *string
	Industry       *string
	CreatedBy      uuid.UUID
	AssignedTo     *uuid.UUID
	StageUpdatedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProspectUpdate carries field edits. Nil fields are left unchanged and the
// stage is never part of an edit.
type ProspectUpdate struct {
	ID             uuid.UUID
	CompanyName    *string
	ContactName    *string
	ContactEmail   *string
	ContactPhone   *string
	EstimatedValue *float64
	Notes          *string
	Source         *string
	Industry       *string
	AssignedTo     *uuid.UUID
	UpdatedAt      time.Time
}

type ListParams struct {
	Stage      string
	AssignedTo *uuid.UUID
	Search     string
	Limit      int
}

// StageTotal is the number of prospects in a stage and the sum of their
// estimated values. Missing values count as zero.
type StageTotal struct {
	Stage string
	Count int
	Sum   float64
}

type CampaignStatus struct {
	PartnerID       uuid.UUID
	Priority        string
	Stage           string
	LaunchDate      *time.Time
	NextMeetingDate *time.Time
	ConclusionDate  *time.Time
	UpdatedAt       time.Time
}

// CampaignStatusUpsert sets the given fields. On insert, missing stage and
// priority fall back to the column defaults.
type CampaignStatusUpsert struct {
	PartnerID       uuid.UUID
	Priority        *string
	Stage           *string
	LaunchDate      *time.Time
	NextMeetingDate *time.Time
	ConclusionDate  *time.Time
	UpdatedAt       time.Time
}

// CampaignCard is a partner with its campaign status, if any.
type CampaignCard struct {
	PartnerID   uuid.UUID
	CompanyName string
	ContactName string
	Status      *CampaignStatus
}
