package repository

import (
	"time"

	"github.com/google/uuid"
)

type Partner struct {
	ID           uuid.UUID
	UserID       *uuid.UUID
	CompanyName  string
	ContactName  string
	ContactEmail string
	ContactPhone *string
	ProspectID   *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PartnerUpdate struct {
	ID           uuid.UUID
	UserID       *uuid.UUID
	CompanyName  *string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
}

type ListParams struct {
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

type ListResult struct {
	Items      []Partner
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

type CreativeAsset struct {
	ID         uuid.UUID
	PartnerID  uuid.UUID
	Channel    string
	FileURLs   []string
	IsComplete bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Feedback   *AssetFeedback
}

// AssetUpsert replaces the files of a (partner, channel) asset.
type AssetUpsert struct {
	PartnerID  uuid.UUID
	Channel    string
	FileURLs   []string
	IsComplete bool
	At         time.Time
}

type AssetFeedback struct {
	AssetID    uuid.UUID
	Status     string
	Notes      *string
	ReviewedBy *uuid.UUID
	UpdatedAt  time.Time
}
