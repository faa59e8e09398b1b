package transport

import (
	"time"

	"campaign_portal_backend/internal/partners/domain"
	"campaign_portal_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidators adds the partner enumeration tags used below.
func RegisterValidators(val *validator.Validator) error {
	if err := val.RegisterOneOf("asset_channel", domain.Channels()); err != nil {
		return err
	}
	return val.RegisterOneOf("feedback_status", domain.FeedbackStatuses())
}

type CreatePartnerRequest struct {
	CompanyName  string     `json:"companyName" validate:"required,min=1,max=200"`
	ContactName  string     `json:"contactName" validate:"required,min=1,max=120"`
	ContactEmail string     `json:"contactEmail" validate:"required,email"`
	ContactPhone string     `json:"contactPhone,omitempty" validate:"omitempty,max=50"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
	ProspectID   *uuid.UUID `json:"prospectId,omitempty"`
}

type UpdatePartnerRequest struct {
	CompanyName  *string    `json:"companyName,omitempty" validate:"omitempty,min=1,max=200"`
	ContactName  *string    `json:"contactName,omitempty" validate:"omitempty,min=1,max=120"`
	ContactEmail *string    `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone *string    `json:"contactPhone,omitempty" validate:"omitempty,max=50"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
}

type ListPartnersRequest struct {
	Search    string `form:"search" validate:"omitempty,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=companyName createdAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type PartnerResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
	CompanyName  string     `json:"companyName"`
	ContactName  string     `json:"contactName"`
	ContactEmail string     `json:"contactEmail"`
	ContactPhone *string    `json:"contactPhone,omitempty"`
	ProspectID   *uuid.UUID `json:"prospectId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ListPartnersResponse struct {
	Items      []PartnerResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type FeedbackResponse struct {
	Status     string     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
	ReviewedBy *uuid.UUID `json:"reviewedBy,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type AssetResponse struct {
	ID         uuid.UUID         `json:"id"`
	PartnerID  uuid.UUID         `json:"partnerId"`
	Channel    string            `json:"channel"`
	FileURLs   []string          `json:"fileUrls"`
	IsComplete bool              `json:"isComplete"`
	Feedback   *FeedbackResponse `json:"feedback,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type ChecklistResponse struct {
	Complete int      `json:"complete"`
	Total    int      `json:"total"`
	Approved int      `json:"approved"`
	Missing  []string `json:"missing"`
}

type AssetsResponse struct {
	Assets    []AssetResponse   `json:"assets"`
	Checklist ChecklistResponse `json:"checklist"`
}

type UpsertAssetRequest struct {
	FileURLs   []string `json:"fileUrls" validate:"max=50,dive,required,max=1000"`
	IsComplete bool     `json:"isComplete"`
}

type PresignUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required,min=1,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

type PresignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
	ExpiresAt int64  `json:"expiresAt"`
}

type DownloadRequest struct {
	FileKey string `form:"key" validate:"required,max=1000"`
}

type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   int64  `json:"expiresAt"`
}

type SetFeedbackRequest struct {
	Status string  `json:"status" validate:"required,feedback_status"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}
