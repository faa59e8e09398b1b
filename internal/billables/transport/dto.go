package transport

import (
	"time"

	"campaign_portal_backend/platform/batch"
	"campaign_portal_backend/platform/validator"

	"github.com/google/uuid"
)

// Network API sync states.
var networkStatuses = []string{"ok", "degraded", "down", "unknown"}

// RegisterValidators adds the billables enumeration tags used below.
func RegisterValidators(val *validator.Validator) error {
	return val.RegisterOneOf("network_status", networkStatuses)
}

type MonthRequest struct {
	BillingMonth string `form:"month" validate:"required,billing_month"`
}

type BillableRowResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Network               string     `json:"network"`
	Conversions           int64      `json:"conversions"`
	GrossRevenue          float64    `json:"grossRevenue"`
	NetworkReportedPayout float64    `json:"networkReportedPayout"`
	InternalTrackedPayout float64    `json:"internalTrackedPayout"`
	IsApproved            bool       `json:"isApproved"`
	ApprovedBy            *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt            *time.Time `json:"approvedAt,omitempty"`
	DisputeStatus         *string    `json:"disputeStatus,omitempty"`
	DisputeNotes          *string    `json:"disputeNotes,omitempty"`
}

type BrandAggregateResponse struct {
	MasterBrandID       uuid.UUID             `json:"masterBrandId"`
	Name                string                `json:"name"`
	CommonID            string                `json:"commonId"`
	TotalConversions    int64                 `json:"totalConversions"`
	TotalGrossRevenue   float64               `json:"totalGrossRevenue"`
	TotalNetworkPayout  float64               `json:"totalNetworkPayout"`
	TotalInternalPayout float64               `json:"totalInternalPayout"`
	Delta               float64               `json:"delta"`
	DeltaPercent        float64               `json:"deltaPercent"`
	HasDiscrepancy      bool                  `json:"hasDiscrepancy"`
	IsApproved          bool                  `json:"isApproved"`
	Rows                []BillableRowResponse `json:"rows"`
}

type SummaryResponse struct {
	TotalVerified     float64 `json:"totalVerified"`
	TotalPending      float64 `json:"totalPending"`
	HighVarianceCount int     `json:"highVarianceCount"`
	NetProfit         float64 `json:"netProfit"`
}

type MonthResponse struct {
	BillingMonth string                   `json:"billingMonth"`
	Summary      SummaryResponse          `json:"summary"`
	Brands       []BrandAggregateResponse `json:"brands"`
}

type ApproveRequest struct {
	BillingMonth string `json:"billingMonth" validate:"required,billing_month"`
}

type DisputeRequest struct {
	BillingMonth string `json:"billingMonth" validate:"required,billing_month"`
	Notes        string `json:"notes" validate:"required,min=1,max=2000"`
}

// RowResult is the state of one row after a brand-month update.
type RowResult struct {
	ID            uuid.UUID `json:"id"`
	Network       string    `json:"network"`
	IsApproved    bool      `json:"isApproved"`
	DisputeStatus *string   `json:"disputeStatus,omitempty"`
}

type BrandMonthUpdateResponse struct {
	MasterBrandID uuid.UUID   `json:"masterBrandId"`
	BillingMonth  string      `json:"billingMonth"`
	Rows          []RowResult `json:"rows"`
	// IsApproved is the aggregate state after the update.
	IsApproved bool `json:"isApproved"`
}

type MappingRequest struct {
	Network          string `json:"network" validate:"required,min=1,max=100"`
	NetworkBrandID   string `json:"networkBrandId" validate:"required,min=1,max=200"`
	NetworkBrandName string `json:"networkBrandName" validate:"required,min=1,max=200"`
}

type CreateMasterBrandRequest struct {
	Name     string           `json:"name" validate:"required,min=1,max=200"`
	CommonID string           `json:"commonId" validate:"required,min=1,max=100"`
	Mappings []MappingRequest `json:"mappings" validate:"omitempty,max=50,dive"`
}

type MappingResponse struct {
	ID               uuid.UUID `json:"id"`
	Network          string    `json:"network"`
	NetworkBrandID   string    `json:"networkBrandId"`
	NetworkBrandName string    `json:"networkBrandName"`
}

type MasterBrandResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	CommonID  string            `json:"commonId"`
	CreatedAt time.Time         `json:"createdAt"`
	Mappings  []MappingResponse `json:"mappings"`
}

// CreateMasterBrandResponse is also the details payload of a partial
// failure, so callers can see which mappings were written.
type CreateMasterBrandResponse struct {
	Brand    MasterBrandResponse `json:"brand"`
	Mappings batch.Outcome       `json:"mappings"`
}

type UpsertBillableRequest struct {
	MasterBrandID         uuid.UUID `json:"masterBrandId" validate:"required"`
	BillingMonth          string    `json:"billingMonth" validate:"required,billing_month"`
	Network               string    `json:"network" validate:"required,min=1,max=100"`
	Conversions           int64     `json:"conversions" validate:"gte=0"`
	GrossRevenue          float64   `json:"grossRevenue" validate:"gte=0"`
	NetworkReportedPayout float64   `json:"networkReportedPayout" validate:"gte=0"`
	InternalTrackedPayout float64   `json:"internalTrackedPayout" validate:"gte=0"`
}

type NetworkStatusRequest struct {
	Status  string  `json:"status" validate:"required,network_status"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

type NetworkStatusResponse struct {
	Network      string     `json:"network"`
	Status       string     `json:"status"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	Message      *string    `json:"message,omitempty"`
}
