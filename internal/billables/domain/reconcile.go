// Package domain holds the billables reconciliation rules: per-brand monthly
// aggregation, payout deltas and discrepancy flagging.
package domain

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DiscrepancyThresholdPercent is the materiality threshold. A brand whose
// absolute delta percent exceeds it is flagged.
const DiscrepancyThresholdPercent = 5.0

// Dispute states stored in monthly_billables.dispute_status.
const (
	DisputeInitiated = "initiated"
	DisputeResolved  = "resolved"
)

// Brand is the canonical identity a brand is billed under.
type Brand struct {
	ID        uuid.UUID
	Name      string
	CommonID  string
	CreatedAt time.Time
}

// Billable is one brand's conversions and payouts on one network for one
// billing month.
type Billable struct {
	ID                    uuid.UUID
	MasterBrandID         uuid.UUID
	BillingMonth          string
	Network               string
	Conversions           int64
	GrossRevenue          float64
	NetworkReportedPayout float64
	InternalTrackedPayout float64
	IsApproved            bool
	ApprovedBy            *uuid.UUID
	ApprovedAt            *time.Time
	DisputeStatus         *string
	DisputeNotes          *string
}

// Aggregate is a brand's totals for a billing month.
type Aggregate struct {
	Brand               Brand
	Rows                []Billable
	TotalConversions    int64
	TotalGrossRevenue   float64
	TotalNetworkPayout  float64
	TotalInternalPayout float64
	Delta               float64
	DeltaPercent        float64
	HasDiscrepancy      bool
	// IsApproved holds only when every row is approved.
	IsApproved bool
}

// Summary is the month-level rollup shown above the brand list.
type Summary struct {
	TotalVerified     float64
	TotalPending      float64
	HighVarianceCount int
	NetProfit         float64
}

// DeltaPercent returns delta relative to the internal total, or 0 when the
// internal total is not positive.
func DeltaPercent(network, internal float64) float64 {
	if internal <= 0 {
		return 0
	}
	return (network - internal) / internal * 100
}

// HasDiscrepancy reports whether deltaPercent exceeds the threshold in
// either direction.
func HasDiscrepancy(deltaPercent float64) bool {
	return math.Abs(deltaPercent) > DiscrepancyThresholdPercent
}

// AggregateMonth groups rows under their brands. Brands without rows are
// left out and rows whose brand is unknown are ignored. The result is
// ordered by brand name.
func AggregateMonth(brands []Brand, rows []Billable) []Aggregate {
	byBrand := make(map[uuid.UUID][]Billable)
	for _, row := range rows {
		byBrand[row.MasterBrandID] = append(byBrand[row.MasterBrandID], row)
	}

	out := make([]Aggregate, 0, len(byBrand))
	for _, brand := range brands {
		brandRows, ok := byBrand[brand.ID]
		if !ok {
			continue
		}
		out = append(out, aggregateBrand(brand, brandRows))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Brand.Name < out[j].Brand.Name
	})
	return out
}

func aggregateBrand(brand Brand, rows []Billable) Aggregate {
	agg := Aggregate{Brand: brand, Rows: rows, IsApproved: true}
	for _, row := range rows {
		agg.TotalConversions += row.Conversions
		agg.TotalGrossRevenue += row.GrossRevenue
		agg.TotalNetworkPayout += row.NetworkReportedPayout
		agg.TotalInternalPayout += row.InternalTrackedPayout
		agg.IsApproved = agg.IsApproved && row.IsApproved
	}
	agg.Delta = agg.TotalNetworkPayout - agg.TotalInternalPayout
	agg.DeltaPercent = DeltaPercent(agg.TotalNetworkPayout, agg.TotalInternalPayout)
	agg.HasDiscrepancy = HasDiscrepancy(agg.DeltaPercent)
	return agg
}

// Summarize computes the month rollup over aggregates.
func Summarize(aggs []Aggregate) Summary {
	var s Summary
	for _, agg := range aggs {
		if agg.IsApproved {
			s.TotalVerified += agg.TotalNetworkPayout
		} else {
			s.TotalPending += agg.TotalNetworkPayout
		}
		if agg.HasDiscrepancy {
			s.HighVarianceCount++
		}
		s.NetProfit += agg.TotalGrossRevenue - agg.TotalNetworkPayout
	}
	return s
}
