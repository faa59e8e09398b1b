package service

import (
	"campaign_portal_backend/internal/billables/domain"
	"campaign_portal_backend/internal/billables/repository"
	"campaign_portal_backend/internal/billables/transport"
)

func mapRow(b domain.Billable) transport.BillableRowResponse {
	return transport.BillableRowResponse{
		ID:                    b.ID,
		Network:               b.Network,
		Conversions:           b.Conversions,
		GrossRevenue:          b.GrossRevenue,
		NetworkReportedPayout: b.NetworkReportedPayout,
		InternalTrackedPayout: b.InternalTrackedPayout,
		IsApproved:            b.IsApproved,
		ApprovedBy:            b.ApprovedBy,
		ApprovedAt:            b.ApprovedAt,
		DisputeStatus:         b.DisputeStatus,
		DisputeNotes:          b.DisputeNotes,
	}
}

func mapAggregate(agg domain.Aggregate) transport.BrandAggregateResponse {
	rows := make([]transport.BillableRowResponse, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		rows = append(rows, mapRow(r))
	}
	return transport.BrandAggregateResponse{
		MasterBrandID:       agg.Brand.ID,
		Name:                agg.Brand.Name,
		CommonID:            agg.Brand.CommonID,
		TotalConversions:    agg.TotalConversions,
		TotalGrossRevenue:   agg.TotalGrossRevenue,
		TotalNetworkPayout:  agg.TotalNetworkPayout,
		TotalInternalPayout: agg.TotalInternalPayout,
		Delta:               agg.Delta,
		DeltaPercent:        agg.DeltaPercent,
		HasDiscrepancy:      agg.HasDiscrepancy,
		IsApproved:          agg.IsApproved,
		Rows:                rows,
	}
}

func mapRowResults(rows []domain.Billable) ([]transport.RowResult, bool) {
	out := make([]transport.RowResult, 0, len(rows))
	approved := len(rows) > 0
	for _, r := range rows {
		out = append(out, transport.RowResult{
			ID:            r.ID,
			Network:       r.Network,
			IsApproved:    r.IsApproved,
			DisputeStatus: r.DisputeStatus,
		})
		approved = approved && r.IsApproved
	}
	return out, approved
}

func mapMapping(m repository.Mapping) transport.MappingResponse {
	return transport.MappingResponse{
		ID:               m.ID,
		Network:          m.Network,
		NetworkBrandID:   m.NetworkBrandID,
		NetworkBrandName: m.NetworkBrandName,
	}
}

func mapBrand(b domain.Brand, mappings []repository.Mapping) transport.MasterBrandResponse {
	resp := transport.MasterBrandResponse{
		ID:        b.ID,
		Name:      b.Name,
		CommonID:  b.CommonID,
		CreatedAt: b.CreatedAt,
		Mappings:  make([]transport.MappingResponse, 0, len(mappings)),
	}
	for _, m := range mappings {
		resp.Mappings = append(resp.Mappings, mapMapping(m))
	}
	return resp
}

func mapNetworkStatus(s repository.NetworkStatus) transport.NetworkStatusResponse {
	return transport.NetworkStatusResponse{
		Network:      s.Network,
		Status:       s.Status,
		LastSyncedAt: s.LastSyncedAt,
		Message:      s.Message,
	}
}
