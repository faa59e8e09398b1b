// Package service implements billables reconciliation: monthly aggregation,
// approval and dispute of brand months, and master brand management.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campaign_portal_backend/internal/billables/domain"
	"campaign_portal_backend/internal/billables/repository"
	"campaign_portal_backend/internal/billables/transport"
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/batch"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/sanitize"
	"campaign_portal_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const msgInvalidMonth = "billing month must be YYYY-MM"

// Service provides business logic for billables.
type Service struct {
	store    repository.Store
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new billables service.
func New(store repository.Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Month aggregates every brand with rows in billingMonth and computes the
// month summary. Brands and rows are fetched concurrently.
func (s *Service) Month(ctx context.Context, billingMonth string) (transport.MonthResponse, error) {
	if !validator.IsBillingMonth(billingMonth) {
		return transport.MonthResponse{}, apperr.Validation(msgInvalidMonth)
	}

	var (
		brands []domain.Brand
		rows   []domain.Billable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		brands, err = s.store.ListBrands(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.store.ListBillables(gctx, billingMonth)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.MonthResponse{}, err
	}

	aggs := domain.AggregateMonth(brands, rows)
	summary := domain.Summarize(aggs)
	highVarianceBrands.Set(float64(summary.HighVarianceCount))

	resp := transport.MonthResponse{
		BillingMonth: billingMonth,
		Summary: transport.SummaryResponse{
			TotalVerified:     summary.TotalVerified,
			TotalPending:      summary.TotalPending,
			HighVarianceCount: summary.HighVarianceCount,
			NetProfit:         summary.NetProfit,
		},
		Brands: make([]transport.BrandAggregateResponse, 0, len(aggs)),
	}
	for _, agg := range aggs {
		resp.Brands = append(resp.Brands, mapAggregate(agg))
	}
	return resp, nil
}

// Approve approves every row of a brand month in one update and reports
// the state of each row afterwards.
func (s *Service) Approve(ctx context.Context, actorID, brandID uuid.UUID, req transport.ApproveRequest) (transport.BrandMonthUpdateResponse, error) {
	if !validator.IsBillingMonth(req.BillingMonth) {
		return transport.BrandMonthUpdateResponse{}, apperr.Validation(msgInvalidMonth)
	}

	rows, err := s.store.ApproveMonth(ctx, brandID, req.BillingMonth, actorID, s.now())
	if err != nil {
		return transport.BrandMonthUpdateResponse{}, err
	}
	if len(rows) == 0 {
		return transport.BrandMonthUpdateResponse{}, apperr.NotFound("no billable rows for this brand and month")
	}
	brandMonthActions.WithLabelValues("approve").Inc()

	s.eventBus.Publish(ctx, events.BillablesApproved{
		BaseEvent:     events.NewBaseEvent(),
		MasterBrandID: brandID,
		BillingMonth:  req.BillingMonth,
		ApprovedBy:    actorID,
		RowCount:      len(rows),
	})

	results, approved := mapRowResults(rows)
	return transport.BrandMonthUpdateResponse{
		MasterBrandID: brandID,
		BillingMonth:  req.BillingMonth,
		Rows:          results,
		IsApproved:    approved,
	}, nil
}

// Dispute marks every row of a brand month as disputed with notes. Approval
// flags are left as they are.
func (s *Service) Dispute(ctx context.Context, actorID, brandID uuid.UUID, req transport.DisputeRequest) (transport.BrandMonthUpdateResponse, error) {
	if !validator.IsBillingMonth(req.BillingMonth) {
		return transport.BrandMonthUpdateResponse{}, apperr.Validation(msgInvalidMonth)
	}
	notes := sanitize.Text(req.Notes)
	if notes == "" {
		return transport.BrandMonthUpdateResponse{}, apperr.Validation("dispute notes are required")
	}

	rows, err := s.store.DisputeMonth(ctx, brandID, req.BillingMonth, notes)
	if err != nil {
		return transport.BrandMonthUpdateResponse{}, err
	}
	if len(rows) == 0 {
		return transport.BrandMonthUpdateResponse{}, apperr.NotFound("no billable rows for this brand and month")
	}
	brandMonthActions.WithLabelValues("dispute").Inc()

	s.eventBus.Publish(ctx, events.BillablesDisputed{
		BaseEvent:     events.NewBaseEvent(),
		MasterBrandID: brandID,
		BillingMonth:  req.BillingMonth,
		InitiatedBy:   actorID,
		Notes:         notes,
		RowCount:      len(rows),
	})

	results, approved := mapRowResults(rows)
	return transport.BrandMonthUpdateResponse{
		MasterBrandID: brandID,
		BillingMonth:  req.BillingMonth,
		Rows:          results,
		IsApproved:    approved,
	}, nil
}

// CreateMasterBrand inserts the brand, then its mappings as independent
// parallel inserts. The brand stays when mappings fail; the error is then
// a partial failure whose details list every mapping outcome.
func (s *Service) CreateMasterBrand(ctx context.Context, req transport.CreateMasterBrandRequest) (transport.CreateMasterBrandResponse, error) {
	brand := domain.Brand{
		ID:        uuid.New(),
		Name:      sanitize.Text(req.Name),
		CommonID:  strings.TrimSpace(req.CommonID),
		CreatedAt: s.now(),
	}
	if brand.Name == "" || brand.CommonID == "" {
		return transport.CreateMasterBrandResponse{}, apperr.Validation("name and common id are required")
	}

	created, err := s.store.CreateBrand(ctx, brand)
	if err != nil {
		return transport.CreateMasterBrandResponse{}, err
	}

	mappings := make([]repository.Mapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		mappings = append(mappings, repository.Mapping{
			ID:               uuid.New(),
			MasterBrandID:    created.ID,
			Network:          strings.TrimSpace(m.Network),
			NetworkBrandID:   strings.TrimSpace(m.NetworkBrandID),
			NetworkBrandName: sanitize.Text(m.NetworkBrandName),
		})
	}

	outcome := batch.Run(ctx, batch.DefaultLimit, mappings,
		func(m repository.Mapping) string { return m.Network + ":" + m.NetworkBrandID },
		s.store.CreateMapping,
	)

	written := make([]repository.Mapping, 0, outcome.Succeeded)
	for i, r := range outcome.Results {
		if r.OK {
			written = append(written, mappings[i])
		}
	}

	resp := transport.CreateMasterBrandResponse{
		Brand:    mapBrand(created, written),
		Mappings: outcome,
	}
	if outcome.Partial() {
		s.log.Warn("master brand created with failed mappings",
			"masterBrandId", created.ID, "failed", outcome.Failed, "succeeded", outcome.Succeeded)
		return resp, apperr.Partial(
			fmt.Sprintf("brand created but %d of %d mappings failed", outcome.Failed, len(mappings)),
			resp,
		)
	}
	return resp, nil
}

// ListMasterBrands returns every brand with its network mappings.
func (s *Service) ListMasterBrands(ctx context.Context) ([]transport.MasterBrandResponse, error) {
	var (
		brands   []domain.Brand
		mappings []repository.Mapping
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		brands, err = s.store.ListBrands(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		mappings, err = s.store.ListMappings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byBrand := make(map[uuid.UUID][]repository.Mapping)
	for _, m := range mappings {
		byBrand[m.MasterBrandID] = append(byBrand[m.MasterBrandID], m)
	}

	out := make([]transport.MasterBrandResponse, 0, len(brands))
	for _, b := range brands {
		out = append(out, mapBrand(b, byBrand[b.ID]))
	}
	return out, nil
}

// UpsertBillable writes one network row. Re-importing a row replaces its
// figures and keeps its approval and dispute state.
func (s *Service) UpsertBillable(ctx context.Context, req transport.UpsertBillableRequest) (transport.BillableRowResponse, error) {
	if !validator.IsBillingMonth(req.BillingMonth) {
		return transport.BillableRowResponse{}, apperr.Validation(msgInvalidMonth)
	}

	b, err := s.store.UpsertBillable(ctx, repository.BillableUpsert{
		MasterBrandID:         req.MasterBrandID,
		BillingMonth:          req.BillingMonth,
		Network:               strings.TrimSpace(req.Network),
		Conversions:           req.Conversions,
		GrossRevenue:          req.GrossRevenue,
		NetworkReportedPayout: req.NetworkReportedPayout,
		InternalTrackedPayout: req.InternalTrackedPayout,
	})
	if err != nil {
		return transport.BillableRowResponse{}, err
	}
	return mapRow(b), nil
}

func (s *Service) ListNetworkStatus(ctx context.Context) ([]transport.NetworkStatusResponse, error) {
	statuses, err := s.store.ListNetworkStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.NetworkStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, mapNetworkStatus(st))
	}
	return out, nil
}

// ReportNetworkStatus records the result of a network API sync.
func (s *Service) ReportNetworkStatus(ctx context.Context, network string, req transport.NetworkStatusRequest) (transport.NetworkStatusResponse, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return transport.NetworkStatusResponse{}, apperr.Validation("network is required")
	}

	now := s.now()
	st, err := s.store.UpsertNetworkStatus(ctx, repository.NetworkStatus{
		Network:      network,
		Status:       req.Status,
		LastSyncedAt: &now,
		Message:      sanitize.TextPtr(req.Message),
	})
	if err != nil {
		return transport.NetworkStatusResponse{}, err
	}
	return mapNetworkStatus(st), nil
}
