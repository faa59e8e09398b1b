package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"campaign_portal_backend/internal/billables/domain"
	"campaign_portal_backend/internal/billables/repository"
	"campaign_portal_backend/internal/billables/transport"
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	mu             sync.Mutex
	brands         []domain.Brand
	mappings       []repository.Mapping
	rows           []domain.Billable
	failNetworks   map[string]bool
	brandErr       error
	updateRequests int
}

func (f *fakeStore) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return f.brands, nil
}

func (f *fakeStore) ListMappings(ctx context.Context) ([]repository.Mapping, error) {
	return f.mappings, nil
}

func (f *fakeStore) CreateBrand(ctx context.Context, b domain.Brand) (domain.Brand, error) {
	if f.brandErr != nil {
		return domain.Brand{}, f.brandErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brands = append(f.brands, b)
	return b, nil
}

func (f *fakeStore) CreateMapping(ctx context.Context, m repository.Mapping) error {
	if f.failNetworks[m.Network] {
		return errors.New("insert failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings = append(f.mappings, m)
	return nil
}

func (f *fakeStore) ListBillables(ctx context.Context, month string) ([]domain.Billable, error) {
	out := []domain.Billable{}
	for _, r := range f.rows {
		if r.BillingMonth == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertBillable(ctx context.Context, u repository.BillableUpsert) (domain.Billable, error) {
	b := domain.Billable{ID: uuid.New(), MasterBrandID: u.MasterBrandID, BillingMonth: u.BillingMonth, Network: u.Network}
	f.rows = append(f.rows, b)
	return b, nil
}

func (f *fakeStore) ApproveMonth(ctx context.Context, brandID uuid.UUID, month string, by uuid.UUID, at time.Time) ([]domain.Billable, error) {
	f.updateRequests++
	var out []domain.Billable
	for i := range f.rows {
		r := &f.rows[i]
		if r.MasterBrandID == brandID && r.BillingMonth == month {
			r.IsApproved = true
			r.ApprovedBy = &by
			r.ApprovedAt = &at
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) DisputeMonth(ctx context.Context, brandID uuid.UUID, month, notes string) ([]domain.Billable, error) {
	f.updateRequests++
	var out []domain.Billable
	for i := range f.rows {
		r := &f.rows[i]
		if r.MasterBrandID == brandID && r.BillingMonth == month {
			status := domain.DisputeInitiated
			r.DisputeStatus = &status
			r.DisputeNotes = &notes
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListNetworkStatus(ctx context.Context) ([]repository.NetworkStatus, error) {
	return []repository.NetworkStatus{{Network: "impact", Status: "ok"}}, nil
}

func (f *fakeStore) UpsertNetworkStatus(ctx context.Context, s repository.NetworkStatus) (repository.NetworkStatus, error) {
	return s, nil
}

type recordingBus struct {
	mu    sync.Mutex
	names []string
}

func (b *recordingBus) Publish(ctx context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names = append(b.names, e.EventName())
}
func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func acmeStore() (*fakeStore, domain.Brand) {
	acme := domain.Brand{ID: uuid.New(), Name: "Acme", CommonID: "ACME"}
	quiet := domain.Brand{ID: uuid.New(), Name: "Quiet", CommonID: "QUIET"}
	return &fakeStore{
		brands: []domain.Brand{acme, quiet},
		rows: []domain.Billable{
			{ID: uuid.New(), MasterBrandID: acme.ID, BillingMonth: "2024-06", Network: "A", GrossRevenue: 1800, NetworkReportedPayout: 1000, InternalTrackedPayout: 950},
			{ID: uuid.New(), MasterBrandID: acme.ID, BillingMonth: "2024-06", Network: "B", GrossRevenue: 700, NetworkReportedPayout: 500, InternalTrackedPayout: 500},
			{ID: uuid.New(), MasterBrandID: acme.ID, BillingMonth: "2024-05", Network: "A", NetworkReportedPayout: 10, InternalTrackedPayout: 10},
		},
	}, acme
}

func TestMonthAggregatesAndSummarizes(t *testing.T) {
	store, acme := acmeStore()
	svc := New(store, &recordingBus{}, logger.Discard())

	resp, err := svc.Month(context.Background(), "2024-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Brands) != 1 {
		t.Fatalf("brands without rows must be excluded, got %d", len(resp.Brands))
	}
	b := resp.Brands[0]
	if b.MasterBrandID != acme.ID || b.TotalNetworkPayout != 1500 || b.TotalInternalPayout != 1450 || b.Delta != 50 {
		t.Fatalf("unexpected aggregate %+v", b)
	}
	if math.Abs(b.DeltaPercent-3.448) > 0.01 || b.HasDiscrepancy {
		t.Fatalf("unexpected delta percent %v / %v", b.DeltaPercent, b.HasDiscrepancy)
	}
	if resp.Summary.TotalPending != 1500 || resp.Summary.TotalVerified != 0 || resp.Summary.NetProfit != 1000 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
}

func TestMonthRejectsBadFormat(t *testing.T) {
	store, _ := acmeStore()
	svc := New(store, &recordingBus{}, logger.Discard())

	for _, month := range []string{"2024-13", "2024-6", "June 2024", ""} {
		if _, err := svc.Month(context.Background(), month); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%q: expected validation error, got %v", month, err)
		}
	}
}

func TestApproveFlipsAllRowsInOneUpdate(t *testing.T) {
	store, acme := acmeStore()
	bus := &recordingBus{}
	svc := New(store, bus, logger.Discard())
	actor := uuid.New()

	resp, err := svc.Approve(context.Background(), actor, acme.ID, transport.ApproveRequest{BillingMonth: "2024-06"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updateRequests != 1 {
		t.Fatalf("expected one filtered update, got %d", store.updateRequests)
	}
	if len(resp.Rows) != 2 || !resp.IsApproved {
		t.Fatalf("expected 2 approved rows, got %+v", resp)
	}
	if len(bus.names) != 1 || bus.names[0] != "billables.approved" {
		t.Fatalf("unexpected events %v", bus.names)
	}

	month, _ := svc.Month(context.Background(), "2024-06")
	if !month.Brands[0].IsApproved || month.Summary.TotalVerified != 1500 {
		t.Fatalf("aggregate should be approved: %+v", month.Summary)
	}

	// The other month is untouched.
	may, _ := svc.Month(context.Background(), "2024-05")
	if may.Brands[0].IsApproved {
		t.Fatal("approval leaked into another month")
	}
}

func TestApproveWithoutRowsIsNotFound(t *testing.T) {
	store, _ := acmeStore()
	svc := New(store, &recordingBus{}, logger.Discard())

	_, err := svc.Approve(context.Background(), uuid.New(), uuid.New(), transport.ApproveRequest{BillingMonth: "2024-06"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDisputeKeepsApprovalFlag(t *testing.T) {
	store, acme := acmeStore()
	store.rows[0].IsApproved = true
	svc := New(store, &recordingBus{}, logger.Discard())

	resp, err := svc.Dispute(context.Background(), uuid.New(), acme.ID, transport.DisputeRequest{BillingMonth: "2024-06", Notes: " payout mismatch "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IsApproved {
		t.Fatal("dispute must not approve")
	}
	approvedSeen := false
	for _, r := range resp.Rows {
		if r.DisputeStatus == nil || *r.DisputeStatus != domain.DisputeInitiated {
			t.Fatalf("row %s not disputed", r.ID)
		}
		if r.IsApproved {
			approvedSeen = true
		}
	}
	if !approvedSeen {
		t.Fatal("existing approval flag must be preserved")
	}
	if *store.rows[0].DisputeNotes != "payout mismatch" {
		t.Fatalf("notes not sanitized: %q", *store.rows[0].DisputeNotes)
	}
}

func TestCreateMasterBrandPartialFailureKeepsBrand(t *testing.T) {
	store := &fakeStore{failNetworks: map[string]bool{"cj": true}}
	svc := New(store, &recordingBus{}, logger.Discard())

	resp, err := svc.CreateMasterBrand(context.Background(), transport.CreateMasterBrandRequest{
		Name:     "Acme",
		CommonID: "ACME",
		Mappings: []transport.MappingRequest{
			{Network: "impact", NetworkBrandID: "1", NetworkBrandName: "Acme Inc"},
			{Network: "cj", NetworkBrandID: "2", NetworkBrandName: "Acme"},
			{Network: "awin", NetworkBrandID: "3", NetworkBrandName: "ACME"},
		},
	})
	if !apperr.Is(err, apperr.KindPartial) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if len(store.brands) != 1 {
		t.Fatal("brand must not be rolled back")
	}
	if resp.Mappings.Succeeded != 2 || resp.Mappings.Failed != 1 {
		t.Fatalf("unexpected outcome %+v", resp.Mappings)
	}
	if len(resp.Brand.Mappings) != 2 {
		t.Fatalf("expected 2 written mappings, got %d", len(resp.Brand.Mappings))
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected *apperr.Error")
	}
	details, ok := appErr.Details.(transport.CreateMasterBrandResponse)
	if !ok {
		t.Fatalf("details should carry the per-mapping outcome, got %T", appErr.Details)
	}
	failed := details.Mappings.Results[1]
	if failed.OK || failed.Key != "cj:2" {
		t.Fatalf("unexpected failed result %+v", failed)
	}
}

func TestCreateMasterBrandAllMappingsWritten(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, &recordingBus{}, logger.Discard())

	resp, err := svc.CreateMasterBrand(context.Background(), transport.CreateMasterBrandRequest{
		Name:     "Acme",
		CommonID: "ACME",
		Mappings: []transport.MappingRequest{{Network: "impact", NetworkBrandID: "1", NetworkBrandName: "Acme"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Mappings.Partial() || len(resp.Brand.Mappings) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestCreateMasterBrandConflictWritesNoMappings(t *testing.T) {
	store := &fakeStore{brandErr: apperr.Conflict("duplicate")}
	svc := New(store, &recordingBus{}, logger.Discard())

	_, err := svc.CreateMasterBrand(context.Background(), transport.CreateMasterBrandRequest{
		Name:     "Acme",
		CommonID: "ACME",
		Mappings: []transport.MappingRequest{{Network: "impact", NetworkBrandID: "1", NetworkBrandName: "Acme"}},
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(store.mappings) != 0 {
		t.Fatal("no mapping may be written without a brand")
	}
}

func TestListMasterBrandsGroupsMappings(t *testing.T) {
	store, acme := acmeStore()
	store.mappings = []repository.Mapping{
		{ID: uuid.New(), MasterBrandID: acme.ID, Network: "impact"},
		{ID: uuid.New(), MasterBrandID: acme.ID, Network: "cj"},
	}
	svc := New(store, &recordingBus{}, logger.Discard())

	brands, err := svc.ListMasterBrands(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(brands) != 2 || len(brands[0].Mappings) != 2 || len(brands[1].Mappings) != 0 {
		t.Fatalf("unexpected brands %+v", brands)
	}
}

