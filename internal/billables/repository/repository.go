package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign_portal_backend/internal/billables/domain"
	"campaign_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Mapping is a brand's identity on one ad network.
type Mapping struct {
	ID               uuid.UUID
	MasterBrandID    uuid.UUID
	Network          string
	NetworkBrandID   string
	NetworkBrandName string
}

// BillableUpsert writes one network row for a brand and month. Approval and
// dispute state are left as they are on conflict.
type BillableUpsert struct {
	MasterBrandID         uuid.UUID
	BillingMonth          string
	Network               string
	Conversions           int64
	GrossRevenue          float64
	NetworkReportedPayout float64
	InternalTrackedPayout float64
}

// NetworkStatus is the last known sync state of a network's reporting API.
type NetworkStatus struct {
	Network      string
	Status       string
	LastSyncedAt *time.Time
	Message      *string
}

// Store is the billables persistence used by the service.
type Store interface {
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	ListMappings(ctx context.Context) ([]Mapping, error)
	CreateBrand(ctx context.Context, brand domain.Brand) (domain.Brand, error)
	CreateMapping(ctx context.Context, mapping Mapping) error
	ListBillables(ctx context.Context, billingMonth string) ([]domain.Billable, error)
	UpsertBillable(ctx context.Context, upsert BillableUpsert) (domain.Billable, error)
	// ApproveMonth flips every row of the brand and month in one statement
	// and returns the rows it touched.
	ApproveMonth(ctx context.Context, brandID uuid.UUID, billingMonth string, approvedBy uuid.UUID, at time.Time) ([]domain.Billable, error)
	// DisputeMonth marks every row of the brand and month as disputed. The
	// approval flag is not changed.
	DisputeMonth(ctx context.Context, brandID uuid.UUID, billingMonth, notes string) ([]domain.Billable, error)
	ListNetworkStatus(ctx context.Context) ([]NetworkStatus, error)
	UpsertNetworkStatus(ctx context.Context, status NetworkStatus) (NetworkStatus, error)
}

// Repository provides database operations for billables.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new billables repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const billableColumns = `
	id, master_brand_id, billing_month, network, conversions,
	gross_revenue::float8, network_reported_payout::float8, internal_tracked_payout::float8,
	is_approved, approved_by, approved_at, dispute_status, dispute_notes`

func scanBillable(row pgx.Row) (domain.Billable, error) {
	var b domain.Billable
	err := row.Scan(&b.ID, &b.MasterBrandID, &b.BillingMonth, &b.Network, &b.Conversions,
		&b.GrossRevenue, &b.NetworkReportedPayout, &b.InternalTrackedPayout,
		&b.IsApproved, &b.ApprovedBy, &b.ApprovedAt, &b.DisputeStatus, &b.DisputeNotes)
	return b, err
}

func collectBillables(rows pgx.Rows) ([]domain.Billable, error) {
	defer rows.Close()

	out := make([]domain.Billable, 0)
	for rows.Next() {
		b, err := scanBillable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, common_id, created_at FROM master_brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list master brands: %w", err)
	}
	defer rows.Close()

	brands := make([]domain.Brand, 0)
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CommonID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan master brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate master brands: %w", err)
	}
	return brands, nil
}

func (r *Repository) ListMappings(ctx context.Context) ([]Mapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, master_brand_id, network, network_brand_id, network_brand_name
		FROM network_brand_mappings
		ORDER BY network, network_brand_name`)
	if err != nil {
		return nil, fmt.Errorf("list brand mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]Mapping, 0)
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.MasterBrandID, &m.Network, &m.NetworkBrandID, &m.NetworkBrandName); err != nil {
			return nil, fmt.Errorf("scan brand mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand mappings: %w", err)
	}
	return mappings, nil
}

func (r *Repository) CreateBrand(ctx context.Context, brand domain.Brand) (domain.Brand, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO master_brands (id, name, common_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, common_id, created_at`,
		brand.ID, brand.Name, brand.CommonID, brand.CreatedAt,
	).Scan(&brand.ID, &brand.Name, &brand.CommonID, &brand.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.Brand{}, apperr.Conflict("a master brand with this common id already exists")
		}
		return domain.Brand{}, fmt.Errorf("insert master brand: %w", err)
	}
	return brand, nil
}

func (r *Repository) CreateMapping(ctx context.Context, m Mapping) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO network_brand_mappings (id, master_brand_id, network, network_brand_id, network_brand_name)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.MasterBrandID, m.Network, m.NetworkBrandID, m.NetworkBrandName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("network brand is already mapped")
		}
		return fmt.Errorf("insert brand mapping: %w", err)
	}
	return nil
}

func (r *Repository) ListBillables(ctx context.Context, billingMonth string) ([]domain.Billable, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+billableColumns+` FROM monthly_billables WHERE billing_month = $1 ORDER BY network`,
		billingMonth)
	if err != nil {
		return nil, fmt.Errorf("list billables: %w", err)
	}
	out, err := collectBillables(rows)
	if err != nil {
		return nil, fmt.Errorf("scan billables: %w", err)
	}
	return out, nil
}

func (r *Repository) UpsertBillable(ctx context.Context, u BillableUpsert) (domain.Billable, error) {
	query := `
		INSERT INTO monthly_billables (
			id, master_brand_id, billing_month, network, conversions,
			gross_revenue, network_reported_payout, internal_tracked_payout
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (master_brand_id, billing_month, network) DO UPDATE SET
			conversions = EXCLUDED.conversions,
			gross_revenue = EXCLUDED.gross_revenue,
			network_reported_payout = EXCLUDED.network_reported_payout,
			internal_tracked_payout = EXCLUDED.internal_tracked_payout
		RETURNING ` + billableColumns

	b, err := scanBillable(r.pool.QueryRow(ctx, query,
		uuid.New(), u.MasterBrandID, u.BillingMonth, u.Network, u.Conversions,
		u.GrossRevenue, u.NetworkReportedPayout, u.InternalTrackedPayout))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Billable{}, apperr.NotFound("master brand not found")
		}
		return domain.Billable{}, fmt.Errorf("upsert billable: %w", err)
	}
	return b, nil
}

func (r *Repository) ApproveMonth(ctx context.Context, brandID uuid.UUID, billingMonth string, approvedBy uuid.UUID, at time.Time) ([]domain.Billable, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE monthly_billables
		SET is_approved = true, approved_by = $3, approved_at = $4
		WHERE master_brand_id = $1 AND billing_month = $2
		RETURNING `+billableColumns,
		brandID, billingMonth, approvedBy, at)
	if err != nil {
		return nil, fmt.Errorf("approve billables: %w", err)
	}
	out, err := collectBillables(rows)
	if err != nil {
		return nil, fmt.Errorf("approve billables: %w", err)
	}
	return out, nil
}

func (r *Repository) DisputeMonth(ctx context.Context, brandID uuid.UUID, billingMonth, notes string) ([]domain.Billable, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE monthly_billables
		SET dispute_status = $3, dispute_notes = $4
		WHERE master_brand_id = $1 AND billing_month = $2
		RETURNING `+billableColumns,
		brandID, billingMonth, domain.DisputeInitiated, notes)
	if err != nil {
		return nil, fmt.Errorf("dispute billables: %w", err)
	}
	out, err := collectBillables(rows)
	if err != nil {
		return nil, fmt.Errorf("dispute billables: %w", err)
	}
	return out, nil
}

func (r *Repository) ListNetworkStatus(ctx context.Context) ([]NetworkStatus, error) {
	rows, err := r.pool.Query(ctx, `SELECT network, status, last_synced_at, message FROM network_api_status ORDER BY network`)
	if err != nil {
		return nil, fmt.Errorf("list network status: %w", err)
	}
	defer rows.Close()

	out := make([]NetworkStatus, 0)
	for rows.Next() {
		var s NetworkStatus
		if err := rows.Scan(&s.Network, &s.Status, &s.LastSyncedAt, &s.Message); err != nil {
			return nil, fmt.Errorf("scan network status: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate network status: %w", err)
	}
	return out, nil
}

func (r *Repository) UpsertNetworkStatus(ctx context.Context, s NetworkStatus) (NetworkStatus, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO network_api_status (network, status, last_synced_at, message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (network) DO UPDATE SET
			status = EXCLUDED.status,
			last_synced_at = EXCLUDED.last_synced_at,
			message = EXCLUDED.message
		RETURNING network, status, last_synced_at, message`,
		s.Network, s.Status, s.LastSyncedAt, s.Message,
	).Scan(&s.Network, &s.Status, &s.LastSyncedAt, &s.Message)
	if err != nil {
		return NetworkStatus{}, fmt.Errorf("upsert network status: %w", err)
	}
	return s, nil
}

var _ Store = (*Repository)(nil)
