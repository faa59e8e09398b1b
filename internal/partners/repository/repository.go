package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	partnerNotFoundMsg = "partner not found"
	assetNotFoundMsg   = "creative asset not found"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Store is the partners persistence used by the service.
type Store interface {
	Create(ctx context.Context, partner Partner) (Partner, error)
	GetByID(ctx context.Context, id uuid.UUID) (Partner, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (Partner, error)
	Update(ctx context.Context, update PartnerUpdate) (Partner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (ListResult, error)

	ListAssets(ctx context.Context, partnerID uuid.UUID) ([]CreativeAsset, error)
	GetAsset(ctx context.Context, id uuid.UUID) (CreativeAsset, error)
	GetAssetByChannel(ctx context.Context, partnerID uuid.UUID, channel string) (CreativeAsset, error)
	UpsertAsset(ctx context.Context, upsert AssetUpsert) (CreativeAsset, error)
	UpsertFeedback(ctx context.Context, feedback AssetFeedback) (AssetFeedback, error)
}

// Repository provides database operations for partners.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new partners repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partnerColumns = `
	id, user_id, company_name, contact_name, contact_email, contact_phone,
	prospect_id, created_at, updated_at`

func scanPartner(row pgx.Row) (Partner, error) {
	var p Partner
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CompanyName,
		&p.ContactName,
		&p.ContactEmail,
		&p.ContactPhone,
		&p.ProspectID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Conflict("user is already linked to a partner")
		case pgForeignKeyViolation:
			return apperr.NotFound(partnerNotFoundMsg)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *Repository) Create(ctx context.Context, partner Partner) (Partner, error) {
	query := `
		INSERT INTO partners (
			id, user_id, company_name, contact_name, contact_email, contact_phone,
			prospect_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + partnerColumns

	created, err := scanPartner(r.pool.QueryRow(ctx, query,
		partner.ID,
		partner.UserID,
		partner.CompanyName,
		partner.ContactName,
		partner.ContactEmail,
		partner.ContactPhone,
		partner.ProspectID,
		partner.CreatedAt,
		partner.UpdatedAt,
	))
	if err != nil {
		return Partner{}, mapWriteError("create partner", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return Partner{}, fmt.Errorf("get partner: %w", err)
	}
	return p, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return Partner{}, fmt.Errorf("get partner by user: %w", err)
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, update PartnerUpdate) (Partner, error) {
	query := `
		UPDATE partners
		SET
			user_id = COALESCE($2, user_id),
			company_name = COALESCE($3, company_name),
			contact_name = COALESCE($4, contact_name),
			contact_email = COALESCE($5, contact_email),
			contact_phone = COALESCE($6, contact_phone),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + partnerColumns

	p, err := scanPartner(r.pool.QueryRow(ctx, query,
		update.ID,
		update.UserID,
		update.CompanyName,
		update.ContactName,
		update.ContactEmail,
		update.ContactPhone,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return Partner{}, mapWriteError("update partner", err)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(partnerNotFoundMsg)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	sortBy, err := resolveSortBy(params.SortBy)
	if err != nil {
		return ListResult{}, err
	}
	orderBy, err := resolveSortOrder(params.SortOrder)
	if err != nil {
		return ListResult{}, err
	}

	baseQuery := `
		FROM partners
		WHERE ($1::text IS NULL OR company_name ILIKE $1 OR contact_name ILIKE $1 OR contact_email ILIKE $1)
	`
	args := []any{optionalSearch(params.Search)}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count partners: %w", err)
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	pageSize = min(pageSize, 100)
	offset := (page - 1) * pageSize

	selectQuery := `SELECT ` + partnerColumns + baseQuery + `
		ORDER BY
			CASE WHEN $2 = 'companyName' AND $3 = 'asc' THEN company_name END ASC,
			CASE WHEN $2 = 'companyName' AND $3 = 'desc' THEN company_name END DESC,
			CASE WHEN $2 = 'createdAt' AND $3 = 'asc' THEN created_at END ASC,
			CASE WHEN $2 = 'createdAt' AND $3 = 'desc' THEN created_at END DESC,
			company_name ASC
		LIMIT $4 OFFSET $5
	`
	args = append(args, sortBy, orderBy, pageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	items := make([]Partner, 0)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan partner: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("iterate partners: %w", err)
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

const assetSelect = `
	SELECT a.id, a.partner_id, a.channel, a.file_urls, a.is_complete, a.created_at, a.updated_at,
		f.status, f.notes, f.reviewed_by, f.updated_at
	FROM creative_assets a
	LEFT JOIN asset_feedback f ON f.asset_id = a.id`

func scanAsset(row pgx.Row) (CreativeAsset, error) {
	var (
		a          CreativeAsset
		status     *string
		notes      *string
		reviewedBy *uuid.UUID
		reviewedAt *time.Time
	)
	err := row.Scan(&a.ID, &a.PartnerID, &a.Channel, &a.FileURLs, &a.IsComplete, &a.CreatedAt, &a.UpdatedAt,
		&status, &notes, &reviewedBy, &reviewedAt)
	if err != nil {
		return CreativeAsset{}, err
	}
	if status != nil {
		fb := &AssetFeedback{AssetID: a.ID, Status: *status, Notes: notes, ReviewedBy: reviewedBy}
		if reviewedAt != nil {
			fb.UpdatedAt = *reviewedAt
		}
		a.Feedback = fb
	}
	if a.FileURLs == nil {
		a.FileURLs = []string{}
	}
	return a, nil
}

func (r *Repository) ListAssets(ctx context.Context, partnerID uuid.UUID) ([]CreativeAsset, error) {
	rows, err := r.pool.Query(ctx, assetSelect+` WHERE a.partner_id = $1 ORDER BY a.channel`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list creative assets: %w", err)
	}
	defer rows.Close()

	out := make([]CreativeAsset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan creative asset: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creative assets: %w", err)
	}
	return out, nil
}

func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (CreativeAsset, error) {
	a, err := scanAsset(r.pool.QueryRow(ctx, assetSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CreativeAsset{}, apperr.NotFound(assetNotFoundMsg)
		}
		return CreativeAsset{}, fmt.Errorf("get creative asset: %w", err)
	}
	return a, nil
}

func (r *Repository) GetAssetByChannel(ctx context.Context, partnerID uuid.UUID, channel string) (CreativeAsset, error) {
	a, err := scanAsset(r.pool.QueryRow(ctx, assetSelect+` WHERE a.partner_id = $1 AND a.channel = $2`, partnerID, channel))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CreativeAsset{}, apperr.NotFound(assetNotFoundMsg)
		}
		return CreativeAsset{}, fmt.Errorf("get creative asset by channel: %w", err)
	}
	return a, nil
}

func (r *Repository) UpsertAsset(ctx context.Context, u AssetUpsert) (CreativeAsset, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO creative_assets (id, partner_id, channel, file_urls, is_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (partner_id, channel) DO UPDATE SET
			file_urls = EXCLUDED.file_urls,
			is_complete = EXCLUDED.is_complete,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New(), u.PartnerID, u.Channel, u.FileURLs, u.IsComplete, u.At,
	).Scan(&id)
	if err != nil {
		return CreativeAsset{}, mapWriteError("upsert creative asset", err)
	}
	return r.GetAsset(ctx, id)
}

func (r *Repository) UpsertFeedback(ctx context.Context, fb AssetFeedback) (AssetFeedback, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO asset_feedback (asset_id, status, notes, reviewed_by, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id) DO UPDATE SET
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			reviewed_by = EXCLUDED.reviewed_by,
			updated_at = EXCLUDED.updated_at
		RETURNING asset_id, status, notes, reviewed_by, updated_at`,
		fb.AssetID, fb.Status, fb.Notes, fb.ReviewedBy, fb.UpdatedAt,
	).Scan(&fb.AssetID, &fb.Status, &fb.Notes, &fb.ReviewedBy, &fb.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return AssetFeedback{}, apperr.NotFound(assetNotFoundMsg)
		}
		return AssetFeedback{}, fmt.Errorf("upsert asset feedback: %w", err)
	}
	return fb, nil
}

func resolveSortBy(value string) (string, error) {
	switch value {
	case "", "companyName":
		return "companyName", nil
	case "createdAt":
		return "createdAt", nil
	default:
		return "", apperr.BadRequest("invalid sort field")
	}
}

func resolveSortOrder(value string) (string, error) {
	switch value {
	case "", "asc":
		return "asc", nil
	case "desc":
		return "desc", nil
	default:
		return "", apperr.BadRequest("invalid sort order")
	}
}

func optionalSearch(value string) any {
	if value == "" {
		return nil
	}
	return "%" + value + "%"
}

var _ Store = (*Repository)(nil)
