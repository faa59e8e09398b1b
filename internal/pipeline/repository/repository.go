// Package repository provides Postgres persistence for prospects and partner
// campaign status.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	prospectNotFoundMsg = "prospect not found"
	partnerNotFoundMsg  = "partner not found"

	pgForeignKeyViolation = "23503"
	defaultListLimit      = 200
)

// ProspectStore is the prospect persistence used by the service.
type ProspectStore interface {
	CreateProspect(ctx context.Context, p Prospect) (Prospect, error)
	GetProspect(ctx context.Context, id uuid.UUID) (Prospect, error)
	ListProspects(ctx context.Context, params ListParams) ([]Prospect, error)
	// StageTotals counts and sums every prospect matching params per stage.
	// params.Limit is ignored.
	StageTotals(ctx context.Context, params ListParams) ([]StageTotal, error)
	UpdateProspect(ctx context.Context, update ProspectUpdate) (Prospect, error)
	// UpdateStage writes stage and stamps stage_updated_at. It returns the
	// updated row and the stage it had before. A prospect already in stage
	// is returned unchanged with previous == stage.
	UpdateStage(ctx context.Context, id uuid.UUID, stage string, at time.Time) (Prospect, string, error)
}

// CampaignStore is the campaign status persistence used by the service.
type CampaignStore interface {
	ListCampaignCards(ctx context.Context) ([]CampaignCard, error)
	GetCampaignStatus(ctx context.Context, partnerID uuid.UUID) (CampaignStatus, error)
	UpsertCampaignStatus(ctx context.Context, upsert CampaignStatusUpsert) (CampaignStatus, error)
	// PartnerIDForUser returns the partner record owned by a partner user.
	PartnerIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Repository provides database operations for the pipeline.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new pipeline repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const prospectColumns = `
	id, company_name, contact_name, contact_email, contact_phone,
	estimated_value, stage, notes, source, industry,
	created_by, assigned_to, stage_updated_at, created_at, updated_at`

func scanProspect(row pgx.Row, extra ...any) (Prospect, error) {
	var p Prospect
	dest := []any{
		&p.ID, &p.CompanyName, &p.ContactName, &p.ContactEmail, &p.ContactPhone,
		&p.EstimatedValue, &p.Stage, &p.Notes, &p.Source, &p.Industry,
		&p.CreatedBy, &p.AssignedTo, &p.StageUpdatedAt, &p.CreatedAt, &p.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

func (r *Repository) CreateProspect(ctx context.Context, p Prospect) (Prospect, error) {
	query := `
		INSERT INTO prospects (` + prospectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + prospectColumns

	created, err := scanProspect(r.pool.QueryRow(ctx, query,
		p.ID, p.CompanyName, p.ContactName, p.ContactEmail, p.ContactPhone,
		p.EstimatedValue, p.Stage, p.Notes, p.Source, p.Industry,
		p.CreatedBy, p.AssignedTo, p.StageUpdatedAt, p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return Prospect{}, fmt.Errorf("create prospect: %w", err)
	}
	return created, nil
}

func (r *Repository) GetProspect(ctx context.Context, id uuid.UUID) (Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE id = $1`

	p, err := scanProspect(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, apperr.NotFound(prospectNotFoundMsg)
		}
		return Prospect{}, fmt.Errorf("get prospect: %w", err)
	}
	return p, nil
}

func prospectFilter(params ListParams) ([]string, []any) {
	where := []string{"1=1"}
	args := []any{}

	if params.Stage != "" {
		args = append(args, params.Stage)
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}
	if params.AssignedTo != nil {
		args = append(args, *params.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(company_name ILIKE $%d OR contact_name ILIKE $%d OR contact_email ILIKE $%d)", n, n, n))
	}
	return where, args
}

func (r *Repository) ListProspects(ctx context.Context, params ListParams) ([]Prospect, error) {
	where, args := prospectFilter(params)

	limit := params.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	args = append(args, limit)

	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()

	items := make([]Prospect, 0)
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prospects: %w", err)
	}
	return items, nil
}

func (r *Repository) StageTotals(ctx context.Context, params ListParams) ([]StageTotal, error) {
	where, args := prospectFilter(params)
	query := `
		SELECT stage, COUNT(*), COALESCE(SUM(estimated_value), 0)::float8
		FROM prospects
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY stage`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("prospect stage totals: %w", err)
	}
	defer rows.Close()

	totals := make([]StageTotal, 0)
	for rows.Next() {
		var t StageTotal
		if err := rows.Scan(&t.Stage, &t.Count, &t.Sum); err != nil {
			return nil, fmt.Errorf("scan stage total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage totals: %w", err)
	}
	return totals, nil
}

func (r *Repository) UpdateProspect(ctx context.Context, u ProspectUpdate) (Prospect, error) {
	query := `
		UPDATE prospects
		SET
			company_name = COALESCE($2, company_name),
			contact_name = COALESCE($3, contact_name),
			contact_email = COALESCE($4, contact_email),
			contact_phone = COALESCE($5, contact_phone),
			estimated_value = COALESCE($6, estimated_value),
			notes = COALESCE($7, notes),
			source = COALESCE($8, source),
			industry = COALESCE($9, industry),
			assigned_to = COALESCE($10, assigned_to),
			updated_at = $11
		WHERE id = $1
		RETURNING ` + prospectColumns

	p, err := scanProspect(r.pool.QueryRow(ctx, query,
		u.ID, u.CompanyName, u.ContactName, u.ContactEmail, u.ContactPhone,
		u.EstimatedValue, u.Notes, u.Source, u.Industry, u.AssignedTo, u.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, apperr.NotFound(prospectNotFoundMsg)
		}
		return Prospect{}, fmt.Errorf("update prospect: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage string, at time.Time) (Prospect, string, error) {
	query := `
		WITH prev AS (
			SELECT id, stage AS previous_stage FROM prospects WHERE id = $1
		)
		UPDATE prospects AS p
		SET stage = $2, stage_updated_at = $3, updated_at = $3
		FROM prev
		WHERE p.id = prev.id AND prev.previous_stage IS DISTINCT FROM $2
		RETURNING ` + qualify("p", prospectColumns) + `, prev.previous_stage`

	var previous string
	p, err := scanProspect(r.pool.QueryRow(ctx, query, id, stage, at), &previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or already in stage.
			current, getErr := r.GetProspect(ctx, id)
			if getErr != nil {
				return Prospect{}, "", getErr
			}
			if current.Stage != stage {
				return Prospect{}, "", apperr.Conflict("prospect stage changed concurrently")
			}
			return current, current.Stage, nil
		}
		return Prospect{}, "", fmt.Errorf("update prospect stage: %w", err)
	}
	return p, previous, nil
}

func (r *Repository) ListCampaignCards(ctx context.Context) ([]CampaignCard, error) {
	query := `
		SELECT p.id, p.company_name, p.contact_name,
			cs.partner_id, cs.priority, cs.stage, cs.launch_date,
			cs.next_meeting_date, cs.conclusion_date, cs.updated_at
		FROM partners p
		LEFT JOIN campaign_status cs ON cs.partner_id = p.id
		ORDER BY p.company_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaign cards: %w", err)
	}
	defer rows.Close()

	cards := make([]CampaignCard, 0)
	for rows.Next() {
		var (
			card      CampaignCard
			statusID  *uuid.UUID
			priority  *string
			stage     *string
			launch    *time.Time
			meeting   *time.Time
			concluded *time.Time
			updatedAt *time.Time
		)
		if err := rows.Scan(&card.PartnerID, &card.CompanyName, &card.ContactName,
			&statusID, &priority, &stage, &launch, &meeting, &concluded, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign card: %w", err)
		}
		if statusID != nil {
			card.Status = &CampaignStatus{
				PartnerID:       *statusID,
				Priority:        deref(priority),
				Stage:           deref(stage),
				LaunchDate:      launch,
				NextMeetingDate: meeting,
				ConclusionDate:  concluded,
			}
			if updatedAt != nil {
				card.Status.UpdatedAt = *updatedAt
			}
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign cards: %w", err)
	}
	return cards, nil
}

const campaignColumns = `partner_id, priority, stage, launch_date, next_meeting_date, conclusion_date, updated_at`

func scanCampaign(row pgx.Row) (CampaignStatus, error) {
	var cs CampaignStatus
	err := row.Scan(&cs.PartnerID, &cs.Priority, &cs.Stage, &cs.LaunchDate,
		&cs.NextMeetingDate, &cs.ConclusionDate, &cs.UpdatedAt)
	return cs, err
}

func (r *Repository) GetCampaignStatus(ctx context.Context, partnerID uuid.UUID) (CampaignStatus, error) {
	cs, err := scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaign_status WHERE partner_id = $1`, partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CampaignStatus{}, apperr.NotFound("campaign status not found")
		}
		return CampaignStatus{}, fmt.Errorf("get campaign status: %w", err)
	}
	return cs, nil
}

func (r *Repository) UpsertCampaignStatus(ctx context.Context, u CampaignStatusUpsert) (CampaignStatus, error) {
	query := `
		INSERT INTO campaign_status (` + campaignColumns + `)
		VALUES ($1, COALESCE($2, 'medium'), COALESCE($3, 'asset_collection'), $4, $5, $6, $7)
		ON CONFLICT (partner_id) DO UPDATE SET
			priority = COALESCE($2, campaign_status.priority),
			stage = COALESCE($3, campaign_status.stage),
			launch_date = COALESCE($4, campaign_status.launch_date),
			next_meeting_date = COALESCE($5, campaign_status.next_meeting_date),
			conclusion_date = COALESCE($6, campaign_status.conclusion_date),
			updated_at = $7
		RETURNING ` + campaignColumns

	cs, err := scanCampaign(r.pool.QueryRow(ctx, query,
		u.PartnerID, u.Priority, u.Stage, u.LaunchDate, u.NextMeetingDate, u.ConclusionDate, u.UpdatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return CampaignStatus{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return CampaignStatus{}, fmt.Errorf("upsert campaign status: %w", err)
	}
	return cs, nil
}

func (r *Repository) PartnerIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM partners WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.NotFound(partnerNotFoundMsg)
		}
		return uuid.Nil, fmt.Errorf("lookup partner for user: %w", err)
	}
	return id, nil
}

func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	_ ProspectStore = (*Repository)(nil)
	_ CampaignStore = (*Repository)(nil)
)
