package repository

import (
	"context"
	"errors"
	"fmt"

	"campaign_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	configNotFoundMsg = "configuration not found"
	pgUniqueViolation = "23505"
)

// Configuration is one label/value entry of a category.
type Configuration struct {
	ID        uuid.UUID
	Category  string
	Label     string
	Value     string
	SortOrder int
	IsActive  bool
}

// ConfigurationUpdate carries optional fields; nil leaves a column alone.
type ConfigurationUpdate struct {
	ID        uuid.UUID
	Label     *string
	Value     *string
	SortOrder *int
	IsActive  *bool
}

// Store is the configuration persistence used by the service.
type Store interface {
	Count(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, items []Configuration) error
	ListCategories(ctx context.Context) ([]string, error)
	ListByCategory(ctx context.Context, category string, includeInactive bool) ([]Configuration, error)
	Create(ctx context.Context, item Configuration) (Configuration, error)
	Update(ctx context.Context, update ConfigurationUpdate) (Configuration, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetSortOrder(ctx context.Context, category string, id uuid.UUID, sortOrder int) error
}

// Repository provides database operations for app configurations.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new configurations repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

const configColumns = `id, category, label, value, sort_order, is_active`

func scanConfiguration(row pgx.Row) (Configuration, error) {
	var c Configuration
	err := row.Scan(&c.ID, &c.Category, &c.Label, &c.Value, &c.SortOrder, &c.IsActive)
	return c, err
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Conflict("value already exists in this category")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM app_configurations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count configurations: %w", err)
	}
	return n, nil
}

// InsertMany writes items in one round trip. Existing (category, value)
// pairs are skipped.
func (r *Repository) InsertMany(ctx context.Context, items []Configuration) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO app_configurations (id, category, label, value, sort_order, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (category, value) DO NOTHING`,
			item.ID, item.Category, item.Label, item.Value, item.SortOrder, item.IsActive,
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert configurations: %w", err)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM app_configurations ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list configuration categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list configuration categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) ListByCategory(ctx context.Context, category string, includeInactive bool) ([]Configuration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+configColumns+`
		FROM app_configurations
		WHERE category = $1 AND ($2 OR is_active)
		ORDER BY sort_order, label`, category, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	defer rows.Close()

	items := make([]Configuration, 0)
	for rows.Next() {
		item, err := scanConfiguration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan configuration: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return items, nil
}

// Create inserts an entry. A zero SortOrder appends it to its category.
func (r *Repository) Create(ctx context.Context, item Configuration) (Configuration, error) {
	query := `
		INSERT INTO app_configurations (id, category, label, value, sort_order, is_active)
		VALUES ($1, $2, $3, $4,
			CASE WHEN $5 > 0 THEN $5 ELSE (
				SELECT COALESCE(MAX(sort_order), 0) + 1 FROM app_configurations WHERE category = $2
			) END,
			$6)
		RETURNING ` + configColumns

	created, err := scanConfiguration(r.pool.QueryRow(ctx, query,
		item.ID, item.Category, item.Label, item.Value, item.SortOrder, item.IsActive))
	if err != nil {
		return Configuration{}, mapWriteError("create configuration", err)
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, update ConfigurationUpdate) (Configuration, error) {
	query := `
		UPDATE app_configurations
		SET
			label = COALESCE($2, label),
			value = COALESCE($3, value),
			sort_order = COALESCE($4, sort_order),
			is_active = COALESCE($5, is_active)
		WHERE id = $1
		RETURNING ` + configColumns

	item, err := scanConfiguration(r.pool.QueryRow(ctx, query,
		update.ID, update.Label, update.Value, update.SortOrder, update.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Configuration{}, apperr.NotFound(configNotFoundMsg)
		}
		return Configuration{}, mapWriteError("update configuration", err)
	}
	return item, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM app_configurations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(configNotFoundMsg)
	}
	return nil
}

// SetSortOrder moves one entry. The category filter keeps a reorder from
// touching entries of another category.
func (r *Repository) SetSortOrder(ctx context.Context, category string, id uuid.UUID, sortOrder int) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE app_configurations SET sort_order = $3 WHERE id = $1 AND category = $2`,
		id, category, sortOrder)
	if err != nil {
		return fmt.Errorf("set configuration sort order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(configNotFoundMsg)
	}
	return nil
}
