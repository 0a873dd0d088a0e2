package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hydroline/analytics/internal/core/domain"
)

// SiteRepo implements ports.SiteRepository and ports.SiteSeeder with pgx.
type SiteRepo struct {
	db *DB
}

// NewSiteRepo creates a new SiteRepo.
func NewSiteRepo(db *DB) *SiteRepo {
	return &SiteRepo{db: db}
}

const siteColumns = `id, name, latitude, longitude, state, category, COALESCE(description, '')`

// List returns every site, existing first, in catalog order.
func (r *SiteRepo) List(ctx context.Context) ([]domain.Site, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+siteColumns+`
		FROM sites ORDER BY category, position
	`)
	if err != nil {
		return nil, err
	}
	return collectSites(rows)
}

// ListByCategory returns the sites of one category in catalog order.
func (r *SiteRepo) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Site, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+siteColumns+`
		FROM sites WHERE category = $1 ORDER BY position
	`, string(category))
	if err != nil {
		return nil, err
	}
	return collectSites(rows)
}

// GetByID returns a single site.
func (r *SiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	var s domain.Site
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+siteColumns+`
		FROM sites WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Location.Lat, &s.Location.Lon, &s.State, &s.Category, &s.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ReplaceAll swaps the table contents for sites in one transaction.
// Row order within a category is preserved through the position column.
func (r *SiteRepo) ReplaceAll(ctx context.Context, sites []domain.Site) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM sites`); err != nil {
		return 0, fmt.Errorf("clear sites: %w", err)
	}

	batch := &pgx.Batch{}
	positions := map[domain.Category]int{}
	for _, s := range sites {
		batch.Queue(`
			INSERT INTO sites (id, name, latitude, longitude, state, category, description, position)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		`, s.ID, s.Name, s.Location.Lat, s.Location.Lon, s.State, string(s.Category), s.Description, positions[s.Category])
		positions[s.Category]++
	}
	br := tx.SendBatch(ctx, batch)
	for range sites {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("batch close: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(sites), nil
}

func collectSites(rows pgx.Rows) ([]domain.Site, error) {
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var s domain.Site
		if err := rows.Scan(&s.ID, &s.Name, &s.Location.Lat, &s.Location.Lon, &s.State, &s.Category, &s.Description); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}
