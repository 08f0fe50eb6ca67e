package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

// PostgresSearchRepository persists completed meeting-point searches. Records
// are opaque engine output: addresses as a JSON array plus the chosen
// midpoint. The engine depends on nothing beyond id/addresses/coordinate/
// timestamp.
type PostgresSearchRepository struct {
	DB *sql.DB
}

func NewPostgresSearchRepository(db *sql.DB) *PostgresSearchRepository {
	return &PostgresSearchRepository{DB: db}
}

func (r *PostgresSearchRepository) SaveSearch(ctx context.Context, rec ports.SearchRecord) (err error) {
	defer obs.Time(ctx, "searches.save")(&err)

	if r.DB == nil {
		return errors.New("search repository: db is nil")
	}

	addrs, err := json.Marshal(rec.Addresses)
	if err != nil {
		return fmt.Errorf("save search: marshal addresses: %w", err)
	}

	q := `
	INSERT INTO searches (id, addresses, midpoint_lat, midpoint_lon, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING;
	`

	if _, err := r.DB.ExecContext(ctx, q, rec.ID, addrs, rec.Midpoint.Lat, rec.Midpoint.Lon, rec.CreatedAt); err != nil {
		return fmt.Errorf("save search %q: %w", rec.ID, err)
	}
	return nil
}

func (r *PostgresSearchRepository) ListSearches(ctx context.Context, limit int) (_ []ports.SearchRecord, err error) {
	defer obs.Time(ctx, "searches.list")(&err)

	if r.DB == nil {
		return nil, errors.New("search repository: db is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	q := `
	SELECT id, addresses, midpoint_lat, midpoint_lon, created_at
	FROM searches
	ORDER BY created_at DESC
	LIMIT $1;
	`

	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: query: %w", err)
	}
	defer rows.Close()

	out := make([]ports.SearchRecord, 0, limit)
	for rows.Next() {
		var (
			rec   ports.SearchRecord
			addrs []byte
		)
		if err := rows.Scan(&rec.ID, &addrs, &rec.Midpoint.Lat, &rec.Midpoint.Lon, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("list searches: scan rows: %w", err)
		}
		if err := json.Unmarshal(addrs, &rec.Addresses); err != nil {
			return nil, fmt.Errorf("list searches: decode addresses for %q: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list searches: row iteration: %w", err)
	}

	return out, nil
}
