package postalcode

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

const createPostalCodesTable = `CREATE TABLE IF NOT EXISTS postal_codes (
	zip CHAR(5) PRIMARY KEY,
	lat DOUBLE PRECISION NOT NULL,
	lng DOUBLE PRECISION NOT NULL
);`

type pgxRepo struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates the postal_codes table when missing.
func NewPgxRepository(ctx context.Context, pool *pgxpool.Pool) (Repository, error) {
	if _, err := pool.Exec(ctx, createPostalCodesTable); err != nil {
		return nil, fmt.Errorf("create postal_codes: %w", err)
	}
	return &pgxRepo{pool: pool}, nil
}

func (r *pgxRepo) Load(ctx context.Context) (geo.Index, error) {
	rows, err := r.pool.Query(ctx, `SELECT zip, lat, lng FROM postal_codes`)
	if err != nil {
		return nil, fmt.Errorf("load postal codes: %w", err)
	}
	defer rows.Close()

	idx := geo.Index{}
	for rows.Next() {
		var zip string
		var p geo.Point
		if err := rows.Scan(&zip, &p.Lat, &p.Lng); err != nil {
			return nil, fmt.Errorf("scan postal code: %w", err)
		}
		idx[zip] = p
	}
	return idx, rows.Err()
}

// Replace empties the table and copies idx in, inside one transaction.
func (r *pgxRepo) Replace(ctx context.Context, idx geo.Index) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM postal_codes`); err != nil {
		return fmt.Errorf("clear postal codes: %w", err)
	}

	zips := make([]string, 0, len(idx))
	for zip := range idx {
		zips = append(zips, zip)
	}
	sort.Strings(zips)

	rows := make([][]any, 0, len(zips))
	for _, zip := range zips {
		p := idx[zip]
		rows = append(rows, []any{zip, p.Lat, p.Lng})
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"postal_codes"}, []string{"zip", "lat", "lng"}, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy postal codes: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy postal codes: wrote %d of %d rows", n, len(rows))
	}
	return tx.Commit(ctx)
}
