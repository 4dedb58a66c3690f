package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Schema creates the directory tables when missing. Positions order the
// directory; lower comes first.
const Schema = `
CREATE TABLE IF NOT EXISTS providers (
	id                TEXT PRIMARY KEY,
	position          BIGINT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	company           TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	bio               TEXT NOT NULL DEFAULT '',
	bio_html          TEXT NOT NULL DEFAULT '',
	specialties       TEXT[] NOT NULL DEFAULT '{}',
	street            TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	zip               TEXT NOT NULL DEFAULT '',
	service_radius_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	service_zips      TEXT[] NOT NULL DEFAULT '{}',
	updated_at        BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS photos (
	id          TEXT NOT NULL,
	provider_id TEXT NOT NULL REFERENCES providers(id) ON DELETE CASCADE,
	position    BIGINT NOT NULL,
	image_ref   TEXT NOT NULL DEFAULT '',
	caption     TEXT NOT NULL DEFAULT '',
	zones       TEXT[] NOT NULL DEFAULT '{}',
	products    TEXT[] NOT NULL DEFAULT '{}',
	PRIMARY KEY (provider_id, id)
);

CREATE TABLE IF NOT EXISTS tags (
	kind     TEXT NOT NULL,
	name     TEXT NOT NULL,
	position INT NOT NULL,
	PRIMARY KEY (kind, name)
);

CREATE TABLE IF NOT EXISTS tag_catalogs (
	kind TEXT PRIMARY KEY
);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create directory schema: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) ListProviders(ctx context.Context) ([]*Provider, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,name,company,email,phone,bio,bio_html,specialties,
		       street,city,zip,service_radius_km,service_zips,updated_at
		FROM providers ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	providers := []*Provider{}
	byID := map[string]*Provider{}
	for rows.Next() {
		p := &Provider{Photos: []*Photo{}}
		var specialties, zips pq.StringArray
		if err := rows.Scan(&p.ID, &p.Name, &p.Company, &p.Email, &p.Phone, &p.Bio, &p.BioHTML,
			&specialties, &p.Address.Street, &p.Address.City, &p.Address.Zip,
			&p.ServiceRadiusKm, &zips, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		p.Specialties = nonNil(specialties)
		p.ServiceZips = nonNil(zips)
		providers = append(providers, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	photoRows, err := r.db.QueryContext(ctx, `
		SELECT provider_id,id,image_ref,caption,zones,products
		FROM photos ORDER BY provider_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer photoRows.Close()

	for photoRows.Next() {
		var providerID string
		var zones, products pq.StringArray
		photo := &Photo{}
		if err := photoRows.Scan(&providerID, &photo.ID, &photo.ImageRef, &photo.Caption, &zones, &products); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photo.Zones = nonNil(zones)
		photo.Products = nonNil(products)
		if p, ok := byID[providerID]; ok {
			p.Photos = append(p.Photos, photo)
		}
	}
	return providers, photoRows.Err()
}

func (r *postgresRepo) InsertProvider(ctx context.Context, p *Provider) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MIN(position), 1) - 1 FROM providers`).Scan(&position); err != nil {
		return fmt.Errorf("next provider position: %w", err)
	}
	if err := insertProvider(ctx, tx, p, position); err != nil {
		return err
	}
	for i, photo := range p.Photos {
		if err := insertPhoto(ctx, tx, p.ID, photo, int64(i)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) UpdateProvider(ctx context.Context, p *Provider) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE providers SET
		  name=$1, company=$2, email=$3, phone=$4, bio=$5, bio_html=$6, specialties=$7,
		  street=$8, city=$9, zip=$10, service_radius_km=$11, service_zips=$12, updated_at=$13
		WHERE id=$14`,
		p.Name, p.Company, p.Email, p.Phone, p.Bio, p.BioHTML, pq.StringArray(p.Specialties),
		p.Address.Street, p.Address.City, p.Address.Zip, p.ServiceRadiusKm,
		pq.StringArray(p.ServiceZips), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	return expectRow(res, ErrProviderNotFound)
}

func (r *postgresRepo) DeleteProvider(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM providers WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	return expectRow(res, ErrProviderNotFound)
}

func (r *postgresRepo) InsertPhoto(ctx context.Context, providerID string, photo *Photo) error {
	var position int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(position), 1) - 1 FROM photos WHERE provider_id=$1`, providerID).Scan(&position)
	if err != nil {
		return fmt.Errorf("next photo position: %w", err)
	}
	return insertPhoto(ctx, r.db, providerID, photo, position)
}

func (r *postgresRepo) UpdatePhoto(ctx context.Context, providerID string, photo *Photo) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE photos SET image_ref=$1, caption=$2, zones=$3, products=$4
		WHERE provider_id=$5 AND id=$6`,
		photo.ImageRef, photo.Caption, pq.StringArray(photo.Zones), pq.StringArray(photo.Products),
		providerID, photo.ID)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return expectRow(res, ErrPhotoNotFound)
}

func (r *postgresRepo) DeletePhoto(ctx context.Context, providerID, photoID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE provider_id=$1 AND id=$2`, providerID, photoID)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return expectRow(res, ErrPhotoNotFound)
}

func (r *postgresRepo) ListTags(ctx context.Context, kind TagKind) ([]string, error) {
	var saved bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tag_catalogs WHERE kind=$1)`, string(kind)).Scan(&saved)
	if err != nil {
		return nil, fmt.Errorf("check %s tags: %w", kind, err)
	}
	if !saved {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tags WHERE kind=$1 ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s tags: %w", kind, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *postgresRepo) SaveTags(ctx context.Context, kind TagKind, tags []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveTags(ctx, tx, kind, tags); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) ReplaceAll(ctx context.Context, providers []*Provider, zoneTags, productTags []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM providers`); err != nil {
		return fmt.Errorf("clear providers: %w", err)
	}
	for i, p := range providers {
		if err := insertProvider(ctx, tx, p, int64(i)); err != nil {
			return err
		}
		for j, photo := range p.Photos {
			if err := insertPhoto(ctx, tx, p.ID, photo, int64(j)); err != nil {
				return err
			}
		}
	}
	if err := saveTags(ctx, tx, TagZone, zoneTags); err != nil {
		return err
	}
	if err := saveTags(ctx, tx, TagProduct, productTags); err != nil {
		return err
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func insertProvider(ctx context.Context, db execer, p *Provider, position int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO providers
		  (id, position, name, company, email, phone, bio, bio_html, specialties,
		   street, city, zip, service_radius_km, service_zips, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, position, p.Name, p.Company, p.Email, p.Phone, p.Bio, p.BioHTML,
		pq.StringArray(p.Specialties), p.Address.Street, p.Address.City, p.Address.Zip,
		p.ServiceRadiusKm, pq.StringArray(p.ServiceZips), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func insertPhoto(ctx context.Context, db execer, providerID string, photo *Photo, position int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO photos (id, provider_id, position, image_ref, caption, zones, products)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		photo.ID, providerID, position, photo.ImageRef, photo.Caption,
		pq.StringArray(photo.Zones), pq.StringArray(photo.Products))
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

func saveTags(ctx context.Context, db execer, kind TagKind, tags []string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM tags WHERE kind=$1`, string(kind)); err != nil {
		return fmt.Errorf("clear %s tags: %w", kind, err)
	}
	for i, tag := range tags {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO tags (kind, name, position) VALUES ($1,$2,$3)`, string(kind), tag, i); err != nil {
			return fmt.Errorf("insert %s tag: %w", kind, err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO tag_catalogs (kind) VALUES ($1) ON CONFLICT DO NOTHING`, string(kind))
	return err
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
