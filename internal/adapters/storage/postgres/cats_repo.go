package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"cattery-breeding/internal/ports/cats"
)

// CatsRepo implementa el directorio de gatos sobre Postgres. El catálogo
// se administra por fuera de este servicio; acá solo se lee.
type CatsRepo struct {
	db *sql.DB
}

func NewCatsRepo(db *sql.DB) *CatsRepo {
	return &CatsRepo{db: db}
}

func (r *CatsRepo) Get(ctx context.Context, id string) (cats.Cat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cats.Cat{}, cats.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, gender, tags,
			birth_date, mother_id, father_id, in_house
		FROM cats
		WHERE id = $1
	`, id)

	c, err := scanCat(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return cats.Cat{}, cats.ErrNotFound
		}
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) List(ctx context.Context) ([]cats.Cat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, gender, tags,
			birth_date, mother_id, father_id, in_house
		FROM cats
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCats(rows)
}

func (r *CatsRepo) KittensOf(ctx context.Context, motherID string) ([]cats.Cat, error) {
	motherID = strings.TrimSpace(motherID)
	if motherID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, gender, tags,
			birth_date, mother_id, father_id, in_house
		FROM cats
		WHERE mother_id = $1
		ORDER BY name ASC
	`, motherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCats(rows)
}

func scanCat(scan func(dest ...any) error) (cats.Cat, error) {
	var c cats.Cat
	var gender string
	var tags []byte
	var bd sql.NullTime
	var motherID, fatherID sql.NullString
	if err := scan(
		&c.ID,
		&c.Name,
		&gender,
		&tags,
		&bd,
		&motherID,
		&fatherID,
		&c.InHouse,
	); err != nil {
		return cats.Cat{}, err
	}
	c.Gender = cats.Gender(gender)
	c.MotherID = motherID.String
	c.FatherID = fatherID.String
	if bd.Valid {
		t := bd.Time
		c.BirthDate = &t
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return cats.Cat{}, err
		}
	}
	return c, nil
}

func collectCats(rows *sql.Rows) ([]cats.Cat, error) {
	out := make([]cats.Cat, 0)
	for rows.Next() {
		c, err := scanCat(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Las fechas de negocio viajan como texto YYYY-MM-DD; vacío es NULL.
func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
