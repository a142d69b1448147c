package postgres

import (
	"context"
	"database/sql"
)

// WeightsRepo lee el último peso registrado por gato. El dato ausente es
// "desconocido", no cero: la elegibilidad de envío excluye sin dato.
type WeightsRepo struct {
	db *sql.DB
}

func NewWeightsRepo(db *sql.DB) *WeightsRepo {
	return &WeightsRepo{db: db}
}

func (r *WeightsRepo) LatestGrams(ctx context.Context, catID string) (int, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT grams
		FROM weight_records
		WHERE cat_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`, catID)

	var grams int
	if err := row.Scan(&grams); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return grams, true, nil
}
