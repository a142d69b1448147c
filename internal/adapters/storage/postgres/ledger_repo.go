package postgres

import (
	"context"
	"database/sql"

	"cattery-breeding/internal/domain/schedule"
)

// LedgerRepo persiste los conteos de chequeo por clave opaca. Las filas
// nunca se borran.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

var _ schedule.LedgerRepository = (*LedgerRepo)(nil)

func (r *LedgerRepo) Get(ctx context.Context, key string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT count FROM mating_checks WHERE key = $1
	`, key)

	var n int
	if err := row.Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Increment delega la atomicidad en el upsert: el nuevo conteo se
// calcula dentro de la sentencia, nunca desde una lectura previa.
func (r *LedgerRepo) Increment(ctx context.Context, key string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO mating_checks (key, count)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET count = mating_checks.count + 1
		RETURNING count
	`, key)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
