package postgres

import (
	"context"
	"database/sql"
	"strings"

	"cattery-breeding/internal/domain/schedule"
)

type ScheduleRepo struct {
	db *sql.DB
}

func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// PutBatch escribe el tramo completo en una transacción: o entran todas
// las celdas o ninguna. El upsert cubre el archivado (reescritura de
// celdas existentes).
func (r *ScheduleRepo) PutBatch(ctx context.Context, entries []schedule.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO breeding_schedule (
				male_id, date,
				male_name, female_id, female_name,
				duration, day_index,
				is_history, result
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (male_id, date) DO UPDATE SET
				male_name = EXCLUDED.male_name,
				female_id = EXCLUDED.female_id,
				female_name = EXCLUDED.female_name,
				duration = EXCLUDED.duration,
				day_index = EXCLUDED.day_index,
				is_history = EXCLUDED.is_history,
				result = EXCLUDED.result
		`,
			e.MaleID,
			e.Date,
			e.MaleName,
			e.FemaleID,
			e.FemaleName,
			e.Duration,
			e.DayIndex,
			e.IsHistory,
			string(e.Result),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ScheduleRepo) Get(ctx context.Context, maleID, date string) (schedule.Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			male_id, date,
			male_name, female_id, female_name,
			duration, day_index,
			is_history, result
		FROM breeding_schedule
		WHERE male_id = $1 AND date = $2
	`, maleID, date)

	e, err := scanScheduleEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return schedule.Entry{}, schedule.ErrEntryNotFound
		}
		return schedule.Entry{}, err
	}
	return e, nil
}

func (r *ScheduleRepo) ListByMale(ctx context.Context, maleID string) ([]schedule.Entry, error) {
	maleID = strings.TrimSpace(maleID)
	if maleID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			male_id, date,
			male_name, female_id, female_name,
			duration, day_index,
			is_history, result
		FROM breeding_schedule
		WHERE male_id = $1
		ORDER BY date ASC
	`, maleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScheduleEntries(rows)
}

func (r *ScheduleRepo) ListByDateRange(ctx context.Context, from, to string) ([]schedule.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			male_id, date,
			male_name, female_id, female_name,
			duration, day_index,
			is_history, result
		FROM breeding_schedule
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC, male_id ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScheduleEntries(rows)
}

func (r *ScheduleRepo) DeleteBatch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range keys {
		maleID, date, ok := strings.Cut(key, "|")
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM breeding_schedule WHERE male_id = $1 AND date = $2
		`, maleID, date); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ScheduleRepo) DeleteByMale(ctx context.Context, maleID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM breeding_schedule WHERE male_id = $1
	`, maleID)
	return err
}

func scanScheduleEntry(scan func(dest ...any) error) (schedule.Entry, error) {
	var e schedule.Entry
	var result string
	if err := scan(
		&e.MaleID,
		&e.Date,
		&e.MaleName,
		&e.FemaleID,
		&e.FemaleName,
		&e.Duration,
		&e.DayIndex,
		&e.IsHistory,
		&result,
	); err != nil {
		return schedule.Entry{}, err
	}
	e.Result = schedule.Result(result)
	return e, nil
}

func collectScheduleEntries(rows *sql.Rows) ([]schedule.Entry, error) {
	out := make([]schedule.Entry, 0)
	for rows.Next() {
		e, err := scanScheduleEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
