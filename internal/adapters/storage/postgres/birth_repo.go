package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"cattery-breeding/internal/domain/birth"
)

type BirthRepo struct {
	db *sql.DB
}

func NewBirthRepo(db *sql.DB) *BirthRepo {
	return &BirthRepo{db: db}
}

func (r *BirthRepo) CreatePlan(ctx context.Context, p birth.Plan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO birth_plans (
			id, mother_id, father_id,
			mating_date, expected_birth_date, actual_birth_date,
			status, actual_kittens, dead_kittens, notes,
			completed_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		p.ID,
		p.MotherID,
		p.FatherID,
		p.MatingDate,
		p.ExpectedBirthDate,
		toNullString(p.ActualBirthDate),
		string(p.Status),
		p.ActualKittens,
		p.DeadKittens,
		p.Notes,
		toNullTime(p.CompletedAt),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *BirthRepo) GetPlan(ctx context.Context, id string) (birth.Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return birth.Plan{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, mother_id, father_id,
			mating_date, expected_birth_date, actual_birth_date,
			status, actual_kittens, dead_kittens, notes,
			completed_at, created_at, updated_at
		FROM birth_plans
		WHERE id = $1
	`, id)

	p, err := scanPlan(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return birth.Plan{}, ErrNotFound
		}
		return birth.Plan{}, err
	}
	return p, nil
}

func (r *BirthRepo) ListPlans(ctx context.Context) ([]birth.Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, mother_id, father_id,
			mating_date, expected_birth_date, actual_birth_date,
			status, actual_kittens, dead_kittens, notes,
			completed_at, created_at, updated_at
		FROM birth_plans
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlans(rows)
}

func (r *BirthRepo) ListPlansByMother(ctx context.Context, motherID string) ([]birth.Plan, error) {
	motherID = strings.TrimSpace(motherID)
	if motherID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, mother_id, father_id,
			mating_date, expected_birth_date, actual_birth_date,
			status, actual_kittens, dead_kittens, notes,
			completed_at, created_at, updated_at
		FROM birth_plans
		WHERE mother_id = $1
		ORDER BY created_at ASC, id ASC
	`, motherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlans(rows)
}

func (r *BirthRepo) UpdatePlan(ctx context.Context, p birth.Plan) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE birth_plans
		SET
			actual_birth_date = $2,
			status = $3,
			actual_kittens = $4,
			dead_kittens = $5,
			notes = $6,
			completed_at = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID,
		toNullString(p.ActualBirthDate),
		string(p.Status),
		p.ActualKittens,
		p.DeadKittens,
		p.Notes,
		toNullTime(p.CompletedAt),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BirthRepo) CreateDisposition(ctx context.Context, d birth.Disposition) error {
	var saleInfo []byte
	if d.SaleInfo != nil {
		var err error
		saleInfo, err = json.Marshal(d.SaleInfo)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kitten_dispositions (
			id, birth_record_id, kitten_id, type,
			training_start_date, sale_info, death_date,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		d.ID,
		d.BirthRecordID,
		d.KittenID,
		string(d.Type),
		toNullString(d.TrainingStartDate),
		saleInfo,
		toNullString(d.DeathDate),
		d.CreatedAt,
	)
	return err
}

func (r *BirthRepo) ListDispositions(ctx context.Context, planID string) ([]birth.Disposition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, birth_record_id, kitten_id, type,
			training_start_date, sale_info, death_date,
			created_at
		FROM kitten_dispositions
		WHERE birth_record_id = $1
		ORDER BY created_at ASC, id ASC
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]birth.Disposition, 0)
	for rows.Next() {
		var d birth.Disposition
		var dispType string
		var training, death sql.NullString
		var saleInfo []byte
		if err := rows.Scan(
			&d.ID,
			&d.BirthRecordID,
			&d.KittenID,
			&dispType,
			&training,
			&saleInfo,
			&death,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Type = birth.DispositionType(dispType)
		d.TrainingStartDate = training.String
		d.DeathDate = death.String
		if len(saleInfo) > 0 {
			var info birth.SaleInfo
			if err := json.Unmarshal(saleInfo, &info); err != nil {
				return nil, err
			}
			d.SaleInfo = &info
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *BirthRepo) CreateCheck(ctx context.Context, c birth.Check) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pregnancy_checks (
			id, mother_id, father_id,
			mating_date, check_date, status, notes,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		c.ID,
		c.MotherID,
		c.FatherID,
		c.MatingDate,
		c.CheckDate,
		string(c.Status),
		c.Notes,
		c.CreatedAt,
	)
	return err
}

func (r *BirthRepo) GetCheck(ctx context.Context, id string) (birth.Check, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, mother_id, father_id,
			mating_date, check_date, status, notes,
			created_at
		FROM pregnancy_checks
		WHERE id = $1
	`, id)

	c, err := scanCheck(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return birth.Check{}, ErrNotFound
		}
		return birth.Check{}, err
	}
	return c, nil
}

func (r *BirthRepo) ListChecks(ctx context.Context) ([]birth.Check, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, mother_id, father_id,
			mating_date, check_date, status, notes,
			created_at
		FROM pregnancy_checks
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]birth.Check, 0)
	for rows.Next() {
		c, err := scanCheck(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *BirthRepo) DeleteCheck(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pregnancy_checks WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPlan(scan func(dest ...any) error) (birth.Plan, error) {
	var p birth.Plan
	var status string
	var actualBirth sql.NullString
	var completedAt sql.NullTime
	if err := scan(
		&p.ID,
		&p.MotherID,
		&p.FatherID,
		&p.MatingDate,
		&p.ExpectedBirthDate,
		&actualBirth,
		&status,
		&p.ActualKittens,
		&p.DeadKittens,
		&p.Notes,
		&completedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return birth.Plan{}, err
	}
	p.Status = birth.Status(status)
	p.ActualBirthDate = actualBirth.String
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	return p, nil
}

func scanCheck(scan func(dest ...any) error) (birth.Check, error) {
	var c birth.Check
	var status string
	if err := scan(
		&c.ID,
		&c.MotherID,
		&c.FatherID,
		&c.MatingDate,
		&c.CheckDate,
		&status,
		&c.Notes,
		&c.CreatedAt,
	); err != nil {
		return birth.Check{}, err
	}
	c.Status = birth.CheckStatus(status)
	return c, nil
}

func collectPlans(rows *sql.Rows) ([]birth.Plan, error) {
	out := make([]birth.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
