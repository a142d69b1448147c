package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"cattery-breeding/internal/domain/pairing"
)

type RulesRepo struct {
	db *sql.DB
}

func NewRulesRepo(db *sql.DB) *RulesRepo {
	return &RulesRepo{db: db}
}

func (r *RulesRepo) Create(ctx context.Context, rule pairing.Rule) error {
	maleConds, femaleConds, maleNames, femaleNames, err := marshalRuleLists(rule)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ng_rules (
			id, name, type,
			male_conditions, female_conditions,
			male_names, female_names,
			generation_limit, description, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rule.ID,
		rule.Name,
		string(rule.Type),
		maleConds,
		femaleConds,
		maleNames,
		femaleNames,
		rule.GenerationLimit,
		rule.Description,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	return err
}

func (r *RulesRepo) GetByID(ctx context.Context, id string) (pairing.Rule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pairing.Rule{}, pairing.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, type,
			male_conditions, female_conditions,
			male_names, female_names,
			generation_limit, description, active,
			created_at, updated_at
		FROM ng_rules
		WHERE id = $1
	`, id)

	rule, err := scanRule(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return pairing.Rule{}, pairing.ErrNotFound
		}
		return pairing.Rule{}, err
	}
	return rule, nil
}

// List devuelve las reglas en orden de creación; el motor evalúa en ese
// orden.
func (r *RulesRepo) List(ctx context.Context) ([]pairing.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, type,
			male_conditions, female_conditions,
			male_names, female_names,
			generation_limit, description, active,
			created_at, updated_at
		FROM ng_rules
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pairing.Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *RulesRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ng_rules SET active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pairing.ErrNotFound
	}
	return nil
}

func (r *RulesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM ng_rules WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pairing.ErrNotFound
	}
	return nil
}

// Las listas de condiciones y nombres van como JSONB.
func marshalRuleLists(rule pairing.Rule) (m, f, mn, fn []byte, err error) {
	if m, err = json.Marshal(rule.MaleConditions); err != nil {
		return nil, nil, nil, nil, err
	}
	if f, err = json.Marshal(rule.FemaleConditions); err != nil {
		return nil, nil, nil, nil, err
	}
	if mn, err = json.Marshal(rule.MaleNames); err != nil {
		return nil, nil, nil, nil, err
	}
	if fn, err = json.Marshal(rule.FemaleNames); err != nil {
		return nil, nil, nil, nil, err
	}
	return m, f, mn, fn, nil
}

func scanRule(scan func(dest ...any) error) (pairing.Rule, error) {
	var rule pairing.Rule
	var ruleType string
	var maleConds, femaleConds, maleNames, femaleNames []byte
	if err := scan(
		&rule.ID,
		&rule.Name,
		&ruleType,
		&maleConds,
		&femaleConds,
		&maleNames,
		&femaleNames,
		&rule.GenerationLimit,
		&rule.Description,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return pairing.Rule{}, err
	}
	rule.Type = pairing.RuleType(ruleType)

	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{maleConds, &rule.MaleConditions},
		{femaleConds, &rule.FemaleConditions},
		{maleNames, &rule.MaleNames},
		{femaleNames, &rule.FemaleNames},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return pairing.Rule{}, err
		}
	}
	return rule, nil
}
