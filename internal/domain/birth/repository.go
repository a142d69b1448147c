package birth

import "context"

// Repository persiste planes, disposiciones y chequeos de embarazo.
// Los listados devuelven los registros ordenados por CreatedAt ascendente.
type Repository interface {
	CreatePlan(ctx context.Context, p Plan) error
	GetPlan(ctx context.Context, id string) (Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	ListPlansByMother(ctx context.Context, motherID string) ([]Plan, error)
	UpdatePlan(ctx context.Context, p Plan) error

	CreateDisposition(ctx context.Context, d Disposition) error
	ListDispositions(ctx context.Context, planID string) ([]Disposition, error)

	CreateCheck(ctx context.Context, c Check) error
	GetCheck(ctx context.Context, id string) (Check, error)
	ListChecks(ctx context.Context) ([]Check, error)
	DeleteCheck(ctx context.Context, id string) error
}
