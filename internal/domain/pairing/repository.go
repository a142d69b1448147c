package pairing

import "context"

type Repository interface {
	Create(ctx context.Context, r Rule) error
	GetByID(ctx context.Context, id string) (Rule, error)
	// List devuelve todas las reglas (activas e inactivas) en orden de
	// creación; el motor depende de ese orden.
	List(ctx context.Context) ([]Rule, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
