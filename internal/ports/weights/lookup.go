package weights

import "context"

// Lookup es el colaborador externo de registros de peso.
// Devuelve el último peso conocido en gramos; ok=false si el gato no tiene
// registros (el caller decide la política — shipping es fail-closed).
type Lookup interface {
	LatestGrams(ctx context.Context, catID string) (grams int, ok bool, err error)
}
