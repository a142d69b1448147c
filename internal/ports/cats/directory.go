package cats

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("cat not found")
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Cat es la vista del directorio de gatos que necesita el core de cría:
// identidad, tags (para reglas NG) y parentesco (para camadas).
type Cat struct {
	ID        string
	Name      string
	Gender    Gender
	Tags      []string
	BirthDate *time.Time
	MotherID  string
	FatherID  string
	InHouse   bool
}

// Directory es el colaborador externo que resuelve gatos por id.
// El core no es dueño de los registros de gatos; solo los consulta.
type Directory interface {
	Get(ctx context.Context, id string) (Cat, error)
	List(ctx context.Context) ([]Cat, error)
	KittensOf(ctx context.Context, motherID string) ([]Cat, error)
}
