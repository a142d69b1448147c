package birth

import "time"

// Status es el estado del plan de nacimiento.
type Status string

const (
	StatusExpected  Status = "EXPECTED"
	StatusBorn      Status = "BORN"
	StatusCancelled Status = "CANCELLED"
)

// Plan es el agregado del ciclo embarazo → parto → cierre de una madre.
// CompletedAt != nil sella el plan: ninguna mutación posterior se acepta.
type Plan struct {
	ID                string
	MotherID          string
	FatherID          string
	MatingDate        string // YYYY-MM-DD
	ExpectedBirthDate string // YYYY-MM-DD
	ActualBirthDate   string
	Status            Status
	ActualKittens     int
	DeadKittens       int
	Notes             string
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Sealed indica si el plan ya fue cerrado.
func (p Plan) Sealed() bool {
	return p.CompletedAt != nil
}

// Active indica si el plan sigue ocupando a la madre: gestación en curso
// o camada nacida aún sin cerrar.
func (p Plan) Active() bool {
	if p.Status == StatusExpected {
		return true
	}
	return p.Status == StatusBorn && !p.Sealed()
}

// AliveKittens es la cuenta de cachorros vivos de la camada.
func (p Plan) AliveKittens() int {
	n := p.ActualKittens - p.DeadKittens
	if n < 0 {
		return 0
	}
	return n
}

// DispositionType clasifica el destino asignado a un cachorro.
type DispositionType string

const (
	DispositionTraining DispositionType = "TRAINING"
	DispositionSale     DispositionType = "SALE"
	DispositionDeceased DispositionType = "DECEASED"
)

func (t DispositionType) Valid() bool {
	switch t {
	case DispositionTraining, DispositionSale, DispositionDeceased:
		return true
	}
	return false
}

// SaleInfo acompaña a una disposición SALE.
type SaleInfo struct {
	Buyer    string
	PriceYen int
	SaleDate string // YYYY-MM-DD
}

// Disposition registra el destino de un cachorro dentro de un plan.
// Los registros nunca se borran: reasignar crea uno nuevo y el vigente
// es el de CreatedAt más reciente.
type Disposition struct {
	ID                string
	BirthRecordID     string
	KittenID          string
	Type              DispositionType
	TrainingStartDate string
	SaleInfo          *SaleInfo
	DeathDate         string
	CreatedAt         time.Time
}

// CurrentDispositions reduce una lista de registros al vigente por
// cachorro: max CreatedAt, con el ID como desempate estable. Nunca
// depende del orden de inserción.
func CurrentDispositions(records []Disposition) map[string]Disposition {
	current := make(map[string]Disposition)
	for _, d := range records {
		prev, ok := current[d.KittenID]
		if !ok || d.CreatedAt.After(prev.CreatedAt) ||
			(d.CreatedAt.Equal(prev.CreatedAt) && d.ID > prev.ID) {
			current[d.KittenID] = d
		}
	}
	return current
}

// CheckStatus es el estado de un chequeo de embarazo.
type CheckStatus string

const (
	CheckSuspected CheckStatus = "SUSPECTED"
	CheckConfirmed CheckStatus = "CONFIRMED"
	CheckNegative  CheckStatus = "NEGATIVE"
)

// Check es la etapa previa al plan: sospecha de embarazo con fecha de
// chequeo programada tras el apareamiento.
type Check struct {
	ID         string
	MotherID   string
	FatherID   string
	MatingDate string // YYYY-MM-DD
	CheckDate  string // YYYY-MM-DD
	Status     CheckStatus
	Notes      string
	CreatedAt  time.Time
}
