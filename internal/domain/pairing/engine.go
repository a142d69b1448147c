package pairing

// UnknownCandidatePolicy define qué responde el motor cuando falta el macho
// o la hembra. El producto original resolvía "no prohibido" de forma
// implícita; aquí la política es explícita y configurable.
type UnknownCandidatePolicy string

const (
	// UnknownAllows: candidato ausente => no prohibido (default, preserva
	// la usabilidad de la UI).
	UnknownAllows UnknownCandidatePolicy = "allow"
	// UnknownProhibits: candidato ausente => prohibido.
	UnknownProhibits UnknownCandidatePolicy = "prohibit"
)

// Engine evalúa parejas candidatas contra la colección de reglas.
// Puro y sin estado mutable: seguro para llamadas concurrentes.
type Engine struct {
	unknownPolicy UnknownCandidatePolicy
}

func NewEngine() *Engine {
	return &Engine{unknownPolicy: UnknownAllows}
}

func NewEngineWithPolicy(p UnknownCandidatePolicy) *Engine {
	if p != UnknownProhibits {
		p = UnknownAllows
	}
	return &Engine{unknownPolicy: p}
}

// IsProhibited responde si la pareja (male, female) cae en alguna regla
// activa. Las reglas inactivas se ignoran.
func (e *Engine) IsProhibited(male, female Candidate, rules []Rule) bool {
	_, ok := e.MatchingRule(male, female, rules)
	return ok
}

// MatchingRule devuelve la primera regla activa que prohíbe la pareja,
// en orden de colección (orden de inserción, sin ranking de severidad).
func (e *Engine) MatchingRule(male, female Candidate, rules []Rule) (Rule, bool) {
	if male.ID == "" || female.ID == "" {
		if e.unknownPolicy == UnknownProhibits {
			return Rule{}, true
		}
		return Rule{}, false
	}

	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if ruleMatches(rule, male, female) {
			return rule, true
		}
	}
	return Rule{}, false
}

func ruleMatches(rule Rule, male, female Candidate) bool {
	switch rule.Type {
	case RuleTagCombination:
		// any-of AND any-of: basta una coincidencia en cada lado.
		return anyOverlap(male.Tags, rule.MaleConditions) &&
			anyOverlap(female.Tags, rule.FemaleConditions)

	case RuleIndividualProhibition:
		// Por nombre, no por id.
		return contains(rule.MaleNames, male.Name) &&
			contains(rule.FemaleNames, female.Name)

	case RuleGenerationLimit:
		// Pendiente de cálculo de profundidad de pedigree.
		return false

	default:
		return false
	}
}

func anyOverlap(have, want []string) bool {
	if len(have) == 0 || len(want) == 0 {
		return false
	}
	for _, w := range want {
		if contains(have, w) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
