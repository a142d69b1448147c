package pairing

import "testing"

func tagRule(name string, maleConds, femaleConds []string, active bool) Rule {
	return Rule{
		ID:               "rule-" + name,
		Name:             name,
		Type:             RuleTagCombination,
		MaleConditions:   maleConds,
		FemaleConditions: femaleConds,
		Active:           active,
	}
}

func TestEngine_TagCombination(t *testing.T) {
	engine := NewEngine()

	male := Candidate{ID: "m1", Name: "Leo", Tags: []string{"A"}}
	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"B"}}

	rules := []Rule{tagRule("ab", []string{"A"}, []string{"B"}, true)}

	if !engine.IsProhibited(male, female, rules) {
		t.Fatal("expected prohibited for tag match A/B")
	}

	// La misma regla inactiva no prohíbe.
	rules[0].Active = false
	if engine.IsProhibited(male, female, rules) {
		t.Fatal("inactive rule must not prohibit")
	}
}

func TestEngine_TagCombination_AnyOfBothSides(t *testing.T) {
	engine := NewEngine()

	male := Candidate{ID: "m1", Name: "Leo", Tags: []string{"A", "X"}}
	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"Y"}}

	// El macho coincide (any-of), la hembra no: no prohibido.
	rules := []Rule{tagRule("r", []string{"A", "Z"}, []string{"B"}, true)}
	if engine.IsProhibited(male, female, rules) {
		t.Fatal("female side without match must not prohibit")
	}

	// Ambos lados con al menos una coincidencia: prohibido.
	female.Tags = []string{"Y", "B"}
	if !engine.IsProhibited(male, female, rules) {
		t.Fatal("any-of match on both sides must prohibit")
	}
}

func TestEngine_IndividualProhibition_ByName(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{{
		ID:          "r1",
		Name:        "leo-mimi",
		Type:        RuleIndividualProhibition,
		MaleNames:   []string{"Leo"},
		FemaleNames: []string{"Mimi"},
		Active:      true,
	}}

	leo := Candidate{ID: "m1", Name: "Leo"}
	mimi := Candidate{ID: "f1", Name: "Mimi"}

	if !engine.IsProhibited(leo, mimi, rules) {
		t.Fatal("expected Leo/Mimi prohibited")
	}

	// Otro gato llamado igual también matchea: la regla es por nombre,
	// no por id.
	otherLeo := Candidate{ID: "m99", Name: "Leo"}
	if !engine.IsProhibited(otherLeo, mimi, rules) {
		t.Fatal("name-based rule must match any cat named Leo")
	}

	// Nombres distintos no matchean aunque compartan tags.
	if engine.IsProhibited(Candidate{ID: "m2", Name: "Max"}, mimi, rules) {
		t.Fatal("Max/Mimi must not be prohibited")
	}
	if engine.IsProhibited(leo, Candidate{ID: "f2", Name: "Luna"}, rules) {
		t.Fatal("Leo/Luna must not be prohibited")
	}
}

func TestEngine_GenerationLimit_AlwaysAllows(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{{
		ID:              "r1",
		Name:            "gen",
		Type:            RuleGenerationLimit,
		GenerationLimit: 3,
		Active:          true,
	}}

	male := Candidate{ID: "m1", Name: "Leo", Tags: []string{"A"}}
	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"B"}}

	if engine.IsProhibited(male, female, rules) {
		t.Fatal("GENERATION_LIMIT evaluation is a stub and must not prohibit")
	}
}

func TestEngine_MatchingRule_FirstActiveWins(t *testing.T) {
	engine := NewEngine()

	male := Candidate{ID: "m1", Name: "Leo", Tags: []string{"A"}}
	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"B"}}

	rules := []Rule{
		tagRule("first-inactive", []string{"A"}, []string{"B"}, false),
		tagRule("second", []string{"A"}, []string{"B"}, true),
		tagRule("third", []string{"A"}, []string{"B"}, true),
	}

	rule, ok := engine.MatchingRule(male, female, rules)
	if !ok {
		t.Fatal("expected a matching rule")
	}
	if rule.Name != "second" {
		t.Fatalf("expected first active match 'second', got %q", rule.Name)
	}
}

func TestEngine_UnknownCandidatePolicy(t *testing.T) {
	rules := []Rule{tagRule("r", []string{"A"}, []string{"B"}, true)}

	female := Candidate{ID: "f1", Name: "Mimi", Tags: []string{"B"}}

	// Default: fail-open.
	if NewEngine().IsProhibited(Candidate{}, female, rules) {
		t.Fatal("default policy must allow when male is unknown")
	}

	// Explicitamente fail-closed.
	strict := NewEngineWithPolicy(UnknownProhibits)
	if !strict.IsProhibited(Candidate{}, female, rules) {
		t.Fatal("prohibit policy must reject when male is unknown")
	}
}
