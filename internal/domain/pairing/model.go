package pairing

import (
	"time"

	"cattery-breeding/internal/ports/cats"
)

// RuleType define los tipos de regla NG soportados.
type RuleType string

const (
	RuleTagCombination        RuleType = "TAG_COMBINATION"
	RuleIndividualProhibition RuleType = "INDIVIDUAL_PROHIBITION"
	RuleGenerationLimit       RuleType = "GENERATION_LIMIT"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleTagCombination, RuleIndividualProhibition, RuleGenerationLimit:
		return true
	default:
		return false
	}
}

// Rule es una regla de pareja prohibida. Inmutable una vez creada,
// salvo el flag Active.
type Rule struct {
	ID   string
	Name string
	Type RuleType

	// TAG_COMBINATION
	MaleConditions   []string
	FemaleConditions []string

	// INDIVIDUAL_PROHIBITION — por nombre, no por id (heredado del
	// producto; ver nota en DESIGN.md).
	MaleNames   []string
	FemaleNames []string

	// GENERATION_LIMIT — evaluación pendiente de pedigree.
	GenerationLimit int

	Description string
	Active      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate es un gato candidato a pareja visto por el motor de reglas.
type Candidate struct {
	ID   string
	Name string
	Tags []string
}

// CandidateFromCat proyecta un gato del directorio a candidato.
func CandidateFromCat(c cats.Cat) Candidate {
	return Candidate{
		ID:   c.ID,
		Name: c.Name,
		Tags: c.Tags,
	}
}
