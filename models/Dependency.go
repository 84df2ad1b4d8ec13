package models

import "knife/internal/schema"

// Dependency is a directed edge: RequiredBy needs Requisite to be made first.
type Dependency struct {
	RequiredBy string `json:"required_by"`
	Requisite  string `json:"requisite"`
	Quantity   string `json:"quantity"`
	Optional   bool   `json:"optional"`
}

// DependencyEntry is a dependency as listed under the requiring recipe.
type DependencyEntry struct {
	Recipe   RecipeSummary `json:"recipe"`
	Quantity string        `json:"quantity"`
	Optional bool          `json:"optional"`
}

func DependencyFromRecord(rec schema.Record) Dependency {
	d := schema.Dependencies
	return Dependency{
		RequiredBy: rec.String(d.RequiredBy),
		Requisite:  rec.String(d.Requisite),
		Quantity:   rec.String(d.Quantity),
		Optional:   rec.Bool(d.Optional),
	}
}
