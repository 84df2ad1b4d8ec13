package models

import "knife/internal/schema"

// Requirement states that a recipe needs an ingredient.
type Requirement struct {
	RecipeID     string `json:"recipe_id"`
	IngredientID string `json:"ingredient_id"`
	Quantity     string `json:"quantity"`
	Optional     bool   `json:"optional"`
	Group        string `json:"group"`
}

// RequirementEntry is a requirement as listed under its recipe.
type RequirementEntry struct {
	Ingredient IngredientSummary `json:"ingredient"`
	Quantity   string            `json:"quantity"`
	Optional   bool              `json:"optional"`
	Group      string            `json:"group"`
}

func RequirementFromRecord(rec schema.Record) Requirement {
	r := schema.Requirements
	return Requirement{
		RecipeID:     rec.String(r.RecipeID),
		IngredientID: rec.String(r.IngredientID),
		Quantity:     rec.String(r.Quantity),
		Optional:     rec.Bool(r.Optional),
		Group:        rec.String(r.Group),
	}
}
