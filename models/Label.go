package models

import "knife/internal/schema"

// Label is a free-form category attached to recipes through tags.
type Label struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SimpleName string `json:"simple_name"`
}

type LabelSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabelDetail adds the recipes carrying the label.
type LabelDetail struct {
	Label
	TaggedRecipes []RecipeSummary `json:"tagged_recipes"`
}

func LabelFromRecord(rec schema.Record) Label {
	l := schema.Labels
	return Label{
		ID:         rec.String(l.ID),
		Name:       rec.String(l.Name),
		SimpleName: rec.String(l.SimpleName),
	}
}

// Tag links a recipe to a label.
type Tag struct {
	RecipeID string `json:"recipe_id"`
	LabelID  string `json:"label_id"`
}
