package models

import "knife/internal/schema"

// Recipe is a named set of directions.
type Recipe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SimpleName  string `json:"simple_name"`
	Author      string `json:"author"`
	Directions  string `json:"directions"`
	Information string `json:"information"`
}

// RecipeSummary identifies a recipe in listings.
type RecipeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecipeDetail is the full view of a recipe with everything linked to it.
type RecipeDetail struct {
	Recipe
	Requirements   []RequirementEntry `json:"requirements"`
	Dependencies   []DependencyEntry  `json:"dependencies"`
	RequiredBy     []RecipeSummary    `json:"required_by"`
	Tags           []LabelSummary     `json:"tags"`
	Classification Classification     `json:"classification"`
}

// RecipeFromRecord reads a recipe out of a recipes row.
func RecipeFromRecord(rec schema.Record) Recipe {
	r := schema.Recipes
	return Recipe{
		ID:          rec.String(r.ID),
		Name:        rec.String(r.Name),
		SimpleName:  rec.String(r.SimpleName),
		Author:      rec.String(r.Author),
		Directions:  rec.String(r.Directions),
		Information: rec.String(r.Information),
	}
}

// Summary trims the recipe to its id and name.
func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{ID: r.ID, Name: r.Name}
}
