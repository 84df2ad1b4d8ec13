package models

import "knife/internal/schema"

// Ingredient is a raw component a recipe can require. The flags drive the
// dietary classification of recipes using it.
type Ingredient struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SimpleName    string `json:"simple_name"`
	Dairy         bool   `json:"dairy"`
	Meat          bool   `json:"meat"`
	Gluten        bool   `json:"gluten"`
	AnimalProduct bool   `json:"animal_product"`
}

// IngredientSummary identifies an ingredient in listings.
type IngredientSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IngredientDetail adds the recipes requiring the ingredient.
type IngredientDetail struct {
	Ingredient
	UsedIn []RecipeSummary `json:"used_in"`
}

func IngredientFromRecord(rec schema.Record) Ingredient {
	i := schema.Ingredients
	return Ingredient{
		ID:            rec.String(i.ID),
		Name:          rec.String(i.Name),
		SimpleName:    rec.String(i.SimpleName),
		Dairy:         rec.Bool(i.Dairy),
		Meat:          rec.Bool(i.Meat),
		Gluten:        rec.Bool(i.Gluten),
		AnimalProduct: rec.Bool(i.AnimalProduct),
	}
}
