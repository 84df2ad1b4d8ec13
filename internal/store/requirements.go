package store

import (
	"context"

	"knife/internal/schema"
	"knife/models"
)

const requirementEntity = "requirement"

// AddRequirement makes a recipe require an ingredient. ingredient_id is
// mandatory; quantity, optional and group default to "", false and "".
func (s *Store) AddRequirement(ctx context.Context, recipeID string, p Params) (models.Requirement, error) {
	if len(p) == 0 {
		return models.Requirement{}, invalidQuery(requirementEntity, "")
	}
	rec, err := s.decode(requirements.Model, p,
		requirements.IngredientID, requirements.Quantity, requirements.Optional, requirements.Group)
	if err != nil {
		return models.Requirement{}, err
	}
	ingredientID, ok := rec[requirements.IngredientID].(string)
	if !ok {
		return models.Requirement{}, invalidQuery(requirementEntity, requirements.IngredientID.Name)
	}

	unlock := s.lock(recipes.Model, ingredients.Model, requirements.Model)
	defer unlock()

	if _, err := s.recipe(ctx, recipeID); err != nil {
		return models.Requirement{}, err
	}
	if _, err := s.ingredient(ctx, ingredientID); err != nil {
		return models.Requirement{}, err
	}

	key := schema.Filter{requirements.RecipeID: recipeID, requirements.IngredientID: ingredientID}
	existing, err := s.first(ctx, requirements, key)
	if err != nil {
		return models.Requirement{}, translate(requirementEntity, err)
	}
	if existing != nil {
		return models.Requirement{}, alreadyExists(requirementEntity, models.RequirementFromRecord(existing))
	}

	rec[requirements.RecipeID] = recipeID
	if err := s.driver.Write(ctx, requirements.Model, rec); err != nil {
		return models.Requirement{}, translate(requirementEntity, err)
	}
	return s.GetRequirement(ctx, recipeID, ingredientID)
}

// GetRequirement returns the requirement linking a recipe and an ingredient.
func (s *Store) GetRequirement(ctx context.Context, recipeID, ingredientID string) (models.Requirement, error) {
	row, err := s.first(ctx, requirements, schema.Filter{requirements.RecipeID: recipeID, requirements.IngredientID: ingredientID})
	if err != nil {
		return models.Requirement{}, translate(requirementEntity, err)
	}
	if row == nil {
		return models.Requirement{}, notFound(requirementEntity, recipeID+"/"+ingredientID)
	}
	return models.RequirementFromRecord(row), nil
}

// EditRequirement updates quantity, optional or group.
func (s *Store) EditRequirement(ctx context.Context, recipeID, ingredientID string, p Params) (models.Requirement, error) {
	if len(p) == 0 {
		return models.Requirement{}, invalidQuery(requirementEntity, "")
	}
	rec, err := s.decode(requirements.Model, p, requirements.Quantity, requirements.Optional, requirements.Group)
	if err != nil {
		return models.Requirement{}, err
	}

	unlock := s.lock(requirements.Model)
	defer unlock()

	if _, err := s.GetRequirement(ctx, recipeID, ingredientID); err != nil {
		return models.Requirement{}, err
	}
	key := schema.Filter{requirements.RecipeID: recipeID, requirements.IngredientID: ingredientID}
	if err := s.driver.Write(ctx, requirements.Model, rec, key); err != nil {
		return models.Requirement{}, translate(requirementEntity, err)
	}
	return s.GetRequirement(ctx, recipeID, ingredientID)
}

// DeleteRequirement removes the requirement linking a recipe and an
// ingredient.
func (s *Store) DeleteRequirement(ctx context.Context, recipeID, ingredientID string) error {
	unlock := s.lock(requirements.Model)
	defer unlock()

	if _, err := s.GetRequirement(ctx, recipeID, ingredientID); err != nil {
		return err
	}
	key := schema.Filter{requirements.RecipeID: recipeID, requirements.IngredientID: ingredientID}
	return translate(requirementEntity, s.driver.Erase(ctx, requirements.Model, key))
}
