package store

import (
	"context"

	"knife/internal/graph"
	applog "knife/internal/log"
	"knife/internal/schema"
	"knife/models"
)

const dependencyEntity = "dependency"

// AddDependency records that recipeID requires the recipe named by the
// requisite parameter. The edge is refused when it is a self-loop, already
// exists, or either endpoint reaches the other: the last check is what keeps
// the graph acyclic.
func (s *Store) AddDependency(ctx context.Context, recipeID string, p Params) (models.Dependency, error) {
	if len(p) == 0 {
		return models.Dependency{}, invalidQuery(dependencyEntity, "")
	}
	rec, err := s.decode(dependencies.Model, p, dependencies.Requisite, dependencies.Quantity, dependencies.Optional)
	if err != nil {
		return models.Dependency{}, err
	}
	requisite, ok := rec[dependencies.Requisite].(string)
	if !ok {
		return models.Dependency{}, invalidQuery(dependencyEntity, dependencies.Requisite.Name)
	}

	unlock := s.lock(recipes.Model, dependencies.Model)
	defer unlock()

	if _, err := s.recipe(ctx, recipeID); err != nil {
		return models.Dependency{}, err
	}
	if _, err := s.recipe(ctx, requisite); err != nil {
		return models.Dependency{}, err
	}
	if recipeID == requisite {
		return models.Dependency{}, cycle(recipeID, requisite)
	}

	existing, err := s.first(ctx, dependencies, schema.Filter{dependencies.RequiredBy: recipeID, dependencies.Requisite: requisite})
	if err != nil {
		return models.Dependency{}, translate(dependencyEntity, err)
	}
	if existing != nil {
		return models.Dependency{}, alreadyExists(dependencyEntity, models.DependencyFromRecord(existing))
	}

	for _, pair := range [][2]string{{requisite, recipeID}, {recipeID, requisite}} {
		reached, err := graph.Reaches(ctx, s.driver, pair[0], pair[1])
		if err != nil {
			return models.Dependency{}, translate(dependencyEntity, err)
		}
		if reached {
			return models.Dependency{}, cycle(recipeID, requisite)
		}
	}

	rec[dependencies.RequiredBy] = recipeID
	if err := s.driver.Write(ctx, dependencies.Model, rec); err != nil {
		return models.Dependency{}, translate(dependencyEntity, err)
	}
	applog.Info(ctx, "dependency added", "required_by", recipeID, "requisite", requisite)
	return s.dependency(ctx, recipeID, requisite)
}

func (s *Store) dependency(ctx context.Context, recipeID, requisite string) (models.Dependency, error) {
	row, err := s.first(ctx, dependencies, schema.Filter{dependencies.RequiredBy: recipeID, dependencies.Requisite: requisite})
	if err != nil {
		return models.Dependency{}, translate(dependencyEntity, err)
	}
	if row == nil {
		return models.Dependency{}, notFound(dependencyEntity, recipeID+"/"+requisite)
	}
	return models.DependencyFromRecord(row), nil
}

// EditDependency updates quantity or optional.
func (s *Store) EditDependency(ctx context.Context, recipeID, requisite string, p Params) (models.Dependency, error) {
	if len(p) == 0 {
		return models.Dependency{}, invalidQuery(dependencyEntity, "")
	}
	rec, err := s.decode(dependencies.Model, p, dependencies.Quantity, dependencies.Optional)
	if err != nil {
		return models.Dependency{}, err
	}

	unlock := s.lock(dependencies.Model)
	defer unlock()

	if _, err := s.dependency(ctx, recipeID, requisite); err != nil {
		return models.Dependency{}, err
	}
	key := schema.Filter{dependencies.RequiredBy: recipeID, dependencies.Requisite: requisite}
	if err := s.driver.Write(ctx, dependencies.Model, rec, key); err != nil {
		return models.Dependency{}, translate(dependencyEntity, err)
	}
	return s.dependency(ctx, recipeID, requisite)
}

// DeleteDependency removes the edge recipeID -> requisite.
func (s *Store) DeleteDependency(ctx context.Context, recipeID, requisite string) error {
	unlock := s.lock(dependencies.Model)
	defer unlock()

	if _, err := s.dependency(ctx, recipeID, requisite); err != nil {
		return err
	}
	key := schema.Filter{dependencies.RequiredBy: recipeID, dependencies.Requisite: requisite}
	return translate(dependencyEntity, s.driver.Erase(ctx, dependencies.Model, key))
}
