package handlers

import "net/http"

// ListRecipes looks recipes up by the query string parameters.
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.LookupRecipes(r.Context(), queryParams(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.CreateRecipe(r.Context(), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, out)
}

// ShowRecipe returns the full view of a recipe.
func ShowRecipe(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.GetRecipe(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func EditRecipe(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.EditRecipe(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if err := storage.DeleteRecipe(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func RecipeRequirements(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.RecipeRequirements(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func RecipeDependencies(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.RecipeDependencies(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func RecipeTags(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.RecipeTags(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

// RecipeClassification reports the dietary flags of a recipe's whole
// dependency graph.
func RecipeClassification(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.RecipeClassification(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

// AddRequirement accepts ingredient_id (or the older "ingredient" key),
// quantity, optional and group.
func AddRequirement(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	rename(p, "ingredient", "ingredient_id")
	out, err := storage.AddRequirement(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, out)
}

func ShowRequirement(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.GetRequirement(r.Context(), r.PathValue("id"), r.PathValue("ingredient"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func EditRequirement(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.EditRequirement(r.Context(), r.PathValue("id"), r.PathValue("ingredient"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if err := storage.DeleteRequirement(r.Context(), r.PathValue("id"), r.PathValue("ingredient")); err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// AddDependency accepts requisite (or the older "required" key), quantity
// and optional.
func AddDependency(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	rename(p, "required", "requisite")
	out, err := storage.AddDependency(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, out)
}

func EditDependency(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.EditDependency(r.Context(), r.PathValue("id"), r.PathValue("required"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func DeleteDependency(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if err := storage.DeleteDependency(r.Context(), r.PathValue("id"), r.PathValue("required")); err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// AddTag tags the recipe with the label called name, creating it if needed.
func AddTag(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.AddTag(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, out)
}

func DeleteTag(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if err := storage.DeleteTag(r.Context(), r.PathValue("id"), r.PathValue("label")); err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

