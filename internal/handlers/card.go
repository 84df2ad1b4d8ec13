package handlers

import (
	"net/http"

	"knife/internal/store"
	"knife/internal/views/components"
)

// RecipeCard renders the recipe as an HTML fragment.
func RecipeCard(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	detail, err := storage.GetRecipe(r.Context(), r.PathValue("id"))
	if err != nil {
		if store.KindOf(err) == store.NotFound {
			http.NotFound(w, r)
			return
		}
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.RecipeCard(detail).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
