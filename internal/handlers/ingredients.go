package handlers

import "net/http"

// ListIngredients looks ingredients up by the query string parameters.
func ListIngredients(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.LookupIngredients(r.Context(), queryParams(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func CreateIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.CreateIngredient(r.Context(), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, out)
}

// ShowIngredient returns an ingredient and the recipes that use it.
func ShowIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.ShowIngredient(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func EditIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.EditIngredient(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

// DeleteIngredient answers 409 while recipes require the ingredient, unless
// ?cascade=true.
func DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if err := storage.DeleteIngredient(r.Context(), r.PathValue("id"), cascade(r)); err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// MergeIngredient folds the ingredient named by the "id" field into the one
// in the path.
func MergeIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	src, _ := p["id"].(string)
	if src == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid parameter: id", nil)
		return
	}
	out, err := storage.MergeIngredient(r.Context(), r.PathValue("id"), src)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}
