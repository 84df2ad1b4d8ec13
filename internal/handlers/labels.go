package handlers

import "net/http"

func ListLabels(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.LookupLabels(r.Context(), queryParams(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func CreateLabel(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.CreateLabel(r.Context(), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, out)
}

// ShowLabel returns a label and every recipe tagged with it.
func ShowLabel(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	out, err := storage.ShowLabel(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func EditLabel(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	p, ok := withBody(w, r)
	if !ok {
		return
	}
	out, err := storage.EditLabel(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func DeleteLabel(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if err := storage.DeleteLabel(r.Context(), r.PathValue("id"), cascade(r)); err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
