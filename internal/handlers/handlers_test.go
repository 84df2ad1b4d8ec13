package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"knife/internal/db/mock"
	"knife/internal/store"
	"knife/models"
)

func withTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := mock.NewBackend(context.Background(), mock.Document)
	if err != nil {
		t.Fatalf("failed to build mock store: %v", err)
	}
	original := storage
	storage = s
	t.Cleanup(func() { storage = original })
	return s
}

type testEnvelope struct {
	Accepted bool            `json:"accepted"`
	Data     json.RawMessage `json:"data"`
	Error    *string         `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, into any) testEnvelope {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q (%s)", ct, w.Body.String())
	}
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if into != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, into); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return env
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func recipeID(t *testing.T, s *store.Store, name string) string {
	t.Helper()
	found, err := s.LookupRecipes(context.Background(), store.Params{"name": name})
	if err != nil || len(found) != 1 {
		t.Fatalf("lookup %s: %v (%d rows)", name, err, len(found))
	}
	return found[0].ID
}

func TestHandlersRequireStore(t *testing.T) {
	original := storage
	storage = nil
	t.Cleanup(func() { storage = original })

	w := httptest.NewRecorder()
	ListRecipes(w, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a store, got %d", w.Code)
	}
	env := decodeEnvelope(t, w, nil)
	if env.Accepted || env.Error == nil {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestListRecipesBySubstring(t *testing.T) {
	withTestStore(t)

	w := httptest.NewRecorder()
	ListRecipes(w, httptest.NewRequest(http.MethodGet, "/recipes?name=ji", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var recipes []models.Recipe
	env := decodeEnvelope(t, w, &recipes)
	if !env.Accepted || env.Error != nil {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if len(recipes) != 1 || recipes[0].Name != "Fajitas" {
		t.Fatalf("expected Fajitas, got %+v", recipes)
	}

	w = httptest.NewRecorder()
	ListRecipes(w, httptest.NewRequest(http.MethodGet, "/recipes?calories=10", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown parameter, got %d", w.Code)
	}
}

func TestCreateRecipeFromForm(t *testing.T) {
	withTestStore(t)

	w := httptest.NewRecorder()
	CreateRecipe(w, formRequest(http.MethodPost, "/recipes/new", url.Values{"name": {"Tamales"}, "author": {"abuela"}}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Recipe
	decodeEnvelope(t, w, &created)
	if created.SimpleName != "tamales" || created.Author != "abuela" {
		t.Fatalf("unexpected recipe %+v", created)
	}

	w = httptest.NewRecorder()
	CreateRecipe(w, jsonRequest(t, http.MethodPost, "/recipes/new", map[string]any{"name": "TAMALES"}))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", w.Code)
	}
	var existing models.Recipe
	env := decodeEnvelope(t, w, &existing)
	if env.Accepted || existing.ID != created.ID {
		t.Fatalf("expected conflicting recipe in data, got %+v / %+v", env, existing)
	}

	w = httptest.NewRecorder()
	CreateRecipe(w, jsonRequest(t, http.MethodPost, "/recipes/new", map[string]any{}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty create, got %d", w.Code)
	}
	env = decodeEnvelope(t, w, nil)
	if env.Error == nil || *env.Error != "expected parameters" {
		t.Fatalf("unexpected error message %+v", env.Error)
	}
}

func TestShowRecipeAndCard(t *testing.T) {
	s := withTestStore(t)
	id := recipeID(t, s, "guacamole")

	req := httptest.NewRequest(http.MethodGet, "/recipes/"+id, nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	ShowRecipe(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var detail models.RecipeDetail
	decodeEnvelope(t, w, &detail)
	if detail.Name != "Guacamole" || len(detail.Dependencies) != 1 || !detail.Classification.Vegan() {
		t.Fatalf("unexpected detail %+v", detail)
	}

	req = httptest.NewRequest(http.MethodGet, "/recipes/"+id+"/card", nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	RecipeCard(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Pico de Gallo") {
		t.Fatalf("unexpected card %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/recipes/missing/card", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	RecipeCard(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 card, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/recipes/missing", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	ShowRecipe(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAddDependencyRejectsCycle(t *testing.T) {
	s := withTestStore(t)
	fajitas := recipeID(t, s, "fajitas")
	guacamole := recipeID(t, s, "guacamole")

	req := formRequest(http.MethodPost, "/recipes/"+guacamole+"/dependencies/add", url.Values{"required": {fajitas}})
	req.SetPathValue("id", guacamole)
	w := httptest.NewRecorder()
	AddDependency(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for cycle, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/recipes/"+guacamole+"/dependencies", nil)
	req.SetPathValue("id", guacamole)
	w = httptest.NewRecorder()
	RecipeDependencies(w, req)
	var deps []models.DependencyEntry
	decodeEnvelope(t, w, &deps)
	if len(deps) != 1 || deps[0].Recipe.Name != "Pico de Gallo" {
		t.Fatalf("unexpected dependencies %+v", deps)
	}
}

func TestRequirementRoutes(t *testing.T) {
	s := withTestStore(t)
	horchata := recipeID(t, s, "horchata")
	ingredient, err := s.CreateIngredient(context.Background(), store.Params{"name": "Vanilla"})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	req := formRequest(http.MethodPost, "/recipes/"+horchata+"/requirements/add", url.Values{"ingredient": {ingredient.ID}, "quantity": {"1 tsp"}})
	req.SetPathValue("id", horchata)
	w := httptest.NewRecorder()
	AddRequirement(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	req = jsonRequest(t, http.MethodPut, "/recipes/"+horchata+"/requirements/"+ingredient.ID, map[string]any{"optional": true})
	req.SetPathValue("id", horchata)
	req.SetPathValue("ingredient", ingredient.ID)
	w = httptest.NewRecorder()
	EditRequirement(w, req)
	var edited models.Requirement
	decodeEnvelope(t, w, &edited)
	if !edited.Optional || edited.Quantity != "1 tsp" {
		t.Fatalf("unexpected requirement %+v", edited)
	}

	req = httptest.NewRequest(http.MethodDelete, "/ingredients/"+ingredient.ID, nil)
	req.SetPathValue("id", ingredient.ID)
	w = httptest.NewRecorder()
	DeleteIngredient(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while in use, got %d", w.Code)
	}
	var usage map[string]int
	decodeEnvelope(t, w, &usage)
	if usage["use_count"] != 1 {
		t.Fatalf("expected use_count 1, got %v", usage)
	}

	req = httptest.NewRequest(http.MethodDelete, "/ingredients/"+ingredient.ID+"?cascade=true", nil)
	req.SetPathValue("id", ingredient.ID)
	w = httptest.NewRecorder()
	DeleteIngredient(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for cascade delete, got %d", w.Code)
	}
}

func TestMergeIngredientRoute(t *testing.T) {
	s := withTestStore(t)
	ctx := context.Background()
	serrano, err := s.LookupIngredients(ctx, store.Params{"name": "serrano"})
	if err != nil || len(serrano) != 1 {
		t.Fatalf("lookup serrano: %v", err)
	}
	jalapeno, err := s.LookupIngredients(ctx, store.Params{"name": "jalapeno"})
	if err != nil || len(jalapeno) != 1 {
		t.Fatalf("lookup jalapeno: %v", err)
	}

	req := formRequest(http.MethodPost, "/ingredients/"+jalapeno[0].ID+"/merge", url.Values{"id": {serrano[0].ID}})
	req.SetPathValue("id", jalapeno[0].ID)
	w := httptest.NewRecorder()
	MergeIngredient(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var merged models.IngredientDetail
	decodeEnvelope(t, w, &merged)
	if len(merged.UsedIn) != 2 {
		t.Fatalf("expected jalapeño used in two recipes, got %+v", merged.UsedIn)
	}

	req = formRequest(http.MethodPost, "/ingredients/"+jalapeno[0].ID+"/merge", url.Values{})
	req.SetPathValue("id", jalapeno[0].ID)
	w = httptest.NewRecorder()
	MergeIngredient(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without source id, got %d", w.Code)
	}
}

func TestTagAndLabelRoutes(t *testing.T) {
	s := withTestStore(t)
	horchata := recipeID(t, s, "horchata")

	req := formRequest(http.MethodPost, "/recipes/"+horchata+"/tags/add", url.Values{"name": {"Summer"}})
	req.SetPathValue("id", horchata)
	w := httptest.NewRecorder()
	AddTag(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var label models.LabelSummary
	decodeEnvelope(t, w, &label)

	req = httptest.NewRequest(http.MethodGet, "/labels/"+label.ID, nil)
	req.SetPathValue("id", label.ID)
	w = httptest.NewRecorder()
	ShowLabel(w, req)
	var detail models.LabelDetail
	decodeEnvelope(t, w, &detail)
	if len(detail.TaggedRecipes) != 1 || detail.TaggedRecipes[0].ID != horchata {
		t.Fatalf("unexpected label detail %+v", detail)
	}

	req = httptest.NewRequest(http.MethodDelete, "/labels/"+label.ID, nil)
	req.SetPathValue("id", label.ID)
	w = httptest.NewRecorder()
	DeleteLabel(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for tagged label, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/recipes/"+horchata+"/tags/"+label.ID, nil)
	req.SetPathValue("id", horchata)
	req.SetPathValue("label", label.ID)
	w = httptest.NewRecorder()
	DeleteTag(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	ListLabels(w, httptest.NewRequest(http.MethodGet, "/labels?name=summer", nil))
	var labels []models.Label
	decodeEnvelope(t, w, &labels)
	if len(labels) != 1 {
		t.Fatalf("expected the label to survive untagging, got %+v", labels)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind store.Kind
		want int
	}{
		{store.NotFound, http.StatusNotFound},
		{store.AlreadyExists, http.StatusConflict},
		{store.InUse, http.StatusConflict},
		{store.CycleDetected, http.StatusConflict},
		{store.InvalidQuery, http.StatusBadRequest},
		{store.InvalidValue, http.StatusBadRequest},
		{store.BackendFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.want {
			t.Fatalf("statusFor(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
