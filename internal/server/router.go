package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"knife/internal/handlers"
	applog "knife/internal/log"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

var routes = []route{
	{"GET /healthz", handlers.Health},

	{"GET /ingredients", handlers.ListIngredients},
	{"POST /ingredients/new", handlers.CreateIngredient},
	{"GET /ingredients/{id}", handlers.ShowIngredient},
	{"PUT /ingredients/{id}", handlers.EditIngredient},
	{"DELETE /ingredients/{id}", handlers.DeleteIngredient},
	{"POST /ingredients/{id}/merge", handlers.MergeIngredient},

	{"GET /recipes", handlers.ListRecipes},
	{"POST /recipes/new", handlers.CreateRecipe},
	{"GET /recipes/{id}", handlers.ShowRecipe},
	{"PUT /recipes/{id}", handlers.EditRecipe},
	{"DELETE /recipes/{id}", handlers.DeleteRecipe},
	{"GET /recipes/{id}/card", handlers.RecipeCard},
	{"GET /recipes/{id}/classification", handlers.RecipeClassification},
	{"GET /recipes/{id}/requirements", handlers.RecipeRequirements},
	{"POST /recipes/{id}/requirements/add", handlers.AddRequirement},
	{"GET /recipes/{id}/requirements/{ingredient}", handlers.ShowRequirement},
	{"PUT /recipes/{id}/requirements/{ingredient}", handlers.EditRequirement},
	{"DELETE /recipes/{id}/requirements/{ingredient}", handlers.DeleteRequirement},
	{"GET /recipes/{id}/dependencies", handlers.RecipeDependencies},
	{"POST /recipes/{id}/dependencies/add", handlers.AddDependency},
	{"PUT /recipes/{id}/dependencies/{required}", handlers.EditDependency},
	{"DELETE /recipes/{id}/dependencies/{required}", handlers.DeleteDependency},
	{"GET /recipes/{id}/tags", handlers.RecipeTags},
	{"POST /recipes/{id}/tags/add", handlers.AddTag},
	{"DELETE /recipes/{id}/tags/{label}", handlers.DeleteTag},

	{"GET /labels", handlers.ListLabels},
	{"POST /labels/new", handlers.CreateLabel},
	{"GET /labels/{id}", handlers.ShowLabel},
	{"PUT /labels/{id}", handlers.EditLabel},
	{"DELETE /labels/{id}", handlers.DeleteLabel},
}

func newRouter(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, rt.handler)
		applog.Debug(context.Background(), "route registered", "pattern", rt.pattern)
	}
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		applog.Debug(context.Background(), "route registered", "pattern", "GET /metrics")
	}
	return mux
}
