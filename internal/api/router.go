package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/projects", app.CreateProjectHandler)
		r.Get("/projects/{projectID}", app.GetProjectHandler)

		r.Post("/floorplan/extract", app.ExtractHandler)

		r.Get("/objects/types", app.ListTypesHandler)
		r.Get("/objects/types/{objectType}/models", app.ListModelsHandler)
	})

	return r
}
