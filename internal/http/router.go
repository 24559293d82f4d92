package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
// Reads are open; mutations sit behind RequireAuth.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithCORS, WithLogging)

	r.Post("/token", app.tokenHandler)
	r.Get("/products", app.listProductsHandler)
	r.Get("/products/updates", app.updatesHandler)
	r.Get("/products/images/{name}", app.imageHandler)
	r.Get("/product_images/{name}", app.imageHandler)
	r.Get("/status", app.statusHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(app.RequireAuth)
		pr.Post("/products", app.createProductHandler)
		pr.Put("/products/{id}", app.updateProductHandler)
		pr.Delete("/products/{id}", app.deleteProductHandler)
	})

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}
