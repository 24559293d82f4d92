package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/fairyhunter13/product-catalog-service/internal/auth"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	"github.com/fairyhunter13/product-catalog-service/internal/hub"
	httpopenapi "github.com/fairyhunter13/product-catalog-service/internal/http/openapi"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/store"
	"github.com/fairyhunter13/product-catalog-service/internal/vault"
)

// App carries the wired components behind the HTTP surface.
type App struct {
	Cfg     config.Config
	Store   *store.Store
	Vault   *vault.Vault
	Hub     *hub.Hub
	Auth    *auth.Service
	started time.Time
}

// NewApp builds the App with its injected dependencies.
func NewApp(cfg config.Config, st *store.Store, v *vault.Vault, h *hub.Hub, au *auth.Service) *App {
	return &App{Cfg: cfg, Store: st, Vault: v, Hub: h, Auth: au, started: time.Now()}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (a *App) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	tok, err := a.Auth.Login(username, password)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_credentials", "incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.Store.List()
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// productForm holds the validated multipart fields shared by create and
// update.
type productForm struct {
	name       string
	pricePerKg float64
	ext        string
	image      []byte
}

// parseProductForm validates the multipart body. imageRequired controls
// whether a missing image file is an error (create) or means keep the
// current one (update).
func (a *App) parseProductForm(r *http.Request, imageRequired bool) (productForm, error) {
	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		return productForm{}, fmt.Errorf("invalid multipart form: %w", err)
	}
	f := productForm{name: r.FormValue("name")}
	if f.name == "" {
		return productForm{}, errors.New("name is required")
	}
	priceStr := r.FormValue("price_per_kg")
	if priceStr == "" {
		return productForm{}, errors.New("price_per_kg is required")
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return productForm{}, errors.New("price_per_kg must be a number")
	}
	if price <= 0 {
		return productForm{}, errors.New("price_per_kg must be greater than zero")
	}
	f.pricePerKg = price

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return productForm{}, fmt.Errorf("read image: %w", err)
		}
		f.image = data
		f.ext = filepath.Ext(header.Filename)
	case errors.Is(err, http.ErrMissingFile):
		if imageRequired {
			return productForm{}, errors.New("image file is required")
		}
	default:
		return productForm{}, fmt.Errorf("read image: %w", err)
	}
	return f, nil
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	f, err := a.parseProductForm(r, true)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	p, err := a.Store.Create(f.name, f.pricePerKg, f.ext, f.image)
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	obs.Logger.Info().
		Str("product_id", p.ID).
		Str("request_id", RequestIDFromContext(r.Context())).
		Msg("product created")
	writeJSON(w, http.StatusOK, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := a.parseProductForm(r, false)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	p, err := a.Store.Update(id, f.name, f.pricePerKg, f.ext, f.image)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "Product not found")
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "Product not found")
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Deleted"})
}

// updatesHandler streams the full product list as a server-sent event after
// every mutation. The subscription is released as soon as the client
// disconnects.
func (a *App) updatesHandler(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "streaming_unsupported", "")
		return
	}
	ch := a.Hub.Subscribe()
	defer a.Hub.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-ch:
			if !open {
				return
			}
			b, err := json.Marshal(snapshot)
			if err != nil {
				obs.Logger.Error().Err(err).Msg("encode snapshot")
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
				return
			}
			fl.Flush()
		}
	}
}

func (a *App) imageHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := a.Vault.Open(name)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "Image not found")
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	defer rc.Close()
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	_, _ = io.Copy(w, rc)
}

type statusResponse struct {
	StatusCode    int    `json:"status_code"`
	Status        string `json:"status"`
	ProductsCount int    `json:"products_count"`
}

// statusHandler never fails the request: storage errors are reported inside
// a 200 body so the endpoint stays reachable for the admin client.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	count, err := a.Store.Count()
	if err != nil {
		writeJSON(w, http.StatusOK, statusResponse{
			StatusCode: http.StatusInternalServerError,
			Status:     "Server Error: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		StatusCode:    http.StatusOK,
		Status:        "OK",
		ProductsCount: count,
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	published, dropped, subscribers := a.Hub.Metrics()
	count, _ := a.Store.Count()
	writeJSON(w, http.StatusOK, map[string]any{
		"products_count":      count,
		"mutations":           a.Store.Mutations(),
		"snapshots_published": published,
		"snapshots_dropped":   dropped,
		"subscribers":         subscribers,
		"uptime_sec":          time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
