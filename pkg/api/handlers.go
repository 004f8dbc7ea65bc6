package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.connectwisedev.com/catalog-service/models"
)

const maxBodyBytes = 1 << 20

type listResponse struct {
	Products []productResponse `json:"products"`
	Source   models.Origin     `json:"source"`
	Count    *int              `json:"count,omitempty"`
}

type productEnvelope struct {
	Product productResponse `json:"product"`
	Source  models.Origin   `json:"source,omitempty"`
	Message string          `json:"message,omitempty"`
}

type categoryResponse struct {
	Products []productResponse `json:"products"`
	Category string            `json:"category"`
	Count    int               `json:"count"`
}

type statsResponse struct {
	Service         string `json:"service"`
	TotalProducts   int64  `json:"total_products"`
	TotalStock      int64  `json:"total_stock"`
	TotalCategories int64  `json:"total_categories"`
	Timestamp       string `json:"timestamp"`
}

type healthResponse struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Timestamp string `json:"timestamp"`
}

type adjustStockRequest struct {
	Quantity *int64 `json:"quantity"`
}

func connected(up bool) string {
	if up {
		return "connected"
	}
	return "disconnected"
}

func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service": rt.serviceName,
		"version": Version,
		"endpoints": map[string]string{
			"health":               "/health",
			"metrics":              "/metrics",
			"products":             "/api/v1/products",
			"product_by_id":        "/api/v1/products/<id>",
			"product_stock":        "/api/v1/products/<id>/stock",
			"products_by_category": "/api/v1/products/category/<category>",
			"stats":                "/api/v1/stats",
		},
	})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	h := rt.service.Health(r.Context())
	resp := healthResponse{
		Service:   rt.serviceName,
		Status:    "healthy",
		Database:  connected(h.Database),
		Cache:     connected(h.Cache),
		Timestamp: now(),
	}
	status := http.StatusOK
	if !h.Healthy() {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	products, origin, err := rt.service.ListProducts(r.Context())
	if err != nil {
		rt.respondCatalogError(w, r, err)
		return
	}
	resp := listResponse{Products: toResponses(products), Source: origin}
	if origin == models.OriginDatabase {
		n := len(products)
		resp.Count = &n
	}
	respondJSON(w, http.StatusOK, resp)
}

func (rt *Router) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, origin, err := rt.service.GetProduct(r.Context(), id)
	if err != nil {
		rt.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productEnvelope{Product: toResponse(p), Source: origin})
}

func (rt *Router) createProduct(w http.ResponseWriter, r *http.Request) {
	var np models.NewProduct
	if !decodeBody(w, r, &np) {
		return
	}
	p, err := rt.service.CreateProduct(r.Context(), np)
	if err != nil {
		rt.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, productEnvelope{Product: toResponse(p), Message: "Product created successfully"})
}

func (rt *Router) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req adjustStockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	p, err := rt.service.AdjustStock(r.Context(), id, *req.Quantity)
	if err != nil {
		rt.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productEnvelope{Product: toResponse(p), Message: "Stock updated successfully"})
}

func (rt *Router) listByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := pathParam(r, "category")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category")
		return
	}
	products, err := rt.service.ListByCategory(r.Context(), category)
	if err != nil {
		rt.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryResponse{
		Products: toResponses(products),
		Category: category,
		Count:    len(products),
	})
}

// pathParam returns the decoded value of a URL parameter. chi matches against
// RawPath when the request carries one, leaving parameters percent-encoded.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	st, err := rt.service.Stats(r.Context())
	if err != nil {
		rt.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{
		Service:         rt.serviceName,
		TotalProducts:   st.TotalProducts,
		TotalStock:      st.TotalStock,
		TotalCategories: st.TotalCategories,
		Timestamp:       now(),
	})
}

// productID parses the {id} path segment; anything but a positive integer is a 400.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, io.EOF):
		respondError(w, http.StatusBadRequest, "request body is required")
	default:
		respondError(w, http.StatusBadRequest, "invalid JSON body")
	}
	return false
}
