package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/models"
	"gitlab.connectwisedev.com/catalog-service/pkg/catalog"
)

// productResponse is the transport form of a product. Price leaves the
// decimal domain here and only here.
type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	Category    string  `json:"category"`
	CreatedAt   string  `json:"created_at"`
}

func toResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}

func toResponses(ps []models.Product) []productResponse {
	out := make([]productResponse, len(ps))
	for i, p := range ps {
		out[i] = toResponse(p)
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondCatalogError maps the catalog taxonomy onto status codes. Store
// failures were already logged with context by the service; the client only
// gets a generic message.
func (rt *Router) respondCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case catalog.IsValidation(err):
		respondError(w, http.StatusBadRequest, catalog.Message(err))
	case catalog.IsNotFound(err):
		respondError(w, http.StatusNotFound, catalog.Message(err))
	default:
		if !catalog.IsStore(err) {
			rt.logger.Error("unexpected error", zap.String("path", r.URL.Path), zap.Error(err))
		}
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func now() string {
	return models.FormatTimestamp(time.Now())
}
