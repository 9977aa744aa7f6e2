package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agrimarket/recommendation-engine/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GET /recommendations
//
// Every query parameter is optional; they map onto the recommendation
// context: user_id, product_id, q, category, min_price, max_price, viewed,
// purchased (comma-separated id lists), segment, limit.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rc, ok := contextFromQuery(w, r)
	if !ok {
		return
	}
	result := h.service.GetRecommendations(r.Context(), rc)
	writeJSON(w, http.StatusOK, result)
}

// GET /products/{productID}/recommendations
//
// Anchors the context on the product being viewed; remaining parameters
// behave as on /recommendations.
func (h *Handler) GetProductRecommendations(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid product_id parameter")
		return
	}

	rc, ok := contextFromQuery(w, r)
	if !ok {
		return
	}
	rc.CurrentProductID = productID

	result := h.service.GetRecommendations(r.Context(), rc)
	writeJSON(w, http.StatusOK, result)
}

// contextFromQuery builds a RecommendationContext from query parameters.
// On a malformed parameter it writes a 400 and returns ok=false.
func contextFromQuery(w http.ResponseWriter, r *http.Request) (domain.RecommendationContext, bool) {
	q := r.URL.Query()
	rc := domain.RecommendationContext{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Segment:  q.Get("segment"),
	}

	var ok bool
	if rc.UserID, ok = parseOptionalID(w, q.Get("user_id"), "user_id"); !ok {
		return rc, false
	}
	if rc.CurrentProductID, ok = parseOptionalID(w, q.Get("product_id"), "product_id"); !ok {
		return rc, false
	}
	if rc.MinPrice, ok = parseOptionalPrice(w, q.Get("min_price"), "min_price"); !ok {
		return rc, false
	}
	if rc.MaxPrice, ok = parseOptionalPrice(w, q.Get("max_price"), "max_price"); !ok {
		return rc, false
	}
	if rc.ViewedProductIDs, ok = parseIDList(w, q.Get("viewed"), "viewed"); !ok {
		return rc, false
	}
	if rc.PurchasedProductIDs, ok = parseIDList(w, q.Get("purchased"), "purchased"); !ok {
		return rc, false
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 20 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return rc, false
		}
		rc.Limit = parsed
	}
	return rc, true
}

func parseOptionalID(w http.ResponseWriter, raw, name string) (int64, bool) {
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

func parseOptionalPrice(w http.ResponseWriter, raw, name string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+name+" parameter")
		return 0, false
	}
	return price, true
}

func parseIDList(w http.ResponseWriter, raw, name string) ([]int64, bool) {
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+name+" parameter")
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
