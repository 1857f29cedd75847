package http

import (
	"log/slog"
	"net/http"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/service"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httputil"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/pagination"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/validator"
)

// SearchHandler handles HTTP requests for the filter endpoint.
type SearchHandler struct {
	service *service.SearchService
	policy  pagination.Policy
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler. policy bounds the
// optional limit field.
func NewSearchHandler(svc *service.SearchService, policy pagination.Policy, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		policy:  policy,
		logger:  logger,
	}
}

// Filter handles POST /api/search/filters
// The body carries exactly one of query, price, category, stars, shipping,
// color or brand, plus an optional limit.
func (h *SearchHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req domain.FilterRequest
	if err := validator.Decode(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	filter, err := req.Filter(h.policy)
	if err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	products, err := h.service.Search(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	httputil.WriteData(w, http.StatusOK, products)
}
