package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/service"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httputil"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/validator"
)

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  logger,
	}
}

// CategoryRequest is the JSON body for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=32"`
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	httputil.WriteData(w, http.StatusOK, categories)
}

// GetCategory handles GET /api/category/{slug}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, category)
}

// CreateCategory handles POST /api/category
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/category/{slug}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	category, err := h.service.RenameCategory(r.Context(), chi.URLParam(r, "slug"), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/category/{slug}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, category)
}
