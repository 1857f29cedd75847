package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/service"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httputil"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ImageRequest is one uploaded image reference.
type ImageRequest struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id" validate:"omitempty,max=200"`
}

// ProductRequest is the JSON body for creating and updating a product.
// Absent fields are left unchanged on update.
type ProductRequest struct {
	Title       *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Price       *float64       `json:"price" validate:"omitempty,gte=0"`
	Category    *string        `json:"category" validate:"omitempty,mongodb"`
	Subs        []string       `json:"subs" validate:"omitempty,dive,mongodb"`
	Brand       *string        `json:"brand" validate:"omitempty,max=100"`
	Color       *string        `json:"color" validate:"omitempty,max=50"`
	Shipping    *bool          `json:"shipping"`
	Quantity    *int           `json:"quantity" validate:"omitempty,gte=0"`
	Sold        *int           `json:"sold" validate:"omitempty,gte=0"`
	Images      []ImageRequest `json:"images" validate:"omitempty,dive"`
}

func (req *ProductRequest) toInput() *service.ProductInput {
	in := &service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.Category,
		SubIDs:      req.Subs,
		Brand:       req.Brand,
		Color:       req.Color,
		Shipping:    req.Shipping,
		Quantity:    req.Quantity,
		Sold:        req.Sold,
	}
	if req.Images != nil {
		in.Images = make([]domain.Image, len(req.Images))
		for i, img := range req.Images {
			in.Images[i] = domain.Image{URL: img.URL, PublicID: img.PublicID}
		}
	}
	return in
}

// RateRequest is the JSON body for rating a product.
type RateRequest struct {
	Star *int `json:"star" validate:"required"`
}

// ListRequest is the JSON body for the paginated product listing.
type ListRequest struct {
	Sort    string `json:"sort"`
	Order   string `json:"order"`
	Page    *int   `json:"page"`
	PerPage *int   `json:"per_page"`
}

// --- Handlers ---

// CreateProduct handles POST /api/product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	if req.Title == nil {
		httputil.WriteValidationError(w, r, validator.FieldErrors{"title": "is required"})
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.toInput(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// GetProduct handles GET /api/product/{idOrSlug}
// It accepts both an object id and a slug for lookup.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/product/{slug}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "slug"), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/product/{slug}
// The deleted product is echoed back.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// ListNewest handles GET /api/products/{count}
func (h *ProductHandler) ListNewest(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil {
		httputil.WriteValidationError(w, r, validator.FieldErrors{"count": "must be an integer"})
		return
	}

	products, err := h.service.ListNewest(r.Context(), &count)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, nonNil(products))
}

// ListProducts handles POST /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if err := validator.Decode(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	result, err := h.service.ListProducts(r.Context(), service.ListInput{
		Sort:    req.Sort,
		Order:   req.Order,
		Page:    req.Page,
		PerPage: req.PerPage,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// CountProducts handles GET /api/products/total
func (h *ProductHandler) CountProducts(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.CountProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, total)
}

// ListRelated handles GET /api/product/related/{productId}
func (h *ProductHandler) ListRelated(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListRelated(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, nonNil(products))
}

// RateProduct handles PUT /api/product/star/{productId}
// A user's earlier rating of the same product is replaced.
func (h *ProductHandler) RateProduct(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.RateProduct(r.Context(), chi.URLParam(r, "productId"),
		middleware.UserIDFromContext(r.Context()), *req.Star)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

func nonNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
