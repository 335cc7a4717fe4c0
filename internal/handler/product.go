package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/stockroom/internal/auth"
	"github.com/stockroom/stockroom/internal/handler/dto"
	"github.com/stockroom/stockroom/internal/service"
)

// noProductsMessage is the bare-string body the legacy client expects when a
// listing or search comes back empty.
const noProductsMessage = "No products found"

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	svc    *service.ProductService
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /add-product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	product, err := h.svc.Create(r.Context(), service.CreateProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
		Category: req.Category,
		Company:  req.Company,
	}, userID)
	if err != nil {
		h.logger.Error("product create failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("product_created",
		"product_id", product.ID,
		"owner_id", userID,
	)

	writeJSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// List handles GET /.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	products, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("product list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if len(products) == 0 {
		writeText(w, http.StatusOK, noProductsMessage)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(products))
}

// Get handles GET /product/{id}.
// An unknown or inaccessible ID answers 200 with a JSON null body, matching
// the contract the client was built against.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	product, err := h.svc.Get(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		h.logger.Error("product get failed", "error", err, "product_id", id)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// Update handles PUT /product/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	matched, modified, err := h.svc.Update(r.Context(), id, req.Patch(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			writeJSON(w, http.StatusOK, dto.UpdateResultResponse{})
			return
		}
		h.logger.Error("product update failed", "error", err, "product_id", id)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("product_updated", "product_id", id, "modified", modified)

	writeJSON(w, http.StatusOK, dto.UpdateResultResponse{
		MatchedCount:  matched,
		ModifiedCount: modified,
	})
}

// Delete handles DELETE /product/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	deleted, err := h.svc.Delete(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			writeJSON(w, http.StatusOK, dto.DeleteResultResponse{})
			return
		}
		h.logger.Error("product delete failed", "error", err, "product_id", id)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("product_deleted", "product_id", id, "deleted", deleted)

	writeJSON(w, http.StatusOK, dto.DeleteResultResponse{DeletedCount: deleted})
}

// Search handles GET /search/{key}.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	key := chi.URLParam(r, "key")

	products, err := h.svc.Search(r.Context(), key, userID)
	if err != nil {
		h.logger.Error("product search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if len(products) == 0 {
		writeText(w, http.StatusOK, noProductsMessage)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(products))
}
