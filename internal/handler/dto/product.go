package dto

import (
	"time"

	"github.com/stockroom/stockroom/internal/model"
)

// CreateProductRequest represents the request body for adding a product.
// Price is a decimal string; it is stored as given.
type CreateProductRequest struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	Company  string `json:"company"`
}

// UpdateProductRequest represents a partial product update.
// Absent fields are left untouched. There is deliberately no owner field.
type UpdateProductRequest struct {
	Name     *string `json:"name,omitempty"`
	Price    *string `json:"price,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	Category *string `json:"category,omitempty"`
	Company  *string `json:"company,omitempty"`
}

// Patch converts the request to a model patch.
func (r *UpdateProductRequest) Patch() model.ProductPatch {
	return model.ProductPatch{
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
		Category: r.Category,
		Company:  r.Company,
	}
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category"`
	Company   string    `json:"company"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateResultResponse reports the outcome of a product update.
type UpdateResultResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResultResponse reports the outcome of a product deletion.
type DeleteResultResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ToProductResponse converts a Product model to ProductResponse DTO.
func ToProductResponse(product *model.Product) *ProductResponse {
	return &ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  product.Quantity,
		Category:  product.Category,
		Company:   product.Company,
		UserID:    product.UserID,
		CreatedAt: product.CreatedAt,
	}
}

// ToProductListResponse converts a slice of Product models.
func ToProductListResponse(products []*model.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, product := range products {
		responses[i] = *ToProductResponse(product)
	}
	return responses
}
