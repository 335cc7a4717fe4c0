package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stockroom/stockroom/internal/model"
	"github.com/stockroom/stockroom/internal/repository"
)

// ErrProductNotFound is returned when no accessible product matches the ID.
var ErrProductNotFound = errors.New("product not found")

// ProductStore is the product-store surface the product service depends on.
// *repository.Repository satisfies it; tests substitute an in-memory fake.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
	ListProductsByOwner(ctx context.Context, ownerID string) ([]*model.Product, error)
	SearchProducts(ctx context.Context, key string) ([]*model.Product, error)
	SearchProductsByOwner(ctx context.Context, key, ownerID string) ([]*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (int64, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)
}

// ProductService handles product CRUD and search, gated by an
// OwnershipPolicy.
type ProductService struct {
	store    ProductStore
	policy   OwnershipPolicy
	profiles ProfileStatsCache
}

// NewProductService creates a ProductService. profiles may be nil to disable
// profile-statistics invalidation.
func NewProductService(store ProductStore, policy OwnershipPolicy, profiles ProfileStatsCache) *ProductService {
	if policy == nil {
		policy = OpenPolicy{}
	}
	return &ProductService{
		store:    store,
		policy:   policy,
		profiles: profiles,
	}
}

// CreateProductInput defines input for adding a product. No field-level
// validation happens here or in the store: empty names and negative numbers
// are stored as given.
type CreateProductInput struct {
	Name     string
	Price    string
	Quantity int
	Category string
	Company  string
}

// Create adds a product bound to the calling identity. The owner is assigned
// here, once, and never reassigned.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput, ownerID string) (*model.Product, error) {
	product := &model.Product{
		ID:        ulid.Make().String(),
		Name:      input.Name,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Category:  input.Category,
		Company:   input.Company,
		UserID:    ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidateStats(ctx, ownerID)

	return product, nil
}

// List returns the product catalog visible to the caller: everything under
// the open policy, the caller's own records under the owner policy.
func (s *ProductService) List(ctx context.Context, callerID string) ([]*model.Product, error) {
	if s.policy.ScopeToOwner() {
		return s.store.ListProductsByOwner(ctx, callerID)
	}
	return s.store.ListProducts(ctx)
}

// Get retrieves a single product by ID, subject to the ownership policy.
func (s *ProductService) Get(ctx context.Context, id, callerID string) (*model.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !s.policy.CanAccess(product, callerID) {
		return nil, ErrProductNotFound
	}

	return product, nil
}

// Update applies a partial update and reports matched and modified counts.
// Under the owner policy a record owned by someone else reads as not found.
func (s *ProductService) Update(ctx context.Context, id string, patch model.ProductPatch, callerID string) (matched, modified int64, err error) {
	if s.policy.ScopeToOwner() {
		product, err := s.store.GetProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return 0, 0, nil
			}
			return 0, 0, err
		}
		if !s.policy.CanAccess(product, callerID) {
			return 0, 0, ErrProductNotFound
		}
	}

	affected, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return 0, 0, fmt.Errorf("update product: %w", err)
	}

	s.invalidateStats(ctx, callerID)

	// A single-row UPDATE reports one count; a matched row that ends up
	// byte-identical still counts as modified here.
	return affected, affected, nil
}

// Delete removes a product and reports the number of records deleted.
// Deleting an unknown ID reports zero and no error, so repeated deletes of
// the same ID are harmless.
func (s *ProductService) Delete(ctx context.Context, id, callerID string) (int64, error) {
	if s.policy.ScopeToOwner() {
		product, err := s.store.GetProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return 0, nil
			}
			return 0, err
		}
		if !s.policy.CanAccess(product, callerID) {
			return 0, ErrProductNotFound
		}
	}

	deleted, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete product: %w", err)
	}

	s.invalidateStats(ctx, callerID)

	return deleted, nil
}

// Search returns products whose name, category or company contains the key
// as a case-insensitive substring. An empty or whitespace-only key returns
// the unfiltered listing, mirroring the client's clear-search behavior.
func (s *ProductService) Search(ctx context.Context, key, callerID string) ([]*model.Product, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.List(ctx, callerID)
	}

	if s.policy.ScopeToOwner() {
		return s.store.SearchProductsByOwner(ctx, trimmed, callerID)
	}
	return s.store.SearchProducts(ctx, trimmed)
}

// invalidateStats drops the caller's cached profile statistics after a
// write. Writes to records owned by someone else (possible under the open
// policy) age out of the cache by TTL instead.
func (s *ProductService) invalidateStats(ctx context.Context, ownerID string) {
	if s.profiles == nil {
		return
	}
	_ = s.profiles.InvalidateProfileStats(ctx, ownerID)
}
