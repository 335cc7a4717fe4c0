package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stockroom/stockroom/internal/model"
	"github.com/stockroom/stockroom/internal/repository"
)

type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[string]*model.Product)}
}

func (s *fakeProductStore) CreateProduct(_ context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (s *fakeProductStore) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (s *fakeProductStore) ListProducts(_ context.Context) ([]*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(*model.Product) bool { return true }), nil
}

func (s *fakeProductStore) ListProductsByOwner(_ context.Context, ownerID string) ([]*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(p *model.Product) bool { return p.UserID == ownerID }), nil
}

func (s *fakeProductStore) SearchProducts(_ context.Context, key string) ([]*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(p *model.Product) bool { return matchesKey(p, key) }), nil
}

func (s *fakeProductStore) SearchProductsByOwner(_ context.Context, key, ownerID string) ([]*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(p *model.Product) bool {
		return p.UserID == ownerID && matchesKey(p, key)
	}), nil
}

func (s *fakeProductStore) UpdateProduct(_ context.Context, id string, patch model.ProductPatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.IsEmpty() {
		return 0, nil
	}
	product, ok := s.products[id]
	if !ok {
		return 0, nil
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Company != nil {
		product.Company = *patch.Company
	}
	return 1, nil
}

func (s *fakeProductStore) DeleteProduct(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return 0, nil
	}
	delete(s.products, id)
	return 1, nil
}

func (s *fakeProductStore) sorted(keep func(*model.Product) bool) []*model.Product {
	out := make([]*model.Product, 0)
	for _, p := range s.products {
		if keep(p) {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// matchesKey mirrors the case-insensitive substring match over name,
// category and company.
func matchesKey(p *model.Product, key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(strings.ToLower(p.Name), lower) ||
		strings.Contains(strings.ToLower(p.Category), lower) ||
		strings.Contains(strings.ToLower(p.Company), lower)
}

func seedProducts(store *fakeProductStore) {
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []*model.Product{
		{ID: "p1", Name: "Mechanical Keyboard", Category: "Electronics", Company: "Keychron", Price: "89.99", Quantity: 10, UserID: "alice"},
		{ID: "p2", Name: "Office Chair", Category: "Furniture", Company: "Herman Miller", Price: "450.00", Quantity: 2, UserID: "alice"},
		{ID: "p3", Name: "USB Cable", Category: "electronics", Company: "Anker", Price: "9.99", Quantity: 50, UserID: "bob"},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		store.products[p.ID] = p
	}
}

func TestProductService_Create(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	cache := newFakeProfileCache()
	svc := NewProductService(store, OpenPolicy{}, cache)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name:     "Monitor",
		Price:    "199.99",
		Quantity: 3,
		Category: "Electronics",
		Company:  "Dell",
	}, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if product.ID == "" {
		t.Error("created product should have an ID")
	}
	if product.UserID != "alice" {
		t.Errorf("owner = %q, want %q", product.UserID, "alice")
	}
	if product.Price != "199.99" {
		t.Errorf("price = %q, want %q", product.Price, "199.99")
	}

	// The owner's cached profile stats are dropped on write
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "alice" {
		t.Errorf("invalidated = %v, want [alice]", cache.invalidated)
	}
}

func TestProductService_Create_NoValidation(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	svc := NewProductService(store, OpenPolicy{}, nil)

	// Empty fields and negative quantities are stored as given
	product, err := svc.Create(context.Background(), CreateProductInput{
		Name:     "",
		Price:    "-1.00",
		Quantity: -5,
	}, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if product.Name != "" || product.Quantity != -5 {
		t.Error("create should not normalize field values")
	}
}

func TestProductService_Get_OpenPolicy(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OpenPolicy{}, nil)

	// Any authenticated identity reads any record, owner or not
	product, err := svc.Get(context.Background(), "p3", "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if product.UserID != "bob" {
		t.Errorf("owner = %q, want %q", product.UserID, "bob")
	}

	_, err = svc.Get(context.Background(), "missing", "alice")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Get error = %v, want ErrProductNotFound", err)
	}
}

func TestProductService_Get_OwnerPolicy(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OwnerPolicy{}, nil)

	// Own record is visible
	if _, err := svc.Get(context.Background(), "p1", "alice"); err != nil {
		t.Fatalf("Get own record failed: %v", err)
	}

	// Someone else's record reads as not found, not forbidden
	_, err := svc.Get(context.Background(), "p3", "alice")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Get foreign record error = %v, want ErrProductNotFound", err)
	}
}

func TestProductService_List(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)

	open := NewProductService(store, OpenPolicy{}, nil)
	owned := NewProductService(store, OwnerPolicy{}, nil)

	all, err := open.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("open listing returned %d products, want 3", len(all))
	}

	mine, err := owned.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("owner-scoped listing returned %d products, want 2", len(mine))
	}
	for _, p := range mine {
		if p.UserID != "alice" {
			t.Errorf("owner-scoped listing leaked record %q owned by %q", p.ID, p.UserID)
		}
	}
}

func TestProductService_Update(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	cache := newFakeProfileCache()
	svc := NewProductService(store, OpenPolicy{}, cache)

	name := "Ergonomic Keyboard"
	matched, modified, err := svc.Update(context.Background(), "p1", model.ProductPatch{Name: &name}, "bob")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if matched != 1 || modified != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", matched, modified)
	}
	if store.products["p1"].Name != name {
		t.Errorf("stored name = %q, want %q", store.products["p1"].Name, name)
	}
	// Untouched fields survive a partial update
	if store.products["p1"].Price != "89.99" {
		t.Errorf("price changed by a name-only patch: %q", store.products["p1"].Price)
	}

	if len(cache.invalidated) == 0 {
		t.Error("update should invalidate the caller's cached stats")
	}
}

func TestProductService_Update_UnknownID(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	svc := NewProductService(store, OpenPolicy{}, nil)

	name := "anything"
	matched, modified, err := svc.Update(context.Background(), "missing", model.ProductPatch{Name: &name}, "alice")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if matched != 0 || modified != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", matched, modified)
	}
}

func TestProductService_Update_EmptyPatch(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OpenPolicy{}, nil)

	matched, modified, err := svc.Update(context.Background(), "p1", model.ProductPatch{}, "alice")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if matched != 0 || modified != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", matched, modified)
	}
}

func TestProductService_Update_OwnerPolicy(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OwnerPolicy{}, nil)

	name := "Braided USB Cable"

	// Foreign record: indistinguishable from missing
	_, _, err := svc.Update(context.Background(), "p3", model.ProductPatch{Name: &name}, "alice")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Update foreign record error = %v, want ErrProductNotFound", err)
	}
	if store.products["p3"].Name != "USB Cable" {
		t.Error("foreign record must not be modified")
	}

	// Unknown ID: zero counts, no error
	matched, modified, err := svc.Update(context.Background(), "missing", model.ProductPatch{Name: &name}, "alice")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if matched != 0 || modified != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", matched, modified)
	}

	// Own record updates normally
	matched, modified, err = svc.Update(context.Background(), "p1", model.ProductPatch{Name: &name}, "alice")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if matched != 1 || modified != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", matched, modified)
	}
}

func TestProductService_Delete(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	cache := newFakeProfileCache()
	svc := NewProductService(store, OpenPolicy{}, cache)

	deleted, err := svc.Delete(context.Background(), "p1", "alice")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	// Second delete of the same ID is harmless
	deleted, err = svc.Delete(context.Background(), "p1", "alice")
	if err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("repeat deleted = %d, want 0", deleted)
	}

	if len(cache.invalidated) != 2 {
		t.Errorf("invalidations = %d, want 2", len(cache.invalidated))
	}
}

func TestProductService_Delete_OwnerPolicy(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OwnerPolicy{}, nil)

	// Foreign record reads as not found
	_, err := svc.Delete(context.Background(), "p3", "alice")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Delete foreign record error = %v, want ErrProductNotFound", err)
	}
	if _, ok := store.products["p3"]; !ok {
		t.Error("foreign record must not be deleted")
	}

	// Unknown ID stays idempotent
	deleted, err := svc.Delete(context.Background(), "missing", "alice")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestProductService_Search(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OpenPolicy{}, nil)

	tests := []struct {
		name    string
		key     string
		wantIDs []string
	}{
		{"case-insensitive category", "ELEC", []string{"p1", "p3"}},
		{"name substring", "chair", []string{"p2"}},
		{"company substring", "anker", []string{"p3"}},
		{"no match", "zzz", nil},
		{"empty key lists everything", "", []string{"p1", "p2", "p3"}},
		{"whitespace key lists everything", "   ", []string{"p1", "p2", "p3"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results, err := svc.Search(context.Background(), tt.key, "alice")
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) returned %d products, want %d", tt.key, len(results), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if results[i].ID != want {
					t.Errorf("results[%d] = %q, want %q", i, results[i].ID, want)
				}
			}
		})
	}
}

func TestProductService_Search_OwnerPolicy(t *testing.T) {
	t.Parallel()

	store := newFakeProductStore()
	seedProducts(store)
	svc := NewProductService(store, OwnerPolicy{}, nil)

	// "elec" matches p1 (alice) and p3 (bob); only alice's shows
	results, err := svc.Search(context.Background(), "elec", "alice")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "p1" {
		t.Errorf("owner-scoped search returned %v, want [p1]", ids(results))
	}
}

func TestPolicyFromConfig(t *testing.T) {
	t.Parallel()

	if _, ok := PolicyFromConfig(false).(OpenPolicy); !ok {
		t.Error("unenforced config should yield OpenPolicy")
	}
	if _, ok := PolicyFromConfig(true).(OwnerPolicy); !ok {
		t.Error("enforced config should yield OwnerPolicy")
	}
}

func ids(products []*model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
