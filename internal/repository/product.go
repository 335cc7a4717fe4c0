package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stockroom/stockroom/internal/model"
)

// ErrProductNotFound is returned when no product matches the identifier.
var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, name, price::text, quantity, category, company, user_id, created_at`

// CreateProduct inserts a new product. The owner is already bound on the
// model by the caller and is immutable from this point on.
func (r *Repository) CreateProduct(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, price, quantity, category, company, user_id, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Quantity,
		product.Category,
		product.Company,
		product.UserID,
		product.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetProductByID retrieves a product by its ID.
func (r *Repository) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	return product, nil
}

// ListProducts retrieves every product regardless of owner.
func (r *Repository) ListProducts(ctx context.Context) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`
	return r.queryProducts(ctx, query)
}

// ListProductsByOwner retrieves every product owned by the given user.
func (r *Repository) ListProductsByOwner(ctx context.Context, ownerID string) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 ORDER BY created_at, id`
	return r.queryProducts(ctx, query, ownerID)
}

// SearchProducts returns products whose name, category or company contains
// the key as a case-insensitive substring. Store iteration order, no ranking.
func (r *Repository) SearchProducts(ctx context.Context, key string) ([]*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR category ILIKE $1 OR company ILIKE $1
		ORDER BY created_at, id
	`
	return r.queryProducts(ctx, query, substringPattern(key))
}

// SearchProductsByOwner is SearchProducts scoped to a single owner.
func (r *Repository) SearchProductsByOwner(ctx context.Context, key, ownerID string) ([]*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $2
		  AND (name ILIKE $1 OR category ILIKE $1 OR company ILIKE $1)
		ORDER BY created_at, id
	`
	return r.queryProducts(ctx, query, substringPattern(key), ownerID)
}

// UpdateProduct applies a partial update and reports the number of rows
// modified. Unknown IDs and empty patches both report zero, not an error.
func (r *Repository) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}

	sets := make([]string, 0, 5)
	args := []any{id}
	argIndex := 2

	addSet := func(column, cast string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, argIndex, cast))
		args = append(args, value)
		argIndex++
	}

	if patch.Name != nil {
		addSet("name", "", *patch.Name)
	}
	if patch.Price != nil {
		addSet("price", "::numeric", *patch.Price)
	}
	if patch.Quantity != nil {
		addSet("quantity", "", *patch.Quantity)
	}
	if patch.Category != nil {
		addSet("category", "", *patch.Category)
	}
	if patch.Company != nil {
		addSet("company", "", *patch.Company)
	}

	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = $1"

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update product: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteProduct removes a product and reports the number of rows deleted.
// Deleting an unknown ID reports zero; repeated deletes are harmless.
func (r *Repository) DeleteProduct(ctx context.Context, id string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountProductsByOwner counts the products owned by the given user.
func (r *Repository) CountProductsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE user_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// RecentProductsByOwner returns the owner's most recently created products,
// newest first, as lightweight references for the profile view.
func (r *Repository) RecentProductsByOwner(ctx context.Context, ownerID string, limit int) ([]model.ProductRef, error) {
	query := `
		SELECT id, name
		FROM products
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent products: %w", err)
	}
	defer rows.Close()

	var refs []model.ProductRef
	for rows.Next() {
		var ref model.ProductRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan product ref: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent products: %w", err)
	}

	return refs, nil
}

// queryProducts runs a query returning full product rows.
func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProductFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// scanProduct scans a single row into a Product model.
func scanProduct(row pgx.Row) (*model.Product, error) {
	var product model.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Quantity,
		&product.Category,
		&product.Company,
		&product.UserID,
		&product.CreatedAt,
	)
	return &product, err
}

// scanProductFromRows scans a row from pgx.Rows into a Product model.
func scanProductFromRows(rows pgx.Rows) (*model.Product, error) {
	var product model.Product
	err := rows.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Quantity,
		&product.Category,
		&product.Company,
		&product.UserID,
		&product.CreatedAt,
	)
	return &product, err
}

// substringPattern wraps a search key into an ILIKE pattern, escaping the
// wildcard characters so the key matches literally.
func substringPattern(key string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(key)
	return "%" + escaped + "%"
}
