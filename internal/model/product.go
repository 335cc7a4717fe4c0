// Package model defines domain entities for the application.
package model

import "time"

// Product represents an inventory record owned by a single user.
// Price is a decimal string end to end; it is stored in a NUMERIC column and
// never passes through a float.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category"`
	Company   string    `json:"company"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductPatch describes a partial update. Nil fields are left untouched.
// The owner is deliberately absent: ownership is assigned at creation and
// never reassigned.
type ProductPatch struct {
	Name     *string
	Price    *string
	Quantity *int
	Category *string
	Company  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Quantity == nil &&
		p.Category == nil && p.Company == nil
}

// ProductRef is a lightweight reference used by the profile view's
// recent-products list.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
