package service

import "github.com/stockroom/stockroom/internal/model"

// OwnershipPolicy decides which identities may act on which product records.
//
// The system this service was ported from recorded an owner on every product
// at creation but never consulted it on read, update, delete or search; only
// the profile view filtered by owner. OpenPolicy preserves that behavior and
// is the default. OwnerPolicy closes the gap with per-record checks. The
// choice is made once at startup via OWNERSHIP_ENFORCED.
type OwnershipPolicy interface {
	// CanAccess reports whether the caller may act on an existing record.
	CanAccess(product *model.Product, callerID string) bool
	// ScopeToOwner reports whether listing and search are restricted to the
	// caller's own records.
	ScopeToOwner() bool
}

// OpenPolicy grants every authenticated identity access to every record.
type OpenPolicy struct{}

func (OpenPolicy) CanAccess(*model.Product, string) bool { return true }
func (OpenPolicy) ScopeToOwner() bool                    { return false }

// OwnerPolicy restricts record access to the recorded owner.
type OwnerPolicy struct{}

func (OwnerPolicy) CanAccess(product *model.Product, callerID string) bool {
	return product.UserID == callerID
}

func (OwnerPolicy) ScopeToOwner() bool { return true }

// PolicyFromConfig maps the ownership-enforcement flag to a policy.
func PolicyFromConfig(enforced bool) OwnershipPolicy {
	if enforced {
		return OwnerPolicy{}
	}
	return OpenPolicy{}
}
