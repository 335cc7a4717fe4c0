package model

// ProfileStats holds the owner-filtered product statistics shown on the
// profile view. Cached with a short TTL; see internal/cache.
type ProfileStats struct {
	TotalProducts  int64        `json:"total_products"`
	RecentProducts []ProductRef `json:"recent_products"`
}
