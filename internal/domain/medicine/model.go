package medicine

// Medicine is one catalog entry as the records service returns it. The
// catalog is read-mostly from the dashboard's perspective; prices feed the
// bill composer's total.
type Medicine struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PricePerUnit float64 `json:"price_per_unit"`
	Stock        int     `json:"stock"`
}

// CreateRequest is the payload for adding a catalog entry.
type CreateRequest struct {
	Name         string  `json:"name"`
	PricePerUnit float64 `json:"price_per_unit"`
	Stock        int     `json:"stock"`
}

// UpdateRequest is a sparse patch: absent fields are left unchanged upstream.
type UpdateRequest struct {
	Name         *string  `json:"name,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
	Stock        *int     `json:"stock,omitempty"`
}
