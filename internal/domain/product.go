package domain

// Product is the slice of the catalog the settlement path reads and mutates.
type Product struct {
	ID             string
	Name           string
	Stock          int
	PriceCents     int64
	SalePriceCents *int64
	Active         bool
}

// EffectivePriceCents is the sale price when one is set.
func (p Product) EffectivePriceCents() int64 {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}
