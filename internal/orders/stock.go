package orders

// Reserve takes qty units out of the in-memory stock count. The caller
// persists the new count with ProductStore.Save. On shortage nothing changes.
func (p *Product) Reserve(qty int) error {
	if qty < 1 {
		return &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if p.LeftInStock < qty {
		return &InsufficientStockError{
			ProductID: p.ID,
			Slug:      p.Slug,
			Requested: qty,
			Available: p.LeftInStock,
		}
	}
	p.LeftInStock -= qty
	return nil
}
