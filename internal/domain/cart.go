package domain

// CartLine is one untrusted (product, quantity, asserted price) entry
// submitted for sale. Nothing in it is believed until validation.
type CartLine struct {
	ProductID string
	Quantity  int
	UnitPrice Money // client-asserted; checked against the catalog
}

// ValidatedLine is a cart line that passed validation, carrying the
// server-trusted product snapshot and the computed line total.
type ValidatedLine struct {
	ProductID  string
	Name       string
	Category   string
	Quantity   int
	UnitPrice  Money
	TotalPrice Money
	CostPrice  Money
}
