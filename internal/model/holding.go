package model

// Holding is a single symbol's position within a portfolio.
// Price is the last recorded price: it serves both as the cost basis when
// lots are merged and as the valuation input for totals. It only changes
// on merge or on an explicit price refresh, never continuously.
type Holding struct {
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
}

// Value returns the holding's value at its recorded price.
func (h Holding) Value() float64 {
	return h.Amount * h.Price
}
