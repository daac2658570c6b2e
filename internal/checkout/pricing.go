package checkout

import "github.com/shopspring/decimal"

// DefaultSalesTaxRate задаёт ставку налога с продаж.
const DefaultSalesTaxRate = 0.105

// Pricing задаёт правила расчёта итоговой суммы заказа.
type Pricing struct {
	SalesTaxRate float64
	// ShippingFee взимается с покупателей без Prime.
	ShippingFee int64
}

// Quote содержит разбивку суммы заказа в центах.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// Quote рассчитывает налог и доставку: total = subtotal + round(subtotal × rate) + shipping.
func (p Pricing) Quote(subtotal int64, isPrime bool) Quote {
	tax := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(p.SalesTaxRate)).
		Round(0).
		IntPart()

	shipping := p.ShippingFee
	if isPrime {
		shipping = 0
	}

	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}
