package filter

// DefaultExchangeRate converts source-marketplace prices (RMB) into the
// target currency (JPY) when no rate is configured.
const DefaultExchangeRate = 20.0

// Config is the set of constraints applied to one result list. A nil bound
// or empty allow-list disables the corresponding filter; zero is a real
// bound.
type Config struct {
	Categories       []string `json:"categories,omitempty"`
	Subcategories    []string `json:"subcategories,omitempty"`
	SubSubcategories []string `json:"subSubcategories,omitempty"`

	// Target-currency price range, inclusive.
	PriceMin     *float64 `json:"priceMin,omitempty"`
	PriceMax     *float64 `json:"priceMax,omitempty"`
	ExchangeRate float64  `json:"exchangeRate,omitempty"`

	MaxLength *float64 `json:"maxLength,omitempty"`
	MaxWidth  *float64 `json:"maxWidth,omitempty"`
	MaxHeight *float64 `json:"maxHeight,omitempty"`

	// Grams.
	MaxWeight *float64 `json:"maxWeight,omitempty"`

	MinInventory    *int     `json:"minInventory,omitempty"`
	MaxDeliveryDays *int     `json:"maxDeliveryDays,omitempty"`
	MaxShippingFee  *float64 `json:"maxShippingFee,omitempty"`

	Strict bool `json:"strict,omitempty"`
}

// Rate returns the configured exchange rate, or the default when it is not
// a positive finite number.
func (c Config) Rate() float64 {
	return effectiveRate(c.ExchangeRate)
}

// IsZero reports whether no filter is configured.
func (c Config) IsZero() bool {
	for _, st := range c.stages() {
		if st.active {
			return false
		}
	}
	return true
}

// Float returns a pointer to v, for building configs inline.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building configs inline.
func Int(v int) *int { return &v }
