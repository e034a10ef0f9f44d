package domain

// SortOrder is one order_by entry sent with a keyword search.
type SortOrder struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SearchRequest holds the parameters of a keyword search. Category lists and
// physical limits are forwarded to the API as hints; the client-side filter
// engine enforces them regardless of what the server does with them.
type SearchRequest struct {
	Keywords         string     `json:"keywords" binding:"required"`
	ShopType         string     `json:"shopType,omitempty"`
	Page             int        `json:"page,omitempty"`
	PageSize         int        `json:"pageSize,omitempty"`
	PriceMin         string     `json:"priceMin,omitempty"`
	PriceMax         string     `json:"priceMax,omitempty"`
	OrderBy          *SortOrder `json:"orderBy,omitempty"`
	Categories       []string   `json:"categories,omitempty"`
	Subcategories    []string   `json:"subcategories,omitempty"`
	SubSubcategories []string   `json:"subSubcategories,omitempty"`
	MaxLength        *float64   `json:"maxLength,omitempty"`
	MaxWidth         *float64   `json:"maxWidth,omitempty"`
	MaxHeight        *float64   `json:"maxHeight,omitempty"`
	MinInventory     *int       `json:"minInventory,omitempty"`
	MaxDeliveryDays  *int       `json:"maxDeliveryDays,omitempty"`
	MaxShippingFee   *float64   `json:"maxShippingFee,omitempty"`
}

// SearchResult is a page of products plus the API's reported total.
type SearchResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
