package filter

import "github.com/run651/rakumart-1688/internal/domain"

// Stage names, in pipeline order.
const (
	StageCategory  = "category"
	StagePrice     = "price"
	StageSize      = "size"
	StageWeight    = "weight"
	StageInventory = "inventory"
	StageDelivery  = "delivery"
	StageShipping  = "shipping_fee"
)

type stage struct {
	name   string
	active bool
	eval   Predicate
}

// stages lists every filter in fixed order. Inactive stages stay in the list
// and pass their input through unchanged.
func (c Config) stages() []stage {
	st := []stage{
		{
			name:   StageCategory,
			active: len(c.Categories) > 0 || len(c.Subcategories) > 0 || len(c.SubSubcategories) > 0,
			eval:   CategoryPredicate(c.Categories, c.Subcategories, c.SubSubcategories),
		},
		{
			name:   StagePrice,
			active: finiteBound(c.PriceMin) != nil || finiteBound(c.PriceMax) != nil,
			eval:   PricePredicate(c.PriceMin, c.PriceMax, c.Rate()),
		},
		{
			name:   StageSize,
			active: c.MaxLength != nil || c.MaxWidth != nil || c.MaxHeight != nil,
			eval:   SizePredicate(c.MaxLength, c.MaxWidth, c.MaxHeight),
		},
		{name: StageWeight, active: c.MaxWeight != nil},
		{name: StageInventory, active: c.MinInventory != nil},
		{name: StageDelivery, active: c.MaxDeliveryDays != nil},
		{name: StageShipping, active: c.MaxShippingFee != nil},
	}
	if c.MaxWeight != nil {
		st[3].eval = WeightPredicate(*c.MaxWeight)
	}
	if c.MinInventory != nil {
		st[4].eval = InventoryPredicate(*c.MinInventory)
	}
	if c.MaxDeliveryDays != nil {
		st[5].eval = DeliveryPredicate(*c.MaxDeliveryDays)
	}
	if c.MaxShippingFee != nil {
		st[6].eval = ShippingFeePredicate(*c.MaxShippingFee)
	}
	return st
}

func (s stage) run(products []domain.Product, strict bool) []domain.Product {
	if !s.active {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		if s.eval(&products[i]).Keep(strict) {
			out = append(out, products[i])
		}
	}
	return out
}

// Apply returns the products that satisfy every configured constraint. The
// input slice is not modified.
func Apply(products []domain.Product, cfg Config) []domain.Product {
	out := products
	for _, st := range cfg.stages() {
		out = st.run(out, cfg.Strict)
	}
	return out
}

// StageCount is how many items survived one stage.
type StageCount struct {
	Stage  string `json:"stage"`
	Active bool   `json:"active"`
	Kept   int    `json:"kept"`
}

// Trace runs the pipeline like Apply and also reports the survivors after
// each stage.
func Trace(products []domain.Product, cfg Config) ([]domain.Product, []StageCount) {
	out := products
	stages := cfg.stages()
	counts := make([]StageCount, 0, len(stages))
	for _, st := range stages {
		out = st.run(out, cfg.Strict)
		counts = append(counts, StageCount{Stage: st.name, Active: st.active, Kept: len(out)})
	}
	return out, counts
}

// Evaluate reports the raw outcome of each active stage for one product,
// before the missing-data policy is applied.
func Evaluate(p *domain.Product, cfg Config) map[string]Outcome {
	result := make(map[string]Outcome)
	for _, st := range cfg.stages() {
		if st.active {
			result[st.name] = st.eval(p)
		}
	}
	return result
}
