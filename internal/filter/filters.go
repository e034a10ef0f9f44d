package filter

import (
	"github.com/shopspring/decimal"

	"github.com/run651/rakumart-1688/internal/domain"
)

// Predicate classifies one product against one constraint.
type Predicate func(p *domain.Product) Outcome

// CategoryPredicate matches the allow-lists. Items without category metadata
// always pass; items with metadata must match every non-empty list.
func CategoryPredicate(categories, subcategories, subSubcategories []string) Predicate {
	main, sub, subSub := toSet(categories), toSet(subcategories), toSet(subSubcategories)
	return func(p *domain.Product) Outcome {
		info := Categories(p)
		if !info.HasMetadata {
			return Pass
		}
		if !matches(main, info.Main) || !matches(sub, info.Sub) || !matches(subSub, info.SubSub) {
			return Fail
		}
		return Pass
	}
}

// PricePredicate checks the converted price against an inclusive range.
// Bounds that are not finite are ignored.
func PricePredicate(min, max *float64, rate float64) Predicate {
	min, max = finiteBound(min), finiteBound(max)
	return func(p *domain.Product) Outcome {
		price, ok := TargetPrice(p, rate)
		if !ok {
			return Unknown
		}
		if min != nil && price.LessThan(decimal.NewFromFloat(*min)) {
			return Fail
		}
		if max != nil && price.GreaterThan(decimal.NewFromFloat(*max)) {
			return Fail
		}
		return Pass
	}
}

func finiteBound(v *float64) *float64 {
	if v == nil || !finite(*v) {
		return nil
	}
	return v
}

// SizePredicate checks each configured dimension independently. A missing
// dimension is Unknown only for itself.
func SizePredicate(maxLength, maxWidth, maxHeight *float64) Predicate {
	return func(p *domain.Product) Outcome {
		l, w, h, hasL, hasW, hasH := Dimensions(p)
		var outcomes []Outcome
		if maxLength != nil {
			outcomes = append(outcomes, atMost(l, hasL, *maxLength))
		}
		if maxWidth != nil {
			outcomes = append(outcomes, atMost(w, hasW, *maxWidth))
		}
		if maxHeight != nil {
			outcomes = append(outcomes, atMost(h, hasH, *maxHeight))
		}
		return combine(outcomes...)
	}
}

// WeightPredicate checks the normalized weight in grams.
func WeightPredicate(maxGrams float64) Predicate {
	return func(p *domain.Product) Outcome {
		g, ok := WeightGrams(p)
		return atMost(g, ok, maxGrams)
	}
}

// InventoryPredicate requires at least min units in stock.
func InventoryPredicate(min int) Predicate {
	return func(p *domain.Product) Outcome {
		n, ok := Inventory(p)
		return atLeast(float64(n), ok, float64(min))
	}
}

// DeliveryPredicate requires delivery within max days.
func DeliveryPredicate(max int) Predicate {
	return func(p *domain.Product) Outcome {
		n, ok := DeliveryDays(p)
		return atMost(float64(n), ok, float64(max))
	}
}

// ShippingFeePredicate caps the shipping fee in source currency.
func ShippingFeePredicate(max float64) Predicate {
	return func(p *domain.Product) Outcome {
		fee, ok := ShippingFee(p)
		return atMost(fee, ok, max)
	}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches treats an empty allow-list as "any value".
func matches(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	if value == "" {
		return false
	}
	_, ok := set[value]
	return ok
}
