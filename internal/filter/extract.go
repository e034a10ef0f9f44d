package filter

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/run651/rakumart-1688/internal/domain"
)

// Alternate field names per logical attribute, tried in order. The first key
// holding a non-empty value wins.
var (
	DimensionContainerKeys = []string{"dimensions", "size", "specs"}
	LengthKeys             = []string{"length", "l", "长"}
	WidthKeys              = []string{"width", "w", "宽"}
	HeightKeys             = []string{"height", "h", "高"}

	WeightKeys      = []string{"weight", "product_weight", "net_weight", "gross_weight"}
	InventoryKeys   = []string{"inventory", "stock", "quantity"}
	DeliveryKeys    = []string{"delivery_days", "shipping_days", "delivery_time"}
	ShippingFeeKeys = []string{"shipping_fee", "shipping_cost", "delivery_fee"}
	PriceKeys       = []string{"goodsPrice", "price", "productPrice", "salePrice", "marketPrice"}

	CategoryContainerKeys = []string{"category", "categoryInfo"}
	MainCategoryKeys      = []string{"category", "mainCategory", "一级类目"}
	SubcategoryKeys       = []string{"subcategory", "subCategory", "二级类目"}
	SubSubcategoryKeys    = []string{"subSubcategory", "sub_subcategory", "三级类目"}
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// present reports whether v counts as a value. Null, empty strings and empty
// containers are absent; zero is present.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}

func firstIn(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v := m[k]; present(v) {
			return v
		}
	}
	return nil
}

func firstOf(p *domain.Product, keys []string) any {
	for _, k := range keys {
		if v := p.Get(k); present(v) {
			return v
		}
	}
	return nil
}

// number coerces a loosely typed value. Strings are parsed whole first and
// otherwise yield the first number they contain.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool, map[string]any, []any:
		return 0, false
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if f, err := cast.ToFloat64E(s); err == nil {
			return f, true
		}
		m := numberPattern.FindString(strings.ReplaceAll(s, ",", ""))
		if m == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(m)
		return f, err == nil
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

// Dimensions returns length, width and height with presence flags. The
// container is the first non-empty object among DimensionContainerKeys.
func Dimensions(p *domain.Product) (length, width, height float64, hasLength, hasWidth, hasHeight bool) {
	var dims map[string]any
	for _, k := range DimensionContainerKeys {
		if m, ok := p.Get(k).(map[string]any); ok && len(m) > 0 {
			dims = m
			break
		}
	}
	if dims == nil {
		return
	}
	length, hasLength = number(firstIn(dims, LengthKeys))
	width, hasWidth = number(firstIn(dims, WidthKeys))
	height, hasHeight = number(firstIn(dims, HeightKeys))
	return
}

// WeightGrams returns the item weight normalized to grams.
func WeightGrams(p *domain.Product) (float64, bool) {
	return ParseWeight(firstOf(p, WeightKeys))
}

// Inventory returns the available stock.
func Inventory(p *domain.Product) (int, bool) {
	f, ok := number(firstOf(p, InventoryKeys))
	if !ok {
		return 0, false
	}
	return int(f), true
}

// DeliveryDays returns the delivery time; strings like "3-5 days" yield 3.
func DeliveryDays(p *domain.Product) (int, bool) {
	f, ok := number(firstOf(p, DeliveryKeys))
	if !ok {
		return 0, false
	}
	return int(f), true
}

// ShippingFee returns the shipping fee in source currency.
func ShippingFee(p *domain.Product) (float64, bool) {
	return number(firstOf(p, ShippingFeeKeys))
}

// CategoryInfo holds the category values attached to an item.
type CategoryInfo struct {
	Main        string
	Sub         string
	SubSub      string
	HasMetadata bool
}

// Categories reads the item's category block. A plain string counts as the
// main category.
func Categories(p *domain.Product) CategoryInfo {
	raw := firstOf(p, CategoryContainerKeys)
	switch t := raw.(type) {
	case map[string]any:
		return CategoryInfo{
			Main:        label(firstIn(t, MainCategoryKeys)),
			Sub:         label(firstIn(t, SubcategoryKeys)),
			SubSub:      label(firstIn(t, SubSubcategoryKeys)),
			HasMetadata: true,
		}
	case nil, []any:
		return CategoryInfo{}
	default:
		return CategoryInfo{Main: label(t), HasMetadata: true}
	}
}

func label(v any) string {
	if !present(v) {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}
