package filter

import (
	"sort"

	"github.com/run651/rakumart-1688/internal/domain"
)

// Facets are the distinct category values observed in a result list.
type Facets struct {
	Categories       []string `json:"categories"`
	Subcategories    []string `json:"subcategories"`
	SubSubcategories []string `json:"subSubcategories"`
}

// CollectCategories returns sorted, deduplicated category values across
// products. Items without category data contribute nothing.
func CollectCategories(products []domain.Product) Facets {
	main, sub, subSub := map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}
	for i := range products {
		info := Categories(&products[i])
		add(main, info.Main)
		add(sub, info.Sub)
		add(subSub, info.SubSub)
	}
	return Facets{
		Categories:       sorted(main),
		Subcategories:    sorted(sub),
		SubSubcategories: sorted(subSub),
	}
}

func add(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
