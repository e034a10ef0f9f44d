package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/filter"
)

// NameCount is one row of a frequency table.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes a product list at a glance.
type Summary struct {
	Count         int             `json:"count"`
	Priced        int             `json:"priced"`
	MinPrice      decimal.Decimal `json:"minPrice"`
	MaxPrice      decimal.Decimal `json:"maxPrice"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	TopCategories []NameCount     `json:"topCategories"`
	TopShops      []NameCount     `json:"topShops"`
}

// Summarize computes price statistics over products with a positive source
// price, and the top most frequent top-level categories and shops.
func Summarize(products []domain.Product, top int) Summary {
	out := Summary{Count: len(products)}
	sum := decimal.Zero
	categories := map[string]int{}
	shops := map[string]int{}

	for i := range products {
		p := &products[i]
		if price, ok := filter.SourcePrice(p); ok && price.IsPositive() {
			if out.Priced == 0 || price.LessThan(out.MinPrice) {
				out.MinPrice = price
			}
			if out.Priced == 0 || price.GreaterThan(out.MaxPrice) {
				out.MaxPrice = price
			}
			sum = sum.Add(price)
			out.Priced++
		}
		if id := p.TopCategoryID.String(); id != "" {
			categories[id]++
		}
		if name := p.ShopName(); name != "" {
			shops[name]++
		}
	}
	if out.Priced > 0 {
		out.AvgPrice = sum.Div(decimal.NewFromInt(int64(out.Priced))).Round(2)
	}
	out.TopCategories = topN(categories, top)
	out.TopShops = topN(shops, top)
	return out
}

// topN orders by count descending, then name.
func topN(counts map[string]int, n int) []NameCount {
	rows := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, NameCount{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
