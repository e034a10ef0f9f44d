package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/usecase"
)

// printTable writes one row per product.
func printTable(w io.Writer, products []domain.Product) {
	fmt.Fprintf(w, "=== SEARCH RESULTS (%d products) ===\n", len(products))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tCHINESE TITLE\tJAPANESE TITLE\tPRICE\tSOLD\tSHOP")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(p.ID(), 12),
			truncate(deref(p.TitleC), 40),
			truncate(deref(p.TitleT), 40),
			orNA(p.GoodsPrice.String()),
			orNA(p.MonthSold.String()),
			truncate(orDefault(p.ShopName(), "Unknown"), 20))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %d products\n", len(products))
}

// printSummary writes price statistics and the top categories and shops.
func printSummary(w io.Writer, s usecase.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== STATISTICS ===")
	if s.Priced > 0 {
		fmt.Fprintf(w, "Price range: %s - %s RMB\n", s.MinPrice.StringFixed(2), s.MaxPrice.StringFixed(2))
		fmt.Fprintf(w, "Average price: %s RMB\n", s.AvgPrice.StringFixed(2))
	}
	if len(s.TopCategories) > 0 {
		fmt.Fprintln(w, "Top categories:")
		for _, c := range s.TopCategories {
			fmt.Fprintf(w, "  Category %s: %d products\n", c.Name, c.Count)
		}
	}
	if len(s.TopShops) > 0 {
		fmt.Fprintln(w, "Top shops:")
		for _, c := range s.TopShops {
			fmt.Fprintf(w, "  %s: %d products\n", c.Name, c.Count)
		}
	}
}

// printFieldAnalysis lists every key seen across products with how often it
// carries a value and up to three sample values, then the first product.
func printFieldAnalysis(w io.Writer, products []domain.Product, showEmpty bool) {
	fields := map[string]struct{}{}
	for i := range products {
		for _, k := range products[i].Keys() {
			fields[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "=== SEARCH RESULT ITEMS ANALYSIS ===")
	fmt.Fprintf(w, "Total products found: %d\n\n", len(products))
	fmt.Fprintf(w, "All available fields (%d total):\n", len(keys))
	for i, k := range keys {
		fmt.Fprintf(w, "%2d. %s\n", i+1, k)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Detailed field analysis:")
	for _, k := range keys {
		var samples []string
		count := 0
		for i := range products {
			v := products[i].Get(k)
			if !hasValue(v) {
				continue
			}
			count++
			if len(samples) < 3 {
				samples = append(samples, truncateEllipsis(domain.FormatValue(v), 100))
			}
		}
		if count == 0 && !showEmpty {
			continue
		}
		fmt.Fprintf(w, "\nField: %s\n", k)
		fmt.Fprintf(w, "  - Present in %d/%d products (%.1f%%)\n", count, len(products), float64(count)/float64(len(products))*100)
		if len(samples) > 0 {
			fmt.Fprintln(w, "  - Sample values:")
			for i, s := range samples {
				fmt.Fprintf(w, "    %d. %s\n", i+1, s)
			}
		}
	}

	if len(products) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== SAMPLE PRODUCT STRUCTURE ===")
		b, err := json.MarshalIndent(products[0], "", "  ")
		if err == nil {
			fmt.Fprintln(w, string(b))
		}
	}
}

// printRecords writes the given columns of each record as a table.
func printRecords(w io.Writer, records []map[string]any, columns []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = orDefault(domain.FormatValue(rec[col]), "-")
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d rows\n", len(records))
}

// printTimeline writes one line per tracking event.
func printTimeline(w io.Writer, events []map[string]any) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ev := range events {
		line := []string{domain.FormatValue(ev["time"]), domain.FormatValue(ev["address"])}
		for _, key := range []string{"context", "desc", "status"} {
			if s := domain.FormatValue(ev[key]); s != "" {
				line = append(line, s)
				break
			}
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	tw.Flush()
}

func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func truncateEllipsis(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
