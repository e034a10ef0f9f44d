// Package console is a line-oriented browser for a list of search results.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/filter"
	"github.com/run651/rakumart-1688/internal/usecase"
)

const (
	prompt          = "search> "
	defaultPageSize = 10
)

// Console holds the full result list, the current filtered view and the
// paging position.
type Console struct {
	products []domain.Product
	view     []domain.Product
	page     int // zero based
	size     int

	in  io.Reader
	out io.Writer
	now func() time.Time
}

// New creates a console over products. The list itself is never modified.
func New(products []domain.Product, in io.Reader, out io.Writer) *Console {
	return &Console{
		products: products,
		view:     clone(products),
		size:     defaultPageSize,
		in:       in,
		out:      out,
		now:      time.Now,
	}
}

// Run reads commands until quit, end of input or cancellation.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Search Results Console ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands or 'quit' to exit.")

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if c.Execute(scanner.Text()) {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should
// exit.
func (c *Console) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	name, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch strings.ToLower(name) {
	case "list", "ls":
		c.list(args)
	case "show":
		c.show(args)
	case "filter":
		c.filter(args)
	case "clear":
		c.clear()
	case "sort":
		c.sort(args)
	case "search", "find":
		c.search(args)
	case "stats":
		c.stats()
	case "categories":
		c.categories()
	case "export":
		c.export(args)
	case "help", "?":
		c.help()
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Goodbye!")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s. Type 'help' for available commands.\n", name)
	}
	return false
}

// View returns the products currently selected.
func (c *Console) View() []domain.Product {
	return c.view
}

func (c *Console) list(args string) {
	parts := strings.Fields(args)
	page, size := c.page, c.size
	var err error
	if len(parts) >= 1 {
		var n int
		if n, err = strconv.Atoi(parts[0]); err == nil && n >= 1 {
			page = n - 1
		}
	}
	if err == nil && len(parts) >= 2 {
		var n int
		if n, err = strconv.Atoi(parts[1]); err == nil && n >= 1 {
			size = n
		}
	}
	if err != nil {
		fmt.Fprintln(c.out, "Invalid page or size. Using defaults.")
	} else {
		c.page, c.size = page, size
	}

	start := min(c.page*c.size, len(c.view))
	end := min(start+c.size, len(c.view))
	fmt.Fprintf(c.out, "\n=== Products (Page %d, Showing %d items) ===\n", c.page+1, end-start)
	fmt.Fprintf(c.out, "Total products: %d\n", len(c.view))
	fmt.Fprintln(c.out, strings.Repeat("-", 80))
	for i := start; i < end; i++ {
		c.summary(&c.view[i], i+1)
	}
}

func (c *Console) summary(p *domain.Product, index int) {
	fmt.Fprintf(c.out, "%3d. %s...\n", index, truncate(orDefault(deref(p.TitleC), "No title"), 50))
	fmt.Fprintf(c.out, "     Price: %s RMB | Sold: %s | Shop: %s\n\n",
		orDefault(p.GoodsPrice.String(), "N/A"),
		orDefault(p.MonthSold.String(), "0"),
		truncate(orDefault(p.ShopName(), "Unknown"), 30))
}

func (c *Console) show(args string) {
	n, err := strconv.Atoi(args)
	if err != nil {
		fmt.Fprintln(c.out, "Please provide a valid product index.")
		return
	}
	if n < 1 || n > len(c.view) {
		fmt.Fprintf(c.out, "Invalid index. Available range: 1-%d\n", len(c.view))
		return
	}
	p := &c.view[n-1]
	na := func(s string) string { return orDefault(s, "N/A") }

	fmt.Fprintf(c.out, "\n=== Product #%d Details ===\n", n)
	fmt.Fprintf(c.out, "ID: %s\n", na(p.ID()))
	fmt.Fprintf(c.out, "Chinese Title: %s\n", na(deref(p.TitleC)))
	fmt.Fprintf(c.out, "Japanese Title: %s\n", na(deref(p.TitleT)))
	fmt.Fprintf(c.out, "Price: %s RMB\n", na(p.GoodsPrice.String()))
	fmt.Fprintf(c.out, "Monthly Sold: %s\n", na(p.MonthSold.String()))
	fmt.Fprintf(c.out, "Repurchase Rate: %s%%\n", na(p.RepurchaseRate.String()))
	fmt.Fprintf(c.out, "Trade Score: %s\n", na(p.TradeScore.String()))
	if p.ShopInfo != nil {
		fmt.Fprintf(c.out, "Shop: %s\n", na(deref(p.ShopInfo.ShopName)))
		fmt.Fprintf(c.out, "Address: %s\n", na(deref(p.ShopInfo.Address)))
		fmt.Fprintf(c.out, "Wangwang: %s\n", na(deref(p.ShopInfo.Wangwang)))
	}
	fmt.Fprintf(c.out, "Category: %s / %s\n", na(p.TopCategoryID.String()), na(p.SecondCategoryID.String()))
	fmt.Fprintf(c.out, "Created: %s\n", na(deref(p.CreateDate)))
	fmt.Fprintf(c.out, "Modified: %s\n", na(domain.FormatValue(p.Get("modifyDate"))))
	if len(p.DetailImages) > 0 {
		fmt.Fprintf(c.out, "Images: %d available\n", len(p.DetailImages))
		for i, url := range p.DetailImages[:min(3, len(p.DetailImages))] {
			fmt.Fprintf(c.out, "  %d. %s\n", i+1, url)
		}
		if extra := len(p.DetailImages) - 3; extra > 0 {
			fmt.Fprintf(c.out, "  ... and %d more\n", extra)
		}
	}
}

// filter always starts again from the full list.
func (c *Console) filter(args string) {
	field, value, ok := strings.Cut(args, " ")
	value = strings.TrimSpace(value)
	if !ok || field == "" || value == "" {
		fmt.Fprintln(c.out, "Usage: filter <field> <value>")
		if args == "" {
			fmt.Fprintln(c.out, "Available fields:", strings.Join(c.fields(), ", "))
		}
		return
	}
	before := len(c.view)
	needle := strings.ToLower(value)
	c.view = c.view[:0:0]
	for i := range c.products {
		if strings.Contains(strings.ToLower(domain.FormatValue(c.products[i].Get(field))), needle) {
			c.view = append(c.view, c.products[i])
		}
	}
	c.page = 0
	fmt.Fprintf(c.out, "Filtered by %s='%s': %d/%d products\n", field, value, len(c.view), before)
}

func (c *Console) clear() {
	c.view = clone(c.products)
	c.page = 0
	fmt.Fprintf(c.out, "Cleared filters. Showing all %d products.\n", len(c.view))
}

func (c *Console) sort(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		fmt.Fprintln(c.out, "Usage: sort <field> [asc|desc]")
		fmt.Fprintln(c.out, "Available fields:", strings.Join(c.fields(), ", "))
		return
	}
	field := parts[0]
	desc := len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	sort.SliceStable(c.view, func(i, j int) bool {
		a, b := sortKeyOf(c.view[i].Get(field)), sortKeyOf(c.view[j].Get(field))
		if a.missing != b.missing {
			return b.missing
		}
		if desc {
			return b.less(a)
		}
		return a.less(b)
	})
	direction := "ascending"
	if desc {
		direction = "descending"
	}
	fmt.Fprintf(c.out, "Sorted by %s (%s)\n", field, direction)
}

func (c *Console) search(args string) {
	if args == "" {
		fmt.Fprintln(c.out, "Usage: search <query>")
		return
	}
	query := strings.ToLower(args)
	type match struct {
		index int
		title string
	}
	var matches []match
	for i := range c.view {
		p := &c.view[i]
		text := strings.ToLower(strings.Join([]string{deref(p.TitleC), deref(p.TitleT), p.ID(), p.ShopName()}, " "))
		if strings.Contains(text, query) {
			matches = append(matches, match{index: i + 1, title: orDefault(deref(p.TitleC), "No title")})
		}
	}
	if len(matches) == 0 {
		fmt.Fprintln(c.out, "No matches found.")
		return
	}
	fmt.Fprintf(c.out, "Found %d matches:\n", len(matches))
	for i, m := range matches[:min(10, len(matches))] {
		fmt.Fprintf(c.out, "%2d. [%d] %s...\n", i+1, m.index, truncate(m.title, 50))
	}
}

func (c *Console) stats() {
	if len(c.view) == 0 {
		fmt.Fprintln(c.out, "No products to analyze.")
		return
	}
	s := usecase.Summarize(c.view, 5)
	fmt.Fprintln(c.out, "\n=== Statistics ===")
	fmt.Fprintf(c.out, "Total products: %d\n", s.Count)
	if s.Priced > 0 {
		fmt.Fprintf(c.out, "Price range: %s - %s RMB\n", s.MinPrice.StringFixed(2), s.MaxPrice.StringFixed(2))
		fmt.Fprintf(c.out, "Average price: %s RMB\n", s.AvgPrice.StringFixed(2))
	}
	if len(s.TopCategories) > 0 {
		fmt.Fprintln(c.out, "Top categories:")
		for _, row := range s.TopCategories {
			fmt.Fprintf(c.out, "  Category %s: %d products\n", row.Name, row.Count)
		}
	}
}

func (c *Console) categories() {
	facets := filter.CollectCategories(c.view)
	section := func(title string, values []string) {
		if len(values) == 0 {
			return
		}
		fmt.Fprintf(c.out, "%s (%d):\n", title, len(values))
		for _, v := range values {
			fmt.Fprintf(c.out, "  %s\n", v)
		}
	}
	if len(facets.Categories)+len(facets.Subcategories)+len(facets.SubSubcategories) == 0 {
		fmt.Fprintln(c.out, "No category data in these results.")
		return
	}
	section("Categories", facets.Categories)
	section("Subcategories", facets.Subcategories)
	section("Sub-subcategories", facets.SubSubcategories)
}

func (c *Console) export(args string) {
	name := args
	if name == "" {
		name = fmt.Sprintf("search_results_%d.json", c.now().Unix())
	}
	data, err := json.MarshalIndent(c.view, "", "  ")
	if err == nil {
		err = os.WriteFile(name, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(c.out, "Error exporting: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Exported %d products to %s\n", len(c.view), name)
}

func (c *Console) help() {
	fmt.Fprintln(c.out, "\nAvailable commands:")
	fmt.Fprintln(c.out, "  list [page] [size]       - List products with pagination")
	fmt.Fprintln(c.out, "  show <index>             - Show detailed product information")
	fmt.Fprintln(c.out, "  filter <field> <value>   - Filter products by field")
	fmt.Fprintln(c.out, "  clear                    - Clear all filters")
	fmt.Fprintln(c.out, "  sort <field> [asc|desc]  - Sort products by field")
	fmt.Fprintln(c.out, "  search <query>           - Search within current results")
	fmt.Fprintln(c.out, "  stats                    - Show statistics")
	fmt.Fprintln(c.out, "  categories               - Show the categories in current results")
	fmt.Fprintln(c.out, "  export [filename]        - Export results to JSON")
	fmt.Fprintln(c.out, "  quit                     - Exit console")
	fmt.Fprintf(c.out, "\nCurrent: %d products, page %d\n", len(c.view), c.page+1)
}

// fields lists every key present on any product.
func (c *Console) fields() []string {
	set := map[string]struct{}{}
	for i := range c.products {
		for _, k := range c.products[i].Keys() {
			set[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clone(products []domain.Product) []domain.Product {
	return append([]domain.Product(nil), products...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
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
