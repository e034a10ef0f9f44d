package console

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/run651/rakumart-1688/internal/domain"
)

const sampleProducts = `[
	{"goodsId": "101", "titleC": "蓝牙耳机", "titleT": "Bluetooth earphones", "goodsPrice": "25.50", "monthSold": 120,
	 "topCategoryId": 7, "shopInfo": {"shopName": "Audio Shop", "address": "Shenzhen"}, "detailImages": ["a.jpg", "b.jpg", "c.jpg", "d.jpg"]},
	{"goodsId": "102", "titleC": "手机壳", "titleT": "Phone case", "goodsPrice": "3.20", "monthSold": 900,
	 "topCategoryId": 9, "shopInfo": {"shopName": "Case World"}},
	{"goodsId": "103", "titleC": "充电器", "titleT": "Charger", "goodsPrice": 12, "topCategoryId": 7}
]`

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	var products []domain.Product
	require.NoError(t, json.Unmarshal([]byte(sampleProducts), &products))
	out := &bytes.Buffer{}
	return New(products, strings.NewReader(""), out), out
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].ID()
	}
	return out
}

func TestList_Paging(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("list 2 2")

	assert.Contains(t, out.String(), "Page 2, Showing 1 items")
	assert.Contains(t, out.String(), "  3. 充电器...")
	assert.Contains(t, out.String(), "Price: 12 RMB | Sold: 0 | Shop: Unknown")

	out.Reset()
	c.Execute("list x")
	assert.Contains(t, out.String(), "Invalid page or size. Using defaults.")
	assert.Contains(t, out.String(), "Page 2, Showing 1 items")
}

func TestShow(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("show 1")
	text := out.String()
	assert.Contains(t, text, "=== Product #1 Details ===")
	assert.Contains(t, text, "Japanese Title: Bluetooth earphones")
	assert.Contains(t, text, "Shop: Audio Shop")
	assert.Contains(t, text, "Wangwang: N/A")
	assert.Contains(t, text, "Images: 4 available")
	assert.Contains(t, text, "... and 1 more")

	out.Reset()
	c.Execute("show 9")
	assert.Contains(t, out.String(), "Invalid index. Available range: 1-3")

	out.Reset()
	c.Execute("show abc")
	assert.Contains(t, out.String(), "Please provide a valid product index.")
}

func TestFilterAndClear(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("filter topCategoryId 7")
	assert.Equal(t, []string{"101", "103"}, ids(c.View()))
	assert.Contains(t, out.String(), "Filtered by topCategoryId='7': 2/3 products")

	// filters do not stack
	c.Execute("filter titleT case")
	assert.Equal(t, []string{"102"}, ids(c.View()))

	c.Execute("clear")
	assert.Len(t, c.View(), 3)

	out.Reset()
	c.Execute("filter")
	assert.Contains(t, out.String(), "Available fields:")
	assert.Contains(t, out.String(), "goodsPrice")
}

func TestSort(t *testing.T) {
	c, _ := newTestConsole(t)

	c.Execute("sort goodsPrice")
	assert.Equal(t, []string{"102", "103", "101"}, ids(c.View()))

	c.Execute("sort goodsPrice desc")
	assert.Equal(t, []string{"101", "103", "102"}, ids(c.View()))

	// missing values stay last in both directions
	c.Execute("sort monthSold desc")
	assert.Equal(t, []string{"102", "101", "103"}, ids(c.View()))
	c.Execute("sort monthSold asc")
	assert.Equal(t, []string{"101", "102", "103"}, ids(c.View()))
}

func TestSearchWithinResults(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("search case world")
	assert.Contains(t, out.String(), "Found 1 matches:")
	assert.Contains(t, out.String(), " 1. [2] 手机壳...")

	out.Reset()
	c.Execute("search nothing-here")
	assert.Contains(t, out.String(), "No matches found.")
}

func TestStatsAndCategories(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("stats")
	text := out.String()
	assert.Contains(t, text, "Total products: 3")
	assert.Contains(t, text, "Price range: 3.20 - 25.50 RMB")
	assert.Contains(t, text, "Average price: 13.57 RMB")
	assert.Contains(t, text, "Category 7: 2 products")

	out.Reset()
	c.Execute("categories")
	assert.Contains(t, out.String(), "No category data in these results.")

	out.Reset()
	c.Execute("filter goodsId nothing")
	c.Execute("stats")
	assert.Contains(t, out.String(), "No products to analyze.")
}

func TestExport(t *testing.T) {
	c, out := newTestConsole(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	c.Execute("filter topCategoryId 9")
	c.Execute("export " + path)

	assert.Contains(t, out.String(), "Exported 1 products to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var exported []map[string]any
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "102", exported[0]["goodsId"])
}

func TestExport_DefaultName(t *testing.T) {
	c, out := newTestConsole(t)
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	c.Execute("export")

	assert.Contains(t, out.String(), "search_results_1700000000.json")
	_, err := os.Stat("search_results_1700000000.json")
	assert.NoError(t, err)
}

func TestRun_ReadsUntilQuit(t *testing.T) {
	var products []domain.Product
	require.NoError(t, json.Unmarshal([]byte(sampleProducts), &products))
	out := &bytes.Buffer{}
	in := strings.NewReader("help\nbogus\nquit\nlist\n")

	err := New(products, in, out).Run(context.Background())

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Available commands:")
	assert.Contains(t, text, "Unknown command: bogus.")
	assert.Contains(t, text, "Goodbye!")
	assert.NotContains(t, text, "=== Products")
}

func TestRun_EndOfInputAndCancel(t *testing.T) {
	c, _ := newTestConsole(t)
	require.NoError(t, c.Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ = newTestConsole(t)
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
