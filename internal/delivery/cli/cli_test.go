package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/infrastructure/rakumart"
)

const searchBody = `{"success": true, "data": {"result": {"total": 3, "result": [
	{"goodsId": "1", "titleC": "手提包", "titleT": "Handbag", "goodsPrice": "12.50", "monthSold": 40, "topCategoryId": 5, "shopInfo": {"shopName": "Bag Co"}},
	{"goodsId": "2", "titleC": "背包", "titleT": "Backpack", "goodsPrice": "30", "topCategoryId": 5},
	{"goodsId": "3", "titleC": "行李箱", "titleT": "Suitcase", "goodsPrice": "80", "topCategoryId": 6}
]}}}`

// fakeAPI answers every operation with a canned body and records calls.
type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  map[string][]map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		_ = r.ParseMultipartForm(1 << 20)
	} else {
		_ = r.ParseForm()
	}
	op := strings.TrimPrefix(r.URL.Path, "/")
	form := map[string]string{}
	for k, v := range r.Form {
		form[k] = v[0]
	}

	f.mu.Lock()
	f.calls[op] = append(f.calls[op], form)
	body, ok := f.bodies[op]
	f.mu.Unlock()

	if !ok {
		body = `{"success": false, "code": 500, "msg": "not stubbed"}`
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (f *fakeAPI) callsTo(op rakumart.Operation) []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[string(op)]
}

type harness struct {
	api    *fakeAPI
	cfg    *config.Config
	url    string
	stdin  string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, bodies map[rakumart.Operation]string) *harness {
	t.Helper()
	api := &fakeAPI{bodies: map[string]string{}, calls: map[string][]map[string]string{}}
	for op, body := range bodies {
		api.bodies[string(op)] = body
	}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		API: config.APIConfig{
			AppKey:     "demo-key",
			AppSecret:  "demo-secret",
			SignMethod: "md5",
			Timeout:    2 * time.Second,
			ShopType:   "1688",
		},
		Search: config.SearchConfig{PageSize: 20, ExchangeRate: 20, WithDetail: false, DetailLimit: 5},
		Cache:  config.CacheConfig{Type: "memory", TTL: time.Hour},
		Log:    config.LogConfig{Level: "error"},
	}
	for _, op := range []rakumart.Operation{
		rakumart.OpSearch, rakumart.OpDetail, rakumart.OpImageID, rakumart.OpLogistics, rakumart.OpTags,
		rakumart.OpLogisticsTrack, rakumart.OpCreateOrder, rakumart.OpUpdateOrderStatus, rakumart.OpCancelOrder,
		rakumart.OpOrderList, rakumart.OpOrderDetail, rakumart.OpStockList, rakumart.OpCreatePorder,
		rakumart.OpUpdatePorderStatus, rakumart.OpCancelPorder, rakumart.OpPorderList, rakumart.OpPorderDetail,
	} {
		*rakumart.EndpointField(&cfg.API.Endpoints, op) = server.URL + "/" + string(op)
	}
	return &harness{api: api, cfg: cfg, url: server.URL}
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	app := New(h.cfg, zap.NewNop(), strings.NewReader(h.stdin), &h.stdout, &h.stderr)
	return app.Run(context.Background(), args)
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, ExitUsage, h.run())
	assert.Contains(t, h.stderr.String(), "Usage: rakumart <command> [flags]")
	assert.Contains(t, h.stderr.String(), "porder-update-status")

	assert.Equal(t, ExitOK, h.run("help"))
	assert.Equal(t, ExitUsage, h.run("fly"))
	assert.Contains(t, h.stderr.String(), `unknown command "fly"`)

	assert.Equal(t, ExitOK, h.run("search", "--help"))
	assert.Contains(t, h.stderr.String(), "--jpy-price-max")
	assert.Equal(t, ExitUsage, h.run("search", "--no-such-flag"))
}

func TestSearch_FiltersAndPrintsJSON(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	code := h.run("search", "leather", "bag", "--jpy-price-max", "1000", "--order-key", "monthSold", "--order-value", "desc")

	require.Equal(t, ExitOK, code, h.stderr.String())
	var out []map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0]["goodsId"])
	assert.Equal(t, "2", out[1]["goodsId"])

	calls := h.api.callsTo(rakumart.OpSearch)
	require.Len(t, calls, 1)
	assert.Equal(t, "leather bag", calls[0]["keywords"])
	assert.Equal(t, "monthSold", calls[0]["order_by[0][key]"])
	assert.Equal(t, "desc", calls[0]["order_by[0][value]"])
	assert.Equal(t, "demo-key", calls[0]["app_key"])
	assert.Empty(t, h.api.callsTo(rakumart.OpDetail))
}

func TestSearch_EnrichesWithinLimit(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpSearch: searchBody,
		rakumart.OpDetail: `{"success": true, "data": {"images": ["x.jpg"], "description": "<p>d</p>"}}`,
	})

	code := h.run("search", "bag", "--with-detail", "--detail-limit", "1")

	require.Equal(t, ExitOK, code, h.stderr.String())
	var out []map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, []any{"x.jpg"}, out[0]["detailImages"])
	assert.Equal(t, "<p>d</p>", out[0]["detailDescription"])
	assert.NotContains(t, out[1], "detailImages")
	require.Len(t, h.api.callsTo(rakumart.OpDetail), 1)
	assert.Equal(t, "1", h.api.callsTo(rakumart.OpDetail)[0]["goodsId"])
}

func TestSearch_NoResults(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpSearch: `{"success": true, "data": {"result": {"total": 0, "result": []}}}`,
	})

	assert.Equal(t, ExitEmpty, h.run("search", "nothing"))
	assert.Contains(t, h.stderr.String(), "No products matched.")
	assert.Empty(t, h.stdout.String())
}

func TestSearch_FilteredToNothing(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	assert.Equal(t, ExitEmpty, h.run("search", "bag", "--jpy-price-max", "10"))
	assert.Contains(t, h.stderr.String(), "No products matched.")
}

func TestSearch_InvalidCredentials(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpSearch: `{"success": false, "code": 10001, "msg": "app_key invalid"}`,
	})

	assert.Equal(t, ExitEmpty, h.run("search", "bag"))
	assert.Contains(t, h.stderr.String(), "No results returned.")
	assert.Contains(t, h.stderr.String(), "cause:")
}

func TestSearch_UsageErrors(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	assert.Equal(t, ExitUsage, h.run("search"))
	assert.Contains(t, h.stderr.String(), "a keyword is required")

	assert.Equal(t, ExitUsage, h.run("search", "bag", "--order-key", "price", "--order-value", "up"))
	assert.Contains(t, h.stderr.String(), "--order-value must be asc or desc")

	assert.Equal(t, ExitUsage, h.run("search", "bag", "--exchange-rate", "inf"))
	assert.Contains(t, h.stderr.String(), "--exchange-rate must be a finite number")

	assert.Equal(t, ExitUsage, h.run("search", "bag", "--jpy-price-max", "nan"))
	assert.Contains(t, h.stderr.String(), "--jpy-price-max must be a finite number")

	assert.Equal(t, ExitUsage, h.run("search", "bag", "--timeout", "soon"))
	assert.Contains(t, h.stderr.String(), `invalid timeout "soon"`)

	assert.Empty(t, h.api.callsTo(rakumart.OpSearch))
}

func TestSearch_DisplayAll(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	require.Equal(t, ExitOK, h.run("search", "bag", "--display-all"))

	text := h.stdout.String()
	assert.Contains(t, text, "=== SEARCH RESULTS (3 products) ===")
	assert.Contains(t, text, "Handbag")
	assert.Contains(t, text, "Bag Co")
	assert.Contains(t, text, "Total: 3 products")
	assert.Contains(t, text, "Price range: 12.50 - 80.00 RMB")
	assert.Contains(t, text, "Average price: 40.83 RMB")
	assert.Contains(t, text, "Category 5: 2 products")
}

func TestSearch_ShowAllFields(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	require.Equal(t, ExitOK, h.run("search", "bag", "--show-all-fields"))

	text := h.stdout.String()
	assert.Contains(t, text, "Total products found: 3")
	assert.Contains(t, text, "Field: goodsId")
	assert.Contains(t, text, "Present in 3/3 products (100.0%)")
	assert.Contains(t, text, "Field: monthSold")
	assert.Contains(t, text, "Present in 1/3 products (33.3%)")
	assert.Contains(t, text, "=== SAMPLE PRODUCT STRUCTURE ===")
}

func TestSearch_Verbose(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	require.Equal(t, ExitOK, h.run("search", "bag", "-v", "--jpy-price-min", "300"))

	assert.Contains(t, h.stderr.String(), "POST "+h.url+"/search")
	assert.Contains(t, h.stderr.String(), "total 3, fetched 3")
	assert.Contains(t, h.stderr.String(), "kept 2")
}

func TestSearch_SaveWithoutDatabase(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})

	assert.Equal(t, ExitOK, h.run("search", "bag", "--save"))
	assert.Contains(t, h.stderr.String(), "Save failed: no database configured")
}

func TestSearch_SaveToSQLite(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})
	h.cfg.Database = config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "products.db")}

	assert.Equal(t, ExitOK, h.run("search", "bag", "--save", "--db-keyword", "bags"))
	assert.Contains(t, h.stderr.String(), "Saved 3 products.")
}

func TestCategories(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpSearch: `{"success": true, "data": {"result": {"total": 1, "result": [
			{"goodsId": "1", "category": {"category": "Bags", "subcategory": "Totes"}}
		]}}}`,
	})

	require.Equal(t, ExitOK, h.run("categories", "bag"))
	var facets map[string][]string
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &facets))
	assert.Equal(t, []string{"Bags"}, facets["categories"])
	assert.Equal(t, []string{"Totes"}, facets["subcategories"])
}

func TestConsole(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{rakumart.OpSearch: searchBody})
	h.stdin = "show 3\nquit\n"

	require.Equal(t, ExitOK, h.run("console", "bag", "--no-detail"))
	assert.Contains(t, h.stdout.String(), "Japanese Title: Suitcase")
	assert.Contains(t, h.stdout.String(), "Goodbye!")
}

func TestConsole_NoProducts(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpSearch: `{"success": true, "data": {"result": {"total": 0, "result": []}}}`,
	})

	assert.Equal(t, ExitOK, h.run("console", "bag"))
	assert.Contains(t, h.stdout.String(), "No products found.")
}

func TestDetail(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpDetail: `{"success": true, "data": {"images": ["a.jpg", "b.jpg"], "description": "<p>desc</p>"}}`,
	})

	assert.Equal(t, ExitUsage, h.run("detail"))
	assert.Contains(t, h.stderr.String(), "Error: --goods-id is required")

	require.Equal(t, ExitOK, h.run("detail", "--goods-id", "42", "--description-only"))
	assert.Equal(t, "<p>desc</p>\n", h.stdout.String())
	assert.Equal(t, "42", h.api.callsTo(rakumart.OpDetail)[0]["goodsId"])
	assert.Equal(t, "1688", h.api.callsTo(rakumart.OpDetail)[0]["shopType"])

	require.Equal(t, ExitOK, h.run("detail", "--goods-id", "42", "--images-only"))
	var images []string
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &images))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, images)

	require.Equal(t, ExitOK, h.run("detail", "--goods-id", "42", "--images-and-description"))
	var both map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &both))
	assert.Equal(t, "<p>desc</p>", both["description"])
}

func TestDetail_Failure(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpDetail: `{"success": false, "code": 404, "msg": "goods not found"}`,
	})

	assert.Equal(t, ExitEmpty, h.run("detail", "--goods-id", "42"))
	assert.Contains(t, h.stderr.String(), "No detail returned.")
}

func TestDetail_EndpointOverride(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpDetail: `{"success": true, "data": {"images": [], "description": "ok"}}`,
	})
	good := h.cfg.API.Endpoints.Detail
	h.cfg.API.Endpoints.Detail = "http://127.0.0.1:1/detail"

	require.Equal(t, ExitOK, h.run("detail", "--goods-id", "1", "--api-url", good, "--description-only"))
	assert.Equal(t, "ok\n", h.stdout.String())
}

func TestImage(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpImageID: `{"success": true, "data": {"imageId": "img-9", "link": "https://s.1688.com/img-9"}}`,
	})

	assert.Equal(t, ExitUsage, h.run("image"))

	require.Equal(t, ExitOK, h.run("image", "--image-base64", "aGVsbG8=", "--image-id-only"))
	assert.Equal(t, "img-9\n", h.stdout.String())

	path := filepath.Join(t.TempDir(), "pic.jpg")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
	require.Equal(t, ExitOK, h.run("image", "--image-file", path, "--link-only"))
	assert.Equal(t, "https://s.1688.com/img-9\n", h.stdout.String())
	assert.Equal(t, "aGVsbG8=", h.api.callsTo(rakumart.OpImageID)[1]["imageBase64"])
}

func TestLogisticsAndTags(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpLogistics: `{"success": true, "data": [{"id": 7, "name": "EMS"}, {"id": "8", "name": "OCS"}]}`,
		rakumart.OpTags:      `{"success": true, "data": [{"type": "FBA", "japanese": "FBAラベル"}]}`,
	})

	require.Equal(t, ExitOK, h.run("logistics", "--names-only"))
	assert.Equal(t, "EMS\nOCS\n", h.stdout.String())

	require.Equal(t, ExitOK, h.run("logistics", "--ids-only"))
	assert.Equal(t, "7\n8\n", h.stdout.String())

	require.Equal(t, ExitOK, h.run("tags", "--types-only"))
	assert.Equal(t, "FBA\n", h.stdout.String())

	require.Equal(t, ExitOK, h.run("tags", "--translations-only"))
	assert.Equal(t, "FBAラベル\n", h.stdout.String())
}

func TestLogistics_Empty(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpLogistics: `{"success": true, "data": []}`,
	})

	assert.Equal(t, ExitEmpty, h.run("logistics"))
	assert.Contains(t, h.stderr.String(), "No data returned.")
}

func TestOrder(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpCreateOrder: `{"success": true, "data": {"order_sn": "O1", "status": "10"}}`,
	})
	goods := `[{"link": "https://detail.1688.com/offer/1.html", "price": "12.5", "num": 2}]`

	assert.Equal(t, ExitUsage, h.run("order", "--purchase-order", "P1", "--status", "10"))
	assert.Contains(t, h.stderr.String(), "Error: --goods is required")

	assert.Equal(t, ExitUsage, h.run("order", "--purchase-order", "P1", "--status", "10", "--goods", "[{"))
	assert.Contains(t, h.stderr.String(), "--goods is not valid JSON")

	assert.Equal(t, ExitUsage, h.run("order", "--purchase-order", "P1", "--status", "30", "--goods", goods))
	assert.Empty(t, h.api.callsTo(rakumart.OpCreateOrder))

	require.Equal(t, ExitOK, h.run("order", "--purchase-order", "P1", "--status", "10", "--goods", goods, "--order-sn-only"))
	assert.Equal(t, "O1\n", h.stdout.String())

	calls := h.api.callsTo(rakumart.OpCreateOrder)
	require.Len(t, calls, 1)
	assert.Equal(t, "P1", calls[0]["purchase_order"])
	assert.Equal(t, "https://detail.1688.com/offer/1.html", calls[0]["goods[0][link]"])
	assert.Equal(t, "2", calls[0]["goods[0][num]"])

	require.Equal(t, ExitOK, h.run("order", "--purchase-order", "P1", "--status", "10", "--goods", goods, "--status-only"))
	assert.Equal(t, "10\n", h.stdout.String())
}

func TestUpdateStatusAndCancel(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpUpdateOrderStatus: `{"success": true, "code": 0, "msg": "ok"}`,
		rakumart.OpCancelOrder:       `{"success": true, "code": 0, "msg": "ok"}`,
	})

	require.Equal(t, ExitOK, h.run("update-status", "--order-sn", "O1", "--status", "20", "--order-sn-only"))
	assert.Equal(t, "O1\n", h.stdout.String())

	require.Equal(t, ExitOK, h.run("cancel", "--order-sn", "O1"))
	assert.Equal(t, "Order O1 cancelled.\n", h.stdout.String())

	require.Equal(t, ExitOK, h.run("cancel", "--order-sn", "O1", "--raw"))
	assert.Contains(t, h.stdout.String(), `"success": true`)
}

func TestOrders_Summary(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpOrderList: `{"success": true, "data": {"total": 2, "data": [
			{"order_sn": "O1", "status": "10", "purchase_order": "P1", "created_at": "2024-01-02"},
			{"order_sn": "O2", "status": "20"}
		]}}`,
	})

	require.Equal(t, ExitOK, h.run("orders", "--summary", "--page-size", "5"))
	text := h.stdout.String()
	assert.Contains(t, text, "ORDER_SN")
	assert.Contains(t, text, "O1")
	assert.Contains(t, text, "2024-01-02")
	assert.Contains(t, text, "2 rows")
	assert.Equal(t, "5", h.api.callsTo(rakumart.OpOrderList)[0]["pageSize"])
}

func TestOrderDetail_ItemsOnly(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpOrderDetail: `{"success": true, "data": {"order_sn": "O1", "order_detail": [{"sku": "A"}]}}`,
		rakumart.OpStockList:   `{"success": true, "data": {"list": []}}`,
	})

	require.Equal(t, ExitOK, h.run("order-detail", "--order-sn", "O1", "--items-only"))
	assert.Contains(t, h.stdout.String(), `"sku": "A"`)

	assert.Equal(t, ExitEmpty, h.run("stock"))
	assert.Contains(t, h.stderr.String(), "No items in response.")
}

func TestPorder(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpCreatePorder: `{"success": true, "data": {"porder_sn": "PO1"}}`,
	})
	detail := `[{"order_sn": "O1", "sorting_id": "S1", "num": 1}]`

	assert.Equal(t, ExitUsage, h.run("porder", "--status", "10", "--logistics-id", "7", "--porder-detail", detail,
		"--receiver-address", "{oops"))
	assert.Contains(t, h.stderr.String(), "--receiver-address is not valid JSON")
	assert.Empty(t, h.api.callsTo(rakumart.OpCreatePorder))

	require.Equal(t, ExitOK, h.run("porder", "--status", "10", "--logistics-id", "7", "--porder-detail", detail,
		"--porder-sn-only"))
	assert.Equal(t, "PO1\n", h.stdout.String())
}

func TestTrack_Timeline(t *testing.T) {
	h := newHarness(t, map[rakumart.Operation]string{
		rakumart.OpLogisticsTrack: `{"success": true, "data": [
			{"time": "2024-03-01 10:00", "address": "Tokyo", "context": "Delivered"},
			{"time": "2024-02-28 09:00", "address": "Osaka", "status": "In transit"}
		]}`,
	})

	assert.Equal(t, ExitUsage, h.run("ltrack"))

	require.Equal(t, ExitOK, h.run("ltrack", "--express-no", "EX1", "--timeline-only"))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Tokyo")
	assert.Contains(t, lines[0], "Delivered")
	assert.Contains(t, lines[1], "In transit")
	assert.Equal(t, "EX1", h.api.callsTo(rakumart.OpLogisticsTrack)[0]["express_no"])
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)

	d, err = parseTimeout("500ms")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	_, err = parseTimeout("0")
	assert.Error(t, err)
	_, err = parseTimeout("-1s")
	assert.Error(t, err)
}
