package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/internal/delivery/console"
	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/filter"
	"github.com/run651/rakumart-1688/internal/infrastructure/cache"
	"github.com/run651/rakumart-1688/internal/infrastructure/persistence"
	"github.com/run651/rakumart-1688/internal/infrastructure/rakumart"
	"github.com/run651/rakumart-1688/internal/usecase"
)

// catalog wires a CatalogService around client. The database is opened only
// when withDB is set and a DSN is configured. The returned func releases
// everything that was opened.
func (a *App) catalog(ctx context.Context, client *rakumart.Client, withDB bool) (*usecase.CatalogService, func(), error) {
	var closers []func() error

	var detailCache domain.CacheRepository
	store, err := cache.New(ctx, a.cfg.Cache)
	if err != nil {
		a.log.Warn("detail cache disabled", zap.Error(err))
	} else {
		detailCache = store
		closers = append(closers, store.Close)
	}

	var products domain.ProductRepository
	if withDB && a.cfg.Database.DSN != "" {
		db, err := persistence.NewDatabase(a.cfg.Database, a.log, a.cfg.Log.Level)
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return nil, nil, err
		}
		products = persistence.NewProductRepository(db.DB, a.log)
		closers = append(closers, db.Close)
	}

	svc := usecase.NewCatalogService(client, detailCache, products, a.log, usecase.CatalogServiceConfig{
		DetailTTL:   a.cfg.Cache.TTL,
		DetailLimit: a.cfg.Search.DetailLimit,
		ShopType:    a.cfg.API.ShopType,
	})
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				a.log.Warn("close failed", zap.Error(err))
			}
		}
	}
	return svc, cleanup, nil
}

// searchFlags registers the request and filter flags shared by search-like
// commands.
type searchFlags struct {
	req        domain.SearchRequest
	orderKey   string
	orderValue string
}

func (sf *searchFlags) register(fs *pflag.FlagSet, pageSize int, shopType string) {
	fs.IntVar(&sf.req.Page, "page", 1, "page number")
	fs.IntVar(&sf.req.PageSize, "page-size", pageSize, "items per page")
	fs.StringVar(&sf.req.ShopType, "shop-type", shopType, "marketplace to search")
}

func (sf *searchFlags) request(keyword string) (domain.SearchRequest, error) {
	req := sf.req
	req.Keywords = keyword
	if sf.orderValue != "" && sf.orderValue != "asc" && sf.orderValue != "desc" {
		return req, fmt.Errorf("--order-value must be asc or desc, got %q", sf.orderValue)
	}
	if sf.orderKey != "" {
		req.OrderBy = &domain.SortOrder{Key: sf.orderKey, Value: sf.orderValue}
	}
	return req, nil
}

func (a *App) runSearch(ctx context.Context, args []string) int {
	var (
		cf          callFlags
		sf          searchFlags
		fc          filter.Config
		detailURL   string
		noDetail    bool
		withDetail  bool
		detailLimit int
		showAll     bool
		showEmpty   bool
		displayAll  bool
		save        bool
		dbKeyword   string

		maxLength, maxWidth, maxHeight, maxWeight float64
		jpyMin, jpyMax, maxShippingFee            float64
		minInventory, maxDeliveryDays             int
	)
	fs := a.flagSet("search", &cf)
	sf.register(fs, a.cfg.Search.PageSize, a.cfg.API.ShopType)
	fs.StringVar(&sf.req.PriceMin, "price-min", "", "minimum source price, sent to the API")
	fs.StringVar(&sf.req.PriceMax, "price-max", "", "maximum source price, sent to the API")
	fs.StringVar(&sf.orderKey, "order-key", "", "sort field")
	fs.StringVar(&sf.orderValue, "order-value", "", "sort direction (asc|desc)")
	fs.StringSliceVar(&fc.Categories, "categories", nil, "allowed main categories")
	fs.StringSliceVar(&fc.Subcategories, "subcategories", nil, "allowed subcategories")
	fs.StringSliceVar(&fc.SubSubcategories, "sub-subcategories", nil, "allowed sub-subcategories")
	fs.Float64Var(&maxLength, "max-length", 0, "maximum length (cm)")
	fs.Float64Var(&maxWidth, "max-width", 0, "maximum width (cm)")
	fs.Float64Var(&maxHeight, "max-height", 0, "maximum height (cm)")
	fs.Float64Var(&maxWeight, "max-weight", 0, "maximum weight (g)")
	fs.Float64Var(&jpyMin, "jpy-price-min", 0, "minimum price in JPY")
	fs.Float64Var(&jpyMax, "jpy-price-max", 0, "maximum price in JPY")
	fs.Float64Var(&fc.ExchangeRate, "exchange-rate", a.cfg.Search.ExchangeRate, "RMB to JPY rate")
	fs.BoolVar(&fc.Strict, "strict", false, "drop items missing data for an active filter")
	fs.IntVar(&minInventory, "min-inventory", 0, "minimum inventory")
	fs.IntVar(&maxDeliveryDays, "max-delivery-days", 0, "maximum delivery days")
	fs.Float64Var(&maxShippingFee, "max-shipping-fee", 0, "maximum shipping fee")
	fs.BoolVar(&withDetail, "with-detail", a.cfg.Search.WithDetail, "fetch detail for the results")
	fs.BoolVar(&noDetail, "no-detail", false, "do not fetch detail")
	fs.IntVar(&detailLimit, "detail-limit", a.cfg.Search.DetailLimit, "maximum detail fetches (0 for all)")
	fs.StringVar(&detailURL, "detail-api-url", "", "override the detail endpoint URL")
	fs.BoolVar(&showAll, "show-all-fields", false, "print a field presence analysis")
	fs.BoolVar(&showEmpty, "show-empty-fields", false, "include fields that are always empty in the analysis")
	fs.BoolVar(&displayAll, "display-all", false, "print a table with statistics")
	fs.BoolVar(&save, "save", false, "save the results to the configured database")
	fs.StringVar(&dbKeyword, "db-keyword", "", "keyword recorded with saved products (default: the search keyword)")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}

	keyword := joinArgs(fs.Args())
	if keyword == "" {
		fmt.Fprintln(a.stderr, "Error: a keyword is required")
		return ExitUsage
	}
	req, err := sf.request(keyword)
	if err != nil {
		return a.setupFailed(err)
	}
	for name, v := range map[string]float64{
		"max-length": maxLength, "max-width": maxWidth, "max-height": maxHeight, "max-weight": maxWeight,
		"jpy-price-min": jpyMin, "jpy-price-max": jpyMax, "max-shipping-fee": maxShippingFee,
		"exchange-rate": fc.ExchangeRate,
	} {
		if fs.Changed(name) && (math.IsNaN(v) || math.IsInf(v, 0)) {
			fmt.Fprintf(a.stderr, "Error: --%s must be a finite number\n", name)
			return ExitUsage
		}
	}
	fc.MaxLength = changedFloat(fs, "max-length", maxLength)
	fc.MaxWidth = changedFloat(fs, "max-width", maxWidth)
	fc.MaxHeight = changedFloat(fs, "max-height", maxHeight)
	fc.MaxWeight = changedFloat(fs, "max-weight", maxWeight)
	fc.PriceMin = changedFloat(fs, "jpy-price-min", jpyMin)
	fc.PriceMax = changedFloat(fs, "jpy-price-max", jpyMax)
	fc.MaxShippingFee = changedFloat(fs, "max-shipping-fee", maxShippingFee)
	fc.MinInventory = changedInt(fs, "min-inventory", minInventory)
	fc.MaxDeliveryDays = changedInt(fs, "max-delivery-days", maxDeliveryDays)

	cf.overrides = map[rakumart.Operation]string{rakumart.OpDetail: detailURL}
	client, err := a.client(&cf, rakumart.OpSearch)
	if err != nil {
		return a.setupFailed(err)
	}
	svc, cleanup, err := a.catalog(ctx, client, save)
	if err != nil {
		fmt.Fprintln(a.stderr, "Error: database:", err)
		return ExitEmpty
	}
	defer cleanup()

	outcome, err := svc.Search(ctx, usecase.SearchOptions{
		Request:     req,
		Filter:      fc,
		WithDetail:  withDetail && !noDetail,
		DetailLimit: detailLimit,
		Save:        save,
		SaveKeyword: dbKeyword,
	})
	if err != nil {
		return a.failed("results", err)
	}
	if cf.verbose {
		fmt.Fprintf(a.stderr, "total %d, fetched %d\n", outcome.Total, outcome.Fetched)
		for _, st := range outcome.Stages {
			if st.Active {
				fmt.Fprintf(a.stderr, "  %-13s kept %d\n", st.Stage, st.Kept)
			}
		}
	}
	if len(outcome.Products) == 0 {
		fmt.Fprintln(a.stderr, "No products matched.")
		return ExitEmpty
	}

	code := ExitOK
	switch {
	case showAll:
		printFieldAnalysis(a.stdout, outcome.Products, showEmpty)
	case displayAll:
		printTable(a.stdout, outcome.Products)
		printSummary(a.stdout, usecase.Summarize(outcome.Products, 5))
	default:
		code = a.printJSON(outcome.Products)
	}

	if save {
		if outcome.SaveError != nil {
			fmt.Fprintln(a.stderr, "Save failed:", outcome.SaveError)
		} else {
			fmt.Fprintf(a.stderr, "Saved %d products.\n", outcome.Saved)
		}
	}
	return code
}

func (a *App) runCategories(ctx context.Context, args []string) int {
	var (
		cf callFlags
		sf searchFlags
	)
	fs := a.flagSet("categories", &cf)
	sf.register(fs, a.cfg.Search.PageSize, a.cfg.API.ShopType)
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	keyword := joinArgs(fs.Args())
	if keyword == "" {
		fmt.Fprintln(a.stderr, "Error: a keyword is required")
		return ExitUsage
	}
	req, _ := sf.request(keyword)

	client, err := a.client(&cf, rakumart.OpSearch)
	if err != nil {
		return a.setupFailed(err)
	}
	svc := usecase.NewCatalogService(client, nil, nil, a.log, usecase.CatalogServiceConfig{ShopType: a.cfg.API.ShopType})
	facets, err := svc.Categories(ctx, req)
	if err != nil {
		return a.failed("categories", err)
	}
	return a.printJSON(facets)
}

func (a *App) runConsole(ctx context.Context, args []string) int {
	var (
		cf          callFlags
		sf          searchFlags
		withDetail  bool
		noDetail    bool
		detailLimit int
	)
	fs := a.flagSet("console", &cf)
	sf.register(fs, 20, a.cfg.API.ShopType)
	fs.BoolVar(&withDetail, "with-detail", a.cfg.Search.WithDetail, "fetch detail for the results")
	fs.BoolVar(&noDetail, "no-detail", false, "do not fetch detail")
	fs.IntVar(&detailLimit, "detail-limit", 10, "maximum detail fetches (0 for all)")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	keyword := joinArgs(fs.Args())
	if keyword == "" {
		fmt.Fprintln(a.stderr, "Error: a keyword is required")
		return ExitUsage
	}
	req, _ := sf.request(keyword)

	client, err := a.client(&cf, rakumart.OpSearch)
	if err != nil {
		return a.setupFailed(err)
	}
	svc, cleanup, err := a.catalog(ctx, client, false)
	if err != nil {
		return a.setupFailed(err)
	}
	defer cleanup()

	outcome, err := svc.Search(ctx, usecase.SearchOptions{
		Request:     req,
		WithDetail:  withDetail && !noDetail,
		DetailLimit: detailLimit,
	})
	if err != nil {
		return a.failed("results", err)
	}
	if len(outcome.Products) == 0 {
		fmt.Fprintln(a.stdout, "No products found.")
		return ExitOK
	}
	if err := console.New(outcome.Products, a.stdin, a.stdout).Run(ctx); err != nil {
		fmt.Fprintln(a.stderr, "Error:", err)
		return ExitEmpty
	}
	return ExitOK
}

func (a *App) runDetail(ctx context.Context, args []string) int {
	var (
		cf                   callFlags
		goodsID, shopType    string
		descOnly, imagesOnly bool
		both                 bool
	)
	fs := a.flagSet("detail", &cf)
	fs.StringVar(&goodsID, "goods-id", "", "product id (required)")
	fs.StringVar(&shopType, "shop-type", a.cfg.API.ShopType, "marketplace of the product")
	fs.BoolVar(&descOnly, "description-only", false, "print only the HTML description")
	fs.BoolVar(&imagesOnly, "images-only", false, "print only the image URLs")
	fs.BoolVar(&both, "images-and-description", false, "print images and description together")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "goods-id"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpDetail)
	if err != nil {
		return a.setupFailed(err)
	}
	detail, err := client.Detail(ctx, shopType, goodsID)
	if err != nil || detail == nil {
		return a.failed("detail", err)
	}

	images := detail.Images
	if images == nil {
		images = []string{}
	}
	switch {
	case both:
		return a.printJSON(map[string]any{"images": images, "description": detail.Description})
	case descOnly:
		fmt.Fprintln(a.stdout, detail.Description)
		return ExitOK
	case imagesOnly:
		return a.printJSON(images)
	}
	return a.printJSON(detail)
}

func (a *App) runImage(ctx context.Context, args []string) int {
	var (
		cf               callFlags
		encoded, file    string
		idOnly, linkOnly bool
	)
	fs := a.flagSet("image", &cf)
	fs.StringVar(&encoded, "image-base64", "", "base64 encoded image")
	fs.StringVar(&file, "image-file", "", "read the image from a file instead")
	fs.BoolVar(&idOnly, "image-id-only", false, "print only the image id")
	fs.BoolVar(&linkOnly, "link-only", false, "print only the search link")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return a.setupFailed(err)
		}
		encoded = base64.StdEncoding.EncodeToString(data)
	}
	if encoded == "" {
		fmt.Fprintln(a.stderr, "Error: --image-base64 or --image-file is required")
		return ExitUsage
	}

	client, err := a.client(&cf, rakumart.OpImageID)
	if err != nil {
		return a.setupFailed(err)
	}
	result, err := client.ImageID(ctx, encoded)
	if err != nil || result == nil {
		return a.failed("image ID", err)
	}
	switch {
	case idOnly:
		return a.printValue("image ID", result.ImageID)
	case linkOnly:
		return a.printValue("link", result.Link)
	}
	return a.printJSON(result)
}

func (a *App) runLogistics(ctx context.Context, args []string) int {
	var (
		cf                 callFlags
		namesOnly, idsOnly bool
	)
	fs := a.flagSet("logistics", &cf)
	fs.BoolVar(&namesOnly, "names-only", false, "print only carrier names")
	fs.BoolVar(&idsOnly, "ids-only", false, "print only carrier ids")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	client, err := a.client(&cf, rakumart.OpLogistics)
	if err != nil {
		return a.setupFailed(err)
	}
	rows, err := client.Logistics(ctx)
	if err != nil || len(rows) == 0 {
		return a.failed("data", err)
	}
	switch {
	case namesOnly:
		for _, row := range rows {
			fmt.Fprintln(a.stdout, row.Name)
		}
		return ExitOK
	case idsOnly:
		for _, row := range rows {
			fmt.Fprintln(a.stdout, row.ID.String())
		}
		return ExitOK
	}
	return a.printJSON(rows)
}

func (a *App) runTags(ctx context.Context, args []string) int {
	var (
		cf                          callFlags
		typesOnly, translationsOnly bool
	)
	fs := a.flagSet("tags", &cf)
	fs.BoolVar(&typesOnly, "types-only", false, "print only tag types")
	fs.BoolVar(&translationsOnly, "translations-only", false, "print only Japanese names")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	client, err := a.client(&cf, rakumart.OpTags)
	if err != nil {
		return a.setupFailed(err)
	}
	rows, err := client.Tags(ctx)
	if err != nil || len(rows) == 0 {
		return a.failed("data", err)
	}
	switch {
	case typesOnly:
		for _, row := range rows {
			fmt.Fprintln(a.stdout, row.Type)
		}
		return ExitOK
	case translationsOnly:
		for _, row := range rows {
			fmt.Fprintln(a.stdout, row.Japanese)
		}
		return ExitOK
	}
	return a.printJSON(rows)
}

func changedFloat(fs *pflag.FlagSet, name string, v float64) *float64 {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}

func changedInt(fs *pflag.FlagSet, name string, v int) *int {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}
