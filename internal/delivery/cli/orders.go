package cli

import (
	"context"
	"fmt"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/infrastructure/rakumart"
)

var (
	orderColumns  = []string{"order_sn", "status", "purchase_order", "created_at"}
	porderColumns = []string{"porder_sn", "status", "logistics_id", "created_at"}
)

func (a *App) runOrder(ctx context.Context, args []string) int {
	var (
		cf                 callFlags
		req                domain.OrderRequest
		goods              string
		snOnly, statusOnly bool
	)
	fs := a.flagSet("order", &cf)
	fs.StringVar(&req.PurchaseOrder, "purchase-order", "", "your own order number (required)")
	fs.StringVar(&req.Status, "status", "", "10 provisional, 20 official (required)")
	fs.StringVar(&goods, "goods", "", "JSON array of goods (required)")
	fs.StringVar(&req.LogisticsID, "logistics-id", "", "desired logistics carrier")
	fs.StringVar(&req.Remark, "remark", "", "order remark")
	fs.BoolVar(&snOnly, "order-sn-only", false, "print only the order number")
	fs.BoolVar(&statusOnly, "status-only", false, "print only the order status")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "purchase-order", "status", "goods"); !ok {
		return code
	}
	if code, ok := a.decodeArg("goods", goods, &req.Goods); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpCreateOrder)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.CreateOrder(ctx, req)
	if err != nil || payload.IsEmpty() {
		return a.failed("order", err)
	}
	switch {
	case snOnly:
		return a.printValue("order_sn", payload.String("order_sn"))
	case statusOnly:
		return a.printValue("status", payload.String("status"))
	}
	return a.printJSON(payload)
}

func (a *App) runUpdateStatus(ctx context.Context, args []string) int {
	var (
		cf              callFlags
		orderSN, status string
		snOnly          bool
	)
	fs := a.flagSet("update-status", &cf)
	fs.StringVar(&orderSN, "order-sn", "", "order number (required)")
	fs.StringVar(&status, "status", "", "10 provisional, 20 official (required)")
	fs.BoolVar(&snOnly, "order-sn-only", false, "print only the order number")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "order-sn", "status"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpUpdateOrderStatus)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.UpdateOrderStatus(ctx, orderSN, status)
	if err != nil || payload.IsEmpty() {
		return a.failed("status update", err)
	}
	if snOnly {
		sn := payload.String("order_sn")
		if sn == "" {
			sn = orderSN
		}
		return a.printValue("order_sn", sn)
	}
	return a.printJSON(payload)
}

func (a *App) runCancel(ctx context.Context, args []string) int {
	var (
		cf      callFlags
		orderSN string
		raw     bool
	)
	fs := a.flagSet("cancel", &cf)
	fs.StringVar(&orderSN, "order-sn", "", "order number (required)")
	fs.BoolVar(&raw, "raw", false, "print the API response as JSON")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "order-sn"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpCancelOrder)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.CancelOrder(ctx, orderSN)
	if err != nil || payload.IsEmpty() {
		return a.failed("cancellation", err)
	}
	if raw {
		return a.printJSON(payload)
	}
	fmt.Fprintf(a.stdout, "Order %s cancelled.\n", orderSN)
	return ExitOK
}

func (a *App) runOrders(ctx context.Context, args []string) int {
	var (
		cf      callFlags
		req     domain.ListRequest
		summary bool
	)
	fs := a.flagSet("orders", &cf)
	fs.IntVar(&req.Page, "page", 1, "page number")
	fs.IntVar(&req.PageSize, "page-size", 10, "items per page")
	fs.BoolVar(&summary, "summary", false, "print a summary table")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpOrderList)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.ListOrders(ctx, req)
	if err != nil || payload.IsEmpty() {
		return a.failed("orders", err)
	}
	if summary {
		return a.printRows(payload.Items(), orderColumns)
	}
	return a.printJSON(payload)
}

func (a *App) runOrderDetail(ctx context.Context, args []string) int {
	var (
		cf        callFlags
		orderSN   string
		itemsOnly bool
	)
	fs := a.flagSet("order-detail", &cf)
	fs.StringVar(&orderSN, "order-sn", "", "order number (required)")
	fs.BoolVar(&itemsOnly, "items-only", false, "print only the order lines")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "order-sn"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpOrderDetail)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.OrderDetail(ctx, orderSN)
	if err != nil || payload.IsEmpty() {
		return a.failed("order detail", err)
	}
	if itemsOnly {
		return a.printItems(payload.Items("order_detail"))
	}
	return a.printJSON(payload)
}

func (a *App) runStock(ctx context.Context, args []string) int {
	var (
		cf  callFlags
		raw bool
	)
	fs := a.flagSet("stock", &cf)
	fs.BoolVar(&raw, "raw", false, "print the API response as JSON")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpStockList)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.StockList(ctx)
	if err != nil || payload.IsEmpty() {
		return a.failed("stock", err)
	}
	if raw {
		return a.printJSON(payload)
	}
	return a.printItems(payload.Items())
}

func (a *App) runPorder(ctx context.Context, args []string) int {
	var (
		cf                         callFlags
		req                        domain.PorderRequest
		detail, receiver, importer string
		files                      string
		snOnly                     bool
	)
	fs := a.flagSet("porder", &cf)
	fs.StringVar(&req.Status, "status", "", "10 provisional, 20 official (required)")
	fs.StringVar(&req.LogisticsID, "logistics-id", "", "logistics carrier (required)")
	fs.StringVar(&detail, "porder-detail", "", "JSON array of order lines to ship (required)")
	fs.StringVar(&req.ClientRemark, "client-remark", "", "remark for the whole delivery order")
	fs.StringVar(&receiver, "receiver-address", "", "JSON object with the receiver address")
	fs.StringVar(&importer, "importer-address", "", "JSON object with the importer address")
	fs.StringVar(&files, "porder-file", "", "JSON array of attachments")
	fs.BoolVar(&snOnly, "porder-sn-only", false, "print only the delivery order number")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "status", "logistics-id", "porder-detail"); !ok {
		return code
	}
	if code, ok := a.decodeArg("porder-detail", detail, &req.Detail); !ok {
		return code
	}
	if receiver != "" {
		if code, ok := a.decodeArg("receiver-address", receiver, &req.ReceiverAddress); !ok {
			return code
		}
	}
	if importer != "" {
		if code, ok := a.decodeArg("importer-address", importer, &req.ImporterAddress); !ok {
			return code
		}
	}
	if files != "" {
		if code, ok := a.decodeArg("porder-file", files, &req.Files); !ok {
			return code
		}
	}

	client, err := a.client(&cf, rakumart.OpCreatePorder)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.CreatePorder(ctx, req)
	if err != nil || payload.IsEmpty() {
		return a.failed("delivery order", err)
	}
	if snOnly {
		return a.printValue("porder_sn", payload.String("porder_sn"))
	}
	return a.printJSON(payload)
}

func (a *App) runPorderUpdateStatus(ctx context.Context, args []string) int {
	var (
		cf               callFlags
		porderSN, status string
	)
	fs := a.flagSet("porder-update-status", &cf)
	fs.StringVar(&porderSN, "porder-sn", "", "delivery order number (required)")
	fs.StringVar(&status, "status", "", "10 provisional, 20 official (required)")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "porder-sn", "status"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpUpdatePorderStatus)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.UpdatePorderStatus(ctx, porderSN, status)
	if err != nil || payload.IsEmpty() {
		return a.failed("status update", err)
	}
	return a.printJSON(payload)
}

func (a *App) runPorderCancel(ctx context.Context, args []string) int {
	var (
		cf       callFlags
		porderSN string
	)
	fs := a.flagSet("porder-cancel", &cf)
	fs.StringVar(&porderSN, "porder-sn", "", "delivery order number (required)")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "porder-sn"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpCancelPorder)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.CancelPorder(ctx, porderSN)
	if err != nil || payload.IsEmpty() {
		return a.failed("cancellation", err)
	}
	return a.printJSON(payload)
}

func (a *App) runPorders(ctx context.Context, args []string) int {
	var (
		cf      callFlags
		req     domain.ListRequest
		summary bool
	)
	fs := a.flagSet("porders", &cf)
	fs.IntVar(&req.Page, "page", 1, "page number")
	fs.IntVar(&req.PageSize, "page-size", 10, "items per page")
	fs.StringVar(&req.PorderSN, "porder-sn", "", "only this delivery order")
	fs.BoolVar(&summary, "summary", false, "print a summary table")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpPorderList)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.ListPorders(ctx, req)
	if err != nil || payload.IsEmpty() {
		return a.failed("delivery orders", err)
	}
	if summary {
		return a.printRows(payload.Items(), porderColumns)
	}
	return a.printJSON(payload)
}

func (a *App) runPorderDetail(ctx context.Context, args []string) int {
	var (
		cf        callFlags
		porderSN  string
		itemsOnly bool
	)
	fs := a.flagSet("porder-detail", &cf)
	fs.StringVar(&porderSN, "porder-sn", "", "delivery order number (required)")
	fs.BoolVar(&itemsOnly, "items-only", false, "print only the delivery order lines")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "porder-sn"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpPorderDetail)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.PorderDetail(ctx, porderSN)
	if err != nil || payload.IsEmpty() {
		return a.failed("delivery order detail", err)
	}
	if itemsOnly {
		return a.printItems(payload.Items("porder_detail"))
	}
	return a.printJSON(payload)
}

func (a *App) runTrack(ctx context.Context, args []string) int {
	var (
		cf           callFlags
		expressNo    string
		timelineOnly bool
	)
	fs := a.flagSet("ltrack", &cf)
	fs.StringVar(&expressNo, "express-no", "", "international tracking number (required)")
	fs.BoolVar(&timelineOnly, "timeline-only", false, "print only time and place of each event")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if code, ok := a.required(fs, "express-no"); !ok {
		return code
	}

	client, err := a.client(&cf, rakumart.OpLogisticsTrack)
	if err != nil {
		return a.setupFailed(err)
	}
	payload, err := client.TrackLogistics(ctx, expressNo)
	if err != nil || payload.IsEmpty() {
		return a.failed("tracking data", err)
	}
	if timelineOnly {
		events := payload.Items()
		if len(events) == 0 {
			fmt.Fprintln(a.stderr, "No tracking events in response.")
			return ExitEmpty
		}
		printTimeline(a.stdout, events)
		return ExitOK
	}
	return a.printJSON(payload)
}

// printItems prints a list as JSON, failing when it is empty.
func (a *App) printItems(items []map[string]any) int {
	if len(items) == 0 {
		fmt.Fprintln(a.stderr, "No items in response.")
		return ExitEmpty
	}
	return a.printJSON(items)
}

// printRows prints a summary table, failing when there are no rows.
func (a *App) printRows(items []map[string]any, columns []string) int {
	if len(items) == 0 {
		fmt.Fprintln(a.stderr, "No items in response.")
		return ExitEmpty
	}
	printRecords(a.stdout, items, columns)
	return ExitOK
}
