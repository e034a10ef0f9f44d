package rakumart

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/internal/domain"
)

// CreateOrder places a purchase order.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f := c.signed()
	f.Add("purchase_order", req.PurchaseOrder)
	f.Add("status", req.Status)
	f.AddIf("logistics_id", req.LogisticsID)
	f.AddIf("remark", req.Remark)
	for i, g := range req.Goods {
		p := key("goods", i)
		f.Add(key(p, "link"), g.Link)
		f.Add(key(p, "price"), g.Price.String())
		f.Add(key(p, "num"), g.Num.String())
		addOptional(&f, key(p, "pic"), g.Pic)
		addOptional(&f, key(p, "remark"), g.Remark)
		addOptional(&f, key(p, "fba"), g.FBA)
		addOptional(&f, key(p, "asin"), g.ASIN)
		for j, prop := range g.Props {
			f.Add(key(p, "props", j, "key"), prop.Key)
			f.Add(key(p, "props", j, "value"), prop.Value)
		}
		for j, opt := range g.Option {
			f.Add(key(p, "option", j, "name"), opt.Name)
			f.Add(key(p, "option", j, "num"), opt.Num.String())
		}
		for j, tag := range g.Tags {
			f.Add(key(p, "tags", j, "type"), tag.Type)
			f.Add(key(p, "tags", j, "no"), tag.No)
			addOptional(&f, key(p, "tags", j, "goods_no"), tag.GoodsNo)
		}
	}
	return c.dataPayload(ctx, OpCreateOrder, f)
}

// UpdateOrderStatus moves an order between provisional and official.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderSN, status string) (*domain.Payload, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, err
	}
	f := c.signed()
	f.Add("order_sn", orderSN)
	f.Add("status", status)
	return c.ackPayload(ctx, OpUpdateOrderStatus, f)
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, orderSN string) (*domain.Payload, error) {
	f := c.signed()
	f.Add("order_sn", orderSN)
	return c.ackPayload(ctx, OpCancelOrder, f)
}

// ListOrders pages through orders.
func (c *Client) ListOrders(ctx context.Context, req domain.ListRequest) (*domain.Payload, error) {
	req = req.Normalize()
	f := c.signed()
	f.Add("page", strconv.Itoa(req.Page))
	f.Add("pageSize", strconv.Itoa(req.PageSize))
	return c.dataPayload(ctx, OpOrderList, f)
}

// OrderDetail fetches one order.
func (c *Client) OrderDetail(ctx context.Context, orderSN string) (*domain.Payload, error) {
	f := c.signed()
	f.Add("order_sn", orderSN)
	return c.dataPayload(ctx, OpOrderDetail, f)
}

// StockList lists warehouse stock.
func (c *Client) StockList(ctx context.Context) (*domain.Payload, error) {
	return c.dataPayload(ctx, OpStockList, c.signed())
}

// CreatePorder places a delivery order. Files are read from disk; a path
// that cannot be read is sent as a plain field value.
func (c *Client) CreatePorder(ctx context.Context, req domain.PorderRequest) (*domain.Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f := c.signed()
	f.Add("status", req.Status)
	f.Add("logistics_id", req.LogisticsID)
	f.AddIf("client_remark", req.ClientRemark)
	for i, item := range req.Detail {
		p := key("porder_detail", i)
		f.Add(key(p, "order_sn"), item.OrderSN)
		if !item.Sorting.IsZero() {
			f.Add(key(p, "sorting"), item.Sorting.String())
		}
		f.Add(key(p, "num"), item.Num.String())
		addOptional(&f, key(p, "client_remark"), item.ClientRemark)
		for j, tag := range item.Tags {
			tp := key(p, "porder_detail_tag", j)
			addFlex(&f, key(tp, "type"), tag.Type)
			addFlex(&f, key(tp, "no"), tag.No)
			addFlex(&f, key(tp, "goods_no"), tag.GoodsNo)
			addFlex(&f, key(tp, "text_line_one"), tag.TextLineOne)
			addFlex(&f, key(tp, "text_line_two"), tag.TextLineTwo)
		}
	}
	for _, k := range req.ReceiverAddress.SortedKeys() {
		f.Add(key("receiver_address", k), stringify(req.ReceiverAddress[k]))
	}
	for _, k := range req.ImporterAddress.SortedKeys() {
		f.Add(key("importer_address", k), stringify(req.ImporterAddress[k]))
	}
	for i, pf := range req.Files {
		p := key("porder_file", i)
		f.AddIf(key(p, "name"), pf.Name)
		if pf.File == "" {
			continue
		}
		content, err := os.ReadFile(pf.File)
		if err != nil {
			c.log.Warn("porder file not readable, sending path as text",
				zap.String("file", pf.File), zap.Error(err))
			f.Add(key(p, "file"), pf.File)
			continue
		}
		f.AddFile(key(p, "file"), Attachment{Filename: filepath.Base(pf.File), Content: content})
	}
	return c.dataPayload(ctx, OpCreatePorder, f)
}

// UpdatePorderStatus moves a porder between provisional and official.
func (c *Client) UpdatePorderStatus(ctx context.Context, porderSN, status string) (*domain.Payload, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, err
	}
	f := c.signed()
	f.Add("porder_sn", porderSN)
	f.Add("status", status)
	return c.ackPayload(ctx, OpUpdatePorderStatus, f)
}

// CancelPorder cancels a porder.
func (c *Client) CancelPorder(ctx context.Context, porderSN string) (*domain.Payload, error) {
	f := c.signed()
	f.Add("porder_sn", porderSN)
	return c.ackPayload(ctx, OpCancelPorder, f)
}

// ListPorders pages through porders, optionally narrowed to one porder_sn.
func (c *Client) ListPorders(ctx context.Context, req domain.ListRequest) (*domain.Payload, error) {
	req = req.Normalize()
	f := c.signed()
	f.Add("page", strconv.Itoa(req.Page))
	f.Add("pageSize", strconv.Itoa(req.PageSize))
	f.AddIf("porder_sn", req.PorderSN)
	return c.dataPayload(ctx, OpPorderList, f)
}

// PorderDetail fetches one porder.
func (c *Client) PorderDetail(ctx context.Context, porderSN string) (*domain.Payload, error) {
	f := c.signed()
	f.Add("porder_sn", porderSN)
	return c.dataPayload(ctx, OpPorderDetail, f)
}

// TrackLogistics returns the tracking timeline of a shipment.
func (c *Client) TrackLogistics(ctx context.Context, expressNo string) (*domain.Payload, error) {
	f := c.signed()
	f.Add("express_no", expressNo)
	return c.dataPayload(ctx, OpLogisticsTrack, f)
}

// dataPayload returns the envelope's data, which must be present.
func (c *Client) dataPayload(ctx context.Context, op Operation, f Fields) (*domain.Payload, error) {
	env, err := c.call(ctx, op, f, false)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(op, env)
	if err != nil {
		return nil, err
	}
	out, err := domain.NewPayload(data)
	if err != nil {
		return nil, c.decodeFailed(op, data, err)
	}
	return out, nil
}

// ackPayload is for status changes, where the API may acknowledge without a
// data block. The acknowledgement itself is returned in that case.
func (c *Client) ackPayload(ctx context.Context, op Operation, f Fields) (*domain.Payload, error) {
	env, err := c.call(ctx, op, f, false)
	if err != nil {
		return nil, err
	}
	if env.HasData() {
		out, err := domain.NewPayload(env.Data)
		if err != nil {
			return nil, c.decodeFailed(op, env.Data, err)
		}
		return out, nil
	}
	return &domain.Payload{Value: map[string]any{
		"success": true,
		"code":    env.Code.Value(),
		"msg":     env.Msg,
	}}, nil
}

func addOptional(f *Fields, name string, v *string) {
	if v != nil {
		f.Add(name, *v)
	}
}

func addFlex(f *Fields, name string, v domain.Flex) {
	if v.Valid {
		f.Add(name, v.String())
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		b, _ := json.Marshal(t)
		return string(b)
	}
	return cast.ToString(v)
}
