package rakumart

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/internal/domain"
)

// Search runs a keyword search. Products are read from data.result.result
// and the total from data.result.total.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	fields := c.searchFields(req)
	env, err := c.call(ctx, OpSearch, fields, true)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(OpSearch, env, "result", "result")
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, c.decodeFailed(OpSearch, data, err)
	}
	result := &domain.SearchResult{Products: make([]domain.Product, 0, len(items))}
	for i, item := range items {
		var p domain.Product
		if err := json.Unmarshal(item, &p); err != nil {
			c.log.Warn("skipping malformed product", zap.Int("index", i), zap.Error(err))
			continue
		}
		result.Products = append(result.Products, p)
	}
	if total := env.Field("result", "total"); total != nil {
		var f domain.Flex
		if json.Unmarshal(total, &f) == nil {
			result.Total, _ = f.Int()
		}
	}
	c.log.Debug("search completed",
		zap.String("keywords", req.Keywords),
		zap.Int("products", len(result.Products)),
		zap.Int("total", result.Total))
	return result, nil
}

func (c *Client) searchFields(req domain.SearchRequest) Fields {
	shopType := req.ShopType
	if shopType == "" {
		shopType = c.shopType
	}
	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	f := c.signed()
	f.Add("keywords", req.Keywords)
	f.Add("shop_type", shopType)
	f.Add("page", strconv.Itoa(page))
	f.Add("pageSize", strconv.Itoa(size))
	f.AddIf("price_min", req.PriceMin)
	f.AddIf("price_max", req.PriceMax)
	if req.OrderBy != nil {
		f.AddIf("order_by[0][key]", req.OrderBy.Key)
		f.AddIf("order_by[0][value]", req.OrderBy.Value)
	}
	for i, v := range req.Categories {
		f.Add(key("categories", i), v)
	}
	for i, v := range req.Subcategories {
		f.Add(key("subcategories", i), v)
	}
	for i, v := range req.SubSubcategories {
		f.Add(key("sub_subcategories", i), v)
	}
	addFloat(&f, "max_length", req.MaxLength)
	addFloat(&f, "max_width", req.MaxWidth)
	addFloat(&f, "max_height", req.MaxHeight)
	addInt(&f, "min_inventory", req.MinInventory)
	addInt(&f, "max_delivery_days", req.MaxDeliveryDays)
	addFloat(&f, "max_shipping_fee", req.MaxShippingFee)
	return f
}

// Detail fetches one product's detail document from data.
func (c *Client) Detail(ctx context.Context, shopType, goodsID string) (*domain.ProductDetail, error) {
	if shopType == "" {
		shopType = c.shopType
	}
	f := c.signed()
	f.Add("shopType", shopType)
	f.Add("goodsId", goodsID)

	env, err := c.call(ctx, OpDetail, f, false)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(OpDetail, env)
	if err != nil {
		return nil, err
	}
	var detail domain.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, c.decodeFailed(OpDetail, data, err)
	}
	return &detail, nil
}

// ImageID uploads a base64 image and returns the id and search link.
func (c *Client) ImageID(ctx context.Context, imageBase64 string) (*domain.ImageSearch, error) {
	f := c.signed()
	f.Add("imageBase64", imageBase64)

	env, err := c.call(ctx, OpImageID, f, false)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(OpImageID, env)
	if err != nil {
		return nil, err
	}
	var out domain.ImageSearch
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, c.decodeFailed(OpImageID, data, err)
	}
	return &out, nil
}

// Logistics lists the carriers available to the account.
func (c *Client) Logistics(ctx context.Context) ([]domain.Logistics, error) {
	env, err := c.call(ctx, OpLogistics, c.signed(), false)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(OpLogistics, env)
	if err != nil {
		return nil, err
	}
	var out []domain.Logistics
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, c.decodeFailed(OpLogistics, data, err)
	}
	return out, nil
}

// Tags lists the labelling options with their Japanese names.
func (c *Client) Tags(ctx context.Context) ([]domain.Tag, error) {
	env, err := c.call(ctx, OpTags, c.signed(), false)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(OpTags, env)
	if err != nil {
		return nil, err
	}
	var out []domain.Tag
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, c.decodeFailed(OpTags, data, err)
	}
	return out, nil
}

func addFloat(f *Fields, name string, v *float64) {
	if v != nil {
		f.Add(name, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

func addInt(f *Fields, name string, v *int) {
	if v != nil {
		f.Add(name, strconv.Itoa(*v))
	}
}
