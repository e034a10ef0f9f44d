package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
)

// Product keys the sourcing API is known to send. Anything else lands in
// Product.Extra untouched.
const (
	KeyGoodsID           = "goodsId"
	KeyShopType          = "shopType"
	KeyTitleC            = "titleC"
	KeyTitleT            = "titleT"
	KeyGoodsPrice        = "goodsPrice"
	KeyMonthSold         = "monthSold"
	KeyRepurchaseRate    = "repurchaseRate"
	KeyTradeScore        = "tradeScore"
	KeyShopInfo          = "shopInfo"
	KeyTopCategoryID     = "topCategoryId"
	KeySecondCategoryID  = "secondCategoryId"
	KeyCreateDate        = "createDate"
	KeyImgURL            = "imgUrl"
	KeyDetailImages      = "detailImages"
	KeyDetailDescription = "detailDescription"
)

// Product is one search-result item. The API enforces no schema, so every
// field is optional and unrecognised keys are kept in Extra so that a decoded
// product encodes back to the same document.
type Product struct {
	GoodsID          Flex
	ShopType         *string
	TitleC           *string
	TitleT           *string
	GoodsPrice       Flex
	MonthSold        Flex
	RepurchaseRate   Flex
	TradeScore       Flex
	ShopInfo         *ShopInfo
	TopCategoryID    Flex
	SecondCategoryID Flex
	CreateDate       *string
	ImgURL           *string

	// Set by enrichment.
	DetailImages      []string
	DetailDescription *string

	Extra map[string]any
}

// ShopInfo is the seller block attached to a product.
type ShopInfo struct {
	ShopName *string
	Address  *string
	Wangwang *string
	Extra    map[string]any
}

// ID returns the goods identifier, empty when absent.
func (p *Product) ID() string {
	return p.GoodsID.String()
}

// Title prefers the localized title and falls back to the Chinese one.
func (p *Product) Title() string {
	if s := deref(p.TitleT); s != "" {
		return s
	}
	return deref(p.TitleC)
}

// ShopName returns the seller name, empty when absent.
func (p *Product) ShopName() string {
	if p.ShopInfo == nil {
		return ""
	}
	return deref(p.ShopInfo.ShopName)
}

// Enriched reports whether detail fields have been merged in.
func (p *Product) Enriched() bool {
	return p.DetailImages != nil || p.DetailDescription != nil
}

// Get returns the generic JSON value stored under key, or nil.
func (p *Product) Get(key string) any {
	if v := p.known(key); v != nil {
		return v
	}
	if p.Extra == nil {
		return nil
	}
	return p.Extra[key]
}

func (p *Product) known(key string) any {
	switch key {
	case KeyGoodsID:
		return p.GoodsID.Value()
	case KeyShopType:
		return ptrValue(p.ShopType)
	case KeyTitleC:
		return ptrValue(p.TitleC)
	case KeyTitleT:
		return ptrValue(p.TitleT)
	case KeyGoodsPrice:
		return p.GoodsPrice.Value()
	case KeyMonthSold:
		return p.MonthSold.Value()
	case KeyRepurchaseRate:
		return p.RepurchaseRate.Value()
	case KeyTradeScore:
		return p.TradeScore.Value()
	case KeyShopInfo:
		if p.ShopInfo == nil {
			return nil
		}
		return p.ShopInfo.asMap()
	case KeyTopCategoryID:
		return p.TopCategoryID.Value()
	case KeySecondCategoryID:
		return p.SecondCategoryID.Value()
	case KeyCreateDate:
		return ptrValue(p.CreateDate)
	case KeyImgURL:
		return ptrValue(p.ImgURL)
	case KeyDetailImages:
		if p.DetailImages == nil {
			return nil
		}
		out := make([]any, len(p.DetailImages))
		for i, s := range p.DetailImages {
			out[i] = s
		}
		return out
	case KeyDetailDescription:
		return ptrValue(p.DetailDescription)
	}
	return nil
}

// Keys lists every key present on the product, sorted.
func (p *Product) Keys() []string {
	m := p.fields()
	keys := make([]string, 0, len(m)+len(p.Extra))
	for k := range p.Extra {
		if _, dup := m[k]; !dup {
			keys = append(keys, k)
		}
	}
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Product) fields() map[string]any {
	m := map[string]any{}
	putFlex(m, KeyGoodsID, p.GoodsID)
	putString(m, KeyShopType, p.ShopType)
	putString(m, KeyTitleC, p.TitleC)
	putString(m, KeyTitleT, p.TitleT)
	putFlex(m, KeyGoodsPrice, p.GoodsPrice)
	putFlex(m, KeyMonthSold, p.MonthSold)
	putFlex(m, KeyRepurchaseRate, p.RepurchaseRate)
	putFlex(m, KeyTradeScore, p.TradeScore)
	if p.ShopInfo != nil {
		m[KeyShopInfo] = p.ShopInfo
	}
	putFlex(m, KeyTopCategoryID, p.TopCategoryID)
	putFlex(m, KeySecondCategoryID, p.SecondCategoryID)
	putString(m, KeyCreateDate, p.CreateDate)
	putString(m, KeyImgURL, p.ImgURL)
	if p.DetailImages != nil {
		m[KeyDetailImages] = p.DetailImages
	}
	putString(m, KeyDetailDescription, p.DetailDescription)
	return m
}

// MarshalJSON merges the typed fields with Extra.
func (p Product) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(p.fields(), p.Extra)
}

// UnmarshalJSON routes known keys to typed fields. A known key whose value
// is null or has an unexpected type is kept in Extra instead, so it survives
// re-encoding unchanged.
func (p *Product) UnmarshalJSON(data []byte) error {
	var out Product
	extra, err := unmarshalWithExtra(data, map[string]any{
		KeyGoodsID:           &out.GoodsID,
		KeyShopType:          &out.ShopType,
		KeyTitleC:            &out.TitleC,
		KeyTitleT:            &out.TitleT,
		KeyGoodsPrice:        &out.GoodsPrice,
		KeyMonthSold:         &out.MonthSold,
		KeyRepurchaseRate:    &out.RepurchaseRate,
		KeyTradeScore:        &out.TradeScore,
		KeyShopInfo:          &out.ShopInfo,
		KeyTopCategoryID:     &out.TopCategoryID,
		KeySecondCategoryID:  &out.SecondCategoryID,
		KeyCreateDate:        &out.CreateDate,
		KeyImgURL:            &out.ImgURL,
		KeyDetailImages:      &out.DetailImages,
		KeyDetailDescription: &out.DetailDescription,
	})
	if err != nil {
		return err
	}
	out.Extra = extra
	*p = out
	return nil
}

func (s *ShopInfo) fields() map[string]any {
	m := map[string]any{}
	putString(m, "shopName", s.ShopName)
	putString(m, "address", s.Address)
	putString(m, "wangwang", s.Wangwang)
	return m
}

func (s *ShopInfo) asMap() map[string]any {
	m := s.fields()
	for k, v := range s.Extra {
		if _, dup := m[k]; !dup {
			m[k] = v
		}
	}
	return m
}

// MarshalJSON merges the typed fields with Extra.
func (s ShopInfo) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(s.fields(), s.Extra)
}

// UnmarshalJSON routes known keys to typed fields.
func (s *ShopInfo) UnmarshalJSON(data []byte) error {
	var out ShopInfo
	extra, err := unmarshalWithExtra(data, map[string]any{
		"shopName": &out.ShopName,
		"address":  &out.Address,
		"wangwang": &out.Wangwang,
	})
	if err != nil {
		return err
	}
	out.Extra = extra
	*s = out
	return nil
}

func unmarshalWithExtra(data []byte, known map[string]any) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var extra map[string]any
	for key, value := range raw {
		if dst, ok := known[key]; ok && !isNull(value) {
			target := reflect.ValueOf(dst).Elem()
			tmp := reflect.New(target.Type())
			if err := json.Unmarshal(value, tmp.Interface()); err == nil {
				target.Set(tmp.Elem())
				continue
			}
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = v
	}
	return extra, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func marshalWithExtra(fields, extra map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields)+len(extra))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putFlex(m map[string]any, key string, v Flex) {
	if v.Valid {
		m[key] = v
	}
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
