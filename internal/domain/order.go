package domain

import (
	"fmt"
	"sort"
)

// Order status values accepted by create and update calls.
const (
	StatusProvisional = "10"
	StatusOfficial    = "20"
)

// ValidateStatus checks an order or porder status value.
func ValidateStatus(status string) error {
	if status != StatusProvisional && status != StatusOfficial {
		return fmt.Errorf("%w: status must be %s or %s, got %q", ErrInvalidRequest, StatusProvisional, StatusOfficial, status)
	}
	return nil
}

// OrderRequest creates a purchase order.
type OrderRequest struct {
	PurchaseOrder string      `json:"purchase_order" binding:"required"`
	Status        string      `json:"status" binding:"required"`
	LogisticsID   string      `json:"logistics_id,omitempty"`
	Remark        string      `json:"remark,omitempty"`
	Goods         []OrderGood `json:"goods" binding:"required"`
}

// OrderGood is one line of a purchase order.
type OrderGood struct {
	Link   string       `json:"link"`
	Price  Flex         `json:"price"`
	Num    Flex         `json:"num"`
	Pic    *string      `json:"pic,omitempty"`
	Remark *string      `json:"remark,omitempty"`
	FBA    *string      `json:"fba,omitempty"`
	ASIN   *string      `json:"asin,omitempty"`
	Props  []GoodProp   `json:"props,omitempty"`
	Option []GoodOption `json:"option,omitempty"`
	Tags   []GoodTag    `json:"tags,omitempty"`
}

// GoodProp is a selected SKU property.
type GoodProp struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GoodOption is an optional service attached to a line.
type GoodOption struct {
	Name string `json:"name"`
	Num  Flex   `json:"num"`
}

// GoodTag is a label attached to a line.
type GoodTag struct {
	Type    string  `json:"type"`
	No      string  `json:"no"`
	GoodsNo *string `json:"goods_no,omitempty"`
}

// Validate checks the fields the API requires.
func (r *OrderRequest) Validate() error {
	if r.PurchaseOrder == "" {
		return fmt.Errorf("%w: purchase_order is required", ErrInvalidRequest)
	}
	if err := ValidateStatus(r.Status); err != nil {
		return err
	}
	if len(r.Goods) == 0 {
		return fmt.Errorf("%w: goods must not be empty", ErrInvalidRequest)
	}
	for i, g := range r.Goods {
		if g.Link == "" {
			return fmt.Errorf("%w: goods[%d].link is required", ErrInvalidRequest, i)
		}
		if g.Price.IsZero() || g.Num.IsZero() {
			return fmt.Errorf("%w: goods[%d] needs price and num", ErrInvalidRequest, i)
		}
	}
	return nil
}

// PorderRequest creates a delivery (consolidation) order.
type PorderRequest struct {
	Status          string             `json:"status" binding:"required"`
	LogisticsID     string             `json:"logistics_id" binding:"required"`
	ClientRemark    string             `json:"client_remark,omitempty"`
	Detail          []PorderDetailItem `json:"porder_detail" binding:"required"`
	ReceiverAddress Address            `json:"receiver_address,omitempty"`
	ImporterAddress Address            `json:"importer_address,omitempty"`
	Files           []PorderFile       `json:"porder_file,omitempty"`
}

// PorderDetailItem references an existing order to ship.
type PorderDetailItem struct {
	OrderSN      string      `json:"order_sn"`
	Sorting      Flex        `json:"sorting"`
	Num          Flex        `json:"num"`
	ClientRemark *string     `json:"client_remark,omitempty"`
	Tags         []PorderTag `json:"porder_detail_tag,omitempty"`
}

// PorderTag is a shipping label for a porder line.
type PorderTag struct {
	Type        Flex `json:"type"`
	No          Flex `json:"no"`
	GoodsNo     Flex `json:"goods_no"`
	TextLineOne Flex `json:"text_line_one"`
	TextLineTwo Flex `json:"text_line_two"`
}

// PorderFile is an attachment. File is a local path; when it cannot be
// opened the value is sent as plain text.
type PorderFile struct {
	Name string `json:"name,omitempty"`
	File string `json:"file,omitempty"`
}

// Address is a free-form address object.
type Address map[string]any

// SortedKeys returns the address keys in a stable order.
func (a Address) SortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the fields the API requires.
func (r *PorderRequest) Validate() error {
	if err := ValidateStatus(r.Status); err != nil {
		return err
	}
	if r.LogisticsID == "" {
		return fmt.Errorf("%w: logistics_id is required", ErrInvalidRequest)
	}
	if len(r.Detail) == 0 {
		return fmt.Errorf("%w: porder_detail must not be empty", ErrInvalidRequest)
	}
	for i, d := range r.Detail {
		if d.OrderSN == "" || d.Num.IsZero() {
			return fmt.Errorf("%w: porder_detail[%d] needs order_sn and num", ErrInvalidRequest, i)
		}
	}
	return nil
}

// ListRequest pages through orders or porders.
type ListRequest struct {
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"pageSize" form:"pageSize"`
	PorderSN string `json:"porder_sn,omitempty" form:"porder_sn"`
}

// Normalize fills defaults for missing paging values.
func (r ListRequest) Normalize() ListRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 10
	}
	return r
}
