package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStatus(t *testing.T) {
	assert.NoError(t, ValidateStatus("10"))
	assert.NoError(t, ValidateStatus("20"))

	err := ValidateStatus("30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestOrderRequest_Validate(t *testing.T) {
	var req OrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"purchase_order": "PO-1",
		"status": "10",
		"goods": [{"link": "https://detail.1688.com/offer/1.html", "price": 12.5, "num": "2"}]
	}`), &req))
	assert.NoError(t, req.Validate())

	req.Goods[0].Link = ""
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)

	req.Goods = nil
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
}

func TestPorderRequest_Validate(t *testing.T) {
	req := PorderRequest{
		Status:      "20",
		LogisticsID: "7",
		Detail:      []PorderDetailItem{{OrderSN: "O1", Num: FlexNumber(3)}},
	}
	assert.NoError(t, req.Validate())

	req.LogisticsID = ""
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
}

func TestAddress_SortedKeys(t *testing.T) {
	a := Address{"zip": "100", "city": "Tokyo", "name": "Taro"}
	assert.Equal(t, []string{"city", "name", "zip"}, a.SortedKeys())
}

func TestListRequest_Normalize(t *testing.T) {
	assert.Equal(t, ListRequest{Page: 1, PageSize: 10}, ListRequest{}.Normalize())
	assert.Equal(t, ListRequest{Page: 3, PageSize: 50}, ListRequest{Page: 3, PageSize: 50}.Normalize())
}
