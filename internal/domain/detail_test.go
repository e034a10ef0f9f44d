package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductDetail_Unmarshal(t *testing.T) {
	var d ProductDetail
	err := json.Unmarshal([]byte(`{"images": ["a.jpg", 3, "", "b.jpg"], "description": "<p>hi</p>", "goodsInfo": {"title": "x"}}`), &d)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, d.Images)
	assert.Equal(t, "<p>hi</p>", d.Description)
	assert.Contains(t, d.Raw, "goodsInfo")
}

func TestProductDetail_MissingFields(t *testing.T) {
	var d ProductDetail
	require.NoError(t, json.Unmarshal([]byte(`{"description": 5}`), &d))

	assert.Nil(t, d.Images)
	assert.Empty(t, d.Description)
}

func TestPayload_Helpers(t *testing.T) {
	p, err := NewPayload([]byte(`{"order_sn": "O123", "status": 10, "order_detail": [{"id": 1}, "junk", {"id": 2}], "data": [{"x": 1}]}`))
	require.NoError(t, err)

	assert.Equal(t, "O123", p.String("order_sn"))
	assert.Equal(t, "10", p.String("status"))
	assert.Equal(t, "", p.String("missing", "deeper"))
	assert.Len(t, p.Items("order_detail"), 2)
	assert.Len(t, p.Items(), 1)
	assert.False(t, p.IsEmpty())
}

func TestPayload_IsEmpty(t *testing.T) {
	var nilPayload *Payload
	assert.True(t, nilPayload.IsEmpty())
	assert.True(t, (&Payload{Value: []any{}}).IsEmpty())
	assert.True(t, (&Payload{Value: map[string]any{}}).IsEmpty())
	assert.False(t, (&Payload{Value: float64(0)}).IsEmpty())
	assert.Equal(t, "null", nilPayload.Pretty())
}

func TestPayload_ItemsFromTopLevelList(t *testing.T) {
	p := &Payload{Value: []any{map[string]any{"time": "t1"}, map[string]any{"time": "t2"}}}
	items := p.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "t2", items[1]["time"])
}
