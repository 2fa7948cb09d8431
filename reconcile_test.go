package cafeadmin

import (
	"testing"

	orm "github.com/medatechnology/simpleorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectColumn(t *testing.T) {
	keys := map[string]interface{}{
		"unit_price": 4.5,
		"item_name":  "Cappuccino",
	}

	t.Run("first present candidate wins", func(t *testing.T) {
		col := DetectColumn(keys, []string{"price", "unit_price", "price_cents"}, "price")
		assert.Equal(t, "unit_price", col)
	})

	t.Run("fallback when nothing matches", func(t *testing.T) {
		col := DetectColumn(keys, []string{"status", "item_status"}, "availability")
		assert.Equal(t, "availability", col)
	})

	t.Run("empty key set falls back", func(t *testing.T) {
		col := DetectColumn(map[string]interface{}{}, []string{"price"}, "price")
		assert.Equal(t, "price", col)
	})
}

func TestConfigureMapping(t *testing.T) {
	specs := MenuItemColumns()

	t.Run("learns from first structured row", func(t *testing.T) {
		rows := []orm.DBRecord{
			{Data: nil},
			{Data: map[string]interface{}{
				"id":           7,
				"item_name":    "Flat White",
				"price_cents":  475,
				"is_available": true,
			}},
		}
		mapping := ConfigureMapping(rows, specs, nil)
		require.NotNil(t, mapping)
		assert.Equal(t, "id", mapping.Column(FieldItemID))
		assert.Equal(t, "item_name", mapping.Column(FieldName))
		assert.Equal(t, "price_cents", mapping.Column(FieldPrice))
		assert.Equal(t, "is_available", mapping.Column(FieldStatus))
	})

	t.Run("empty batch keeps the learned mapping", func(t *testing.T) {
		current := ColumnMap{FieldPrice: "price_cents"}
		mapping := ConfigureMapping(nil, specs, current)
		assert.Equal(t, current, mapping)

		mapping = ConfigureMapping([]orm.DBRecord{{Data: nil}}, specs, current)
		assert.Equal(t, current, mapping)
	})

	t.Run("previous resolution is the fallback on re-learn", func(t *testing.T) {
		current := ColumnMap{FieldPrice: "unit_price"}
		rows := []orm.DBRecord{{Data: map[string]interface{}{"item_name": "Mocha"}}}
		mapping := ConfigureMapping(rows, specs, current)
		assert.Equal(t, "unit_price", mapping.Column(FieldPrice))
	})

	t.Run("empty batch with no current yields nil", func(t *testing.T) {
		mapping := ConfigureMapping(nil, specs, nil)
		assert.Nil(t, mapping)
	})
}

func TestColumnMap(t *testing.T) {
	mapping := ColumnMap{FieldName: "item_name"}

	t.Run("unconfigured field resolves to its own name", func(t *testing.T) {
		assert.Equal(t, "qty", mapping.Column(FieldQuantity))
	})

	t.Run("nil map still resolves", func(t *testing.T) {
		var none ColumnMap
		assert.Equal(t, "status", none.Column(FieldStatus))
	})

	t.Run("value reads through the map", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{"item_name": "Latte"}}
		value, ok := mapping.Value(row, FieldName)
		require.True(t, ok)
		assert.Equal(t, "Latte", value)
	})

	t.Run("clone is independent", func(t *testing.T) {
		clone := mapping.Clone()
		clone[FieldName] = "other"
		assert.Equal(t, "item_name", mapping[FieldName])
	})
}

func TestFallbackColumnMap(t *testing.T) {
	mapping := FallbackColumnMap(OrderColumns())
	assert.Equal(t, "order_id", mapping.Column(FieldOrderID))
	assert.Equal(t, "created_at", mapping.Column(FieldCreatedAt))
	assert.Equal(t, "total", mapping.Column(FieldTotal))
}

func TestBooleanStatusColumn(t *testing.T) {
	assert.True(t, BooleanStatusColumn("availability"))
	assert.True(t, BooleanStatusColumn("is_available"))
	assert.False(t, BooleanStatusColumn("status"))
	assert.False(t, BooleanStatusColumn("item_status"))
}
