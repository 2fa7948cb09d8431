package cafeadmin

import (
	"math"
	"testing"

	orm "github.com/medatechnology/simpleorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateTime(t *testing.T) {
	t.Run("nil and empty use the placeholder", func(t *testing.T) {
		assert.Equal(t, DISPLAY_PLACEHOLDER, FormatDateTime(nil))
		assert.Equal(t, DISPLAY_PLACEHOLDER, FormatDateTime(""))
		assert.Equal(t, DISPLAY_PLACEHOLDER, FormatDateTime("   "))
	})

	t.Run("parseable timestamps render medium date short time", func(t *testing.T) {
		assert.Equal(t, "Aug 30, 2026, 9:12 AM", FormatDateTime("2026-08-30 09:12:00"))
		assert.Equal(t, "Aug 30, 2026, 9:12 AM", FormatDateTime("2026-08-30T09:12:00"))
	})

	t.Run("unparseable strings come back verbatim", func(t *testing.T) {
		assert.Equal(t, "yesterday-ish", FormatDateTime("yesterday-ish"))
	})

	t.Run("non-string non-time values use the placeholder", func(t *testing.T) {
		assert.Equal(t, DISPLAY_PLACEHOLDER, FormatDateTime(12345))
	})
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$4.50", FormatCurrency(4.5))
	assert.Equal(t, "$0.00", FormatCurrency(math.NaN()))
	assert.Equal(t, DISPLAY_PLACEHOLDER, FormatCurrency(nil))
	assert.Equal(t, "$0.00", FormatCurrency("not a number"))
}

func TestPriceFromColumn(t *testing.T) {
	t.Run("cents columns divide by 100", func(t *testing.T) {
		assert.Equal(t, 5.25, priceFromColumn(525, "price_cents"))
		assert.Equal(t, 5.25, priceFromColumn(float64(525), "total_cents"))
	})

	t.Run("plain columns pass through", func(t *testing.T) {
		assert.Equal(t, 5.25, priceFromColumn(5.25, "price"))
	})

	t.Run("NaN and negatives clamp to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, priceFromColumn(math.NaN(), "price"))
		assert.Equal(t, 0.0, priceFromColumn(-3, "price"))
	})
}

func TestGroupLineItems(t *testing.T) {
	columns := FallbackColumnMap(OrderItemColumns())

	t.Run("groups by stringified order id with name lookup", func(t *testing.T) {
		rows := []orm.DBRecord{
			{Data: map[string]interface{}{"order_id": "ORD-3021", "item_id": "MENU-001", "qty": 2}},
			{Data: map[string]interface{}{"order_id": "ORD-3021", "item_id": "MENU-034", "qty": 1}},
			{Data: map[string]interface{}{"order_id": float64(3018), "item_id": "MENU-001"}},
		}
		names := map[string]string{"MENU-001": "Cappuccino"}

		grouped := GroupLineItems(rows, columns, names)
		require.Len(t, grouped["ORD-3021"], 2)
		assert.Equal(t, OrderLineItem{Name: "Cappuccino", Qty: 2}, grouped["ORD-3021"][0])
		assert.Equal(t, OrderLineItem{Name: "Item #MENU-034", Qty: 1}, grouped["ORD-3021"][1])

		// numeric order id groups under its rendered string, qty defaults to 1
		require.Len(t, grouped["3018"], 1)
		assert.Equal(t, 1, grouped["3018"][0].Qty)
	})

	t.Run("invalid quantities default to 1", func(t *testing.T) {
		rows := []orm.DBRecord{
			{Data: map[string]interface{}{"order_id": "A", "item_id": "X", "qty": 0}},
			{Data: map[string]interface{}{"order_id": "A", "item_id": "X", "qty": -2}},
			{Data: map[string]interface{}{"order_id": "A", "item_id": "X", "qty": "nope"}},
		}
		grouped := GroupLineItems(rows, columns, nil)
		require.Len(t, grouped["A"], 3)
		for _, item := range grouped["A"] {
			assert.Equal(t, 1, item.Qty)
		}
	})

	t.Run("row without an item id renders a plain label", func(t *testing.T) {
		rows := []orm.DBRecord{
			{Data: map[string]interface{}{"order_id": "ORD-3012", "qty": 3}},
		}
		grouped := GroupLineItems(rows, columns, map[string]string{"MENU-001": "Cappuccino"})
		require.Len(t, grouped["ORD-3012"], 1)
		assert.Equal(t, OrderLineItem{Name: "Item", Qty: 3}, grouped["ORD-3012"][0])
		assert.NotContains(t, grouped["ORD-3012"][0].Name, DISPLAY_PLACEHOLDER)
	})

	t.Run("empty batch yields empty map", func(t *testing.T) {
		grouped := GroupLineItems(nil, columns, nil)
		assert.Empty(t, grouped)
	})
}

func TestMapOrder(t *testing.T) {
	columns := ColumnMap{
		FieldOrderID:   "order_id",
		FieldStatus:    "status",
		FieldTotal:     "total_cents",
		FieldCreatedAt: "created_at",
		FieldUserID:    "user_id",
		FieldCustomer:  "customer",
	}

	t.Run("full row maps with cents conversion and joins", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{
			"order_id":    "ORD-3021",
			"status":      "in-progress",
			"total_cents": float64(1305),
			"created_at":  "2026-08-30 09:12:00",
			"user_id":     "USR-11",
		}}
		lineItems := map[string][]OrderLineItem{
			"ORD-3021": {{Name: "Cappuccino", Qty: 2}},
		}
		names := map[string]string{"USR-11": "mira.k"}

		order := MapOrder(row, columns, lineItems, names)
		assert.Equal(t, "ORD-3021", order.OrderID)
		assert.Equal(t, ORDER_STATUS_IN_PROGRESS, order.Status)
		assert.Equal(t, 13.05, order.Total)
		assert.Equal(t, "Aug 30, 2026, 9:12 AM", order.PlacedAt)
		assert.Equal(t, "mira.k", order.Customer)
		assert.Len(t, order.Items, 1)
		assert.Equal(t, row, order.Raw)
	})

	t.Run("sparse row degrades without failing", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{"order_id": "ORD-9"}}
		order := MapOrder(row, columns, nil, nil)
		assert.Equal(t, ORDER_STATUS_UNKNOWN, order.Status)
		assert.Equal(t, 0.0, order.Total)
		assert.Equal(t, DISPLAY_PLACEHOLDER, order.PlacedAt)
		assert.Equal(t, "Guest customer", order.Customer)
		require.NotNil(t, order.Items)
		assert.Empty(t, order.Items)
	})
}

func TestMapMenuItem(t *testing.T) {
	t.Run("boolean availability column", func(t *testing.T) {
		columns := ColumnMap{
			FieldItemID: "item_id",
			FieldName:   "item_name",
			FieldPrice:  "price",
			FieldStatus: "availability",
		}
		row := orm.DBRecord{Data: map[string]interface{}{
			"item_id":      "MENU-001",
			"item_name":    "Cappuccino",
			"price":        4.5,
			"availability": false,
		}}
		item := MapMenuItem(row, columns)
		assert.Equal(t, "Cappuccino", item.Name)
		assert.Equal(t, 4.5, item.Price)
		assert.Equal(t, MENU_STATUS_OUT_OF_STOCK, item.Status)
	})

	t.Run("name falls back to generic label", func(t *testing.T) {
		columns := FallbackColumnMap(MenuItemColumns())
		row := orm.DBRecord{Data: map[string]interface{}{"item_id": 4, "item_name": "  "}}
		item := MapMenuItem(row, columns)
		assert.Equal(t, "Menu item", item.Name)
		assert.Equal(t, "4", item.ItemID)
	})
}

func TestMapMenu(t *testing.T) {
	columns := FallbackColumnMap(MenuColumns())

	t.Run("updated_at preferred over created_at", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{
			"menu_id":    "MENU-MAIN",
			"name":       "All Day Menu",
			"created_at": "2026-08-01 08:00:00",
			"updated_at": "2026-08-30 10:00:00",
			"is_active":  true,
		}}
		menu := MapMenu(row, columns)
		assert.Equal(t, "Aug 30, 2026, 10:00 AM", menu.UpdatedAt)
		assert.True(t, menu.IsActive)
	})

	t.Run("created_at fills in and active defaults true", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{
			"menu_id":    "MENU-2",
			"name":       "Seasonal",
			"created_at": "2026-08-01 08:00:00",
		}}
		menu := MapMenu(row, columns)
		assert.Equal(t, "Aug 1, 2026, 8:00 AM", menu.UpdatedAt)
		assert.True(t, menu.IsActive)
	})
}

func TestBuildMenuItemPayload(t *testing.T) {
	t.Run("cents column gets integer cents, boolean column gets bool", func(t *testing.T) {
		columns := ColumnMap{
			FieldMenuID: "menu_id",
			FieldName:   "item_name",
			FieldDesc:   "description",
			FieldPrice:  "price_cents",
			FieldStatus: "availability",
		}
		payload := MenuItemPayload{
			MenuID: "MENU-MAIN",
			Name:   "Cortado",
			Price:  4.25,
			Status: "available",
		}
		data := BuildMenuItemPayload(payload, columns)
		assert.Equal(t, 425, data["price_cents"])
		assert.Equal(t, true, data["availability"])
		assert.Nil(t, data["description"])
	})

	t.Run("text status column gets normalized text", func(t *testing.T) {
		columns := ColumnMap{
			FieldMenuID: "menu_id",
			FieldName:   "item_name",
			FieldDesc:   "description",
			FieldPrice:  "price",
			FieldStatus: "status",
		}
		payload := MenuItemPayload{Name: "Cortado", Price: 4.25, Status: "Sold_Out"}
		data := BuildMenuItemPayload(payload, columns)
		assert.Equal(t, 4.25, data["price"])
		assert.Equal(t, MENU_STATUS_OUT_OF_STOCK, data["status"])
	})
}

func TestBuildMenuPayload(t *testing.T) {
	columns := FallbackColumnMap(MenuColumns())

	data := BuildMenuPayload(MenuPayload{Name: "Brunch", Status: "inactive"}, columns)
	assert.Equal(t, false, data["is_active"])

	data = BuildMenuPayload(MenuPayload{Name: "Brunch", CafeID: "CAFE-01"}, columns)
	assert.Equal(t, true, data["is_active"])
	assert.Equal(t, "CAFE-01", data["cafe_id"])
}

func TestRowIdentifier(t *testing.T) {
	columns := FallbackColumnMap(OrderColumns())

	t.Run("raw row value wins", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{"order_id": float64(3021)}}
		value, err := RowIdentifier(row, columns, FieldOrderID, "ORD-X")
		require.NoError(t, err)
		assert.Equal(t, float64(3021), value)
	})

	t.Run("rendered fallback when raw is missing", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{}}
		value, err := RowIdentifier(row, columns, FieldOrderID, "ORD-3021")
		require.NoError(t, err)
		assert.Equal(t, "ORD-3021", value)
	})

	t.Run("placeholder rendering is not an identifier", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{}}
		_, err := RowIdentifier(row, columns, FieldOrderID, DISPLAY_PLACEHOLDER)
		assert.Error(t, err)
	})
}

func TestScalarCoercion(t *testing.T) {
	t.Run("string value renders whole floats without decimal", func(t *testing.T) {
		assert.Equal(t, "42", StringValue(float64(42)))
		assert.Equal(t, "4.5", StringValue(4.5))
		assert.Equal(t, "", StringValue(nil))
	})

	t.Run("float value is total", func(t *testing.T) {
		assert.Equal(t, 4.5, FloatValue("4.5"))
		assert.Equal(t, 0.0, FloatValue("garbage"))
		assert.Equal(t, 0.0, FloatValue(nil))
		assert.Equal(t, 0.0, FloatValue(math.Inf(1)))
	})
}
