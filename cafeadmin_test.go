package cafeadmin

import (
	"testing"
	"time"

	orm "github.com/medatechnology/simpleorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	conf := ConsoleConfig{
		Tables:      TableNames{Orders: "orders", Items: "item"},
		SessionExp:  time.Minute,
		TTLTicker:   time.Minute,
		MaxSessions: 10,
	}
	return NewConsole(conf, nil)
}

func TestConsoleReconcileColumns(t *testing.T) {
	console := newTestConsole(t)

	t.Run("fallbacks before any row was seen", func(t *testing.T) {
		columns := console.ReconcileColumns("orders", nil, OrderColumns())
		require.NotNil(t, columns)
		assert.Equal(t, "order_id", columns.Column(FieldOrderID))
		assert.Equal(t, "total", columns.Column(FieldTotal))
	})

	t.Run("learns from a batch and caches the result", func(t *testing.T) {
		rows := []orm.DBRecord{{Data: map[string]interface{}{
			"id":           1,
			"amount_cents": 1305,
			"placed_at":    "2026-08-30 09:12:00",
		}}}
		columns := console.ReconcileColumns("orders", rows, OrderColumns())
		assert.Equal(t, "id", columns.Column(FieldOrderID))
		assert.Equal(t, "amount_cents", columns.Column(FieldTotal))
		assert.Equal(t, "placed_at", columns.Column(FieldCreatedAt))

		cached := console.ColumnMapFor("orders")
		require.NotNil(t, cached)
		assert.Equal(t, "amount_cents", cached.Column(FieldTotal))
	})

	t.Run("empty batch never erases the learned mapping", func(t *testing.T) {
		columns := console.ReconcileColumns("orders", nil, OrderColumns())
		assert.Equal(t, "amount_cents", columns.Column(FieldTotal))

		columns = console.ReconcileColumns("orders", []orm.DBRecord{{Data: nil}}, OrderColumns())
		assert.Equal(t, "amount_cents", columns.Column(FieldTotal))
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		columns := console.ReconcileColumns("orders", nil, OrderColumns())
		columns[FieldTotal] = "tampered"
		assert.Equal(t, "amount_cents", console.ColumnMapFor("orders").Column(FieldTotal))
	})

	t.Run("tables are independent", func(t *testing.T) {
		assert.Nil(t, console.ColumnMapFor("item"))
		columns := console.ReconcileColumns("item", nil, MenuItemColumns())
		assert.Equal(t, "availability", columns.Column(FieldStatus))
	})
}

func TestConsoleTables(t *testing.T) {
	console := newTestConsole(t)
	assert.Equal(t, "orders", console.Tables().Orders)
	assert.Equal(t, "item", console.Tables().Items)
}
