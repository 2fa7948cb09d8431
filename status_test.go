package cafeadmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderStatus(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil is unknown", nil, ORDER_STATUS_UNKNOWN},
		{"false is unknown", false, ORDER_STATUS_UNKNOWN},
		{"empty string is unknown", "", ORDER_STATUS_UNKNOWN},
		{"canonical passes through", "pending", ORDER_STATUS_PENDING},
		{"ready passes through", "ready", ORDER_STATUS_READY},
		{"hyphen synonym", "in-progress", ORDER_STATUS_IN_PROGRESS},
		{"in transit synonym", "in transit", ORDER_STATUS_IN_PROGRESS},
		{"done synonym", "done", ORDER_STATUS_COMPLETED},
		{"single-l canceled", "canceled", ORDER_STATUS_CANCELLED},
		{"case folded", "Canceled", ORDER_STATUS_CANCELLED},
		{"unknown value sanitized", "Waiting For Pickup!", "waiting_for_pickup_"},
		{"numeric zero sanitized", 0, "_"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeOrderStatus(tc.input))
		})
	}

	t.Run("idempotent over its own output", func(t *testing.T) {
		for _, input := range []interface{}{nil, "done", "in-progress", "READY", "weird status", 12} {
			once := NormalizeOrderStatus(input)
			assert.Equal(t, once, NormalizeOrderStatus(once))
		}
	})
}

func TestNormalizeMenuStatus(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil defaults open", nil, MENU_STATUS_AVAILABLE},
		{"empty string defaults open", "", MENU_STATUS_AVAILABLE},
		{"bool true", true, MENU_STATUS_AVAILABLE},
		{"bool false", false, MENU_STATUS_OUT_OF_STOCK},
		{"numeric one", 1, MENU_STATUS_AVAILABLE},
		{"numeric zero", 0, MENU_STATUS_OUT_OF_STOCK},
		{"in_stock synonym", "in_stock", MENU_STATUS_AVAILABLE},
		{"hyphen synonym", "in-stock", MENU_STATUS_AVAILABLE},
		{"sold out synonym", "sold_out", MENU_STATUS_OUT_OF_STOCK},
		{"unavailable synonym", "unavailable", MENU_STATUS_OUT_OF_STOCK},
		{"case folded", "Out-Of-Stock", MENU_STATUS_OUT_OF_STOCK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeMenuStatus(tc.input))
		})
	}

	t.Run("idempotent over its own output", func(t *testing.T) {
		for _, input := range []interface{}{nil, true, false, "in-stock", "86'd", 0} {
			once := NormalizeMenuStatus(input)
			assert.Equal(t, once, NormalizeMenuStatus(once))
		}
	})
}

func TestValidOrderStatusFilter(t *testing.T) {
	assert.True(t, ValidOrderStatusFilter(""))
	assert.True(t, ValidOrderStatusFilter("all"))
	assert.True(t, ValidOrderStatusFilter("pending"))
	assert.True(t, ValidOrderStatusFilter("unknown"))
	assert.False(t, ValidOrderStatusFilter("Pending"))
	assert.False(t, ValidOrderStatusFilter("archived"))
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "In Progress", FormatStatus("in_progress"))
	assert.Equal(t, "Pending", FormatStatus("pending"))
	assert.Equal(t, "Out Of Stock", FormatStatus("out_of_stock"))
}
