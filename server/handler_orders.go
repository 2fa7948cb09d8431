package server

import (
	"net/http"
	"time"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/goutil/simplelog"
	"github.com/medatechnology/simplehttp"
)

// fetchOrdersBoard pulls the newest orders with their joined line items
// and customer names, already mapped to view-models. The joins degrade:
// a failing item or user lookup logs and leaves that decoration empty,
// it never fails the board.
func fetchOrdersBoard(console *cafeadmin.Console, statusFilter string) ([]cafeadmin.Order, error) {
	condition := orm.Condition{
		OrderBy: []string{console.ColumnMapFor(console.Tables().Orders).Column(cafeadmin.FieldCreatedAt) + " DESC"},
		Limit:   cafeadmin.DEFAULT_ORDERS_LIMIT,
	}
	started := time.Now()
	rows, err := console.Datastore.Query(console.Tables().Orders, &condition)
	elapsed := float64(time.Since(started).Microseconds()) / 1000.0
	if err != nil {
		cafeadmin.Metrics.RecordQuery(false, elapsed)
		return nil, err
	}
	cafeadmin.Metrics.RecordQuery(true, elapsed)

	columns := console.ReconcileColumns(console.Tables().Orders, rows, cafeadmin.OrderColumns())

	orderIDs := make([]interface{}, 0, len(rows))
	userIDs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		if value, ok := columns.Value(row, cafeadmin.FieldOrderID); ok && value != nil {
			orderIDs = append(orderIDs, value)
		}
		if value, ok := columns.Value(row, cafeadmin.FieldUserID); ok && value != nil {
			userIDs = append(userIDs, value)
		}
	}

	lineItems := fetchLineItems(console, orderIDs)
	customerNames := fetchUserNames(console, userIDs)

	orders := make([]cafeadmin.Order, 0, len(rows))
	for _, row := range rows {
		order := cafeadmin.MapOrder(row, columns, lineItems, customerNames)
		if statusFilter != "" && statusFilter != "all" && order.Status != statusFilter {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// fetchLineItems joins order-item rows to their item names and groups
// them per order. Any failure returns an empty map.
func fetchLineItems(console *cafeadmin.Console, orderIDs []interface{}) map[string][]cafeadmin.OrderLineItem {
	empty := map[string][]cafeadmin.OrderLineItem{}
	if len(orderIDs) == 0 {
		return empty
	}

	itemColumns := console.ReconcileColumns(console.Tables().OrderItems, nil, cafeadmin.OrderItemColumns())
	condition := orm.Condition{
		Field:    itemColumns.Column(cafeadmin.FieldOrderID),
		Operator: "IN",
		Value:    orderIDs,
	}
	rows, err := console.Datastore.Query(console.Tables().OrderItems, &condition)
	if err != nil {
		simplelog.LogErrorAny("/api/orders", err, "order item join failed, rendering orders without items")
		return empty
	}
	itemColumns = console.ReconcileColumns(console.Tables().OrderItems, rows, cafeadmin.OrderItemColumns())

	itemIDs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		if value, ok := itemColumns.Value(row, cafeadmin.FieldItemID); ok && value != nil {
			itemIDs = append(itemIDs, value)
		}
	}

	return cafeadmin.GroupLineItems(rows, itemColumns, fetchItemNames(console, itemIDs))
}

// fetchItemNames resolves catalog item ids to display names. Any
// failure returns an empty map, callers fall back to "Item #<id>".
func fetchItemNames(console *cafeadmin.Console, itemIDs []interface{}) map[string]string {
	names := map[string]string{}
	if len(itemIDs) == 0 {
		return names
	}

	columns := console.ReconcileColumns(console.Tables().Items, nil, cafeadmin.MenuItemColumns())
	condition := orm.Condition{
		Field:    columns.Column(cafeadmin.FieldItemID),
		Operator: "IN",
		Value:    itemIDs,
	}
	rows, err := console.Datastore.Query(console.Tables().Items, &condition)
	if err != nil {
		simplelog.LogErrorAny("/api/orders", err, "item name lookup failed")
		return names
	}
	columns = console.ReconcileColumns(console.Tables().Items, rows, cafeadmin.MenuItemColumns())

	for _, row := range rows {
		idValue, ok := columns.Value(row, cafeadmin.FieldItemID)
		if !ok || idValue == nil {
			continue
		}
		nameValue, _ := columns.Value(row, cafeadmin.FieldName)
		if name := cafeadmin.StringValue(nameValue); name != "" {
			names[cafeadmin.StringValue(idValue)] = name
		}
	}
	return names
}

// fetchUserNames resolves customer user ids to usernames for the board.
func fetchUserNames(console *cafeadmin.Console, userIDs []interface{}) map[string]string {
	names := map[string]string{}
	if len(userIDs) == 0 {
		return names
	}

	condition := orm.Condition{
		Field:    "user_id",
		Operator: "IN",
		Value:    userIDs,
	}
	rows, err := console.Datastore.Query(console.Tables().Users, &condition)
	if err != nil {
		simplelog.LogErrorAny("/api/orders", err, "customer name lookup failed")
		return names
	}

	for _, row := range rows {
		if row.Data == nil {
			continue
		}
		idValue, ok := row.Data["user_id"]
		if !ok {
			idValue = row.Data["id"]
		}
		if idValue == nil {
			continue
		}
		for _, column := range []string{"username", "user_name", "name", "full_name"} {
			if name := cafeadmin.StringValue(row.Data[column]); name != "" {
				names[cafeadmin.StringValue(idValue)] = name
				break
			}
		}
	}
	return names
}

// HandleOrders serves the orders board: newest first, line items and
// customer names joined in, optional ?status= filter.
func HandleOrders(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/orders", console.Tables().Orders)

		statusFilter := ctx.GetQueryParam("status")
		if !cafeadmin.ValidOrderStatusFilter(statusFilter) {
			statusFilter = cafeadmin.NormalizeOrderStatus(statusFilter)
		}

		orders, err := fetchOrdersBoard(console, statusFilter)
		if err != nil {
			return state.SetError("Failed to load orders", err, http.StatusInternalServerError).
				LogAndResponse("orders fetch failed", nil, true)
		}

		response := cafeadmin.OrdersResponse{
			Orders:        orders,
			Count:         len(orders),
			ExecutionTime: state.SaveStopTimer(),
		}
		return state.SetSuccess("Orders retrieved", response).LogAndResponse("orders board served", response.Count, false)
	}
}

// HandleOrderStatusUpdate moves one order to a new normalized status
// and answers with the refreshed board. Updating to the status the
// order already has is a no-op that still succeeds.
func HandleOrderStatusUpdate(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/orders/status", console.Tables().Orders)

		var updateReq cafeadmin.StatusUpdateRequest
		if err := ctx.BindJSON(&updateReq); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		if updateReq.OrderID == "" {
			return state.SetError("Order identifier is required", nil, http.StatusBadRequest).LogAndResponse("status update without order id", nil, true)
		}

		newStatus := cafeadmin.NormalizeOrderStatus(updateReq.Status)

		columns := console.ReconcileColumns(console.Tables().Orders, nil, cafeadmin.OrderColumns())
		condition := orm.Condition{
			Field:    columns.Column(cafeadmin.FieldOrderID),
			Operator: "=",
			Value:    updateReq.OrderID,
		}
		row, found, err := console.Datastore.QueryOne(console.Tables().Orders, &condition)
		if err != nil {
			return state.SetError("Failed to load the order", err, http.StatusInternalServerError).LogAndResponse("order lookup failed", nil, true)
		}
		if !found {
			return state.SetError("Order not found", nil, http.StatusNotFound).LogAndResponse("order not found: "+updateReq.OrderID, nil, true)
		}
		columns = console.ReconcileColumns(console.Tables().Orders, []orm.DBRecord{row}, cafeadmin.OrderColumns())

		currentValue, _ := columns.Value(row, cafeadmin.FieldStatus)
		if cafeadmin.NormalizeOrderStatus(currentValue) != newStatus {
			identifier, err := cafeadmin.RowIdentifier(row, columns, cafeadmin.FieldOrderID, updateReq.OrderID)
			if err != nil {
				return state.SetError("Order row is missing an identifier", err, http.StatusInternalServerError).
					LogAndResponse("cannot extract order identifier", nil, true)
			}

			patch := cafeadmin.BuildOrderStatusPatch(newStatus, columns)
			if err := console.Datastore.Update(console.Tables().Orders, columns.Column(cafeadmin.FieldOrderID), identifier, patch); err != nil {
				cafeadmin.Metrics.RecordMutation(false)
				return state.SetError("Failed to update the order status", err, http.StatusInternalServerError).
					LogAndResponse("order status update failed", nil, true)
			}
			cafeadmin.Metrics.RecordMutation(true)
		}

		orders, err := fetchOrdersBoard(console, "")
		if err != nil {
			return state.SetError("Status updated but the board could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("board refresh after status update failed", nil, true)
		}

		response := cafeadmin.OrdersResponse{
			Orders:        orders,
			Count:         len(orders),
			ExecutionTime: state.SaveStopTimer(),
		}
		return state.SetSuccess("Order moved to "+cafeadmin.FormatStatus(newStatus), response).
			LogAndResponse("order "+updateReq.OrderID+" moved to "+newStatus, nil, true)
	}
}
