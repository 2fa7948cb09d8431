package server

import (
	"net/http"
	"strings"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/simplehttp"
)

// fetchMenus lists the menu definitions for one cafe (or all when the
// cafe id is empty), mapped to view-models.
func fetchMenus(console *cafeadmin.Console, cafeID string) ([]cafeadmin.Menu, error) {
	columns := console.ReconcileColumns(console.Tables().Menus, nil, cafeadmin.MenuColumns())

	var condition *orm.Condition
	if cafeID != "" {
		condition = &orm.Condition{
			Field:    columns.Column(cafeadmin.FieldCafeID),
			Operator: "=",
			Value:    cafeID,
		}
	}
	rows, err := console.Datastore.Query(console.Tables().Menus, condition)
	if err != nil {
		cafeadmin.Metrics.RecordQuery(false, 0)
		return nil, err
	}
	cafeadmin.Metrics.RecordQuery(true, 0)

	columns = console.ReconcileColumns(console.Tables().Menus, rows, cafeadmin.MenuColumns())
	menus := make([]cafeadmin.Menu, 0, len(rows))
	for _, row := range rows {
		menus = append(menus, cafeadmin.MapMenu(row, columns))
	}
	return menus, nil
}

// fetchMenuItems lists the catalog items of one menu (or every item
// when the menu id is empty), mapped to view-models.
func fetchMenuItems(console *cafeadmin.Console, menuID string) ([]cafeadmin.MenuItem, error) {
	columns := console.ReconcileColumns(console.Tables().Items, nil, cafeadmin.MenuItemColumns())

	var condition *orm.Condition
	if menuID != "" {
		condition = &orm.Condition{
			Field:    columns.Column(cafeadmin.FieldMenuID),
			Operator: "=",
			Value:    menuID,
		}
	}
	rows, err := console.Datastore.Query(console.Tables().Items, condition)
	if err != nil {
		cafeadmin.Metrics.RecordQuery(false, 0)
		return nil, err
	}
	cafeadmin.Metrics.RecordQuery(true, 0)

	columns = console.ReconcileColumns(console.Tables().Items, rows, cafeadmin.MenuItemColumns())
	items := make([]cafeadmin.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, cafeadmin.MapMenuItem(row, columns))
	}
	return items, nil
}

// sessionCafeID is the default cafe scope for menu operations: the
// signed-in admin's cafe unless the request names one explicitly.
func sessionCafeID(state *HandlerState, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if state.Session != nil {
		return state.Session.CafeID
	}
	return ""
}

// ===== menu definitions

// HandleMenus lists menu definitions, scoped by ?cafe_id= or the
// session's cafe.
func HandleMenus(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menus", console.Tables().Menus)

		menus, err := fetchMenus(console, sessionCafeID(state, ctx.GetQueryParam("cafe_id")))
		if err != nil {
			return state.SetError("Failed to load menus", err, http.StatusInternalServerError).LogAndResponse("menus fetch failed", nil, true)
		}

		response := cafeadmin.MenusResponse{Menus: menus, Count: len(menus)}
		return state.SetSuccess("Menus retrieved", response).LogAndResponse("menus served", response.Count, false)
	}
}

// HandleMenuCreate inserts a menu definition and answers with the
// refreshed list.
func HandleMenuCreate(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menus", console.Tables().Menus)

		var payload cafeadmin.MenuPayload
		if err := ctx.BindJSON(&payload); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		if err := cafeadmin.ValidateDisplayName(payload.Name); err != nil {
			return state.SetError("Invalid menu name", err, http.StatusBadRequest).LogAndResponse("menu name validation failed", err, true)
		}
		payload.CafeID = sessionCafeID(state, payload.CafeID)

		columns := console.ReconcileColumns(console.Tables().Menus, nil, cafeadmin.MenuColumns())
		if err := console.Datastore.Insert(console.Tables().Menus, cafeadmin.BuildMenuPayload(payload, columns)); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to create the menu", err, http.StatusInternalServerError).LogAndResponse("menu insert failed", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		menus, err := fetchMenus(console, payload.CafeID)
		if err != nil {
			return state.SetError("Menu created but the list could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("menus refresh after create failed", nil, true)
		}
		response := cafeadmin.MenusResponse{Menus: menus, Count: len(menus)}
		return state.SetSuccess("Menu created", response).LogAndResponse("menu created: "+payload.Name, nil, true)
	}
}

// HandleMenuUpdate rewrites a menu definition's editable fields.
func HandleMenuUpdate(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menus", console.Tables().Menus)

		var payload cafeadmin.MenuPayload
		if err := ctx.BindJSON(&payload); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		if payload.MenuID == "" {
			return state.SetError("Menu identifier is required", nil, http.StatusBadRequest).LogAndResponse("menu update without id", nil, true)
		}
		if err := cafeadmin.ValidateDisplayName(payload.Name); err != nil {
			return state.SetError("Invalid menu name", err, http.StatusBadRequest).LogAndResponse("menu name validation failed", err, true)
		}
		payload.CafeID = sessionCafeID(state, payload.CafeID)

		columns := console.ReconcileColumns(console.Tables().Menus, nil, cafeadmin.MenuColumns())
		fields := cafeadmin.BuildMenuPayload(payload, columns)
		if err := console.Datastore.Update(console.Tables().Menus, columns.Column(cafeadmin.FieldMenuID), payload.MenuID, fields); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to update the menu", err, http.StatusInternalServerError).LogAndResponse("menu update failed", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		menus, err := fetchMenus(console, payload.CafeID)
		if err != nil {
			return state.SetError("Menu updated but the list could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("menus refresh after update failed", nil, true)
		}
		response := cafeadmin.MenusResponse{Menus: menus, Count: len(menus)}
		return state.SetSuccess("Menu updated", response).LogAndResponse("menu updated: "+payload.MenuID, nil, true)
	}
}

// HandleMenuDelete removes a menu definition by ?menu_id=.
func HandleMenuDelete(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menus", console.Tables().Menus)

		menuID := strings.TrimSpace(ctx.GetQueryParam("menu_id"))
		if menuID == "" {
			return state.SetError("Menu identifier is required", nil, http.StatusBadRequest).LogAndResponse("menu delete without id", nil, true)
		}

		columns := console.ReconcileColumns(console.Tables().Menus, nil, cafeadmin.MenuColumns())
		if err := console.Datastore.Delete(console.Tables().Menus, columns.Column(cafeadmin.FieldMenuID), menuID); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to delete the menu", err, http.StatusInternalServerError).LogAndResponse("menu delete failed", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		menus, err := fetchMenus(console, sessionCafeID(state, ""))
		if err != nil {
			return state.SetError("Menu deleted but the list could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("menus refresh after delete failed", nil, true)
		}
		response := cafeadmin.MenusResponse{Menus: menus, Count: len(menus)}
		return state.SetSuccess("Menu deleted", response).LogAndResponse("menu deleted: "+menuID, nil, true)
	}
}

// ===== catalog items

// HandleMenuItems lists the catalog items of one menu (?menu_id=).
func HandleMenuItems(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menu-items", console.Tables().Items)

		items, err := fetchMenuItems(console, ctx.GetQueryParam("menu_id"))
		if err != nil {
			return state.SetError("Failed to load menu items", err, http.StatusInternalServerError).LogAndResponse("menu items fetch failed", nil, true)
		}

		response := cafeadmin.MenuItemsResponse{Items: items, Count: len(items)}
		return state.SetSuccess("Menu items retrieved", response).LogAndResponse("menu items served", response.Count, false)
	}
}

// HandleMenuItemCreate inserts a catalog item and answers with the
// refreshed list for its menu.
func HandleMenuItemCreate(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menu-items", console.Tables().Items)

		var payload cafeadmin.MenuItemPayload
		if err := ctx.BindJSON(&payload); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		if err := cafeadmin.ValidateDisplayName(payload.Name); err != nil {
			return state.SetError("Invalid item name", err, http.StatusBadRequest).LogAndResponse("item name validation failed", err, true)
		}
		if err := cafeadmin.ValidatePrice(payload.Price); err != nil {
			return state.SetError("Invalid price", err, http.StatusBadRequest).LogAndResponse("price validation failed", err, true)
		}

		columns := console.ReconcileColumns(console.Tables().Items, nil, cafeadmin.MenuItemColumns())
		if err := console.Datastore.Insert(console.Tables().Items, cafeadmin.BuildMenuItemPayload(payload, columns)); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to create the menu item", err, http.StatusInternalServerError).LogAndResponse("menu item insert failed", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		items, err := fetchMenuItems(console, payload.MenuID)
		if err != nil {
			return state.SetError("Item created but the list could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("menu items refresh after create failed", nil, true)
		}
		response := cafeadmin.MenuItemsResponse{Items: items, Count: len(items)}
		return state.SetSuccess("Menu item created", response).LogAndResponse("menu item created: "+payload.Name, nil, true)
	}
}

// HandleMenuItemUpdate rewrites a catalog item's editable fields.
func HandleMenuItemUpdate(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menu-items", console.Tables().Items)

		var payload cafeadmin.MenuItemPayload
		if err := ctx.BindJSON(&payload); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		if payload.ItemID == "" {
			return state.SetError("Item identifier is required", nil, http.StatusBadRequest).LogAndResponse("item update without id", nil, true)
		}
		if err := cafeadmin.ValidateDisplayName(payload.Name); err != nil {
			return state.SetError("Invalid item name", err, http.StatusBadRequest).LogAndResponse("item name validation failed", err, true)
		}
		if err := cafeadmin.ValidatePrice(payload.Price); err != nil {
			return state.SetError("Invalid price", err, http.StatusBadRequest).LogAndResponse("price validation failed", err, true)
		}

		columns := console.ReconcileColumns(console.Tables().Items, nil, cafeadmin.MenuItemColumns())
		fields := cafeadmin.BuildMenuItemPayload(payload, columns)
		if err := console.Datastore.Update(console.Tables().Items, columns.Column(cafeadmin.FieldItemID), payload.ItemID, fields); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to update the menu item", err, http.StatusInternalServerError).LogAndResponse("menu item update failed", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		items, err := fetchMenuItems(console, payload.MenuID)
		if err != nil {
			return state.SetError("Item updated but the list could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("menu items refresh after update failed", nil, true)
		}
		response := cafeadmin.MenuItemsResponse{Items: items, Count: len(items)}
		return state.SetSuccess("Menu item updated", response).LogAndResponse("menu item updated: "+payload.ItemID, nil, true)
	}
}

// HandleMenuItemDelete removes a catalog item by ?item_id=, answering
// with the refreshed list for ?menu_id= when given.
func HandleMenuItemDelete(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/menu-items", console.Tables().Items)

		itemID := strings.TrimSpace(ctx.GetQueryParam("item_id"))
		if itemID == "" {
			return state.SetError("Item identifier is required", nil, http.StatusBadRequest).LogAndResponse("item delete without id", nil, true)
		}

		columns := console.ReconcileColumns(console.Tables().Items, nil, cafeadmin.MenuItemColumns())
		if err := console.Datastore.Delete(console.Tables().Items, columns.Column(cafeadmin.FieldItemID), itemID); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to delete the menu item", err, http.StatusInternalServerError).LogAndResponse("menu item delete failed", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		items, err := fetchMenuItems(console, ctx.GetQueryParam("menu_id"))
		if err != nil {
			return state.SetError("Item deleted but the list could not be refreshed", err, http.StatusInternalServerError).
				LogAndResponse("menu items refresh after delete failed", nil, true)
		}
		response := cafeadmin.MenuItemsResponse{Items: items, Count: len(items)}
		return state.SetSuccess("Menu item deleted", response).LogAndResponse("menu item deleted: "+itemID, nil, true)
	}
}
