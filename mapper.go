package cafeadmin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	orm "github.com/medatechnology/simpleorm"
)

// Placeholder shown wherever a timestamp or amount cannot be rendered.
const DISPLAY_PLACEHOLDER = "—"

// Timestamp layouts accepted from the backend, most common first.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ===== scalar coercion
//
// Rows arrive as map[string]interface{} whose value types depend on the
// driver (rqlite decodes numbers as float64, postgres may hand back
// int64 or []byte). These helpers make the mapper total over all of
// them. Struct mapping via goutil/object does not apply here because
// the column names are only known at runtime through the ColumnMap.

func floatValue(value interface{}) float64 {
	var numeric float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		numeric = v
	case float32:
		numeric = float64(v)
	case int:
		numeric = float64(v)
	case int32:
		numeric = float64(v)
	case int64:
		numeric = float64(v)
	case bool:
		if v {
			numeric = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		numeric = parsed
	case []byte:
		return floatValue(string(v))
	default:
		return 0
	}
	if math.IsNaN(numeric) || math.IsInf(numeric, 0) {
		return 0
	}
	return numeric
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		// Identifiers come back as float64 from JSON decoding; render
		// whole numbers without the trailing ".0" wart.
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func boolValue(value interface{}, fallback bool) bool {
	switch v := value.(type) {
	case nil:
		return fallback
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "1", "yes", "active":
			return true
		case "false", "f", "0", "no", "inactive":
			return false
		}
		return fallback
	}
	if numeric, ok := floatFromNumber(value); ok {
		return numeric != 0
	}
	return fallback
}

func intValue(value interface{}, fallback int) int {
	switch value.(type) {
	case nil:
		return fallback
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value.(string)))
		if err != nil {
			return fallback
		}
		return parsed
	}
	if numeric, ok := floatFromNumber(value); ok {
		return int(numeric)
	}
	return fallback
}

// ===== display formatting

// FormatDateTime renders a backend timestamp for the console. Nil or
// empty values render as the placeholder; a non-empty string that no
// layout parses is returned verbatim so odd backend formats still show
// something; any other unparseable value renders as the placeholder.
func FormatDateTime(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return DISPLAY_PLACEHOLDER
	case time.Time:
		if v.IsZero() {
			return DISPLAY_PLACEHOLDER
		}
		return v.Format("Jan 2, 2006, 3:04 PM")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return DISPLAY_PLACEHOLDER
		}
		for _, layout := range dateTimeLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.Format("Jan 2, 2006, 3:04 PM")
			}
		}
		return trimmed
	}
	return DISPLAY_PLACEHOLDER
}

// FormatCurrency renders an amount as dollars with two decimals.
func FormatCurrency(amount interface{}) string {
	switch amount.(type) {
	case nil:
		return DISPLAY_PLACEHOLDER
	}
	return "$" + strconv.FormatFloat(floatValue(amount), 'f', 2, 64)
}

// CentsColumn reports whether a detected column stores integer cents
// instead of a decimal dollar amount.
func CentsColumn(column string) bool {
	return strings.Contains(column, "cents")
}

// priceFromColumn coerces a price value, converting cents to dollars
// when the detected column name says so.
func priceFromColumn(value interface{}, column string) float64 {
	numeric := floatValue(value)
	if CentsColumn(column) {
		numeric = numeric / 100
	}
	if numeric < 0 {
		return 0
	}
	return numeric
}

// ===== view-model mapping

// GroupLineItems turns raw order-item rows into per-order line items,
// keyed by the order identifier rendered as a string so numeric and
// string ids interoperate. itemNames resolves item ids to display
// names; unnamed items render as "Item #<id>", items with no id at all
// as a plain "Item". Missing or invalid quantities default to 1. An
// empty batch yields an empty map.
func GroupLineItems(rows []orm.DBRecord, columns ColumnMap, itemNames map[string]string) map[string][]OrderLineItem {
	grouped := make(map[string][]OrderLineItem)
	for _, row := range rows {
		orderValue, ok := columns.Value(row, FieldOrderID)
		if !ok || orderValue == nil {
			continue
		}
		orderKey := stringValue(orderValue)
		if orderKey == "" {
			continue
		}

		quantity := 1
		if qtyValue, ok := columns.Value(row, FieldQuantity); ok {
			quantity = intValue(qtyValue, 1)
			if quantity <= 0 {
				quantity = 1
			}
		}

		itemKey := ""
		if itemValue, ok := columns.Value(row, FieldItemID); ok && itemValue != nil {
			itemKey = stringValue(itemValue)
		}
		label := itemNames[itemKey]
		if label == "" {
			if itemKey == "" {
				label = "Item"
			} else {
				label = "Item #" + itemKey
			}
		}

		grouped[orderKey] = append(grouped[orderKey], OrderLineItem{Name: label, Qty: quantity})
	}
	return grouped
}

// MapOrder builds the render-ready order from one raw row, the active
// column map, the grouped line items and the customer-name lookup.
// Orders with no joined items get an empty slice, never nil.
func MapOrder(row orm.DBRecord, columns ColumnMap, lineItems map[string][]OrderLineItem, customerNames map[string]string) Order {
	orderID := DISPLAY_PLACEHOLDER
	if value, ok := columns.Value(row, FieldOrderID); ok && value != nil {
		orderID = stringValue(value)
	}

	statusValue, _ := columns.Value(row, FieldStatus)
	totalColumn := columns.Column(FieldTotal)
	totalValue, _ := columns.Value(row, FieldTotal)
	createdValue, _ := columns.Value(row, FieldCreatedAt)

	items := lineItems[orderID]
	if items == nil {
		items = []OrderLineItem{}
	}

	return Order{
		OrderID:  orderID,
		Customer: customerDisplayName(row, columns, customerNames),
		Status:   NormalizeOrderStatus(statusValue),
		Total:    priceFromColumn(totalValue, totalColumn),
		PlacedAt: FormatDateTime(createdValue),
		Items:    items,
		Raw:      row,
	}
}

// customerDisplayName resolves the customer column through the map,
// then through the literal guess list, then through the joined user
// lookup, before giving up with a generic label.
func customerDisplayName(row orm.DBRecord, columns ColumnMap, customerNames map[string]string) string {
	if value, ok := columns.Value(row, FieldCustomer); ok {
		if name := strings.TrimSpace(stringValue(value)); name != "" {
			return name
		}
	}
	for _, guess := range []string{"customer", "customer_full_name", "customer_name", "user_name", "username"} {
		if value, ok := row.Data[guess]; ok {
			if name := strings.TrimSpace(stringValue(value)); name != "" {
				return name
			}
		}
	}
	if userValue, ok := columns.Value(row, FieldUserID); ok && userValue != nil {
		userKey := stringValue(userValue)
		if name := customerNames[userKey]; name != "" {
			return name
		}
		if userKey != "" {
			return userKey
		}
	}
	return "Guest customer"
}

// MapMenuItem builds the catalog item view-model, cents-aware on the
// detected price column.
func MapMenuItem(row orm.DBRecord, columns ColumnMap) MenuItem {
	itemID := DISPLAY_PLACEHOLDER
	if value, ok := columns.Value(row, FieldItemID); ok && value != nil {
		itemID = stringValue(value)
	}

	name := "Menu item"
	if value, ok := columns.Value(row, FieldName); ok {
		if display := strings.TrimSpace(stringValue(value)); display != "" {
			name = display
		}
	}

	priceColumn := columns.Column(FieldPrice)
	priceValue, _ := columns.Value(row, FieldPrice)
	statusValue, _ := columns.Value(row, FieldStatus)
	menuValue, _ := columns.Value(row, FieldMenuID)
	descValue, _ := columns.Value(row, FieldDesc)

	return MenuItem{
		ItemID:      itemID,
		MenuID:      stringValue(menuValue),
		Name:        name,
		Description: stringValue(descValue),
		Price:       priceFromColumn(priceValue, priceColumn),
		Status:      NormalizeMenuStatus(statusValue),
		Raw:         row,
	}
}

// MapMenu builds the menu-definition view-model. The shown timestamp
// prefers updated_at and falls back to created_at.
func MapMenu(row orm.DBRecord, columns ColumnMap) Menu {
	menuID := DISPLAY_PLACEHOLDER
	if value, ok := columns.Value(row, FieldMenuID); ok && value != nil {
		menuID = stringValue(value)
	}

	name := "Menu"
	if value, ok := columns.Value(row, FieldName); ok {
		if display := strings.TrimSpace(stringValue(value)); display != "" {
			name = display
		}
	}

	activeValue, _ := columns.Value(row, FieldActive)
	cafeValue, _ := columns.Value(row, FieldCafeID)
	descValue, _ := columns.Value(row, FieldDesc)

	timestamp, ok := columns.Value(row, FieldUpdatedAt)
	if !ok || timestamp == nil {
		timestamp, _ = columns.Value(row, FieldCreatedAt)
	}
	rendered := ""
	if timestamp != nil {
		rendered = FormatDateTime(timestamp)
	}

	return Menu{
		MenuID:      menuID,
		CafeID:      stringValue(cafeValue),
		Name:        name,
		Description: stringValue(descValue),
		IsActive:    boolValue(activeValue, true),
		UpdatedAt:   rendered,
		Raw:         row,
	}
}

// MapAdminProfile builds the profile view-model from the latest admin
// row plus the concurrently fetched store and activity lookups.
func MapAdminProfile(row orm.DBRecord, columns ColumnMap, stores []string, activity []ActivityEntry) AdminProfile {
	idValue, _ := columns.Value(row, FieldAdminID)
	nameValue, _ := columns.Value(row, FieldName)
	emailValue, _ := columns.Value(row, FieldEmail)
	cafeValue, _ := columns.Value(row, FieldCafeID)
	createdValue, _ := columns.Value(row, FieldCreatedAt)

	if stores == nil {
		stores = []string{}
	}
	if activity == nil {
		activity = []ActivityEntry{}
	}

	return AdminProfile{
		AdminID:   stringValue(idValue),
		Name:      strings.TrimSpace(stringValue(nameValue)),
		Email:     strings.TrimSpace(stringValue(emailValue)),
		CafeID:    stringValue(cafeValue),
		CreatedAt: FormatDateTime(createdValue),
		Stores:    stores,
		Activity:  activity,
		Raw:       row,
	}
}

// MapActivityEntries renders activity-log rows for the profile page.
func MapActivityEntries(rows []orm.DBRecord, columns ColumnMap) []ActivityEntry {
	entries := make([]ActivityEntry, 0, len(rows))
	for _, row := range rows {
		descValue, _ := columns.Value(row, FieldActivity)
		description := strings.TrimSpace(stringValue(descValue))
		if description == "" {
			continue
		}
		atValue, _ := columns.Value(row, FieldCreatedAt)
		rendered := ""
		if atValue != nil {
			rendered = FormatDateTime(atValue)
		}
		entries = append(entries, ActivityEntry{Description: description, At: rendered})
	}
	return entries
}

// ===== mutation payload builders
//
// Writes go through the same ColumnMap as reads so a deployment that
// renamed a column gets the mutation under the name it actually uses.

// BuildMenuItemPayload turns the dialog fields into a column→value map
// for insert/update. Boolean-style availability columns receive a
// bool, text columns receive the normalized status. Cents columns
// receive integer cents.
func BuildMenuItemPayload(payload MenuItemPayload, columns ColumnMap) map[string]interface{} {
	status := NormalizeMenuStatus(payload.Status)
	statusColumn := columns.Column(FieldStatus)
	priceColumn := columns.Column(FieldPrice)

	data := map[string]interface{}{
		columns.Column(FieldMenuID): nullableString(payload.MenuID),
		columns.Column(FieldName):   payload.Name,
		columns.Column(FieldDesc):   nullableString(payload.Description),
	}

	if CentsColumn(priceColumn) {
		data[priceColumn] = int(math.Round(payload.Price * 100))
	} else {
		data[priceColumn] = payload.Price
	}

	if BooleanStatusColumn(statusColumn) {
		data[statusColumn] = status == MENU_STATUS_AVAILABLE
	} else {
		data[statusColumn] = status
	}
	return data
}

// BuildMenuPayload turns the menu-definition dialog fields into a
// column→value map. is_active derives from the status text: anything
// but "inactive" is active.
func BuildMenuPayload(payload MenuPayload, columns ColumnMap) map[string]interface{} {
	return map[string]interface{}{
		columns.Column(FieldName):   payload.Name,
		columns.Column(FieldCafeID): nullableString(payload.CafeID),
		columns.Column(FieldDesc):   nullableString(payload.Description),
		columns.Column(FieldActive): payload.Status != "inactive",
	}
}

// BuildOrderStatusPatch is the single-field patch for the status
// select on the orders board.
func BuildOrderStatusPatch(status string, columns ColumnMap) map[string]interface{} {
	return map[string]interface{}{
		columns.Column(FieldStatus): status,
	}
}

// RowIdentifier extracts an entity's identifier from its retained raw
// row through the map, falling back to the view-model value the
// mapper rendered.
func RowIdentifier(row orm.DBRecord, columns ColumnMap, field Field, rendered string) (interface{}, error) {
	if value, ok := columns.Value(row, field); ok && value != nil {
		return value, nil
	}
	if rendered != "" && rendered != DISPLAY_PLACEHOLDER {
		return rendered, nil
	}
	return nil, fmt.Errorf("unable to determine the %s identifier", field)
}

// StringValue and FloatValue expose the scalar coercion to handlers
// that read individual detected columns off raw rows.
func StringValue(value interface{}) string {
	return stringValue(value)
}

func FloatValue(value interface{}) float64 {
	return floatValue(value)
}

func nullableString(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
