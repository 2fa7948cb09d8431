package cafeadmin

import (
	orm "github.com/medatechnology/simpleorm"
)

// Field is a semantic field key resolved against whatever column names a
// deployment's tables actually use. Schema variants coexist across
// iterations of the platform (price vs unit_price vs price_cents,
// text status vs boolean availability), so column names are detected
// from live rows instead of hardcoded.
type Field string

const (
	FieldID        Field = "id"
	FieldName      Field = "name"
	FieldPrice     Field = "price"
	FieldStatus    Field = "status"
	FieldCreatedAt Field = "created_at"
	FieldUpdatedAt Field = "updated_at"
	FieldCustomer  Field = "customer"
	FieldOrderID   Field = "order_id"
	FieldItemID    Field = "item_id"
	FieldMenuID    Field = "menu_id"
	FieldCafeID    Field = "cafe_id"
	FieldUserID    Field = "user_id"
	FieldQuantity  Field = "qty"
	FieldTotal     Field = "total"
	FieldEmail     Field = "email"
	FieldPassword  Field = "password"
	FieldActive    Field = "is_active"
	FieldDesc      Field = "description"
	FieldNotes     Field = "notes"
	FieldActivity  Field = "activity"
	FieldStore     Field = "store"
	FieldAdminID   Field = "admin_id"
)

// ColumnMap resolves semantic fields to the actual column names of one
// table. One instance per (table, process-session): derived from the
// first non-empty batch and reused for every later read and write
// against that table. Every field always resolves to some name, so
// downstream code never handles "unknown column".
type ColumnMap map[Field]string

// Column returns the resolved column name for a field, or the field's
// own name when the map was never configured for it.
func (m ColumnMap) Column(field Field) string {
	if m != nil {
		if col, ok := m[field]; ok && col != "" {
			return col
		}
	}
	return string(field)
}

// Value reads a field's value out of a raw row through the map.
func (m ColumnMap) Value(row orm.DBRecord, field Field) (interface{}, bool) {
	if row.Data == nil {
		return nil, false
	}
	v, ok := row.Data[m.Column(field)]
	return v, ok
}

// Clone returns an independent copy, used when a handler re-learns a
// mapping without disturbing the one cached on the Console.
func (m ColumnMap) Clone() ColumnMap {
	out := make(ColumnMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FieldSpec is one semantic field with its ordered candidate column
// names (most-preferred first) and the hardcoded fallback used when no
// candidate matches the sample row.
type FieldSpec struct {
	Field      Field
	Candidates []string
	Fallback   string
}

// DetectColumn returns the first candidate present in the key set, else
// the fallback. Pure function, no side effects.
func DetectColumn(presentKeys map[string]interface{}, candidates []string, fallback string) string {
	for _, candidate := range candidates {
		if _, ok := presentKeys[candidate]; ok {
			return candidate
		}
	}
	return fallback
}

// ConfigureMapping builds a ColumnMap from the first structured row of
// a batch. An empty batch returns the current map unchanged: mapping
// detection is skipped, never reset, so an empty result set cannot
// erase a previously learned mapping. When a field was already
// resolved in the current map, that resolution serves as the fallback
// instead of the hardcoded one.
func ConfigureMapping(rows []orm.DBRecord, specs []FieldSpec, current ColumnMap) ColumnMap {
	var sample map[string]interface{}
	for _, row := range rows {
		if row.Data != nil {
			sample = row.Data
			break
		}
	}
	if sample == nil {
		return current
	}

	next := make(ColumnMap, len(specs))
	for _, spec := range specs {
		fallback := spec.Fallback
		if current != nil {
			if prev, ok := current[spec.Field]; ok && prev != "" {
				fallback = prev
			}
		}
		next[spec.Field] = DetectColumn(sample, spec.Candidates, fallback)
	}
	return next
}

// FallbackColumnMap resolves every field to its hardcoded fallback,
// used before any non-empty batch has been seen for a table.
func FallbackColumnMap(specs []FieldSpec) ColumnMap {
	m := make(ColumnMap, len(specs))
	for _, spec := range specs {
		m[spec.Field] = spec.Fallback
	}
	return m
}

// BooleanStatusColumn reports whether a detected menu status column
// carries boolean availability rather than a text status. Payload
// builders write a bool for these and text otherwise.
func BooleanStatusColumn(column string) bool {
	switch column {
	case "availability", "is_available", "in_stock", "available":
		return true
	}
	return false
}

// Candidate vocabularies, collected from the schema variants observed
// across deployments of the platform.

// OrderColumns describes the orders table.
func OrderColumns() []FieldSpec {
	return []FieldSpec{
		{Field: FieldOrderID, Candidates: []string{"order_id", "id", "order_number"}, Fallback: "order_id"},
		{Field: FieldCustomer, Candidates: []string{"customer", "customer_full_name", "customer_name", "user_name", "username"}, Fallback: "customer"},
		{Field: FieldUserID, Candidates: []string{"user_id", "customer_id"}, Fallback: "user_id"},
		{Field: FieldStatus, Candidates: []string{"status", "order_status", "state"}, Fallback: "status"},
		{Field: FieldTotal, Candidates: []string{"total", "total_cents", "total_amount", "amount", "amount_cents"}, Fallback: "total"},
		{Field: FieldCreatedAt, Candidates: []string{"created_at", "placed_at", "ordered_at", "inserted_at"}, Fallback: "created_at"},
		{Field: FieldCafeID, Candidates: []string{"cafe_id", "store_id"}, Fallback: "cafe_id"},
		{Field: FieldNotes, Candidates: []string{"notes", "note", "comment"}, Fallback: "notes"},
	}
}

// OrderItemColumns describes the order line-item join table.
func OrderItemColumns() []FieldSpec {
	return []FieldSpec{
		{Field: FieldOrderID, Candidates: []string{"order_id"}, Fallback: "order_id"},
		{Field: FieldItemID, Candidates: []string{"item_id", "menu_item_id", "product_id"}, Fallback: "item_id"},
		{Field: FieldQuantity, Candidates: []string{"qty", "quantity", "count"}, Fallback: "qty"},
	}
}

// MenuItemColumns describes the catalog item table.
func MenuItemColumns() []FieldSpec {
	return []FieldSpec{
		{Field: FieldItemID, Candidates: []string{"item_id", "menu_item_id", "id"}, Fallback: "item_id"},
		{Field: FieldMenuID, Candidates: []string{"menu_id", "category_id"}, Fallback: "menu_id"},
		{Field: FieldName, Candidates: []string{"item_name", "name", "title"}, Fallback: "item_name"},
		{Field: FieldDesc, Candidates: []string{"description", "details"}, Fallback: "description"},
		{Field: FieldPrice, Candidates: []string{"price", "unit_price", "price_cents", "amount", "amount_cents"}, Fallback: "price"},
		{Field: FieldStatus, Candidates: []string{"availability", "is_available", "in_stock", "status", "item_status"}, Fallback: "availability"},
	}
}

// MenuColumns describes the menu-definition table.
func MenuColumns() []FieldSpec {
	return []FieldSpec{
		{Field: FieldMenuID, Candidates: []string{"menu_id", "id"}, Fallback: "menu_id"},
		{Field: FieldCafeID, Candidates: []string{"cafe_id", "store_id"}, Fallback: "cafe_id"},
		{Field: FieldName, Candidates: []string{"name", "menu_name", "title"}, Fallback: "name"},
		{Field: FieldDesc, Candidates: []string{"description", "details"}, Fallback: "description"},
		{Field: FieldActive, Candidates: []string{"is_active", "active", "enabled"}, Fallback: "is_active"},
		{Field: FieldCreatedAt, Candidates: []string{"created_at", "inserted_at"}, Fallback: "created_at"},
		{Field: FieldUpdatedAt, Candidates: []string{"updated_at", "modified_at"}, Fallback: "updated_at"},
	}
}

// AdminColumns describes the admin account table.
func AdminColumns() []FieldSpec {
	return []FieldSpec{
		{Field: FieldAdminID, Candidates: []string{"admin_id", "id", "staff_id"}, Fallback: "admin_id"},
		{Field: FieldName, Candidates: []string{"name", "full_name", "admin_name"}, Fallback: "name"},
		{Field: FieldEmail, Candidates: []string{"email", "email_address"}, Fallback: "email"},
		{Field: FieldPassword, Candidates: []string{"password", "pwd", "password_hash"}, Fallback: "password"},
		{Field: FieldCafeID, Candidates: []string{"cafe_id", "store_id"}, Fallback: "cafe_id"},
		{Field: FieldCreatedAt, Candidates: []string{"created_at", "inserted_at"}, Fallback: "created_at"},
	}
}

// ActivityColumns describes the activity-log table read by the profile.
func ActivityColumns() []FieldSpec {
	return []FieldSpec{
		{Field: FieldAdminID, Candidates: []string{"admin_id", "staff_id", "actor_id"}, Fallback: "admin_id"},
		{Field: FieldActivity, Candidates: []string{"description", "activity", "message", "action"}, Fallback: "description"},
		{Field: FieldCreatedAt, Candidates: []string{"created_at", "occurred_at", "at"}, Fallback: "created_at"},
	}
}
