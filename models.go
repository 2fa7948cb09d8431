package cafeadmin

import (
	"time"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/goutil/medaerror"
)

const (
	// Default session settings
	DEFAULT_SESSION_EXPIRES_MINUTES = 12 * 60 * time.Minute // every 12 hours
	DEFAULT_TTL_TICKER_MINUTES      = 5 * time.Minute       // every [value] minute, check for expiration for ttl

	// Default HTTP timeouts
	DEFAULT_TIMEOUT       = 60 * time.Second
	DEFAULT_RETRY_TIMEOUT = 60 * time.Second
	DEFAULT_RETRY         = 3

	// Default session store settings
	DEFAULT_MAX_SESSIONS = 200

	// Orders board fetch window
	DEFAULT_ORDERS_LIMIT = 100
)

// GLOBAL VAR
var (
	ServerStartTime time.Time

	// Standard errors using medaerror for consistency
	ErrNoDatastore    = medaerror.MedaError{Message: "no datastore connection"}
	ErrConfigMissing  = medaerror.MedaError{Message: "backend configuration missing"}
	ErrNoSession      = medaerror.MedaError{Message: "no cached admin session"}
	ErrSessionInvalid = medaerror.MedaError{Message: "cached admin session is missing an identifier"}
)

// StandardResponse is a structured response format for all API responses
type StandardResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	// Where the client should navigate when the session is absent/invalid
	Redirect string `json:"redirect,omitempty"`
}

// AdminSession is the minimal serialized subset of an admin row that is
// cached per token. The identifier is always populated under both ID and
// AdminID: older deployments key the admin table by admin_id, newer ones
// by id, and cached sessions must read back the same either way.
// The password column is never serialized here.
type AdminSession struct {
	Token     string `json:"token,omitempty"`
	ID        string `json:"id,omitempty"`
	AdminID   string `json:"admin_id,omitempty"`
	CafeID    string `json:"cafe_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DisplayName is what the dashboard shows next to "Signed in as".
func (s AdminSession) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Email != "" {
		return s.Email
	}
	if s.ID != "" {
		return "Admin #" + s.ID
	}
	return "Admin"
}

// Identifier returns the single source identifier behind both aliases.
func (s AdminSession) Identifier() string {
	if s.AdminID != "" {
		return s.AdminID
	}
	return s.ID
}

// ===== Orders board view-models

// OrderLineItem is one "2× Cappuccino" chip on the orders board.
type OrderLineItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Order is the render-ready representation of one backend order row,
// independent of which column names the deployment actually uses.
// Raw keeps the original row so later mutations can extract the
// identifier through the active column map.
type Order struct {
	OrderID  string          `json:"order_id"`
	Customer string          `json:"customer"`
	Status   string          `json:"status"`
	Total    float64         `json:"total"`
	PlacedAt string          `json:"placed_at"`
	Items    []OrderLineItem `json:"items"`
	Raw      orm.DBRecord    `json:"-"`
}

// MenuItem is the render-ready representation of one catalog item.
type MenuItem struct {
	ItemID      string       `json:"item_id"`
	MenuID      string       `json:"menu_id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       float64      `json:"price"`
	Status      string       `json:"status"`
	Raw         orm.DBRecord `json:"-"`
}

// Menu is one menu definition (a cafe's catalog grouping).
type Menu struct {
	MenuID      string       `json:"menu_id"`
	CafeID      string       `json:"cafe_id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	IsActive    bool         `json:"is_active"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
	Raw         orm.DBRecord `json:"-"`
}

// ActivityEntry is one line of the profile's recent-activity log.
type ActivityEntry struct {
	Description string `json:"description"`
	At          string `json:"at,omitempty"`
}

// AdminProfile is the profile page view-model: the admin identity plus
// the store assignments and activity log fetched alongside it.
type AdminProfile struct {
	AdminID   string          `json:"admin_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	CafeID    string          `json:"cafe_id,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	Stores    []string        `json:"stores"`
	Activity  []ActivityEntry `json:"recent_activity"`
	Raw       orm.DBRecord    `json:"-"`
}

// ===== Request bodies

// SignInRequest carries the login form fields.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest carries the signup form fields.
type SignUpRequest struct {
	Name            string `json:"name"`
	CafeID          string `json:"cafe_id"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// StatusUpdateRequest asks for one order to move to a new status.
type StatusUpdateRequest struct {
	OrderID string      `json:"order_id"`
	Status  interface{} `json:"status"` // normalized before use
}

// MenuItemPayload carries the menu-item dialog fields for insert/update.
// ItemID identifies the target on update/delete and is ignored on insert.
type MenuItemPayload struct {
	ItemID      string      `json:"item_id,omitempty"`
	MenuID      string      `json:"menu_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Status      interface{} `json:"status,omitempty"`
}

// MenuPayload carries the menu-definition dialog fields.
type MenuPayload struct {
	MenuID      string `json:"menu_id,omitempty"`
	Name        string `json:"name"`
	CafeID      string `json:"cafe_id,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"` // "active" unless "inactive"
}

// ===== Response bodies

// OrdersResponse is the orders board payload.
type OrdersResponse struct {
	Orders        []Order `json:"orders"`
	Count         int     `json:"count"`
	ExecutionTime float64 `json:"execution_time"`
}

// MenusResponse is the menu editor's menus payload.
type MenusResponse struct {
	Menus []Menu `json:"menus"`
	Count int    `json:"count"`
}

// MenuItemsResponse is the menu editor's items payload for one menu.
type MenuItemsResponse struct {
	Items []MenuItem `json:"items"`
	Count int        `json:"count"`
}
