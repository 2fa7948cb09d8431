package cafeadmin

import (
	"fmt"
	"sync"
	"time"

	utils "github.com/medatechnology/goutil"
)

// Conventional table names; every one of them is overridable per
// deployment because the backend schema is not fixed across iterations
// of the console.
const (
	DEFAULT_TABLE_ORDERS      = "orders"
	DEFAULT_TABLE_ORDER_ITEMS = "order_item"
	DEFAULT_TABLE_ITEMS       = "item"
	DEFAULT_TABLE_MENUS       = "menu"
	DEFAULT_TABLE_ADMINS      = "admin"
	DEFAULT_TABLE_USERS       = "user"
	DEFAULT_TABLE_CAFES       = "cafe"
	DEFAULT_TABLE_ACTIVITY    = "activity_log"
)

// TableNames is the deployment's table-name surface. One instance lives
// in the ConsoleConfig and is passed to the handlers through the Console.
type TableNames struct {
	Orders     string `json:"orders,omitempty"       db:"orders"`
	OrderItems string `json:"order_items,omitempty"  db:"order_items"`
	Items      string `json:"items,omitempty"        db:"items"`
	Menus      string `json:"menus,omitempty"        db:"menus"`
	Admins     string `json:"admins,omitempty"       db:"admins"`
	Users      string `json:"users,omitempty"        db:"users"`
	Cafes      string `json:"cafes,omitempty"        db:"cafes"`
	Activity   string `json:"activity,omitempty"     db:"activity"`
}

// BackendConfig is what the console needs to reach the remote data
// store (the DBMS behind the generic query/update client).
type BackendConfig struct {
	DBMS        string `json:"dbms,omitempty"            db:"dbms"`
	Host        string `json:"host,omitempty"            db:"host"`
	Port        string `json:"port,omitempty"            db:"port"`
	Username    string `json:"username,omitempty"        db:"username"`
	Password    string `json:"password,omitempty"        db:"password"`
	Database    string `json:"database,omitempty"        db:"database"`
	SSL         bool   `json:"ssl,omitempty"             db:"ssl"`
	Options     string `json:"options,omitempty"         db:"options"`
	Consistency string `json:"consistency,omitempty"     db:"consistency"`
	URL         string `json:"url,omitempty"             db:"url"`

	HttpTimeout  time.Duration `json:"http_timeout,omitempty"   db:"http_timeout"`
	RetryTimeout time.Duration `json:"retry_timeout,omitempty"  db:"retry_timeout"`
	MaxRetries   int           `json:"max_retries,omitempty"    db:"max_retries"`
}

// HasCredentials reports whether the deployment configured the backend
// at all. When false the console runs in the "configuration absent"
// state: data routes answer with a sticky error and nothing is retried.
func (bc BackendConfig) HasCredentials() bool {
	return bc.Host != "" && bc.Database != ""
}

// GenerateRQLiteURL builds the URL used by the direct-rqlite driver,
// basic-auth credentials are handled by the driver itself.
func (bc *BackendConfig) GenerateRQLiteURL() {
	tmpURL := "http://"
	if bc.SSL {
		tmpURL = "https://"
	}
	if len(bc.Host) > 0 {
		tmpURL += bc.Host
	} else {
		tmpURL += "localhost"
		fmt.Println("ERROR! No Host defined in environment")
	}
	if len(bc.Port) > 0 {
		tmpURL += ":" + bc.Port
	}
	bc.URL = tmpURL
}

// ConsoleConfig is the whole configuration surface of the admin console.
type ConsoleConfig struct {
	Backend BackendConfig `json:"backend,omitempty"       db:"backend"`
	Tables  TableNames    `json:"tables,omitempty"        db:"tables"`

	Host        string `json:"host,omitempty"          db:"host"`
	Port        string `json:"port,omitempty"          db:"port"`
	SSL         bool   `json:"ssl,omitempty"           db:"ssl"`
	Label       string `json:"label,omitempty"         db:"label"`
	APIKey      string `json:"api_key,omitempty"       db:"api_key"`
	ClientID    string `json:"client_id,omitempty"     db:"client_id"`
	InternalAPI string `json:"internal_api,omitempty"  db:"internal_api"` // username:password for /console routes
	LoginPath   string `json:"login_path,omitempty"    db:"login_path"`   // where Require() points unauthenticated clients

	SessionExp  time.Duration `json:"session_exp,omitempty"  db:"session_exp"`
	TTLTicker   time.Duration `json:"ttl_ticker,omitempty"   db:"ttl_ticker"`
	MaxSessions int           `json:"max_sessions,omitempty" db:"max_sessions"`
}

func (cc *ConsoleConfig) PrintDebug(secure bool) {
	fmt.Println("Loading from environment")
	fmt.Println("Label         : ", cc.Label)
	fmt.Println("Host          : ", cc.Host)
	fmt.Println("Port          : ", cc.Port)
	fmt.Println("Backend DBMS  : ", cc.Backend.DBMS)
	fmt.Println("Backend Host  : ", cc.Backend.Host)
	fmt.Println("Backend Port  : ", cc.Backend.Port)
	fmt.Println("Database      : ", cc.Backend.Database)
	fmt.Println("SSL           : ", cc.Backend.SSL)
	fmt.Println("Orders table  : ", cc.Tables.Orders)
	fmt.Println("Items table   : ", cc.Tables.Items)
	fmt.Println("Admin table   : ", cc.Tables.Admins)
	if secure {
		fmt.Println("Password      : ", cc.Backend.Password)
		fmt.Println("API key       : ", cc.APIKey)
		fmt.Println("Internal API  : ", cc.InternalAPI)
	}
}

// Cache for console configuration to avoid repeated environment variable lookups
var (
	cachedConfig ConsoleConfig
	configOnce   sync.Once
)

// LoadConfigFromEnvironment reads the console configuration, cached
// after first load. Use ReloadConfig() to force reload.
func LoadConfigFromEnvironment() ConsoleConfig {
	configOnce.Do(func() {
		cachedConfig = loadConfigFromEnvironment()
	})
	return cachedConfig
}

// Internal function that actually loads from environment (not cached)
func loadConfigFromEnvironment() ConsoleConfig {
	tmpConfig := ConsoleConfig{
		Backend: BackendConfig{
			DBMS:         utils.GetEnvString("BACKEND_DBMS", "RQLITE"),
			Host:         utils.GetEnvString("BACKEND_HOST", ""),
			Port:         utils.GetEnvString("BACKEND_PORT", ""),
			Username:     utils.GetEnvString("BACKEND_USERNAME", ""),
			Password:     utils.GetEnvString("BACKEND_PASSWORD", ""),
			Database:     utils.GetEnvString("BACKEND_DATABASE", ""),
			SSL:          utils.GetEnvBool("BACKEND_SSL", false),
			Options:      utils.GetEnvString("BACKEND_OPTIONS", ""),
			Consistency:  utils.GetEnvString("BACKEND_CONSISTENCY", ""),
			HttpTimeout:  utils.GetEnvDuration("BACKEND_HTTP_TIMEOUT", DEFAULT_TIMEOUT),
			RetryTimeout: utils.GetEnvDuration("BACKEND_RETRY_TIMEOUT", DEFAULT_RETRY_TIMEOUT),
			MaxRetries:   utils.GetEnvInt("BACKEND_MAX_RETRIES", DEFAULT_RETRY),
		},
		Tables: TableNames{
			Orders:     utils.GetEnvString("CAFE_TABLE_ORDERS", DEFAULT_TABLE_ORDERS),
			OrderItems: utils.GetEnvString("CAFE_TABLE_ORDER_ITEMS", DEFAULT_TABLE_ORDER_ITEMS),
			Items:      utils.GetEnvString("CAFE_TABLE_ITEMS", DEFAULT_TABLE_ITEMS),
			Menus:      utils.GetEnvString("CAFE_TABLE_MENUS", DEFAULT_TABLE_MENUS),
			Admins:     utils.GetEnvString("CAFE_TABLE_ADMINS", DEFAULT_TABLE_ADMINS),
			Users:      utils.GetEnvString("CAFE_TABLE_USERS", DEFAULT_TABLE_USERS),
			Cafes:      utils.GetEnvString("CAFE_TABLE_CAFES", DEFAULT_TABLE_CAFES),
			Activity:   utils.GetEnvString("CAFE_TABLE_ACTIVITY", DEFAULT_TABLE_ACTIVITY),
		},
		Host:        utils.GetEnvString("CONSOLE_HOST", ""),
		Port:        utils.GetEnvString("CONSOLE_PORT", "8080"),
		SSL:         utils.GetEnvBool("CONSOLE_SSL", false),
		Label:       utils.GetEnvString("CONSOLE_LABEL", APP_NAME),
		APIKey:      utils.GetEnvString("CONSOLE_API_KEY", ""),
		ClientID:    utils.GetEnvString("CONSOLE_CLIENT_ID", ""),
		InternalAPI: utils.GetEnvString("CONSOLE_INTERNAL_API", ""),
		LoginPath:   utils.GetEnvString("CONSOLE_LOGIN_PATH", "/login"),
		SessionExp:  utils.GetEnvDuration("CONSOLE_SESSION_EXP", DEFAULT_SESSION_EXPIRES_MINUTES),
		TTLTicker:   utils.GetEnvDuration("CONSOLE_SESSION_TTL_TICKER", DEFAULT_TTL_TICKER_MINUTES),
		MaxSessions: utils.GetEnvInt("CONSOLE_MAX_SESSIONS", DEFAULT_MAX_SESSIONS),
	}
	return tmpConfig
}

// ReloadConfig forces a reload of console configuration from environment
// Useful if environment variables change at runtime
func ReloadConfig() ConsoleConfig {
	cachedConfig = loadConfigFromEnvironment()
	return cachedConfig
}
