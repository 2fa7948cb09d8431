package cafeadmin

import (
	"fmt"
	"sync"
	"time"

	orm "github.com/medatechnology/simpleorm"

	utils "github.com/medatechnology/goutil"
	"github.com/medatechnology/goutil/metrics"
	"github.com/medatechnology/goutil/print"
	"github.com/medatechnology/goutil/simplelog"
)

const (
	CAFEADMIN_ENV_FILE = ".env.cafeadmin"
	APP_NAME           = "BeanThere Admin"
	APP_VERSION        = "0.0.1"
)

// Just for debugging, pingpong function
func PingPong() string {
	return APP_NAME + " " + APP_VERSION + " is running"
}

// Console is the explicitly constructed context threaded into every
// handler group: the backend handle, the session store, the table
// configuration and the per-table column maps. Built once in main,
// never a package global.
type Console struct {
	Datastore *Datastore
	Sessions  *SessionStore
	Config    ConsoleConfig

	mu         sync.RWMutex
	columnMaps map[string]ColumnMap // keyed by table name
}

// NewConsole wires the console from an already-connected datastore.
func NewConsole(conf ConsoleConfig, ds *Datastore) *Console {
	return &Console{
		Datastore:  ds,
		Sessions:   NewSessionStore(conf.SessionExp, conf.TTLTicker, conf.MaxSessions),
		Config:     conf,
		columnMaps: make(map[string]ColumnMap),
	}
}

// Tables is shorthand for the configured table names.
func (c *Console) Tables() TableNames {
	return c.Config.Tables
}

// ColumnMapFor returns the learned map for a table, nil when no
// non-empty batch was seen yet.
func (c *Console) ColumnMapFor(table string) ColumnMap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.columnMaps[table]; ok {
		return m.Clone()
	}
	return nil
}

// ReconcileColumns learns (or re-learns) a table's column map from a
// fetched batch and caches the result. An empty batch leaves the
// cached map untouched and returns it, so a learned mapping is never
// erased by an empty result set.
func (c *Console) ReconcileColumns(table string, rows []orm.DBRecord, specs []FieldSpec) ColumnMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.columnMaps[table]
	next := ConfigureMapping(rows, specs, current)
	if next == nil {
		// Never seen a row for this table; resolve through fallbacks.
		next = ConfigureMapping([]orm.DBRecord{{Data: map[string]interface{}{}}}, specs, nil)
	}
	c.columnMaps[table] = next
	return next.Clone()
}

// Startup and shutdown.

// ConnectBackend loads the environment, builds the datastore handle
// and returns the assembled console. This runs once at startup; a
// missing backend configuration is returned as ErrConfigMissing so
// main can decide to run in the configuration-absent state.
func ConnectBackend() (*Console, error) {
	// Set the global variable for when server is started from making the backend connection
	ServerStartTime = time.Now()
	InitMetrics()

	el := metrics.StartTimeIt("Loading environment...", 0)
	utils.ReloadEnvEach(".env.dev", CAFEADMIN_ENV_FILE)
	metrics.StopTimeItPrint(el, "Done")

	el = metrics.StartTimeIt("Loading console config... ", 0)
	conf := LoadConfigFromEnvironment()
	metrics.StopTimeItPrint(el, "Done")

	if !conf.Backend.HasCredentials() {
		simplelog.LogErrorStr("init", &ErrConfigMissing, "backend credentials missing, console starts unconfigured")
		return NewConsole(conf, nil), &ErrConfigMissing
	}

	el = metrics.StartTimeIt("Connecting to backend...", 0)
	ds, err := NewDatastore(conf.Backend)
	if err != nil {
		simplelog.LogErrorAny("Main", err, "Failed to connect to backend")
		return nil, err
	}
	metrics.StopTimeItPrint(el, "Done")

	el = metrics.StartTimeIt("Preparing session store...", 0)
	console := NewConsole(conf, ds)
	metrics.StopTimeItPrint(el, "Done")

	return console, nil
}

// Close releases the backend connection.
func (c *Console) Close() error {
	if c == nil || c.Datastore == nil {
		return nil
	}
	return c.Datastore.Close()
}

// Print the console information for terminal log
func (c *Console) PrintWelcomePretty() {
	if c.Datastore == nil || c.Datastore.DB == nil {
		fmt.Println("Backend not connected - nil")
		return
	} else if !c.Datastore.IsConnected() {
		fmt.Println("Backend not connected - function")
		return
	}

	prot := "http://"
	heading1 := APP_NAME + " " + APP_VERSION
	heading2 := c.Config.Label
	if c.Config.SSL {
		prot = "https://"
	}
	heading3 := fmt.Sprintf("%s%s:%s", prot, c.Config.Host, c.Config.Port)
	appName := []string{heading1, heading2, heading3}
	headingColors := []print.Color{
		print.ColorCyan,
		print.ColorGreen,
		print.ColorNothing,
	}

	apikey := c.Config.APIKey != ""
	internal := c.Config.InternalAPI != ""
	consistency := c.Config.Backend.Consistency
	if consistency == "" {
		consistency = "default"
	}

	// Content defined in order
	appSettings := []print.KeyValue{
		print.Content(false, false, "Backend", c.Config.Backend.DBMS),
		print.Content(false, false, "Driver", c.Datastore.Driver),
		print.Content(false, false, "Database", c.Config.Backend.Database),
		print.Content(false, false, "Consistency", consistency),
		print.Content(false, false, "API key", apikey),
		print.Content(false, false, "Internal API", internal),
		print.Content(false, false, "Session TTL store", c.Sessions.UsingTTL()),
		print.Content(false, false, "Session expiry", c.Sessions.Expiration().String()),
		print.Content(false, false, "Max sessions", c.Sessions.Capacity()),
		print.Content(false, false, "Orders table", c.Config.Tables.Orders),
		print.Content(false, false, "Items table", c.Config.Tables.Items),
		print.Content(true, false, "Admin table", c.Config.Tables.Admins),
	}

	keyColor := print.ColorNothing
	valueColor := print.ColorLightBlue

	print.PrintBoxHeadingContent(appName, headingColors, appSettings, keyColor, valueColor)
}
