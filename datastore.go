package cafeadmin

import (
	"fmt"
	"strings"

	orm "github.com/medatechnology/simpleorm"
	"github.com/medatechnology/simpleorm/postgres"
	"github.com/medatechnology/simpleorm/rqlite"
)

// Datastore is the console's handle on the remote backend. All page
// handlers go through these methods so the "no rows is empty, not an
// error" rule is enforced in exactly one place.
type Datastore struct {
	DB          orm.Database
	Driver      string
	SchemaTable string
}

// NewDatastore makes the connection to the backend DB.
// This is where implementation selection happens based on DBMS configuration
func NewDatastore(conf BackendConfig) (*Datastore, error) {
	// Determine which database driver to use based on DBMS configuration
	// Default to RQLite if not specified
	dbmsType := strings.ToUpper(strings.TrimSpace(conf.DBMS))
	if dbmsType == "" {
		dbmsType = "RQLITE"
	}

	switch dbmsType {
	case "POSTGRESQL", "POSTGRES":
		return newPostgreSQLDatastore(conf)
	case "RQLITE":
		return newRQLiteDatastore(conf)
	default:
		return nil, fmt.Errorf("unsupported DBMS type: %s (supported: RQLITE, POSTGRESQL)", conf.DBMS)
	}
}

// newPostgreSQLDatastore creates a new PostgreSQL backend connection
func newPostgreSQLDatastore(conf BackendConfig) (*Datastore, error) {
	port := 5432
	if conf.Port != "" {
		fmt.Sscanf(conf.Port, "%d", &port)
	}

	config := postgres.PostgresConfig{
		Host:     conf.Host,
		Port:     port,
		User:     conf.Username,
		Password: conf.Password,
		DBName:   conf.Database,
		SSLMode:  "disable",
	}

	if conf.SSL {
		config.SSLMode = "require"
	}

	db, err := postgres.NewDatabase(config)
	if err != nil {
		return nil, err
	}
	// PostgreSQL uses standard schema tables
	return &Datastore{
		DB:          db,
		Driver:      "postgres",
		SchemaTable: "information_schema.tables",
	}, nil
}

// newRQLiteDatastore creates a new RQLite backend connection
func newRQLiteDatastore(conf BackendConfig) (*Datastore, error) {
	conf.GenerateRQLiteURL()

	config := rqlite.RqliteDirectConfig{
		URL:         conf.URL,
		Consistency: conf.Consistency,
		Username:    conf.Username,
		Password:    conf.Password,
		Timeout:     conf.HttpTimeout,
		RetryCount:  conf.MaxRetries,
	}
	db, err := rqlite.NewDatabase(config)
	if err != nil {
		return nil, err
	}
	return &Datastore{
		DB:          db,
		Driver:      "direct-rqlite",
		SchemaTable: rqlite.SCHEMA_TABLE,
	}, nil
}

// Query fetches many rows by condition. Empty result is []nil, nil error.
func (ds *Datastore) Query(table string, condition *orm.Condition) ([]orm.DBRecord, error) {
	if ds == nil || ds.DB == nil {
		return nil, ErrNoDatastore
	}
	if err := ValidateTableName(table, false); err != nil {
		return nil, err
	}
	var records []orm.DBRecord
	var err error
	if condition == nil {
		records, err = ds.DB.SelectMany(table)
	} else {
		records, err = ds.DB.SelectManyWithCondition(table, condition)
	}
	if err != nil {
		if IsNoRowsError(err) {
			return []orm.DBRecord{}, nil
		}
		return nil, err
	}
	return records, nil
}

// QueryOne fetches a single row by condition. "found" is false on no
// rows, error is reserved for real failures.
func (ds *Datastore) QueryOne(table string, condition *orm.Condition) (orm.DBRecord, bool, error) {
	if ds == nil || ds.DB == nil {
		return orm.DBRecord{}, false, ErrNoDatastore
	}
	if err := ValidateTableName(table, false); err != nil {
		return orm.DBRecord{}, false, err
	}
	var record orm.DBRecord
	var err error
	if condition == nil {
		record, err = ds.DB.SelectOne(table)
	} else {
		record, err = ds.DB.SelectOneWithCondition(table, condition)
	}
	if err != nil {
		if IsNoRowsError(err) {
			return orm.DBRecord{}, false, nil
		}
		return orm.DBRecord{}, false, err
	}
	return record, true, nil
}

// Insert writes one record built from a column→value map.
func (ds *Datastore) Insert(table string, data map[string]interface{}) error {
	if ds == nil || ds.DB == nil {
		return ErrNoDatastore
	}
	if err := ValidateTableName(table, false); err != nil {
		return err
	}
	record := orm.DBRecord{
		TableName: table,
		Data:      data,
	}
	result := ds.DB.InsertOneDBRecord(record, false)
	return result.Error
}

// Update runs a parameterized UPDATE built from the field map. The
// identifier column comes from the caller because only the active
// column map knows what it is called in this deployment. Table names
// reach here from the environment, so they are validated before being
// interpolated into SQL.
func (ds *Datastore) Update(table, idColumn string, idValue interface{}, fields map[string]interface{}) error {
	if ds == nil || ds.DB == nil {
		return ErrNoDatastore
	}
	if err := ValidateTableName(table, false); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	var setClauses []string
	var values []interface{}
	for column, value := range fields {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", column))
		values = append(values, value)
	}
	values = append(values, idValue)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		table, strings.Join(setClauses, ", "), idColumn)

	result := ds.DB.ExecOneSQLParameterized(orm.ParametereizedSQL{
		Query:  query,
		Values: values,
	})
	return result.Error
}

// Delete removes rows matching the identifier column.
func (ds *Datastore) Delete(table, idColumn string, idValue interface{}) error {
	if ds == nil || ds.DB == nil {
		return ErrNoDatastore
	}
	if err := ValidateTableName(table, false); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idColumn)
	result := ds.DB.ExecOneSQLParameterized(orm.ParametereizedSQL{
		Query:  query,
		Values: []interface{}{idValue},
	})
	return result.Error
}

// IsConnected reports whether the backend handle is alive.
func (ds *Datastore) IsConnected() bool {
	return ds != nil && ds.DB != nil && ds.DB.IsConnected()
}

// Close releases the backend connection when the driver supports it.
func (ds *Datastore) Close() error {
	if ds == nil || ds.DB == nil {
		return nil
	}
	if closer, ok := interface{}(ds.DB).(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
