package cafeadmin

import (
	"fmt"
	"testing"

	"github.com/medatechnology/goutil/medaerror"
	orm "github.com/medatechnology/simpleorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryDB is an in-memory orm.Database used to exercise the Datastore
// without a live backend. Reads honor simple equality conditions and
// the limit; parameterized writes are recorded so tests can inspect
// the SQL the Datastore generated.
type memoryDB struct {
	tables    map[string][]orm.DBRecord
	execs     []orm.ParametereizedSQL
	connected bool
}

func newMemoryDB() *memoryDB {
	return &memoryDB{tables: make(map[string][]orm.DBRecord), connected: true}
}

func (m *memoryDB) matching(table string, condition *orm.Condition) []orm.DBRecord {
	rows := m.tables[table]
	var out []orm.DBRecord
	for _, row := range rows {
		if condition != nil && condition.Field != "" {
			value, ok := row.Data[condition.Field]
			if !ok || fmt.Sprintf("%v", value) != fmt.Sprintf("%v", condition.Value) {
				continue
			}
		}
		out = append(out, row)
	}
	if condition != nil && condition.Limit > 0 && len(out) > condition.Limit {
		out = out[:condition.Limit]
	}
	return out
}

func (m *memoryDB) GetSchema(bool, bool) []orm.SchemaStruct { return nil }

func (m *memoryDB) Status() (orm.NodeStatusStruct, error) {
	return orm.NodeStatusStruct{}, nil
}

func (m *memoryDB) SelectOne(table string) (orm.DBRecord, error) {
	rows := m.tables[table]
	if len(rows) == 0 {
		return orm.DBRecord{}, orm.ErrSQLNoRows
	}
	return rows[0], nil
}

func (m *memoryDB) SelectMany(table string) (orm.DBRecords, error) {
	rows := m.tables[table]
	if len(rows) == 0 {
		return nil, orm.ErrSQLNoRows
	}
	return orm.DBRecords(rows), nil
}

func (m *memoryDB) SelectOneWithCondition(table string, condition *orm.Condition) (orm.DBRecord, error) {
	rows := m.matching(table, condition)
	if len(rows) == 0 {
		return orm.DBRecord{}, orm.ErrSQLNoRows
	}
	return rows[0], nil
}

func (m *memoryDB) SelectManyWithCondition(table string, condition *orm.Condition) ([]orm.DBRecord, error) {
	rows := m.matching(table, condition)
	if len(rows) == 0 {
		return nil, orm.ErrSQLNoRows
	}
	return rows, nil
}

func (m *memoryDB) SelectOneSQL(string) (orm.DBRecords, error) {
	return nil, orm.ErrSQLNoRows
}

func (m *memoryDB) SelectManySQL([]string) ([]orm.DBRecords, error) {
	return nil, orm.ErrSQLNoRows
}

func (m *memoryDB) SelectOnlyOneSQL(string) (orm.DBRecord, error) {
	return orm.DBRecord{}, orm.ErrSQLNoRows
}

func (m *memoryDB) SelectOneSQLParameterized(orm.ParametereizedSQL) (orm.DBRecords, error) {
	return nil, orm.ErrSQLNoRows
}

func (m *memoryDB) SelectManySQLParameterized([]orm.ParametereizedSQL) ([]orm.DBRecords, error) {
	return nil, orm.ErrSQLNoRows
}

func (m *memoryDB) SelectOnlyOneSQLParameterized(orm.ParametereizedSQL) (orm.DBRecord, error) {
	return orm.DBRecord{}, orm.ErrSQLNoRows
}

func (m *memoryDB) ExecOneSQL(string) orm.BasicSQLResult {
	return orm.BasicSQLResult{RowsAffected: 1}
}

func (m *memoryDB) ExecOneSQLParameterized(sql orm.ParametereizedSQL) orm.BasicSQLResult {
	m.execs = append(m.execs, sql)
	return orm.BasicSQLResult{RowsAffected: 1}
}

func (m *memoryDB) ExecManySQL(statements []string) ([]orm.BasicSQLResult, error) {
	results := make([]orm.BasicSQLResult, len(statements))
	return results, nil
}

func (m *memoryDB) ExecManySQLParameterized(statements []orm.ParametereizedSQL) ([]orm.BasicSQLResult, error) {
	results := make([]orm.BasicSQLResult, 0, len(statements))
	for _, sql := range statements {
		results = append(results, m.ExecOneSQLParameterized(sql))
	}
	return results, nil
}

func (m *memoryDB) InsertOneDBRecord(record orm.DBRecord, _ bool) orm.BasicSQLResult {
	m.tables[record.TableName] = append(m.tables[record.TableName], record)
	return orm.BasicSQLResult{RowsAffected: 1, LastInsertID: len(m.tables[record.TableName])}
}

func (m *memoryDB) InsertManyDBRecords(records []orm.DBRecord, queue bool) ([]orm.BasicSQLResult, error) {
	results := make([]orm.BasicSQLResult, 0, len(records))
	for _, record := range records {
		results = append(results, m.InsertOneDBRecord(record, queue))
	}
	return results, nil
}

func (m *memoryDB) InsertManyDBRecordsSameTable(records []orm.DBRecord, queue bool) ([]orm.BasicSQLResult, error) {
	return m.InsertManyDBRecords(records, queue)
}

func (m *memoryDB) InsertOneTableStruct(orm.TableStruct, bool) orm.BasicSQLResult {
	return orm.BasicSQLResult{}
}

func (m *memoryDB) InsertManyTableStructs([]orm.TableStruct, bool) ([]orm.BasicSQLResult, error) {
	return nil, nil
}

func (m *memoryDB) IsConnected() bool { return m.connected }

func (m *memoryDB) Leader() (string, error) { return "", nil }

func (m *memoryDB) Peers() ([]string, error) { return nil, nil }

// closableMemoryDB is the variant whose driver exposes Close, the way
// the postgres implementation does.
type closableMemoryDB struct {
	*memoryDB
	closed   bool
	closeErr error
}

func (c *closableMemoryDB) Close() error {
	c.closed = true
	return c.closeErr
}

func newMemoryDatastore() (*Datastore, *memoryDB) {
	db := newMemoryDB()
	return &Datastore{DB: db, Driver: "memory"}, db
}

func TestDatastoreMenuItemRoundTrip(t *testing.T) {
	t.Run("text status survives insert and re-fetch normalized", func(t *testing.T) {
		ds, _ := newMemoryDatastore()
		columns := ColumnMap{
			FieldItemID: "item_id",
			FieldMenuID: "menu_id",
			FieldName:   "item_name",
			FieldDesc:   "description",
			FieldPrice:  "price",
			FieldStatus: "status",
		}

		data := BuildMenuItemPayload(MenuItemPayload{
			MenuID: "MENU-MAIN",
			Name:   "Cortado",
			Price:  4.25,
			Status: "sold_out",
		}, columns)
		require.NoError(t, ds.Insert("item", data))

		rows, err := ds.Query("item", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		item := MapMenuItem(rows[0], columns)
		assert.Equal(t, MENU_STATUS_OUT_OF_STOCK, item.Status)
		assert.Equal(t, "Cortado", item.Name)
		assert.Equal(t, "MENU-MAIN", item.MenuID)
		assert.InDelta(t, 4.25, item.Price, 0.001)
	})

	t.Run("boolean availability and cents price survive the trip", func(t *testing.T) {
		ds, _ := newMemoryDatastore()
		columns := ColumnMap{
			FieldItemID: "item_id",
			FieldMenuID: "menu_id",
			FieldName:   "item_name",
			FieldDesc:   "description",
			FieldPrice:  "price_cents",
			FieldStatus: "availability",
		}

		data := BuildMenuItemPayload(MenuItemPayload{
			MenuID: "MENU-MAIN",
			Name:   "Flat White",
			Price:  4.75,
			Status: "available",
		}, columns)
		require.Equal(t, 475, data["price_cents"])
		require.Equal(t, true, data["availability"])
		require.NoError(t, ds.Insert("item", data))

		rows, err := ds.Query("item", &orm.Condition{
			Field: "menu_id", Operator: "=", Value: "MENU-MAIN",
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)

		item := MapMenuItem(rows[0], columns)
		assert.Equal(t, MENU_STATUS_AVAILABLE, item.Status)
		assert.InDelta(t, 4.75, item.Price, 0.001)
	})

	t.Run("empty table reads as empty slice, not an error", func(t *testing.T) {
		ds, _ := newMemoryDatastore()
		rows, err := ds.Query("item", nil)
		require.NoError(t, err)
		assert.Empty(t, rows)

		_, found, err := ds.QueryOne("item", &orm.Condition{Field: "item_id", Operator: "=", Value: "MENU-999"})
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestDatastoreUpdateAndDelete(t *testing.T) {
	t.Run("update builds a parameterized statement", func(t *testing.T) {
		ds, db := newMemoryDatastore()
		err := ds.Update("orders", "order_id", "ORD-3021", map[string]interface{}{"status": "completed"})
		require.NoError(t, err)
		require.Len(t, db.execs, 1)
		assert.Equal(t, "UPDATE orders SET status = ? WHERE order_id = ?", db.execs[0].Query)
		assert.Equal(t, []interface{}{"completed", "ORD-3021"}, db.execs[0].Values)
	})

	t.Run("update with no fields is a no-op", func(t *testing.T) {
		ds, db := newMemoryDatastore()
		require.NoError(t, ds.Update("orders", "order_id", "ORD-3021", nil))
		assert.Empty(t, db.execs)
	})

	t.Run("delete builds a parameterized statement", func(t *testing.T) {
		ds, db := newMemoryDatastore()
		err := ds.Delete("item", "item_id", "MENU-034")
		require.NoError(t, err)
		require.Len(t, db.execs, 1)
		assert.Equal(t, "DELETE FROM item WHERE item_id = ?", db.execs[0].Query)
		assert.Equal(t, []interface{}{"MENU-034"}, db.execs[0].Values)
	})
}

func TestDatastoreRejectsUnsafeTableNames(t *testing.T) {
	unsafe := []string{
		"orders; DROP TABLE admin",
		"orders--",
		"order items",
		"_internal_schema",
		"",
	}

	for _, table := range unsafe {
		t.Run(fmt.Sprintf("table %q never reaches the backend", table), func(t *testing.T) {
			ds, db := newMemoryDatastore()

			_, err := ds.Query(table, nil)
			assert.Error(t, err)
			_, _, err = ds.QueryOne(table, nil)
			assert.Error(t, err)
			assert.Error(t, ds.Insert(table, map[string]interface{}{"status": "placed"}))
			assert.Error(t, ds.Update(table, "order_id", "ORD-1", map[string]interface{}{"status": "completed"}))
			assert.Error(t, ds.Delete(table, "order_id", "ORD-1"))

			assert.Empty(t, db.execs)
			assert.Empty(t, db.tables)
		})
	}
}

func TestDatastoreClose(t *testing.T) {
	t.Run("driver without a closer is a no-op", func(t *testing.T) {
		ds, _ := newMemoryDatastore()
		require.NoError(t, ds.Close())
	})

	t.Run("closer drivers are delegated to", func(t *testing.T) {
		closeErr := medaerror.NewString("connection already gone")
		db := &closableMemoryDB{memoryDB: newMemoryDB(), closeErr: closeErr}
		ds := &Datastore{DB: db, Driver: "memory"}

		assert.Equal(t, closeErr, ds.Close())
		assert.True(t, db.closed)
	})

	t.Run("nil handles close cleanly", func(t *testing.T) {
		var ds *Datastore
		require.NoError(t, ds.Close())
		require.NoError(t, (&Datastore{}).Close())
	})
}
