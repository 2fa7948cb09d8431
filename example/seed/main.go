package main

import (
	"fmt"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	utils "github.com/medatechnology/goutil"
	"github.com/medatechnology/goutil/simplelog"
)

// Seeds a demo cafe into the configured backend so the console has
// something to show: one cafe, one menu, a handful of items and orders.
func main() {
	simplelog.DEBUG_LEVEL = 1
	simplelog.LogThis("=== BeanThere Admin Seed ===")
	simplelog.LogThis("This example seeds demo data into the configured backend")

	utils.ReloadEnvEach(".env.dev", cafeadmin.CAFEADMIN_ENV_FILE)
	conf := cafeadmin.LoadConfigFromEnvironment()
	if !conf.Backend.HasCredentials() {
		simplelog.LogErrorStr("seed", &cafeadmin.ErrConfigMissing, "set BACKEND_HOST and BACKEND_DATABASE first")
		return
	}

	ds, err := cafeadmin.NewDatastore(conf.Backend)
	if err != nil {
		simplelog.LogErrorAny("seed", err, "Failed to connect to backend")
		return
	}
	defer ds.Close()

	simplelog.LogThis("Successfully connected, seeding tables...")

	seedCafe(ds, conf.Tables)
	seedMenu(ds, conf.Tables)
	seedItems(ds, conf.Tables)
	seedOrders(ds, conf.Tables)

	simplelog.LogThis("\n=== Seed completed successfully! ===")
}

func insertAll(ds *cafeadmin.Datastore, table string, rows []map[string]interface{}) {
	inserted := 0
	for _, row := range rows {
		if err := ds.Insert(table, row); err != nil {
			simplelog.LogErrorAny("seed", err, "insert failed on "+table)
			continue
		}
		inserted++
	}
	simplelog.LogThis(fmt.Sprintf("Inserted %d rows into %s", inserted, table))
}

func seedCafe(ds *cafeadmin.Datastore, tables cafeadmin.TableNames) {
	simplelog.LogThis("\n1. Seeding cafe...")
	insertAll(ds, tables.Cafes, []map[string]interface{}{
		{"cafe_id": "CAFE-01", "name": "Bean There, Downtown"},
	})
}

func seedMenu(ds *cafeadmin.Datastore, tables cafeadmin.TableNames) {
	simplelog.LogThis("\n2. Seeding menu...")
	insertAll(ds, tables.Menus, []map[string]interface{}{
		{"menu_id": "MENU-MAIN", "cafe_id": "CAFE-01", "name": "All Day Menu", "is_active": true},
	})
}

func seedItems(ds *cafeadmin.Datastore, tables cafeadmin.TableNames) {
	simplelog.LogThis("\n3. Seeding menu items...")
	insertAll(ds, tables.Items, []map[string]interface{}{
		{"item_id": "MENU-001", "menu_id": "MENU-MAIN", "item_name": "Cappuccino", "price": 4.50, "availability": true},
		{"item_id": "MENU-019", "menu_id": "MENU-MAIN", "item_name": "Flat White", "price": 4.75, "availability": true},
		{"item_id": "MENU-034", "menu_id": "MENU-MAIN", "item_name": "Almond Croissant", "price": 3.80, "availability": false},
	})
}

func seedOrders(ds *cafeadmin.Datastore, tables cafeadmin.TableNames) {
	simplelog.LogThis("\n4. Seeding orders...")
	insertAll(ds, tables.Orders, []map[string]interface{}{
		{"order_id": "ORD-3021", "user_id": "USR-11", "status": "pending", "total": 13.05, "created_at": "2026-08-30 09:12:00", "cafe_id": "CAFE-01"},
		{"order_id": "ORD-3018", "user_id": "USR-07", "status": "in_progress", "total": 4.50, "created_at": "2026-08-30 08:55:00", "cafe_id": "CAFE-01"},
		{"order_id": "ORD-3012", "user_id": "USR-02", "status": "completed", "total": 9.25, "created_at": "2026-08-30 08:31:00", "cafe_id": "CAFE-01"},
	})

	insertAll(ds, tables.OrderItems, []map[string]interface{}{
		{"order_id": "ORD-3021", "item_id": "MENU-001", "qty": 2},
		{"order_id": "ORD-3021", "item_id": "MENU-034", "qty": 1},
		{"order_id": "ORD-3018", "item_id": "MENU-001", "qty": 1},
		{"order_id": "ORD-3012", "item_id": "MENU-019", "qty": 1},
		{"order_id": "ORD-3012", "item_id": "MENU-001", "qty": 1},
	})

	insertAll(ds, tables.Users, []map[string]interface{}{
		{"user_id": "USR-11", "username": "mira.k"},
		{"user_id": "USR-07", "username": "jon.d"},
		{"user_id": "USR-02", "username": "ana.p"},
	})
}
