package server

import (
	"net/http"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/goutil/simplelog"
	"github.com/medatechnology/simplehttp"
	"golang.org/x/sync/errgroup"
)

const PROFILE_ACTIVITY_LIMIT = 10

// fetchAdminStores lists the cafe names the admin is assigned to. Any
// failure logs and yields an empty list, the profile still renders.
func fetchAdminStores(console *cafeadmin.Console, cafeID string) []string {
	stores := []string{}
	if cafeID == "" {
		return stores
	}

	condition := orm.Condition{
		Field:    "cafe_id",
		Operator: "=",
		Value:    cafeID,
	}
	rows, err := console.Datastore.Query(console.Tables().Cafes, &condition)
	if err != nil {
		simplelog.LogErrorAny("/api/profile", err, "store lookup failed")
		return stores
	}

	for _, row := range rows {
		if row.Data == nil {
			continue
		}
		for _, column := range []string{"name", "cafe_name", "store_name"} {
			if name := cafeadmin.StringValue(row.Data[column]); name != "" {
				stores = append(stores, name)
				break
			}
		}
	}
	return stores
}

// fetchAdminActivity lists the admin's recent activity-log entries,
// newest first. Failures log and yield an empty list.
func fetchAdminActivity(console *cafeadmin.Console, adminID string) []cafeadmin.ActivityEntry {
	if adminID == "" {
		return []cafeadmin.ActivityEntry{}
	}

	columns := console.ReconcileColumns(console.Tables().Activity, nil, cafeadmin.ActivityColumns())
	condition := orm.Condition{
		Field:    columns.Column(cafeadmin.FieldAdminID),
		Operator: "=",
		Value:    adminID,
		OrderBy:  []string{columns.Column(cafeadmin.FieldCreatedAt) + " DESC"},
		Limit:    PROFILE_ACTIVITY_LIMIT,
	}
	rows, err := console.Datastore.Query(console.Tables().Activity, &condition)
	if err != nil {
		simplelog.LogErrorAny("/api/profile", err, "activity lookup failed")
		return []cafeadmin.ActivityEntry{}
	}

	columns = console.ReconcileColumns(console.Tables().Activity, rows, cafeadmin.ActivityColumns())
	return cafeadmin.MapActivityEntries(rows, columns)
}

// HandleProfile serves the profile page: the freshest admin row plus
// the store assignments and activity log fetched concurrently. When
// the admin row cannot be re-read the cached session fills in, so the
// page degrades instead of failing.
func HandleProfile(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerSessionState(ctx, "/api/profile", console.Tables().Admins)
		if state.Session == nil {
			return state.SetError("Authentication required", &cafeadmin.ErrNoSession, http.StatusUnauthorized).
				SetRedirect(console.Config.LoginPath).
				LogAndResponse("profile without session", nil, true)
		}
		session := state.Session

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())
		condition := orm.Condition{
			Field:    columns.Column(cafeadmin.FieldAdminID),
			Operator: "=",
			Value:    session.Identifier(),
		}
		row, found, err := console.Datastore.QueryOne(console.Tables().Admins, &condition)
		if err != nil {
			simplelog.LogErrorAny("/api/profile", err, "admin re-read failed, serving cached session")
		}
		if found {
			columns = console.ReconcileColumns(console.Tables().Admins, []orm.DBRecord{row}, cafeadmin.AdminColumns())
		} else {
			// Cached session stands in for the unreadable row
			row = orm.DBRecord{
				TableName: console.Tables().Admins,
				Data: map[string]interface{}{
					columns.Column(cafeadmin.FieldAdminID):   session.Identifier(),
					columns.Column(cafeadmin.FieldName):      session.Name,
					columns.Column(cafeadmin.FieldEmail):     session.Email,
					columns.Column(cafeadmin.FieldCafeID):    session.CafeID,
					columns.Column(cafeadmin.FieldCreatedAt): session.CreatedAt,
				},
			}
		}

		cafeValue, _ := columns.Value(row, cafeadmin.FieldCafeID)
		cafeID := cafeadmin.StringValue(cafeValue)

		var stores []string
		var activity []cafeadmin.ActivityEntry
		var group errgroup.Group
		group.Go(func() error {
			stores = fetchAdminStores(console, cafeID)
			return nil
		})
		group.Go(func() error {
			activity = fetchAdminActivity(console, session.Identifier())
			return nil
		})
		// The branches swallow their own failures
		_ = group.Wait()

		profile := cafeadmin.MapAdminProfile(row, columns, stores, activity)
		return state.SetSuccess("Profile retrieved", profile).LogAndResponse("profile served", nil, false)
	}
}
