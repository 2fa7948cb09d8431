package server

import (
	"fmt"
	"net/http"
	"time"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/goutil/encryption"
	"github.com/medatechnology/simplehttp"
)

const (
	DEFAULT_INTERNAL_API = "/console"
)

// AdminUpdateRequest represents the data for updating an admin account
type AdminUpdateRequest struct {
	Email       string `json:"email"`                  // Required to identify the admin
	NewName     string `json:"new_name,omitempty"`     // Optional new display name
	NewEmail    string `json:"new_email,omitempty"`    // Optional new email
	NewPassword string `json:"new_password,omitempty"` // Optional new password
	NewCafeID   string `json:"new_cafe_id,omitempty"`  // Optional new cafe assignment
}

// RegisterInternalRoutes mounts the operator-only admin management
// surface behind basic auth (CONSOLE_INTERNAL_API as user:pass).
func RegisterInternalRoutes(server simplehttp.Server, console *cafeadmin.Console) {
	username, password := splitBasicAuth(console.Config.InternalAPI)

	internalAPI := server.Group(DEFAULT_INTERNAL_API)
	internalAPI.Use(simplehttp.MiddlewareBasicAuth(username, password), simplehttp.WithName("require-backend", MiddlewareRequireBackend(console)))

	internalAPI.GET("/admins", HandleListAdmins(console))
	internalAPI.POST("/admins", HandleCreateAdmin(console))
	internalAPI.PUT("/admins", HandleUpdateAdmin(console))
	internalAPI.DELETE("/admins", HandleDeleteAdmin(console))
	internalAPI.GET("/schema", HandleGetSchema(console))
	internalAPI.GET("/backend_status", HandleBackendStatus(console))
}

// HandleListAdmins retrieves all admin accounts (or filtered by email),
// passwords stripped before they leave the process.
func HandleListAdmins(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "list_admins", console.Tables().Admins)

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())

		var condition orm.Condition
		if emailFilter := ctx.GetQueryParam("email"); emailFilter != "" {
			condition = orm.Condition{
				Field:    columns.Column(cafeadmin.FieldEmail),
				Operator: "LIKE",
				Value:    "%" + emailFilter + "%",
			}
		}
		condition.OrderBy = []string{columns.Column(cafeadmin.FieldEmail) + " ASC"}

		rows, err := console.Datastore.Query(console.Tables().Admins, &condition)
		if err != nil {
			return state.SetError("Failed to list admins", err, http.StatusInternalServerError).LogAndResponse("failed to list admins", nil, true)
		}
		columns = console.ReconcileColumns(console.Tables().Admins, rows, cafeadmin.AdminColumns())

		admins := make([]*cafeadmin.AdminSession, 0, len(rows))
		for _, row := range rows {
			if admin := cafeadmin.SerializeAdmin(row, columns); admin != nil {
				admins = append(admins, admin)
			}
		}

		return state.SetSuccess(fmt.Sprintf("Admins retrieved successfully: %d", len(admins)), admins).
			LogAndResponse(fmt.Sprintf("success count:%d", len(admins)), "SelectManyWithCondition", true)
	}
}

// HandleCreateAdmin creates a new admin account without signing it in.
func HandleCreateAdmin(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "create_admin", console.Tables().Admins)

		var createReq cafeadmin.SignUpRequest
		if err := ctx.BindJSON(&createReq); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("failed to parse request body", nil, true)
		}
		if createReq.ConfirmPassword == "" {
			createReq.ConfirmPassword = createReq.Password
		}
		if err := cafeadmin.ValidateSignUp(createReq); err != nil {
			return state.SetError("Invalid admin input", err, http.StatusBadRequest).LogAndResponse("admin validation failed", err, true)
		}

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())

		// Check if admin already exists
		_, found, err := adminByEmail(console, columns, createReq.Email)
		if err != nil {
			return state.SetError("Failed to check admin", err, http.StatusInternalServerError).LogAndResponse("admin lookup failed", nil, true)
		}
		if found {
			return state.SetError("Admin already exists", nil, http.StatusConflict).LogAndResponse("admin already exists, cannot create", nil, true)
		}

		// Hash the password
		hashedPassword, err := encryption.HashPin(createReq.Password, console.Config.APIKey, console.Config.ClientID)
		if err != nil {
			return state.SetError("Failed to hash password", err, http.StatusInternalServerError).LogAndResponse("failed to hash password", nil, true)
		}

		data := map[string]interface{}{
			columns.Column(cafeadmin.FieldName):      createReq.Name,
			columns.Column(cafeadmin.FieldEmail):     createReq.Email,
			columns.Column(cafeadmin.FieldPassword):  hashedPassword,
			columns.Column(cafeadmin.FieldCreatedAt): time.Now().UTC().Format(time.RFC3339),
		}
		if createReq.CafeID != "" {
			data[columns.Column(cafeadmin.FieldCafeID)] = createReq.CafeID
		}

		if err := console.Datastore.Insert(console.Tables().Admins, data); err != nil {
			return state.SetError("Failed to create admin", err, http.StatusInternalServerError).LogAndResponse("failed to insert db", nil, true)
		}

		return state.SetSuccess("Admin created successfully", map[string]string{
			"email":   createReq.Email,
			"name":    createReq.Name,
			"cafe_id": createReq.CafeID,
		}).LogAndResponse(fmt.Sprintf("admin %s created", createReq.Email), "InsertOneDBRecord", true)
	}
}

// HandleUpdateAdmin updates an existing admin account
func HandleUpdateAdmin(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "update_admin", console.Tables().Admins)

		var updateReq AdminUpdateRequest
		if err := ctx.BindJSON(&updateReq); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("failed to parse request body", nil, true)
		}
		if updateReq.Email == "" {
			return state.SetError("Email is required", nil, http.StatusBadRequest).LogAndResponse("missing email field", nil, true)
		}
		if updateReq.NewName == "" && updateReq.NewEmail == "" && updateReq.NewPassword == "" && updateReq.NewCafeID == "" {
			return state.SetError("No update fields provided", nil, http.StatusBadRequest).LogAndResponse("no update fields provided", nil, true)
		}

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())
		row, found, err := adminByEmail(console, columns, updateReq.Email)
		if err != nil {
			return state.SetError("Failed to check admin", err, http.StatusInternalServerError).LogAndResponse("admin lookup failed", nil, true)
		}
		if !found {
			return state.SetError("Admin not found", nil, http.StatusNotFound).LogAndResponse("admin not found", nil, true)
		}
		columns = console.ReconcileColumns(console.Tables().Admins, []orm.DBRecord{row}, cafeadmin.AdminColumns())

		fields := map[string]interface{}{}
		if updateReq.NewName != "" {
			if err := cafeadmin.ValidateDisplayName(updateReq.NewName); err != nil {
				return state.SetError("Invalid name", err, http.StatusBadRequest).LogAndResponse("name validation failed", err, true)
			}
			fields[columns.Column(cafeadmin.FieldName)] = updateReq.NewName
		}
		if updateReq.NewEmail != "" && updateReq.NewEmail != updateReq.Email {
			if err := cafeadmin.ValidateEmail(updateReq.NewEmail); err != nil {
				return state.SetError("Invalid email", err, http.StatusBadRequest).LogAndResponse("email validation failed", err, true)
			}
			// Check if new email already exists
			_, exists, err := adminByEmail(console, columns, updateReq.NewEmail)
			if err != nil {
				return state.SetError("Failed to check admin", err, http.StatusInternalServerError).LogAndResponse("admin lookup failed", nil, true)
			}
			if exists {
				return state.SetError("New email already exists", nil, http.StatusConflict).LogAndResponse("cannot update to new email, already exists", nil, true)
			}
			fields[columns.Column(cafeadmin.FieldEmail)] = updateReq.NewEmail
		}
		if updateReq.NewPassword != "" {
			if err := cafeadmin.ValidatePassword(updateReq.NewPassword); err != nil {
				return state.SetError("Invalid password", err, http.StatusBadRequest).LogAndResponse("password validation failed", err, true)
			}
			hashedPassword, err := encryption.HashPin(updateReq.NewPassword, console.Config.APIKey, console.Config.ClientID)
			if err != nil {
				return state.SetError("Failed to hash password", err, http.StatusInternalServerError).LogAndResponse("failed to hash password", nil, true)
			}
			fields[columns.Column(cafeadmin.FieldPassword)] = hashedPassword
		}
		if updateReq.NewCafeID != "" {
			fields[columns.Column(cafeadmin.FieldCafeID)] = updateReq.NewCafeID
		}

		if len(fields) == 0 {
			return state.SetSuccess("No changes provided", nil).LogAndResponse("no changes", nil, false)
		}

		if err := console.Datastore.Update(console.Tables().Admins, columns.Column(cafeadmin.FieldEmail), updateReq.Email, fields); err != nil {
			return state.SetError("Failed to update admin", err, http.StatusInternalServerError).LogAndResponse("failed to update db", nil, true)
		}

		admin := cafeadmin.SerializeAdmin(row, columns)
		return state.SetSuccess("Admin updated successfully", admin).
			LogAndResponse(fmt.Sprintf("admin %s updated", updateReq.Email), "ExecOneSQLParameterized", true)
	}
}

// HandleDeleteAdmin deletes an admin account by ?email=.
func HandleDeleteAdmin(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "delete_admin", console.Tables().Admins)

		email := ctx.GetQueryParam("email")
		if email == "" {
			return state.SetError("Email is required", nil, http.StatusBadRequest).LogAndResponse("missing email field", nil, true)
		}

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())
		_, found, err := adminByEmail(console, columns, email)
		if err != nil {
			return state.SetError("Failed to check admin", err, http.StatusInternalServerError).LogAndResponse("admin lookup failed", nil, true)
		}
		if !found {
			return state.SetError("Admin "+email+" not found", nil, http.StatusNotFound).LogAndResponse("admin "+email+" not found", nil, true)
		}

		if err := console.Datastore.Delete(console.Tables().Admins, columns.Column(cafeadmin.FieldEmail), email); err != nil {
			return state.SetError("Failed to delete admin", err, http.StatusInternalServerError).LogAndResponse("failed to delete from db", nil, true)
		}

		return state.SetSuccess("Admin deleted successfully", nil).
			LogAndResponse(fmt.Sprintf("admin %s deleted successfully", email), "ExecOneSQLParameterized", true)
	}
}

// HandleGetSchema only for internal
func HandleGetSchema(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "handle_schema", console.Datastore.SchemaTable)

		result := console.Datastore.DB.GetSchema(false, false)
		return state.SetSuccess("Schema get successfully", result).LogAndResponse("schema get successfully (should be internal)", "GetSchema", true)
	}
}

// HandleBackendStatus only for internal
func HandleBackendStatus(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "backend_status", console.Datastore.SchemaTable)

		result, err := console.Datastore.DB.Status()
		if err != nil {
			return state.SetError("Backend status returns error", err, http.StatusInternalServerError).LogAndResponse("backend status returns error", err, true)
		}
		return state.SetSuccess("Get backend status successfully", result).LogAndResponse("get backend status successfully (should be internal)", "Status", true)
	}
}
