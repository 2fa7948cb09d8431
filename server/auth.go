package server

import (
	"net/http"
	"time"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/goutil/encryption"
	"github.com/medatechnology/goutil/medaerror"
	"github.com/medatechnology/simplehttp"
)

// Constant for auth related like token settings
const (
	TOKEN_LENGTH_MULTIPLIER = 3 // Controls token length/complexity
)

// adminByEmail looks the admin row up under the detected email column.
// NOTE: Password column is NOT cleared here - caller must drop it after use
func adminByEmail(console *cafeadmin.Console, columns cafeadmin.ColumnMap, email string) (orm.DBRecord, bool, error) {
	condition := orm.Condition{
		Field:    columns.Column(cafeadmin.FieldEmail),
		Operator: "=",
		Value:    email,
	}
	return console.Datastore.QueryOne(console.Tables().Admins, &condition)
}

// passwordMatch compares the stored hash against the submitted password
func passwordMatch(console *cafeadmin.Console, row orm.DBRecord, columns cafeadmin.ColumnMap, pass string) error {
	encr, err := encryption.HashPin(pass, console.Config.APIKey, console.Config.ClientID)
	if err != nil {
		return err
	}
	storedValue, _ := columns.Value(row, cafeadmin.FieldPassword)
	if cafeadmin.StringValue(storedValue) == encr {
		return nil
	}
	return medaerror.NewString("password mismatch")
}

// issueSession serializes the admin row, caches it under a fresh token
// and returns both. The raw row's password never reaches the cache.
func issueSession(console *cafeadmin.Console, row orm.DBRecord, columns cafeadmin.ColumnMap) (string, *cafeadmin.AdminSession, error) {
	session := cafeadmin.SerializeAdmin(row, columns)
	if session == nil {
		return "", nil, medaerror.NewString("admin record is missing an identifier")
	}

	if console.Sessions.AtCapacity() {
		cafeadmin.Metrics.RecordCapacityHit()
		return "", nil, medaerror.NewString("session store quota exceeded")
	}

	token := encryption.NewRandomTokenIterate(TOKEN_LENGTH_MULTIPLIER)
	console.Sessions.Cache(token, session)
	cafeadmin.Metrics.RecordSessionCreated()

	session.Token = token
	return token, session, nil
}

// HandleSignIn authenticates an admin against the admin table and
// returns the session token
func HandleSignIn(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "", "/auth/signin", console.Tables().Admins)

		var signinReq cafeadmin.SignInRequest
		if err := ctx.BindJSON(&signinReq); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		state.User = signinReq.Email

		if err := cafeadmin.ValidateEmail(signinReq.Email); err != nil {
			return state.SetError("Invalid email", err, http.StatusBadRequest).LogAndResponse("email validation failed", err, true)
		}
		if err := cafeadmin.ValidatePassword(signinReq.Password); err != nil {
			return state.SetError("Invalid password", err, http.StatusBadRequest).LogAndResponse("password validation failed", err, true)
		}

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())
		row, found, err := adminByEmail(console, columns, signinReq.Email)
		if err != nil {
			cafeadmin.Metrics.RecordAuthentication(false)
			return state.SetError("Sign in failed", err, http.StatusInternalServerError).LogAndResponse("admin lookup failed", nil, true)
		}
		if !found {
			cafeadmin.Metrics.RecordAuthentication(false)
			return state.SetError("Invalid credentials", nil, http.StatusUnauthorized).LogAndResponse("admin not found", nil, true)
		}

		// Lock the mapping in from the live row before reading it
		columns = console.ReconcileColumns(console.Tables().Admins, []orm.DBRecord{row}, cafeadmin.AdminColumns())

		if passwordMatch(console, row, columns, signinReq.Password) != nil {
			cafeadmin.Metrics.RecordAuthentication(false)
			return state.SetError("Invalid credentials", nil, http.StatusUnauthorized).
				LogAndResponse("password mismatch for admin: "+signinReq.Email, nil, true)
		}

		token, session, err := issueSession(console, row, columns)
		if err != nil {
			cafeadmin.Metrics.RecordAuthentication(false)
			return state.SetError("Sign in failed", err, http.StatusServiceUnavailable).LogAndResponse("cannot issue session", err, true)
		}

		cafeadmin.Metrics.RecordAuthentication(true)
		return state.SetSuccess("Signed in successfully", map[string]interface{}{
			"token":   token,
			"session": session,
		}).LogAndResponse("admin signed in: "+signinReq.Email, token, true)
	}
}

// HandleSignUp creates a new admin row and signs it in
func HandleSignUp(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "", "/auth/signup", console.Tables().Admins)

		var signupReq cafeadmin.SignUpRequest
		if err := ctx.BindJSON(&signupReq); err != nil {
			return state.SetError("Invalid request format", err, http.StatusBadRequest).LogAndResponse("Failed to parse request body", nil, true)
		}
		state.User = signupReq.Email

		if err := cafeadmin.ValidateSignUp(signupReq); err != nil {
			return state.SetError("Invalid signup input", err, http.StatusBadRequest).LogAndResponse("signup validation failed", err, true)
		}

		columns := console.ReconcileColumns(console.Tables().Admins, nil, cafeadmin.AdminColumns())

		// Check if admin already exists
		_, found, err := adminByEmail(console, columns, signupReq.Email)
		if err != nil {
			return state.SetError("Sign up failed", err, http.StatusInternalServerError).LogAndResponse("admin lookup failed", nil, true)
		}
		if found {
			return state.SetError("Admin already exists", nil, http.StatusConflict).LogAndResponse("admin already exists, cannot create", nil, true)
		}

		// Hash the password
		hashedPassword, err := encryption.HashPin(signupReq.Password, console.Config.APIKey, console.Config.ClientID)
		if err != nil {
			return state.SetError("Failed to hash password", err, http.StatusInternalServerError).LogAndResponse("failed to hash password", nil, true)
		}

		data := map[string]interface{}{
			columns.Column(cafeadmin.FieldName):      signupReq.Name,
			columns.Column(cafeadmin.FieldEmail):     signupReq.Email,
			columns.Column(cafeadmin.FieldPassword):  hashedPassword,
			columns.Column(cafeadmin.FieldCreatedAt): time.Now().UTC().Format(time.RFC3339),
		}
		if signupReq.CafeID != "" {
			data[columns.Column(cafeadmin.FieldCafeID)] = signupReq.CafeID
		}

		if err := console.Datastore.Insert(console.Tables().Admins, data); err != nil {
			cafeadmin.Metrics.RecordMutation(false)
			return state.SetError("Failed to create admin", err, http.StatusInternalServerError).LogAndResponse("failed to insert db", nil, true)
		}
		cafeadmin.Metrics.RecordMutation(true)

		// Re-read so the session carries the generated identifier
		row, found, err := adminByEmail(console, columns, signupReq.Email)
		if err != nil || !found {
			return state.SetError("Admin created but could not be read back", err, http.StatusInternalServerError).
				LogAndResponse("re-read after signup failed", err, true)
		}
		columns = console.ReconcileColumns(console.Tables().Admins, []orm.DBRecord{row}, cafeadmin.AdminColumns())

		token, session, err := issueSession(console, row, columns)
		if err != nil {
			return state.SetError("Sign up succeeded but sign in failed", err, http.StatusServiceUnavailable).
				LogAndResponse("cannot issue session after signup", err, true)
		}

		cafeadmin.Metrics.RecordAuthentication(true)
		return state.SetSuccess("Account created successfully", map[string]interface{}{
			"token":   token,
			"session": session,
		}).LogAndResponse("admin created: "+signupReq.Email, token, true)
	}
}

// HandleSignOut clears the cached session. Idempotent: signing out an
// unknown token still succeeds.
func HandleSignOut(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "", "/auth/signout", "session")

		token := extractToken(ctx)
		if token != "" && console.Sessions.Get(token) != nil {
			console.Sessions.Clear(token)
			cafeadmin.Metrics.RecordSessionCleared()
		}

		return state.SetSuccess("Signed out successfully", nil).LogAndResponse("admin signed out", nil, true)
	}
}

// HandleSession returns the cached session for the token, 401 with a
// login redirect hint when absent or structurally invalid
func HandleSession(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "", "/auth/session", "session")

		token := extractToken(ctx)
		session, err := console.Sessions.Require(token)
		if err != nil {
			if err == &cafeadmin.ErrSessionInvalid {
				cafeadmin.Metrics.RecordSessionInvalidated()
			}
			return state.SetError("Authentication required", err, http.StatusUnauthorized).
				SetRedirect(console.Config.LoginPath).
				LogAndResponse("session introspection failed", nil, true)
		}

		state.User = session.DisplayName()
		return state.SetSuccess("Session active", session).LogAndResponse("session introspected", nil, false)
	}
}
