package cafeadmin

import (
	"regexp"
	"strings"

	"github.com/medatechnology/goutil/medaerror"
	orm "github.com/medatechnology/simpleorm"
)

// Input validation constants
const (
	MaxEmailLength     = 254
	MaxPasswordLength  = 100
	MaxTableNameLength = 64
	MaxNameLength      = 100
)

// Regular expressions for validation
var (
	// Table names: must start with letter or underscore, then alphanumeric or underscore
	tableNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	// Pragmatic email shape check, the backend row is the real authority
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateTableName validates table names to prevent SQL injection
// - Only allows alphanumeric characters and underscores
// - Must start with a letter or underscore
// - Cannot be longer than MaxTableNameLength
// - Blocks access to internal tables (starting with _) unless allowInternal is true
func ValidateTableName(name string, allowInternal bool) error {
	if name == "" {
		return medaerror.NewString("table name cannot be empty")
	}

	if len(name) > MaxTableNameLength {
		return medaerror.Errorf("table name exceeds maximum length of %d characters", MaxTableNameLength)
	}

	// Check format
	if !tableNameRegex.MatchString(name) {
		return medaerror.NewString("invalid table name format: must start with letter/underscore and contain only alphanumeric characters and underscores")
	}

	// Prevent access to internal tables unless explicitly allowed
	if !allowInternal && strings.HasPrefix(name, "_") {
		return medaerror.NewString("access to internal tables is not allowed")
	}

	return nil
}

// ValidateEmail validates the login/signup email field
func ValidateEmail(email string) error {
	if email == "" {
		return medaerror.NewString("email cannot be empty")
	}

	if len(email) > MaxEmailLength {
		return medaerror.Errorf("email must not exceed %d characters", MaxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return medaerror.NewString("invalid email format")
	}

	return nil
}

// ValidatePassword validates password requirements
func ValidatePassword(password string) error {
	if password == "" {
		return medaerror.NewString("password cannot be empty")
	}

	if len(password) > MaxPasswordLength {
		return medaerror.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}

	return nil
}

// ValidateDisplayName validates admin and menu display names
func ValidateDisplayName(name string) error {
	if strings.TrimSpace(name) == "" {
		return medaerror.NewString("name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return medaerror.Errorf("name must not exceed %d characters", MaxNameLength)
	}

	return nil
}

// ValidatePrice validates a menu item price from the dialog
func ValidatePrice(price float64) error {
	if price < 0 {
		return medaerror.NewString("price cannot be negative")
	}
	return nil
}

// ValidateSignUp validates the whole signup form
func ValidateSignUp(req SignUpRequest) error {
	if err := ValidateDisplayName(req.Name); err != nil {
		return medaerror.Errorf("invalid name: %v", err)
	}

	if err := ValidateEmail(req.Email); err != nil {
		return medaerror.Errorf("invalid email: %v", err)
	}

	if err := ValidatePassword(req.Password); err != nil {
		return medaerror.Errorf("invalid password: %v", err)
	}

	if req.Password != req.ConfirmPassword {
		return medaerror.NewString("passwords do not match")
	}

	return nil
}

// IsNoRowsError checks if an error is the "no rows" error.
// Standard pattern across the console: no rows is not treated as an
// error but as a successful query with empty results.
func IsNoRowsError(err error) bool {
	if err == nil {
		return false
	}
	// Check against ORM's standard error
	return err == orm.ErrSQLNoRows ||
		err.Error() == "sql: no rows in result set" ||
		err.Error() == "no rows in result set"
}
