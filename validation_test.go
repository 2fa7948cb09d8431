package cafeadmin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("admin@beanthere.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("two@@signs.com@"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", MaxEmailLength)+"@x.co"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse battery staple"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword(strings.Repeat("p", MaxPasswordLength+1)))
}

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, ValidateDisplayName("All Day Menu"))
	assert.Error(t, ValidateDisplayName("   "))
	assert.Error(t, ValidateDisplayName(strings.Repeat("n", MaxNameLength+1)))
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(0))
	assert.NoError(t, ValidatePrice(4.5))
	assert.Error(t, ValidatePrice(-0.01))
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, ValidateTableName("orders", false))
	assert.NoError(t, ValidateTableName("order_item", false))
	assert.Error(t, ValidateTableName("", false))
	assert.Error(t, ValidateTableName("orders; DROP TABLE admin", false))
	assert.Error(t, ValidateTableName("_internal", false))
	assert.NoError(t, ValidateTableName("_internal", true))
}

func TestValidateSignUp(t *testing.T) {
	valid := SignUpRequest{
		Name:            "Rosa",
		Email:           "rosa@beanthere.com",
		Password:        "secret",
		ConfirmPassword: "secret",
	}
	assert.NoError(t, ValidateSignUp(valid))

	mismatch := valid
	mismatch.ConfirmPassword = "other"
	assert.Error(t, ValidateSignUp(mismatch))

	noName := valid
	noName.Name = " "
	assert.Error(t, ValidateSignUp(noName))
}
