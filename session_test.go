package cafeadmin

import (
	"testing"
	"time"

	orm "github.com/medatechnology/simpleorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(time.Minute, time.Minute, 3)
}

func TestSerializeAdmin(t *testing.T) {
	columns := FallbackColumnMap(AdminColumns())

	t.Run("identifier lands under both aliases", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{
			"admin_id": "ADM-7",
			"name":     "Rosa",
			"email":    "rosa@beanthere.com",
			"password": "should-not-leak",
		}}
		session := SerializeAdmin(row, columns)
		require.NotNil(t, session)
		assert.Equal(t, "ADM-7", session.ID)
		assert.Equal(t, "ADM-7", session.AdminID)
		assert.Equal(t, "Rosa", session.Name)
	})

	t.Run("id column serves as the alias source", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{
			"id":    float64(12),
			"email": "amir@beanthere.com",
		}}
		session := SerializeAdmin(row, columns)
		require.NotNil(t, session)
		assert.Equal(t, "12", session.ID)
		assert.Equal(t, "12", session.AdminID)
	})

	t.Run("row without identifier yields nil", func(t *testing.T) {
		row := orm.DBRecord{Data: map[string]interface{}{"email": "x@y.co"}}
		assert.Nil(t, SerializeAdmin(row, columns))
		assert.Nil(t, SerializeAdmin(orm.DBRecord{}, columns))
	})
}

func TestSessionStoreCacheGetClear(t *testing.T) {
	store := newTestStore(t)

	session := &AdminSession{ID: "ADM-1", AdminID: "ADM-1", Name: "Rosa"}
	store.Cache("tok-1", session)

	t.Run("write then read round-trips", func(t *testing.T) {
		got := store.Get("tok-1")
		require.NotNil(t, got)
		assert.Equal(t, "ADM-1", got.ID)
		assert.Equal(t, "ADM-1", got.AdminID)
		assert.Equal(t, "tok-1", got.Token)
	})

	t.Run("unknown token is nil", func(t *testing.T) {
		assert.Nil(t, store.Get("nope"))
	})

	t.Run("nil session clears instead of caching", func(t *testing.T) {
		store.Cache("tok-1", nil)
		assert.Nil(t, store.Get("tok-1"))
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store.Clear("tok-1")
		store.Clear("tok-1")
		assert.Nil(t, store.Get("tok-1"))
	})
}

func TestSessionStoreRequire(t *testing.T) {
	store := newTestStore(t)

	t.Run("missing token", func(t *testing.T) {
		_, err := store.Require("absent")
		assert.Equal(t, &ErrNoSession, err)
	})

	t.Run("valid session passes", func(t *testing.T) {
		store.Cache("tok-ok", &AdminSession{ID: "ADM-1", AdminID: "ADM-1"})
		session, err := store.Require("tok-ok")
		require.NoError(t, err)
		assert.Equal(t, "ADM-1", session.Identifier())
	})

	t.Run("session without identifier is cleared", func(t *testing.T) {
		store.Cache("tok-bad", &AdminSession{Name: "No ID"})
		_, err := store.Require("tok-bad")
		assert.Equal(t, &ErrSessionInvalid, err)
		// entry is gone, next attempt reports absence
		_, err = store.Require("tok-bad")
		assert.Equal(t, &ErrNoSession, err)
	})
}

func TestSessionStoreCapacity(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, 3, store.Capacity())
	assert.False(t, store.AtCapacity())

	for i, token := range []string{"a", "b", "c"} {
		store.Cache(token, &AdminSession{ID: string(rune('1' + i))})
	}
	assert.Equal(t, 3, store.Count())
	assert.True(t, store.AtCapacity())

	store.Clear("a")
	assert.False(t, store.AtCapacity())
}

func TestAdminSessionDisplayName(t *testing.T) {
	assert.Equal(t, "Rosa", AdminSession{Name: "Rosa", Email: "r@b.co"}.DisplayName())
	assert.Equal(t, "r@b.co", AdminSession{Email: "r@b.co"}.DisplayName())
	assert.Equal(t, "Admin #7", AdminSession{ID: "7"}.DisplayName())
	assert.Equal(t, "Admin", AdminSession{}.DisplayName())
}
