package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, store *Store, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, store.db.Model(model).Count(&n).Error)
	return n
}

func TestStore_Seed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seeded, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	assert.Equal(t, int64(2), countRows(t, store, &UserSchema{}))
	assert.Equal(t, int64(4), countRows(t, store, &CurrencySchema{}))
	assert.Equal(t, int64(3), countRows(t, store, &UserCurrencySchema{}))

	jpy, err := store.GetCurrencyByCharCode(ctx, "JPY")
	require.NoError(t, err)
	require.NotNil(t, jpy)
	assert.Equal(t, 100, jpy.Nominal)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	subs, err := store.ListSubscriptions(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "EUR", subs[0].Currency.CharCode)
	assert.Equal(t, "USD", subs[1].Currency.CharCode)
}

func TestStore_SeedIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Seed(ctx)
	require.NoError(t, err)

	seeded, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	assert.Equal(t, int64(2), countRows(t, store, &UserSchema{}))
	assert.Equal(t, int64(4), countRows(t, store, &CurrencySchema{}))
	assert.Equal(t, int64(3), countRows(t, store, &UserCurrencySchema{}))
}

func TestStore_SeedSkipsWhenUsersExist(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "Kamila")
	require.NoError(t, err)

	seeded, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, int64(0), countRows(t, store, &CurrencySchema{}))
}
