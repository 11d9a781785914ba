package store_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openexam/examtrail/internal/auth"
	"github.com/openexam/examtrail/internal/model"
	"github.com/openexam/examtrail/internal/store"
	"github.com/openexam/examtrail/internal/testutil"
)

func TestSeedDisabled(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)

	require.NoError(t, store.Seed(t.Context(), db, false))

	_, err := queries.GetUserByEmail(t.Context(), store.DefaultAdminEmail)
	require.True(t, errors.Is(err, sql.ErrNoRows), "disabled seed must not create the admin")
}

func TestSeedCreatesAdmin(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)

	require.NoError(t, store.Seed(t.Context(), db, true))

	admin, err := queries.GetUserByEmail(t.Context(), store.DefaultAdminEmail)
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
	require.Equal(t, model.OrgTagAdmin, admin.OrgTag)
	require.NotEmpty(t, admin.PublicID)

	ok, err := auth.CheckPassword(store.DefaultAdminPassword, admin.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok, "seeded password hash must verify")

	// Re-running is a no-op.
	require.NoError(t, store.Seed(t.Context(), db, true))
	again, err := queries.GetUserByEmail(t.Context(), store.DefaultAdminEmail)
	require.NoError(t, err)
	require.Equal(t, admin.ID, again.ID)
}
