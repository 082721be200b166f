package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gridscope/gridscope/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabase runs the Database contract tests against an implementation.
func testDatabase(t *testing.T, db Database) {
	ctx := context.Background()

	t.Run("missing user returns ErrNotFound", func(t *testing.T) {
		_, _, err := db.GetPreferences(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		in := types.Preferences{
			Theme:        types.ThemeDark,
			UnitSystem:   types.UnitsImperial,
			SelectedZone: "SDGE",
		}
		require.NoError(t, db.SetPreferences(ctx, "alice", in, types.CurrentPreferencesVersion))

		out, version, err := db.GetPreferences(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, in, out)
		assert.Equal(t, types.CurrentPreferencesVersion, version)
	})

	t.Run("set overwrites", func(t *testing.T) {
		in := types.Preferences{Theme: types.ThemeLight, UnitSystem: types.UnitsMetric, SelectedZone: "STATEWIDE"}
		require.NoError(t, db.SetPreferences(ctx, "alice", in, types.CurrentPreferencesVersion))

		out, _, err := db.GetPreferences(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, types.ThemeLight, out.Theme)
	})

	t.Run("list users", func(t *testing.T) {
		require.NoError(t, db.SetPreferences(ctx, "bob", types.Preferences{Theme: types.ThemeLight}, 1))

		users, err := db.ListUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, users)
	})
}

func TestMemory(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDatabase(t, db)
}

func TestSQLite(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer db.Close()
	testDatabase(t, db)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	in := types.Preferences{Theme: types.ThemeDark, UnitSystem: types.UnitsMetric, SelectedZone: "NP15"}
	require.NoError(t, db.SetPreferences(ctx, "carol", in, 2))
	require.NoError(t, db.Close())

	// data survives a restart
	db, err = NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	out, version, err := db.GetPreferences(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 2, version)
}
