package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderlist/wanderlist/internal/models"
)

func TestOpenSQLAndMigrate(t *testing.T) {
	db, err := OpenSQL("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.True(t, db.Migrator().HasTable(&models.User{}))
	require.True(t, db.Migrator().HasTable("preferences"))
	require.True(t, db.Migrator().HasTable(&models.PreferenceTag{}))
	require.True(t, db.Migrator().HasIndex(&models.PreferenceRecord{}, "UserID"))
}

func TestOpenSQL_UnknownDriver(t *testing.T) {
	_, err := OpenSQL("oracle", "x")
	require.Error(t, err)
}
