package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/database"
	"github.com/vnkhanh/survey-hub/database/databasetest"
)

func TestMigrateRoundTrip(t *testing.T) {
	db := databasetest.New(t)
	tables := []string{"apps", "surveys", "questions", "responses", "answers", "users", "audit_logs", "export_jobs"}
	for _, table := range tables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// already applied
	require.NoError(t, database.Migrate(db, config.DriverSQLite))

	require.NoError(t, database.Rollback(db, config.DriverSQLite, 1))
	assert.False(t, db.Migrator().HasTable("audit_logs"))
	assert.True(t, db.Migrator().HasTable("apps"))

	require.NoError(t, database.Rollback(db, config.DriverSQLite, 0))
	for _, table := range tables {
		assert.False(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, database.Migrate(db, config.DriverSQLite))
	assert.True(t, db.Migrator().HasTable("export_jobs"))
}

func TestMigrateUnknownDriver(t *testing.T) {
	db := databasetest.New(t)
	assert.Error(t, database.Migrate(db, "oracle"))
}
