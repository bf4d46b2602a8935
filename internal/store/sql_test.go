package store

import (
	"context"
	"database/sql"
	"testing"

	"reports_srv/internal/apperr"
	"reports_srv/internal/database"
	"reports_srv/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

// setupTestDB opens a single-connection in-memory sqlite database so every
// acquired connection sees the same data
func setupTestDB(t *testing.T) (*gorm.DB, *database.ConnProvider) {
	t.Helper()
	db, err := database.NewDatabase(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, models.DefaultTableName))

	provider, err := database.NewConnProvider(db, database.DriverSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return db, provider
}

func setupSQLStore(t *testing.T) (*SQLStore, *sql.DB) {
	t.Helper()
	db, provider := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return NewSQLStore(provider, models.DefaultTableName, setupTestLogger(), WithClock(steppingClock())), sqlDB
}

func TestSQLStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) ReportStore {
		s, _ := setupSQLStore(t)
		return s
	})
}

func TestSQLStoreReleasesConnections(t *testing.T) {
	s, sqlDB := setupSQLStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, models.CreateParams{Title: "T", Description: "D", CreatedBy: "U"})
	require.NoError(t, err)
	assert.Zero(t, sqlDB.Stats().InUse)

	_, err = s.GetByID(ctx, 42)
	require.Error(t, err)
	assert.Zero(t, sqlDB.Stats().InUse)

	_, err = s.Delete(ctx, 42)
	require.Error(t, err)
	assert.Zero(t, sqlDB.Stats().InUse)

	_, err = s.List(ctx, models.ReportFilter{DescriptionContains: "D"})
	require.NoError(t, err)
	assert.Zero(t, sqlDB.Stats().InUse)
}

func TestSQLStoreEscapesFilterValues(t *testing.T) {
	s, _ := setupSQLStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, models.CreateParams{Title: "O'Brien's report", Description: "it's 100% done", CreatedBy: "O'Brien"})
	require.NoError(t, err)

	byTitle, err := s.List(ctx, models.ReportFilter{Title: "O'Brien's report"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "O'Brien", byTitle[0].CreatedBy)

	injected, err := s.List(ctx, models.ReportFilter{Title: "x' OR '1'='1"})
	require.NoError(t, err)
	assert.Empty(t, injected)
}

// createDuplicateIDTable creates report_nokey holding two rows with id 1
func createDuplicateIDTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec(`CREATE TABLE report_nokey (
		id integer, title text, description text, created_at datetime,
		created_by text, last_modified_at datetime, last_modified_by text)`).Error)
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Exec(`INSERT INTO report_nokey VALUES
			(1, 'T', 'D', '2024-01-01 00:00:00+00:00', 'U', '2024-01-01 00:00:00+00:00', 'U')`).Error)
	}
}

func TestSQLStoreDuplicateIDIsStorageError(t *testing.T) {
	db, provider := setupTestDB(t)
	createDuplicateIDTable(t, db)

	s := NewSQLStore(provider, "report_nokey", setupTestLogger())
	_, err := s.GetByID(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}

func TestSQLStoreUnexpectedAffectedRowsIsInternalError(t *testing.T) {
	db, provider := setupTestDB(t)
	createDuplicateIDTable(t, db)

	s := NewSQLStore(provider, "report_nokey", setupTestLogger())
	_, err := s.Update(context.Background(), 1, models.UpdateParams{Title: "T2", Description: "D2", LastModifiedBy: "V"})

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "update affected 2 rows")

	// снимок перед удалением уже видит дубликат
	_, err = s.Delete(context.Background(), 1)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}

func TestSQLStoreDriverErrorIsStorageError(t *testing.T) {
	_, provider := setupTestDB(t)
	s := NewSQLStore(provider, "missing_table", setupTestLogger())

	_, err := s.List(context.Background(), models.ReportFilter{})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindStorage, appErr.Kind)
	assert.NotEmpty(t, appErr.DBCode)
	assert.NotEmpty(t, appErr.DBMessage)
}

func TestSQLStoreAcquireFailure(t *testing.T) {
	db, provider := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	s := NewSQLStore(provider, models.DefaultTableName, setupTestLogger())
	_, err = s.GetByID(context.Background(), 1)

	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}
