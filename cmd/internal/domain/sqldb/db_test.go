package sqldb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"healtogether/cmd/internal/domain/entity"
)

func TestInit_MigrateAndPing(t *testing.T) {
	db, err := Init(Options{Driver: "sqlite", DSN: "file:db_init?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.NoError(t, Ping(context.Background(), db))

	for _, table := range []string{"users", "appointments", "prescriptions", "medication_intakes", "caretaker_requests", "medical_visit_requests"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInit_LoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	db, err := Init(Options{
		Driver:    "sqlite",
		DSN:       "file:db_logger?mode=memory&cache=shared",
		LogWriter: log.New(&buf, "", 0),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	err = db.Where("live_slot_key = ?", "doc|2026-10-19|09:00").First(&entity.Appointment{}).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "record not found")

	var rows []map[string]any
	err = db.Raw("SELECT * FROM missing_table").Scan(&rows).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "missing_table")
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(Options{Driver: "oracle"})
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1452}))
}
