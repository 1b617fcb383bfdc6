package storage

import (
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"argip-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "ranges", "nuts", "screw_lengths"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// Running it twice must be harmless.
	require.NoError(t, Migrate(db))
}

func TestUniqueViolationIsClassified(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "a@x.com", HashedPassword: "h"}).Error)
	err := db.Create(&models.User{Username: "alice", Email: "b@x.com", HashedPassword: "h"}).Error

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
}

func TestScrewLengthPairIsUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.ScrewLength{Srednica: 6, Dlugosc: 20}).Error)
	require.NoError(t, db.Create(&models.ScrewLength{Srednica: 6, Dlugosc: 25}).Error)
	err := db.Create(&models.ScrewLength{Srednica: 6, Dlugosc: 20}).Error

	assert.True(t, IsUniqueViolation(err))
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := setupTestDB(t)

	err := db.Create(&models.Nut{IDZakresu: 42, Nazwa: "hex", Srednica: 6, Cena: models.MustPrice("1.50")}).Error

	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestRangeDeleteCascadesAtSchemaLevel(t *testing.T) {
	db := setupTestDB(t)

	r := models.Range{Nazwa: "M6", Od: 6, Do: 8}
	require.NoError(t, db.Create(&r).Error)
	require.NoError(t, db.Create(&models.Nut{IDZakresu: r.ID, Nazwa: "hex", Srednica: 6, Cena: models.MustPrice("1.50")}).Error)

	require.NoError(t, db.Delete(&models.Range{}, r.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Nut{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPriceIsStoredExactly(t *testing.T) {
	db := setupTestDB(t)

	r := models.Range{Nazwa: "M6", Od: 6, Do: 8}
	require.NoError(t, db.Create(&r).Error)
	n := models.Nut{IDZakresu: r.ID, Nazwa: "hex", Srednica: 6, Cena: models.MustPrice("0.10")}
	require.NoError(t, db.Create(&n).Error)

	var got models.Nut
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.Equal(t, "0.10", got.Cena.String())
}

func TestDriverErrorsAreClassified(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.True(t, IsUniqueViolation(&gomysql.MySQLError{Number: 1062}))
	assert.True(t, IsForeignKeyViolation(&gomysql.MySQLError{Number: 1452}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", nil)
	assert.Error(t, err)
}
