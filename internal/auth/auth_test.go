package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"argip-api/internal/apperr"
	"argip-api/internal/models"
	"argip-api/internal/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close(db) })
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := setupTestDB(t)
	return NewService(db, bcrypt.MinCost), db
}

func TestRegisterUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, user.HashedPassword, "returned record carries no hash")
	assert.False(t, user.CreatedAt.IsZero())

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotEqual(t, "pw1", stored.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("pw1")))
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@x.com", "pw2")
	assert.ErrorIs(t, err, apperr.ErrDuplicateUsername)

	_, err = svc.Register(ctx, "bob", "a@x.com", "pw2")
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	// Both taken: username wins.
	_, err = svc.Register(ctx, "alice", "a@x.com", "pw2")
	assert.ErrorIs(t, err, apperr.ErrDuplicateUsername)
	assert.Equal(t, "Username already registered", apperr.Message(err))
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "authuser", "auth@x.com", "secret")
	require.NoError(t, err)

	user, err := svc.Verify(ctx, "authuser", "secret")
	require.NoError(t, err)
	assert.Equal(t, "authuser", user.Username)
	assert.Empty(t, user.HashedPassword)

	_, wrongPassword := svc.Verify(ctx, "authuser", "wrongpassword")
	_, unknownUser := svc.Verify(ctx, "wronguser", "secret")

	assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, apperr.ErrInvalidCredentials)
	assert.Equal(t, apperr.Message(wrongPassword), apperr.Message(unknownUser))
}

func TestUserByUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "c@x.com", "pw")
	require.NoError(t, err)

	user, err := svc.UserByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "c@x.com", user.Email)
	assert.Empty(t, user.HashedPassword)

	_, err = svc.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.UserByUsername(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// openSharedDB opens two independent pools on one SQLite file, so a write
// through the second is committed and visible to the first.
func openSharedDB(t *testing.T) (*gorm.DB, *gorm.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.db")
	db, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	other, err := storage.Open(storage.DriverSQLite, path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(other) })
	return db, other
}

func TestRegisterCollisionAtInsert(t *testing.T) {
	tests := []struct {
		name  string
		rival models.User
		want  error
	}{
		{
			name:  "username taken after check",
			rival: models.User{Username: "alice", Email: "rival@x.com", HashedPassword: "x"},
			want:  apperr.ErrDuplicateUsername,
		},
		{
			name:  "email taken after check",
			rival: models.User{Username: "rival", Email: "a@x.com", HashedPassword: "x"},
			want:  apperr.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, other := openSharedDB(t)
			rival := tt.rival
			inserted := false
			// Runs after Register's availability check, right before its INSERT.
			err := db.Callback().Create().Before("gorm:create").Register("test:rival_signup", func(tx *gorm.DB) {
				if inserted {
					return
				}
				inserted = true
				require.NoError(t, other.Create(&rival).Error)
			})
			require.NoError(t, err)

			svc := NewService(db, bcrypt.MinCost)
			_, err = svc.Register(context.Background(), "alice", "a@x.com", "pw1")

			require.True(t, inserted)
			assert.ErrorIs(t, err, tt.want)

			var count int64
			require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
			assert.EqualValues(t, 1, count, "only the rival row is stored")
		})
	}
}
