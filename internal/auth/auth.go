// Package auth registers users, verifies passwords and issues the bearer tokens
// that protect /me.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"argip-api/internal/apperr"
	"argip-api/internal/models"
	"argip-api/internal/storage"
)

// Service is the credential store.
type Service struct {
	db   *gorm.DB
	cost int
	// dummyHash is compared against when the username is unknown so that a
	// miss costs as much as a wrong password.
	dummyHash []byte
}

func NewService(db *gorm.DB, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("argip-dummy-password"), cost)
	if err != nil {
		logrus.WithError(err).Warn("could not prepare dummy password hash")
	}
	return &Service{db: db, cost: cost, dummyHash: dummy}
}

// Register creates a user. Username uniqueness is checked before email.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	log := logrus.WithField("username", username)
	db := s.db.WithContext(ctx)

	if err := s.checkAvailable(db, username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Validation("Password must be at most 72 bytes")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}

	user := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		if storage.IsUniqueViolation(err) {
			// Lost a race with a concurrent registration; report which field collided.
			if cerr := s.checkAvailable(db, username, email); cerr != nil {
				return nil, cerr
			}
			return nil, apperr.ErrDuplicateUsername
		}
		log.WithError(err).Error("failed to create user")
		return nil, apperr.Storage(err)
	}

	log.WithField("user_id", user.ID).Info("user registered")
	user.HashedPassword = ""
	return &user, nil
}

func (s *Service) checkAvailable(db *gorm.DB, username, email string) error {
	taken, err := exists(db, "username = ?", username)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrDuplicateUsername
	}
	taken, err = exists(db, "email = ?", email)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrDuplicateEmail
	}
	return nil
}

func exists(db *gorm.DB, query string, arg interface{}) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, apperr.Storage(err)
	}
	return count > 0, nil
}

// Verify checks a username and password pair. Unknown users and wrong
// passwords produce the same error.
func (s *Service) Verify(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if storage.IsNotFound(err) {
		if s.dummyHash != nil {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		}
		logrus.WithField("username", username).Info("login failed")
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("username", username).Info("login failed")
		return nil, apperr.ErrInvalidCredentials
	}

	user.HashedPassword = ""
	return &user, nil
}

// UserByUsername loads a user without the password hash.
func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.NotFound("User not found")
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if storage.IsNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	user.HashedPassword = ""
	return &user, nil
}
