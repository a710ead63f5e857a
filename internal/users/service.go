// Package users is the identity service: account registration and
// credential verification. The rest of the application treats it as an
// opaque collaborator that yields {id, display name, email}.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nexonotes/nexonotes/internal/notes"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrInvalidInput indicates a missing email or password.
	ErrInvalidInput = errors.New("users: invalid input")
)

const minPasswordLength = 8

// ServiceConfig describes the dependencies of the identity service.
type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider notes.IDProvider
}

// Service manages user accounts.
type Service struct {
	db         *gorm.DB
	idProvider notes.IDProvider
}

// NewService constructs the identity service and migrates its schema.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = notes.NewUUIDProvider()
	}
	if err := cfg.Database.AutoMigrate(&Account{}); err != nil {
		return nil, fmt.Errorf("users: migrate: %w", err)
	}
	return &Service{db: cfg.Database, idProvider: idProvider}, nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return Account{}, fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	var existing Account
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return Account{}, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	userID, err := s.idProvider.NewID()
	if err != nil {
		return Account{}, err
	}

	account := Account{
		UserID:       userID,
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return Account{}, err
	}
	return account, nil
}

// Authenticate verifies the email/password pair and returns the account.
// A missing account and a wrong password are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}

	var account Account
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// GetByID loads one account by its canonical identifier.
func (s *Service) GetByID(ctx context.Context, userID string) (Account, error) {
	var account Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	return account, nil
}
