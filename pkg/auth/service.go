package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// accountStore is the storage surface the service needs.
type accountStore interface {
	Create(ctx context.Context, account *Account) error
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
}

// Service validates credentials and creates accounts. Password hashing is
// CPU-bound, so concurrent hash work is capped by a weighted semaphore:
// beyond the cap, requests queue instead of piling bcrypt work onto every
// core at once.
type Service struct {
	store      accountStore
	bcryptCost int
	hashSem    *semaphore.Weighted
	logger     *observability.Logger
}

// NewService creates the auth service. workers bounds concurrent bcrypt
// operations.
func NewService(store accountStore, bcryptCost, workers int, logger *observability.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:      store,
		bcryptCost: bcryptCost,
		hashSem:    semaphore.NewWeighted(int64(workers)),
		logger:     logger,
	}
}

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Signup creates a new account. The password is hashed before storage and
// the plaintext never leaves this function. Returns ErrUsernameTaken on a
// username collision and *ValidationError on a malformed payload.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Account, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:     req.Username,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("account created")
	return account, nil
}

// Login verifies the submitted credentials and returns the matching
// account. Unknown usernames and wrong passwords both return ErrAuthFailed;
// to keep the two paths close in timing, a wrong-username attempt still
// burns a bcrypt comparison against a dummy hash.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Account, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrAuthFailed
	}

	account, err := s.store.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.burnComparison(ctx, req.Password)
			return nil, ErrAuthFailed
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	ok, err := s.checkPassword(ctx, account.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthFailed
	}
	return account, nil
}

// GetAccount fetches an account by id. Used by handlers that need the
// authenticated account's profile.
func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire hash worker: %w", err)
	}
	defer s.hashSem.Release(1)
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) checkPassword(ctx context.Context, hash, password string) (bool, error) {
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("failed to acquire hash worker: %w", err)
	}
	defer s.hashSem.Release(1)
	return CheckPassword(hash, password), nil
}

// dummyHash is a bcrypt hash of an unguessable throwaway value, compared
// against when the username does not exist so both login failure paths do
// comparable work.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *Service) burnComparison(ctx context.Context, password string) {
	if _, err := s.checkPassword(ctx, dummyHash, password); err != nil {
		s.logger.WithError(err).Debug("dummy comparison skipped")
	}
}

func validateSignup(req SignupRequest) error {
	fields := map[string]string{}
	if !usernameRegex.MatchString(req.Username) {
		fields["username"] = "must be 3-64 characters of letters, digits, underscore, dot or hyphen"
	}
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(req.Password) > 72 {
		fields["password"] = "must be at most 72 characters"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
