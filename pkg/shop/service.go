package shop

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Indian mobile numbers without country code.
var phoneRegex = regexp.MustCompile(`^\d{10}$`)

// onboardingCacheSize bounds the LRU of account onboarding states. Small
// on purpose: one entry per recently active account.
const onboardingCacheSize = 4096

type shopStore interface {
	Create(ctx context.Context, accountID int64, shop *Shop) error
	GetByAccountID(ctx context.Context, accountID int64) (*Shop, error)
}

type accountGetter interface {
	GetByID(ctx context.Context, id int64) (*auth.Account, error)
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

// Service manages shop setup and answers onboarding queries. Status
// results are cached per account; Create invalidates the entry so the
// gate flips to ready immediately after setup.
type Service struct {
	store    shopStore
	accounts accountGetter
	cache    *lru.Cache[int64, OnboardingStatus]
	logger   *observability.Logger
}

// NewService creates the shop service.
func NewService(store shopStore, accounts accountGetter, logger *observability.Logger) (*Service, error) {
	cache, err := lru.New[int64, OnboardingStatus](onboardingCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create onboarding cache: %w", err)
	}
	return &Service{
		store:    store,
		accounts: accounts,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Create sets up the account's shop. Returns ErrShopExists when the
// account already has one and *ValidationError on a malformed payload.
func (s *Service) Create(ctx context.Context, accountID int64, req CreateRequest) (*Shop, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	shop := &Shop{
		ShopName:    strings.TrimSpace(req.ShopName),
		PhoneNumber: req.PhoneNumber,
		Address:     strings.TrimSpace(req.Address),
	}
	if err := s.store.Create(ctx, accountID, shop); err != nil {
		return nil, err
	}

	s.cache.Remove(accountID)
	s.logger.WithFields(map[string]interface{}{
		"account_id": accountID,
		"shop_id":    shop.ID,
	}).Info("shop created")
	return shop, nil
}

// Get fetches the account's shop.
func (s *Service) Get(ctx context.Context, accountID int64) (*Shop, error) {
	return s.store.GetByAccountID(ctx, accountID)
}

// Status reports how far the account has come through onboarding. The
// no-account case covers tokens that outlive their account; the cache
// never holds that state, so a recreated account is seen immediately.
func (s *Service) Status(ctx context.Context, accountID int64) (OnboardingStatus, error) {
	if status, ok := s.cache.Get(accountID); ok {
		return status, nil
	}

	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return StatusNoAccount, nil
		}
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	status := StatusReady
	if _, err := s.store.GetByAccountID(ctx, accountID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("failed to look up shop: %w", err)
		}
		status = StatusNeedsShop
	}

	s.cache.Add(accountID, status)
	return status, nil
}

// HasShop reports whether the account has completed shop setup. Satisfies
// the login handler's checker interface.
func (s *Service) HasShop(ctx context.Context, accountID int64) (bool, error) {
	status, err := s.Status(ctx, accountID)
	if err != nil {
		return false, err
	}
	return status == StatusReady, nil
}

func validateCreate(req CreateRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.ShopName) == "" {
		fields["shopName"] = "is required"
	}
	if !phoneRegex.MatchString(req.PhoneNumber) {
		fields["phoneNumber"] = "must be exactly 10 digits"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
