package shop

import (
	"errors"
	"time"
)

var (
	// ErrShopExists is returned when an account that already has a shop
	// tries to create another one.
	ErrShopExists = errors.New("shop: account already has a shop")

	// ErrNotFound is returned when an account has no shop.
	ErrNotFound = errors.New("shop: not found")
)

// Shop is an account's tailor shop profile. AccountID is both the owner
// and the tenant key; the unique constraint on it enforces one shop per
// account.
type Shop struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"-"`
	ShopName    string    `json:"shopName"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateRequest is the payload for shop setup.
type CreateRequest struct {
	ShopName    string `json:"shopName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address,omitempty"`
}

// OnboardingStatus describes how far an authenticated account has come.
type OnboardingStatus string

const (
	// StatusNoAccount means the session token referenced an account that
	// no longer exists.
	StatusNoAccount OnboardingStatus = "no_account"
	// StatusNeedsShop means the account exists but has not set up a shop.
	StatusNeedsShop OnboardingStatus = "needs_shop"
	// StatusReady means the account has a shop and full access.
	StatusReady OnboardingStatus = "ready"
)
