package customers

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a customer does not exist or belongs
	// to a different account.
	ErrNotFound = errors.New("customers: not found")
)

var mobileRegex = regexp.MustCompile(`^\d{10}$`)

// Customer is a person the shop stitches for.
type Customer struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"-"`
	Name         string    `json:"name"`
	MobileNumber string    `json:"mobileNumber"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateRequest is the payload for adding a customer.
type CreateRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Address      string `json:"address,omitempty"`
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

// Validate checks the create payload.
func (r CreateRequest) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "is required"
	}
	if !mobileRegex.MatchString(r.MobileNumber) {
		fields["mobileNumber"] = "must be exactly 10 digits"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
