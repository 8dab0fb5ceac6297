package orders

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an order does not exist or belongs to
	// a different account.
	ErrNotFound = errors.New("orders: not found")

	// ErrCustomerNotFound is returned when the referenced customer does
	// not exist or belongs to a different account. The two cases are not
	// distinguished.
	ErrCustomerNotFound = errors.New("orders: customer not found")
)

// dateLayout is the wire format for delivery dates.
const dateLayout = "2006-01-02"

// Order is a stitching job for a customer.
type Order struct {
	ID                   int64     `json:"id"`
	AccountID            int64     `json:"-"`
	CustomerID           int64     `json:"customerId"`
	ClothType            string    `json:"clothType"`
	StitchingType        string    `json:"stitchingType"`
	MeasurementsGiven    string    `json:"measurementsGiven"`
	NumberOfItems        int       `json:"numberOfItems"`
	Charge               float64   `json:"charge"`
	DeliveryDate         string    `json:"deliveryDate"`
	Waist                string    `json:"waist,omitempty"`
	Length               string    `json:"length,omitempty"`
	ClothImageURLs       []string  `json:"clothImageUrls"`
	MeasurementImageURLs []string  `json:"measurementImageUrls"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// CreateRequest is the payload for placing an order.
type CreateRequest struct {
	CustomerID           int64    `json:"customerId"`
	ClothType            string   `json:"clothType"`
	StitchingType        string   `json:"stitchingType"`
	MeasurementsGiven    string   `json:"measurementsGiven"`
	NumberOfItems        int      `json:"numberOfItems"`
	Charge               float64  `json:"charge"`
	DeliveryDate         string   `json:"deliveryDate"`
	Waist                string   `json:"waist,omitempty"`
	Length               string   `json:"length,omitempty"`
	ClothImageURLs       []string `json:"clothImageUrls,omitempty"`
	MeasurementImageURLs []string `json:"measurementImageUrls,omitempty"`
}

// UpdateRequest is the payload for editing an order. Nil fields are left
// unchanged.
type UpdateRequest struct {
	ClothType            *string   `json:"clothType,omitempty"`
	StitchingType        *string   `json:"stitchingType,omitempty"`
	MeasurementsGiven    *string   `json:"measurementsGiven,omitempty"`
	NumberOfItems        *int      `json:"numberOfItems,omitempty"`
	Charge               *float64  `json:"charge,omitempty"`
	DeliveryDate         *string   `json:"deliveryDate,omitempty"`
	Waist                *string   `json:"waist,omitempty"`
	Length               *string   `json:"length,omitempty"`
	ClothImageURLs       *[]string `json:"clothImageUrls,omitempty"`
	MeasurementImageURLs *[]string `json:"measurementImageUrls,omitempty"`
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
	if r.CustomerID <= 0 {
		fields["customerId"] = "is required"
	}
	if strings.TrimSpace(r.ClothType) == "" {
		fields["clothType"] = "is required"
	}
	if strings.TrimSpace(r.StitchingType) == "" {
		fields["stitchingType"] = "is required"
	}
	if r.NumberOfItems <= 0 {
		fields["numberOfItems"] = "must be positive"
	}
	if r.Charge < 0 {
		fields["charge"] = "must not be negative"
	}
	if _, err := time.Parse(dateLayout, r.DeliveryDate); err != nil {
		fields["deliveryDate"] = "must be a date in YYYY-MM-DD form"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate checks the update payload.
func (r UpdateRequest) Validate() error {
	fields := map[string]string{}
	if r.ClothType != nil && strings.TrimSpace(*r.ClothType) == "" {
		fields["clothType"] = "must not be empty"
	}
	if r.StitchingType != nil && strings.TrimSpace(*r.StitchingType) == "" {
		fields["stitchingType"] = "must not be empty"
	}
	if r.NumberOfItems != nil && *r.NumberOfItems <= 0 {
		fields["numberOfItems"] = "must be positive"
	}
	if r.Charge != nil && *r.Charge < 0 {
		fields["charge"] = "must not be negative"
	}
	if r.DeliveryDate != nil {
		if _, err := time.Parse(dateLayout, *r.DeliveryDate); err != nil {
			fields["deliveryDate"] = "must be a date in YYYY-MM-DD form"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
