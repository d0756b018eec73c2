// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the inventory state machine
var (
	// ErrItemNotFound indicates the referenced inventory item does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrOutOfStock indicates a sell attempt against an item at quantity 0
	ErrOutOfStock = errors.New("item out of stock")
)

// ValidationError indicates a missing or invalid field on input
type ValidationError struct {
	msg string
}

// NewValidationError creates a validation error with the given message
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string {
	return e.msg
}

// DuplicateItemError indicates an active item with the same brand+model
// already exists. Existing carries the conflicting record so clients can
// redirect to a restock/edit flow.
type DuplicateItemError struct {
	Existing *InventoryItem
}

func (e *DuplicateItemError) Error() string {
	return "item already exists in inventory"
}

// PriceTooLowError indicates a sale price below the applicable floor
type PriceTooLowError struct {
	SaleType SaleType
	Floor    decimal.Decimal
}

func (e *PriceTooLowError) Error() string {
	return fmt.Sprintf("%s price must be at least ₹%s", e.SaleType, e.Floor.String())
}

// UploadError indicates the remote image store rejected or failed an upload
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image upload failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("image upload failed: %s", e.Reason)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// DeleteError indicates the remote image store rejected a deletion
type DeleteError struct {
	ExternalID string
	Err        error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("image delete failed for %s: %v", e.ExternalID, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
