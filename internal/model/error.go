package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInvalidAddress    = "INVALID_ADDRESS"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInvalidLineItem   = "INVALID_LINE_ITEM"
	ErrCodeUnknownStatus     = "UNKNOWN_STATUS"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeOrderTerminal     = "ORDER_TERMINAL"
	ErrCodeNoApprovedItems   = "NO_APPROVED_ITEMS"
	ErrCodeInvalidDate       = "INVALID_DATE"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeAttachmentTooBig  = "ATTACHMENT_TOO_LARGE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business rule violation with a machine-checkable code.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so detailed instances
// still match the sentinel values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidAddress    = NewDomainError(ErrCodeInvalidAddress, "Delivery address is not valid for this user")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Order must contain at least one item")
	ErrInvalidLineItem   = NewDomainError(ErrCodeInvalidLineItem, "Each item needs a product ID and a quantity greater than zero")
	ErrUnknownStatus     = NewDomainError(ErrCodeUnknownStatus, "Status must be one of Diajukan, Diproses, Dikirim, Selesai or Dibatalkan")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Status transition is not allowed")
	ErrOrderTerminal     = NewDomainError(ErrCodeOrderTerminal, "Order is closed and can no longer be changed")
	ErrNoApprovedItems   = NewDomainError(ErrCodeNoApprovedItems, "Order has no approved items")
	ErrUnauthorised      = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Administrator role required")
)

// NewProductNotFoundError names the product that could not be found.
func NewProductNotFoundError(productID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeProductNotFound,
		Message: fmt.Sprintf("Product with ID %s not found", productID),
		Details: map[string]any{"productId": productID},
	}
}

// NewInsufficientStockError names the product and the quantity still available.
func NewInsufficientStockError(productID, productName string, available int) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s. Available: %d", productName, available),
		Details: map[string]any{
			"productId":   productID,
			"productName": productName,
			"available":   available,
		},
	}
}

// NewInvalidTransitionError describes the rejected status change.
func NewInvalidTransitionError(from, to Status) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot change status from %s to %s", from, to),
		Details: map[string]any{"from": string(from), "to": string(to)},
	}
}

// NewOrderNotFoundError names the missing order.
func NewOrderNotFoundError(orderID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeOrderNotFound,
		Message: fmt.Sprintf("Order %s not found", orderID),
		Details: map[string]any{"orderId": orderID},
	}
}

// NewInvalidDateError reports a note date that could not be parsed.
func NewInvalidDateError(value string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidDate,
		Message: fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", value),
		Details: map[string]any{"date": value},
	}
}
