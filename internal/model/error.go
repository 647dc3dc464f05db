package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeLoginRequired     = "LOGIN_REQUIRED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInvalidAuth       = "INVALID_AUTH_RESPONSE"
	ErrCodeCheckoutBusy      = "CHECKOUT_IN_PROGRESS"
	ErrCodeCheckoutFailed    = "CHECKOUT_FAILED"
	ErrCodeAlreadyInShop     = "ALREADY_IN_SHOP"
	ErrCodeRemoteUnavailable = "REMOTE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
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
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity change must not be zero")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrLoginRequired       = NewDomainError(ErrCodeLoginRequired, "Please sign in or create an account to complete your purchase")
	ErrForbidden           = NewDomainError(ErrCodeForbidden, "You do not have access to this page")
	ErrInvalidAuthResponse = NewDomainError(ErrCodeInvalidAuth, "Invalid response from server")
	ErrCheckoutInProgress  = NewDomainError(ErrCodeCheckoutBusy, "Please wait...")
	ErrCheckoutFailed      = NewDomainError(ErrCodeCheckoutFailed, "Failed to place order. Please try again.")
	ErrAlreadyInShop       = NewDomainError(ErrCodeAlreadyInShop, "Product already exists in the shop!")
)
