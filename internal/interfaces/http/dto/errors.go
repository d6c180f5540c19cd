package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain codes (NOT_FOUND,
// INVALID_PRICE, ...) come from shared.DomainError and pass through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidQuery    = "INVALID_QUERY"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeNoToken         = "NO_TOKEN"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// Domain error codes with a fixed status
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeAlreadyPaid         = "ALREADY_PAID"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	ErrCodeNoItems             = "NO_ITEMS"
	ErrCodeTooManyImages       = "TOO_MANY_IMAGES"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeMediaUploadFailed   = "MEDIA_UPLOAD_FAILED"
	ErrCodeMediaEvictionFailed = "MEDIA_EVICTION_FAILED"
	ErrCodeTokenError          = "TOKEN_ERROR"
	ErrCodePasswordHashError   = "PASSWORD_HASH_ERROR"
)

// MsgInternal is the only message clients see for unexpected failures
const MsgInternal = "Something went wrong!"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeRouteNotFound: http.StatusNotFound,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeInvalidQuery:       http.StatusBadRequest,
	ErrCodeInvalidID:          http.StatusBadRequest,
	ErrCodeAlreadyExists:      http.StatusBadRequest,
	ErrCodeAlreadyPaid:        http.StatusBadRequest,
	ErrCodeInvalidState:       http.StatusBadRequest,
	ErrCodeInsufficientStock:  http.StatusBadRequest,
	ErrCodeProductUnavailable: http.StatusBadRequest,
	ErrCodeNoItems:            http.StatusBadRequest,
	ErrCodeTooManyImages:      http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeNoToken:            http.StatusUnauthorized,
	// the storefront client treats every gate failure as a logout
	ErrCodeForbidden: http.StatusUnauthorized,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeMediaUploadFailed:   http.StatusInternalServerError,
	ErrCodeMediaEvictionFailed: http.StatusInternalServerError,
	ErrCodeTokenError:          http.StatusInternalServerError,
	ErrCodePasswordHashError:   http.StatusInternalServerError,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Any INVALID_* code is a client error; unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
