package dto

// ErrorResponse is the body of every failed request. Message is what the
// storefront displays; Code and RequestID help support trace the failure.
type ErrorResponse struct {
	Message   string             `json:"message"`
	Code      string             `json:"code"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is one field problem of a rejected request
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MessageResponse is a bare confirmation, e.g. after a delete
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error body
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
}

// NewValidationErrorResponse creates a validation error body. The first
// problem becomes the message so that clients showing only message stay useful.
func NewValidationErrorResponse(requestID string, details []ValidationDetail) ErrorResponse {
	message := "Request validation failed"
	if len(details) > 0 {
		message = details[0].Field + ": " + details[0].Message
	}
	return ErrorResponse{
		Message:   message,
		Code:      ErrCodeValidation,
		RequestID: requestID,
		Details:   details,
	}
}
