package errors

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string       `json:"code"`              // Business error code, e.g., "VALIDATION_FAILED"
	Details string       `json:"details,omitempty"` // Detailed error information (4xx only)
	Fields  []FieldError `json:"fields,omitempty"`  // Rejected fields for validation failures
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"` // Request tracking ID
}

// InfoFor builds the client-facing error info for err. Server-side and
// authentication failures carry the code only.
func InfoFor(err AppError) *ErrorInfo {
	info := &ErrorInfo{Code: err.ErrorCode()}

	code := err.HTTPCode()
	if code >= 500 || code == 401 || code == 403 {
		return info
	}

	info.Details = err.Details()
	if v, ok := err.(*ValidationError); ok {
		info.Fields = v.Fields()
	}

	return info
}
