package errors

// Envelope types written by the delivery/api/response helpers. Every API answer
// is either {"data", "meta"} or {"error", "meta"}.

// ErrorInfo is the error half of the envelope. Code is one of the stable codes
// clients branch on, such as VALIDATION_ERROR or ACCESS_DENIED.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"` // field errors for VALIDATION_ERROR
}

// MetaInfo carries the request ID assigned by the request ID middleware.
type MetaInfo struct {
	RequestID string `json:"request_id"`
}

type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}
