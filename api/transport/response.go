package transport

// Envelope is the standard API response wrapper used for both success and
// error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorBody is the caller-visible error payload.
type ErrorBody struct {
	Message string `json:"message"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, message string, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  &ErrorBody{Message: message},
		Meta:   meta,
	}
}
