package handler

// Response is the wire envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Success: false,
		Message: message,
	}
}

// NewErrorResponseWithDetail attaches the underlying diagnostic string. Only
// used outside production mode.
func NewErrorResponseWithDetail(message, detail string) *Response {
	return &Response{
		Success: false,
		Message: message,
		Error:   detail,
	}
}
