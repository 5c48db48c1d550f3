package handler

// Response is the envelope every JSON endpoint answers with. The tracking
// pixel route is the one exception: it returns raw image bytes and its
// response may never vary, so it bypasses the envelope entirely.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}
