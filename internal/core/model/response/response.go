package response

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

// Message returns the first error message, or the code when there is none.
func (r ErrorResponse) Message() string {
	if len(r.Error.Errors) > 0 {
		return r.Error.Errors[0].Message
	}
	return r.Error.Code
}
