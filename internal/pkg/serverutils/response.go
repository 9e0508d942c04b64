package serverutils

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

func ErrorResponse(detail string) ErrorBody {
	return ErrorBody{Detail: detail}
}
