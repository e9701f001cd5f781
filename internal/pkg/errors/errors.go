package errors

import "net/http"

// BaseError carries the HTTP status a handler should answer with. Usecases and
// repositories return these; helpers.RespError maps them onto the response.
type BaseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *BaseError) Error() string {
	return e.Message
}

func New(code int, message string) error {
	return &BaseError{Code: code, Message: message}
}

func BadRequest(message string) error {
	return &BaseError{Code: http.StatusBadRequest, Message: message}
}

func UnauthorizedError(message string) error {
	return &BaseError{Code: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) error {
	return &BaseError{Code: http.StatusNotFound, Message: message}
}

func Conflict(message string) error {
	return &BaseError{Code: http.StatusConflict, Message: message}
}

func UnprocessableEntity(message string) error {
	return &BaseError{Code: http.StatusUnprocessableEntity, Message: message}
}

func ServiceUnavailable(message string) error {
	return &BaseError{Code: http.StatusServiceUnavailable, Message: message}
}

func InternalServerError(message string) error {
	return &BaseError{Code: http.StatusInternalServerError, Message: message}
}

// HttpCode returns the status carried by err, or 500 for plain errors.
func HttpCode(err error) int {
	if base, ok := err.(*BaseError); ok {
		return base.Code
	}
	return http.StatusInternalServerError
}
