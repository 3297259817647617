package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

type HttpError struct {
	statusCode  int
	userMessage string
	details     map[string]interface{}
	headers     map[string]string
	err         error
}

func New(statusCode int, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		userMessage: userMessage,
		err:         internalError,
	}
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) WithDetail(key string, value interface{}) HttpError {
	if e.details == nil {
		e.details = map[string]interface{}{}
	}
	e.details[key] = value
	return e
}

func (e HttpError) WithHeader(key string, value string) HttpError {
	if e.headers == nil {
		e.headers = map[string]string{}
	}
	e.headers[key] = value
	return e
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	for key, value := range e.headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.statusCode)
	data := map[string]interface{}{
		"errorCode":    http.StatusText(e.statusCode),
		"errorMessage": e.userMessage,
		"details":      e.details,
	}
	return json.NewEncoder(w).Encode(data)
}
