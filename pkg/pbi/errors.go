package pbi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an API failure by the status code that produced it.
type ErrorKind int

const (
	// ErrorKindGeneric covers unclassified API failures.
	ErrorKindGeneric ErrorKind = iota
	// ErrorKindUnauthorized means the caller lacks access to the target resource (401).
	ErrorKindUnauthorized
	// ErrorKindTokenExpired means the bearer token was rejected (403).
	ErrorKindTokenExpired
	// ErrorKindEntityNotFound means the target object is absent or not visible to the caller (404).
	ErrorKindEntityNotFound
	// ErrorKindTooManyRequests means the caller has been rate limited (429).
	ErrorKindTooManyRequests
	// ErrorKindInternalServer means the platform reported a server-side failure (500).
	ErrorKindInternalServer
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindTokenExpired:
		return "token expired"
	case ErrorKindEntityNotFound:
		return "entity not found"
	case ErrorKindTooManyRequests:
		return "too many requests"
	case ErrorKindInternalServer:
		return "internal server error"
	default:
		return "API error"
	}
}

// APIError represents a classified failure from the Power BI API.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	URL        string
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %d: %s", e.Message, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

// Unwrap returns the underlying transport cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// JSONDecodeError reports a response body that violates the expected shape,
// such as a collection endpoint returning something other than an object
// envelope. It unwraps to *APIError.
type JSONDecodeError struct {
	APIError
}

// Unwrap exposes the embedded APIError so errors.As can match both types.
func (e *JSONDecodeError) Unwrap() error {
	return &e.APIError
}

// NewJSONDecodeError builds a JSONDecodeError for the given endpoint.
func NewJSONDecodeError(url, message string, cause error) *JSONDecodeError {
	return &JSONDecodeError{APIError{
		Kind:    ErrorKindGeneric,
		Message: message,
		URL:     url,
		Err:     cause,
	}}
}

// ErrMaxRetriesExceeded is returned when every attempt of a request timed out.
var ErrMaxRetriesExceeded = errors.New("request failed after maximum retries")

// ErrConfigRequired is returned by constructors that need a non-nil Config.
var ErrConfigRequired = errors.New("config is required")

// ClassifyStatus maps an HTTP status code to its error kind and message.
// Status codes outside the fixed table classify as generic.
func ClassifyStatus(status int) (ErrorKind, string) {
	switch status {
	case http.StatusUnauthorized:
		return ErrorKindUnauthorized, "unauthorized"
	case http.StatusForbidden:
		return ErrorKindTokenExpired, "token expired"
	case http.StatusNotFound:
		return ErrorKindEntityNotFound, "cannot find entity or remove the user"
	case http.StatusTooManyRequests:
		return ErrorKindTooManyRequests, "too many requests"
	case http.StatusInternalServerError:
		return ErrorKindInternalServer, "internal server error"
	default:
		return ErrorKindGeneric, "API error"
	}
}

// NewStatusError builds the classified error for a non-2xx response.
func NewStatusError(status int, url, body string) *APIError {
	kind, message := ClassifyStatus(status)

	return &APIError{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		URL:        url,
		Body:       body,
	}
}

func hasKind(err error, kind ErrorKind) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}

	return false
}

// IsUnauthorized checks if the error is a 401 classification.
func IsUnauthorized(err error) bool {
	return hasKind(err, ErrorKindUnauthorized)
}

// IsTokenExpired checks if the error is a 403 classification.
func IsTokenExpired(err error) bool {
	return hasKind(err, ErrorKindTokenExpired)
}

// IsEntityNotFound checks if the error is a 404 classification.
func IsEntityNotFound(err error) bool {
	return hasKind(err, ErrorKindEntityNotFound)
}

// IsTooManyRequests checks if the error is a 429 classification.
func IsTooManyRequests(err error) bool {
	return hasKind(err, ErrorKindTooManyRequests)
}

// IsInternalServerError checks if the error is a 500 classification.
func IsInternalServerError(err error) bool {
	return hasKind(err, ErrorKindInternalServer)
}

// IsDecodeError checks if the error reports a malformed response body.
func IsDecodeError(err error) bool {
	decodeErr := &JSONDecodeError{}

	return errors.As(err, &decodeErr)
}
