package pipeline

import "fmt"

// RequestError is a non-2xx answer from the pipeline backend. Body holds the
// response text as returned, so backend validation messages reach the user.
type RequestError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%d %s - %s", e.Status, e.StatusText, e.Body)
}

// NetworkError means no HTTP response was received.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
