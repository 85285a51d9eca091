package labapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingID is wrapped in a TransportError when an operation is given a
// blank lab id. No request is sent.
var ErrMissingID = errors.New("lab id required")

// TransportError is the only failure kind the client reports. It covers
// unreachable servers, non-2xx responses and undecodable bodies alike.
type TransportError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: api %s %s returned status %d", e.Op, e.Method, e.Path, e.StatusCode)
	}
	if e.Err == nil {
		return e.Op + ": transport failure"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.StatusCode == http.StatusNotFound
	}
	return false
}
