package gateway

import (
	"errors"
	"fmt"
)

// ErrStatus marks a response whose HTTP status was not 2xx.
var ErrStatus = errors.New("unexpected HTTP status")

// FetchError is the only error the gateway returns. Transport failures,
// timeouts, non-2xx statuses and malformed payloads all surface as one.
type FetchError struct {
	Op         string // global, countries, country, history
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
