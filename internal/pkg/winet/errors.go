package winet

import "errors"

var (
	// ErrConnection wraps the last transport failure once retries are
	// exhausted. Fatal for the current call only.
	ErrConnection = errors.New("winet: connection failed")
	// ErrStatus is returned on a reply with a non-200 status. Never retried.
	ErrStatus = errors.New("winet: unexpected http status")
	// ErrDecode is returned when a reply body cannot be decoded into the
	// expected shape. Never retried.
	ErrDecode = errors.New("winet: malformed response")
)

// transientError marks connection-level failures the executor may retry.
type transientError struct {
	err error
}

func (t *transientError) Error() string {
	return t.err.Error()
}

func (t *transientError) Unwrap() error {
	return t.err
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
