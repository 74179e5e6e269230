package cache

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnsupportedAdapter matches UnsupportedAdapterError values.
	ErrUnsupportedAdapter = errors.New("unsupported cache adapter")

	// ErrConnection matches ConnectionError values.
	ErrConnection = errors.New("cache adapter connection failed")

	// ErrTimeout matches TimeoutError values.
	ErrTimeout = errors.New("cache adapter timed out")

	// ErrSerialization matches SerializationError values.
	ErrSerialization = errors.New("cache entry serialization failed")
)

// UnsupportedAdapterError is returned by the factory for unknown backend names.
type UnsupportedAdapterError struct {
	Name  string
	Known []string
}

func (e *UnsupportedAdapterError) Error() string {
	return fmt.Sprintf("unsupported cache adapter %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnsupportedAdapterError) Is(target error) bool {
	return target == ErrUnsupportedAdapter
}

// ConnectionError reports a backend that could not be reached, either while
// the adapter was being constructed or during a call.
type ConnectionError struct {
	Adapter string
	Op      string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cache adapter %s: %s: connection failed: %v", e.Adapter, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// TimeoutError reports a backend call that did not complete within the
// configured timeout.
type TimeoutError struct {
	Adapter string
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("cache adapter %s: %s: timed out after %s: %v", e.Adapter, e.Op, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// SerializationError reports a row that could not be encoded or decoded.
type SerializationError struct {
	Key string
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cache entry %q: %s: %v", e.Key, e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// IsTimeout reports whether err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsConnection reports whether err is or wraps a ConnectionError.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsSerialization reports whether err is or wraps a SerializationError.
func IsSerialization(err error) bool {
	return errors.Is(err, ErrSerialization)
}

func isTaxonomyError(err error) bool {
	return errors.Is(err, ErrUnsupportedAdapter) ||
		errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrSerialization)
}
