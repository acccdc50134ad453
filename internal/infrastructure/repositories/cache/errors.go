package cache

import "errors"

var (
	// ErrKeyNotFound is returned when the key does not exist in the backend
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyExpired is returned by the memory backend for a key past its TTL
	ErrKeyExpired = errors.New("key expired")
)

// IsMiss reports whether err means the key is simply not there
func IsMiss(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrKeyExpired)
}
