package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys under which the storefront persists its client state.
const (
	KeyCart            = "cart"
	KeyEditedProducts  = "editedProducts"
	KeyReserveProducts = "reserveProducts"
	KeyAuthUser        = "authUser"
	KeyAuthToken       = "authToken"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrMalformed wraps values that exist but cannot be decoded.
	ErrMalformed = errors.New("storage: malformed value")
)

// Store defines durable key/value access for client state.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into v. It reports false with a nil
// error when the key is absent, and wraps decode failures in ErrMalformed.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
