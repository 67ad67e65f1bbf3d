package relay

import "errors"

var (
	// ErrKeyNotFound is returned when a presented key has no record in the key store.
	// KeyStore implementations must return it (or wrap it) for missing keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyStore wraps failures of the underlying key store query.
	ErrKeyStore = errors.New("key store query failed")

	// ErrKeyStoreNil is returned when a hub is created without a key store.
	ErrKeyStoreNil = errors.New("key store cannot be nil")
)
