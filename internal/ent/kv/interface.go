package kv

// KeyVal is a key-value store used as a lookup table during linkage.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close flushes pending writes and closes a key-value store.
	Close() error

	// Set stores a key-value pair. The first write wins: when the key
	// is already present the stored value is kept and Set reports
	// true, so callers can surface duplicate-key problems.
	Set(key, val []byte) (bool, error)

	// GetValue returns a value for a given key, or nil when the key
	// does not exist.
	GetValue(key []byte) ([]byte, error)
}
