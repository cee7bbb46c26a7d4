package storage

// KV is one origin's durable key-value namespace. Values are plain strings.
type KV interface {
	// Get reports found=false, with a nil error, when key is absent.
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	// Remove is a no-op for a missing key.
	Remove(key string) error
}

// Backend hands out the namespace belonging to an origin.
type Backend interface {
	ForOrigin(origin string) KV
}
