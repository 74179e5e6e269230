package cache

// KeySerializer derives the cache key a model's metadata row is stored under.
// It must be deterministic: the same prefix and identity always produce the
// same key, across processes and restarts.
type KeySerializer interface {
	SerializeKey(prefix, identity string) string
}

// prefixKeySerializer implements the persisted key layout <prefix><identity>.
type prefixKeySerializer struct{}

// NewDefaultKeySerializer returns the serializer producing <prefix><identity> keys.
func NewDefaultKeySerializer() KeySerializer {
	return prefixKeySerializer{}
}

// SerializeKey concatenates prefix and identity without a separator. Stores
// configured with different prefixes that are not prefixes of one another
// never share a key; the default prefixes all end in '-' for that reason.
func (prefixKeySerializer) SerializeKey(prefix, identity string) string {
	return prefix + identity
}
