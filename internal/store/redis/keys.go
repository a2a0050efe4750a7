package redis

// KeyPrefixCache is the prefix for every cached listing
const KeyPrefixCache = "sitelist:cache:"

// CacheKey returns the Redis key for a cached listing
func CacheKey(listing string) string {
	return KeyPrefixCache + listing
}
