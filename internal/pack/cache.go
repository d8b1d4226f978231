package pack

import "sync"

// Cache memoizes the three expensive conversions (key to map, map to key,
// map to decoded packet) so repeated crypto and signature work within one
// request is paid once.
//
// A Cache must be scoped to a request (or another bounded lifecycle) and
// dropped with it; entries are never evicted, so a process-global instance
// would grow without bound across requests. All methods are safe for
// concurrent use.
type Cache struct {
	mu          sync.Mutex
	keyByMap    map[string]string
	mapByKey    map[string]string
	packetByMap map[string]Packet
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		keyByMap:    make(map[string]string),
		mapByKey:    make(map[string]string),
		packetByMap: make(map[string]Packet),
	}
}

// cacheKey namespaces entries by entity tag; the same string can never be
// a valid map of two entity types, but a poisoned lookup must not cross
// codec boundaries either.
func cacheKey(tag, s string) string {
	return tag + "\x00" + s
}

func (c *Cache) lookupKey(tag, m string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.keyByMap[cacheKey(tag, m)]
	return v, ok
}

func (c *Cache) storeKey(tag, m, key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyByMap[cacheKey(tag, m)] = key
}

func (c *Cache) lookupMap(tag, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.mapByKey[cacheKey(tag, key)]
	return v, ok
}

func (c *Cache) storeMap(tag, key, m string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapByKey[cacheKey(tag, key)] = m
}

func (c *Cache) lookupPacket(tag, m string) (Packet, bool) {
	if c == nil {
		return Packet{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.packetByMap[cacheKey(tag, m)]
	return v, ok
}

func (c *Cache) storePacket(tag, m string, p Packet) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packetByMap[cacheKey(tag, m)] = p
}
