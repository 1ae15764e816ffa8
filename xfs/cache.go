package xfs

var _ Cache = &visitedCache{}

// Cache is a small key/value memo, kept from the original reader's inode
// cache interface and repurposed here to track which inode btree blocks
// the walker has already visited. A distinct AG+block btree block is only
// ever decoded once per walk, which is what makes WalkAGs terminate even
// on a (corrupt) cyclic tree.
type Cache interface {
	// Add cache data
	Add(key, value interface{}) bool

	// Get returns key's value from the cache
	Get(key interface{}) (value interface{}, ok bool)
}

// visitedCache is the Cache used by WalkAGs to dedupe btree blocks.
type visitedCache struct {
	seen map[interface{}]struct{}
}

func newVisitedCache() *visitedCache {
	return &visitedCache{seen: make(map[interface{}]struct{})}
}

func (c *visitedCache) Add(key, _ interface{}) bool {
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	return true
}

func (c *visitedCache) Get(key interface{}) (interface{}, bool) {
	_, ok := c.seen[key]
	return nil, ok
}
