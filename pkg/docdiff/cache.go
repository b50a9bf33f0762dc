// ABOUTME: LRU cache of comparison results keyed by input content
// ABOUTME: A zero size turns the cache into a no-op

package docdiff

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nainya/docdiff/internal/metrics"
	"github.com/nainya/docdiff/pkg/model"
)

type resultCache struct {
	lru     *lru.Cache[string, *model.DocumentDiff]
	metrics *metrics.Metrics
}

func newResultCache(size int, m *metrics.Metrics) (*resultCache, error) {
	c := &resultCache{metrics: m}
	if size <= 0 {
		return c, nil
	}
	l, err := lru.New[string, *model.DocumentDiff](size)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

func (c *resultCache) get(key string) (*model.DocumentDiff, bool) {
	if c.lru == nil {
		return nil, false
	}
	diff, ok := c.lru.Get(key)
	if c.metrics != nil {
		if ok {
			c.metrics.RecordCacheHit()
		} else {
			c.metrics.RecordCacheMiss()
		}
	}
	return diff, ok
}

func (c *resultCache) add(key string, diff *model.DocumentDiff) {
	if c.lru != nil {
		c.lru.Add(key, diff)
	}
}

func (c *resultCache) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey hashes both inputs; the left length is mixed in so that moving
// bytes from one side to the other changes the key.
func cacheKey(left, right []byte) string {
	h := sha256.New()
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(left)))
	h.Write(size[:])
	h.Write(left)
	h.Write(right)
	return hex.EncodeToString(h.Sum(nil))
}
