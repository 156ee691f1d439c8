package locate

import (
	"os"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/gnolang/lambdaloc/internal/source"
)

type cacheEntry struct {
	unit    *source.Unit
	size    int64
	modTime time.Time
}

// unitCache keeps parsed units keyed by absolute path. An entry is only
// served while the file's size and modification time are unchanged.
type unitCache struct {
	c *ristretto.Cache[string, *cacheEntry]
}

func newUnitCache(maxCost int64) (*unitCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *cacheEntry]{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &unitCache{c: c}, nil
}

func (c *unitCache) get(path string, info os.FileInfo) (*source.Unit, bool) {
	e, ok := c.c.Get(path)
	if !ok {
		return nil, false
	}
	if e.size != info.Size() || !e.modTime.Equal(info.ModTime()) {
		c.c.Del(path)
		return nil, false
	}
	return e.unit, true
}

func (c *unitCache) set(path string, info os.FileInfo, u *source.Unit) {
	c.c.Set(path, &cacheEntry{unit: u, size: info.Size(), modTime: info.ModTime()}, max(info.Size(), 1))
	c.c.Wait()
}

func (c *unitCache) del(path string) {
	c.c.Del(path)
}

func (c *unitCache) close() {
	c.c.Close()
}
