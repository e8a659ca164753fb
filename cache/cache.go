package cache

import (
	"time"

	"github.com/karlseguin/ccache/v3"
	"golang.org/x/sync/singleflight"
)

var DefaultCoverTTL = 1 * time.Hour

// Covers holds downloaded cover images by URL. Tracks of one album share a
// cover, so an album or playlist download fetches each image once.
type Covers struct {
	c     *ccache.Cache[[]byte]
	group singleflight.Group
}

func NewCovers() *Covers {
	c := ccache.New(
		ccache.Configure[[]byte]().
			MaxSize(100).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)
	return &Covers{c: c, group: singleflight.Group{}}
}

// Fetch returns the cached image of url, calling fetch on a miss. Concurrent
// misses of one url share a single fetch. Failed fetches are not cached.
func (c *Covers) Fetch(url string, ttl time.Duration, fetch func() ([]byte, error)) ([]byte, error) {
	if item := c.c.Get(url); nil != item && !item.Expired() {
		return item.Value(), nil
	}
	v, err, _ := c.group.Do(url, func() (any, error) {
		b, err := fetch()
		if nil != err {
			return nil, err
		}
		c.c.Set(url, b, ttl)
		return b, nil
	})
	if nil != err {
		return nil, err
	}
	return v.([]byte), nil //nolint:forcetypeassert
}

func (c *Covers) Stop() {
	c.c.Stop()
}
