package experiment

import (
	"fmt"
	"sync"

	"qosroute/route_search/common"
)

// resultCache keeps aggregated rows per configuration so a batch never
// re-runs an identical engine/demand/weight combination
type resultCache struct {
	mu   sync.RWMutex
	rows map[string]*Row
}

func newResultCache() *resultCache {
	return &resultCache{rows: make(map[string]*Row)}
}

func cacheKey(engine string, d common.Demand, w common.WeightConfig, runs int) string {
	return fmt.Sprintf("%s|%d|%d|%d|%v|%v|%v|%v|%d",
		engine, d.Src, d.Dst, d.ID, d.BandwidthNeeded,
		w.Delay, w.Reliability, w.Resource, runs)
}

func (c *resultCache) Get(key string) (*Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, exists := c.rows[key]
	return row, exists
}

func (c *resultCache) Set(key string, row *Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[key] = row
}
