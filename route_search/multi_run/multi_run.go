package multi_run

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"

	"qosroute/route_search/common"
	pathcost "qosroute/route_search/path_cost"
)

// Options controls a Best-of-N selection
type Options struct {
	Runs    int // independent engine runs; values below 1 are treated as 1
	Workers int // pool size; 0 or 1 runs sequentially
}

// BestOfN runs a freshly built engine Runs times for one demand and keeps
// the lowest-cost feasible result. Runs are fully independent (each gets its
// own engine instance from the factory) so they can be dispatched across a
// goroutine pool. Costs are compared via the shared cost model, making the
// reduction meaningful across runs and across engines.
func BestOfN(factory common.EngineFactory, g *common.Network, weights common.WeightConfig, src, dst int, demandBW float64, opts Options) common.PathMetrics {
	runs := opts.Runs
	if runs < 1 {
		runs = 1
	}

	results := make([]common.PathMetrics, runs)
	singleRun := func(i int) {
		engine := factory(g, weights)
		engine.Train(src, dst, demandBW)
		path := engine.BestPath(src, dst)
		results[i] = engine.PathMetrics(path, demandBW)
	}

	if opts.Workers > 1 {
		pool, err := ants.NewPool(opts.Workers)
		if err != nil {
			log.Errorf("Failed to create run pool, falling back to sequential: %v", err)
			for i := 0; i < runs; i++ {
				singleRun(i)
			}
		} else {
			defer pool.Release()
			var wg sync.WaitGroup
			for i := 0; i < runs; i++ {
				i := i
				wg.Add(1)
				if err := pool.Submit(func() {
					defer wg.Done()
					singleRun(i)
				}); err != nil {
					wg.Done()
					log.Errorf("Submitting run %d failed: %v", i, err)
					singleRun(i)
				}
			}
			wg.Wait()
		}
	} else {
		for i := 0; i < runs; i++ {
			singleRun(i)
		}
	}

	return Reduce(g, src, dst, demandBW, results)
}

// Reduce keeps the lowest-cost feasible result. When no run produced a
// feasible path the failure is classified from the topology so callers can
// tell a disconnected pair from an unsatisfiable bandwidth demand.
func Reduce(g *common.Network, src, dst int, demandBW float64, results []common.PathMetrics) common.PathMetrics {
	best := common.PathMetrics{Valid: false}
	for _, m := range results {
		if !m.Valid {
			continue
		}
		if !best.Valid || m.TotalCost < best.TotalCost {
			best = m
		}
	}
	if !best.Valid {
		return common.PathMetrics{Valid: false, Err: pathcost.FailureReason(g, src, dst, demandBW)}
	}
	return best
}
