package hop_count

import (
	"math"

	"qosroute/route_search/common"
	pathcost "qosroute/route_search/path_cost"
)

// Router is the trivial fewest-hop fallback engine: a breadth-first search
// that prunes edges below the bandwidth demand. It is deterministic and
// ignores delay and reliability, serving as the comparison baseline for the
// stochastic engines.
type Router struct {
	graph   *common.Network
	weights common.WeightConfig

	bestPath []int
	bestCost float64
	failure  string
}

// New creates a hop-count router
func New(g *common.Network, weights common.WeightConfig) *Router {
	return &Router{graph: g, weights: weights, bestCost: math.Inf(1)}
}

// Train finds the fewest-hop feasible path via BFS
func (r *Router) Train(src, dst int, demandBW float64) {
	r.bestPath = nil
	r.bestCost = math.Inf(1)
	r.failure = ""

	if !r.graph.HasNode(src) || !r.graph.HasNode(dst) {
		r.failure = common.ErrMsgNoPath
		return
	}
	if src == dst {
		r.bestPath = []int{src}
		r.bestCost = 0
		return
	}

	predecessor := map[int]int{src: src}
	queue := []int{src}
	reached := false
	for len(queue) > 0 && !reached {
		current := queue[0]
		queue = queue[1:]
		for _, n := range r.graph.Neighbors(current) {
			if _, seen := predecessor[n]; seen {
				continue
			}
			edge, _ := r.graph.Edge(current, n)
			if edge.Bandwidth < demandBW {
				continue
			}
			predecessor[n] = current
			if n == dst {
				reached = true
				break
			}
			queue = append(queue, n)
		}
	}

	if !reached {
		r.failure = pathcost.FailureReason(r.graph, src, dst, demandBW)
		return
	}

	var reversed []int
	for n := dst; n != src; n = predecessor[n] {
		reversed = append(reversed, n)
	}
	reversed = append(reversed, src)

	path := make([]int, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}

	if cost, ok := pathcost.Cost(r.graph, path, r.weights); ok {
		r.bestPath = path
		r.bestCost = cost
	}
}

// BestPath returns the fewest-hop feasible path found during Train, or nil
func (r *Router) BestPath(src, dst int) []int {
	if r.bestPath == nil {
		return nil
	}
	return append([]int(nil), r.bestPath...)
}

// PathMetrics recomputes all QoS metrics for a path through the shared cost
// model, re-checking structure and the bandwidth constraint. An empty path
// after an unsuccessful Train carries the classified failure reason.
func (r *Router) PathMetrics(path []int, demandBW float64) common.PathMetrics {
	if len(path) == 0 && r.failure != "" {
		return common.PathMetrics{Valid: false, Err: r.failure}
	}
	return pathcost.Metrics(r.graph, path, r.weights, demandBW)
}

// BestCost returns the scalar cost of the retained best path, +Inf when none
func (r *Router) BestCost() float64 {
	return r.bestCost
}
