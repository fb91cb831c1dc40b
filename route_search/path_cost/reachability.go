package pathcost

import (
	"qosroute/route_search/common"
)

// Reachable reports whether dst can be reached from src using only edges
// with bandwidth >= minBW. Pass 0 to ignore the bandwidth constraint.
func Reachable(g *common.Network, src, dst int, minBW float64) bool {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return false
	}
	if src == dst {
		return true
	}

	visited := map[int]bool{src: true}
	queue := []int{src}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(current) {
			if visited[n] {
				continue
			}
			edge, _ := g.Edge(current, n)
			if edge.Bandwidth < minBW {
				continue
			}
			if n == dst {
				return true
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return false
}

// FailureReason classifies an unsuccessful search for reporting: when dst is
// reachable but only over edges below the demand, the bandwidth constraint is
// what blocked the search; otherwise no path exists (or every attempt
// dead-ended within the step cap).
func FailureReason(g *common.Network, src, dst int, demandBW float64) string {
	if Reachable(g, src, dst, 0) && !Reachable(g, src, dst, demandBW) {
		return common.ErrMsgBandwidth
	}
	return common.ErrMsgNoPath
}
