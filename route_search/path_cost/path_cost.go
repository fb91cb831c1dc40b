package pathcost

import (
	"math"

	"qosroute/route_search/common"
)

const (
	// MinCost floors a path cost before it is used as a divisor in reward
	// or pheromone deposit calculations.
	MinCost = 1e-6

	// bwEpsilon keeps the per-edge resource term finite on zero-bandwidth
	// edges.
	bwEpsilon = 1e-9
)

// Attributes computes the raw QoS attributes of a path from the network:
//   - TotalDelay: sum of edge delays
//   - ReliabilityCost: negative log of the multiplicative path reliability
//     (edge reliabilities times node reliabilities), summed per element so
//     long paths do not underflow
//   - ResourceCost: sum of inverse edge bandwidths, rewarding spare capacity
//
// A single-node path has zero attributes. The boolean result is false when
// the path is structurally invalid (empty, unknown node, repeated node or a
// non-adjacent consecutive pair).
func Attributes(g *common.Network, path []int) (common.PathAttributes, bool) {
	var attrs common.PathAttributes
	if len(path) == 0 {
		return attrs, false
	}

	seen := make(map[int]bool, len(path))
	for _, n := range path {
		if !g.HasNode(n) || seen[n] {
			return common.PathAttributes{}, false
		}
		seen[n] = true
	}
	if len(path) == 1 {
		return attrs, true
	}

	for _, n := range path {
		r, _ := g.NodeReliability(n)
		attrs.ReliabilityCost += -math.Log(r)
	}
	for i := 0; i < len(path)-1; i++ {
		edge, exists := g.Edge(path[i], path[i+1])
		if !exists {
			return common.PathAttributes{}, false
		}
		attrs.TotalDelay += edge.Delay
		attrs.ReliabilityCost += -math.Log(edge.Reliability)
		attrs.ResourceCost += 1.0 / (edge.Bandwidth + bwEpsilon)
	}
	return attrs, true
}

// WeightedCost reduces path attributes to one scalar via the configured
// weights. Every engine ranks candidate paths with this exact function so
// costs stay comparable across strategies.
func WeightedCost(attrs common.PathAttributes, weights common.WeightConfig) float64 {
	return weights.Delay*attrs.TotalDelay +
		weights.Reliability*attrs.ReliabilityCost +
		weights.Resource*attrs.ResourceCost
}

// Cost is the composition of Attributes and WeightedCost
func Cost(g *common.Network, path []int, weights common.WeightConfig) (float64, bool) {
	attrs, ok := Attributes(g, path)
	if !ok {
		return 0, false
	}
	return WeightedCost(attrs, weights), true
}

// Bottleneck returns the minimum edge bandwidth along a path. A single-node
// path has infinite bottleneck bandwidth. The boolean result is false when a
// consecutive pair is not an edge of the network.
func Bottleneck(g *common.Network, path []int) (float64, bool) {
	minBW := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		edge, exists := g.Edge(path[i], path[i+1])
		if !exists {
			return 0, false
		}
		if edge.Bandwidth < minBW {
			minBW = edge.Bandwidth
		}
	}
	return minBW, true
}

// Feasible reports whether the path satisfies the bandwidth demand
func Feasible(g *common.Network, path []int, demandBW float64) bool {
	minBW, ok := Bottleneck(g, path)
	return ok && minBW >= demandBW
}

// Reliability returns the multiplicative reliability of a path: the product
// of edge reliabilities and node reliabilities. A single-node path has
// reliability 1.
func Reliability(g *common.Network, path []int) float64 {
	if len(path) < 2 {
		return 1.0
	}
	total := 1.0
	for i := 0; i < len(path)-1; i++ {
		edge, _ := g.Edge(path[i], path[i+1])
		total *= edge.Reliability
	}
	for _, n := range path {
		r, _ := g.NodeReliability(n)
		total *= r
	}
	return total
}

// Metrics builds the full PathMetrics record for a path. Nothing about the
// path is trusted: structure is re-validated and every cost is recomputed,
// so the record is identical no matter which engine produced the path.
func Metrics(g *common.Network, path []int, weights common.WeightConfig, demandBW float64) common.PathMetrics {
	if len(path) == 0 {
		return common.PathMetrics{Valid: false, Err: common.ErrMsgNoPath}
	}

	attrs, ok := Attributes(g, path)
	if !ok {
		return common.PathMetrics{Valid: false, Err: common.ErrMsgNoPath}
	}

	minBW, _ := Bottleneck(g, path)
	if minBW < demandBW {
		return common.PathMetrics{Valid: false, Err: common.ErrMsgBandwidth}
	}

	return common.PathMetrics{
		Valid:            true,
		Path:             append([]int(nil), path...),
		TotalDelay:       attrs.TotalDelay,
		TotalReliability: Reliability(g, path),
		ReliabilityCost:  attrs.ReliabilityCost,
		ResourceCost:     attrs.ResourceCost,
		TotalCost:        WeightedCost(attrs, weights),
		BottleneckBW:     minBW,
		HopCount:         len(path) - 1,
		NodeCount:        len(path),
	}
}
