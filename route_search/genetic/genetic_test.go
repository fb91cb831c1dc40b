package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosroute/route_search/common"
)

func ringNetwork(t *testing.T) *common.Network {
	t.Helper()
	g := common.NewNetwork()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.AddNode(i, 1.0))
	}
	params := common.EdgeParams{Delay: 1, Reliability: 0.9, Bandwidth: 10}
	require.NoError(t, g.AddEdge(0, 1, params))
	require.NoError(t, g.AddEdge(1, 2, params))
	require.NoError(t, g.AddEdge(2, 3, params))
	require.NoError(t, g.AddEdge(3, 0, params))
	return g
}

func testConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func TestTrainFindsTwoHopPathOnRing(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(42))

	router.Train(0, 2, 5)

	path := router.BestPath(0, 2)
	require.Len(t, path, 3)
	assert.Equal(t, 0, path[0])
	assert.Equal(t, 2, path[2])

	m := router.PathMetrics(path, 5)
	require.True(t, m.Valid)
	assert.InDelta(t, 2.0, m.TotalDelay, 1e-12)
	assert.InDelta(t, 2.0, m.TotalCost, 1e-12)
	assert.Equal(t, 10.0, m.BottleneckBW)
	assert.Equal(t, 2, m.HopCount)
}

func TestTrainBandwidthInfeasible(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(7))

	router.Train(0, 2, 20)

	assert.Nil(t, router.BestPath(0, 2))
	m := router.PathMetrics(nil, 20)
	assert.False(t, m.Valid)
	assert.Equal(t, common.ErrMsgBandwidth, m.Err)
}

func TestTrainDisconnected(t *testing.T) {
	g := ringNetwork(t)
	require.NoError(t, g.AddNode(9, 1.0))

	router := New(g, common.WeightConfig{Delay: 1}, testConfig(7))
	router.Train(0, 9, 0)

	m := router.PathMetrics(nil, 0)
	assert.False(t, m.Valid)
	assert.Equal(t, common.ErrMsgNoPath, m.Err)
}

func TestTrainDegenerateDemand(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(1))

	router.Train(1, 1, 5)

	assert.Equal(t, []int{1}, router.BestPath(1, 1))
	m := router.PathMetrics([]int{1}, 5)
	require.True(t, m.Valid)
	assert.Zero(t, m.TotalCost)
	assert.True(t, math.IsInf(m.BottleneckBW, 1))
}

func TestCrossoverSplicesAtCommonNode(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(1))

	// single interior common node 1, so the splice point is deterministic
	child := router.crossover([]int{0, 1, 2}, []int{4, 1, 3})
	assert.Equal(t, []int{0, 1, 3}, child)
}

func TestCrossoverRejectsOverlap(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(1))

	// splicing at node 1 would revisit node 0
	assert.Nil(t, router.crossover([]int{0, 1, 2}, []int{2, 1, 0}))
}

func TestCrossoverNoCommonInteriorNode(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(1))

	// endpoints do not count as splice points
	assert.Nil(t, router.crossover([]int{0, 1, 2}, []int{0, 3, 2}))
}

func TestMutateKeepsPathValid(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1}, testConfig(5))

	for i := 0; i < 20; i++ {
		mutated := router.mutate([]int{0, 1, 2}, 2, 5)
		if mutated == nil {
			continue // rewalk dead-ended, individual kept as-is
		}
		assert.Equal(t, 0, mutated[0])
		assert.Equal(t, 2, mutated[len(mutated)-1])

		seen := make(map[int]bool)
		for _, n := range mutated {
			assert.False(t, seen[n], "mutation must keep the path simple")
			seen[n] = true
		}
		for j := 0; j < len(mutated)-1; j++ {
			_, ok := g.Edge(mutated[j], mutated[j+1])
			assert.True(t, ok)
		}
	}
}

func TestCostHistoryMonotone(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1, Reliability: 0.5}, testConfig(42))

	router.Train(0, 2, 5)

	history := router.CostHistory()
	require.Len(t, history, router.cfg.Generations)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1])
	}
	assert.Equal(t, router.BestCost(), history[len(history)-1])
}

func TestSeedPopulationRespectsBandwidth(t *testing.T) {
	g := common.NewNetwork()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.AddNode(i, 1.0))
	}
	require.NoError(t, g.AddEdge(0, 1, common.EdgeParams{Delay: 1, Reliability: 1, Bandwidth: 5}))
	require.NoError(t, g.AddEdge(1, 2, common.EdgeParams{Delay: 1, Reliability: 1, Bandwidth: 5}))
	require.NoError(t, g.AddEdge(0, 3, common.EdgeParams{Delay: 5, Reliability: 1, Bandwidth: 50}))
	require.NoError(t, g.AddEdge(3, 2, common.EdgeParams{Delay: 5, Reliability: 1, Bandwidth: 50}))

	router := New(g, common.WeightConfig{Delay: 1}, testConfig(42))
	population := router.seedPopulation(0, 2, 10)

	require.NotEmpty(t, population)
	for _, individual := range population {
		assert.Equal(t, []int{0, 3, 2}, individual, "the low-bandwidth route must never be seeded")
	}
}
