package ant_colony

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

	router.Train(3, 3, 5)

	assert.Equal(t, []int{3}, router.BestPath(3, 3))
	m := router.PathMetrics([]int{3}, 5)
	require.True(t, m.Valid)
	assert.Zero(t, m.TotalCost)
	assert.True(t, math.IsInf(m.BottleneckBW, 1))
}

func TestPheromoneUpdate(t *testing.T) {
	g := common.NewNetwork()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.AddNode(i, 1.0))
	}
	params := common.EdgeParams{Delay: 1, Reliability: 1.0, Bandwidth: 10}
	require.NoError(t, g.AddEdge(0, 1, params))
	require.NoError(t, g.AddEdge(1, 2, params))

	router := New(g, common.WeightConfig{Delay: 1}, testConfig(1))
	router.initPheromones()

	assert.Equal(t, 1.0, router.Pheromone(0, 1))
	assert.Equal(t, 1.0, router.Pheromone(1, 0))

	router.evaporate()
	assert.Equal(t, 0.5, router.Pheromone(0, 1))
	assert.Equal(t, 0.5, router.Pheromone(1, 2))

	router.deposit([]int{0, 1}, 2.0)
	want := 0.5 + 100.0/(2.0+depositEpsilon)
	assert.InDelta(t, want, router.Pheromone(0, 1), 1e-9)
	assert.InDelta(t, want, router.Pheromone(1, 0), 1e-9, "undirected edges reinforce both directions")
	assert.Equal(t, 0.5, router.Pheromone(1, 2), "unused edge only evaporates")
}

func TestEvaporationFloor(t *testing.T) {
	g := common.NewNetwork()
	require.NoError(t, g.AddNode(0, 1.0))
	require.NoError(t, g.AddNode(1, 1.0))
	require.NoError(t, g.AddEdge(0, 1, common.EdgeParams{Delay: 1, Reliability: 1, Bandwidth: 1}))

	router := New(g, common.WeightConfig{Delay: 1}, testConfig(1))
	router.initPheromones()

	for i := 0; i < 20; i++ {
		router.evaporate()
	}
	assert.Equal(t, router.cfg.PheromoneFloor, router.Pheromone(0, 1))
}

func TestCostHistoryMonotone(t *testing.T) {
	g := ringNetwork(t)
	router := New(g, common.WeightConfig{Delay: 1, Reliability: 0.5}, testConfig(42))

	router.Train(0, 2, 5)

	history := router.CostHistory()
	require.Len(t, history, router.cfg.Iterations)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1])
	}
	assert.Equal(t, router.BestCost(), history[len(history)-1])
}

func TestConstructPathRespectsBandwidth(t *testing.T) {
	// two routes 0->2: via 1 (bw 5) and via 3 (bw 50); demand 10 forces the
	// detour
	g := common.NewNetwork()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.AddNode(i, 1.0))
	}
	require.NoError(t, g.AddEdge(0, 1, common.EdgeParams{Delay: 1, Reliability: 1, Bandwidth: 5}))
	require.NoError(t, g.AddEdge(1, 2, common.EdgeParams{Delay: 1, Reliability: 1, Bandwidth: 5}))
	require.NoError(t, g.AddEdge(0, 3, common.EdgeParams{Delay: 5, Reliability: 1, Bandwidth: 50}))
	require.NoError(t, g.AddEdge(3, 2, common.EdgeParams{Delay: 5, Reliability: 1, Bandwidth: 50}))

	router := New(g, common.WeightConfig{Delay: 1}, testConfig(42))
	router.Train(0, 2, 10)

	assert.Equal(t, []int{0, 3, 2}, router.BestPath(0, 2))
	m := router.PathMetrics(router.BestPath(0, 2), 10)
	require.True(t, m.Valid)
	assert.Equal(t, 50.0, m.BottleneckBW)
}
