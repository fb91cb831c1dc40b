package hop_count

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosroute/route_search/common"
)

// chainWithShortcut: 0-1-2-3 chain plus a direct 0-3 edge with low bandwidth
func chainWithShortcut(t *testing.T) *common.Network {
	t.Helper()
	g := common.NewNetwork()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.AddNode(i, 1.0))
	}
	wide := common.EdgeParams{Delay: 1, Reliability: 0.9, Bandwidth: 100}
	require.NoError(t, g.AddEdge(0, 1, wide))
	require.NoError(t, g.AddEdge(1, 2, wide))
	require.NoError(t, g.AddEdge(2, 3, wide))
	require.NoError(t, g.AddEdge(0, 3, common.EdgeParams{Delay: 1, Reliability: 0.9, Bandwidth: 10}))
	return g
}

func TestTrainFewestHops(t *testing.T) {
	g := chainWithShortcut(t)
	router := New(g, common.WeightConfig{Delay: 1})

	router.Train(0, 3, 5)

	assert.Equal(t, []int{0, 3}, router.BestPath(0, 3))
	m := router.PathMetrics(router.BestPath(0, 3), 5)
	require.True(t, m.Valid)
	assert.Equal(t, 1, m.HopCount)
}

func TestTrainBandwidthPruning(t *testing.T) {
	g := chainWithShortcut(t)
	router := New(g, common.WeightConfig{Delay: 1})

	// demand 50 disqualifies the shortcut, BFS must take the chain
	router.Train(0, 3, 50)

	assert.Equal(t, []int{0, 1, 2, 3}, router.BestPath(0, 3))
	m := router.PathMetrics(router.BestPath(0, 3), 50)
	require.True(t, m.Valid)
	assert.Equal(t, 3, m.HopCount)
	assert.Equal(t, 100.0, m.BottleneckBW)
}

func TestTrainBandwidthInfeasible(t *testing.T) {
	g := chainWithShortcut(t)
	router := New(g, common.WeightConfig{Delay: 1})

	router.Train(0, 3, 200)

	assert.Nil(t, router.BestPath(0, 3))
	m := router.PathMetrics(nil, 200)
	assert.False(t, m.Valid)
	assert.Equal(t, common.ErrMsgBandwidth, m.Err)
}

func TestTrainDisconnected(t *testing.T) {
	g := chainWithShortcut(t)
	require.NoError(t, g.AddNode(9, 1.0))
	router := New(g, common.WeightConfig{Delay: 1})

	router.Train(0, 9, 0)

	m := router.PathMetrics(nil, 0)
	assert.False(t, m.Valid)
	assert.Equal(t, common.ErrMsgNoPath, m.Err)
}

func TestTrainUnknownNode(t *testing.T) {
	g := chainWithShortcut(t)
	router := New(g, common.WeightConfig{Delay: 1})

	router.Train(0, 42, 0)

	m := router.PathMetrics(nil, 0)
	assert.False(t, m.Valid)
	assert.Equal(t, common.ErrMsgNoPath, m.Err)
}

func TestTrainDegenerateDemand(t *testing.T) {
	g := chainWithShortcut(t)
	router := New(g, common.WeightConfig{Delay: 1})

	router.Train(2, 2, 5)

	assert.Equal(t, []int{2}, router.BestPath(2, 2))
	assert.Zero(t, router.BestCost())
	m := router.PathMetrics([]int{2}, 5)
	require.True(t, m.Valid)
	assert.True(t, math.IsInf(m.BottleneckBW, 1))
}
