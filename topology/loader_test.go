package topology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosroute/route_search/common"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	nodeFile := writeFile(t, dir, "nodes.csv", `id,reliability
0,1.0
1,0.95
2,0.9
`)
	edgeFile := writeFile(t, dir, "edges.csv", `src,dst,delay,reliability,bandwidth
0,1,2.5,0.99,100
1,2,1.0,0.98,50
`)
	demandFile := writeFile(t, dir, "demands.csv", `id,src,dst,bandwidth_needed
1,0,2,40
2,2,0,10
`)

	g, demands, err := Load(nodeFile, edgeFile, demandFile)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	edge, ok := g.Edge(0, 1)
	require.True(t, ok)
	assert.Equal(t, common.EdgeParams{Delay: 2.5, Reliability: 0.99, Bandwidth: 100}, edge)

	require.Len(t, demands, 2)
	assert.Equal(t, common.Demand{ID: 1, Src: 0, Dst: 2, BandwidthNeeded: 40}, demands[0])
}

func TestLoadWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	nodeFile := writeFile(t, dir, "nodes.csv", "0,1.0\n1,1.0\n")
	edgeFile := writeFile(t, dir, "edges.csv", "0,1,1,0.9,10\n")
	demandFile := writeFile(t, dir, "demands.csv", "1,0,1,5\n")

	g, demands, err := Load(nodeFile, edgeFile, demandFile)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Len(t, demands, 1)
}

func TestLoadValidationFailures(t *testing.T) {
	goodNodes := "0,1.0\n1,1.0\n"
	goodEdges := "0,1,1,0.9,10\n"
	goodDemands := "1,0,1,5\n"

	tests := []struct {
		name    string
		nodes   string
		edges   string
		demands string
	}{
		{"bad node reliability", "0,1.5\n", goodEdges, goodDemands},
		{"duplicate node", "0,1.0\n0,1.0\n", goodEdges, goodDemands},
		{"edge unknown node", goodNodes, "0,7,1,0.9,10\n", goodDemands},
		{"edge negative delay", goodNodes, "0,1,-1,0.9,10\n", goodDemands},
		{"edge bad field", goodNodes, "0,1,abc,0.9,10\n", goodDemands},
		{"edge missing field", goodNodes, "0,1,1\n", goodDemands},
		{"demand unknown node", goodNodes, goodEdges, "1,0,9,5\n"},
		{"demand negative bandwidth", goodNodes, goodEdges, "1,0,1,-5\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := t.TempDir()
			nodeFile := writeFile(t, sub, "nodes.csv", tc.nodes)
			edgeFile := writeFile(t, sub, "edges.csv", tc.edges)
			demandFile := writeFile(t, sub, "demands.csv", tc.demands)

			_, _, err := Load(nodeFile, edgeFile, demandFile)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	nodeFile := writeFile(t, dir, "nodes.csv", "0,1.0\n")

	_, err := LoadNetwork(nodeFile, filepath.Join(dir, "does-not-exist.csv"))
	assert.Error(t, err)
}
