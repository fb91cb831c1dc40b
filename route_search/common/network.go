package common

import (
	"fmt"
	"sort"
)

// EdgeParams holds the QoS attributes of one undirected edge
type EdgeParams struct {
	Delay       float64 `json:"delay"`
	Reliability float64 `json:"reliability"`
	Bandwidth   float64 `json:"bandwidth"`
}

// Network is an undirected graph with per-node reliability and per-edge
// delay/reliability/bandwidth. It is built once by the topology loader and
// is read-only during search; engines only ever call the accessors.
type Network struct {
	nodes     map[int]float64           // node id -> reliability
	links     map[int]map[int]EdgeParams // symmetric adjacency
	neighbors map[int][]int              // sorted neighbor lists
	edgeCount int
}

// NewNetwork creates an empty network
func NewNetwork() *Network {
	return &Network{
		nodes:     make(map[int]float64),
		links:     make(map[int]map[int]EdgeParams),
		neighbors: make(map[int][]int),
	}
}

// AddNode registers a node with its reliability. Reliability must be in (0,1].
func (g *Network) AddNode(id int, reliability float64) error {
	if reliability <= 0 || reliability > 1 {
		return fmt.Errorf("node %d: reliability %v out of range (0,1]", id, reliability)
	}
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("node %d already exists", id)
	}
	g.nodes[id] = reliability
	g.links[id] = make(map[int]EdgeParams)
	return nil
}

// AddEdge registers an undirected edge between two existing nodes. The same
// attributes apply in both directions.
func (g *Network) AddEdge(u, v int, params EdgeParams) error {
	if u == v {
		return fmt.Errorf("edge %d-%d: self loops are not allowed", u, v)
	}
	if _, exists := g.nodes[u]; !exists {
		return fmt.Errorf("edge %d-%d references unknown node %d", u, v, u)
	}
	if _, exists := g.nodes[v]; !exists {
		return fmt.Errorf("edge %d-%d references unknown node %d", u, v, v)
	}
	if params.Delay < 0 {
		return fmt.Errorf("edge %d-%d: negative delay %v", u, v, params.Delay)
	}
	if params.Reliability <= 0 || params.Reliability > 1 {
		return fmt.Errorf("edge %d-%d: reliability %v out of range (0,1]", u, v, params.Reliability)
	}
	if params.Bandwidth < 0 {
		return fmt.Errorf("edge %d-%d: negative bandwidth %v", u, v, params.Bandwidth)
	}
	if _, exists := g.links[u][v]; exists {
		return fmt.Errorf("edge %d-%d already exists", u, v)
	}

	g.links[u][v] = params
	g.links[v][u] = params
	g.neighbors[u] = insertSorted(g.neighbors[u], v)
	g.neighbors[v] = insertSorted(g.neighbors[v], u)
	g.edgeCount++
	return nil
}

// HasNode reports whether the node exists
func (g *Network) HasNode(id int) bool {
	_, exists := g.nodes[id]
	return exists
}

// NodeReliability returns the reliability of a node
func (g *Network) NodeReliability(id int) (float64, bool) {
	r, exists := g.nodes[id]
	return r, exists
}

// Edge returns the attributes of the edge between u and v
func (g *Network) Edge(u, v int) (EdgeParams, bool) {
	params, exists := g.links[u][v]
	return params, exists
}

// Neighbors returns the neighbors of a node in ascending order. The returned
// slice is owned by the network and must not be modified.
func (g *Network) Neighbors(id int) []int {
	return g.neighbors[id]
}

// Nodes returns all node ids in ascending order
func (g *Network) Nodes() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// NodeCount returns the number of nodes
func (g *Network) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges
func (g *Network) EdgeCount() int {
	return g.edgeCount
}

func insertSorted(list []int, id int) []int {
	pos := sort.SearchInts(list, id)
	list = append(list, 0)
	copy(list[pos+1:], list[pos:])
	list[pos] = id
	return list
}
