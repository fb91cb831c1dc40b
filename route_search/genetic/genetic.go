package genetic

import (
	"math"
	"math/rand"
	"time"

	"qosroute/route_search/common"
	pathcost "qosroute/route_search/path_cost"
)

// seedAttemptFactor bounds how many random walks are tried while filling the
// initial population
const seedAttemptFactor = 10

// Config holds the genetic search hyperparameters
type Config struct {
	PopulationSize int     `toml:"population_size"`
	Generations    int     `toml:"generations"`
	CrossoverRate  float64 `toml:"crossover_rate"`
	MutationRate   float64 `toml:"mutation_rate"`
	TournamentSize int     `toml:"tournament_size"`
	Seed           int64   `toml:"seed"` // 0 means time-based
}

// DefaultConfig returns the default genetic hyperparameters
func DefaultConfig() Config {
	return Config{
		PopulationSize: 40,
		Generations:    60,
		CrossoverRate:  0.8,
		MutationRate:   0.25,
		TournamentSize: 3,
	}
}

// Router is a genetic route-search engine. Chromosomes are simple src→dst
// paths seeded by randomized bandwidth-feasible walks; generations apply
// tournament selection, common-node splice crossover and random-suffix
// mutation, with the best individual carried over unchanged.
type Router struct {
	graph   *common.Network
	weights common.WeightConfig
	cfg     Config
	rng     *rand.Rand

	bestPath    []int
	bestCost    float64
	costHistory []float64
	failure     string
}

// New creates a genetic router for one network and weight configuration
func New(g *common.Network, weights common.WeightConfig, cfg Config) *Router {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Router{
		graph:   g,
		weights: weights,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Train evolves a fresh population for one demand. Nothing survives between
// calls, so calling Train again is an independent restart.
func (r *Router) Train(src, dst int, demandBW float64) {
	r.bestPath = nil
	r.bestCost = math.Inf(1)
	r.costHistory = nil
	r.failure = ""

	if !r.graph.HasNode(src) || !r.graph.HasNode(dst) {
		r.failure = common.ErrMsgNoPath
		return
	}
	if src == dst {
		r.bestPath = []int{src}
		r.bestCost = 0
		r.costHistory = append(r.costHistory, 0)
		return
	}

	population := r.seedPopulation(src, dst, demandBW)
	if len(population) == 0 {
		// Every seeding walk dead-ended.
		r.failure = pathcost.FailureReason(r.graph, src, dst, demandBW)
		return
	}

	for gen := 0; gen < r.cfg.Generations; gen++ {
		costs := make([]float64, len(population))
		eliteIdx := 0
		for i, individual := range population {
			cost, ok := pathcost.Cost(r.graph, individual, r.weights)
			if !ok {
				cost = math.Inf(1)
			}
			costs[i] = cost
			if cost < costs[eliteIdx] {
				eliteIdx = i
			}
			if cost < r.bestCost {
				r.bestCost = cost
				r.bestPath = append([]int(nil), individual...)
			}
		}

		next := make([][]int, 0, len(population))
		next = append(next, append([]int(nil), population[eliteIdx]...))

		for len(next) < len(population) {
			parent1 := population[r.tournament(costs)]
			parent2 := population[r.tournament(costs)]

			child := parent1
			if r.rng.Float64() < r.cfg.CrossoverRate {
				if spliced := r.crossover(parent1, parent2); spliced != nil {
					child = spliced
				}
			}
			if r.rng.Float64() < r.cfg.MutationRate {
				if mutated := r.mutate(child, dst, demandBW); mutated != nil {
					child = mutated
				}
			}
			next = append(next, append([]int(nil), child...))
		}
		population = next

		r.costHistory = append(r.costHistory, r.bestCost)
	}

	if r.bestPath == nil {
		r.failure = pathcost.FailureReason(r.graph, src, dst, demandBW)
	}
}

// seedPopulation fills the initial population with randomized feasible walks
func (r *Router) seedPopulation(src, dst int, demandBW float64) [][]int {
	population := make([][]int, 0, r.cfg.PopulationSize)
	attempts := r.cfg.PopulationSize * seedAttemptFactor
	for i := 0; i < attempts && len(population) < r.cfg.PopulationSize; i++ {
		if walk := r.randomWalk(src, dst, demandBW, nil); walk != nil {
			population = append(population, walk)
		}
	}
	return population
}

// randomWalk builds a simple path from src to dst by uniform choice among
// unvisited, bandwidth-feasible neighbors. Nodes in blocked are treated as
// already visited. Returns nil on a dead end or when the step cap is hit.
func (r *Router) randomWalk(src, dst int, demandBW float64, blocked map[int]bool) []int {
	current := src
	path := []int{current}
	visited := map[int]bool{current: true}
	for b := range blocked {
		visited[b] = true
	}

	maxSteps := 2 * r.graph.NodeCount()
	for step := 0; step < maxSteps; step++ {
		if current == dst {
			return path
		}

		var candidates []int
		for _, n := range r.graph.Neighbors(current) {
			if visited[n] {
				continue
			}
			edge, _ := r.graph.Edge(current, n)
			if edge.Bandwidth >= demandBW {
				candidates = append(candidates, n)
			}
		}
		if len(candidates) == 0 {
			return nil
		}

		next := candidates[r.rng.Intn(len(candidates))]
		path = append(path, next)
		visited[next] = true
		current = next
	}
	return nil
}

// tournament picks the lowest-cost individual among TournamentSize random
// entrants and returns its index
func (r *Router) tournament(costs []float64) int {
	best := r.rng.Intn(len(costs))
	for i := 1; i < r.cfg.TournamentSize; i++ {
		challenger := r.rng.Intn(len(costs))
		if costs[challenger] < costs[best] {
			best = challenger
		}
	}
	return best
}

// crossover splices two parents at a node they share. Both halves are valid
// sub-walks already, so only simplicity of the combined path needs checking;
// nil is returned when the halves overlap or no interior common node exists.
func (r *Router) crossover(parent1, parent2 []int) []int {
	pos2 := make(map[int]int, len(parent2))
	for i, n := range parent2 {
		pos2[n] = i
	}

	var splicePoints [][2]int // index in parent1, index in parent2
	for i := 1; i < len(parent1)-1; i++ {
		if j, ok := pos2[parent1[i]]; ok && j > 0 && j < len(parent2)-1 {
			splicePoints = append(splicePoints, [2]int{i, j})
		}
	}
	if len(splicePoints) == 0 {
		return nil
	}

	point := splicePoints[r.rng.Intn(len(splicePoints))]
	child := make([]int, 0, point[0]+len(parent2)-point[1])
	child = append(child, parent1[:point[0]+1]...)
	child = append(child, parent2[point[1]+1:]...)

	seen := make(map[int]bool, len(child))
	for _, n := range child {
		if seen[n] {
			return nil
		}
		seen[n] = true
	}
	return child
}

// mutate replaces a random suffix with a freshly constructed random walk to
// the destination. Returns nil when the rewalk dead-ends, leaving the
// original individual in place.
func (r *Router) mutate(individual []int, dst int, demandBW float64) []int {
	if len(individual) < 3 {
		return nil
	}
	cut := 1 + r.rng.Intn(len(individual)-2)
	prefix := individual[:cut+1]

	blocked := make(map[int]bool, cut)
	for _, n := range prefix[:cut] {
		blocked[n] = true
	}

	walk := r.randomWalk(prefix[cut], dst, demandBW, blocked)
	if walk == nil {
		return nil
	}

	mutated := make([]int, 0, cut+len(walk))
	mutated = append(mutated, prefix...)
	mutated = append(mutated, walk[1:]...)
	return mutated
}

// BestPath returns the best feasible individual ever seen, or nil
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

// CostHistory returns the tracked best cost after each generation
func (r *Router) CostHistory() []float64 {
	return r.costHistory
}
