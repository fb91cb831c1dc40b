package ant_colony

import (
	"math"
	"math/rand"
	"time"

	"qosroute/route_search/common"
	pathcost "qosroute/route_search/path_cost"
)

const (
	// depositEpsilon keeps the pheromone deposit finite for near-zero costs
	depositEpsilon = 1e-4
	// heuristicOffset keeps the delay heuristic finite on zero-delay edges
	heuristicOffset = 0.1
)

// Config holds the ant colony hyperparameters
type Config struct {
	AntCount       int     `toml:"ant_count"`      // ants dispatched per iteration
	Iterations     int     `toml:"iterations"`
	Alpha          float64 `toml:"alpha"`          // pheromone importance
	Beta           float64 `toml:"beta"`           // heuristic (inverse delay) importance
	Evaporation    float64 `toml:"evaporation"`    // fraction of pheromone lost per iteration
	DepositQ       float64 `toml:"deposit_q"`      // deposit constant, spread as Q/cost
	PheromoneInit  float64 `toml:"pheromone_init"`
	PheromoneFloor float64 `toml:"pheromone_floor"` // evaporation never goes below this
	Seed           int64   `toml:"seed"`            // 0 means time-based
}

// DefaultConfig returns the hyperparameters the original experiments used
func DefaultConfig() Config {
	return Config{
		AntCount:       20,
		Iterations:     30,
		Alpha:          1.0,
		Beta:           2.0,
		Evaporation:    0.5,
		DepositQ:       100.0,
		PheromoneInit:  1.0,
		PheromoneFloor: 0.01,
	}
}

// Router is an ant colony route-search engine. Ants construct paths by
// probabilistic choice among unvisited, bandwidth-feasible neighbors, biased
// by pheromone trails that evaporate and are reinforced by cheap paths.
type Router struct {
	graph   *common.Network
	weights common.WeightConfig
	cfg     Config
	rng     *rand.Rand

	// pheromones is keyed by directed edge; both directions are kept in
	// sync because the graph is undirected.
	pheromones map[[2]int]float64

	bestPath    []int
	bestCost    float64
	costHistory []float64
	failure     string
}

// New creates an ant colony router for one network and weight configuration
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

// Train runs the full colony for one demand. Pheromones persist across
// iterations within the run but are re-initialized at the start, so calling
// Train again is an independent restart.
func (r *Router) Train(src, dst int, demandBW float64) {
	r.initPheromones()
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

	type antResult struct {
		path []int
		cost float64
	}

	for iter := 0; iter < r.cfg.Iterations; iter++ {
		var succeeded []antResult

		for ant := 0; ant < r.cfg.AntCount; ant++ {
			path := r.constructPath(src, dst, demandBW)
			if path == nil {
				continue // dead end or step cap, this ant contributes nothing
			}
			cost, ok := pathcost.Cost(r.graph, path, r.weights)
			if !ok {
				continue
			}
			succeeded = append(succeeded, antResult{path: path, cost: cost})

			if cost < r.bestCost {
				r.bestCost = cost
				r.bestPath = append([]int(nil), path...)
			}
		}

		r.evaporate()
		for _, res := range succeeded {
			r.deposit(res.path, res.cost)
		}

		r.costHistory = append(r.costHistory, r.bestCost)
	}

	if r.bestPath == nil {
		r.failure = pathcost.FailureReason(r.graph, src, dst, demandBW)
	}
}

// constructPath walks one ant from src toward dst. Only unvisited neighbors
// whose edge satisfies the bandwidth demand are candidates, so a completed
// path is feasible by construction. Returns nil when the ant dead-ends or
// exceeds the step cap.
func (r *Router) constructPath(src, dst int, demandBW float64) []int {
	current := src
	path := []int{current}
	visited := map[int]bool{current: true}

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

		next := r.pickNext(current, candidates)
		path = append(path, next)
		visited[next] = true
		current = next
	}
	return nil
}

// pickNext does roulette-wheel selection over pheromone^alpha * heuristic^beta
func (r *Router) pickNext(current int, candidates []int) int {
	scores := make([]float64, len(candidates))
	total := 0.0
	for i, n := range candidates {
		tau := r.pheromones[[2]int{current, n}]
		edge, _ := r.graph.Edge(current, n)
		eta := 1.0 / (edge.Delay + heuristicOffset)
		score := math.Pow(tau, r.cfg.Alpha) * math.Pow(eta, r.cfg.Beta)
		scores[i] = score
		total += score
	}

	if total <= 0 {
		return candidates[r.rng.Intn(len(candidates))]
	}

	pick := r.rng.Float64() * total
	for i, score := range scores {
		pick -= score
		if pick <= 0 {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

// initPheromones lays the uniform initial trail on every directed edge
func (r *Router) initPheromones() {
	r.pheromones = make(map[[2]int]float64, 2*r.graph.EdgeCount())
	for _, u := range r.graph.Nodes() {
		for _, v := range r.graph.Neighbors(u) {
			r.pheromones[[2]int{u, v}] = r.cfg.PheromoneInit
		}
	}
}

// evaporate decays every trail multiplicatively, floored above zero so
// exploration never fully stops
func (r *Router) evaporate() {
	for edge, tau := range r.pheromones {
		tau *= 1.0 - r.cfg.Evaporation
		if tau < r.cfg.PheromoneFloor {
			tau = r.cfg.PheromoneFloor
		}
		r.pheromones[edge] = tau
	}
}

// deposit reinforces every edge of a successful path, in both directions,
// with an amount inversely proportional to the path cost
func (r *Router) deposit(path []int, cost float64) {
	amount := r.cfg.DepositQ / (cost + depositEpsilon)
	for i := 0; i < len(path)-1; i++ {
		u, v := path[i], path[i+1]
		r.pheromones[[2]int{u, v}] += amount
		r.pheromones[[2]int{v, u}] += amount
	}
}

// BestPath returns the best feasible path found during Train, or nil
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

// CostHistory returns the tracked best cost after each iteration
func (r *Router) CostHistory() []float64 {
	return r.costHistory
}

// Pheromone returns the current trail level on a directed edge, used by the
// experiment harness to inspect convergence.
func (r *Router) Pheromone(u, v int) float64 {
	return r.pheromones[[2]int{u, v}]
}
