package q_learning

import (
	"math"
	"math/rand"
	"time"

	"qosroute/route_search/common"
	pathcost "qosroute/route_search/path_cost"
)

// Config holds the Q-learning hyperparameters
type Config struct {
	Alpha          float64 `toml:"alpha"`           // learning rate
	Gamma          float64 `toml:"gamma"`           // discount factor
	InitialEpsilon float64 `toml:"initial_epsilon"` // exploration rate at episode 0
	MinEpsilon     float64 `toml:"min_epsilon"`     // exploration floor
	EpsilonDecay   float64 `toml:"epsilon_decay"`   // multiplicative decay per episode
	Episodes       int     `toml:"episodes"`
	MaxSteps       int     `toml:"max_steps"` // per-episode step cap
	StepPenalty    float64 `toml:"step_penalty"`
	ProgressBonus  float64 `toml:"progress_bonus"`
	TerminalReward float64 `toml:"terminal_reward"` // scaled by 1/cost on feasible arrival
	FailurePenalty float64 `toml:"failure_penalty"` // terminal reward when bandwidth is infeasible
	Seed           int64   `toml:"seed"`            // 0 means time-based
}

// DefaultConfig returns the hyperparameters the original experiments used
func DefaultConfig() Config {
	return Config{
		Alpha:          0.15,
		Gamma:          0.92,
		InitialEpsilon: 1.0,
		MinEpsilon:     0.01,
		EpsilonDecay:   0.99,
		Episodes:       4000,
		MaxSteps:       100,
		StepPenalty:    -2.0,
		ProgressBonus:  0.5,
		TerminalReward: 2000.0,
		FailurePenalty: -1.0,
	}
}

// Router is a tabular Q-learning route-search engine. State is the current
// node, actions are unvisited neighbors, so loops are impossible by
// construction rather than merely penalized.
type Router struct {
	graph   *common.Network
	weights common.WeightConfig
	cfg     Config
	rng     *rand.Rand

	qTable  map[int]map[int]float64
	epsilon float64

	bestPath    []int
	bestCost    float64
	costHistory []float64
	failure     string
}

// New creates a Q-learning router for one network and weight configuration
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

// Train runs the full learning process for one demand. All learned state
// (Q-table, epsilon, retained best path) is re-initialized first, so calling
// Train again is an independent restart.
func (r *Router) Train(src, dst int, demandBW float64) {
	r.reset()

	if !r.graph.HasNode(src) || !r.graph.HasNode(dst) {
		r.failure = common.ErrMsgNoPath
		return
	}
	if src == dst {
		// Already at the destination: the trivial path is the answer.
		r.bestPath = []int{src}
		r.bestCost = 0
		r.costHistory = append(r.costHistory, 0)
		return
	}

	for episode := 0; episode < r.cfg.Episodes; episode++ {
		r.runEpisode(src, dst, demandBW)

		if r.epsilon > r.cfg.MinEpsilon {
			r.epsilon *= r.cfg.EpsilonDecay
		}
		r.costHistory = append(r.costHistory, r.bestCost)
	}

	if r.bestPath == nil {
		r.failure = pathcost.FailureReason(r.graph, src, dst, demandBW)
	}
}

// runEpisode walks one episode from src and applies temporal-difference
// updates along the way
func (r *Router) runEpisode(src, dst int, demandBW float64) {
	state := src
	visited := map[int]bool{src: true}
	path := []int{src}
	minBW := math.Inf(1)

	for steps := 0; state != dst && steps < r.cfg.MaxSteps; steps++ {
		actions := r.validActions(state, visited)
		if len(actions) == 0 {
			break // dead end, episode over
		}

		var action int
		if r.rng.Float64() < r.epsilon {
			action = actions[r.rng.Intn(len(actions))]
		} else {
			action = r.greedyAction(state, actions)
		}

		edge, _ := r.graph.Edge(state, action)
		if edge.Bandwidth < minBW {
			minBW = edge.Bandwidth
		}

		path = append(path, action)
		visited[action] = true

		reward := r.cfg.StepPenalty + r.cfg.ProgressBonus

		if action == dst {
			cost, _ := pathcost.Cost(r.graph, path, r.weights)
			if cost < pathcost.MinCost {
				cost = pathcost.MinCost
			}
			if minBW >= demandBW {
				reward = r.cfg.TerminalReward / cost
				if cost < r.bestCost {
					r.bestCost = cost
					r.bestPath = append([]int(nil), path...)
				}
			} else {
				reward = r.cfg.FailurePenalty
			}
		}

		futureQ := r.maxQ(action)
		r.qTable[state][action] += r.cfg.Alpha * (reward + r.cfg.Gamma*futureQ - r.qTable[state][action])

		state = action
	}
}

// validActions returns the unvisited neighbors of a state
func (r *Router) validActions(state int, visited map[int]bool) []int {
	neighbors := r.graph.Neighbors(state)
	actions := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		if !visited[n] {
			actions = append(actions, n)
		}
	}
	return actions
}

// greedyAction returns the action with the highest learned value
func (r *Router) greedyAction(state int, actions []int) int {
	best := actions[0]
	bestQ := r.qTable[state][best]
	for _, a := range actions[1:] {
		if q := r.qTable[state][a]; q > bestQ {
			best = a
			bestQ = q
		}
	}
	return best
}

// maxQ returns the highest action value of a state, 0 when it has none
func (r *Router) maxQ(state int) float64 {
	first := true
	var max float64
	for _, q := range r.qTable[state] {
		if first || q > max {
			max = q
			first = false
		}
	}
	return max
}

// reset re-initializes the Q-table, epsilon and the retained best path
func (r *Router) reset() {
	r.qTable = make(map[int]map[int]float64, r.graph.NodeCount())
	for _, node := range r.graph.Nodes() {
		row := make(map[int]float64)
		for _, nbr := range r.graph.Neighbors(node) {
			row[nbr] = 0.0
		}
		r.qTable[node] = row
	}
	r.epsilon = r.cfg.InitialEpsilon
	r.bestPath = nil
	r.bestCost = math.Inf(1)
	r.costHistory = nil
	r.failure = ""
}

// BestPath returns the best feasible path retained during Train, or nil.
// src/dst are accepted for contract symmetry; the answer was learned already.
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

// CostHistory returns the tracked best cost after each episode
func (r *Router) CostHistory() []float64 {
	return r.costHistory
}
