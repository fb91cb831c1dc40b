package common

// Error messages reported through PathMetrics.Err. Infeasibility is an
// expected outcome and is reported as data, never as a Go error.
const (
	ErrMsgNoPath    = "no path found"
	ErrMsgBandwidth = "bandwidth constraint not satisfied"
)

// Demand represents a traffic request between two nodes with a minimum
// bandwidth requirement
type Demand struct {
	ID              int     `json:"id"`
	Src             int     `json:"src"`
	Dst             int     `json:"dst"`
	BandwidthNeeded float64 `json:"bandwidth_needed"`
}

// WeightConfig holds the relative importance of each QoS criterion in the
// scalar cost. Weights are non-negative and are not required to sum to 1.
type WeightConfig struct {
	Delay       float64 `toml:"delay" json:"w_delay"`
	Reliability float64 `toml:"reliability" json:"w_reliability"`
	Resource    float64 `toml:"resource" json:"w_resource"`
}

// PathAttributes are the per-path QoS attributes derived from the network,
// before weighting
type PathAttributes struct {
	TotalDelay      float64
	ReliabilityCost float64
	ResourceCost    float64
}

// PathMetrics is the externally reported result of a route search.
// When Valid is false only Err is meaningful.
type PathMetrics struct {
	Valid            bool    `json:"valid"`
	Path             []int   `json:"path,omitempty"`
	TotalDelay       float64 `json:"total_delay"`
	TotalReliability float64 `json:"total_reliability"`
	ReliabilityCost  float64 `json:"reliability_cost"`
	ResourceCost     float64 `json:"resource_cost"`
	TotalCost        float64 `json:"total_cost"`
	BottleneckBW     float64 `json:"bottleneck_bw"`
	HopCount         int     `json:"hop_count"`
	NodeCount        int     `json:"node_count"`
	Err              string  `json:"error,omitempty"`
}

// Engine defines the contract shared by every route-search strategy.
// Train performs the full search for one demand; BestPath returns whatever
// was learned during Train; PathMetrics re-verifies feasibility and
// recomputes every cost from scratch through the shared cost model.
type Engine interface {
	// Train runs the full search/learning process for the given demand.
	// The result is internal best-path state, retrieved via BestPath.
	Train(src, dst int, demandBW float64)

	// BestPath returns the best path found during Train, or nil if no
	// feasible path was ever seen. src/dst are accepted for symmetry with
	// callers; the answer is whatever was learned.
	BestPath(src, dst int) []int

	// PathMetrics computes the QoS metrics for a path. It does not trust
	// the path: adjacency, simplicity and the bandwidth constraint are all
	// re-checked.
	PathMetrics(path []int, demandBW float64) PathMetrics
}

// EngineFactory builds a fresh engine instance. Every independent run gets
// its own engine so no learned state leaks between restarts.
type EngineFactory func(g *Network, weights WeightConfig) Engine
