package adapter

import (
	log "github.com/sirupsen/logrus"

	"qosroute/route_search/ant_colony"
	"qosroute/route_search/common"
	"qosroute/route_search/genetic"
	"qosroute/route_search/hop_count"
	"qosroute/route_search/q_learning"
)

// Registered engine names
const (
	QLearning = "q_learning"
	AntColony = "ant_colony"
	Genetic   = "genetic"
	HopCount  = "hop_count"
)

// init automatically registers every available engine with its default
// hyperparameters
func init() {
	register(QLearning, QLearningFactory(q_learning.DefaultConfig()))
	register(AntColony, AntColonyFactory(ant_colony.DefaultConfig()))
	register(Genetic, GeneticFactory(genetic.DefaultConfig()))
	register(HopCount, HopCountFactory())

	log.Debugf("Available route-search engines: %v", common.ListGlobal())
}

func register(name string, factory common.EngineFactory) {
	if err := common.RegisterGlobal(name, factory); err != nil {
		log.Warnf("Failed to register %s engine: %v", name, err)
	}
}

// QLearningFactory builds a factory producing fresh Q-learning routers with
// the given hyperparameters
func QLearningFactory(cfg q_learning.Config) common.EngineFactory {
	return func(g *common.Network, weights common.WeightConfig) common.Engine {
		return q_learning.New(g, weights, cfg)
	}
}

// AntColonyFactory builds a factory producing fresh ant colony routers with
// the given hyperparameters
func AntColonyFactory(cfg ant_colony.Config) common.EngineFactory {
	return func(g *common.Network, weights common.WeightConfig) common.Engine {
		return ant_colony.New(g, weights, cfg)
	}
}

// GeneticFactory builds a factory producing fresh genetic routers with the
// given hyperparameters
func GeneticFactory(cfg genetic.Config) common.EngineFactory {
	return func(g *common.Network, weights common.WeightConfig) common.Engine {
		return genetic.New(g, weights, cfg)
	}
}

// HopCountFactory builds a factory producing the deterministic fewest-hop
// fallback engine
func HopCountFactory() common.EngineFactory {
	return func(g *common.Network, weights common.WeightConfig) common.Engine {
		return hop_count.New(g, weights)
	}
}
