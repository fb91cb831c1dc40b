package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"qosroute/route_search/ant_colony"
	"qosroute/route_search/common"
	"qosroute/route_search/genetic"
	"qosroute/route_search/q_learning"
)

// Config holds everything the planner reads from its toml file
type Config struct {
	Weights    common.WeightConfig `toml:"weights"`
	Topology   TopologyConfig      `toml:"topology"`
	Engine     EngineConfig        `toml:"engine"`
	Experiment ExperimentConfig    `toml:"experiment"`
	Database   DatabaseConfig      `toml:"database"`
}

// TopologyConfig points at the three CSV inputs
type TopologyConfig struct {
	NodeFile   string `toml:"node_file"`
	EdgeFile   string `toml:"edge_file"`
	DemandFile string `toml:"demand_file"`
}

// EngineConfig holds per-engine hyperparameters
type EngineConfig struct {
	QLearning q_learning.Config `toml:"q_learning"`
	AntColony ant_colony.Config `toml:"ant_colony"`
	Genetic   genetic.Config    `toml:"genetic"`
}

// ExperimentConfig controls the batch harness
type ExperimentConfig struct {
	Runs       int                   `toml:"runs"`
	Workers    int                   `toml:"workers"`
	OutputDir  string                `toml:"output_dir"`
	Engines    []string              `toml:"engines"`
	WeightSets []common.WeightConfig `toml:"weight_sets"`
}

// DatabaseConfig holds the MySQL connection settings for result persistence
type DatabaseConfig struct {
	Enabled  bool   `toml:"enabled"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"dbname"`
}

// LoadConfig reads the toml file, fills in defaults and validates the
// weight configuration
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Weights: common.WeightConfig{Delay: 0.4, Reliability: 0.3, Resource: 0.3},
		Engine: EngineConfig{
			QLearning: q_learning.DefaultConfig(),
			AntColony: ant_colony.DefaultConfig(),
			Genetic:   genetic.DefaultConfig(),
		},
		Experiment: ExperimentConfig{Runs: 5, Workers: 4, OutputDir: "results"},
		Database:   DatabaseConfig{Host: "127.0.0.1", Port: 3306},
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if err := ValidateWeights(cfg.Weights); err != nil {
		return nil, err
	}
	for i, w := range cfg.Experiment.WeightSets {
		if err := ValidateWeights(w); err != nil {
			return nil, fmt.Errorf("weight set %d: %w", i+1, err)
		}
	}

	if cfg.Experiment.Runs < 1 {
		log.Warningf("experiment.runs %d is below 1, using 1", cfg.Experiment.Runs)
		cfg.Experiment.Runs = 1
	}
	if len(cfg.Experiment.Engines) == 0 {
		cfg.Experiment.Engines = []string{"q_learning", "ant_colony", "genetic"}
	}
	if len(cfg.Experiment.WeightSets) == 0 {
		cfg.Experiment.WeightSets = []common.WeightConfig{cfg.Weights}
	}

	return cfg, nil
}

// ValidateWeights rejects negative criterion weights, a caller contract
// violation per the cost model
func ValidateWeights(w common.WeightConfig) error {
	if w.Delay < 0 || w.Reliability < 0 || w.Resource < 0 {
		return fmt.Errorf("weights must be non-negative, got delay=%v reliability=%v resource=%v",
			w.Delay, w.Reliability, w.Resource)
	}
	return nil
}
