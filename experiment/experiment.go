package experiment

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"

	"qosroute/config"
	"qosroute/db_models"
	"qosroute/route_search/adapter"
	"qosroute/route_search/common"
	"qosroute/route_search/multi_run"
)

// Row is one aggregated experiment result: one engine on one demand under
// one weight set, over NumRuns independent runs. Cost aggregates are only
// meaningful when ValidRuns > 0.
type Row struct {
	Engine            string
	Demand            common.Demand
	WeightSet         int
	Weights           common.WeightConfig
	NumRuns           int
	ValidRuns         int
	BestCost          float64
	WorstCost         float64
	AverageCost       float64
	StdDevCost        float64
	AverageDelay      float64
	AverageRelCost    float64
	AverageResCost    float64
	AverageRuntimeSec float64
	TotalRuntimeSec   float64
	Best              common.PathMetrics
}

// Harness batch-runs engines across weight sets and demands, the experiment
// design of the original study: at least N independent runs per
// configuration with mean/std/best/worst cost and runtime statistics.
type Harness struct {
	graph     *common.Network
	demands   []common.Demand
	engineCfg config.EngineConfig
	expCfg    config.ExperimentConfig
	db        *sql.DB
	cache     *resultCache
}

// New creates a harness over an immutable network and its demand list
func New(g *common.Network, demands []common.Demand, engineCfg config.EngineConfig, expCfg config.ExperimentConfig) *Harness {
	return &Harness{
		graph:     g,
		demands:   demands,
		engineCfg: engineCfg,
		expCfg:    expCfg,
		cache:     newResultCache(),
	}
}

// WithDB enables MySQL persistence of result rows and the host snapshot
func (h *Harness) WithDB(db *sql.DB) *Harness {
	h.db = db
	return h
}

// Run executes the full batch and writes the CSV summary. Returns every
// aggregated row.
func (h *Harness) Run() ([]Row, error) {
	batchID := time.Now().Format("20060102_150405")
	log.Infof("Experiment batch %s: %d engines x %d weight sets x %d demands x %d runs",
		batchID, len(h.expCfg.Engines), len(h.expCfg.WeightSets), len(h.demands), h.expCfg.Runs)

	if h.db != nil {
		if err := db_models.InsertHostSnapshot(h.db, batchID, CollectHostSnapshot()); err != nil {
			log.Errorf("Storing host snapshot failed: %v", err)
		}
	}

	var rows []Row
	for _, engineName := range h.expCfg.Engines {
		factory, err := h.factoryFor(engineName)
		if err != nil {
			return nil, err
		}

		for wi, weights := range h.expCfg.WeightSets {
			for _, demand := range h.demands {
				key := cacheKey(engineName, demand, weights, h.expCfg.Runs)
				row, cached := h.cache.Get(key)
				if !cached {
					fresh := h.runOne(factory, engineName, demand, weights, wi+1)
					h.cache.Set(key, &fresh)
					row = &fresh
				}

				rows = append(rows, *row)
				if h.db != nil {
					if err := db_models.InsertExperimentResult(h.db, batchID, toDBResult(row)); err != nil {
						log.Errorf("Storing result row failed: %v", err)
					}
				}
			}
		}
	}

	if err := h.writeCSV(batchID, rows); err != nil {
		return rows, err
	}
	return rows, nil
}

// runOne performs the N independent runs for one configuration and
// aggregates them
func (h *Harness) runOne(factory common.EngineFactory, engineName string, demand common.Demand, weights common.WeightConfig, weightSet int) Row {
	runs := h.expCfg.Runs
	metrics := make([]common.PathMetrics, runs)
	runtimes := make([]float64, runs)

	singleRun := func(i int) {
		start := time.Now()
		engine := factory(h.graph, weights)
		engine.Train(demand.Src, demand.Dst, demand.BandwidthNeeded)
		path := engine.BestPath(demand.Src, demand.Dst)
		metrics[i] = engine.PathMetrics(path, demand.BandwidthNeeded)
		runtimes[i] = time.Since(start).Seconds()
	}

	if h.expCfg.Workers > 1 {
		pool, err := ants.NewPool(h.expCfg.Workers)
		if err != nil {
			log.Errorf("Creating run pool failed, running sequentially: %v", err)
			for i := 0; i < runs; i++ {
				singleRun(i)
			}
		} else {
			var wg sync.WaitGroup
			for i := 0; i < runs; i++ {
				i := i
				wg.Add(1)
				if err := pool.Submit(func() {
					defer wg.Done()
					singleRun(i)
				}); err != nil {
					wg.Done()
					singleRun(i)
				}
			}
			wg.Wait()
			pool.Release()
		}
	} else {
		for i := 0; i < runs; i++ {
			singleRun(i)
		}
	}

	var validCosts, validDelays, validRelCosts, validResCosts []float64
	for _, m := range metrics {
		if !m.Valid {
			continue
		}
		validCosts = append(validCosts, m.TotalCost)
		validDelays = append(validDelays, m.TotalDelay)
		validRelCosts = append(validRelCosts, m.ReliabilityCost)
		validResCosts = append(validResCosts, m.ResourceCost)
	}

	row := Row{
		Engine:            engineName,
		Demand:            demand,
		WeightSet:         weightSet,
		Weights:           weights,
		NumRuns:           runs,
		ValidRuns:         len(validCosts),
		AverageRuntimeSec: mean(runtimes),
		TotalRuntimeSec:   mean(runtimes) * float64(runs),
		Best:              multi_run.Reduce(h.graph, demand.Src, demand.Dst, demand.BandwidthNeeded, metrics),
	}
	if len(validCosts) > 0 {
		row.BestCost = minOf(validCosts)
		row.WorstCost = maxOf(validCosts)
		row.AverageCost = mean(validCosts)
		row.StdDevCost = stdDev(validCosts)
		row.AverageDelay = mean(validDelays)
		row.AverageRelCost = mean(validRelCosts)
		row.AverageResCost = mean(validResCosts)
	} else {
		row.BestCost = math.Inf(1)
		row.WorstCost = math.Inf(1)
		row.AverageCost = math.Inf(1)
	}

	log.Infof("Engine %s, demand %d (%d->%d, bw>=%v), weight set %d: %d/%d valid runs, best cost %v",
		engineName, demand.ID, demand.Src, demand.Dst, demand.BandwidthNeeded,
		weightSet, row.ValidRuns, runs, row.BestCost)
	return row
}

// factoryFor resolves an engine name to a factory carrying the configured
// hyperparameters, falling back to the global registry for anything else
func (h *Harness) factoryFor(name string) (common.EngineFactory, error) {
	switch name {
	case adapter.QLearning:
		return adapter.QLearningFactory(h.engineCfg.QLearning), nil
	case adapter.AntColony:
		return adapter.AntColonyFactory(h.engineCfg.AntColony), nil
	case adapter.Genetic:
		return adapter.GeneticFactory(h.engineCfg.Genetic), nil
	default:
		return common.GetGlobal(name)
	}
}

// writeCSV writes the batch summary in the original study's column layout
func (h *Harness) writeCSV(batchID string, rows []Row) error {
	if err := os.MkdirAll(h.expCfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(h.expCfg.OutputDir, fmt.Sprintf("experiment_results_%s.csv", batchID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"engine", "demand_id", "src", "dst", "demand_bw", "weight_set", "weights",
		"num_runs", "valid_runs", "best_cost", "worst_cost", "average_cost",
		"std_dev_cost", "average_delay", "average_reliability_cost",
		"average_resource_cost", "average_runtime_sec", "total_runtime_sec",
		"best_path",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Engine,
			strconv.Itoa(row.Demand.ID),
			strconv.Itoa(row.Demand.Src),
			strconv.Itoa(row.Demand.Dst),
			formatFloat(row.Demand.BandwidthNeeded),
			strconv.Itoa(row.WeightSet),
			fmt.Sprintf("d=%v r=%v b=%v", row.Weights.Delay, row.Weights.Reliability, row.Weights.Resource),
			strconv.Itoa(row.NumRuns),
			strconv.Itoa(row.ValidRuns),
			formatCost(row.BestCost, row.ValidRuns),
			formatCost(row.WorstCost, row.ValidRuns),
			formatCost(row.AverageCost, row.ValidRuns),
			formatCost(row.StdDevCost, row.ValidRuns),
			formatCost(row.AverageDelay, row.ValidRuns),
			formatCost(row.AverageRelCost, row.ValidRuns),
			formatCost(row.AverageResCost, row.ValidRuns),
			formatFloat(row.AverageRuntimeSec),
			formatFloat(row.TotalRuntimeSec),
			PathString(row.Best.Path),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	log.Infof("Experiment results written to %s (%d rows)", path, len(rows))
	return nil
}

// PathString renders a path as dash-separated node ids
func PathString(path []int) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatCost renders cost aggregates, empty when no run was valid
func formatCost(v float64, validRuns int) string {
	if validRuns == 0 {
		return ""
	}
	return formatFloat(v)
}

// toDBResult converts a Row into its persistence shape, mapping missing
// aggregates to NULL
func toDBResult(row *Row) *db_models.ExperimentResult {
	result := &db_models.ExperimentResult{
		Engine:            row.Engine,
		DemandID:          row.Demand.ID,
		Src:               row.Demand.Src,
		Dst:               row.Demand.Dst,
		DemandBW:          row.Demand.BandwidthNeeded,
		WeightSet:         row.WeightSet,
		Weights:           fmt.Sprintf("d=%v r=%v b=%v", row.Weights.Delay, row.Weights.Reliability, row.Weights.Resource),
		NumRuns:           row.NumRuns,
		ValidRuns:         row.ValidRuns,
		AverageRuntimeSec: row.AverageRuntimeSec,
		TotalRuntimeSec:   row.TotalRuntimeSec,
		BestPath:          PathString(row.Best.Path),
	}
	if row.ValidRuns > 0 {
		result.BestCost = sql.NullFloat64{Float64: row.BestCost, Valid: true}
		result.WorstCost = sql.NullFloat64{Float64: row.WorstCost, Valid: true}
		result.AverageCost = sql.NullFloat64{Float64: row.AverageCost, Valid: true}
		result.StdDevCost = sql.NullFloat64{Float64: row.StdDevCost, Valid: true}
		result.AverageDelay = sql.NullFloat64{Float64: row.AverageDelay, Valid: true}
		result.AverageRelCost = sql.NullFloat64{Float64: row.AverageRelCost, Valid: true}
		result.AverageResCost = sql.NullFloat64{Float64: row.AverageResCost, Valid: true}
	}
	return result
}
