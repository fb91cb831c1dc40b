package db_models

import (
	"database/sql"
	"time"
)

// ExperimentResult is one aggregated row of the experiment harness: one
// engine on one demand under one weight set, over N independent runs.
// Cost aggregates are NULL when no run produced a feasible path.
type ExperimentResult struct {
	Engine             string
	DemandID           int
	Src                int
	Dst                int
	DemandBW           float64
	WeightSet          int
	Weights            string
	NumRuns            int
	ValidRuns          int
	BestCost           sql.NullFloat64
	WorstCost          sql.NullFloat64
	AverageCost        sql.NullFloat64
	StdDevCost         sql.NullFloat64
	AverageDelay       sql.NullFloat64
	AverageRelCost     sql.NullFloat64
	AverageResCost     sql.NullFloat64
	AverageRuntimeSec  float64
	TotalRuntimeSec    float64
	BestPath           string
}

// HostSnapshot records the machine state captured once per experiment batch
type HostSnapshot struct {
	Hostname     string
	OS           string
	Platform     string
	CPUModel     string
	CPUCores     int
	CPUUsage     float64
	MemTotal     uint64
	MemUsed      uint64
	MemPercent   float64
	Load1        float64
	Load5        float64
	Load15       float64
}

// InsertExperimentResult stores one aggregated experiment row
func InsertExperimentResult(db *sql.DB, batchID string, r *ExperimentResult) error {
	query := `
		INSERT INTO experiment_results (
			batch_id, engine, demand_id, src, dst, demand_bw,
			weight_set, weights, num_runs, valid_runs,
			best_cost, worst_cost, average_cost, std_dev_cost,
			average_delay, average_reliability_cost, average_resource_cost,
			average_runtime_sec, total_runtime_sec, best_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, err := db.Exec(query,
		batchID, r.Engine, r.DemandID, r.Src, r.Dst, r.DemandBW,
		r.WeightSet, r.Weights, r.NumRuns, r.ValidRuns,
		r.BestCost, r.WorstCost, r.AverageCost, r.StdDevCost,
		r.AverageDelay, r.AverageRelCost, r.AverageResCost,
		r.AverageRuntimeSec, r.TotalRuntimeSec, r.BestPath, timestamp,
	)
	return err
}

// InsertHostSnapshot stores the machine state of one experiment batch
func InsertHostSnapshot(db *sql.DB, batchID string, s *HostSnapshot) error {
	query := `
		INSERT INTO host_snapshots (
			batch_id, hostname, os, platform,
			cpu_model, cpu_cores, cpu_usage,
			memory_total, memory_used, memory_used_percent,
			load1, load5, load15, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, err := db.Exec(query,
		batchID, s.Hostname, s.OS, s.Platform,
		s.CPUModel, s.CPUCores, s.CPUUsage,
		s.MemTotal, s.MemUsed, s.MemPercent,
		s.Load1, s.Load5, s.Load15, timestamp,
	)
	return err
}
