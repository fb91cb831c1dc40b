package db_models

import (
	"database/sql"

	log "github.com/sirupsen/logrus"
)

// BestResultRow is the per-demand winner across engines for one weight set
type BestResultRow struct {
	DemandID int
	Engine   string
	BestCost float64
	BestPath string
}

// QueryBestResults returns, for one batch and weight set, the cheapest
// feasible result per demand across all engines
func QueryBestResults(db *sql.DB, batchID string, weightSet int) ([]BestResultRow, error) {
	query := `
		SELECT r.demand_id, r.engine, r.best_cost, r.best_path
		FROM experiment_results r
		JOIN (
			SELECT demand_id, MIN(best_cost) AS min_cost
			FROM experiment_results
			WHERE batch_id = ? AND weight_set = ? AND best_cost IS NOT NULL
			GROUP BY demand_id
		) m ON r.demand_id = m.demand_id AND r.best_cost = m.min_cost
		WHERE r.batch_id = ? AND r.weight_set = ?
		ORDER BY r.demand_id
	`
	rows, err := db.Query(query, batchID, weightSet, batchID, weightSet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []BestResultRow
	for rows.Next() {
		var row BestResultRow
		if err := rows.Scan(&row.DemandID, &row.Engine, &row.BestCost, &row.BestPath); err != nil {
			log.Errorf("QueryBestResults scan failed, err=%s", err)
			return nil, err
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// QueryValidRunRate returns the fraction of runs that produced a feasible
// path, per engine, for one batch
func QueryValidRunRate(db *sql.DB, batchID string) (map[string]float64, error) {
	query := `
		SELECT engine, SUM(valid_runs), SUM(num_runs)
		FROM experiment_results
		WHERE batch_id = ?
		GROUP BY engine
	`
	rows, err := db.Query(query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var engine string
		var valid, total int
		if err := rows.Scan(&engine, &valid, &total); err != nil {
			return nil, err
		}
		if total > 0 {
			rates[engine] = float64(valid) / float64(total)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rates, nil
}
