package topology

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"qosroute/route_search/common"
)

// Load reads the node, edge and demand CSV files and builds the immutable
// network plus the demand list. Malformed records (unknown node references,
// reliabilities outside (0,1], negative delay/bandwidth) fail fast with a
// descriptive error instead of being tolerated mid-search.
func Load(nodeFile, edgeFile, demandFile string) (*common.Network, []common.Demand, error) {
	g, err := LoadNetwork(nodeFile, edgeFile)
	if err != nil {
		return nil, nil, err
	}

	demands, err := LoadDemands(demandFile)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range demands {
		if !g.HasNode(d.Src) {
			return nil, nil, fmt.Errorf("demand %d references unknown node %d", d.ID, d.Src)
		}
		if !g.HasNode(d.Dst) {
			return nil, nil, fmt.Errorf("demand %d references unknown node %d", d.ID, d.Dst)
		}
		if d.BandwidthNeeded < 0 {
			return nil, nil, fmt.Errorf("demand %d: negative bandwidth %v", d.ID, d.BandwidthNeeded)
		}
	}

	log.Infof("Topology loaded: %d nodes, %d edges, %d demands", g.NodeCount(), g.EdgeCount(), len(demands))
	return g, demands, nil
}

// LoadNetwork builds a network from node records (id, reliability) and edge
// records (src, dst, delay, reliability, bandwidth)
func LoadNetwork(nodeFile, edgeFile string) (*common.Network, error) {
	g := common.NewNetwork()

	nodeRows, err := readRecords(nodeFile, 2)
	if err != nil {
		return nil, fmt.Errorf("reading node file: %w", err)
	}
	for _, row := range nodeRows {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("node file: bad node id %q", row[0])
		}
		reliability, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("node %d: bad reliability %q", id, row[1])
		}
		if err := g.AddNode(id, reliability); err != nil {
			return nil, err
		}
	}

	edgeRows, err := readRecords(edgeFile, 5)
	if err != nil {
		return nil, fmt.Errorf("reading edge file: %w", err)
	}
	for _, row := range edgeRows {
		src, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("edge file: bad node id %q", row[0])
		}
		dst, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("edge file: bad node id %q", row[1])
		}
		var params common.EdgeParams
		if params.Delay, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, fmt.Errorf("edge %d-%d: bad delay %q", src, dst, row[2])
		}
		if params.Reliability, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, fmt.Errorf("edge %d-%d: bad reliability %q", src, dst, row[3])
		}
		if params.Bandwidth, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, fmt.Errorf("edge %d-%d: bad bandwidth %q", src, dst, row[4])
		}
		if err := g.AddEdge(src, dst, params); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// LoadDemands reads demand records (id, src, dst, bandwidth_needed)
func LoadDemands(demandFile string) ([]common.Demand, error) {
	rows, err := readRecords(demandFile, 4)
	if err != nil {
		return nil, fmt.Errorf("reading demand file: %w", err)
	}

	demands := make([]common.Demand, 0, len(rows))
	for _, row := range rows {
		var d common.Demand
		if d.ID, err = strconv.Atoi(row[0]); err != nil {
			return nil, fmt.Errorf("demand file: bad demand id %q", row[0])
		}
		if d.Src, err = strconv.Atoi(row[1]); err != nil {
			return nil, fmt.Errorf("demand %d: bad source %q", d.ID, row[1])
		}
		if d.Dst, err = strconv.Atoi(row[2]); err != nil {
			return nil, fmt.Errorf("demand %d: bad destination %q", d.ID, row[2])
		}
		if d.BandwidthNeeded, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, fmt.Errorf("demand %d: bad bandwidth %q", d.ID, row[3])
		}
		demands = append(demands, d)
	}
	return demands, nil
}

// readRecords reads a CSV file, skipping a header row when the first field
// is not numeric
func readRecords(path string, minFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		if _, err := strconv.ParseFloat(rows[0][0], 64); err != nil {
			rows = rows[1:] // header row
		}
	}

	for i, row := range rows {
		if len(row) < minFields {
			return nil, fmt.Errorf("%s: record %d has %d fields, want at least %d", path, i+1, len(row), minFields)
		}
	}
	return rows, nil
}
