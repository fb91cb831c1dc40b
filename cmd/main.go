package main

import (
	"flag"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"qosroute/config"
	"qosroute/experiment"
	"qosroute/middleware"
	"qosroute/route_search/adapter"
	"qosroute/route_search/common"
	"qosroute/route_search/multi_run"
	"qosroute/topology"
)

// log init
func init() {
	// Use WorkingDirectory for logs instead of executable directory
	logDir := "./logs"
	os.MkdirAll(logDir, 0755)

	// Configure log rotation with lumberjack
	fileLogger := &lumberjack.Logger{
		Filename:   logDir + "/qosroute.log",
		MaxSize:    100,  // MB
		MaxBackups: 7,    // Keep 7 old log files
		MaxAge:     30,   // Days
		Compress:   true, // Compress old log files
	}

	// Output to both file and stdout
	multiWriter := io.MultiWriter(os.Stdout, fileLogger)
	log.SetOutput(multiWriter)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(log.InfoLevel)
}

func main() {
	configPath := flag.String("config", "qosroute_config.toml", "path to the toml config file")
	mode := flag.String("mode", "solve", "solve | experiment")
	engineName := flag.String("engine", adapter.QLearning, "route-search engine for solve mode")
	src := flag.Int("src", -1, "source node for solve mode (defaults to the first demand)")
	dst := flag.Int("dst", -1, "destination node for solve mode")
	demandBW := flag.Float64("bw", 0, "minimum bandwidth for solve mode")
	runs := flag.Int("runs", 0, "independent runs for solve mode (defaults to experiment.runs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading configuration failed, err:%v", err)
	}

	graph, demands, err := topology.Load(cfg.Topology.NodeFile, cfg.Topology.EdgeFile, cfg.Topology.DemandFile)
	if err != nil {
		log.Fatalf("loading topology failed, err:%v", err)
	}

	switch *mode {
	case "solve":
		demand := common.Demand{Src: *src, Dst: *dst, BandwidthNeeded: *demandBW}
		if *src < 0 || *dst < 0 {
			if len(demands) == 0 {
				log.Fatalf("no src/dst given and the demand file is empty")
			}
			demand = demands[0]
			log.Infof("No src/dst given, using demand %d: %d -> %d (bw >= %v)",
				demand.ID, demand.Src, demand.Dst, demand.BandwidthNeeded)
		}

		factory, err := engineFactory(cfg, *engineName)
		if err != nil {
			log.Fatalf("resolving engine failed, err:%v", err)
		}

		n := *runs
		if n <= 0 {
			n = cfg.Experiment.Runs
		}
		best := multi_run.BestOfN(factory, graph, cfg.Weights, demand.Src, demand.Dst, demand.BandwidthNeeded,
			multi_run.Options{Runs: n, Workers: cfg.Experiment.Workers})

		if !best.Valid {
			log.Warnf("No feasible route: %s", best.Err)
			return
		}
		log.Infof("Best route: %s", experiment.PathString(best.Path))
		log.Infof("  total_cost=%.6f total_delay=%.3f reliability=%.6f bottleneck_bw=%.3f hops=%d",
			best.TotalCost, best.TotalDelay, best.TotalReliability, best.BottleneckBW, best.HopCount)

	case "experiment":
		harness := experiment.New(graph, demands, cfg.Engine, cfg.Experiment)
		if cfg.Database.Enabled {
			db, err := middleware.ConnectToDB(cfg.Database)
			if err != nil {
				log.Fatalf("connecting to database failed, err:%v", err)
			}
			defer db.Close()
			harness = harness.WithDB(db)
		}
		if _, err := harness.Run(); err != nil {
			log.Fatalf("experiment batch failed, err:%v", err)
		}

	default:
		log.Fatalf("unknown mode %q, want solve or experiment", *mode)
	}
}

// engineFactory resolves an engine name to a factory carrying the configured
// hyperparameters
func engineFactory(cfg *config.Config, name string) (common.EngineFactory, error) {
	switch name {
	case adapter.QLearning:
		return adapter.QLearningFactory(cfg.Engine.QLearning), nil
	case adapter.AntColony:
		return adapter.AntColonyFactory(cfg.Engine.AntColony), nil
	case adapter.Genetic:
		return adapter.GeneticFactory(cfg.Engine.Genetic), nil
	default:
		return common.GetGlobal(name)
	}
}
