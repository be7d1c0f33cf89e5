// Command simrunner drives one simulation run: it builds the exchange and
// the configured agent population, hands them to the kernel, and prints
// the end-of-run summary, replacing the teacher's fiber HTTP server
// entrypoint with a batch driver per the simulator's non-goal on network
// transport.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"simmarket/src/agents/noise"
	"simmarket/src/exchange"
	"simmarket/src/kernel"
	"simmarket/src/logger"
	"simmarket/src/oracle"
	"simmarket/src/orders"
	"simmarket/src/scenario"
	"simmarket/src/simtime"
	"simmarket/src/summary"
)

func main() {
	logger.InitLogger()
	defer logger.CloseLogger()
	log := logger.GetLogger()

	scenarioPath := flag.StringP("scenario", "s", "", "path to a YAML scenario file")
	seedFlag := flag.Int64("seed", 1, "RNG seed, overridden by the scenario file if set there")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "simrunner: -scenario is required")
		os.Exit(2)
	}

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scenario")
	}
	if err := sc.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid scenario")
	}
	if sc.Seed == 0 {
		sc.Seed = *seedFlag
	}

	var orc oracle.Oracle
	if len(sc.OracleFiles) > 0 {
		fileOracle, err := oracle.NewFileOracle(sc.OracleFiles)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load oracle files")
		}
		orc = fileOracle
	}

	startTime := simtime.FromNanos(sc.StartTime)
	stopTime := simtime.FromNanos(sc.StopTime)

	mktOpenNs, err := sc.MarketOpenNanos()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scenario")
	}
	mktCloseNs, err := sc.MarketCloseNanos()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scenario")
	}

	exch := exchange.New(0, exchange.Config{
		Symbols:       sc.Symbols,
		MktOpen:       simtime.FromNanos(mktOpenNs),
		MktClose:      simtime.FromNanos(mktCloseNs),
		PipelineDelay: sc.PipelineDelay,
		StreamHistory: sc.StreamHistory,
		BookLogging:   sc.BookLogging,
		BookLogDepth:  sc.BookLogDepth,
		LogOrders:     sc.LogOrders,
	})

	agents := []kernel.Agent{exch}
	for i := 0; i < sc.NoiseAgents.Count; i++ {
		id := len(agents)
		symbol := sc.Symbols[i%len(sc.Symbols)]

		jitter := int64(0)
		if sc.NoiseAgents.WakeupSpreadNs > 0 {
			jitter = orders.NewSubRandomSource(sc.Seed, id).Int63n(sc.NoiseAgents.WakeupSpreadNs)
		}
		wakeupTime := startTime.Add(jitter)

		agents = append(agents, noise.New(id, symbol, wakeupTime, sc.NoiseAgents.StartingCash, sc.LogOrders, sc.Seed))
	}

	k := kernel.New(log)
	customState, err := k.Run(kernel.RunConfig{
		Agents:                  agents,
		StartTime:               startTime,
		StopTime:                stopTime,
		Seed:                    sc.Seed,
		DefaultComputationDelay: sc.DefaultComputationDelay,
		DefaultLatency:          sc.DefaultLatency,
		Oracle:                  orc,
		NumSimulations:          1,
	})

	if _, ok := err.(*kernel.KernelFatalError); ok {
		log.Error().Err(err).Msg("simulation aborted")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	lastTrade, metrics := exch.Summary()
	report := summary.Build(summary.NewRunID(), lastTrade, metrics, customState)
	fmt.Print(report.String())
}
