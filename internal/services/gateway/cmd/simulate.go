package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq"
)

var (
	simulateTicks   int
	simulatePublish bool
	simulateSeed    uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the soil-moisture simulator headless",
	Long: `Run one soil-moisture simulator without the HTTP surface.

Every tick is logged. With --publish the snapshots and the periodic
aggregates are also sent to the MQTT broker configured under mqtt.*.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simulateTicks, "ticks", "n", 0, "stop after n ticks (0 runs until interrupted)")
	simulateCmd.Flags().BoolVar(&simulatePublish, "publish", false, "publish snapshots and aggregates over MQTT")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 0, "random seed (0 picks a random one)")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := simulatorOptions(cfg.Simulator, logger)
	if simulateSeed != 0 {
		opts.Source = irrigation_simulator.NewRandomSource(&simulateSeed)
	}
	sim := irrigation_simulator.NewSimulator(opts)
	sim.OnTick(logSnapshot(logger))

	g, gctx := errgroup.WithContext(ctx)
	if simulatePublish {
		client, err := rabbitmq.NewRabbitMQConn(ctx, mqttConfig(cfg.MQTT), logger)
		if err != nil {
			return err
		}
		snapTopic := cfg.Simulator.Topic(cfg.MQTT.SnapshotTopic)
		sim.OnTick(irrigation_simulator.SnapshotPublisher(rabbitmq.NewPublisher(client, snapTopic, 0, logger), logger))

		agg := irrigation_simulator.NewAggregator(
			rabbitmq.NewPublisher(client, cfg.Simulator.Topic(cfg.MQTT.AggregateTopic), 1, logger),
			cfg.MQTT.AggregateInterval, logger)
		sim.OnTick(agg.Observe)
		g.Go(func() error { return agg.Start(gctx) })
	}

	runCtx, cancel := context.WithCancel(gctx)
	if simulateTicks > 0 {
		cancel()
		runCtx, cancel = context.WithTimeout(gctx, time.Duration(simulateTicks)*cfg.Simulator.TickInterval+cfg.Simulator.TickInterval/2)
	}
	defer cancel()

	if err := sim.Start(runCtx); err != nil {
		return err
	}
	<-runCtx.Done()
	sim.Stop()

	stop()
	return g.Wait()
}
