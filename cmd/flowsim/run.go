package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/flowkit/boundedbuf/pipeline"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run a producer/consumer simulation over a bounded buffer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration `FILE`"},
			&cli.IntFlag{Name: "capacity", Usage: "buffer capacity"},
			&cli.IntFlag{Name: "producers", Usage: "number of producer units"},
			&cli.IntFlag{Name: "consumers", Usage: "number of consumer units"},
			&cli.IntFlag{Name: "items", Usage: "total items to produce"},
			&cli.StringFlag{Name: "backend", Usage: "buffer backend: cond or chan"},
			&cli.Int64Flag{Name: "seed", Usage: "delay generator seed (0 = derive from clock)"},
			&cli.IntFlag{Name: "producer-delay-min", Usage: "minimum producer delay in `MS`"},
			&cli.IntFlag{Name: "producer-delay-max", Usage: "maximum producer delay in `MS`"},
			&cli.IntFlag{Name: "consumer-delay-min", Usage: "minimum consumer delay in `MS`"},
			&cli.IntFlag{Name: "consumer-delay-max", Usage: "maximum consumer delay in `MS`"},
			&cli.StringFlag{Name: "log", Usage: "write JSON event log to `FILE`"},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg := pipeline.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := pipeline.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	// Flags override file values.
	if c.IsSet("capacity") {
		cfg.Capacity = c.Int("capacity")
	}
	if c.IsSet("producers") {
		cfg.Producers = c.Int("producers")
	}
	if c.IsSet("consumers") {
		cfg.Consumers = c.Int("consumers")
	}
	if c.IsSet("items") {
		cfg.TotalItems = c.Int("items")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Int64("seed")
	}
	if c.IsSet("producer-delay-min") {
		cfg.ProducerDelayMinMs = c.Int("producer-delay-min")
	}
	if c.IsSet("producer-delay-max") {
		cfg.ProducerDelayMaxMs = c.Int("producer-delay-max")
	}
	if c.IsSet("consumer-delay-min") {
		cfg.ConsumerDelayMinMs = c.Int("consumer-delay-min")
	}
	if c.IsSet("consumer-delay-max") {
		cfg.ConsumerDelayMaxMs = c.Int("consumer-delay-max")
	}

	if path := c.String("log"); path != "" {
		log, err := pipeline.OpenEventLog(path)
		if err != nil {
			return fmt.Errorf("opening event log: %w", err)
		}
		defer log.Close()
		cfg.Log = log
	}

	report, err := pipeline.Run(c.Context, cfg)
	if report != nil {
		printReport(report)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("run failed: %v", err), 1)
	}
	if !report.Match {
		return cli.Exit("item accounting mismatch", 1)
	}
	return nil
}

func printReport(r *pipeline.Report) {
	fmt.Printf("Run %s finished in %s\n", r.RunID, r.Duration.Round(0))
	fmt.Printf("Items produced: %d\n", r.Produced)
	fmt.Printf("Items consumed: %d\n", r.Consumed)
	fmt.Printf("Final buffer size: %d\n", r.FinalBufferLen)
	fmt.Printf("Multisets match: %v\n", r.Match)
	for _, p := range r.Producers {
		fmt.Printf("  %s -> %d items\n", p.Name, p.Items)
	}
	for _, c := range r.Consumers {
		fmt.Printf("  %s -> %d items\n", c.Name, c.Items)
	}
}
