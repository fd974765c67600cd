package main

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/engine"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/lookup"
	"FlowTagger/internal/metrics"
	"FlowTagger/internal/model"
	"FlowTagger/internal/protocol"
	"FlowTagger/internal/report"
	_ "FlowTagger/internal/writer" // Registers the optional report writers
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (default "+defaultConfigPath+" if present).")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] <flow_log_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	outputPath, err := run(cfg, flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("Output written to %s\n", outputPath)
}

// loadConfig reads the given config file. Without an explicit path the default
// location is tried, falling back to built-in defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		return nil, err
	}
	log.Println("Configuration loaded successfully.")
	return cfg, nil
}

// run classifies one flow-log file and writes its report. Nothing is written
// when either input file is missing.
func run(cfg *config.Config, flowLogArg string) (string, error) {
	// 1. Check the writer types so a bad config fails before any output
	if err := factory.Validate(cfg); err != nil {
		return "", err
	}

	// 2. Load the lookup table
	table, err := lookup.Load(cfg.Paths.LookupTablePath())
	if err != nil {
		return "", err
	}
	log.Printf("Loaded %d lookup entries.", table.Len())

	// 3. Classify and aggregate the flow log
	start := time.Now()
	rep, err := engine.Run(cfg.Paths.Resolve(flowLogArg), table, protocol.Default())
	if err != nil {
		return "", err
	}
	rep.Source = flowLogArg
	elapsed := time.Since(start)
	log.Printf("Processed %d lines: %d accepted, %d rejected in %s.",
		rep.Stats.Lines, rep.Stats.Accepted, rep.Stats.RejectedTotal(), elapsed)

	// 4. Write the text report
	outputPath := cfg.Paths.OutputPath(report.OutputFileName(flowLogArg))
	if err := report.WriteFile(outputPath, rep); err != nil {
		return "", err
	}

	// 5. Export metrics and feed the optional writers. The report already exists,
	// so failures here are only logged.
	if cfg.Metrics.TextfilePath != "" {
		m := metrics.NewRunMetrics()
		m.Observe(rep, elapsed)
		if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	writers, err := factory.Create(cfg)
	if err != nil {
		return "", err
	}
	defer closeWriters(writers)
	for _, w := range writers {
		if err := w.Write(rep); err != nil {
			log.Printf("Warning: writer '%s' failed: %v", w.Name(), err)
		}
	}

	return outputPath, nil
}

func closeWriters(writers []model.Writer) {
	for _, w := range writers {
		if err := w.Close(); err != nil {
			log.Printf("Warning: closing writer '%s': %v", w.Name(), err)
		}
	}
}
