// Command macrosim runs the satisficing bank/household/firm economy and
// reports its time series.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"

	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/engine"
	"github.com/talgya/simplemacro/internal/entropy"
	"github.com/talgya/simplemacro/internal/persistence"
)

func main() {
	level := slog.LevelInfo
	if v := os.Getenv("MACROSIM_LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			fmt.Fprintf(os.Stderr, "bad MACROSIM_LOG_LEVEL %q: %v\n", v, err)
			os.Exit(2)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("macrosim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if dir := os.Getenv("MACROSIM_PROFILE"); dir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
	}

	scenario := envOrDefault("MACROSIM_SCENARIO", "baseline")
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return err
	}
	if v := os.Getenv("MACROSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse MACROSIM_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if n := envIntOrDefault("MACROSIM_PERIODS", 0); n > 0 {
		cfg.Periods = uint64(n)
	}
	replicates := envIntOrDefault("MACROSIM_REPLICATES", 1)
	if replicates < 1 {
		replicates = 1
	}

	slog.Info("macrosim: satisficing bank, household and firm",
		"scenario", scenario,
		"periods", humanize.Comma(int64(cfg.Periods)),
		"replicates", replicates,
	)

	var results []engine.Result
	if replicates == 1 {
		sim, err := engine.NewSimulation(cfg)
		if err != nil {
			return err
		}
		if err := sim.Run(); err != nil {
			return err
		}
		results = []engine.Result{sim.Result()}
	} else {
		seeds := replicateSeeds(cfg.Seed, replicates)
		results, err = engine.Sweep(cfg, seeds)
		if err != nil {
			return err
		}
	}

	for _, r := range results {
		summarize(cfg, r)
	}

	// ── Archive ───────────────────────────────────────────────────────
	dbPath := envOrDefault("MACROSIM_DB", "data/macrosim.db")
	if dbPath == "off" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, r := range results {
		c := cfg
		c.Seed = r.Seed
		if _, err := db.SaveRun(scenario, c, r); err != nil {
			return fmt.Errorf("archive seed %d: %w", r.Seed, err)
		}
	}
	slog.Info("archive written", "path", dbPath, "runs", len(results))
	return nil
}

func scenarioConfig(name string) (engine.Config, error) {
	switch name {
	case "baseline":
		return engine.DefaultConfig(), nil
	case "regime-shift":
		return engine.RegimeShiftConfig(), nil
	default:
		return engine.Config{}, fmt.Errorf("unknown scenario %q (want baseline or regime-shift)", name)
	}
}

// replicateSeeds derives one seed per replicate from base. A zero base picks
// a fresh one so the sweep is still reproducible from the logged seeds.
func replicateSeeds(base int64, n int) []int64 {
	if base == 0 {
		base = entropy.CryptoSeed()
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = entropy.Derive(base, int64(i+1))
		if seeds[i] == 0 {
			seeds[i] = 1
		}
	}
	return seeds
}

// summarize logs per-series statistics and block means of the rate. Rates
// are shown in percent.
func summarize(cfg engine.Config, r engine.Result) {
	slog.Info("run summary",
		"seed", r.Seed,
		"periods", humanize.Comma(int64(r.Stats.Periods)),
		"rate_changes", humanize.Comma(int64(r.Stats.RateChanges)),
		"price_changes", humanize.Comma(int64(r.Stats.PriceChanges)),
		"faults", humanize.Comma(int64(r.Stats.Faults)),
	)
	for kind, n := range r.Stats.FaultsByKind {
		slog.Info("faults", "seed", r.Seed, "kind", kind, "count", n)
	}

	for _, s := range r.History.Summarize() {
		scale := 1.0
		name := string(s.Metric)
		if s.Metric == economy.MetricRate {
			scale = 100
			name += "_pct"
		}
		slog.Info("series",
			"seed", r.Seed,
			"metric", name,
			"mean", humanize.Commaf(round(s.Mean*scale)),
			"stddev", humanize.Commaf(round(s.StdDev*scale)),
			"min", humanize.Commaf(round(s.Min*scale)),
			"max", humanize.Commaf(round(s.Max*scale)),
			"last", humanize.Commaf(round(s.Last*scale)),
		)
	}

	block := int(cfg.Periods / 10)
	if block < 1 {
		return
	}
	means := r.History.BlockMeans(economy.MetricRate, block)
	parts := make([]string, len(means))
	for i, m := range means {
		parts[i] = fmt.Sprintf("%.2f", m*100)
	}
	slog.Info("rate block means (%)", "seed", r.Seed, "block", block, "means", strings.Join(parts, " "))
}

func round(x float64) float64 {
	v, _ := strconv.ParseFloat(fmt.Sprintf("%.4f", x), 64)
	return v
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
