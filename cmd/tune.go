package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/opossum-db/indextuner/catalog"
	"github.com/opossum-db/indextuner/config"
	"github.com/opossum-db/indextuner/metrics"
	"github.com/opossum-db/indextuner/planio"
	"github.com/opossum-db/indextuner/tuner"
	"github.com/opossum-db/indextuner/tuning"
	"github.com/opossum-db/indextuner/utils"
)

type tuneCmdOpt struct {
	configPath string
}

// NewTuneCmd builds the long-running "tune" command: load a config,
// connect to the storage control surface it names, and run one round per
// configured interval until interrupted.
func NewTuneCmd() *cobra.Command {
	var opt tuneCmdOpt
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "run the index auto-tuning loop continuously",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTuneLoop(opt)
		},
	}
	cmd.Flags().StringVar(&opt.configPath, "config", "", "path to a YAML config file; defaults are used when empty")
	return cmd
}

func runTuneLoop(opt tuneCmdOpt) error {
	cfg, err := loadOrDefaultConfig(opt.configPath)
	if err != nil {
		return err
	}

	surface, err := newSurface(cfg)
	if err != nil {
		return err
	}

	cache := planio.NewGDFSCache(cfg.PlanCache.Capacity)
	m := metrics.New("indextuner")
	d := tuner.New(surface, cache, evaluatorConfigFrom(cfg), driverConfigFrom(cfg), m)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, cfg.Metrics.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Round.Interval)
	defer ticker.Stop()

	utils.Infof("tuner: starting, round interval=%s budget=%d bytes", cfg.Round.Interval, cfg.Round.MemoryBudgetBytes)
	for {
		result, err := d.RunRound(ctx)
		if err == tuner.ErrRoundInProgress {
			// RunRound already logged a warning; nothing more to do.
		} else if err != nil {
			utils.Errorf("tuner: round failed: %v", err)
		} else {
			utils.Infof("tuner: round complete: evaluated=%d selected=%d operations=%d status=%s",
				result.ChoicesEvaluated, result.ChoicesSelected, len(result.Operations), result.Status)
		}

		select {
		case <-ctx.Done():
			utils.Infof("tuner: shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func serveMetrics(addr, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		utils.Errorf("tuner: metrics server stopped: %v", err)
	}
}

func loadOrDefaultConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

func newSurface(cfg *config.Config) (catalog.StorageControlSurface, error) {
	switch cfg.Storage.Driver {
	case "sql":
		return catalog.NewSQLControlSurface(cfg.Storage.DSN)
	case "fake":
		return catalog.NewFake(), nil
	default:
		return nil, fmt.Errorf("tuner: unknown storage driver %q", cfg.Storage.Driver)
	}
}

func evaluatorConfigFrom(cfg *config.Config) tuning.EvaluatorConfig {
	return tuning.EvaluatorConfig{
		SelectivityLike:         cfg.Evaluator.SelectivityLike,
		SelectivityInDefault:    cfg.Evaluator.SelectivityInDefault,
		TypeProposerName:        cfg.Evaluator.TypeProposer,
		ConfidencePenaltyLambda: cfg.Evaluator.ConfidencePenaltyLambda,
	}
}

func driverConfigFrom(cfg *config.Config) tuner.Config {
	mode := planio.ModeLogical
	if cfg.Round.PlanMode == "physical" {
		mode = planio.ModePhysical
	}
	return tuner.Config{
		MemoryBudgetBytes: cfg.Round.MemoryBudgetBytes,
		Timeout:           cfg.Round.Timeout,
		PlanMode:          mode,
	}
}
