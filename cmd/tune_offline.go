package cmd

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/spf13/cobra"

	"github.com/opossum-db/indextuner/config"
	"github.com/opossum-db/indextuner/planio"
	"github.com/opossum-db/indextuner/tuner"
	"github.com/opossum-db/indextuner/tuning"
	"github.com/opossum-db/indextuner/utils"
)

type tuneOfflineCmdOpt struct {
	configPath string
	savePath   string
}

// NewTuneOfflineCmd builds the "tune-offline" command: run exactly one
// round against the configured storage control surface, print the
// resulting operations, and optionally save them as a DDL script -
// the offline, single-shot counterpart to "tune", in the shape of the
// teacher's own advise-offline command.
func NewTuneOfflineCmd() *cobra.Command {
	var opt tuneOfflineCmdOpt
	cmd := &cobra.Command{
		Use:   "tune-offline",
		Short: "run a single tuning round and print the resulting operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTuneOffline(opt)
		},
	}
	cmd.Flags().StringVar(&opt.configPath, "config", "", "path to a YAML config file; defaults are used when empty")
	cmd.Flags().StringVar(&opt.savePath, "save-path", "", "directory to save the resulting DDL script to; skipped when empty")
	return cmd
}

func runTuneOffline(opt tuneOfflineCmdOpt) error {
	cfg, err := loadOrDefaultConfig(opt.configPath)
	if err != nil {
		return err
	}

	surface, err := newSurface(cfg)
	if err != nil {
		return err
	}

	cache := planio.NewGDFSCache(cfg.PlanCache.Capacity)
	d := tuner.New(surface, cache, evaluatorConfigFrom(cfg), driverConfigFrom(cfg), nil)

	result, err := d.RunRound(context.Background())
	if err != nil {
		return err
	}

	printAndSaveRoundResult(opt.savePath, result, cfg)
	return nil
}

func printAndSaveRoundResult(savePath string, result *tuner.RoundResult, cfg *config.Config) {
	fmt.Println("===================== index tuner result =====================")
	defer fmt.Println("===================== index tuner result =====================")

	ops := append([]tuning.TuningOperation(nil), result.Operations...)
	sort.Slice(ops, func(i, j int) bool { return ops[i].Ref.Key() < ops[j].Ref.Key() })

	ddl := ""
	for _, op := range ops {
		switch op.Kind {
		case tuning.OperationCreate:
			ddl += fmt.Sprintf("-- create %s index on %s\n", op.IdxKind, op.Ref)
		case tuning.OperationDrop:
			ddl += fmt.Sprintf("-- drop %s index on %s\n", op.IdxKind, op.Ref)
		}
	}
	fmt.Println(ddl)
	fmt.Printf("evaluated=%d selected=%d budget_used=%d/%d bytes status=%s duration=%s\n",
		result.ChoicesEvaluated, result.ChoicesSelected, result.BudgetUsedBytes, cfg.Round.MemoryBudgetBytes, result.Status, result.Duration)
	if result.MVCCGatedScans > 0 {
		fmt.Printf("skipped %d MVCC-gated plan cache entries\n", result.MVCCGatedScans)
	}
	if result.OperationErrors != nil {
		fmt.Printf("operation errors: %v\n", result.OperationErrors)
	}

	if savePath != "" {
		utils.SaveContentTo(path.Join(savePath, "ddl.sql"), ddl)
	}
}
