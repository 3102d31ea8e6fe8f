package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFillsEveryField(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "fake", cfg.Storage.Driver)
	assert.Equal(t, uint64(64*1024*1024), cfg.Round.MemoryBudgetBytes)
	assert.Equal(t, 30*time.Second, cfg.Round.Timeout)
	assert.Equal(t, "logical", cfg.Round.PlanMode)
	assert.Equal(t, 5*time.Minute, cfg.Round.Interval)
	assert.Equal(t, "always-group-key", cfg.Evaluator.TypeProposer)
	assert.Equal(t, 0.0, cfg.Evaluator.ConfidencePenaltyLambda)
	assert.Equal(t, 1024, cfg.PlanCache.Capacity)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
storage:
  driver: sql
  dsn: "root:@tcp(127.0.0.1:4000)/test"
round:
  plan_mode: physical
  memory_budget_bytes: 1048576
`), 0644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Storage.Driver)
	assert.Equal(t, "physical", cfg.Round.PlanMode)
	assert.Equal(t, uint64(1048576), cfg.Round.MemoryBudgetBytes)
	// unspecified fields still get their defaults.
	assert.Equal(t, "always-group-key", cfg.Evaluator.TypeProposer)
}

func TestValidateRejectsSQLDriverWithoutDSN(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "sql"
	cfg.Storage.DSN = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownPlanMode(t *testing.T) {
	cfg := Default()
	cfg.Round.PlanMode = "quantum"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeSelectivity(t *testing.T) {
	cfg := Default()
	cfg.Evaluator.SelectivityLike = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeConfidencePenaltyLambda(t *testing.T) {
	cfg := Default()
	cfg.Evaluator.ConfidencePenaltyLambda = -0.1
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
