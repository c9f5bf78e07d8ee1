//go:build !integration

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-osyd/atlas-cli/internal/config"
	"github.com/nyc-osyd/atlas-cli/internal/model"
)

func newFilterCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addFilterFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestFilterFromFlags_Empty(t *testing.T) {
	f, err := filterFromFlags(newFilterCmd(t))
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

func TestFilterFromFlags_BoroughUppercased(t *testing.T) {
	f, err := filterFromFlags(newFilterCmd(t, "--borough", "brooklyn", "--district", "15"))
	require.NoError(t, err)
	assert.Equal(t, "BROOKLYN", f.Borough)
	assert.Equal(t, "15", f.DistrictID)
}

func TestFilterFromFlags_Status(t *testing.T) {
	f, err := filterFromFlags(newFilterCmd(t, "--status", "fundamentals_only"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFundamentalsOnly, f.TrainingStatus)

	_, err = filterFromFlags(newFilterCmd(t, "--status", "done"))
	assert.ErrorContains(t, err, "invalid --status")
}

func TestCriteriaFromFlags_ConfigDefaultsAndOverrides(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })
	cfg = &config.Config{
		Priority: config.PriorityConfig{HighSTH: true, HighENI: true, Untrained: true},
	}

	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.Bool("high-sth", false, "")
	f.Bool("high-eni", false, "")
	f.Bool("untrained", false, "")
	f.Bool("fundamentals-only", false, "")

	require.NoError(t, f.Parse(nil))
	got := criteriaFromFlags(cmd)
	assert.Equal(t, model.PriorityCriteria{HighSTH: true, HighENI: true, Untrained: true}, got)

	// An explicit flag beats the config value, even when set to false.
	require.NoError(t, f.Parse([]string{"--high-sth=false", "--fundamentals-only"}))
	got = criteriaFromFlags(cmd)
	assert.False(t, got.HighSTH)
	assert.True(t, got.HighENI)
	assert.True(t, got.FundamentalsOnly)
}
