package config

import (
	"fmt"
	"time"

	"github.com/limaJavier/labtimetabling/pkg/engine"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/solver"
)

// SolverConfig bounds the search. Negative budgets disable the bound, zero picks the default
type SolverConfig struct {
	MaxSearchSteps int           `json:"max_search_steps"`
	TimeBudget     time.Duration `json:"time_budget"`
	NogoodCapacity int           `json:"nogood_capacity"`
	CommitPartial  bool          `json:"commit_partial"`
	SoftWeights    WeightsConfig `json:"soft_weights"`
}

type WeightsConfig struct {
	PreferredSlot   float64 `json:"preferred_slot"`
	GapMinimization float64 `json:"gap_minimization"`
	RoomBalance     float64 `json:"room_balance"`
}

func (c *SolverConfig) SetDefaults() {
	defaults := solver.DefaultOptions()
	if c.MaxSearchSteps == 0 {
		c.MaxSearchSteps = defaults.MaxSearchSteps
	}
	if c.TimeBudget == 0 {
		c.TimeBudget = defaults.TimeBudget
	}
	if c.NogoodCapacity == 0 {
		c.NogoodCapacity = defaults.NoGoodCapacity
	}
	// Weights are defaulted as a whole so a single weight can still be turned off
	if c.SoftWeights == (WeightsConfig{}) {
		c.SoftWeights = WeightsConfig(defaults.Weights)
	}
}

func (c SolverConfig) Validate() error {
	weights := c.SoftWeights
	if weights.PreferredSlot < 0 || weights.GapMinimization < 0 || weights.RoomBalance < 0 {
		return fmt.Errorf("soft weights must not be negative: %+v", weights)
	}
	return nil
}

// Options turns the configuration into engine options. The term comes from the catalog input
func (c SolverConfig) Options(term model.Term) engine.Options {
	return engine.Options{
		Solver: solver.Options{
			MaxSearchSteps: max(c.MaxSearchSteps, 0),
			TimeBudget:     max(c.TimeBudget, 0),
			NoGoodCapacity: max(c.NogoodCapacity, 0),
			Weights:        model.SoftWeights(c.SoftWeights),
		},
		CommitPartial: c.CommitPartial,
		Term:          term,
	}
}
