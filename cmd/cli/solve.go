package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/pkg/solver"
)

var (
	solveCatalog catalogFlags
	solveOut     string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a catalog from scratch and save the committed schedule",
	RunE:  solveSchedule,
}

func init() {
	solveCatalog.register(solveCmd)
	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "", "schedule document to write, defaults to store.path")
	rootCmd.AddCommand(solveCmd)
}

func solveSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession("solve-command")
	if err != nil {
		return err
	}
	defer s.close()

	input, err := solveCatalog.load()
	if err != nil {
		return err
	}

	result, err := s.engine.Solve(ctx, input.Catalog, input.Calendar, s.cfg.Solver.Options(input.Term))
	printResult(cmd.OutOrStdout(), result)
	if err != nil {
		return err
	}
	if !result.Committed {
		return fmt.Errorf("nothing committed, run ended %v", result.Status)
	}

	out := solveOut
	if out == "" {
		out = s.cfg.Store.Path
	}
	if err := writeDocument(out, result.Schedule); err != nil {
		return fmt.Errorf("cannot save schedule: %w", err)
	}
	s.log.Infof("schedule version %v saved to %v", result.Schedule.Version, out)
	if result.Status == solver.PartiallySolved {
		fmt.Fprintf(cmd.OutOrStdout(), "Partial schedule saved to %v\n", out)
	}
	return nil
}
