package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/repair"
)

var (
	repairCatalog   catalogFlags
	repairDocument  string
	removeProfessor string
	addProfessor    string
	offlineRoom     string
	changeSessions  string
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Apply one catalog change to a saved schedule, moving only the sessions it affects",
	RunE:  repairSchedule,
}

func init() {
	repairCatalog.register(repairCmd)
	repairCmd.Flags().StringVarP(&repairDocument, "schedule", "s", "", "schedule document to repair, defaults to store.path")
	repairCmd.Flags().StringVar(&removeProfessor, "remove-professor", "", "professor id to remove")
	repairCmd.Flags().StringVar(&addProfessor, "add-professor", "", "professor to add, as a JSON object")
	repairCmd.Flags().StringVar(&offlineRoom, "offline-room", "", "room id to take offline")
	repairCmd.Flags().StringVar(&changeSessions, "sessions", "", "new weekly session count of a subject, as SUBJECT=COUNT")
	repairCmd.MarkFlagsMutuallyExclusive("remove-professor", "add-professor", "offline-room", "sessions")
	rootCmd.AddCommand(repairCmd)
}

func parseDelta() (repair.Delta, error) {
	switch {
	case removeProfessor != "":
		return repair.RemoveProfessor(removeProfessor), nil
	case offlineRoom != "":
		return repair.TakeRoomOffline(offlineRoom), nil
	case addProfessor != "":
		var professor model.Professor
		if err := json.Unmarshal([]byte(addProfessor), &professor); err != nil {
			return repair.Delta{}, fmt.Errorf("invalid professor: %w", err)
		}
		return repair.AddProfessor(professor), nil
	case changeSessions != "":
		subject, count, ok := strings.Cut(changeSessions, "=")
		if !ok {
			return repair.Delta{}, fmt.Errorf("sessions change must read SUBJECT=COUNT: %q", changeSessions)
		}
		sessions, err := strconv.Atoi(count)
		if err != nil {
			return repair.Delta{}, fmt.Errorf("invalid session count %q: %w", count, err)
		}
		return repair.ChangeSessions(subject, sessions), nil
	}
	return repair.Delta{}, nil
}

func repairSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession("repair-command")
	if err != nil {
		return err
	}
	defer s.close()

	delta, err := parseDelta()
	if err != nil {
		return err
	}
	input, err := repairCatalog.load()
	if err != nil {
		return err
	}
	path := repairDocument
	if path == "" {
		path = s.cfg.Store.Path
	}
	persisted, err := readDocument(path)
	if err != nil {
		return fmt.Errorf("cannot read schedule: %w", err)
	}

	options := s.cfg.Solver.Options(input.Term)
	if err := s.engine.Restore(persisted, input.Catalog, input.Calendar, options); err != nil {
		return err
	}
	result, err := s.engine.Repair(ctx, delta)
	printResult(cmd.OutOrStdout(), result)
	if err != nil {
		return err
	}
	if !result.Committed {
		fmt.Fprintf(cmd.OutOrStdout(), "Schedule version %v kept\n", persisted.Version)
		return nil
	}

	diff, err := s.engine.Store().Diff(persisted.Version, result.Schedule.Version)
	if err != nil {
		return err
	}
	printDiff(cmd.OutOrStdout(), diff)
	if err := writeDocument(path, result.Schedule); err != nil {
		return fmt.Errorf("cannot save schedule: %w", err)
	}
	s.log.Infof("repaired schedule version %v saved to %v", result.Schedule.Version, path)
	return nil
}
