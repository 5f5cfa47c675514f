package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/pkg/schedule"
)

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Compare two saved schedules session by session",
	Args:  cobra.ExactArgs(2),
	RunE:  diffSchedules,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func diffSchedules(cmd *cobra.Command, args []string) error {
	older, err := readDocument(args[0])
	if err != nil {
		return fmt.Errorf("cannot read %v: %w", args[0], err)
	}
	newer, err := readDocument(args[1])
	if err != nil {
		return fmt.Errorf("cannot read %v: %w", args[1], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Version %v -> %v\n", older.Version, newer.Version)
	printDiff(cmd.OutOrStdout(), schedule.Compare(older, newer))
	return nil
}
