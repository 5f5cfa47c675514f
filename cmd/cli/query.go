package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/pkg/schedule"
)

var (
	queryDocument string
	queryFilter   schedule.Filter
	queryDay      int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List the sessions of a saved schedule by room, professor, group, subject or day",
	RunE:  querySchedule,
}

func init() {
	queryCmd.Flags().StringVarP(&queryDocument, "schedule", "s", "", "schedule document, defaults to store.path")
	queryCmd.Flags().StringVar(&queryFilter.Room, "room", "", "room id")
	queryCmd.Flags().StringVar(&queryFilter.Professor, "professor", "", "professor id")
	queryCmd.Flags().StringVar(&queryFilter.Group, "group", "", "student group id")
	queryCmd.Flags().StringVar(&queryFilter.Subject, "subject", "", "subject id")
	queryCmd.Flags().IntVar(&queryDay, "day", -1, "weekday, 0 is Monday")
	rootCmd.AddCommand(queryCmd)
}

func querySchedule(cmd *cobra.Command, args []string) error {
	s, err := newSession("query-command")
	if err != nil {
		return err
	}
	defer s.close()

	path := queryDocument
	if path == "" {
		path = s.cfg.Store.Path
	}
	persisted, err := readDocument(path)
	if err != nil {
		return fmt.Errorf("cannot read schedule: %w", err)
	}

	// The document was verified when it was committed
	persisted.Valid = true
	store := s.engine.Store()
	if err := store.Restore(persisted); err != nil {
		return err
	}

	filter := queryFilter
	if queryDay >= 0 {
		filter.Day = &queryDay
	}
	sessions := store.Query(filter)
	printSessions(cmd.OutOrStdout(), sessions)
	fmt.Fprintf(cmd.OutOrStdout(), "%v sessions in version %v\n", len(sessions), persisted.Version)
	return nil
}
