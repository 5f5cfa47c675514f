package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/internal/csvio"
)

var (
	exportDocument  string
	exportOut       string
	exportDelimiter string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a saved schedule as CSV rows",
	RunE:  exportSchedule,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDocument, "schedule", "s", "", "schedule document, defaults to store.path")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "CSV file to write, standard output when empty")
	exportCmd.Flags().StringVar(&exportDelimiter, "delimiter", ",", "CSV delimiter")
	rootCmd.AddCommand(exportCmd)
}

func exportSchedule(cmd *cobra.Command, args []string) error {
	s, err := newSession("export-command")
	if err != nil {
		return err
	}
	defer s.close()

	delimiter, err := parseDelimiter(exportDelimiter)
	if err != nil {
		return err
	}
	path := exportDocument
	if path == "" {
		path = s.cfg.Store.Path
	}
	persisted, err := readDocument(path)
	if err != nil {
		return fmt.Errorf("cannot read schedule: %w", err)
	}

	if exportOut == "" {
		return csvio.ExportSchedule(cmd.OutOrStdout(), persisted, delimiter)
	}
	out, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	if err := csvio.ExportSchedule(out, persisted, delimiter); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
