package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/internal/csvio"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/schedule"
)

// Catalog source flags shared by solve and repair
type catalogFlags struct {
	input     string
	csvDir    string
	delimiter string
	termStart string
	termEnd   string
}

func (flags *catalogFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "JSON catalog with term and calendar")
	cmd.Flags().StringVar(&flags.csvDir, "csv", "", "directory of CSV catalog files, used instead of --input")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", ",", "CSV delimiter")
	cmd.Flags().StringVar(&flags.termStart, "term-start", "", "first term date (YYYY-MM-DD) of a CSV catalog")
	cmd.Flags().StringVar(&flags.termEnd, "term-end", "", "last term date (YYYY-MM-DD) of a CSV catalog")
}

func (flags *catalogFlags) load() (model.Input, error) {
	switch {
	case flags.input != "" && flags.csvDir != "":
		return model.Input{}, fmt.Errorf("--input and --csv are mutually exclusive")
	case flags.input != "":
		input, err := model.InputFromJson(flags.input)
		if err != nil {
			return model.Input{}, fmt.Errorf("cannot parse input file: %w", err)
		}
		return input, nil
	case flags.csvDir != "":
		delimiter, err := parseDelimiter(flags.delimiter)
		if err != nil {
			return model.Input{}, err
		}
		raw, err := csvio.LoadCatalog(flags.csvDir, delimiter)
		if err != nil {
			return model.Input{}, err
		}
		return model.ProcessRawInput(model.RawInput{
			RawCatalog: raw,
			Term:       model.Term{Start: flags.termStart, End: flags.termEnd},
		})
	}
	return model.Input{}, fmt.Errorf("a catalog must be given with --input or --csv")
}

func parseDelimiter(delimiter string) (rune, error) {
	if utf8.RuneCountInString(delimiter) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character: %q", delimiter)
	}
	r, _ := utf8.DecodeRuneInString(delimiter)
	return r, nil
}

func readDocument(path string) (schedule.Schedule, error) {
	file, err := os.Open(path)
	if err != nil {
		return schedule.Schedule{}, err
	}
	defer file.Close()
	return schedule.Load(file)
}

func writeDocument(path string, committed schedule.Schedule) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := schedule.Save(file, committed); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
