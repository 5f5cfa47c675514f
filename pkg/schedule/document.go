package schedule

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"
)

const documentFormat = "lab-schedule/1"

// Document is the persisted form of a schedule
type Document struct {
	Format   string `json:"format" mapstructure:"format"`
	Schedule `mapstructure:",squash"`
}

func Save(writer io.Writer, schedule Schedule) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Document{Format: documentFormat, Schedule: schedule}); err != nil {
		return fmt.Errorf("cannot encode schedule document: %w", err)
	}
	return nil
}

func Load(reader io.Reader) (Schedule, error) {
	var documentJson map[string]any
	if err := json.NewDecoder(reader).Decode(&documentJson); err != nil {
		return Schedule{}, fmt.Errorf("cannot read schedule document: %w", err)
	}

	var document Document
	if err := mapstructure.Decode(documentJson, &document); err != nil {
		return Schedule{}, fmt.Errorf("cannot decode schedule document: %w", err)
	}
	if document.Format != documentFormat {
		return Schedule{}, fmt.Errorf("unsupported schedule document format %q", document.Format)
	}
	return document.Schedule, nil
}
