package config

import "fmt"

const defaultHistory = 8

type StoreConfig struct {
	// History is the number of committed versions retained for diffs.
	History int `json:"history"`
	// Path is the schedule document the CLI reads and writes.
	Path string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.History == 0 {
		c.History = defaultHistory
	}
	if c.Path == "" {
		c.Path = "schedule.json"
	}
}

func (c StoreConfig) Validate() error {
	if c.History < 1 {
		return fmt.Errorf("history must keep at least one version, got %v", c.History)
	}
	return nil
}
