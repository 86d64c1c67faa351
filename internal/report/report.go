// Package report writes a YAML summary of a pipeline run for the audit
// trail kept alongside the municipal extracts.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Report summarizes one pipeline run.
type Report struct {
	Pipeline   string         `yaml:"pipeline"`
	StartedAt  time.Time      `yaml:"started_at"`
	Duration   string         `yaml:"duration"`
	Column     string         `yaml:"column"`
	Inputs     []string       `yaml:"inputs"`
	Output     string         `yaml:"output"`
	Counts     map[string]int `yaml:"counts"`
	Unchanged  []string       `yaml:"unchanged,omitempty"`
	ConfigFile string         `yaml:"config_file,omitempty"`
}

// New starts a report for pipeline at the current time.
func New(pipeline, column string) *Report {
	return &Report{
		Pipeline:  pipeline,
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Column:    column,
		Counts:    make(map[string]int),
	}
}

// Finish records the elapsed time since the report was started.
func (r *Report) Finish() {
	r.Duration = time.Since(r.StartedAt).Truncate(time.Millisecond).String()
}

// Write stores r at path. An empty path is a no-op.
func Write(path string, r *Report) error {
	if path == "" {
		return nil
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
