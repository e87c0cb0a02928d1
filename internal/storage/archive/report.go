// internal/storage/archive/report.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/tradewind/internal/engine"
)

// Report is an archived backtest run.
type Report struct {
	Strategy   string         `json:"strategy"`
	Symbol     string         `json:"symbol"`
	Interval   string         `json:"interval"`
	Bars       int            `json:"bars"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Result     *engine.Result `json:"result"`
}

// Archiver writes backtest reports to a Storage backend as JSON, keyed by
// reports/<strategy>/<symbol>/<finish timestamp>.json.
type Archiver struct {
	storage Storage
}

// NewArchiver creates an archiver over the given backend.
func NewArchiver(storage Storage) *Archiver {
	return &Archiver{storage: storage}
}

func reportPath(report Report) string {
	return fmt.Sprintf("reports/%s/%s/%s.json",
		report.Strategy, report.Symbol, report.FinishedAt.UTC().Format("20060102T150405Z"))
}

// Save archives the report and returns its storage path.
func (a *Archiver) Save(ctx context.Context, report Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := reportPath(report)
	if err := a.storage.Put(ctx, path, data); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Load reads a previously archived report.
func (a *Archiver) Load(ctx context.Context, path string) (*Report, error) {
	data, err := a.storage.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}
	return &report, nil
}

// List returns the archived report paths for a strategy, newest last.
func (a *Archiver) List(ctx context.Context, strategy string) ([]string, error) {
	paths, err := a.storage.List(ctx, "reports/"+strategy)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
