package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

// CSVProvider reads bars from per-symbol CSV files in a directory, named
// <SYMBOL>.csv. Expected header: time,open,high,low,close,volume with time
// as RFC3339 or a unix timestamp. Backtests replay from these files.
type CSVProvider struct {
	dir      string
	interval string
}

// NewCSV creates a provider rooted at dir; interval is stamped on the bars.
func NewCSV(dir, interval string) *CSVProvider {
	return &CSVProvider{dir: dir, interval: interval}
}

func (p *CSVProvider) Name() string {
	return "csv"
}

// FetchBars loads the symbol's file and returns the last limit bars, oldest
// first. A limit of 0 returns the whole file.
func (p *CSVProvider) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]core.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	defer f.Close()

	bars, err := p.parse(f, symbol)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (p *CSVProvider) parse(r io.Reader, symbol string) ([]core.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var bars []core.Bar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrProviderFailed, err)
		}
		line++

		// Skip a header row
		if line == 1 && strings.EqualFold(record[0], "time") {
			continue
		}
		if len(record) < 6 {
			return nil, core.WrapError(core.ErrProviderFailed,
				fmt.Errorf("%s.csv line %d: want 6 columns, got %d", symbol, line, len(record)))
		}

		ts, err := parseTime(record[0])
		if err != nil {
			return nil, core.WrapError(core.ErrProviderFailed,
				fmt.Errorf("%s.csv line %d: %w", symbol, line, err))
		}

		values := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, core.WrapError(core.ErrProviderFailed,
					fmt.Errorf("%s.csv line %d: %w", symbol, line, err))
			}
			values[i] = v
		}

		bars = append(bars, core.Bar{
			Symbol:   symbol,
			Interval: p.interval,
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			Volume:   int64(values[4]),
			Time:     ts,
		})
	}
	return bars, nil
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
