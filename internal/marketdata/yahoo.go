package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches symbols like AAPL, MSFT, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// Yahoo fetches bars from the Yahoo Finance chart API.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// NewYahoo creates a Yahoo provider with a bounded request timeout.
func NewYahoo() *Yahoo {
	return &Yahoo{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: yahooBaseURL,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// FetchBars fetches the most recent bars, oldest first. Rows with missing
// quote fields are skipped.
func (y *Yahoo) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]core.Bar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	end := time.Now()
	start := end.Add(-lookback(interval, limit))
	url := fmt.Sprintf("%s/%s?interval=%s&period1=%d&period2=%d",
		y.baseURL, symbol, yahooInterval(interval), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("yahoo status %d for %s", resp.StatusCode, symbol))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("yahoo: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no data for %s", symbol))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no quotes for %s", symbol))
	}
	quotes := r.Indicators.Quote[0]

	bars := make([]core.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quotes.Open) || quotes.Open[i] == nil || quotes.Close[i] == nil {
			continue
		}
		var volume int64
		if quotes.Volume[i] != nil {
			volume = int64(*quotes.Volume[i])
		}
		bars = append(bars, core.Bar{
			Symbol:   symbol,
			Interval: interval,
			Open:     *quotes.Open[i],
			High:     *quotes.High[i],
			Low:      *quotes.Low[i],
			Close:    *quotes.Close[i],
			Volume:   volume,
			Time:     time.Unix(int64(ts), 0).UTC(),
		})
	}

	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

func yahooInterval(interval string) string {
	switch interval {
	case "1m", "5m", "15m", "1h", "1d":
		return interval
	default:
		return "1d"
	}
}

// lookback oversizes the fetch window so the tail still holds limit bars
// after market closures are skipped.
func lookback(interval string, limit int) time.Duration {
	if limit <= 0 {
		limit = 100
	}
	var per time.Duration
	switch {
	case strings.HasSuffix(interval, "m"):
		per = time.Hour
	case strings.HasSuffix(interval, "h"):
		per = 24 * time.Hour
	default:
		per = 48 * time.Hour
	}
	return time.Duration(limit) * per
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int `json:"timestamp"`
	Indicators struct {
		Quote []quoteIndicator `json:"quote"`
	} `json:"indicators"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
