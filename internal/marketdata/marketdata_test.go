package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

// countingProvider serves canned bars and counts upstream hits.
type countingProvider struct {
	bars  []core.Bar
	err   error
	calls int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) FetchBars(_ context.Context, symbol, interval string, limit int) ([]core.Bar, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.bars, nil
}

func TestCache_ServesFreshEntries(t *testing.T) {
	upstream := &countingProvider{bars: []core.Bar{{Symbol: "AAPL", Close: 100}}}
	cache := NewCache(upstream, time.Minute)

	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		bars, err := cache.FetchBars(ctx, "AAPL", "1h", 10)
		if err != nil || len(bars) != 1 {
			t.Fatalf("fetch %d: %v, %d bars", i, err, len(bars))
		}
	}
	if upstream.calls != 1 {
		t.Errorf("upstream hit %d times, want 1", upstream.calls)
	}

	// Expired entry refetches
	now = now.Add(2 * time.Minute)
	if _, err := cache.FetchBars(ctx, "AAPL", "1h", 10); err != nil {
		t.Fatal(err)
	}
	if upstream.calls != 2 {
		t.Errorf("upstream hit %d times after expiry, want 2", upstream.calls)
	}

	// Different key misses
	if _, err := cache.FetchBars(ctx, "MSFT", "1h", 10); err != nil {
		t.Fatal(err)
	}
	if upstream.calls != 3 {
		t.Errorf("upstream hit %d times for a new key, want 3", upstream.calls)
	}
}

func TestCache_DoesNotCacheErrors(t *testing.T) {
	upstream := &countingProvider{err: fmt.Errorf("down")}
	cache := NewCache(upstream, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cache.FetchBars(ctx, "AAPL", "1h", 10); err == nil {
			t.Fatal("expected error")
		}
	}
	if upstream.calls != 2 {
		t.Errorf("errors must pass through every time, got %d calls", upstream.calls)
	}
}

func TestCache_CopiesDoNotAlias(t *testing.T) {
	upstream := &countingProvider{bars: []core.Bar{{Symbol: "AAPL", Close: 100}}}
	cache := NewCache(upstream, time.Minute)

	first, _ := cache.FetchBars(context.Background(), "AAPL", "1h", 10)
	first[0].Close = 0

	second, _ := cache.FetchBars(context.Background(), "AAPL", "1h", 10)
	if second[0].Close != 100 {
		t.Error("cached bars must not be mutable through returned slices")
	}
}

func TestCSVProvider_FetchBars(t *testing.T) {
	dir := t.TempDir()
	content := "time,open,high,low,close,volume\n" +
		"2024-05-01T09:30:00Z,50,51,49,50.5,1000\n" +
		"2024-05-01T11:30:00Z,51,52,50,51.5,1200\n" +
		"2024-05-01T10:30:00Z,50.5,51.5,50,51,900\n"
	if err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewCSV(dir, "1h")
	bars, err := p.FetchBars(context.Background(), "AAPL", "1h", 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}
	// Rows are returned in timestamp order regardless of file order
	if !bars[0].Time.Before(bars[1].Time) || !bars[1].Time.Before(bars[2].Time) {
		t.Errorf("bars out of order: %v %v %v", bars[0].Time, bars[1].Time, bars[2].Time)
	}
	if bars[2].Close != 51.5 || bars[2].Volume != 1200 {
		t.Errorf("unexpected last bar: %+v", bars[2])
	}

	limited, err := p.FetchBars(context.Background(), "AAPL", "1h", 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limited fetch: %v, %d bars", err, len(limited))
	}
	if limited[1].Close != 51.5 {
		t.Error("limit must keep the newest bars")
	}
}

func TestCSVProvider_MissingFile(t *testing.T) {
	p := NewCSV(t.TempDir(), "1h")
	if _, err := p.FetchBars(context.Background(), "NOPE", "1h", 0); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCSVProvider_BadRow(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "BAD.csv"), []byte("time,open,high,low,close,volume\nnot-a-time,1,2,3,4,5\n"), 0o644)

	p := NewCSV(dir, "1h")
	if _, err := p.FetchBars(context.Background(), "BAD", "1h", 0); err == nil {
		t.Error("expected parse error")
	}
}

func TestYahoo_FetchBars(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[1714555800,1714559400,1714563000],
		"indicators":{"quote":[{"open":[50,null,51],"high":[51,null,52],"low":[49,null,50],
		"close":[50.5,null,51.5],"volume":[1000,null,1200]}]}}],"error":null}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	y := NewYahoo()
	y.baseURL = server.URL

	bars, err := y.FetchBars(context.Background(), "AAPL", "1h", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 (null row skipped)", len(bars))
	}
	if bars[0].Close != 50.5 || bars[1].Close != 51.5 {
		t.Errorf("unexpected bars: %+v", bars)
	}
	if bars[0].Symbol != "AAPL" || bars[0].Interval != "1h" {
		t.Errorf("bar not stamped: %+v", bars[0])
	}
}

func TestYahoo_InvalidSymbol(t *testing.T) {
	y := NewYahoo()
	if _, err := y.FetchBars(context.Background(), "not a symbol!", "1h", 10); err == nil {
		t.Error("expected validation error")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	p := &countingProvider{}
	r.Register(p)

	got, ok := r.Get("counting")
	if !ok || got != Provider(p) {
		t.Error("registered provider not retrievable")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("unknown provider must not resolve")
	}
}
