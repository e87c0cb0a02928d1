package live

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/newthinker/tradewind/internal/broker"
	"github.com/newthinker/tradewind/internal/broker/paper"
	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/store"
	"github.com/newthinker/tradewind/internal/strategy"
)

// fakeProvider serves a fixed window and counts fetches.
type fakeProvider struct {
	bars  []core.Bar
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchBars(_ context.Context, symbol, interval string, limit int) ([]core.Bar, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.bars, nil
}

func liveStrategy(mode strategy.AutomationMode) *strategy.Config {
	return &strategy.Config{
		Name:    "momentum",
		Symbols: []string{"AAPL"},
		Enabled: true,
		BuyRules: strategy.RuleSet{
			Conditions: []strategy.Condition{{Indicator: "RSI_14", Operator: strategy.OpLT, Threshold: 30}},
		},
		SellRules: strategy.RuleSet{
			Conditions: []strategy.Condition{{Indicator: "RSI_14", Operator: strategy.OpGT, Threshold: 70}},
		},
		SizingMode:     strategy.SizingQuantity,
		TradeAmount:    500,
		OrderType:      strategy.OrderMarket,
		AutomationMode: mode,
		Interval:       "1h",
	}
}

func buyWindow() []core.Bar {
	base := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	bars := make([]core.Bar, 3)
	for i := range bars {
		bars[i] = core.Bar{
			Symbol:     "AAPL",
			Close:      50,
			Time:       base.Add(time.Duration(i) * time.Hour),
			Indicators: map[string]float64{"RSI_14": 25},
		}
	}
	return bars
}

func newTestDriver(cfg *strategy.Config, provider *fakeProvider, b broker.Broker) (*Driver, *store.Memory, *strategy.Registry) {
	registry := strategy.NewRegistry()
	if err := registry.Register(cfg); err != nil {
		panic(err)
	}
	memory := store.NewMemory(0)
	d := New(Deps{
		Strategies: registry,
		Provider:   provider,
		Broker:     b,
		Store:      memory,
	}, Config{Workers: 1, CallTimeout: time.Second})
	return d, memory, registry
}

func TestDriver_DuplicateSuppression(t *testing.T) {
	provider := &fakeProvider{bars: buyWindow()}
	b := paper.New(10000)
	b.SetPrice("AAPL", 50)
	d, memory, _ := newTestDriver(liveStrategy(strategy.ModeManual), provider, b)

	ctx := context.Background()
	d.Tick(ctx)
	d.Tick(ctx)

	signals, err := memory.ListSignals(ctx, store.SignalFilter{Strategy: "momentum"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("identical ticks must store one signal, got %d", len(signals))
	}
	if signals[0].Action != core.ActionBuy || signals[0].Fingerprint == "" {
		t.Errorf("unexpected signal: %+v", signals[0])
	}

	trades, _ := memory.ListTrades(ctx, store.TradeFilter{Strategy: "momentum"})
	if len(trades) != 1 {
		t.Errorf("duplicate tick must not re-record trades, got %d", len(trades))
	}
}

func TestDriver_ManualModeDoesNotOrder(t *testing.T) {
	provider := &fakeProvider{bars: buyWindow()}
	b := paper.New(10000)
	b.SetPrice("AAPL", 50)
	d, _, _ := newTestDriver(liveStrategy(strategy.ModeManual), provider, b)

	d.Tick(context.Background())

	if got := len(b.Orders()); got != 0 {
		t.Errorf("manual mode placed %d orders, want 0", got)
	}
}

func TestDriver_FullAutoForwardsOrder(t *testing.T) {
	provider := &fakeProvider{bars: buyWindow()}
	b := paper.New(10000)
	b.SetPrice("AAPL", 50)
	d, memory, _ := newTestDriver(liveStrategy(strategy.ModeFullAuto), provider, b)

	ctx := context.Background()
	d.Tick(ctx)

	orders := b.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	// 500 dollars at 50 = 10 shares
	if orders[0].Side != broker.OrderSideBuy || orders[0].Quantity != 10 {
		t.Errorf("unexpected order: %+v", orders[0])
	}

	signals, _ := memory.ListSignals(ctx, store.SignalFilter{Strategy: "momentum"})
	if len(signals) != 1 || !signals[0].Executed {
		t.Errorf("order outcome not recorded on signal: %+v", signals)
	}
}

func TestDriver_RiskGuardRejectionRecorded(t *testing.T) {
	cfg := liveStrategy(strategy.ModeFullAuto)
	cfg.SizingMode = strategy.SizingNotional
	cfg.OrderType = strategy.OrderLimit // notional + limit violates the guard

	provider := &fakeProvider{bars: buyWindow()}
	b := paper.New(10000)
	b.SetPrice("AAPL", 50)
	d, memory, _ := newTestDriver(cfg, provider, b)

	ctx := context.Background()
	d.Tick(ctx)

	if got := len(b.Orders()); got != 0 {
		t.Fatalf("rejected order must not reach the broker, got %d orders", got)
	}
	signals, _ := memory.ListSignals(ctx, store.SignalFilter{Strategy: "momentum"})
	if len(signals) != 1 {
		t.Fatalf("rejected attempt must still be logged as a signal, got %d", len(signals))
	}
	if signals[0].Executed || signals[0].Result == "" {
		t.Errorf("rejection reason not recorded: %+v", signals[0])
	}
}

func TestDriver_CheckIntervalGating(t *testing.T) {
	cfg := liveStrategy(strategy.ModeManual)
	cfg.CheckInterval = time.Hour

	provider := &fakeProvider{bars: buyWindow()}
	b := paper.New(10000)
	d, _, _ := newTestDriver(cfg, provider, b)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	ctx := context.Background()
	d.Tick(ctx)
	now = now.Add(time.Minute)
	d.Tick(ctx) // within check_interval, must not fetch
	if provider.calls != 1 {
		t.Errorf("provider hit %d times, want 1 (interval gate)", provider.calls)
	}

	now = now.Add(2 * time.Hour)
	d.Tick(ctx)
	if provider.calls != 2 {
		t.Errorf("provider hit %d times after interval elapsed, want 2", provider.calls)
	}
}

func TestDriver_DisabledStrategySkipped(t *testing.T) {
	provider := &fakeProvider{bars: buyWindow()}
	b := paper.New(10000)
	d, memory, registry := newTestDriver(liveStrategy(strategy.ModeManual), provider, b)

	registry.SetEnabled("momentum", false)
	d.Tick(context.Background())

	if provider.calls != 0 {
		t.Errorf("disabled strategy fetched bars %d times", provider.calls)
	}
	signals, _ := memory.ListSignals(context.Background(), store.SignalFilter{})
	if len(signals) != 0 {
		t.Errorf("disabled strategy produced %d signals", len(signals))
	}
}

func TestDriver_ProviderFailureFailsOpen(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("feed down")}
	b := paper.New(10000)
	d, memory, _ := newTestDriver(liveStrategy(strategy.ModeFullAuto), provider, b)

	d.Tick(context.Background())

	if got := len(b.Orders()); got != 0 {
		t.Errorf("provider failure must never place orders, got %d", got)
	}
	signals, _ := memory.ListSignals(context.Background(), store.SignalFilter{})
	if len(signals) != 0 {
		t.Errorf("provider failure produced %d signals", len(signals))
	}
}

// rawWindow mimics a real provider: OHLCV only, no indicator values.
func rawWindow(n int, step float64) []core.Bar {
	base := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	price := 100.0
	for i := range bars {
		bars[i] = core.Bar{
			Symbol: "AAPL",
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
			Time:   base.Add(time.Duration(i) * time.Hour),
		}
		price += step
	}
	return bars
}

func TestDriver_EnrichesRawProviderBars(t *testing.T) {
	// Twenty straight down bars drive RSI_14 to zero, so the buy rule fires
	// only if the driver computes indicators over the fetched window itself.
	provider := &fakeProvider{bars: rawWindow(20, -1)}
	b := paper.New(10000)
	b.SetPrice("AAPL", 81)
	d, memory, _ := newTestDriver(liveStrategy(strategy.ModeManual), provider, b)

	d.Tick(context.Background())

	signals, err := memory.ListSignals(context.Background(), store.SignalFilter{Strategy: "momentum"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("raw provider bars produced %d signals, want 1", len(signals))
	}
	if signals[0].Action != core.ActionBuy {
		t.Errorf("action = %v, want buy", signals[0].Action)
	}
}

func TestDriver_HoldProducesNothing(t *testing.T) {
	bars := buyWindow()
	for i := range bars {
		bars[i].Indicators["RSI_14"] = 50
	}
	provider := &fakeProvider{bars: bars}
	b := paper.New(10000)
	d, memory, _ := newTestDriver(liveStrategy(strategy.ModeManual), provider, b)

	d.Tick(context.Background())

	signals, _ := memory.ListSignals(context.Background(), store.SignalFilter{})
	if len(signals) != 0 {
		t.Errorf("hold must not store signals, got %d", len(signals))
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	bar := buyWindow()[2]
	a := Fingerprint("momentum", "AAPL", core.ActionBuy, bar)
	b := Fingerprint("momentum", "AAPL", core.ActionBuy, bar)
	if a != b {
		t.Error("identical inputs must fingerprint identically")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}

	if Fingerprint("momentum", "AAPL", core.ActionSell, bar) == a {
		t.Error("action must change the fingerprint")
	}

	moved := bar
	moved.Close = 51
	if Fingerprint("momentum", "AAPL", core.ActionBuy, moved) == a {
		t.Error("price must change the fingerprint")
	}

	other := bar
	other.Indicators = map[string]float64{"RSI_14": 26}
	if Fingerprint("momentum", "AAPL", core.ActionBuy, other) == a {
		t.Error("indicator values must change the fingerprint")
	}
}
