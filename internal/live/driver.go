// Package live drives periodic strategy evaluation against streaming market
// data, deduplicates the resulting signals, and forwards validated orders for
// fully automated strategies.
package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tradewind/internal/broker"
	"github.com/newthinker/tradewind/internal/classifier"
	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/indicator"
	"github.com/newthinker/tradewind/internal/marketdata"
	"github.com/newthinker/tradewind/internal/metrics"
	"github.com/newthinker/tradewind/internal/notifier"
	"github.com/newthinker/tradewind/internal/position"
	"github.com/newthinker/tradewind/internal/predictor"
	"github.com/newthinker/tradewind/internal/sizing"
	"github.com/newthinker/tradewind/internal/store"
	"github.com/newthinker/tradewind/internal/strategy"
)

// Config tunes the driver's scheduler and resource bounds.
type Config struct {
	// TickInterval is the scheduler period. Per-strategy gating via
	// check_interval happens on top of it.
	TickInterval time.Duration
	// Workers bounds concurrent (strategy, symbol) evaluations per tick.
	Workers int
	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration
}

func (c *Config) defaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Minute
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
}

// Deps are the collaborators the driver evaluates against.
type Deps struct {
	Strategies *strategy.Registry
	Provider   marketdata.Provider
	Broker     broker.Broker
	Store      store.Store
	Predictors map[string]predictor.Predictor
	Notifier   *notifier.Registry
	Metrics    *metrics.Registry
}

// Driver runs the live automation loop.
type Driver struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger

	mu          sync.Mutex
	lastChecked map[string]time.Time
	keyLocks    map[string]*sync.Mutex

	now func() time.Time // test hook
}

// New creates a driver. The logger defaults to a nop logger.
func New(deps Deps, cfg Config, logger ...*zap.Logger) *Driver {
	cfg.defaults()
	log := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	}
	return &Driver{
		deps:        deps,
		cfg:         cfg,
		logger:      log,
		lastChecked: make(map[string]time.Time),
		keyLocks:    make(map[string]*sync.Mutex),
		now:         time.Now,
	}
}

// Run drives ticks until the context is canceled.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	d.logger.Info("live driver started",
		zap.Duration("tick_interval", d.cfg.TickInterval),
		zap.Int("workers", d.cfg.Workers))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("live driver stopped")
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick evaluates every enabled (strategy, symbol) unit once, bounded by the
// worker limit. Exported so tests and manual triggers can drive single ticks.
func (d *Driver) Tick(ctx context.Context) {
	enabled := d.deps.Strategies.Enabled()
	if d.deps.Metrics != nil {
		d.deps.Metrics.SetStrategiesEnabled(len(enabled))
	}

	sem := make(chan struct{}, d.cfg.Workers)
	var wg sync.WaitGroup
	for _, cfg := range enabled {
		for _, symbol := range cfg.Symbols {
			wg.Add(1)
			sem <- struct{}{}
			go func(cfg *strategy.Config, symbol string) {
				defer wg.Done()
				defer func() { <-sem }()
				d.evaluateUnit(ctx, cfg, symbol)
			}(cfg, symbol)
		}
	}
	wg.Wait()
}

// keyLock returns the mutex serializing one (strategy, symbol) unit.
func (d *Driver) keyLock(key string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		d.keyLocks[key] = lock
	}
	return lock
}

// evaluateUnit runs one evaluation step for a (strategy, symbol) pair.
// Collaborator failures abort the unit's tick without placing an order.
func (d *Driver) evaluateUnit(ctx context.Context, cfg *strategy.Config, symbol string) {
	key := cfg.Name + "|" + symbol
	lock := d.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	log := d.logger.With(zap.String("strategy", cfg.Name), zap.String("symbol", symbol))

	// A strategy disabled after enumeration must not start evaluating.
	current, ok := d.deps.Strategies.Get(cfg.Name)
	if !ok || !current.Enabled {
		return
	}

	now := d.now()
	if cfg.CheckInterval > 0 {
		if last, ok := d.lastCheckedAt(key); ok && now.Sub(last) < cfg.CheckInterval {
			d.recordSkip(cfg.Name, "interval")
			return
		}
	}
	d.setLastChecked(key, now)

	start := now
	cctx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	bars, err := d.deps.Provider.FetchBars(cctx, symbol, cfg.Interval, cfg.Window())
	if err != nil {
		log.Warn("bar fetch failed, skipping tick", zap.Error(err))
		d.recordSkip(cfg.Name, "provider_error")
		return
	}
	if len(bars) == 0 {
		log.Debug("no bars this tick")
		d.recordSkip(cfg.Name, "no_data")
		return
	}

	// Providers serve raw OHLCV; compute the indicator series here so live
	// classification sees the same enriched window a replay does.
	bars = indicator.Enrich(bars)
	lastBar := bars[len(bars)-1]

	c, err := classifier.ForStrategy(cfg, d.deps.Predictors[cfg.Predictor])
	if err != nil {
		log.Error("classifier construction failed", zap.Error(err))
		d.recordSkip(cfg.Name, "config_error")
		return
	}
	action, confidence, err := c.Classify(cctx, bars)
	if err != nil {
		log.Warn("classification failed, skipping tick", zap.Error(err))
		d.recordSkip(cfg.Name, "classifier_error")
		return
	}

	// The broker's reported position is ground truth; local state is only a
	// scaffold for this single step.
	brokerPos, err := d.deps.Broker.GetPosition(cctx, symbol)
	if err != nil {
		log.Warn("broker position query failed, skipping tick", zap.Error(err))
		d.recordSkip(cfg.Name, "broker_error")
		return
	}
	machine := position.New(cfg)
	seedFromBroker(machine, brokerPos)

	events := machine.Step(lastBar, action)
	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordEvaluation(cfg.Name, symbol, d.now().Sub(start).Seconds())
	}
	if action == core.ActionHold && len(events) == 0 {
		return
	}

	fingerprint := Fingerprint(cfg.Name, symbol, action, lastBar)
	last, err := d.deps.Store.LastFingerprint(cctx, cfg.Name, symbol)
	if err != nil {
		log.Warn("fingerprint lookup failed, skipping tick", zap.Error(err))
		d.recordSkip(cfg.Name, "store_error")
		return
	}
	if fingerprint == last {
		log.Debug("duplicate signal suppressed", zap.String("fingerprint", fingerprint))
		if d.deps.Metrics != nil {
			d.deps.Metrics.RecordDuplicate(cfg.Name, symbol)
		}
		return
	}

	signal := &core.Signal{
		Strategy:    cfg.Name,
		Symbol:      symbol,
		Action:      action,
		Price:       lastBar.Close,
		Confidence:  confidence,
		Fingerprint: fingerprint,
		GeneratedAt: now,
	}
	if err := d.deps.Store.SaveSignal(cctx, signal); err != nil {
		log.Error("signal save failed", zap.Error(err))
		return
	}
	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordSignal(cfg.Name, string(action))
	}
	log.Info("signal generated",
		zap.String("action", string(action)),
		zap.Float64("price", lastBar.Close),
		zap.Float64("confidence", confidence))

	for _, ev := range events {
		trade := &store.Trade{Strategy: cfg.Name, Symbol: symbol, Event: ev}
		if err := d.deps.Store.SaveTrade(cctx, trade); err != nil {
			log.Error("trade save failed", zap.Error(err))
		}
	}

	mode := cfg.AutomationMode
	if mode == "" {
		mode = strategy.ModeManual
	}
	if d.deps.Notifier != nil && mode != strategy.ModeManual {
		d.deps.Notifier.Notify(cctx, *signal)
	}

	if mode != strategy.ModeFullAuto {
		return
	}
	d.forwardOrders(ctx, cfg, symbol, signal.ID, lastBar.Close, brokerPos, events, log)
}

// forwardOrders turns this step's trade events into broker orders. Closes
// unwind the broker-reported quantity; opens go through sizing and the risk
// guards. Submission is detached from tick cancellation so a disable cannot
// abort an in-flight order.
func (d *Driver) forwardOrders(ctx context.Context, cfg *strategy.Config, symbol, signalID string,
	price float64, brokerPos *broker.Position, events []core.TradeEvent, log *zap.Logger) {

	octx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.CallTimeout)
	defer cancel()

	for _, ev := range events {
		var request broker.OrderRequest
		switch ev.Action {
		case core.EventClose:
			if brokerPos == nil {
				continue
			}
			quantity := brokerPos.Quantity
			side := broker.OrderSideSell
			if quantity < 0 {
				quantity = -quantity
				side = broker.OrderSideBuy
			}
			request = broker.OrderRequest{
				Symbol:      symbol,
				Side:        side,
				Type:        broker.OrderTypeMarket,
				TimeInForce: broker.TimeInForceDay,
				Quantity:    quantity,
			}

		case core.EventOpen:
			cash, err := d.deps.Broker.GetCash(octx)
			if err != nil {
				log.Warn("cash query failed, order not placed", zap.Error(err))
				d.recordOrder(cfg.Name, "failed")
				return
			}
			result, err := sizing.SizeOrder(cfg, cash, price)
			if err != nil {
				log.Warn("sizing failed, order not placed", zap.Error(err))
				d.recordOrder(cfg.Name, "failed")
				return
			}
			side := broker.OrderSideBuy
			if ev.Side == core.SideShort {
				side = broker.OrderSideSell
			}
			if err := sizing.ValidateOrder(cfg, side, result, brokerPos); err != nil {
				log.Warn("order rejected by risk guard", zap.Error(err))
				d.deps.Store.UpdateSignalResult(octx, signalID, false, err.Error())
				d.recordOrder(cfg.Name, "rejected")
				return
			}
			request = sizing.BuildOrder(cfg, symbol, side, result, price)

		default:
			continue
		}

		order, err := d.deps.Broker.SubmitOrder(octx, request)
		if err != nil {
			log.Error("order submission failed", zap.Error(err))
			d.deps.Store.UpdateSignalResult(octx, signalID, false, err.Error())
			d.recordOrder(cfg.Name, "failed")
			return
		}

		status := "matched"
		executed := true
		detail := string(order.Status)
		if order.Status == broker.OrderStatusRejected {
			status = "rejected"
			executed = false
			detail = order.RejectionReason
		}
		d.deps.Store.UpdateSignalResult(octx, signalID, executed, detail)
		d.recordOrder(cfg.Name, status)
		log.Info("order forwarded",
			zap.String("order_id", order.ID),
			zap.String("side", string(request.Side)),
			zap.String("status", string(order.Status)))
	}
}

func seedFromBroker(machine *position.Machine, pos *broker.Position) {
	switch {
	case pos == nil || pos.Quantity == 0:
		machine.Seed(position.StateFlat, 0, time.Time{})
	case pos.Quantity > 0:
		machine.Seed(position.StateLong, pos.AvgEntryPrice, pos.UpdatedAt)
	default:
		machine.Seed(position.StateShort, pos.AvgEntryPrice, pos.UpdatedAt)
	}
}

func (d *Driver) lastCheckedAt(key string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.lastChecked[key]
	return t, ok
}

func (d *Driver) setLastChecked(key string, t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastChecked[key] = t
}

func (d *Driver) recordSkip(strategy, reason string) {
	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordSkip(strategy, reason)
	}
}

func (d *Driver) recordOrder(strategy, status string) {
	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordOrder(strategy, status)
	}
}
