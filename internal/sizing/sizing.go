// Package sizing converts a strategy's sizing policy into order parameters
// and enforces the risk guards that gate order submission.
package sizing

import (
	"fmt"

	"github.com/newthinker/tradewind/internal/broker"
	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/strategy"
)

// Result is a sized order: exactly one of Quantity and Notional is positive.
type Result struct {
	Quantity float64 `json:"quantity,omitempty"`
	Notional float64 `json:"notional,omitempty"`
}

// IsNotional reports whether the result is dollar-denominated.
func (r Result) IsNotional() bool {
	return r.Notional > 0
}

// Rejection is a typed risk-guard rejection. It unwraps to
// core.ErrOrderRejected so callers can branch on the class while logging the
// specific reason.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return "order rejected: " + r.Reason
}

func (r *Rejection) Unwrap() error {
	return core.ErrOrderRejected
}

// SizeOrder converts the strategy's sizing policy into a quantity or a
// notional amount at the given price. Cash is only consulted for
// percent-of-balance sizing.
func SizeOrder(cfg *strategy.Config, cash, price float64) (Result, error) {
	amount := cfg.TradeAmount
	if cfg.SizingMode == strategy.SizingPercent {
		amount = cash * cfg.TradeAmount / 100
	}
	if amount <= 0 {
		return Result{}, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sizing: non-positive amount %.4f for strategy %s", amount, cfg.Name))
	}

	if cfg.SizingMode == strategy.SizingNotional {
		return Result{Notional: amount}, nil
	}

	if price <= 0 {
		return Result{}, core.WrapError(core.ErrNoData,
			fmt.Errorf("sizing: no usable price for strategy %s", cfg.Name))
	}
	// Quantity and percent-of-balance both convert dollars to shares at the
	// reference price.
	return Result{Quantity: amount / price}, nil
}

// ValidateOrder enforces the risk guards before an order may be forwarded.
// brokerPosition is the broker-reported position for the instrument, nil when
// flat. A guard violation returns a *Rejection and must leave all position
// state untouched; the caller records the attempt as rejected.
func ValidateOrder(cfg *strategy.Config, side broker.OrderSide, result Result, brokerPosition *broker.Position) error {
	if result.IsNotional() {
		if cfg.OrderType != strategy.OrderMarket {
			return &Rejection{Reason: fmt.Sprintf(
				"notional sizing requires a market order, strategy %s uses %s", cfg.Name, cfg.OrderType)}
		}
		// Day time-in-force is forced by BuildOrder; any bracket config still
		// conflicts with notional sizing.
		if cfg.HasBracket() {
			return &Rejection{Reason: "bracket stop-loss/take-profit requires quantity sizing, not notional"}
		}
		return nil
	}

	if cfg.HasBracket() && cfg.SizingMode != strategy.SizingQuantity {
		return &Rejection{Reason: fmt.Sprintf(
			"bracket stop-loss/take-profit requires quantity sizing, strategy %s uses %s", cfg.Name, cfg.SizingMode)}
	}

	if side == broker.OrderSideSell && isFractional(result.Quantity) {
		if brokerPosition == nil || !brokerPosition.IsLong() || brokerPosition.Quantity < result.Quantity {
			return &Rejection{Reason: fmt.Sprintf(
				"fractional short of %.4f rejected: no broker long position covering it", result.Quantity)}
		}
	}
	return nil
}

// BuildOrder shapes the validated sizing result into a broker order request.
// Notional orders are forced to market/day; bracket legs are attached when
// the strategy configures stop-loss/take-profit with quantity sizing.
func BuildOrder(cfg *strategy.Config, symbol string, side broker.OrderSide, result Result, price float64) broker.OrderRequest {
	request := broker.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     broker.OrderType(cfg.OrderType),
		Quantity: result.Quantity,
		Notional: result.Notional,
	}

	if result.IsNotional() {
		request.Type = broker.OrderTypeMarket
		request.TimeInForce = broker.TimeInForceDay
		return request
	}

	request.TimeInForce = broker.TimeInForceGTC
	if cfg.HasBracket() {
		request.Class = broker.OrderClassBracket
		request.TakeProfit, request.StopLoss = BracketPrices(cfg, side, price)
	}
	return request
}

// BracketPrices computes the take-profit and stop-loss leg prices from the
// reference price and the strategy's percent-or-absolute policy. Short-side
// legs mirror the long-side ones. A zero threshold yields a zero leg.
func BracketPrices(cfg *strategy.Config, side broker.OrderSide, price float64) (takeProfit, stopLoss float64) {
	tp, sl := cfg.TakeProfit, cfg.StopLoss
	if cfg.SLTPIsPercent {
		tp = price * tp / 100
		sl = price * sl / 100
	}

	if side == broker.OrderSideBuy {
		if cfg.TakeProfit > 0 {
			takeProfit = price + tp
		}
		if cfg.StopLoss > 0 {
			stopLoss = price - sl
		}
		return takeProfit, stopLoss
	}

	if cfg.TakeProfit > 0 {
		takeProfit = price - tp
	}
	if cfg.StopLoss > 0 {
		stopLoss = price + sl
	}
	return takeProfit, stopLoss
}

func isFractional(quantity float64) bool {
	return broker.OrderRequest{Quantity: quantity}.IsFractional()
}
