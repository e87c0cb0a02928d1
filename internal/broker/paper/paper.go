// Package paper provides an in-process broker that fills orders against
// caller-supplied marks. It backs tests and dry-run live automation.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newthinker/tradewind/internal/broker"
)

// Broker implements broker.Broker with immediate fills.
type Broker struct {
	mu        sync.RWMutex
	cash      float64
	prices    map[string]float64
	positions map[string]*broker.Position
	orders    []broker.Order

	failNext string // rejection reason injected for the next order
}

// New creates a paper broker with the given starting cash.
func New(cash float64) *Broker {
	return &Broker{
		cash:      cash,
		prices:    make(map[string]float64),
		positions: make(map[string]*broker.Position),
	}
}

// Name returns the broker identifier.
func (b *Broker) Name() string {
	return "paper"
}

// SetPrice sets the fill price for a symbol.
func (b *Broker) SetPrice(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[symbol] = price
}

// SetCash overrides the cash balance.
func (b *Broker) SetCash(cash float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cash = cash
}

// SetPosition seeds a position, or removes it when quantity is 0.
func (b *Broker) SetPosition(symbol string, quantity, avgPrice float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if quantity == 0 {
		delete(b.positions, symbol)
		return
	}
	b.positions[symbol] = &broker.Position{
		Symbol:        symbol,
		Quantity:      quantity,
		AvgEntryPrice: avgPrice,
		UpdatedAt:     time.Now(),
	}
}

// FailNext makes the next submitted order come back rejected.
func (b *Broker) FailNext(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = reason
}

// Orders returns a copy of all submitted orders.
func (b *Broker) Orders() []broker.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]broker.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// GetCash returns the available cash balance.
func (b *Broker) GetCash(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cash, nil
}

// GetPosition returns the position for a symbol, or nil when flat.
func (b *Broker) GetPosition(ctx context.Context, symbol string) (*broker.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	pos, ok := b.positions[symbol]
	if !ok {
		return nil, nil
	}
	copied := *pos
	return &copied, nil
}

// SubmitOrder fills the order at the configured mark.
func (b *Broker) SubmitOrder(ctx context.Context, request broker.OrderRequest) (*broker.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order := broker.Order{
		ID:            uuid.NewString(),
		ClientOrderID: request.ClientOrderID,
		Symbol:        request.Symbol,
		Side:          request.Side,
		Type:          request.Type,
		Quantity:      request.Quantity,
		Notional:      request.Notional,
		CreatedAt:     time.Now(),
	}

	if b.failNext != "" {
		order.Status = broker.OrderStatusRejected
		order.RejectionReason = b.failNext
		b.failNext = ""
		b.orders = append(b.orders, order)
		return &order, nil
	}

	price, ok := b.prices[request.Symbol]
	if !ok || price <= 0 {
		return nil, fmt.Errorf("paper: no mark for %s", request.Symbol)
	}

	qty := request.Quantity
	if qty == 0 {
		qty = request.Notional / price
	}
	cost := qty * price
	if request.Side == broker.OrderSideBuy && cost > b.cash {
		return nil, broker.ErrInsufficientFunds
	}

	b.applyFill(request.Symbol, request.Side, qty, price)

	order.Status = broker.OrderStatusFilled
	order.FilledPrice = price
	b.orders = append(b.orders, order)
	return &order, nil
}

// applyFill adjusts cash and the position book for a fill.
func (b *Broker) applyFill(symbol string, side broker.OrderSide, qty, price float64) {
	signed := qty
	if side == broker.OrderSideSell {
		signed = -qty
	}
	b.cash -= signed * price

	pos, ok := b.positions[symbol]
	if !ok {
		b.positions[symbol] = &broker.Position{
			Symbol:        symbol,
			Quantity:      signed,
			AvgEntryPrice: price,
			CurrentPrice:  price,
			UpdatedAt:     time.Now(),
		}
		return
	}

	newQty := pos.Quantity + signed
	if newQty == 0 {
		delete(b.positions, symbol)
		return
	}
	// Entering or adding keeps a weighted average; reducing keeps the basis.
	if (pos.Quantity > 0) == (signed > 0) {
		total := pos.AvgEntryPrice*pos.Quantity + price*signed
		pos.AvgEntryPrice = total / newQty
	}
	pos.Quantity = newQty
	pos.CurrentPrice = price
	pos.UpdatedAt = time.Now()
}
