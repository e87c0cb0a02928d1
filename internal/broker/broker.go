// Package broker defines the order types and the interface to the external
// broker collaborator. Order routing semantics belong to the implementation.
package broker

import (
	"context"
	"errors"
	"math"
	"time"
)

// Broker-specific errors.
var (
	// ErrNotConnected indicates the broker is not connected.
	ErrNotConnected = errors.New("broker: not connected")
	// ErrInvalidSymbol indicates an invalid or empty symbol.
	ErrInvalidSymbol = errors.New("broker: invalid symbol")
	// ErrInvalidQuantity indicates an order with neither quantity nor notional.
	ErrInvalidQuantity = errors.New("broker: order needs a positive quantity or notional")
	// ErrAmbiguousSize indicates an order with both quantity and notional.
	ErrAmbiguousSize = errors.New("broker: quantity and notional are mutually exclusive")
	// ErrInvalidPrice indicates an invalid price for limit orders.
	ErrInvalidPrice = errors.New("broker: invalid price for limit order")
	// ErrInsufficientFunds indicates insufficient funds for the order.
	ErrInsufficientFunds = errors.New("broker: insufficient funds")
)

// OrderSide represents the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType represents the type of order execution.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderClass distinguishes simple orders from bracket orders with attached
// stop-loss/take-profit legs.
type OrderClass string

const (
	OrderClassSimple  OrderClass = ""
	OrderClassBracket OrderClass = "bracket"
)

// TimeInForce specifies how long an order remains active.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
)

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusRejected OrderStatus = "rejected"
)

// OrderRequest represents a request to place a new order. Exactly one of
// Quantity and Notional is positive.
type OrderRequest struct {
	// Symbol is the ticker symbol (e.g., "AAPL").
	Symbol string `json:"symbol"`
	// Side indicates buy or sell.
	Side OrderSide `json:"side"`
	// Type specifies the order execution type.
	Type OrderType `json:"type"`
	// Class is bracket when stop-loss/take-profit legs are attached.
	Class OrderClass `json:"class,omitempty"`
	// TimeInForce specifies how long the order remains active.
	TimeInForce TimeInForce `json:"time_in_force,omitempty"`
	// Quantity is the share quantity; fractional values are allowed.
	Quantity float64 `json:"quantity,omitempty"`
	// Notional is the dollar-denominated order size.
	Notional float64 `json:"notional,omitempty"`
	// LimitPrice is required for limit orders.
	LimitPrice float64 `json:"limit_price,omitempty"`
	// TakeProfit is the bracket take-profit leg price.
	TakeProfit float64 `json:"take_profit,omitempty"`
	// StopLoss is the bracket stop-loss leg price.
	StopLoss float64 `json:"stop_loss,omitempty"`
	// ClientOrderID is an optional client-specified identifier.
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// Validate checks if the order request has valid required fields.
func (r OrderRequest) Validate() error {
	if r.Symbol == "" {
		return ErrInvalidSymbol
	}
	if r.Quantity <= 0 && r.Notional <= 0 {
		return ErrInvalidQuantity
	}
	if r.Quantity > 0 && r.Notional > 0 {
		return ErrAmbiguousSize
	}
	if r.Type == OrderTypeLimit && r.LimitPrice <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// IsFractional reports whether the quantity has a fractional part.
func (r OrderRequest) IsFractional() bool {
	return r.Quantity > 0 && r.Quantity != math.Trunc(r.Quantity)
}

// Order represents an order as reported by the broker.
type Order struct {
	ID            string      `json:"id"`
	ClientOrderID string      `json:"client_order_id,omitempty"`
	Symbol        string      `json:"symbol"`
	Side          OrderSide   `json:"side"`
	Type          OrderType   `json:"type"`
	Quantity      float64     `json:"quantity,omitempty"`
	Notional      float64     `json:"notional,omitempty"`
	Status        OrderStatus `json:"status"`
	FilledPrice   float64     `json:"filled_price,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	// RejectionReason contains the reason if order was rejected.
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// IsFilled returns true if the order is completely filled.
func (o Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}

// Position represents a holding as reported by the broker. Quantity is
// negative for shorts.
type Position struct {
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	AvgEntryPrice float64   `json:"avg_entry_price"`
	CurrentPrice  float64   `json:"current_price"`
	UnrealizedPL  float64   `json:"unrealized_pl"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsLong returns true if this is a long position.
func (p Position) IsLong() bool {
	return p.Quantity > 0
}

// IsShort returns true if this is a short position.
func (p Position) IsShort() bool {
	return p.Quantity < 0
}

// Broker is the interface to the external broker collaborator. Calls may
// block on the network; implementations must honor context deadlines.
type Broker interface {
	// Name returns the broker identifier (e.g., "alpaca", "paper").
	Name() string

	// GetCash returns the available cash balance.
	GetCash(ctx context.Context) (float64, error)

	// GetPosition returns the position for a symbol, or nil when flat.
	GetPosition(ctx context.Context, symbol string) (*Position, error)

	// SubmitOrder places an order and returns the broker's record of it.
	SubmitOrder(ctx context.Context, request OrderRequest) (*Order, error)
}
