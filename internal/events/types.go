package events

import (
	"time"

	"swapdeck/internal/ledger"
)

// EventType represents the type of event.
type EventType string

const (
	// Transaction lifecycle
	TxSubmitted EventType = "tx.submitted"
	TxConfirmed EventType = "tx.confirmed"
	TxFailed    EventType = "tx.failed"
	TxCancelled EventType = "tx.cancelled"

	// Market state
	ReservesRefreshed EventType = "reserves.refreshed"
	BalanceChanged    EventType = "balance.changed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

// TxEvent is emitted at each transaction lifecycle step. Cancelled (declined
// in the wallet) and failed (reverted on chain) are distinct outcomes and
// must surface as different notifications.
type TxEvent struct {
	BaseEvent
	Operation string // "swap", "add_liquidity", "remove_liquidity"
	Receipt   ledger.TxReceipt
	PairLabel string
	Err       error
}

// NewTxEvent builds a lifecycle event for a receipt, classifying the outcome.
func NewTxEvent(operation, pairLabel string, receipt ledger.TxReceipt, err error) TxEvent {
	eventType := TxSubmitted
	switch {
	case err != nil:
		eventType = TxFailed
	case receipt.Status == ledger.TxCancelled:
		eventType = TxCancelled
	case receipt.Status == ledger.TxFailed:
		eventType = TxFailed
	case receipt.Status == ledger.TxSuccess:
		eventType = TxConfirmed
	}
	return TxEvent{
		BaseEvent: BaseEvent{EventType: eventType, EventTime: time.Now()},
		Operation: operation,
		Receipt:   receipt,
		PairLabel: pairLabel,
		Err:       err,
	}
}

// ReservesEvent is emitted after every snapshot refresh so views depending on
// pool state can invalidate.
type ReservesEvent struct {
	BaseEvent
	Snapshot ledger.Snapshot
}

// NewReservesEvent wraps a fresh snapshot.
func NewReservesEvent(snap ledger.Snapshot) ReservesEvent {
	return ReservesEvent{
		BaseEvent: BaseEvent{EventType: ReservesRefreshed, EventTime: time.Now()},
		Snapshot:  snap,
	}
}
