package backtest

import (
	"time"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// SignalKind is the direction of a trading intent.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
)

type eventKind int

const (
	eventBar eventKind = iota
	eventSignal
	eventOrder
	eventFill
)

// event is a tagged variant over {bar, signal, order, fill}. Only the fields
// relevant to the tagged kind are populated.
type event struct {
	kind      eventKind
	timestamp time.Time

	bar models.PriceBar // eventBar

	signal SignalKind // eventSignal

	side     SignalKind // eventOrder, eventFill
	quantity int        // eventOrder, eventFill
	price    float64    // eventFill
}

func barEvent(bar models.PriceBar) event {
	return event{kind: eventBar, timestamp: bar.Timestamp, bar: bar}
}

func signalEvent(ts time.Time, kind SignalKind) event {
	return event{kind: eventSignal, timestamp: ts, signal: kind}
}

func orderEvent(ts time.Time, side SignalKind, quantity int) event {
	return event{kind: eventOrder, timestamp: ts, side: side, quantity: quantity}
}

func fillEvent(ts time.Time, side SignalKind, quantity int, price float64) event {
	return event{kind: eventFill, timestamp: ts, side: side, quantity: quantity, price: price}
}

// eventQueue is a FIFO queue of simulation events. Events drained from the
// queue may enqueue follow-on events; the queue never outlives one bar.
type eventQueue struct {
	events []event
}

func (q *eventQueue) push(e event) {
	q.events = append(q.events, e)
}

func (q *eventQueue) pop() (event, bool) {
	if len(q.events) == 0 {
		return event{}, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

func (q *eventQueue) empty() bool {
	return len(q.events) == 0
}
