package model

// Label is a categorical trading signal.
type Label string

const (
	SignalBuy  Label = "BUY"
	SignalHold Label = "HOLD"
	SignalSell Label = "SELL"
)

// Labels lists all signal classes in a stable order.
var Labels = []Label{SignalBuy, SignalHold, SignalSell}

// ExitReason tags why a position was closed. Exactly one applies per trade.
type ExitReason string

const (
	ExitTakeProfit  ExitReason = "TAKE_PROFIT"
	ExitStopLoss    ExitReason = "STOP_LOSS"
	ExitEarlyProfit ExitReason = "EARLY_PROFIT"
	ExitTimeBased   ExitReason = "TIME_BASED"
	// ExitEndOfData closes positions still open when the replayed slice
	// runs out of bars.
	ExitEndOfData ExitReason = "END_OF_DATA"
	// ExitSignalSell closes a live position on an explicit SELL signal.
	ExitSignalSell ExitReason = "SIGNAL_SELL"
)

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "OPEN"
	StatusClosed PositionStatus = "CLOSED"
)
