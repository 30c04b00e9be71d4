package model

import "time"

// TradeRecord is the immutable snapshot taken when a position closes.
type TradeRecord struct {
	Stock      string     `json:"stock"`
	Date       time.Time  `json:"date"` // entry date
	Signal     Label      `json:"signal"`
	Entry      float64    `json:"entry"`
	Exit       float64    `json:"exit"`
	ReturnPct  float64    `json:"return_pct"`
	ExitDate   time.Time  `json:"exit_date"`
	ExitReason ExitReason `json:"exit_reason"`
}

// PortfolioSnapshot is one simulated day's capital state: free cash plus the
// mark-to-market value of all open positions at that day's close.
type PortfolioSnapshot struct {
	Date           time.Time
	Capital        float64
	PortfolioValue float64
}

// Diagnostics aggregates classifier output distribution and test-slice size
// for a batch run, plus per-ticker skip notes.
type Diagnostics struct {
	TestSliceLength       int
	PredictedSignalCounts map[Label]int
	Skipped               []SkipNote
}

// SkipNote records why a ticker was excluded from a batch run.
type SkipNote struct {
	Ticker string
	Reason string
}

// NewDiagnostics returns a Diagnostics with the count map initialized for
// every signal class.
func NewDiagnostics() *Diagnostics {
	d := &Diagnostics{PredictedSignalCounts: make(map[Label]int, len(Labels))}
	for _, l := range Labels {
		d.PredictedSignalCounts[l] = 0
	}
	return d
}
