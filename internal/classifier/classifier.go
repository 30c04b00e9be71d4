// Package classifier trains and runs the categorical signal model that the
// simulation engines consume. The engine only ever sees the Model interface;
// how a label was produced is its supplier's business.
package classifier

import (
	"SwingLab/internal/model"
)

// Model predicts a trading signal from a per-day feature vector.
type Model interface {
	Predict(fv model.FeatureVector) model.Label
	Name() string
}

// Trainer builds a Model from a labeled training partition.
type Trainer interface {
	Train(bars []model.Bar) (Model, error)
}

// trainingRows filters the bars that actually carry a label.
func trainingRows(bars []model.Bar) []model.Bar {
	rows := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.HasSignal {
			rows = append(rows, b)
		}
	}
	return rows
}

// classCount returns the number of distinct signal classes present.
func classCount(rows []model.Bar) int {
	seen := make(map[model.Label]bool, len(model.Labels))
	for _, b := range rows {
		seen[b.Signal] = true
	}
	return len(seen)
}
