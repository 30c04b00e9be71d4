package classifier

import (
	"fmt"
	"math"

	"SwingLab/internal/model"
)

const featureCount = 4

// CentroidTrainer builds nearest-centroid models over standardized features.
type CentroidTrainer struct{}

// CentroidModel classifies a feature vector by the closest per-class centroid
// in standardized feature space. Deterministic: ties break in the stable
// label order.
type CentroidModel struct {
	mean      [featureCount]float64
	std       [featureCount]float64
	centroids map[model.Label][featureCount]float64
	classes   []model.Label
}

func featureArray(fv model.FeatureVector) [featureCount]float64 {
	return [featureCount]float64{fv.RSI, fv.EMA10, fv.EMA20, fv.MACD}
}

// Train fits a centroid model. Fails with ErrModelTraining when fewer than
// two signal classes are present in the labeled training rows.
func (CentroidTrainer) Train(bars []model.Bar) (Model, error) {
	rows := trainingRows(bars)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no labeled training rows: %w", model.ErrModelTraining)
	}
	if n := classCount(rows); n < 2 {
		return nil, fmt.Errorf("only %d signal class(es) in training data: %w", n, model.ErrModelTraining)
	}

	m := &CentroidModel{centroids: make(map[model.Label][featureCount]float64)}

	// Feature standardization over the whole training partition.
	for _, b := range rows {
		f := featureArray(b.Features())
		for i := 0; i < featureCount; i++ {
			m.mean[i] += f[i]
		}
	}
	n := float64(len(rows))
	for i := 0; i < featureCount; i++ {
		m.mean[i] /= n
	}
	for _, b := range rows {
		f := featureArray(b.Features())
		for i := 0; i < featureCount; i++ {
			d := f[i] - m.mean[i]
			m.std[i] += d * d
		}
	}
	for i := 0; i < featureCount; i++ {
		m.std[i] = math.Sqrt(m.std[i] / n)
		if m.std[i] == 0 {
			m.std[i] = 1 // constant feature carries no signal
		}
	}

	// Per-class centroids in standardized space.
	sums := make(map[model.Label]*[featureCount]float64)
	counts := make(map[model.Label]float64)
	for _, b := range rows {
		f := m.standardize(b.Features())
		if sums[b.Signal] == nil {
			sums[b.Signal] = &[featureCount]float64{}
		}
		for i := 0; i < featureCount; i++ {
			sums[b.Signal][i] += f[i]
		}
		counts[b.Signal]++
	}
	for _, label := range model.Labels {
		sum, ok := sums[label]
		if !ok {
			continue
		}
		var c [featureCount]float64
		for i := 0; i < featureCount; i++ {
			c[i] = sum[i] / counts[label]
		}
		m.centroids[label] = c
		m.classes = append(m.classes, label)
	}
	return m, nil
}

func (m *CentroidModel) standardize(fv model.FeatureVector) [featureCount]float64 {
	f := featureArray(fv)
	for i := 0; i < featureCount; i++ {
		f[i] = (f[i] - m.mean[i]) / m.std[i]
	}
	return f
}

func (m *CentroidModel) Name() string { return "centroid" }

// Predict returns the label of the nearest class centroid.
func (m *CentroidModel) Predict(fv model.FeatureVector) model.Label {
	f := m.standardize(fv)
	best := m.classes[0]
	bestDist := math.Inf(1)
	for _, label := range m.classes {
		c := m.centroids[label]
		dist := 0.0
		for i := 0; i < featureCount; i++ {
			d := f[i] - c[i]
			dist += d * d
		}
		if dist < bestDist {
			bestDist = dist
			best = label
		}
	}
	return best
}
