package classifier

import "SwingLab/internal/model"

// RuleModel is a deterministic rule-based signal source used as the fallback
// member of a prediction chain when no trained model is available.
//
// RSI extremes dominate; otherwise the EMA10/EMA20 alignment together with
// the MACD line decides trend direction, and a mid-range RSI yields HOLD.
type RuleModel struct{}

func (RuleModel) Name() string { return "rules" }

func (RuleModel) Predict(fv model.FeatureVector) model.Label {
	switch {
	case fv.RSI <= 30:
		return model.SignalBuy
	case fv.RSI >= 70:
		return model.SignalSell
	case fv.EMA10 > fv.EMA20 && fv.MACD > 0 && fv.RSI < 60:
		return model.SignalBuy
	case fv.EMA10 < fv.EMA20 && fv.MACD < 0 && fv.RSI > 40:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
