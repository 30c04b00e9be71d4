package classifier

import "SwingLab/internal/model"

// Prediction is a tagged classifier result: the label plus the name of the
// chain member that produced it. Callers can therefore distinguish "the
// model said HOLD" from "no model could run".
type Prediction struct {
	Label  model.Label
	Source string
}

// Chain is an ordered classifier fallback: members are consulted in order and
// the first available one wins.
type Chain struct {
	models []Model
}

// NewChain builds a chain from the given members. Nil members are dropped so
// a failed training step can be passed straight in.
func NewChain(models ...Model) *Chain {
	c := &Chain{}
	for _, m := range models {
		if m != nil {
			c.models = append(c.models, m)
		}
	}
	return c
}

// Predict runs the chain. The second return is false when every member is
// unavailable (no-signal), never when a member legitimately answered HOLD.
func (c *Chain) Predict(fv model.FeatureVector) (Prediction, bool) {
	if len(c.models) == 0 {
		return Prediction{}, false
	}
	m := c.models[0]
	return Prediction{Label: m.Predict(fv), Source: m.Name()}, true
}

// Empty reports whether the chain has no usable members.
func (c *Chain) Empty() bool { return len(c.models) == 0 }
