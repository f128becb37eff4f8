package credibility

import (
	"errors"
	"fmt"
	"math"
)

// WeightTolerance is the allowed deviation of the weight sum from 1.0.
const WeightTolerance = 1e-6

// ErrWeightSum reports weights that do not sum to 1.0. It is a warning: LoadWeights still
// returns the configured weights alongside it.
var ErrWeightSum = errors.New("credibility weights do not sum to 1.0")

// Weights maps each signal category to its share of the overall score.
type Weights struct {
	SourceReliability float64 `yaml:"sourceReliability"`
	FactualAccuracy   float64 `yaml:"factualAccuracy"`
	BiasLevel         float64 `yaml:"biasLevel"`
	UserVotes         float64 `yaml:"userVotes"`
	Attestation       float64 `yaml:"attestation"`
}

// DefaultWeights returns the canonical 0.30/0.30/0.20/0.10/0.10 table.
func DefaultWeights() Weights {
	return Weights{
		SourceReliability: 0.30,
		FactualAccuracy:   0.30,
		BiasLevel:         0.20,
		UserVotes:         0.10,
		Attestation:       0.10,
	}
}

// Sum adds all five weights.
func (w Weights) Sum() float64 {
	return w.SourceReliability + w.FactualAccuracy + w.BiasLevel + w.UserVotes + w.Attestation
}

// Validate returns an error wrapping ErrWeightSum when the sum is off by more than WeightTolerance.
func (w Weights) Validate() error {
	if total := w.Sum(); math.Abs(total-1.0) > WeightTolerance {
		return fmt.Errorf("%w: total = %g", ErrWeightSum, total)
	}
	return nil
}

// LoadWeights validates cfg and returns it unchanged. A non-nil error is a warning for the
// caller to log; strict hosts may treat it as fatal.
func LoadWeights(cfg Weights) (Weights, error) {
	return cfg, cfg.Validate()
}
