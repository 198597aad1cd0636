package committee

import (
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-optimizer/internal/llm"
)

// Config controls the review loop
type Config struct {
	MaxRounds int `json:"max_rounds" validate:"gte=1"`
	// ConsensusThreshold is the largest Advocate/Critic fit gap treated as agreement
	ConsensusThreshold float64 `json:"consensus_threshold" validate:"gte=0,lte=1"`
	// TargetFit ends the loop as soon as the Critic scores at or above it
	TargetFit float64 `json:"target_fit" validate:"gte=0,lte=1"`
	// FastMode runs the Critic and Writer on the lite tier
	FastMode bool `json:"fast_mode"`
}

// DefaultConfig returns the default loop settings
func DefaultConfig() Config {
	return Config{
		MaxRounds:          3,
		ConsensusThreshold: 0.05,
		TargetFit:          0.85,
	}
}

var validate = validator.New()

// Validate reports out-of-range settings as an InvalidRequestError
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &llm.InvalidRequestError{Message: "invalid committee config: " + err.Error()}
	}
	return nil
}

// Tier returns the model tier a role runs on. The Advocate always uses
// the primary model.
func (c Config) Tier(role Role) llm.ModelTier {
	if c.FastMode && role != RoleAdvocate {
		return llm.TierLite
	}
	return llm.TierAdvanced
}
