package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-optimizer/internal/llm"
)

// Config bounds what the Selector keeps
type Config struct {
	MaxJobs                  int `json:"max_jobs" validate:"gte=1"`
	MaxSkills                int `json:"max_skills" validate:"gte=1"`
	MaxAccomplishmentsPerJob int `json:"max_accomplishments_per_job" validate:"gte=1"`
	// MaxEducation caps education and certification items together; 0 means no cap
	MaxEducation      int     `json:"max_education" validate:"gte=0"`
	MinRelevanceScore float64 `json:"min_relevance_score" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the default selection limits
func DefaultConfig() Config {
	return Config{
		MaxJobs:                  3,
		MaxSkills:                15,
		MaxAccomplishmentsPerJob: 4,
		MaxEducation:             3,
		MinRelevanceScore:        0.3,
	}
}

var validate = validator.New()

// Validate reports out-of-range limits as an InvalidRequestError
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return &llm.InvalidRequestError{Message: "invalid selector config: " + strings.Join(msgs, "; ")}
		}
		return &llm.InvalidRequestError{Message: "invalid selector config: " + err.Error()}
	}
	return nil
}
