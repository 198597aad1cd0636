// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ConnectionStrength labels how directly a resume claim supports a requirement
type ConnectionStrength string

// Connection strengths
const (
	StrengthStrong       ConnectionStrength = "strong"
	StrengthModerate     ConnectionStrength = "moderate"
	StrengthInferred     ConnectionStrength = "inferred"
	StrengthTransferable ConnectionStrength = "transferable"
)

// Connection links a resume claim to a job requirement
type Connection struct {
	Requirement string             `json:"requirement"`
	Evidence    string             `json:"evidence"`
	Strength    ConnectionStrength `json:"strength"`
	Confidence  float64            `json:"confidence"`
}

// Reframing is content that could be rephrased to match a requirement
// without inventing experience
type Reframing struct {
	Original    string `json:"original"`
	Suggested   string `json:"suggested"`
	Requirement string `json:"requirement,omitempty"`
}

// AdvocateAssessment is the Advocate role's case for the draft
type AdvocateAssessment struct {
	FitScore               float64      `json:"fit_score"`
	Connections            []Connection `json:"connections"`
	Strengths              []string     `json:"strengths"`
	ReframingOpportunities []Reframing  `json:"reframing_opportunities"`
}

// ChallengeType classifies a Critic objection
type ChallengeType string

// Challenge types
const (
	ChallengeOverclaim      ChallengeType = "overclaim"
	ChallengeUnsupported    ChallengeType = "unsupported"
	ChallengeMissing        ChallengeType = "missing"
	ChallengeWeakEvidence   ChallengeType = "weak_evidence"
	ChallengeTerminologyGap ChallengeType = "terminology_gap"
	ChallengeBlandification ChallengeType = "blandification"
)

// Severity ranks how serious a challenge is
type Severity string

// Severities
const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Challenge is a single Critic objection
type Challenge struct {
	Claim    string        `json:"claim"`
	Type     ChallengeType `json:"type"`
	Severity Severity      `json:"severity"`
	Reason   string        `json:"reason"`
}

// Gap is a requirement with no honest match in the draft
type Gap struct {
	Requirement  string `json:"requirement"`
	HardRequired bool   `json:"hard_required"`
	Reason       string `json:"reason,omitempty"`
}

// CriticAssessment is the Critic role's independent review
type CriticAssessment struct {
	FitScore           float64     `json:"fit_score"`
	Agreements         []string    `json:"agreements"`
	Challenges         []Challenge `json:"challenges"`
	ValidatedStrengths []string    `json:"validated_strengths"`
	GenuineGaps        []Gap       `json:"genuine_gaps"`
}

// CommitteeRound records one Advocate, Critic, Writer iteration
type CommitteeRound struct {
	Number        int                `json:"number"`
	Advocate      AdvocateAssessment `json:"advocate"`
	Critic        CriticAssessment   `json:"critic"`
	RevisedResume string             `json:"revised_resume"`
	// Improvement is the change in Critic fit score versus the previous round.
	// It is zero and not meaningful for round 1.
	Improvement   float64 `json:"improvement"`
	AdvocateModel string  `json:"advocate_model,omitempty"`
	CriticModel   string  `json:"critic_model,omitempty"`
	WriterModel   string  `json:"writer_model,omitempty"`
}

// TerminationReason is why the Committee stopped iterating
type TerminationReason string

// Termination reasons
const (
	TerminationConsensus     TerminationReason = "consensus"
	TerminationTargetReached TerminationReason = "target_reached"
	TerminationMaxRounds     TerminationReason = "max_rounds"
	TerminationNoImprovement TerminationReason = "no_improvement"
)

// CommitteeResult is the outcome of a Committee run
type CommitteeResult struct {
	Rounds            int               `json:"rounds"`
	RoundHistory      []CommitteeRound  `json:"round_history"`
	InitialFit        float64           `json:"initial_fit"`
	FinalFit          float64           `json:"final_fit"`
	Improvement       float64           `json:"improvement"`
	TerminationReason TerminationReason `json:"termination_reason"`
	FinalResume       string            `json:"final_resume"`
	FitHistory        []float64         `json:"fit_history"`
}
