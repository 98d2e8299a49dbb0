package match

import (
	"errors"
	"fmt"
	"math"
)

// Weights sets how much each sub-score contributes to the match score
type Weights struct {
	Skills     float64 `toml:"skills" json:"skills"`
	Experience float64 `toml:"experience" json:"experience"`
	JobType    float64 `toml:"job_type" json:"job_type"`
	Location   float64 `toml:"location" json:"location"`
	Salary     float64 `toml:"salary" json:"salary"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Skills + w.Experience + w.JobType + w.Location + w.Salary
}

// ReasonThresholds are the sub-scores a result must exceed to earn a reason
type ReasonThresholds struct {
	Skills     float64 `toml:"skills" json:"skills"`
	Experience float64 `toml:"experience" json:"experience"`
	JobType    float64 `toml:"job_type" json:"job_type"`
	Location   float64 `toml:"location" json:"location"`
	Salary     float64 `toml:"salary" json:"salary"`
}

// Config configures the score aggregator
type Config struct {
	Weights Weights          `toml:"weights" json:"weights"`
	Reasons ReasonThresholds `toml:"reasons" json:"reasons"`
}

// DefaultConfig returns the standard weighting
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Skills:     0.40,
			Experience: 0.20,
			JobType:    0.15,
			Location:   0.15,
			Salary:     0.10,
		},
		Reasons: ReasonThresholds{
			Skills:     0.5,
			Experience: 0.7,
			JobType:    0.7,
			Location:   0.7,
			Salary:     0.7,
		},
	}
}

const weightTolerance = 1e-6

// Validate checks that weights are non-negative and sum to 1, and that
// every threshold lies in [0,1]
func (c Config) Validate() error {
	var errs []error

	weights := map[string]float64{
		"skills":     c.Weights.Skills,
		"experience": c.Weights.Experience,
		"job_type":   c.Weights.JobType,
		"location":   c.Weights.Location,
		"salary":     c.Weights.Salary,
	}
	for _, name := range []string{"skills", "experience", "job_type", "location", "salary"} {
		if weights[name] < 0 {
			errs = append(errs, fmt.Errorf("weight %s must not be negative, got %v", name, weights[name]))
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("weights must sum to 1, got %v", sum))
	}

	thresholds := map[string]float64{
		"skills":     c.Reasons.Skills,
		"experience": c.Reasons.Experience,
		"job_type":   c.Reasons.JobType,
		"location":   c.Reasons.Location,
		"salary":     c.Reasons.Salary,
	}
	for _, name := range []string{"skills", "experience", "job_type", "location", "salary"} {
		if v := thresholds[name]; v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("reason threshold %s must be between 0 and 1, got %v", name, v))
		}
	}

	return errors.Join(errs...)
}

// Scorer aggregates matcher outputs into match results
type Scorer struct {
	config Config
}

// NewScorer creates a new Scorer with the given configuration
func NewScorer(config Config) *Scorer {
	return &Scorer{config: config}
}

// Config returns the scorer's configuration
func (s *Scorer) Config() Config {
	return s.config
}

// Aggregate scores one posting for one profile
func (s *Scorer) Aggregate(profile Profile, posting Posting) MatchResult {
	skills, matched := MatchSkills(profile.Skills, posting.SkillsRequired)
	b := Breakdown{
		Skills:     skills,
		Experience: MatchExperience(profile.ExperienceLevel, posting.ExperienceLevel),
		JobType:    MatchJobType(profile.PreferredJobTypes, posting.JobType),
		Location:   MatchLocation(profile.Location, posting.Location, profile.WillingToRelocate),
		Salary: MatchSalary(profile.SalaryExpectationMin, profile.SalaryExpectationMax,
			posting.SalaryMin, posting.SalaryMax),
	}

	w := s.config.Weights
	total := w.Skills*b.Skills +
		w.Experience*b.Experience +
		w.JobType*b.JobType +
		w.Location*b.Location +
		w.Salary*b.Salary

	return MatchResult{
		Posting:        posting,
		Score:          clamp(total, 0, 1),
		MatchingSkills: matched,
		Reasons:        s.reasons(b),
		Breakdown:      b,
	}
}

func (s *Scorer) reasons(b Breakdown) []Reason {
	t := s.config.Reasons
	reasons := []Reason{}

	if b.Skills > t.Skills {
		reasons = append(reasons, Reason{
			Kind:    ReasonSkills,
			Message: fmt.Sprintf("Strong skill match (%d%%)", int(math.Round(b.Skills*100))),
		})
	}
	if b.Experience > t.Experience {
		reasons = append(reasons, Reason{Kind: ReasonExperience, Message: "Experience level matches well"})
	}
	if b.JobType > t.JobType {
		reasons = append(reasons, Reason{Kind: ReasonJobType, Message: "Job type matches your preferences"})
	}
	if b.Location > t.Location {
		reasons = append(reasons, Reason{Kind: ReasonLocation, Message: "Location is a good match"})
	}
	if b.Salary > t.Salary {
		reasons = append(reasons, Reason{Kind: ReasonSalary, Message: "Salary range aligns with expectations"})
	}

	return reasons
}

var defaultScorer = NewScorer(DefaultConfig())

// Aggregate scores one posting using the default weighting
func Aggregate(profile Profile, posting Posting) MatchResult {
	return defaultScorer.Aggregate(profile, posting)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
