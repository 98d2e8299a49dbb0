package match

import (
	"strings"
	"time"
)

// ExperienceLevel is one of the ordered seniority levels shared by profiles and postings
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelExecutive ExperienceLevel = "executive"
)

// Levels lists the known levels in ascending order
var Levels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior, LevelExecutive}

// Index returns the ordinal position of the level and whether it is known.
// Comparison ignores case and surrounding whitespace.
func (l ExperienceLevel) Index() (int, bool) {
	norm := ExperienceLevel(normalize(string(l)))
	for i, lvl := range Levels {
		if lvl == norm {
			return i, true
		}
	}
	return -1, false
}

// Profile describes a job seeker
type Profile struct {
	ID                   string          `json:"id"`
	Skills               []string        `json:"skills"`
	ExperienceLevel      ExperienceLevel `json:"experience_level"`
	PreferredJobTypes    []string        `json:"preferred_job_types"`
	Location             string          `json:"location"`
	SalaryExpectationMin *float64        `json:"salary_expectation_min,omitempty"`
	SalaryExpectationMax *float64        `json:"salary_expectation_max,omitempty"`
	Industries           []string        `json:"industries,omitempty"` // not scored yet
	WillingToRelocate    bool            `json:"willing_to_relocate"`
}

// Posting describes an open job
type Posting struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	JobType         string          `json:"job_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	SkillsRequired  []string        `json:"skills_required"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	Description     string          `json:"description,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ReasonKind tags which sub-score produced a reason
type ReasonKind string

const (
	ReasonSkills     ReasonKind = "skills"
	ReasonExperience ReasonKind = "experience"
	ReasonJobType    ReasonKind = "job_type"
	ReasonLocation   ReasonKind = "location"
	ReasonSalary     ReasonKind = "salary"
)

// Reason explains a notably strong sub-score
type Reason struct {
	Kind    ReasonKind `json:"kind"`
	Message string     `json:"message"`
}

func (r Reason) String() string {
	return r.Message
}

// Breakdown holds the unweighted sub-scores behind a match score
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	JobType    float64 `json:"job_type"`
	Location   float64 `json:"location"`
	Salary     float64 `json:"salary"`
}

// MatchResult is the scored pairing of one profile with one posting
type MatchResult struct {
	Posting        Posting   `json:"posting"`
	Score          float64   `json:"match_score"`
	MatchingSkills []string  `json:"matching_skills"`
	Reasons        []Reason  `json:"reasons"`
	Breakdown      Breakdown `json:"breakdown"`
}

// ReasonMessages returns the plain reason strings in order
func (r MatchResult) ReasonMessages() []string {
	msgs := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		msgs[i] = reason.Message
	}
	return msgs
}

// Float is a convenience for building optional numeric fields
func Float(v float64) *float64 {
	return &v
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
