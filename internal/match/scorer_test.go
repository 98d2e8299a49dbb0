package match

import (
	"reflect"
	"strings"
	"testing"
)

func strongProfile() Profile {
	return Profile{
		ID:                   "seeker-1",
		Skills:               []string{"Go", "Postgres"},
		ExperienceLevel:      LevelSenior,
		PreferredJobTypes:    []string{"full-time"},
		Location:             "Berlin",
		SalaryExpectationMin: Float(80000),
		SalaryExpectationMax: Float(100000),
		WillingToRelocate:    false,
	}
}

func TestAggregate_AllStrong(t *testing.T) {
	posting := Posting{
		ID:              "job-1",
		Title:           "Backend Engineer",
		Company:         "Acme",
		Location:        "berlin",
		JobType:         "Full-Time",
		ExperienceLevel: LevelSenior,
		SkillsRequired:  []string{"go", "postgres"},
		SalaryMin:       Float(90000),
		SalaryMax:       Float(120000),
		IsActive:        true,
	}

	r := Aggregate(strongProfile(), posting)

	if !almostEqual(r.Score, 1.0) {
		t.Errorf("Score = %v, want 1.0", r.Score)
	}
	if r.Score > 1 {
		t.Errorf("Score = %v exceeds 1", r.Score)
	}
	if r.Posting.ID != "job-1" {
		t.Errorf("Posting.ID = %q, want job-1", r.Posting.ID)
	}

	wantKinds := []ReasonKind{ReasonSkills, ReasonExperience, ReasonJobType, ReasonLocation, ReasonSalary}
	if len(r.Reasons) != len(wantKinds) {
		t.Fatalf("len(Reasons) = %d, want %d: %v", len(r.Reasons), len(wantKinds), r.Reasons)
	}
	for i, k := range wantKinds {
		if r.Reasons[i].Kind != k {
			t.Errorf("Reasons[%d].Kind = %v, want %v", i, r.Reasons[i].Kind, k)
		}
	}

	wantMsgs := []string{
		"Strong skill match (100%)",
		"Experience level matches well",
		"Job type matches your preferences",
		"Location is a good match",
		"Salary range aligns with expectations",
	}
	if got := r.ReasonMessages(); !reflect.DeepEqual(got, wantMsgs) {
		t.Errorf("ReasonMessages() = %v, want %v", got, wantMsgs)
	}
	if !reflect.DeepEqual(r.MatchingSkills, []string{"go", "postgres"}) {
		t.Errorf("MatchingSkills = %v", r.MatchingSkills)
	}
}

func TestAggregate_NeutralDefaults(t *testing.T) {
	profile := Profile{ID: "seeker-2", Skills: []string{"Go"}, ExperienceLevel: "wizard", Location: "Berlin"}
	posting := Posting{ID: "job-2", Location: "Paris", JobType: "contract"}

	r := Aggregate(profile, posting)

	// 0.4*0 + 0.2*0.5 + 0.15*0.5 + 0.15*0.2 + 0.1*0.5
	want := 0.255
	if !almostEqual(r.Score, want) {
		t.Errorf("Score = %v, want %v", r.Score, want)
	}
	if len(r.Reasons) != 0 {
		t.Errorf("Reasons = %v, want none", r.Reasons)
	}
	if r.Breakdown.Skills != 0 {
		t.Errorf("Breakdown.Skills = %v, want 0", r.Breakdown.Skills)
	}
	if len(r.MatchingSkills) != 0 {
		t.Errorf("MatchingSkills = %v, want empty", r.MatchingSkills)
	}
}

func TestAggregate_SkillReasonThreshold(t *testing.T) {
	tests := []struct {
		name     string
		skills   []string
		required []string
		wantMsg  string
	}{
		{"half is not strong", []string{"React", "TypeScript"}, []string{"react", "node"}, ""},
		{"two thirds rounds up", []string{"go", "sql"}, []string{"go", "mysql", "kafka"}, "Strong skill match (67%)"},
		{"three quarters", []string{"go", "sql", "docker"}, []string{"go", "sql", "docker", "k8s"}, "Strong skill match (75%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate(Profile{Skills: tt.skills}, Posting{SkillsRequired: tt.required})

			got := ""
			for _, reason := range r.Reasons {
				if reason.Kind == ReasonSkills {
					got = reason.Message
				}
			}
			if got != tt.wantMsg {
				t.Errorf("skill reason = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestAggregate_ScenarioA(t *testing.T) {
	r := Aggregate(
		Profile{Skills: []string{"React", "TypeScript"}},
		Posting{SkillsRequired: []string{"react", "node"}},
	)
	if r.Breakdown.Skills != 0.5 {
		t.Errorf("Breakdown.Skills = %v, want 0.5", r.Breakdown.Skills)
	}
	if !reflect.DeepEqual(r.MatchingSkills, []string{"react"}) {
		t.Errorf("MatchingSkills = %v, want [react]", r.MatchingSkills)
	}
}

func TestAggregate_ScoreAlwaysInRange(t *testing.T) {
	profiles := []Profile{
		strongProfile(),
		{},
		{Skills: []string{"a"}, ExperienceLevel: LevelExecutive, WillingToRelocate: true},
	}
	postings := []Posting{
		{},
		{SkillsRequired: []string{"a", "b"}, ExperienceLevel: LevelEntry, Location: "remote"},
		{SkillsRequired: []string{"go"}, JobType: "full-time", SalaryMin: Float(1), SalaryMax: Float(2)},
	}

	for _, p := range profiles {
		for _, j := range postings {
			r := Aggregate(p, j)
			if r.Score < 0 || r.Score > 1 {
				t.Errorf("Score = %v out of range for %+v / %+v", r.Score, p, j)
			}
		}
	}
}

func TestScorer_CustomConfig(t *testing.T) {
	cfg := Config{
		Weights: Weights{Skills: 1},
		Reasons: ReasonThresholds{Skills: 0.9, Experience: 1, JobType: 1, Location: 1, Salary: 1},
	}
	s := NewScorer(cfg)

	r := s.Aggregate(
		Profile{Skills: []string{"go"}, ExperienceLevel: LevelMid},
		Posting{SkillsRequired: []string{"go"}, ExperienceLevel: LevelMid},
	)
	if r.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", r.Score)
	}
	if len(r.Reasons) != 1 || r.Reasons[0].Kind != ReasonSkills {
		t.Errorf("Reasons = %v, want only skills", r.Reasons)
	}
}

func TestScorer_ClampsOverweightedSum(t *testing.T) {
	s := NewScorer(Config{Weights: Weights{Skills: 2, Experience: 2}})

	r := s.Aggregate(
		Profile{Skills: []string{"go"}, ExperienceLevel: LevelMid},
		Posting{SkillsRequired: []string{"go"}, ExperienceLevel: LevelMid},
	)
	if r.Score != 1.0 {
		t.Errorf("Score = %v, want clamped 1.0", r.Score)
	}

	neg := NewScorer(Config{Weights: Weights{Experience: -1}})
	r = neg.Aggregate(Profile{}, Posting{})
	if r.Score != 0 {
		t.Errorf("Score = %v, want clamped 0", r.Score)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"negative weight", func(c *Config) {
			c.Weights.Salary = -0.1
			c.Weights.Skills = 0.6
		}, "weight salary must not be negative"},
		{"weights do not sum to one", func(c *Config) { c.Weights.Skills = 0.5 }, "weights must sum to 1"},
		{"threshold above one", func(c *Config) { c.Reasons.Location = 1.5 }, "reason threshold location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
