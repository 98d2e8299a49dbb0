package match

import (
	"reflect"
	"testing"
)

func rankFixture() (Profile, []Posting) {
	profile := Profile{
		ID:                "seeker-1",
		Skills:            []string{"go", "kubernetes", "postgres"},
		ExperienceLevel:   LevelMid,
		PreferredJobTypes: []string{"full-time"},
		Location:          "Berlin",
	}

	postings := []Posting{
		{ID: "weak", SkillsRequired: []string{"java"}, ExperienceLevel: LevelExecutive, JobType: "contract", Location: "Tokyo"},
		{ID: "strong", SkillsRequired: []string{"go", "postgres"}, ExperienceLevel: LevelMid, JobType: "full-time", Location: "Berlin"},
		{ID: "tie-a", SkillsRequired: []string{"go"}, ExperienceLevel: LevelSenior, JobType: "full-time", Location: "Remote"},
		{ID: "tie-b", SkillsRequired: []string{"go"}, ExperienceLevel: LevelSenior, JobType: "full-time", Location: "Remote"},
		{ID: "medium", SkillsRequired: []string{"go", "rust"}, ExperienceLevel: LevelMid, JobType: "part-time", Location: "Munich"},
	}

	return profile, postings
}

func ids(results []MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Posting.ID
	}
	return out
}

func TestRank_SortedDescendingAndStable(t *testing.T) {
	profile, postings := rankFixture()

	results := Rank(profile, postings, 0)
	if len(results) != len(postings) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(postings))
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results[%d].Score = %v > results[%d].Score = %v", i, results[i].Score, i-1, results[i-1].Score)
		}
	}

	got := ids(results)
	want := []string{"strong", "tie-a", "tie-b", "medium", "weak"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRank_Deterministic(t *testing.T) {
	profile, postings := rankFixture()

	first := Rank(profile, postings, 0)
	second := Rank(profile, postings, 0)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Rank is not deterministic:\n%v\n%v", ids(first), ids(second))
	}
}

func TestRank_MinScoreFiltersWithoutReordering(t *testing.T) {
	profile, postings := rankFixture()

	all := Rank(profile, postings, 0)
	for _, min := range []float64{0.3, 0.6, 0.9, 1.1} {
		filtered := Rank(profile, postings, min)

		var want []string
		for _, r := range all {
			if r.Score >= min {
				want = append(want, r.Posting.ID)
			}
		}
		got := ids(filtered)
		if len(got) == 0 && len(want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Rank(minScore=%v) = %v, want %v", min, got, want)
		}
	}
}

func TestRank_Empty(t *testing.T) {
	results := Rank(Profile{}, nil, 0)
	if results == nil || len(results) != 0 {
		t.Errorf("Rank(nil) = %v, want empty slice", results)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	profile, postings := rankFixture()
	before := ids(func() []MatchResult {
		out := make([]MatchResult, len(postings))
		for i, p := range postings {
			out[i] = MatchResult{Posting: p}
		}
		return out
	}())

	Rank(profile, postings, 0)

	for i, p := range postings {
		if p.ID != before[i] {
			t.Errorf("postings[%d].ID = %q, want %q", i, p.ID, before[i])
		}
	}
}
