package pgstore

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

var _ source.Store = (*Store)(nil)

func TestPostingsQuery(t *testing.T) {
	tests := []struct {
		name     string
		filters  source.PostingFilters
		contains []string
		args     []interface{}
	}{
		{
			name:     "no filters",
			filters:  source.PostingFilters{},
			contains: []string{"WHERE is_active = true ORDER BY created_at DESC, id"},
			args:     []interface{}{},
		},
		{
			name:     "company and job type",
			filters:  source.PostingFilters{Company: "acme", JobType: "contract"},
			contains: []string{"company ILIKE $1", "LOWER(job_type) = LOWER($2)"},
			args:     []interface{}{"%acme%", "contract"},
		},
		{
			name:     "location with paging",
			filters:  source.PostingFilters{Location: "berlin", Limit: 10, Offset: 20},
			contains: []string{"location ILIKE $1", "LIMIT $2", "OFFSET $3"},
			args:     []interface{}{"%berlin%", 10, 20},
		},
		{
			name:     "offset without limit is ignored",
			filters:  source.PostingFilters{Offset: 5},
			contains: []string{"ORDER BY created_at DESC, id"},
			args:     []interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := postingsQuery(tt.filters)
			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("query %q missing %q", query, want)
				}
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("args = %v, want %v", args, tt.args)
			}
			if tt.filters.Limit == 0 && strings.Contains(query, "OFFSET") {
				t.Errorf("unexpected OFFSET in %q", query)
			}
		})
	}
}

// TestStore_Postgres runs against a live database when JOBMATCH_TEST_DATABASE_URL is set
func TestStore_Postgres(t *testing.T) {
	url := os.Getenv("JOBMATCH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("JOBMATCH_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, url)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()

	posting := &match.Posting{
		ID:             "pg-test-posting",
		Title:          "Go Engineer",
		Company:        "Acme",
		SkillsRequired: []string{"go", "postgres"},
		SalaryMin:      match.Float(100000),
		IsActive:       true,
	}
	if err := s.UpsertPosting(ctx, posting); err != nil {
		t.Fatalf("UpsertPosting() error: %v", err)
	}
	got, err := s.GetPosting(ctx, posting.ID)
	if err != nil {
		t.Fatalf("GetPosting() error: %v", err)
	}
	if !reflect.DeepEqual(got.SkillsRequired, posting.SkillsRequired) {
		t.Errorf("SkillsRequired = %v", got.SkillsRequired)
	}

	profile := &match.Profile{ID: "pg-test-seeker", Skills: []string{"go"}, ExperienceLevel: match.LevelMid}
	if err := s.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile() error: %v", err)
	}
	gotProfile, err := s.FetchJobSeekerProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("FetchJobSeekerProfile() error: %v", err)
	}
	if gotProfile.ExperienceLevel != match.LevelMid {
		t.Errorf("ExperienceLevel = %q", gotProfile.ExperienceLevel)
	}

	if _, err := s.FetchJobSeekerProfile(ctx, "pg-missing"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("missing profile error = %v, want ErrNotFound", err)
	}
}
