package source

import (
	"context"
	"strings"

	"github.com/vijay-prabhu/jobmatch/internal/match"
)

// PostingFilters narrows the set of active postings fetched for one ranking pass
type PostingFilters struct {
	Company  string `json:"company,omitempty"`
	JobType  string `json:"job_type,omitempty"`
	Location string `json:"location,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// PostingSource supplies active job postings
type PostingSource interface {
	FetchActivePostings(ctx context.Context, filters PostingFilters) ([]match.Posting, error)
}

// ProfileSource supplies job seeker profiles
type ProfileSource interface {
	FetchJobSeekerProfile(ctx context.Context, userID string) (*match.Profile, error)
}

// PostingLookup fetches a single posting by id
type PostingLookup interface {
	GetPosting(ctx context.Context, id string) (*match.Posting, error)
}

// Store is a backend that serves every lookup the engine needs
type Store interface {
	PostingSource
	ProfileSource
	PostingLookup
	Close() error
}

// ParseList splits a comma-separated stored field into trimmed, non-empty entries
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of ParseList
func JoinList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			cleaned = append(cleaned, it)
		}
	}
	return strings.Join(cleaned, ",")
}
