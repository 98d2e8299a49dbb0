package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/recommend"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

const defaultToolLimit = 20

func (s *Server) registerHandlers() {
	s.handlers["rank_matches"] = s.handleRankMatches
	s.handlers["score_posting"] = s.handleScorePosting
	s.handlers["notify_matches"] = s.handleNotifyMatches
}

type rankParams struct {
	UserID   string  `json:"user_id"`
	Company  string  `json:"company"`
	JobType  string  `json:"job_type"`
	Location string  `json:"location"`
	MinScore float64 `json:"min_score"`
	Limit    int     `json:"limit"`
}

func (p rankParams) options(limit int) (recommend.RankOptions, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return recommend.RankOptions{}, fmt.Errorf("user_id is required")
	}
	if p.MinScore < 0 || p.MinScore > 1 {
		return recommend.RankOptions{}, fmt.Errorf("min_score must be between 0 and 1")
	}
	if p.Limit > 0 {
		limit = p.Limit
	}
	return recommend.RankOptions{
		Filters: source.PostingFilters{
			Company:  p.Company,
			JobType:  p.JobType,
			Location: p.Location,
		},
		MinScore: p.MinScore,
		Limit:    limit,
	}, nil
}

func decodeRankParams(params json.RawMessage) (rankParams, error) {
	var p rankParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return p, fmt.Errorf("invalid parameters: %w", err)
		}
	}
	return p, nil
}

type rankMatchesResult struct {
	UserID    string              `json:"user_id"`
	Evaluated int                 `json:"evaluated"`
	Matches   []match.MatchResult `json:"matches"`
}

func (s *Server) handleRankMatches(ctx context.Context, params json.RawMessage) (interface{}, error) {
	p, err := decodeRankParams(params)
	if err != nil {
		return nil, err
	}

	limit := s.limit
	if limit <= 0 {
		limit = defaultToolLimit
	}
	opts, err := p.options(limit)
	if err != nil {
		return nil, err
	}

	ranking, err := s.svc.Rank(ctx, p.UserID, opts)
	if err != nil {
		return nil, err
	}

	return rankMatchesResult{
		UserID:    ranking.Profile.ID,
		Evaluated: ranking.Evaluated,
		Matches:   ranking.Matches,
	}, nil
}

type scorePostingParams struct {
	UserID    string `json:"user_id"`
	PostingID string `json:"posting_id"`
}

func (s *Server) handleScorePosting(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p scorePostingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.UserID == "" || p.PostingID == "" {
		return nil, fmt.Errorf("user_id and posting_id are required")
	}

	return s.svc.Score(ctx, p.UserID, p.PostingID)
}

type notifyMatchesResult struct {
	UserID    string          `json:"user_id"`
	Transport string          `json:"transport"`
	Attempted int             `json:"attempted"`
	Sent      int             `json:"sent"`
	Failed    int             `json:"failed"`
	Results   []notify.Result `json:"results"`
}

func (s *Server) handleNotifyMatches(ctx context.Context, params json.RawMessage) (interface{}, error) {
	p, err := decodeRankParams(params)
	if err != nil {
		return nil, err
	}
	opts, err := p.options(0)
	if err != nil {
		return nil, err
	}

	outcome, err := s.svc.Notify(ctx, p.UserID, opts)
	if err != nil {
		return nil, err
	}

	report := outcome.Report
	return notifyMatchesResult{
		UserID:    p.UserID,
		Transport: report.Transport,
		Attempted: report.Attempted,
		Sent:      report.Sent,
		Failed:    report.Failed,
		Results:   report.Results,
	}, nil
}

// handleReadResource returns the resource body and its mime type
func (s *Server) handleReadResource(ctx context.Context, uri string) (string, string, error) {
	switch uri {
	case weightsURI:
		data, err := json.MarshalIndent(s.svc.Scorer().Config(), "", "  ")
		if err != nil {
			return "", "", err
		}
		return string(data), "application/json", nil
	case profilesURI:
		text, err := s.getResourceProfiles(ctx)
		return text, "text/plain", err
	default:
		return "", "", fmt.Errorf("unknown resource: %s", uri)
	}
}

func (s *Server) getResourceProfiles(ctx context.Context) (string, error) {
	if s.profiles == nil {
		return "", fmt.Errorf("profile listing is not available")
	}

	ids, err := s.profiles.ListProfileIDs(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Job Seekers\n===========\n\n")
	if len(ids) == 0 {
		b.WriteString("No profiles yet. Run 'jobmatch import' to load some.\n")
		return b.String(), nil
	}
	for _, id := range ids {
		fmt.Fprintf(&b, "- %s\n", id)
	}
	return b.String(), nil
}
