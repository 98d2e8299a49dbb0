package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/logger"
	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

// ErrNotifyDisabled is returned by Notify when no bridge is configured
var ErrNotifyDisabled = errors.New("notifications are not configured")

// Recommender fetches a seeker's inputs, ranks postings and optionally notifies
type Recommender struct {
	postings source.PostingSource
	profiles source.ProfileSource
	lookup   source.PostingLookup
	scorer   *match.Scorer
	bridge   *notify.Bridge
	logger   *zap.Logger
}

// Option customizes a Recommender
type Option func(*Recommender)

// WithBridge enables Notify
func WithBridge(b *notify.Bridge) Option {
	return func(r *Recommender) { r.bridge = b }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithLookup sets a direct posting lookup for Score
func WithLookup(l source.PostingLookup) Option {
	return func(r *Recommender) { r.lookup = l }
}

// New creates a Recommender. A nil scorer uses the default weighting.
func New(postings source.PostingSource, profiles source.ProfileSource, scorer *match.Scorer, opts ...Option) *Recommender {
	if scorer == nil {
		scorer = match.NewScorer(match.DefaultConfig())
	}
	r := &Recommender{
		postings: postings,
		profiles: profiles,
		scorer:   scorer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.lookup == nil {
		if l, ok := postings.(source.PostingLookup); ok {
			r.lookup = l
		}
	}
	return r
}

// Scorer returns the scorer in use
func (r *Recommender) Scorer() *match.Scorer {
	return r.scorer
}

// RankOptions controls one ranking pass
type RankOptions struct {
	Filters  source.PostingFilters
	MinScore float64
	Limit    int // 0 keeps every result
}

// Ranking is the outcome of one ranking pass
type Ranking struct {
	Profile   match.Profile       `json:"profile"`
	Evaluated int                 `json:"evaluated"`
	Matches   []match.MatchResult `json:"matches"`
	RankedAt  time.Time           `json:"ranked_at"`
}

// Rank ranks the active postings for a user. Fetch failures are returned
// as errors; nothing is ranked from a partial or empty fallback.
func (r *Recommender) Rank(ctx context.Context, userID string, opts RankOptions) (*Ranking, error) {
	profile, err := r.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	postings, err := r.postings.FetchActivePostings(ctx, opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch postings: %w", err)
	}

	matches := r.scorer.Rank(*profile, postings, opts.MinScore)
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	logger.WithProfile(r.logger, *profile).Debug("ranked postings",
		zap.Int("evaluated", len(postings)),
		zap.Int("matches", len(matches)),
		zap.Float64("min_score", opts.MinScore))

	return &Ranking{
		Profile:   *profile,
		Evaluated: len(postings),
		Matches:   matches,
		RankedAt:  time.Now().UTC(),
	}, nil
}

// Score scores a single posting for a user, active or not
func (r *Recommender) Score(ctx context.Context, userID, postingID string) (*match.MatchResult, error) {
	profile, err := r.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	posting, err := r.posting(ctx, postingID)
	if err != nil {
		return nil, err
	}

	result := r.scorer.Aggregate(*profile, *posting)
	return &result, nil
}

// Outcome pairs a ranking with the notifications it produced
type Outcome struct {
	Ranking *Ranking      `json:"ranking"`
	Report  notify.Report `json:"report"`
}

// Notify ranks postings for a user and dispatches notifications for the top
// matches. Dispatch failures are reported in the outcome, not as an error.
func (r *Recommender) Notify(ctx context.Context, userID string, opts RankOptions) (*Outcome, error) {
	if r.bridge == nil {
		return nil, ErrNotifyDisabled
	}

	ranking, err := r.Rank(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	report := r.bridge.NotifyTopMatches(ctx, ranking.Profile, ranking.Matches)
	return &Outcome{Ranking: ranking, Report: report}, nil
}

func (r *Recommender) profile(ctx context.Context, userID string) (*match.Profile, error) {
	profile, err := r.profiles.FetchJobSeekerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", source.NewProfileNotFound(userID))
	}
	return profile, nil
}

func (r *Recommender) posting(ctx context.Context, id string) (*match.Posting, error) {
	if r.lookup != nil {
		p, err := r.lookup.GetPosting(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch posting: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("failed to fetch posting: %w", source.NewPostingNotFound(id))
		}
		return p, nil
	}

	postings, err := r.postings.FetchActivePostings(ctx, source.PostingFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch postings: %w", err)
	}
	for i := range postings {
		if postings[i].ID == id {
			return &postings[i], nil
		}
	}
	return nil, source.NewPostingNotFound(id)
}
