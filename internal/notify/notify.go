package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/logger"
	"github.com/vijay-prabhu/jobmatch/internal/match"
)

// Request is one notification about one high-quality match
type Request struct {
	ID             string    `json:"id"`
	ProfileID      string    `json:"profile_id"`
	PostingID      string    `json:"posting_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Score          float64   `json:"match_score"`
	MatchingSkills []string  `json:"matching_skills"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRequest builds the notification for a match
func NewRequest(profile match.Profile, result match.MatchResult) Request {
	skills := make([]string, len(result.MatchingSkills))
	copy(skills, result.MatchingSkills)

	return Request{
		ID:             uuid.New().String(),
		ProfileID:      profile.ID,
		PostingID:      result.Posting.ID,
		Title:          result.Posting.Title,
		Company:        result.Posting.Company,
		Score:          result.Score,
		MatchingSkills: skills,
		CreatedAt:      time.Now().UTC(),
	}
}

// Transport delivers notification requests
type Transport interface {
	Name() string
	Send(ctx context.Context, req Request) error
}

// Result is the outcome of one dispatch
type Result struct {
	Request Request `json:"request"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// OK reports whether the dispatch succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Report collects the outcome of one notification batch
type Report struct {
	Transport string   `json:"transport"`
	Attempted int      `json:"attempted"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// Err joins every dispatch failure, or returns nil when all succeeded
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Options controls which matches are notified
type Options struct {
	HighThreshold float64
	TopN          int
	Timeout       time.Duration // per dispatch, 0 disables
}

// DefaultOptions returns the standard notification policy
func DefaultOptions() Options {
	return Options{
		HighThreshold: 0.7,
		TopN:          3,
		Timeout:       10 * time.Second,
	}
}

// SelectTopMatches keeps matches scoring at least highThreshold and returns
// the first topN of them in the given order
func SelectTopMatches(ranked []match.MatchResult, highThreshold float64, topN int) []match.MatchResult {
	selected := []match.MatchResult{}
	if topN <= 0 {
		return selected
	}

	for _, r := range ranked {
		if r.Score < highThreshold {
			continue
		}
		selected = append(selected, r)
		if len(selected) == topN {
			break
		}
	}
	return selected
}

// Bridge turns ranked matches into notification dispatches
type Bridge struct {
	transport Transport
	opts      Options
	logger    *zap.Logger
}

// NewBridge creates a Bridge. A nil logger disables logging.
func NewBridge(transport Transport, opts Options, log *zap.Logger) *Bridge {
	return &Bridge{
		transport: transport,
		opts:      opts,
		logger:    logger.WithFields(log, zap.String(logger.FieldTransport, transport.Name())),
	}
}

// Options returns the bridge's notification policy
func (b *Bridge) Options() Options {
	return b.opts
}

// NotifyTopMatches dispatches one request per selected match, in ranked order.
// Each dispatch fails on its own: failures are logged and recorded in the
// report but never retried and never stop the rest of the batch. Once ctx is
// done, the remaining requests are recorded as failed without being sent.
func (b *Bridge) NotifyTopMatches(ctx context.Context, profile match.Profile, ranked []match.MatchResult) Report {
	selected := SelectTopMatches(ranked, b.opts.HighThreshold, b.opts.TopN)
	log := logger.WithProfile(b.logger, profile)

	report := Report{
		Transport: b.transport.Name(),
		Results:   make([]Result, 0, len(selected)),
	}

	for _, m := range selected {
		req := NewRequest(profile, m)
		report.Attempted++

		err := ctx.Err()
		if err == nil {
			err = b.dispatch(ctx, req)
		}

		res := Result{Request: req, Err: err}
		if err != nil {
			res.Error = err.Error()
			report.Failed++
			log.Warn("notification dispatch failed", append(logger.ResultFields(m), zap.Error(err))...)
		} else {
			report.Sent++
			log.Debug("notification sent", logger.ResultFields(m)...)
		}
		report.Results = append(report.Results, res)
	}

	log.Info("notification batch finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))

	return report
}

// NotifyAsync runs NotifyTopMatches in the background. The channel receives
// exactly one report and is then closed.
func (b *Bridge) NotifyAsync(ctx context.Context, profile match.Profile, ranked []match.MatchResult) <-chan Report {
	snapshot := make([]match.MatchResult, len(ranked))
	copy(snapshot, ranked)

	out := make(chan Report, 1)
	go func() {
		defer close(out)
		out <- b.NotifyTopMatches(ctx, profile, snapshot)
	}()
	return out
}

func (b *Bridge) dispatch(ctx context.Context, req Request) error {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}
	return b.transport.Send(ctx, req)
}
