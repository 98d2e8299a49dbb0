// Package scheduler runs the periodic match digest: on every tick it ranks
// postings for each watched profile and notifies the top matches.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/recommend"
)

// Notifier is the recommender call made for each profile on every tick
type Notifier interface {
	Notify(ctx context.Context, userID string, opts recommend.RankOptions) (*recommend.Outcome, error)
}

// ProfileLister supplies the profile ids to watch when none are configured
type ProfileLister interface {
	ListProfileIDs(ctx context.Context) ([]string, error)
}

// RunSummary describes one digest cycle
type RunSummary struct {
	Profiles int
	Sent     int
	Failed   int
	Errors   map[string]error
}

// Scheduler wraps robfig/cron and drives the digest loop
type Scheduler struct {
	cron       *cron.Cron
	notifier   Notifier
	lister     ProfileLister
	profileIDs []string
	opts       recommend.RankOptions
	spec       string
	logger     *zap.Logger

	mu      sync.Mutex
	running bool
}

// Config configures a Scheduler
type Config struct {
	Spec       string // cron spec, e.g. "@every 6h"
	ProfileIDs []string
	Options    recommend.RankOptions
}

// New creates a Scheduler. With no configured profile ids every profile from
// lister is watched.
func New(notifier Notifier, lister ProfileLister, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cronLogger{logger})),
		notifier:   notifier,
		lister:     lister,
		profileIDs: cfg.ProfileIDs,
		opts:       cfg.Options,
		spec:       cfg.Spec,
		logger:     logger,
	}
}

// Start registers the digest job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the cron loop and waits for a running digest to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce performs one digest cycle. Overlapping cycles are skipped, and a
// failure for one profile does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) RunSummary {
	summary := RunSummary{Errors: map[string]error{}}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous digest still running, skipping")
		return summary
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ids, err := s.watched(ctx)
	if err != nil {
		s.logger.Error("failed to list profiles", zap.Error(err))
		summary.Errors[""] = err
		return summary
	}
	if len(ids) == 0 {
		s.logger.Info("no profiles to watch")
		return summary
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		summary.Profiles++

		outcome, err := s.notifier.Notify(ctx, id, s.opts)
		if err != nil {
			s.logger.Error("digest failed for profile", zap.String("profile_id", id), zap.Error(err))
			summary.Errors[id] = err
			continue
		}
		summary.Sent += outcome.Report.Sent
		summary.Failed += outcome.Report.Failed
	}

	s.logger.Info("digest finished",
		zap.Int("profiles", summary.Profiles),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("errors", len(summary.Errors)))

	return summary
}

func (s *Scheduler) watched(ctx context.Context) ([]string, error) {
	if len(s.profileIDs) > 0 || s.lister == nil {
		return s.profileIDs, nil
	}
	return s.lister.ListProfileIDs(ctx)
}

// cronLogger adapts zap to cron's logger interface
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
