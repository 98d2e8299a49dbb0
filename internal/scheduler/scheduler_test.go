package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/recommend"
)

type fakeNotifier struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error
	block  chan struct{}
}

func (f *fakeNotifier) Notify(ctx context.Context, userID string, opts recommend.RankOptions) (*recommend.Outcome, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()

	if err := f.failOn[userID]; err != nil {
		return nil, err
	}
	return &recommend.Outcome{
		Ranking: &recommend.Ranking{},
		Report:  notify.Report{Attempted: 2, Sent: 1, Failed: 1},
	}, nil
}

type staticLister []string

func (l staticLister) ListProfileIDs(ctx context.Context) ([]string, error) {
	return l, nil
}

func TestRunOnce_ConfiguredProfiles(t *testing.T) {
	n := &fakeNotifier{failOn: map[string]error{"u2": errors.New("db down")}}
	s := New(n, staticLister{"ignored"}, Config{Spec: "@every 1h", ProfileIDs: []string{"u1", "u2", "u3"}}, nil)

	summary := s.RunOnce(context.Background())

	assert.Equal(t, []string{"u1", "u2", "u3"}, n.calls)
	assert.Equal(t, 3, summary.Profiles)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.EqualError(t, summary.Errors["u2"], "db down")
}

func TestRunOnce_ListsProfilesWhenNoneConfigured(t *testing.T) {
	n := &fakeNotifier{}
	s := New(n, staticLister{"a", "b"}, Config{Spec: "@every 1h"}, nil)

	summary := s.RunOnce(context.Background())

	assert.Equal(t, []string{"a", "b"}, n.calls)
	assert.Equal(t, 2, summary.Profiles)
}

func TestRunOnce_CancelledContext(t *testing.T) {
	n := &fakeNotifier{}
	s := New(n, nil, Config{Spec: "@every 1h", ProfileIDs: []string{"u1"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := s.RunOnce(ctx)
	assert.Empty(t, n.calls)
	assert.Equal(t, 0, summary.Profiles)
}

func TestRunOnce_SkipsOverlap(t *testing.T) {
	n := &fakeNotifier{block: make(chan struct{})}
	s := New(n, nil, Config{Spec: "@every 1h", ProfileIDs: []string{"u1"}}, nil)

	done := make(chan RunSummary)
	go func() { done <- s.RunOnce(context.Background()) }()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	}, time.Second, 5*time.Millisecond)

	skipped := s.RunOnce(context.Background())
	assert.Equal(t, 0, skipped.Profiles)

	close(n.block)
	first := <-done
	assert.Equal(t, 1, first.Profiles)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(&fakeNotifier{}, nil, Config{Spec: "not a spec"}, nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	s := New(&fakeNotifier{}, nil, Config{Spec: "@every 1h"}, nil)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
