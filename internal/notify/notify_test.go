package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vijay-prabhu/jobmatch/internal/match"
)

type recordingTransport struct {
	mu     sync.Mutex
	sent   []Request
	failOn map[string]error
}

func (t *recordingTransport) Name() string { return "recording" }

func (t *recordingTransport) Send(ctx context.Context, req Request) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.failOn[req.PostingID]; ok {
		return err
	}
	t.sent = append(t.sent, req)
	return nil
}

func rankedWithScores(scores ...float64) []match.MatchResult {
	out := make([]match.MatchResult, len(scores))
	for i, s := range scores {
		id := string(rune('a' + i))
		out[i] = match.MatchResult{
			Posting:        match.Posting{ID: "job-" + id, Title: "Engineer " + id, Company: "Co " + id},
			Score:          s,
			MatchingSkills: []string{"go"},
		}
	}
	return out
}

func TestSelectTopMatches(t *testing.T) {
	ranked := rankedWithScores(0.95, 0.85, 0.72, 0.6, 0.3)

	tests := []struct {
		name      string
		threshold float64
		topN      int
		want      []string
	}{
		{"defaults", 0.7, 3, []string{"job-a", "job-b", "job-c"}},
		{"threshold is inclusive", 0.72, 5, []string{"job-a", "job-b", "job-c"}},
		{"top one", 0.7, 1, []string{"job-a"}},
		{"low threshold capped by top n", 0, 4, []string{"job-a", "job-b", "job-c", "job-d"}},
		{"nothing above threshold", 0.99, 3, []string{}},
		{"zero top n", 0.7, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectTopMatches(ranked, tt.threshold, tt.topN)
			ids := []string{}
			for _, r := range got {
				ids = append(ids, r.Posting.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestNotifyTopMatches_DispatchesTopThreeInOrder(t *testing.T) {
	transport := &recordingTransport{}
	bridge := NewBridge(transport, DefaultOptions(), nil)

	profile := match.Profile{ID: "seeker-1"}
	report := bridge.NotifyTopMatches(context.Background(), profile, rankedWithScores(0.95, 0.85, 0.72, 0.6, 0.3))

	require.Len(t, transport.sent, 3)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, report.Err())

	wantScores := []float64{0.95, 0.85, 0.72}
	for i, req := range transport.sent {
		assert.Equal(t, wantScores[i], req.Score)
		assert.Equal(t, "seeker-1", req.ProfileID)
		assert.Equal(t, []string{"go"}, req.MatchingSkills)
		assert.NotEmpty(t, req.ID)
	}
	assert.Equal(t, "job-a", transport.sent[0].PostingID)
	assert.Equal(t, "Engineer a", transport.sent[0].Title)
	assert.Equal(t, "Co a", transport.sent[0].Company)
}

func TestNotifyTopMatches_IsolatesFailures(t *testing.T) {
	boom := errors.New("smtp unavailable")
	transport := &recordingTransport{failOn: map[string]error{"job-b": boom}}

	core, observed := observer.New(zapcore.WarnLevel)
	bridge := NewBridge(transport, DefaultOptions(), zap.New(core))

	report := bridge.NotifyTopMatches(context.Background(), match.Profile{ID: "seeker-1"}, rankedWithScores(0.95, 0.85, 0.72))

	require.Len(t, report.Results, 3)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)

	assert.True(t, report.Results[0].OK())
	assert.False(t, report.Results[1].OK())
	assert.ErrorIs(t, report.Results[1].Err, boom)
	assert.Equal(t, "smtp unavailable", report.Results[1].Error)
	assert.True(t, report.Results[2].OK())
	assert.ErrorIs(t, report.Err(), boom)

	require.Len(t, transport.sent, 2)
	assert.Equal(t, "job-a", transport.sent[0].PostingID)
	assert.Equal(t, "job-c", transport.sent[1].PostingID)

	warnings := observed.FilterMessage("notification dispatch failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "job-b", warnings[0].ContextMap()["posting_id"])
}

func TestNotifyTopMatches_CancelledContext(t *testing.T) {
	transport := &recordingTransport{}
	bridge := NewBridge(transport, DefaultOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := bridge.NotifyTopMatches(ctx, match.Profile{}, rankedWithScores(0.9, 0.8))

	assert.Empty(t, transport.sent)
	assert.Equal(t, 2, report.Failed)
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestNotifyTopMatches_DoesNotMutateMatches(t *testing.T) {
	ranked := rankedWithScores(0.9)
	bridge := NewBridge(&recordingTransport{}, DefaultOptions(), nil)

	bridge.NotifyTopMatches(context.Background(), match.Profile{}, ranked)

	assert.Equal(t, rankedWithScores(0.9), ranked)
}

type slowTransport struct{}

func (slowTransport) Name() string { return "slow" }

func (slowTransport) Send(ctx context.Context, req Request) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotifyTopMatches_PerDispatchTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = 10 * time.Millisecond
	bridge := NewBridge(slowTransport{}, opts, nil)

	report := bridge.NotifyTopMatches(context.Background(), match.Profile{}, rankedWithScores(0.9, 0.8))

	require.Len(t, report.Results, 2)
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
}

func TestNotifyAsync(t *testing.T) {
	transport := &recordingTransport{}
	bridge := NewBridge(transport, DefaultOptions(), nil)

	ch := bridge.NotifyAsync(context.Background(), match.Profile{}, rankedWithScores(0.95, 0.1))

	select {
	case report := <-ch:
		assert.Equal(t, 1, report.Sent)
	case <-time.After(time.Second):
		t.Fatal("NotifyAsync did not report")
	}

	_, open := <-ch
	assert.False(t, open)
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisTransport_Send(t *testing.T) {
	pub := &fakePublisher{}
	tr := NewRedisTransport(pub, "")

	req := Request{ID: "n1", PostingID: "job-1", Title: "SRE", Company: "Acme", Score: 0.8, MatchingSkills: []string{"go"}}
	require.NoError(t, tr.Send(context.Background(), req))

	assert.Equal(t, DefaultChannel, pub.channel)

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.payload, &ev))
	assert.Equal(t, DefaultChannel, ev["type"])
	assert.Equal(t, "job-1", ev["posting_id"])
	assert.Equal(t, 0.8, ev["match_score"])
}

func TestRedisTransport_SendError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	tr := NewRedisTransport(pub, "matches")

	err := tr.Send(context.Background(), Request{ID: "n1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish matches")
}

func TestLogTransport_Send(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	tr := NewLogTransport(zap.New(core))

	require.NoError(t, tr.Send(context.Background(), Request{PostingID: "job-9", Score: 0.91}))

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "job-9", entries[0].ContextMap()["posting_id"])
}
