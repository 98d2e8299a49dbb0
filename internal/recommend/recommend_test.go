package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

type memorySource struct {
	profiles   map[string]match.Profile
	postings   []match.Posting
	postingErr error
	gotFilters source.PostingFilters
}

func (m *memorySource) FetchJobSeekerProfile(ctx context.Context, userID string) (*match.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, source.NewProfileNotFound(userID)
	}
	return &p, nil
}

func (m *memorySource) FetchActivePostings(ctx context.Context, filters source.PostingFilters) ([]match.Posting, error) {
	m.gotFilters = filters
	if m.postingErr != nil {
		return nil, m.postingErr
	}
	return m.postings, nil
}

type countingTransport struct {
	sent []notify.Request
}

func (c *countingTransport) Name() string { return "counting" }

func (c *countingTransport) Send(ctx context.Context, req notify.Request) error {
	c.sent = append(c.sent, req)
	return nil
}

func fixture() *memorySource {
	return &memorySource{
		profiles: map[string]match.Profile{
			"u1": {
				ID:                "u1",
				Skills:            []string{"go", "postgres"},
				ExperienceLevel:   match.LevelSenior,
				PreferredJobTypes: []string{"full-time"},
				Location:          "Berlin",
			},
		},
		postings: []match.Posting{
			{ID: "low", SkillsRequired: []string{"cobol"}, Location: "Tokyo", JobType: "contract", ExperienceLevel: match.LevelEntry},
			{ID: "high", SkillsRequired: []string{"go", "postgres"}, Location: "Berlin", JobType: "full-time", ExperienceLevel: match.LevelSenior},
			{ID: "mid", SkillsRequired: []string{"go", "rust"}, Location: "Remote", JobType: "full-time", ExperienceLevel: match.LevelSenior},
		},
	}
}

func TestRecommender_Rank(t *testing.T) {
	src := fixture()
	r := New(src, src, nil)

	filters := source.PostingFilters{Company: "acme"}
	ranking, err := r.Rank(context.Background(), "u1", RankOptions{Filters: filters})
	require.NoError(t, err)

	assert.Equal(t, filters, src.gotFilters)
	assert.Equal(t, 3, ranking.Evaluated)
	require.Len(t, ranking.Matches, 3)
	assert.Equal(t, "high", ranking.Matches[0].Posting.ID)
	assert.Equal(t, "mid", ranking.Matches[1].Posting.ID)
	assert.Equal(t, "low", ranking.Matches[2].Posting.ID)
	assert.Equal(t, "u1", ranking.Profile.ID)
}

func TestRecommender_RankMinScoreAndLimit(t *testing.T) {
	src := fixture()
	r := New(src, src, nil)

	ranking, err := r.Rank(context.Background(), "u1", RankOptions{MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, ranking.Matches, 2)

	ranking, err = r.Rank(context.Background(), "u1", RankOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, ranking.Matches, 1)
	assert.Equal(t, "high", ranking.Matches[0].Posting.ID)
}

func TestRecommender_RankFailsFast(t *testing.T) {
	src := fixture()
	src.postingErr = errors.New("connection reset")
	r := New(src, src, nil)

	_, err := r.Rank(context.Background(), "u1", RankOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, src.postingErr)
	assert.Contains(t, err.Error(), "failed to fetch postings")

	_, err = r.Rank(context.Background(), "nobody", RankOptions{})
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestRecommender_ScoreWithoutLookup(t *testing.T) {
	src := fixture()
	r := New(src, src, nil)

	result, err := r.Score(context.Background(), "u1", "mid")
	require.NoError(t, err)
	assert.Equal(t, "mid", result.Posting.ID)
	assert.Equal(t, []string{"go"}, result.MatchingSkills)

	_, err = r.Score(context.Background(), "u1", "gone")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

type lookupOnly struct {
	posting *match.Posting
}

func (l lookupOnly) GetPosting(ctx context.Context, id string) (*match.Posting, error) {
	if l.posting == nil || l.posting.ID != id {
		return nil, source.NewPostingNotFound(id)
	}
	return l.posting, nil
}

func TestRecommender_ScoreWithLookup(t *testing.T) {
	src := fixture()
	closed := &match.Posting{ID: "closed", SkillsRequired: []string{"go"}, IsActive: false}
	r := New(src, src, nil, WithLookup(lookupOnly{posting: closed}))

	result, err := r.Score(context.Background(), "u1", "closed")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Breakdown.Skills)
}

func TestRecommender_Notify(t *testing.T) {
	src := fixture()
	transport := &countingTransport{}
	bridge := notify.NewBridge(transport, notify.DefaultOptions(), nil)
	r := New(src, src, nil, WithBridge(bridge))

	outcome, err := r.Notify(context.Background(), "u1", RankOptions{})
	require.NoError(t, err)

	for _, req := range transport.sent {
		assert.GreaterOrEqual(t, req.Score, 0.7)
		assert.Equal(t, "u1", req.ProfileID)
	}
	assert.Equal(t, len(transport.sent), outcome.Report.Sent)
	require.NotEmpty(t, transport.sent)
	assert.Equal(t, "high", transport.sent[0].PostingID)
}

func TestRecommender_NotifyDisabled(t *testing.T) {
	src := fixture()
	r := New(src, src, nil)

	_, err := r.Notify(context.Background(), "u1", RankOptions{})
	assert.ErrorIs(t, err, ErrNotifyDisabled)
}
