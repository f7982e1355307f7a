package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pubfeed/config"
	"pubfeed/models"
)

type fakeProvider struct {
	content string
	err     error
	calls   int
}

func (p *fakeProvider) Fetch(ctx context.Context) (string, error) {
	p.calls++
	return p.content, p.err
}

func (p *fakeProvider) Name() string { return "fake" }

func testConfig() *config.Config {
	return &config.Config{
		CacheTTL:          time.Hour,
		DefaultPageLimit:  20,
		MaxPageLimit:      100,
		CollationLanguage: "en",
	}
}

func newTestService(t *testing.T, provider *fakeProvider) *PublicationService {
	t.Helper()
	return NewPublicationService(testConfig(), zaptest.NewLogger(t), provider, nil)
}

func TestPublicationService_QueryUsesCache(t *testing.T) {
	provider := &fakeProvider{content: sampleBib}
	svc := newTestService(t, provider)

	page := svc.Query(context.Background(), QueryParams{Group: GroupNone})
	data, ok := page.Data.([]models.Publication)
	require.True(t, ok)
	assert.Len(t, data, 3)
	assert.Equal(t, 3, page.Pagination.TotalItems)

	svc.Query(context.Background(), QueryParams{Search: "graph"})
	assert.Equal(t, 1, provider.calls)
}

func TestPublicationService_SourceFailureReturnsEmptyPage(t *testing.T) {
	svc := newTestService(t, &fakeProvider{err: errors.New("no such file")})

	page := svc.Query(context.Background(), QueryParams{Page: 3, Limit: 7})
	assert.Equal(t, models.Pagination{Page: 1, Limit: 7}, page.Pagination)
	assert.Equal(t, []models.Publication{}, page.Data)
}

func TestPublicationService_EmptyBibliographyReturnsEmptyPage(t *testing.T) {
	svc := newTestService(t, &fakeProvider{content: "nothing to see"})

	page := svc.Query(context.Background(), QueryParams{})
	assert.Equal(t, 0, page.Pagination.TotalItems)
	assert.Equal(t, 0, page.Pagination.TotalPages)

	_, err := svc.Publications(context.Background())
	assert.True(t, IsErrorCode(err, CodeNoValidPublications))
}

func TestPublicationService_FindByID(t *testing.T) {
	svc := newTestService(t, &fakeProvider{content: sampleBib})

	pubs, err := svc.Publications(context.Background())
	require.NoError(t, err)

	got, found, err := svc.FindByID(context.Background(), pubs[1].ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Graph Methods", got.Title)

	_, found, err = svc.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPublicationService_RefreshReplacesRecords(t *testing.T) {
	provider := &fakeProvider{content: sampleBib}
	svc := newTestService(t, provider)

	before, err := svc.Publications(context.Background())
	require.NoError(t, err)

	provider.content = "@article{only, title = {Only One}, year = {2024}}"
	count, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	after, err := svc.Publications(context.Background())
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Only One", after[0].Title)
	assert.NotEqual(t, before[0].ID, after[0].ID)
	assert.Equal(t, 2, provider.calls)
}

func TestPublicationService_RefreshFailureKeepsCache(t *testing.T) {
	provider := &fakeProvider{content: sampleBib}
	svc := newTestService(t, provider)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	provider.err = errors.New("unreachable")
	_, err = svc.Refresh(context.Background())
	assert.Error(t, err)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.Publications)
	assert.Equal(t, "fake", stats.Source)
	assert.NotNil(t, stats.LastRefresh)
}

func TestPublicationService_StatsBeforeLoad(t *testing.T) {
	svc := newTestService(t, &fakeProvider{content: sampleBib})
	stats := svc.Stats()
	assert.Equal(t, 0, stats.Publications)
	assert.Nil(t, stats.LastRefresh)
}
