package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pubfeed/config"
	"pubfeed/models"
	"pubfeed/providers/local"
	"pubfeed/services"
)

const testBib = `@article{smith2020,
  title = {Deep Learning for AI},
  author = {John Smith and Jane Doe},
  year = {2020},
  month = {mar},
  journal = {Journal of AI},
  note = {Cited by 42},
  url = {https://example.org/a}
}
@article{lee2019,
  title = {Graph Methods},
  author = {Kim Lee},
  year = {2019}
}`

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	path   string
	svc    *services.PublicationService
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "citations.bib")
	require.NoError(t, os.WriteFile(path, []byte(testBib), 0o644))

	cfg := &config.Config{
		APISecretKey:      apiKey,
		BibSource:         config.SourceFile,
		BibFilePath:       path,
		CacheTTL:          time.Hour,
		DefaultPageLimit:  20,
		MaxPageLimit:      100,
		CollationLanguage: "en",
	}
	logger := zaptest.NewLogger(t)
	svc := services.NewPublicationService(cfg, logger, local.NewFetcher(path, logger), nil)
	return &testServer{router: newRouter(cfg, svc, logger), path: path, svc: svc}
}

func (s *testServer) do(method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type flatPage struct {
	Data       []models.Publication `json:"data"`
	Pagination models.Pagination    `json:"pagination"`
}

func TestListPublications_Flat(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(http.MethodGet, "/api/publications?group=none&limit=1&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var page flatPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Graph Methods", page.Data[0].Title)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 1, TotalItems: 2, TotalPages: 2}, page.Pagination)
}

func TestListPublications_GroupedByDefault(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(http.MethodGet, "/api/publications?search=graph", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.PublicationGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2019", body.Data[0].Year)
}

func TestListPublications_SourceMissingReturnsEmptyPage(t *testing.T) {
	srv := newTestServer(t, "")
	require.NoError(t, os.Remove(srv.path))

	w := srv.do(http.MethodGet, "/api/publications?page=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":20,"totalItems":0,"totalPages":0}}`, w.Body.String())
}

func TestGetPublication(t *testing.T) {
	srv := newTestServer(t, "")
	w := srv.do(http.MethodGet, "/api/publications?group=none", nil)
	var page flatPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.NotEmpty(t, page.Data)

	w = srv.do(http.MethodGet, "/api/publications/"+page.Data[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Publication models.Publication `json:"publication"`
		Reference   string             `json:"reference"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Deep Learning for AI", body.Publication.Title)
	assert.Equal(t, "John Smith, Jane Doe (2020). Deep Learning for AI. Journal of AI. https://example.org/a", body.Reference)

	w = srv.do(http.MethodGet, "/api/publications/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefresh_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t, "secret")

	w := srv.do(http.MethodPost, "/api/publications/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(http.MethodPost, "/api/publications/refresh", map[string]string{"X-API-KEY": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"refreshed","publications":2}`, w.Body.String())
}

func TestRefresh_NoValidPublications(t *testing.T) {
	srv := newTestServer(t, "")
	require.NoError(t, os.WriteFile(srv.path, []byte("% empty bibliography"), 0o644))

	w := srv.do(http.MethodPost, "/api/publications/refresh", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_VALID_PUBLICATIONS")
}

func TestRefresh_SourceUnavailable(t *testing.T) {
	srv := newTestServer(t, "")
	require.NoError(t, os.Remove(srv.path))

	w := srv.do(http.MethodPost, "/api/publications/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(http.MethodOptions, "/api/publications", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-API-KEY")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string         `json:"status"`
		Cache  services.Stats `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)

	_, err := srv.svc.Refresh(context.Background())
	require.NoError(t, err)

	w = srv.do(http.MethodGet, "/health", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 2, body.Cache.Publications)
	assert.NotNil(t, body.Cache.LastRefresh)
}

func TestListPublications_Gzip(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(http.MethodGet, "/api/publications", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestGetPublication_SourceUnavailable(t *testing.T) {
	srv := newTestServer(t, "")
	require.NoError(t, os.Remove(srv.path))

	w := srv.do(http.MethodGet, "/api/publications/any-id", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "publications unavailable")
}
