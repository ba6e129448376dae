package feeder_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-hub/config"
	"news-hub/feeder"
)

func newNewsAPIServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewsAPIClient_Fetch(t *testing.T) {
	body := `{"status":"ok","totalResults":2,"articles":[
		{"source":{"id":"techcrunch","name":"TechCrunch"},"author":"Jane","title":"AI raises","description":"d","url":"https://tc.com/1","urlToImage":"https://tc.com/1.png","publishedAt":"2024-05-01T10:00:00Z","content":"c"},
		{"source":{"id":null,"name":"Wired"},"author":null,"title":"[Removed]","url":"https://removed.com"}
	]}`
	srv := newNewsAPIServer(t, http.StatusOK, body, func(r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		assert.Equal(t, "techcrunch,wired", r.URL.Query().Get("sources"))
		assert.Equal(t, "40", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
	})

	c := feeder.NewNewsAPIClient(config.NewsAPIConfig{
		BaseURL:  srv.URL + "/v2",
		APIKey:   "secret",
		Sources:  []string{"techcrunch", "wired"},
		PageSize: 40,
	})

	got, err := c.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TechCrunch", got[0].Source.Name)
	assert.Equal(t, "2024-05-01T10:00:00Z", got[0].PublishedAt)
	assert.Equal(t, "https://tc.com/1.png", got[0].URLToImage)

	// the tombstone survives the client and is removed by the normalizer
	assert.Len(t, feeder.Normalize(got), 1)
}

func TestNewsAPIClient_LimitOverridesPageSize(t *testing.T) {
	srv := newNewsAPIServer(t, http.StatusOK, `{"status":"ok","articles":[]}`, func(r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
	})
	c := feeder.NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL})

	got, err := c.Fetch(context.Background(), 500)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewsAPIClient_Unauthorized(t *testing.T) {
	srv := newNewsAPIServer(t, http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`, nil)
	c := feeder.NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL, APIKey: "bad"})

	_, err := c.Fetch(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, feeder.ErrFeedUnavailable))
}

func TestNewsAPIClient_ErrorStatusInBody(t *testing.T) {
	srv := newNewsAPIServer(t, http.StatusOK, `{"status":"error","code":"rateLimited"}`, nil)
	c := feeder.NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL})

	_, err := c.Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, feeder.ErrFeedUnavailable)
}

func TestNewsAPIClient_Ping(t *testing.T) {
	srv := newNewsAPIServer(t, http.StatusOK, `{"status":"ok","sources":[]}`, func(r *http.Request) {
		assert.Equal(t, "/top-headlines/sources", r.URL.Path)
	})
	c := feeder.NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL, APIKey: "k"})
	assert.NoError(t, c.Ping(context.Background()))
}
