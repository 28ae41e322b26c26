package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advancedapi/internal/cache"
	"advancedapi/internal/model"
)

const popularBody = `{"page":1,"results":[
	{"id":550,"title":"Fight Club","original_title":"Fight Club","original_language":"en",
	 "overview":"An insomniac office worker...","release_date":"1999-10-15",
	 "vote_average":8.4,"vote_count":26000,"poster_path":"/p.jpg","backdrop_path":"/b.jpg"},
	{"id":13,"title":"Forrest Gump","release_date":"","vote_average":8.5,"vote_count":25000,"poster_path":""}
]}`

func newTestServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/popular", "/search/movie":
			w.Write([]byte(popularBody))
		case "/movie/550":
			w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139,"budget":63000000,"revenue":100853753,
				"genres":[{"name":"Drama"},{"name":"Thriller"}],"poster_path":"/p.jpg"}`))
		case "/movie/503":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, c *cache.Client) *Client {
	return New(Config{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		ImageBaseURL: "https://img.test/w500",
		CacheTTL:     time.Minute,
		HTTPClient:   srv.Client(),
	}, c)
}

func TestClient_Popular(t *testing.T) {
	var calls int32
	srv := newTestServer(t, &calls)
	client := newTestClient(srv, cache.New("", "", 0))

	movies, err := client.Popular(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "550", movies[0].ID)
	assert.Equal(t, model.SourceTMDB, movies[0].Source)
	require.NotNil(t, movies[0].Poster)
	assert.Equal(t, "https://img.test/w500/p.jpg", *movies[0].Poster)
	assert.Nil(t, movies[1].Poster)

	// second call is served from the cache
	_, err = client.Popular(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Search(t *testing.T) {
	var (
		calls int32
		query string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		query = r.URL.Query().Get("query")
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "ar", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(popularBody))
	}))
	t.Cleanup(srv.Close)

	client := New(Config{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		ImageBaseURL: "https://img.test/w500",
		Language:     "ar",
		CacheTTL:     time.Minute,
		HTTPClient:   srv.Client(),
	}, cache.New("", "", 0))

	movies, err := client.Search(context.Background(), "fight club", 2)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "fight club", query)
	assert.Equal(t, "550", movies[0].ID)
	assert.Equal(t, "Fight Club", movies[0].Title)
	assert.Equal(t, model.SourceTMDB, movies[0].Source)

	_, err = client.Search(context.Background(), "fight club", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_PopularCatalog(t *testing.T) {
	var calls int32
	client := newTestClient(newTestServer(t, &calls), nil)

	movies, err := client.PopularCatalog(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, movies, 2)

	fc := movies[0]
	assert.Equal(t, "Fight Club", fc.Title)
	require.NotNil(t, fc.ExternalIDs.TMDBID)
	assert.Equal(t, int64(550), *fc.ExternalIDs.TMDBID)
	require.NotNil(t, fc.ReleaseDate)
	assert.Equal(t, 1999, fc.ReleaseDate.Year())
	assert.Equal(t, "https://img.test/w500/b.jpg", fc.Backdrop)
	assert.NoError(t, fc.Validate())

	assert.Nil(t, movies[1].ReleaseDate)
}

func TestClient_Details(t *testing.T) {
	var calls int32
	client := newTestClient(newTestServer(t, &calls), nil)

	details, err := client.Details(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, 139, details.Runtime)
	assert.Equal(t, []string{"Drama", "Thriller"}, details.Genres)

	_, err = client.Details(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	client := newTestClient(newTestServer(t, &calls), nil)

	for i := 0; i < 5; i++ {
		_, err := client.Details(context.Background(), 503)
		assert.Error(t, err)
	}
	_, err := client.Details(context.Background(), 503)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(newTestServer(t, &calls), nil)

	for i := 0; i < 10; i++ {
		_, err := client.Details(context.Background(), 404)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, client.cb.State())
}

func TestClient_CanceledCallersDoNotTripBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(newTestServer(t, &calls), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 10; i++ {
		_, err := client.Details(ctx, 550)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, client.cb.State())

	details, err := client.Details(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, 139, details.Runtime)
}

func TestClient_Disabled(t *testing.T) {
	client := New(Config{}, nil)
	assert.False(t, client.Enabled())

	_, err := client.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, ErrDisabled)

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}
