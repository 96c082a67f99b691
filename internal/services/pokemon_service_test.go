package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brunodmn/pokehub/internal/cache"
	"github.com/brunodmn/pokehub/internal/pokeapi"
	apperrors "github.com/brunodmn/pokehub/pkg/errors"
)

func newPokemonService(t *testing.T, handler http.Handler) (*PokemonService, *int64) {
	t.Helper()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client := pokeapi.NewClient(pokeapi.Config{BaseURL: server.URL})
	svc, err := NewPokemonService(cache.NewMemory(time.Hour), client)
	require.NoError(t, err)
	return svc, &calls
}

func jsonHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestListCachesSuccess(t *testing.T) {
	body := `{"count":1,"next":null,"previous":null,"results":[{"name":"pikachu","url":"u"}]}`
	svc, calls := newPokemonService(t, jsonHandler(http.StatusOK, body))
	ctx := context.Background()

	first, err := svc.List(ctx, 20, 0)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, first.Status)
	require.JSONEq(t, body, string(first.Body))

	second, err := svc.List(ctx, 20, 0)
	require.NoError(t, err)
	require.JSONEq(t, body, string(second.Body))

	require.EqualValues(t, 1, atomic.LoadInt64(calls))
}

func TestListPaginationKeysAreDistinct(t *testing.T) {
	svc, calls := newPokemonService(t, jsonHandler(http.StatusOK, `{"count":0,"results":[]}`))
	ctx := context.Background()

	_, err := svc.List(ctx, 20, 0)
	require.NoError(t, err)
	_, err = svc.List(ctx, 20, 20)
	require.NoError(t, err)
	_, err = svc.List(ctx, 50, 0)
	require.NoError(t, err)

	require.EqualValues(t, 3, atomic.LoadInt64(calls))
}

func TestDetailFailureIsNotCached(t *testing.T) {
	svc, calls := newPokemonService(t, jsonHandler(http.StatusNotFound, `{"detail":"Not found."}`))
	ctx := context.Background()

	res, err := svc.Detail(ctx, "missingno")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.Status)

	_, err = svc.Detail(ctx, "missingno")
	require.NoError(t, err)

	// Both calls reached the remote source.
	require.EqualValues(t, 2, atomic.LoadInt64(calls))
	require.Zero(t, svc.CacheStats().TotalEntries)
}

func TestDetailTransportFailure(t *testing.T) {
	client := pokeapi.NewClient(pokeapi.Config{BaseURL: "http://127.0.0.1:1"})
	svc, err := NewPokemonService(cache.NewMemory(time.Hour), client)
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), "pikachu")
	require.Error(t, err)
	require.Equal(t, apperrors.ErrUpstreamUnavailable.Code, apperrors.FromError(err).Code)
	require.Zero(t, svc.CacheStats().TotalEntries)
}

func TestListByTypeNormalizesAndCaches(t *testing.T) {
	raw := `{
		"id": 11,
		"name": "water",
		"pokemon": [
			{"pokemon": {"name": "squirtle", "url": "https://example.test/pokemon/7/"}, "slot": 1},
			{"pokemon": {"name": "", "url": "https://example.test/pokemon/8/"}, "slot": 2},
			{"pokemon": {"name": "psyduck", "url": ""}, "slot": 3},
			{"pokemon": {"name": "staryu", "url": "https://example.test/pokemon/120/"}, "slot": 4}
		]
	}`
	svc, calls := newPokemonService(t, jsonHandler(http.StatusOK, raw))
	ctx := context.Background()

	res, err := svc.ListByType(ctx, "water")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)

	var got struct {
		Count   int `json:"count"`
		Results []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(res.Body, &got))
	require.Equal(t, 2, got.Count)
	require.Len(t, got.Results, 2)
	require.Equal(t, "squirtle", got.Results[0].Name)
	require.Equal(t, "staryu", got.Results[1].Name)

	// Second call is served from the cache in normalized form.
	again, err := svc.ListByType(ctx, "water")
	require.NoError(t, err)
	require.JSONEq(t, string(res.Body), string(again.Body))
	require.EqualValues(t, 1, atomic.LoadInt64(calls))
}

func TestListByTypeEmptySerializesResultsArray(t *testing.T) {
	svc, _ := newPokemonService(t, jsonHandler(http.StatusOK, `{"name":"fairy","pokemon":[]}`))

	res, err := svc.ListByType(context.Background(), "fairy")
	require.NoError(t, err)
	require.JSONEq(t, `{"count":0,"results":[]}`, string(res.Body))
}

func TestListByTypeFailurePassesThrough(t *testing.T) {
	svc, _ := newPokemonService(t, jsonHandler(http.StatusNotFound, `{"detail":"Not found."}`))

	res, err := svc.ListByType(context.Background(), "unknown")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.Status)
	require.Zero(t, svc.CacheStats().TotalEntries)
}

func TestCacheStatsAndClear(t *testing.T) {
	svc, _ := newPokemonService(t, jsonHandler(http.StatusOK, `{"count":0,"results":[]}`))
	ctx := context.Background()

	_, err := svc.List(ctx, 20, 0)
	require.NoError(t, err)
	_, err = svc.ListTypes(ctx)
	require.NoError(t, err)

	stats := svc.CacheStats()
	require.Equal(t, 2, stats.TotalEntries)
	require.Equal(t, 1, stats.Categories[cache.CategoryList])
	require.Equal(t, 1, stats.Categories[cache.CategoryTypeList])

	svc.ClearCache()
	require.Zero(t, svc.CacheStats().TotalEntries)
}
