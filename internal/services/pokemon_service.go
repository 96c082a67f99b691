package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/brunodmn/pokehub/internal/cache"
	"github.com/brunodmn/pokehub/internal/pokeapi"
	"github.com/brunodmn/pokehub/pkg/metrics"
)

// PokemonService proxies the remote data source through the TTL cache.
// Successful payloads are cached under deterministic keys; failures are
// returned verbatim and never cached.
type PokemonService struct {
	cache  *cache.Memory
	client *pokeapi.Client
}

// NewPokemonService constructs a PokemonService instance.
func NewPokemonService(c *cache.Memory, client *pokeapi.Client) (*PokemonService, error) {
	if c == nil {
		return nil, errors.New("pokemon service: cache is required")
	}
	if client == nil {
		return nil, errors.New("pokemon service: client is required")
	}
	return &PokemonService{cache: c, client: client}, nil
}

// fetch runs the shared cache-aside pattern: cached payloads come back with a
// success status, misses hit the remote source and only success payloads are
// written back.
func (s *PokemonService) fetch(key string, remote func() (pokeapi.Result, error)) (pokeapi.Result, error) {
	if payload, ok := s.cache.Get(key); ok {
		metrics.CacheOperations.WithLabelValues("hit").Inc()
		return pokeapi.Result{Status: http.StatusOK, Body: payload}, nil
	}
	metrics.CacheOperations.WithLabelValues("miss").Inc()

	res, err := remote()
	if err != nil {
		return pokeapi.Result{}, err
	}

	if res.OK() {
		s.cache.Set(key, res.Body)
	}
	return res, nil
}

// List returns one page of the Pokémon listing. Limit and offset are assumed
// clamped by the caller.
func (s *PokemonService) List(ctx context.Context, limit, offset int) (pokeapi.Result, error) {
	ctx = ensureContext(ctx)
	return s.fetch(cache.ListKey(limit, offset), func() (pokeapi.Result, error) {
		return s.client.ListPage(ctx, limit, offset)
	})
}

// Detail returns a single Pokémon payload.
func (s *PokemonService) Detail(ctx context.Context, name string) (pokeapi.Result, error) {
	ctx = ensureContext(ctx)
	return s.fetch(cache.DetailKey(name), func() (pokeapi.Result, error) {
		return s.client.Detail(ctx, name)
	})
}

// ListTypes returns the full type listing.
func (s *PokemonService) ListTypes(ctx context.Context) (pokeapi.Result, error) {
	ctx = ensureContext(ctx)
	return s.fetch(cache.TypeListKey, func() (pokeapi.Result, error) {
		return s.client.ListTypes(ctx)
	})
}

// typeDetailPayload mirrors the wrapper entries of the raw upstream type
// payload; fields the normalization does not touch are ignored.
type typeDetailPayload struct {
	Pokemon []struct {
		Pokemon struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"pokemon"`
	} `json:"pokemon"`
}

// basicPokemon is one well-formed name/url pair of the normalized shape.
type basicPokemon struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type normalizedTypeList struct {
	Count   int            `json:"count"`
	Results []basicPokemon `json:"results"`
}

// ListByType returns the Pokémon of one type, normalized to
// {count, results:[{name,url}]}. Entries missing a name or url are dropped.
// The normalized shape, not the raw upstream one, is what gets cached.
func (s *PokemonService) ListByType(ctx context.Context, name string) (pokeapi.Result, error) {
	ctx = ensureContext(ctx)
	return s.fetch(cache.TypeDetailKey(name), func() (pokeapi.Result, error) {
		res, err := s.client.TypeDetail(ctx, name)
		if err != nil {
			return pokeapi.Result{}, err
		}
		if !res.OK() {
			return res, nil
		}

		var raw typeDetailPayload
		if err := json.Unmarshal(res.Body, &raw); err != nil {
			return pokeapi.Result{}, fmt.Errorf("pokemon service: decode type payload: %w", err)
		}

		normalized := normalizedTypeList{Results: []basicPokemon{}}
		for _, entry := range raw.Pokemon {
			if entry.Pokemon.Name == "" || entry.Pokemon.URL == "" {
				continue
			}
			normalized.Results = append(normalized.Results, basicPokemon{
				Name: entry.Pokemon.Name,
				URL:  entry.Pokemon.URL,
			})
		}
		normalized.Count = len(normalized.Results)

		body, err := json.Marshal(normalized)
		if err != nil {
			return pokeapi.Result{}, fmt.Errorf("pokemon service: encode normalized payload: %w", err)
		}
		return pokeapi.Result{Status: http.StatusOK, Body: body}, nil
	})
}

// CacheStats exposes cache introspection for the maintenance endpoint.
func (s *PokemonService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// ClearCache flushes every cached payload.
func (s *PokemonService) ClearCache() {
	s.cache.Clear()
}
