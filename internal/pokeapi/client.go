package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/brunodmn/pokehub/pkg/errors"
	"github.com/brunodmn/pokehub/pkg/logger"
	"github.com/brunodmn/pokehub/pkg/metrics"
)

// DefaultBaseURL targets the public PokeAPI.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Default timeouts per remote operation class.
const (
	DefaultListTimeout   = 20 * time.Second // list page, type detail
	DefaultDetailTimeout = 15 * time.Second // pokemon detail, type list
)

// limitFallbacks is the descending ladder of page sizes retried when the
// remote source rejects a limit with a validation status.
var limitFallbacks = []int{1000, 500, 200, 100, 50, 20, 10}

// emptyPage is the degraded success payload returned when every candidate
// limit is rejected.
var emptyPage = json.RawMessage(`{"count":0,"next":null,"previous":null,"results":[]}`)

// Config bundles client construction options.
type Config struct {
	BaseURL       string
	ListTimeout   time.Duration
	DetailTimeout time.Duration
	HTTPClient    *http.Client
}

// Result carries an upstream response verbatim: its status code and raw body.
type Result struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the upstream answered with a success status.
func (r Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client issues read requests against the remote Pokémon data source.
type Client struct {
	baseURL       string
	listTimeout   time.Duration
	detailTimeout time.Duration
	http          *http.Client
	log           *zap.Logger
}

// NewClient constructs a Client from the supplied configuration.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	listTimeout := cfg.ListTimeout
	if listTimeout <= 0 {
		listTimeout = DefaultListTimeout
	}

	detailTimeout := cfg.DetailTimeout
	if detailTimeout <= 0 {
		detailTimeout = DefaultDetailTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:       baseURL,
		listTimeout:   listTimeout,
		detailTimeout: detailTimeout,
		http:          httpClient,
		log:           logger.WithModule("pokeapi"),
	}
}

// ListPage fetches one page of the Pokémon listing. When the remote source
// rejects the requested limit with a validation status (400/422), the call is
// retried over a fixed descending ladder of limits, stopping at the first
// success. If every candidate is rejected the call degrades to an empty page
// rather than an error. Any other failure status is returned verbatim.
func (c *Client) ListPage(ctx context.Context, limit, offset int) (Result, error) {
	candidates := make([]int, 0, len(limitFallbacks)+1)
	candidates = append(candidates, limit)
	candidates = append(candidates, limitFallbacks...)

	for _, candidate := range candidates {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(candidate))
		query.Set("offset", strconv.Itoa(offset))

		res, err := c.get(ctx, "list", c.listTimeout, "/pokemon?"+query.Encode())
		if err != nil {
			return Result{}, err
		}

		c.log.Info("list page",
			zap.Int("limit", candidate),
			zap.Int("offset", offset),
			zap.Int("status", res.Status),
		)

		if res.Status == http.StatusBadRequest || res.Status == http.StatusUnprocessableEntity {
			continue
		}
		return res, nil
	}

	c.log.Warn("all list limits rejected; degrading to empty page",
		zap.Int("requested_limit", limit),
		zap.Int("offset", offset),
	)
	return Result{Status: http.StatusOK, Body: emptyPage}, nil
}

// Detail fetches a single Pokémon; the response passes through unmodified.
func (c *Client) Detail(ctx context.Context, name string) (Result, error) {
	return c.get(ctx, "detail", c.detailTimeout, "/pokemon/"+url.PathEscape(name))
}

// ListTypes fetches the full type listing; the response passes through unmodified.
func (c *Client) ListTypes(ctx context.Context) (Result, error) {
	return c.get(ctx, "type_list", c.detailTimeout, "/type")
}

// TypeDetail fetches the raw type payload. Callers are responsible for
// normalizing its pokemon wrapper entries.
func (c *Client) TypeDetail(ctx context.Context, name string) (Result, error) {
	return c.get(ctx, "type_detail", c.listTimeout, "/type/"+url.PathEscape(name))
}

func (c *Client) get(ctx context.Context, operation string, timeout time.Duration, path string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Result{}, fmt.Errorf("pokeapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(operation, "error").Inc()
		return Result{}, apperrors.ErrUpstreamUnavailable.WithInternal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(operation, "error").Inc()
		return Result{}, apperrors.ErrUpstreamUnavailable.WithInternal(err)
	}

	metrics.UpstreamRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	return Result{Status: resp.StatusCode, Body: body}, nil
}
