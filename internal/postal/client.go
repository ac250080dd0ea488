// Package postal looks up Brazilian addresses by postal code (CEP) through a ViaCEP-compatible service.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gestorpro/gestor-api/internal/cache"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidZip is returned when the postal code does not have exactly 8 digits
	ErrInvalidZip = errors.New("postal code must have 8 digits")
	// ErrZipNotFound is returned when the service knows no address for the postal code
	ErrZipNotFound = errors.New("postal code not found")
	// ErrInvalidQuery is returned when a search is missing state, city or a long enough street fragment
	ErrInvalidQuery = errors.New("state must have 2 letters, city and street at least 3 characters")
	// ErrUnavailable is returned on transport failures and unexpected responses
	ErrUnavailable = errors.New("postal service unavailable")
)

const (
	zipLength         = 8
	minSearchFragment = 3
	cacheScope        = "postal"
)

// Config configures the client
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
}

// Client calls the postal service with rate limiting, request collapsing and optional Redis caching.
// Requests are never retried.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
	cacheTTL   time.Duration
	sf         singleflight.Group
	logger     *zap.Logger
}

// NewClient creates a postal client. A nil cache disables caching.
func NewClient(cfg Config, c *cache.Cache, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cache:      c,
		cacheTTL:   cfg.CacheTTL,
		logger:     logger,
	}
}

// viaCEPAddress is the wire format of the service
type viaCEPAddress struct {
	CEP         string      `json:"cep"`
	Logradouro  string      `json:"logradouro"`
	Complemento string      `json:"complemento"`
	Bairro      string      `json:"bairro"`
	Localidade  string      `json:"localidade"`
	UF          string      `json:"uf"`
	Erro        interface{} `json:"erro,omitempty"`
}

// notFound reports the service's error marker, which is sent either as a boolean or a string
func (a *viaCEPAddress) notFound() bool {
	switch v := a.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func (a *viaCEPAddress) toDomain() domain.Address {
	return domain.Address{
		ZipCode:      domain.OnlyDigits(a.CEP),
		Street:       a.Logradouro,
		Complement:   a.Complemento,
		Neighborhood: a.Bairro,
		City:         a.Localidade,
		State:        a.UF,
	}
}

// LookupZip resolves a postal code to its street, neighborhood, city and state.
// Punctuation in zip is ignored.
func (c *Client) LookupZip(ctx context.Context, zip string) (*domain.Address, error) {
	digits := domain.OnlyDigits(zip)
	if len(digits) != zipLength {
		return nil, ErrInvalidZip
	}

	var addr domain.Address
	err := c.cached(ctx, "zip:"+digits, &addr, func(ctx context.Context) (interface{}, error) {
		var wire viaCEPAddress
		if err := c.get(ctx, fmt.Sprintf("/ws/%s/json/", digits), ErrInvalidZip, &wire); err != nil {
			return nil, err
		}
		if wire.notFound() {
			return nil, ErrZipNotFound
		}
		return wire.toDomain(), nil
	})
	c.record("zip", err)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// Search finds postal codes by state, city and a street fragment
func (c *Client) Search(ctx context.Context, state, city, street string) ([]domain.Address, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	city = strings.TrimSpace(city)
	street = strings.TrimSpace(street)
	if len(state) != 2 || len([]rune(city)) < minSearchFragment || len([]rune(street)) < minSearchFragment {
		return nil, ErrInvalidQuery
	}

	path := fmt.Sprintf("/ws/%s/%s/%s/json/", url.PathEscape(state), url.PathEscape(city), url.PathEscape(street))
	key := "search:" + strings.ToLower(state+":"+city+":"+street)

	var results []domain.Address
	err := c.cached(ctx, key, &results, func(ctx context.Context) (interface{}, error) {
		var wire []viaCEPAddress
		if err := c.get(ctx, path, ErrInvalidQuery, &wire); err != nil {
			return nil, err
		}
		out := make([]domain.Address, 0, len(wire))
		for i := range wire {
			out = append(out, wire[i].toDomain())
		}
		return out, nil
	})
	c.record("search", err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// cached collapses concurrent identical lookups and serves them from Redis when configured
func (c *Client) cached(ctx context.Context, key string, dest interface{}, load cache.Loader) error {
	raw, err := cache.Collapse(ctx, &c.sf, key, c.timeout, func(ctx context.Context) ([]byte, error) {
		cacheKey, err := c.cache.BuildKey(ctx, cacheScope, key)
		if err != nil {
			c.logger.Warn("postal cache unavailable", zap.Error(err))
			value, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return json.Marshal(value)
		}
		var out json.RawMessage
		if err := c.cache.FetchJSON(ctx, cacheKey, c.cacheTTL, &out, load); err != nil {
			return nil, err
		}
		return []byte(out), nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, ctxErr)
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

// get fetches path into dest. A 400 from the service is reported as badRequest.
func (c *Client) get(ctx context.Context, path string, badRequest error, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build postal request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return badRequest
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("unexpected postal service response",
			zap.Int("status_code", resp.StatusCode),
			zap.String("path", path),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) record(kind string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrZipNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	metrics.PostalLookupsTotal.WithLabelValues(kind, outcome).Inc()
}
