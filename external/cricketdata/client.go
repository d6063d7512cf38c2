package cricketdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/platform/cache"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
	"github.com/wicketplay/fantasy-cricket/internal/platform/resilience"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

const (
	defaultBaseURL = "https://api.cricketdata.org"
	authTokenKey   = "cricketdata:auth-token"
)

var bearerTokenRegex = regexp.MustCompile(`Bearer\s+[^\s"']+`)
var errCricketDataTransient = crerr.New("cricketdata transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Email          string
	Password       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	TokenCache     *cache.Store
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the cricketdata.org API. Auth is a login exchange that
// yields a bearer token; the token is cached and refreshed once on a 401.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	email          string
	password       string
	maxRetries     int
	logger         *logging.Logger
	tokenCache     *cache.Store
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	tokenCache := cfg.TokenCache
	if tokenCache == nil {
		tokenCache = cache.NewStore(30 * time.Minute)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		email:          strings.TrimSpace(cfg.Email),
		password:       cfg.Password,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		tokenCache:     tokenCache,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return "cricketdata" }

type matchListEnvelope struct {
	Data []matchListItem `json:"data"`
}

type matchListItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MatchType string   `json:"matchType"`
	Venue     string   `json:"venue"`
	DateTime  string   `json:"dateTimeGMT"`
	Teams     []string `json:"teams"`
	Status    string   `json:"status"`
	Ended     bool     `json:"matchEnded"`
}

type matchInfoEnvelope struct {
	Data matchListItem `json:"data"`
}

type scorecardEnvelope struct {
	Data scorecardData `json:"data"`
}

type scorecardData struct {
	Scorecard []scorecardInnings `json:"scorecard"`
	Catching  []map[string]any   `json:"catching"`
}

type scorecardInnings struct {
	Batting []map[string]any `json:"batting"`
	Bowling []map[string]any `json:"bowling"`
}

func (c *Client) ListMatches(ctx context.Context) ([]cricket.RawMatch, error) {
	var envelope matchListEnvelope
	raw, err := c.doJSON(ctx, "/v1/matches", nil, &envelope)
	if err != nil {
		return nil, fmt.Errorf("fetch match list: %w", err)
	}

	out := make([]cricket.RawMatch, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		out = append(out, mapMatchItem(item, raw))
	}
	return out, nil
}

func (c *Client) MatchInfo(ctx context.Context, externalID string) (cricket.MatchInfo, error) {
	if strings.TrimSpace(externalID) == "" {
		return cricket.MatchInfo{}, fmt.Errorf("external match id is required")
	}

	var envelope matchInfoEnvelope
	query := map[string]string{"id": externalID}
	if _, err := c.doJSON(ctx, "/v1/match_info", query, &envelope); err != nil {
		return cricket.MatchInfo{}, fmt.Errorf("fetch match info id=%s: %w", externalID, err)
	}

	return cricket.MatchInfo{
		ExternalID: externalID,
		Status:     strings.TrimSpace(envelope.Data.Status),
		Ended:      envelope.Data.Ended,
	}, nil
}

func (c *Client) LiveScorecard(ctx context.Context, externalID string) (cricket.RawScorecard, error) {
	if strings.TrimSpace(externalID) == "" {
		return cricket.RawScorecard{}, fmt.Errorf("external match id is required")
	}

	var envelope scorecardEnvelope
	query := map[string]string{"id": externalID}
	if _, err := c.doJSON(ctx, "/v1/match_scorecard", query, &envelope); err != nil {
		return cricket.RawScorecard{}, fmt.Errorf("fetch scorecard id=%s: %w", externalID, err)
	}

	return cricket.RawScorecard{
		MatchExternalID: externalID,
		Entries:         mergeScorecardEntries(envelope.Data),
	}, nil
}

func mapMatchItem(item matchListItem, raw []byte) cricket.RawMatch {
	teamA, teamB := "", ""
	if len(item.Teams) > 0 {
		teamA = strings.TrimSpace(item.Teams[0])
	}
	if len(item.Teams) > 1 {
		teamB = strings.TrimSpace(item.Teams[1])
	}

	startsAt := time.Time{}
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(item.DateTime)); err == nil {
		startsAt = parsed
	} else if parsed, err := time.Parse("2006-01-02T15:04:05", strings.TrimSpace(item.DateTime)); err == nil {
		startsAt = parsed.UTC()
	}

	return cricket.RawMatch{
		ExternalID: strings.TrimSpace(item.ID),
		Name:       strings.TrimSpace(item.Name),
		TeamA:      teamA,
		TeamB:      teamB,
		Format:     strings.TrimSpace(item.MatchType),
		Venue:      strings.TrimSpace(item.Venue),
		StartsAt:   startsAt,
		Ended:      item.Ended,
		Status:     strings.TrimSpace(item.Status),
		Payload:    raw,
	}
}

// mergeScorecardEntries folds batting, bowling and fielding rows into one
// entry per player so downstream normalization sees complete stat lines.
func mergeScorecardEntries(data scorecardData) []map[string]any {
	byName := make(map[string]map[string]any, 32)
	order := make([]string, 0, 32)

	merge := func(rows []map[string]any) {
		for _, row := range rows {
			name := entryPlayerName(row)
			if name == "" {
				continue
			}
			entry, ok := byName[name]
			if !ok {
				entry = map[string]any{"name": name}
				byName[name] = entry
				order = append(order, name)
			}
			for key, value := range row {
				if _, exists := entry[key]; !exists {
					entry[key] = value
				}
			}
		}
	}

	for _, innings := range data.Scorecard {
		merge(innings.Batting)
		merge(innings.Bowling)
	}
	merge(data.Catching)

	out := make([]map[string]any, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func entryPlayerName(row map[string]any) string {
	for _, key := range []string{"name", "player", "player_name", "batsman", "bowler"} {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricketdata circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sports data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	flightKey := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(flightKey, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errCricketDataTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	refreshed := false
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		token, err := c.authToken(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errCricketDataTransient, sanitizeSensitiveText(err.Error(), token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errCricketDataTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized && !refreshed:
				// Token expired upstream. Drop the cached token and retry
				// once with a fresh login.
				refreshed = true
				c.tokenCache.Delete(ctx, authTokenKey)
				lastErr = fmt.Errorf("provider rejected auth token")
				continue
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errCricketDataTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "cricketdata request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

type loginResponse struct {
	Token string `json:"token"`
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	value, err := c.tokenCache.GetOrLoad(ctx, authTokenKey, func(ctx context.Context) (any, error) {
		return c.login(ctx)
	})
	if err != nil {
		return "", err
	}

	token, ok := value.(string)
	if !ok || token == "" {
		return "", fmt.Errorf("invalid cached auth token")
	}
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	if c.email == "" || c.password == "" {
		return "", fmt.Errorf("cricketdata credentials are not configured")
	}

	body, err := sonic.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send login request: %s", sanitizeSensitiveText(err.Error(), c.password))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("login status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	var parsed loginResponse
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if strings.TrimSpace(parsed.Token) == "" {
		return "", fmt.Errorf("login response missing token")
	}

	c.logger.InfoContext(ctx, "cricketdata auth token refreshed")
	return strings.TrimSpace(parsed.Token), nil
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if secret != "" {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	value = bearerTokenRegex.ReplaceAllString(value, "Bearer REDACTED")
	return value
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
