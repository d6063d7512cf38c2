package cricapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

const (
	defaultBaseURL  = "https://api.cricapi.com/v1"
	defaultTimeout  = 15 * time.Second
	listPageSize    = 25
	maxListPages    = 4
	responseMaxSize = 6 << 20
)

type ClientConfig struct {
	HTTPClient *fasthttp.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client is the fallback provider. CricAPI uses a flat api key query
// parameter and offset pagination on list endpoints.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			MaxResponseBodySize: responseMaxSize,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		logger:     logger,
	}
}

func (c *Client) Name() string { return "cricapi" }

type listEnvelope struct {
	Status string          `json:"status"`
	Data   []matchListItem `json:"data"`
	Info   pagingInfo      `json:"info"`
}

type pagingInfo struct {
	TotalRows int `json:"totalRows"`
	Offset    int `json:"offsetRows"`
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

type infoEnvelope struct {
	Status string        `json:"status"`
	Data   matchListItem `json:"data"`
}

type scorecardEnvelope struct {
	Status string        `json:"status"`
	Data   scorecardData `json:"data"`
}

type scorecardData struct {
	Scorecard []scorecardInnings `json:"scorecard"`
}

type scorecardInnings struct {
	Batting []map[string]any `json:"batting"`
	Bowling []map[string]any `json:"bowling"`
	Fielder []map[string]any `json:"fielding"`
}

func (c *Client) ListMatches(ctx context.Context) ([]cricket.RawMatch, error) {
	seen := make(map[string]struct{}, 64)
	out := make([]cricket.RawMatch, 0, 64)

	for page := 0; page < maxListPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		offset := page * listPageSize
		raw, err := c.getJSON("/matches", map[string]string{
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return nil, fmt.Errorf("fetch match list offset=%d: %w", offset, err)
		}

		var envelope listEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode match list: %w", err)
		}
		if !strings.EqualFold(envelope.Status, "success") {
			return nil, fmt.Errorf("provider returned status %q", envelope.Status)
		}

		for _, item := range envelope.Data {
			id := strings.TrimSpace(item.ID)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, mapMatchItem(item, raw))
		}

		if len(envelope.Data) < listPageSize {
			break
		}
		if envelope.Info.TotalRows > 0 && offset+listPageSize >= envelope.Info.TotalRows {
			break
		}
	}

	return out, nil
}

func (c *Client) MatchInfo(ctx context.Context, externalID string) (cricket.MatchInfo, error) {
	if strings.TrimSpace(externalID) == "" {
		return cricket.MatchInfo{}, fmt.Errorf("external match id is required")
	}
	if err := ctx.Err(); err != nil {
		return cricket.MatchInfo{}, err
	}

	raw, err := c.getJSON("/match_info", map[string]string{"id": externalID})
	if err != nil {
		return cricket.MatchInfo{}, fmt.Errorf("fetch match info id=%s: %w", externalID, err)
	}

	var envelope infoEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return cricket.MatchInfo{}, fmt.Errorf("decode match info: %w", err)
	}
	if !strings.EqualFold(envelope.Status, "success") {
		return cricket.MatchInfo{}, fmt.Errorf("provider returned status %q", envelope.Status)
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
	if err := ctx.Err(); err != nil {
		return cricket.RawScorecard{}, err
	}

	raw, err := c.getJSON("/match_scorecard", map[string]string{"id": externalID})
	if err != nil {
		return cricket.RawScorecard{}, fmt.Errorf("fetch scorecard id=%s: %w", externalID, err)
	}

	var envelope scorecardEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return cricket.RawScorecard{}, fmt.Errorf("decode scorecard: %w", err)
	}
	if !strings.EqualFold(envelope.Status, "success") {
		return cricket.RawScorecard{}, fmt.Errorf("provider returned status %q", envelope.Status)
	}

	entries := make([]map[string]any, 0, 32)
	for _, innings := range envelope.Data.Scorecard {
		entries = append(entries, innings.Batting...)
		entries = append(entries, innings.Bowling...)
		entries = append(entries, innings.Fielder...)
	}

	return cricket.RawScorecard{
		MatchExternalID: externalID,
		Entries:         entries,
	}, nil
}

func (c *Client) getJSON(path string, query map[string]string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("cricapi key is not configured")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")

	args := req.URI().QueryArgs()
	args.Set("apikey", c.apiKey)
	for key, value := range query {
		args.Set(key, value)
	}

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body))
	}

	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
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

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
