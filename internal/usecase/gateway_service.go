package usecase

import (
	"context"

	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

// CricketProvider is one upstream sports data source. Implementations live
// under external/ and handle their own auth, retries and rate limits.
type CricketProvider interface {
	Name() string
	ListMatches(ctx context.Context) ([]cricket.RawMatch, error)
	MatchInfo(ctx context.Context, externalID string) (cricket.MatchInfo, error)
	LiveScorecard(ctx context.Context, externalID string) (cricket.RawScorecard, error)
}

// SportsGateway is the provider-agnostic surface the pipeline consumes.
// Lookups never return errors: a cycle that gets nothing simply tries again
// on the next tick.
type SportsGateway interface {
	FetchUpcomingMatches(ctx context.Context) []cricket.RawMatch
	FetchMatchStatus(ctx context.Context, externalID string) (cricket.MatchInfo, bool)
	FetchLiveScorecard(ctx context.Context, externalID string) (cricket.Scorecard, bool)
}

// GatewayService fronts a primary provider with an optional fallback.
// Provider failures are logged and absorbed here so callers only ever see
// empty results.
type GatewayService struct {
	providers []CricketProvider
	logger    *logging.Logger
}

func NewGatewayService(logger *logging.Logger, providers ...CricketProvider) *GatewayService {
	if logger == nil {
		logger = logging.Default()
	}
	active := make([]CricketProvider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &GatewayService{providers: active, logger: logger}
}

func (s *GatewayService) FetchUpcomingMatches(ctx context.Context) []cricket.RawMatch {
	ctx, span := startUsecaseSpan(ctx, "usecase.Gateway.FetchUpcomingMatches")
	defer span.End()

	for _, p := range s.providers {
		matches, err := p.ListMatches(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "provider match listing failed",
				"provider", p.Name(),
				"error", err,
			)
			continue
		}
		return dedupeMatches(matches)
	}
	return nil
}

func (s *GatewayService) FetchMatchStatus(ctx context.Context, externalID string) (cricket.MatchInfo, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Gateway.FetchMatchStatus")
	defer span.End()

	for _, p := range s.providers {
		info, err := p.MatchInfo(ctx, externalID)
		if err != nil {
			s.logger.WarnContext(ctx, "provider match status failed",
				"provider", p.Name(),
				"external_match_id", externalID,
				"error", err,
			)
			continue
		}
		return info, true
	}
	return cricket.MatchInfo{}, false
}

func (s *GatewayService) FetchLiveScorecard(ctx context.Context, externalID string) (cricket.Scorecard, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Gateway.FetchLiveScorecard")
	defer span.End()

	for _, p := range s.providers {
		raw, err := p.LiveScorecard(ctx, externalID)
		if err != nil {
			s.logger.WarnContext(ctx, "provider scorecard failed",
				"provider", p.Name(),
				"external_match_id", externalID,
				"error", err,
			)
			continue
		}
		return cricket.Scorecard{
			MatchExternalID: externalID,
			Players:         cricket.NormalizePlayerStats(raw),
		}, true
	}
	return cricket.Scorecard{}, false
}

// dedupeMatches collapses duplicate listings by external id, keeping the
// first occurrence and dropping matches the provider already marks ended.
func dedupeMatches(matches []cricket.RawMatch) []cricket.RawMatch {
	seen := make(map[string]struct{}, len(matches))
	out := make([]cricket.RawMatch, 0, len(matches))
	for _, m := range matches {
		if m.ExternalID == "" || m.Ended {
			continue
		}
		if _, ok := seen[m.ExternalID]; ok {
			continue
		}
		seen[m.ExternalID] = struct{}{}
		out = append(out, m)
	}
	return out
}
