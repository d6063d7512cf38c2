package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	idgen "github.com/wicketplay/fantasy-cricket/internal/platform/id"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

const defaultResyncWorkers = 8

// MatchSyncService keeps the match table aligned with the provider: it
// ingests upcoming fixtures and bulk-repairs statuses for matches the
// scheduler has not caught up with.
type MatchSyncService struct {
	gateway    SportsGateway
	matchRepo  match.Repository
	settlement *SettlementService
	idGen      idgen.Generator
	workers    int
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchSyncService(gateway SportsGateway, matchRepo match.Repository, settlement *SettlementService, idGen idgen.Generator, workers int, logger *logging.Logger) *MatchSyncService {
	if workers <= 0 {
		workers = defaultResyncWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchSyncService{
		gateway:    gateway,
		matchRepo:  matchRepo,
		settlement: settlement,
		idGen:      idGen,
		workers:    workers,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncUpcomingMatches ingests the provider's match listing, creating rows
// for fixtures we have not seen and refreshing the stored payload for the
// ones we have. Returns the number of newly created matches.
func (s *MatchSyncService) SyncUpcomingMatches(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSync.SyncUpcomingMatches")
	defer span.End()

	raws := s.gateway.FetchUpcomingMatches(ctx)
	created := 0
	for _, raw := range raws {
		existing, found, err := s.matchRepo.GetByExternalID(ctx, raw.ExternalID)
		if err != nil {
			s.logger.ErrorContext(ctx, "lookup match failed",
				"external_match_id", raw.ExternalID,
				"error", err,
			)
			continue
		}

		now := s.now()
		if found {
			// Fixtures get rescheduled and renamed; carry the fresh details
			// over, not just the payload.
			existing.Name = raw.Name
			existing.TeamA = raw.TeamA
			existing.TeamB = raw.TeamB
			existing.Format = raw.Format
			existing.Venue = raw.Venue
			existing.StartsAt = raw.StartsAt
			existing.RawPayload = raw.Payload
			existing.UpdatedAt = now
			if err := s.matchRepo.Upsert(ctx, existing); err != nil {
				s.logger.ErrorContext(ctx, "refresh match payload failed",
					"match_id", existing.ID,
					"error", err,
				)
			}
			continue
		}

		id, err := s.idGen.NewID(idgen.PrefixMatch)
		if err != nil {
			return created, fmt.Errorf("generate match id: %w", err)
		}
		m := match.Match{
			ID:         id,
			ExternalID: raw.ExternalID,
			Name:       raw.Name,
			TeamA:      raw.TeamA,
			TeamB:      raw.TeamB,
			Format:     raw.Format,
			Venue:      raw.Venue,
			StartsAt:   raw.StartsAt,
			Status:     match.StatusUpcoming,
			RawPayload: raw.Payload,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.matchRepo.Upsert(ctx, m); err != nil {
			s.logger.ErrorContext(ctx, "create match failed",
				"external_match_id", raw.ExternalID,
				"error", err,
			)
			continue
		}
		created++
	}

	s.logger.InfoContext(ctx, "match sync finished",
		"listed", len(raws),
		"created", created,
	)
	return created, nil
}

// ResyncSummary reports one bulk status-repair run.
type ResyncSummary struct {
	Checked int
	Updated int
	Failed  int
}

// ResyncMatchStatuses re-checks every non-final match against the provider
// on a bounded worker pool. Live matches the provider reports ended move to
// completed and their contests settle; upcoming matches that ended without
// ever going live here are cancelled and their contests refunded.
func (s *MatchSyncService) ResyncMatchStatuses(ctx context.Context) (ResyncSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSync.ResyncMatchStatuses")
	defer span.End()

	var candidates []match.Match
	for _, status := range []match.Status{match.StatusUpcoming, match.StatusLive} {
		matches, err := s.matchRepo.ListByStatus(ctx, status)
		if err != nil {
			return ResyncSummary{}, fmt.Errorf("list %s matches: %w", status, err)
		}
		candidates = append(candidates, matches...)
	}
	if len(candidates) == 0 {
		return ResyncSummary{}, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return ResyncSummary{}, fmt.Errorf("create resync pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		updated atomic.Int32
		failed  atomic.Int32
	)
	for _, m := range candidates {
		m := m
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			changed, err := s.resyncOne(ctx, m)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "resync match failed",
					"match_id", m.ID,
					"error", err,
				)
				return
			}
			if changed {
				updated.Add(1)
			}
		}); err != nil {
			wg.Done()
			failed.Add(1)
		}
	}
	wg.Wait()

	summary := ResyncSummary{
		Checked: len(candidates),
		Updated: int(updated.Load()),
		Failed:  int(failed.Load()),
	}
	s.logger.InfoContext(ctx, "match resync finished",
		"checked", summary.Checked,
		"updated", summary.Updated,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *MatchSyncService) resyncOne(ctx context.Context, m match.Match) (bool, error) {
	info, ok := s.gateway.FetchMatchStatus(ctx, m.ExternalID)
	if !ok || !info.Ended {
		return false, nil
	}

	switch m.Status {
	case match.StatusLive:
		changed, err := s.matchRepo.UpdateStatus(ctx, m.ID, match.StatusLive, match.StatusCompleted)
		if err != nil || !changed {
			return changed, err
		}
		// The scheduler only settles matches it completed itself, so a
		// resync completion must run the payout too.
		if err := s.settlement.SettleMatchContests(ctx, m.ID); err != nil {
			return true, fmt.Errorf("settle contests: %w", err)
		}
		return true, nil
	case match.StatusUpcoming:
		changed, err := s.matchRepo.UpdateStatus(ctx, m.ID, match.StatusUpcoming, match.StatusCancelled)
		if err != nil || !changed {
			return changed, err
		}
		// A match that ended without ever going live here was abandoned;
		// entrants get their fees back.
		if err := s.settlement.CancelMatchContests(ctx, m.ID); err != nil {
			return true, fmt.Errorf("cancel contests: %w", err)
		}
		return true, nil
	default:
		return false, nil
	}
}
