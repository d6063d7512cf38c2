package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

type matchDTO struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	TeamA      string `json:"teamA"`
	TeamB      string `json:"teamB"`
	Format     string `json:"format"`
	Venue      string `json:"venue"`
	StartsAt   string `json:"startsAt"`
	Status     string `json:"status"`
}

type playerPointsDTO struct {
	PlayerName  string  `json:"playerName"`
	Runs        int     `json:"runs"`
	BallsFaced  int     `json:"ballsFaced"`
	Fours       int     `json:"fours"`
	Sixes       int     `json:"sixes"`
	StrikeRate  float64 `json:"strikeRate"`
	Wickets     int     `json:"wickets"`
	OversBowled float64 `json:"oversBowled"`
	Maidens     int     `json:"maidens"`
	EconomyRate float64 `json:"economyRate"`
	Catches     int     `json:"catches"`
	Stumpings   int     `json:"stumpings"`
	RunOuts     int     `json:"runOuts"`
	TotalPoints int     `json:"totalPoints"`
	UpdatedAt   string  `json:"updatedAt"`
}

// ListMatches returns matches open for fantasy play. Without a status
// filter it returns upcoming and live fixtures, the two states the mini
// app home screen cares about.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	statuses := []match.Status{match.StatusUpcoming, match.StatusLive}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		statuses = []match.Status{match.NormalizeStatus(raw)}
	}

	items := make([]matchDTO, 0)
	for _, status := range statuses {
		matches, err := h.matchRepo.ListByStatus(ctx, status)
		if err != nil {
			h.logger.ErrorContext(ctx, "list matches failed", "status", status, "error", err)
			writeError(ctx, w, err)
			return
		}
		for _, m := range matches {
			items = append(items, matchToDTO(m))
		}
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	m, found, err := h.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: match %s", usecase.ErrNotFound, matchID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

// ListMatchPlayerPoints returns the latest per-player fantasy points for a
// match, highest totals first.
func (h *Handler) ListMatchPlayerPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchPlayerPoints")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	stats, err := h.statsRepo.ListByMatchID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player points failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerPointsDTO, 0, len(stats))
	for _, s := range stats {
		items = append(items, playerStatsToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		Format:     m.Format,
		Venue:      m.Venue,
		StartsAt:   m.StartsAt.UTC().Format(time.RFC3339),
		Status:     string(m.Status),
	}
}

func playerStatsToDTO(s playerstats.PlayerStats) playerPointsDTO {
	return playerPointsDTO{
		PlayerName:  s.PlayerName,
		Runs:        s.Runs,
		BallsFaced:  s.BallsFaced,
		Fours:       s.Fours,
		Sixes:       s.Sixes,
		StrikeRate:  s.StrikeRate,
		Wickets:     s.Wickets,
		OversBowled: s.OversBowled,
		Maidens:     s.Maidens,
		EconomyRate: s.EconomyRate,
		Catches:     s.Catches,
		Stumpings:   s.Stumpings,
		RunOuts:     s.RunOuts,
		TotalPoints: s.TotalPoints,
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
