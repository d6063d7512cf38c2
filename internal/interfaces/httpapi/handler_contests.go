package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

type joinContestRequest struct {
	Players     []string `json:"players" validate:"required,len=11,dive,required"`
	Captain     string   `json:"captain" validate:"required"`
	ViceCaptain string   `json:"viceCaptain" validate:"required"`
}

type createContestRequest struct {
	MatchID      string        `json:"match_id" validate:"required"`
	Name         string        `json:"name" validate:"required,max=120"`
	EntryFee     int64         `json:"entry_fee" validate:"gte=0"`
	PrizePool    int64         `json:"prize_pool" validate:"gte=0"`
	MaxSpots     int           `json:"max_spots" validate:"required,gte=2"`
	Distribution map[int]int64 `json:"distribution,omitempty"`
}

type contestDTO struct {
	ID          string `json:"id"`
	MatchID     string `json:"matchId"`
	Name        string `json:"name"`
	EntryFee    int64  `json:"entryFee"`
	PrizePool   int64  `json:"prizePool"`
	MaxSpots    int    `json:"maxSpots"`
	JoinedUsers int    `json:"joinedUsers"`
	Status      string `json:"status"`
	IsFull      bool   `json:"isFull"`
}

type entryDTO struct {
	ID          string   `json:"id"`
	ContestID   string   `json:"contestId"`
	MatchID     string   `json:"matchId"`
	Players     []string `json:"players"`
	Captain     string   `json:"captain"`
	ViceCaptain string   `json:"viceCaptain"`
	TotalPoints float64  `json:"totalPoints"`
	Rank        *int     `json:"rank,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

type leaderboardRowDTO struct {
	Rank        int     `json:"rank"`
	TeamID      string  `json:"teamId"`
	UserID      string  `json:"userId"`
	Captain     string  `json:"captain"`
	ViceCaptain string  `json:"viceCaptain"`
	TotalPoints float64 `json:"totalPoints"`
}

func (h *Handler) ListContestsByMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContestsByMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	contests, err := h.contestService.ListContestsByMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list contests failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]contestDTO, 0, len(contests))
	for _, c := range contests {
		items = append(items, contestToDTO(c))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContest")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	c, err := h.contestService.GetContest(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "get contest failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, contestToDTO(c))
}

func (h *Handler) GetContestLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContestLeaderboard")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.leaderboardService.GetLeaderboard(ctx, contestID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, leaderboardRowDTO{
			Rank:        e.Rank,
			TeamID:      e.Team.ID,
			UserID:      e.Team.UserID,
			Captain:     e.Team.Captain,
			ViceCaptain: e.Team.ViceCaptain,
			TotalPoints: e.Team.TotalPoints,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) JoinContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinContest")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	var req joinContestRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.contestService.JoinContest(ctx, usecase.JoinContestInput{
		UserID:      principal.UserID,
		ContestID:   contestID,
		Players:     req.Players,
		Captain:     req.Captain,
		ViceCaptain: req.ViceCaptain,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join contest failed",
			"contest_id", contestID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, entryToDTO(entry))
}

func (h *Handler) ListMyEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyEntries")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	entries, err := h.contestService.ListUserEntries(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list entries failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]entryDTO, 0, len(entries))
	for _, t := range entries {
		items = append(items, entryToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// CreateContest opens a new prize pool for a match. Reached only through
// the internal job token, there is no self-serve contest creation.
func (h *Handler) CreateContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateContest")
	defer span.End()

	var req createContestRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.contestService.CreateContest(ctx, usecase.CreateContestInput{
		MatchID:      req.MatchID,
		Name:         req.Name,
		EntryFee:     req.EntryFee,
		PrizePool:    req.PrizePool,
		MaxSpots:     req.MaxSpots,
		Distribution: req.Distribution,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create contest failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, contestToDTO(c))
}

func contestToDTO(c contest.Contest) contestDTO {
	return contestDTO{
		ID:          c.ID,
		MatchID:     c.MatchID,
		Name:        c.Name,
		EntryFee:    c.EntryFee,
		PrizePool:   c.PrizePool,
		MaxSpots:    c.MaxSpots,
		JoinedUsers: c.JoinedUsers,
		Status:      string(c.Status),
		IsFull:      c.IsFull(),
	}
}

func entryToDTO(t team.Team) entryDTO {
	return entryDTO{
		ID:          t.ID,
		ContestID:   t.ContestID,
		MatchID:     t.MatchID,
		Players:     append([]string(nil), t.Players...),
		Captain:     t.Captain,
		ViceCaptain: t.ViceCaptain,
		TotalPoints: t.TotalPoints,
		Rank:        t.Rank,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
