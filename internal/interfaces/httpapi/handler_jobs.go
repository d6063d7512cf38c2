package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

type broadcastRequest struct {
	Title   string `json:"title" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Internal job endpoints mirror the scheduler phases so an operator (or an
// external cron) can force a cycle without waiting for the next tick.

func (h *Handler) RunSyncMatchesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMatchesJob")
	defer span.End()

	created, err := h.matchSyncService.SyncUpcomingMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync matches job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"created": created})
}

func (h *Handler) RunResyncStatusesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResyncStatusesJob")
	defer span.End()

	summary, err := h.matchSyncService.ResyncMatchStatuses(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "resync statuses job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{
		"checked": summary.Checked,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	})
}

func (h *Handler) RunRefreshScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshScoresJob")
	defer span.End()

	if err := h.schedulerService.RefreshLiveScores(ctx); err != nil {
		h.logger.ErrorContext(ctx, "refresh scores job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handler) RunDetectStartsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDetectStartsJob")
	defer span.End()

	if err := h.schedulerService.DetectMatchStarts(ctx); err != nil {
		h.logger.ErrorContext(ctx, "detect starts job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "done"})
}

func (h *Handler) RunProcessCompletionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProcessCompletionsJob")
	defer span.End()

	if err := h.schedulerService.ProcessCompletedMatches(ctx); err != nil {
		h.logger.ErrorContext(ctx, "process completions job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "done"})
}

// SettleContestJob settles one contest directly. Settlement is idempotent,
// so a retry on an already completed contest is a no-op.
func (h *Handler) SettleContestJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleContestJob")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	if err := h.settlementService.SettleContest(ctx, contestID); err != nil {
		h.logger.ErrorContext(ctx, "settle contest job failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "settled"})
}

func (h *Handler) BroadcastMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BroadcastMessage")
	defer span.End()

	var req broadcastRequest
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

	if err := h.notifier.Broadcast(ctx, req.Title, req.Message); err != nil {
		h.logger.ErrorContext(ctx, "broadcast failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "queued"})
}
