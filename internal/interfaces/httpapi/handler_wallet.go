package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

type depositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
	// Reference is the payment provider's identifier for reconciliation.
	Reference string `json:"reference" validate:"omitempty,max=120"`
}

type withdrawalRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type profileDTO struct {
	ID               string `json:"id"`
	TelegramID       int64  `json:"telegramId"`
	Username         string `json:"username"`
	FirstName        string `json:"firstName"`
	Balance          int64  `json:"balance"`
	ReferralCode     string `json:"referralCode"`
	ReferralCount    int    `json:"referralCount"`
	ReferralEarnings int64  `json:"referralEarnings"`
	CreatedAt        string `json:"createdAt"`
}

type transactionDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
	ContestID   string `json:"contestId,omitempty"`
	Rank        int    `json:"rank,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	profile, err := h.userService.GetProfile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}

func (h *Handler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTransactions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.walletService.ListTransactions(ctx, principal.UserID, limit, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "list transactions failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transactionDTO, 0, len(transactions))
	for _, txn := range transactions {
		items = append(items, transactionToDTO(txn))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Deposit")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req depositRequest
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

	txn, err := h.walletService.Deposit(ctx, principal.UserID, req.Amount, req.Reference)
	if err != nil {
		h.logger.WarnContext(ctx, "deposit failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, transactionToDTO(txn))
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestWithdrawal")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req withdrawalRequest
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

	txn, err := h.walletService.RequestWithdrawal(ctx, principal.UserID, req.Amount)
	if err != nil {
		h.logger.WarnContext(ctx, "withdrawal request failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, transactionToDTO(txn))
}

// ApproveWithdrawal and RejectWithdrawal are operator actions behind the
// internal job token.
func (h *Handler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveWithdrawal")
	defer span.End()

	transactionID := strings.TrimSpace(r.PathValue("transactionID"))
	if err := h.walletService.ApproveWithdrawal(ctx, transactionID); err != nil {
		h.logger.WarnContext(ctx, "approve withdrawal failed", "transaction_id", transactionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectWithdrawal")
	defer span.End()

	transactionID := strings.TrimSpace(r.PathValue("transactionID"))
	if err := h.walletService.RejectWithdrawal(ctx, transactionID); err != nil {
		h.logger.WarnContext(ctx, "reject withdrawal failed", "transaction_id", transactionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "rejected"})
}

func profileToDTO(u userprofile.User) profileDTO {
	return profileDTO{
		ID:               u.ID,
		TelegramID:       u.TelegramID,
		Username:         u.Username,
		FirstName:        u.FirstName,
		Balance:          u.Balance,
		ReferralCode:     u.ReferralCode,
		ReferralCount:    u.ReferralCount,
		ReferralEarnings: u.ReferralEarnings,
		CreatedAt:        u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func transactionToDTO(txn wallet.Transaction) transactionDTO {
	return transactionDTO{
		ID:          txn.ID,
		Type:        string(txn.Type),
		Amount:      txn.Amount,
		Status:      string(txn.Status),
		Description: txn.Description,
		Reference:   txn.Reference,
		ContestID:   txn.ContestID,
		Rank:        txn.Rank,
		CreatedAt:   txn.CreatedAt.UTC().Format(time.RFC3339),
	}
}
