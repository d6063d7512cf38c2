package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/contests", handler.ListContestsByMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/players", handler.ListMatchPlayerPoints)
	mux.HandleFunc("GET /v1/contests/{contestID}", handler.GetContest)
	mux.HandleFunc("GET /v1/contests/{contestID}/leaderboard", handler.GetContestLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyProfile)))
	mux.Handle("GET /v1/me/entries", RequireAuth(verifier, http.HandlerFunc(handler.ListMyEntries)))
	mux.Handle("GET /v1/me/wallet/transactions", RequireAuth(verifier, http.HandlerFunc(handler.ListMyTransactions)))
	mux.Handle("POST /v1/contests/{contestID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinContest)))
	mux.Handle("POST /v1/wallet/deposits", RequireAuth(verifier, http.HandlerFunc(handler.Deposit)))
	mux.Handle("POST /v1/wallet/withdrawals", RequireAuth(verifier, http.HandlerFunc(handler.RequestWithdrawal)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/contests", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateContest)))
	mux.Handle("POST /v1/internal/contests/{contestID}/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SettleContestJob)))
	mux.Handle("POST /v1/internal/wallet/withdrawals/{transactionID}/approve", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ApproveWithdrawal)))
	mux.Handle("POST /v1/internal/wallet/withdrawals/{transactionID}/reject", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RejectWithdrawal)))
	mux.Handle("POST /v1/internal/jobs/sync-matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncMatchesJob)))
	mux.Handle("POST /v1/internal/jobs/resync-statuses", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResyncStatusesJob)))
	mux.Handle("POST /v1/internal/jobs/refresh-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshScoresJob)))
	mux.Handle("POST /v1/internal/jobs/detect-starts", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDetectStartsJob)))
	mux.Handle("POST /v1/internal/jobs/process-completions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunProcessCompletionsJob)))
	mux.Handle("POST /v1/internal/broadcast", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BroadcastMessage)))
}
