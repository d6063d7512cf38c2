package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

type Handler struct {
	userService        *usecase.UserService
	contestService     *usecase.ContestService
	leaderboardService *usecase.LeaderboardService
	walletService      *usecase.WalletService
	matchSyncService   *usecase.MatchSyncService
	schedulerService   *usecase.SchedulerService
	settlementService  *usecase.SettlementService
	notifier           usecase.Notifier
	matchRepo          match.Repository
	statsRepo          playerstats.Repository
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	contestService *usecase.ContestService,
	leaderboardService *usecase.LeaderboardService,
	walletService *usecase.WalletService,
	matchSyncService *usecase.MatchSyncService,
	schedulerService *usecase.SchedulerService,
	settlementService *usecase.SettlementService,
	notifier usecase.Notifier,
	matchRepo match.Repository,
	statsRepo playerstats.Repository,
	logger *logging.Logger,
) *Handler {
	if notifier == nil {
		notifier = usecase.NopNotifier{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:        userService,
		contestService:     contestService,
		leaderboardService: leaderboardService,
		walletService:      walletService,
		matchSyncService:   matchSyncService,
		schedulerService:   schedulerService,
		settlementService:  settlementService,
		notifier:           notifier,
		matchRepo:          matchRepo,
		statsRepo:          statsRepo,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
