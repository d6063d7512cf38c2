package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"github.com/valyala/fasthttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/wicketplay/fantasy-cricket/external/cricapi"
	"github.com/wicketplay/fantasy-cricket/external/cricketdata"
	"github.com/wicketplay/fantasy-cricket/internal/config"
	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/account/telegramauth"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/notifier/telegram"
	repocache "github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/cache"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/wicketplay/fantasy-cricket/internal/interfaces/httpapi"
	"github.com/wicketplay/fantasy-cricket/internal/platform/cache"
	idgen "github.com/wicketplay/fantasy-cricket/internal/platform/id"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
	"github.com/wicketplay/fantasy-cricket/internal/platform/resilience"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

// App bundles everything main needs to run and tear down: the HTTP server,
// the scheduler loops and the resources that want an orderly stop.
type App struct {
	Server           *http.Server
	Scheduler        *usecase.SchedulerService
	SchedulerEnabled bool

	db       *sqlx.DB
	notifier *telegram.Notifier
	logger   *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger, accessLogger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		db          *sqlx.DB
		matchRepo   match.Repository
		contestRepo contest.Repository
		teamRepo    team.Repository
		userRepo    userprofile.Repository
		ledger      wallet.Ledger
		statsRepo   playerstats.Repository
	)
	if cfg.DBURL == "" || cfg.DBURL == "memory" {
		// In-memory mode for local development without Postgres.
		users := memory.NewUserRepository()
		matchRepo = memory.NewMatchRepository()
		contestRepo = memory.NewContestRepository()
		teamRepo = memory.NewTeamRepository()
		userRepo = users
		ledger = memory.NewLedgerRepository(users)
		statsRepo = memory.NewPlayerStatsRepository()
	} else {
		var err error
		db, err = otelsqlx.Connect("postgres",
			normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		matchRepo = postgres.NewMatchRepository(db)
		contestRepo = postgres.NewContestRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		userRepo = postgres.NewUserRepository(db)
		ledger = postgres.NewLedgerRepository(db)
		statsRepo = postgres.NewPlayerStatsRepository(db)
	}

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		matchRepo = repocache.NewMatchRepository(matchRepo, store)
		statsRepo = repocache.NewPlayerStatsRepository(statsRepo, store)
	}

	idGen := idgen.NewRandomGenerator()

	walletSvc := usecase.NewWalletService(ledger, userRepo, idGen, logger)
	userSvc := usecase.NewUserService(userRepo, walletSvc, idGen, cfg.ReferralBonus, logger)
	contestSvc := usecase.NewContestService(contestRepo, matchRepo, teamRepo, walletSvc, idGen, logger)
	leaderboardSvc := usecase.NewLeaderboardService(teamRepo, logger)
	scoringSvc := usecase.NewScoringService(statsRepo, leaderboardSvc, logger)

	var providers []usecase.CricketProvider
	if cfg.CricketDataEnabled {
		providers = append(providers, cricketdata.NewClient(cricketdata.ClientConfig{
			BaseURL:    cfg.CricketDataBaseURL,
			Email:      cfg.CricketDataEmail,
			Password:   cfg.CricketDataPassword,
			Timeout:    cfg.CricketDataTimeout,
			MaxRetries: cfg.CricketDataMaxRetries,
			Logger:     logger,
			TokenCache: cache.NewStore(time.Hour),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.CricketDataCircuitEnabled,
				FailureThreshold: cfg.CricketDataCircuitFailureCount,
				OpenTimeout:      cfg.CricketDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.CricketDataCircuitHalfOpenMaxReq,
			},
		}))
	}
	if cfg.CricAPIEnabled {
		providers = append(providers, cricapi.NewClient(cricapi.ClientConfig{
			HTTPClient: &fasthttp.Client{},
			BaseURL:    cfg.CricAPIBaseURL,
			APIKey:     cfg.CricAPIKey,
			Timeout:    cfg.CricAPITimeout,
			Logger:     logger,
		}))
	}
	gateway := usecase.NewGatewayService(logger, providers...)

	var (
		notifier   usecase.Notifier = usecase.NopNotifier{}
		tgNotifier *telegram.Notifier
	)
	if cfg.TelegramEnabled {
		var err error
		tgNotifier, err = telegram.NewNotifier(telegram.Config{
			BotToken:     cfg.TelegramBotToken,
			AdminChatID:  cfg.TelegramAdminChatID,
			SendInterval: cfg.TelegramSendInterval,
			Logger:       logger,
		}, userRepo)
		if err != nil {
			return nil, fmt.Errorf("create telegram notifier: %w", err)
		}
		notifier = tgNotifier
	}

	settlementSvc := usecase.NewSettlementService(contestRepo, teamRepo, leaderboardSvc, ledger, walletSvc, notifier, logger)
	matchSyncSvc := usecase.NewMatchSyncService(gateway, matchRepo, settlementSvc, idGen, cfg.SchedulerFanOutWorkers, logger)
	schedulerSvc := usecase.NewSchedulerService(
		matchRepo,
		contestRepo,
		teamRepo,
		gateway,
		scoringSvc,
		settlementSvc,
		notifier,
		usecase.SchedulerConfig{
			RefreshInterval:  cfg.SchedulerRefreshInterval,
			StartInterval:    cfg.SchedulerStartInterval,
			CompleteInterval: cfg.SchedulerCompleteInterval,
			PreStartWindow:   cfg.SchedulerPreStartWindow,
			StartGraceWindow: cfg.SchedulerStartGraceWindow,
			FanOutWorkers:    cfg.SchedulerFanOutWorkers,
		},
		logger,
	)

	verifier := telegramauth.NewVerifier(telegramauth.Config{BotToken: cfg.TelegramBotToken}, userSvc)

	handler := httpapi.NewHandler(
		userSvc,
		contestSvc,
		leaderboardSvc,
		walletSvc,
		matchSyncSvc,
		schedulerSvc,
		settlementSvc,
		notifier,
		matchRepo,
		statsRepo,
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, accessLogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:           server,
		Scheduler:        schedulerSvc,
		SchedulerEnabled: cfg.SchedulerEnabled,
		db:               db,
		notifier:         tgNotifier,
		logger:           logger,
	}, nil
}

// Close drains the notifier queue and releases the database pool. The HTTP
// server shutdown is driven by main so in-flight requests get their grace
// period first.
func (a *App) Close() error {
	if a.notifier != nil {
		a.notifier.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}
