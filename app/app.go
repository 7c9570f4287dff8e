package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stocks-trader/auth"
	"stocks-trader/config"
	"stocks-trader/database"
	"stocks-trader/handlers"
	"stocks-trader/middleware"
	"stocks-trader/portfolio"
	"stocks-trader/quotes"
	"stocks-trader/repository"
	"stocks-trader/session"
	"stocks-trader/storage/redis"
)

const cacheCleanupInterval = 10 * time.Minute

type App struct {
	log    *zap.Logger
	cfg    *config.Config
	db     *gorm.DB
	rdb    *goredis.Client
	server *http.Server
}

func New(log *zap.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	db, err := database.Open(cfg.Database, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{log: log, cfg: cfg, db: db}

	var (
		sessionStore session.Store = session.NewMemoryStore()
		quoteCache   quotes.Cache  = quotes.NewMemoryCache(cacheCleanupInterval)
	)
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rdb, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.rdb = rdb

		sessionStore = redis.NewSessionStore(rdb)
		quoteCache = redis.NewQuoteCache(rdb)
		log.Info("using redis for sessions and quote cache", zap.String("addr", cfg.Redis.Addr))
	}

	var holdings portfolio.Store = portfolio.NewMemoryStore()
	if cfg.Portfolio.Store == config.StoreDatabase {
		holdings = repository.NewHoldingsRepository(db)
	}
	log.Info("portfolio store selected", zap.String("store", cfg.Portfolio.Store))

	quoteClient := quotes.NewClient(cfg.Quotes, quoteCache, log.Named("quotes")).
		WithHistory(repository.NewPricesRepository(db))

	h := handlers.NewHandler(
		auth.NewStore(repository.NewUsersRepository(db)),
		session.NewManager(cfg.Security.SecretKey, cfg.Security.SessionTTL, sessionStore),
		portfolio.NewLedger(holdings),
		quoteClient,
		cfg.Security,
		log.Named("http"),
	)

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(log.Named("access")), middleware.Recovery(log))
	h.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         net.JoinHostPort("", strconv.FormatUint(uint64(cfg.HTTP.Port), 10)),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
		IdleTimeout:  4 * cfg.HTTP.Timeout,
	}

	return a, nil
}

// Run blocks until the server stops. A graceful Stop is not an error.
func (a *App) Run() error {
	const op = "app.Run"

	a.log.Info("http server started", zap.String("address", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	a.log.Info("stopping http server...")
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("failed to stop http server", zap.Error(err))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("failed to close redis", zap.Error(err))
		}
	}

	a.log.Info("stopping storage...")
	if err := database.Close(a.db); err != nil {
		a.log.Error("failed to close database", zap.Error(err))
	}
}
