package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocks-trader/auth"
	"stocks-trader/config"
	"stocks-trader/errs"
	"stocks-trader/middleware"
	"stocks-trader/portfolio"
	"stocks-trader/quotes"
	"stocks-trader/session"
)

type QuoteService interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
	Lookup(ctx context.Context, query string) (quotes.Match, error)
	History(ctx context.Context, symbol string, limit int) ([]quotes.PricePoint, error)
}

type Handler struct {
	credentials *auth.Store
	sessions    *session.Manager
	ledger      *portfolio.Ledger
	quotes      QuoteService
	security    config.SecurityConfig
	log         *zap.Logger
}

func NewHandler(
	credentials *auth.Store,
	sessions *session.Manager,
	ledger *portfolio.Ledger,
	quotes QuoteService,
	security config.SecurityConfig,
	log *zap.Logger,
) *Handler {
	return &Handler{
		credentials: credentials,
		sessions:    sessions,
		ledger:      ledger,
		quotes:      quotes,
		security:    security,
		log:         log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	router.GET("/healthcheck", h.healthcheck)
	router.POST("/create-account", h.createAccount)
	router.POST("/login", h.login)

	authed := router.Group("/")
	authed.Use(middleware.SessionAuth(h.sessions, h.security.CookieName, h.log))
	{
		authed.POST("/logout", h.logout)
		authed.PUT("/update-password", h.updatePassword)

		authed.GET("/portfolio", h.viewPortfolio)
		authed.POST("/portfolio/buy", h.buy)
		authed.POST("/portfolio/sell", h.sell)
		authed.GET("/portfolio/holding/:symbol", h.getHolding)
		authed.DELETE("/portfolio/holding/:symbol", h.deleteHolding)
		authed.DELETE("/portfolio/clear", h.clearPortfolio)
		authed.GET("/portfolio/value", h.portfolioValue)
		authed.GET("/portfolio/transactions", h.transactions)

		authed.GET("/stock/lookup", h.lookup)
		authed.GET("/stock/price", h.stockPrice)
		authed.GET("/stock/history", h.stockHistory)
	}
}

func (h *Handler) healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUser returns the id set by SessionAuth; the 401 is already written when it fails.
func (h *Handler) currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.log.Error("handler: user id not found in context", zap.String("path", c.FullPath()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}

	return userID, true
}

// respondError is the single place where error kinds become status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
	case errors.Is(err, errs.ErrInsufficientShares):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient shares", "details": err.Error()})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already exists", "details": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errors.Is(err, errs.ErrUnavailable):
		h.log.Warn("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quote service unavailable", "details": err.Error()})
	default:
		h.log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err), zap.Stack("stack"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}
