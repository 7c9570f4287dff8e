package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stocks-trader/portfolio"
	"stocks-trader/quotes"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type pricePointResponse struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) lookup(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing symbol"})
		return
	}

	match, err := h.quotes.Lookup(c.Request.Context(), symbol)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

func (h *Handler) stockPrice(c *gin.Context) {
	if c.Query("symbol") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing symbol"})
		return
	}

	symbol, err := portfolio.NormalizeSymbol(c.Query("symbol"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	price, err := h.quotes.Price(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrUnknownSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "price": price.InexactFloat64()})
}

func (h *Handler) stockHistory(c *gin.Context) {
	if c.Query("symbol") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing symbol"})
		return
	}

	symbol, err := portfolio.NormalizeSymbol(c.Query("symbol"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
	}

	points, err := h.quotes.History(c.Request.Context(), symbol, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]pricePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, pricePointResponse{
			Symbol:    p.Symbol,
			Price:     p.Price.InexactFloat64(),
			Timestamp: p.Timestamp,
		})
	}

	c.JSON(http.StatusOK, out)
}
