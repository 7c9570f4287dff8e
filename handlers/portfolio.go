package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocks-trader/errs"
	"stocks-trader/portfolio"
	"stocks-trader/quotes"
)

type TradeInput struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

type holdingResponse struct {
	Quantity int64   `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

type transactionResponse struct {
	Type      string    `json:"type"`
	Symbol    string    `json:"symbol"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) buy(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	symbol, err := portfolio.NormalizeSymbol(input.Symbol)
	if err != nil {
		h.respondError(c, err)
		return
	}

	price, err := h.quotes.Price(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrUnknownSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown symbol", "symbol": symbol})
			return
		}
		h.respondError(c, err)
		return
	}

	if _, err := h.ledger.Buy(c.Request.Context(), userID, symbol, input.Quantity, price); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("bought stock",
		zap.Uint("user_id", userID),
		zap.String("symbol", symbol),
		zap.Int64("quantity", input.Quantity),
		zap.String("price", price.String()),
	)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Stock purchased",
		"symbol":   symbol,
		"quantity": input.Quantity,
		"price":    price.InexactFloat64(),
	})
}

func (h *Handler) sell(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	holding, err := h.ledger.Sell(c.Request.Context(), userID, input.Symbol, input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("sold stock",
		zap.Uint("user_id", userID),
		zap.String("symbol", holding.Symbol),
		zap.Int64("quantity", input.Quantity),
	)

	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("Sold %d shares of %s", input.Quantity, holding.Symbol),
		"symbol":    holding.Symbol,
		"quantity":  input.Quantity,
		"remaining": holding.Quantity,
	})
}

func (h *Handler) viewPortfolio(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	holdings, err := h.ledger.View(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make(map[string]holdingResponse, len(holdings))
	for symbol, hd := range holdings {
		out[symbol] = holdingResponse{
			Quantity: hd.Quantity,
			AvgPrice: hd.AvgPrice.InexactFloat64(),
		}
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) getHolding(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	holding, err := h.ledger.Holding(c.Request.Context(), userID, c.Param("symbol"))
	if err != nil {
		if isMissingHolding(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No such holding"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":    holding.Symbol,
		"quantity":  holding.Quantity,
		"avg_price": holding.AvgPrice.InexactFloat64(),
	})
}

func (h *Handler) deleteHolding(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteHolding(c.Request.Context(), userID, c.Param("symbol")); err != nil {
		if isMissingHolding(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No such holding"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Holding deleted"})
}

func (h *Handler) clearPortfolio(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.ledger.Clear(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("portfolio cleared", zap.Uint("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio cleared"})
}

func (h *Handler) portfolioValue(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	total, err := h.ledger.Value(c.Request.Context(), userID, h.quotes.Price)
	if err != nil {
		if errors.Is(err, quotes.ErrUnknownSymbol) {
			h.log.Warn("held symbol has no quote", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Quote service unavailable", "details": err.Error()})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolio_value": total.InexactFloat64()})
}

func (h *Handler) transactions(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	entries, err := h.ledger.Transactions(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, transactionResponse{
			Type:      e.Type,
			Symbol:    e.Symbol,
			Quantity:  e.Quantity,
			Price:     e.Price.InexactFloat64(),
			Timestamp: e.Timestamp,
		})
	}

	c.JSON(http.StatusOK, out)
}

// isMissingHolding treats a malformed path symbol like any other symbol that is not held.
func isMissingHolding(err error) bool {
	return errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrInvalidArgument)
}
