package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocks-trader/auth"
	"stocks-trader/errs"
	"stocks-trader/middleware"
)

type AuthInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordInput struct {
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *Handler) createAccount(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.credentials.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		h.respondError(c, err)
		return
	}

	h.log.Info("account created", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Account created successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.credentials.Verify(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.respondError(c, err)
		return
	}

	token, _, err := h.sessions.Issue(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.security.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.security.CookieSecure, true)

	h.log.Info("user logged in", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully", "token": token})
}

func (h *Handler) logout(c *gin.Context) {
	claims, ok := middleware.Session(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.security.CookieName, "", -1, "/", "", h.security.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) updatePassword(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input UpdatePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	if err := h.credentials.UpdatePassword(c.Request.Context(), userID, input.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("password updated", zap.Uint("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
