package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/interfaces/http/middleware"
	"tbond.backend/internal/interfaces/http/response"
	"tbond.backend/internal/usecases"
)

type tokenService interface {
	OwnedTokens(ctx context.Context, account string) []entities.TokenEntry
	TokenDetails(ctx context.Context, account string, tokenID uint64) entities.TokenDetails
	StablecoinBalance(ctx context.Context, account string) (entities.StablecoinAmount, error)
}

// TokenHandler serves bond token reads for the connected account
type TokenHandler struct {
	tokens tokenService
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(dashboard *usecases.DashboardUsecase) *TokenHandler {
	return &TokenHandler{tokens: dashboard}
}

// ListTokens lists the tokens owned by the connected account
// GET /api/v1/tokens
func (h *TokenHandler) ListTokens(c *gin.Context) {
	account := c.GetString(middleware.AccountKey)
	response.Success(c, http.StatusOK, gin.H{"tokens": h.tokens.OwnedTokens(c.Request.Context(), account)})
}

// GetToken returns metadata and holding for one token id
// GET /api/v1/tokens/:id
func (h *TokenHandler) GetToken(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid token id"))
		return
	}
	account := c.GetString(middleware.AccountKey)
	response.Success(c, http.StatusOK, h.tokens.TokenDetails(c.Request.Context(), account, id))
}

// GetStablecoinBalance returns the raw-formatted stablecoin balance without
// the busy guard or faucet hint of the explicit check
// GET /api/v1/stablecoin/balance
func (h *TokenHandler) GetStablecoinBalance(c *gin.Context) {
	balance, err := h.tokens.StablecoinBalance(c.Request.Context(), c.GetString(middleware.AccountKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"balance": balance.Formatted})
}
