package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/interfaces/http/response"
	"tbond.backend/internal/usecases"
)

type mintService interface {
	Quote(input entities.MintQuoteInput) entities.MintAmountInput
	CheckBalance(ctx context.Context) (*entities.BalanceCheck, error)
	Mint(ctx context.Context, input entities.MintInput) (*entities.MintResult, error)
}

// MintHandler handles the balance check and mint endpoints
type MintHandler struct {
	mint mintService
}

// NewMintHandler creates a new mint handler
func NewMintHandler(mint *usecases.MintUsecase) *MintHandler {
	return &MintHandler{mint: mint}
}

// CheckBalance reads the connected account's USDC balance
// GET /api/v1/balance
func (h *MintHandler) CheckBalance(c *gin.Context) {
	result, err := h.mint.CheckBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Quote validates one edit of the amount field
// POST /api/v1/mint/quote
func (h *MintHandler) Quote(c *gin.Context) {
	var input entities.MintQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusOK, h.mint.Quote(input))
}

// Mint runs approve then mint. An empty body mints one token.
// POST /api/v1/mint
func (h *MintHandler) Mint(c *gin.Context) {
	var input entities.MintInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.mint.Mint(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
