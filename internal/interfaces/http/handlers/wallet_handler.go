package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tbond.backend/internal/domain/entities"
	"tbond.backend/internal/interfaces/http/response"
	"tbond.backend/internal/usecases"
)

type walletService interface {
	Session() entities.WalletSession
	Network() entities.Network
	Connect(ctx context.Context) (entities.WalletSession, error)
	Disconnect() entities.WalletSession
	SwitchNetwork(ctx context.Context) (entities.WalletSession, error)
}

// WalletHandler handles wallet connection endpoints
type WalletHandler struct {
	wallet walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(manager *usecases.WalletManager) *WalletHandler {
	return &WalletHandler{wallet: manager}
}

// GetSession returns the connection state and the target network
// GET /api/v1/wallet
func (h *WalletHandler) GetSession(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"session":       h.wallet.Session(),
		"targetNetwork": h.wallet.Network(),
	})
}

// Connect asks the wallet for account access
// POST /api/v1/wallet/connect
func (h *WalletHandler) Connect(c *gin.Context) {
	session, err := h.wallet.Connect(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Disconnect forgets the connected account
// POST /api/v1/wallet/disconnect
func (h *WalletHandler) Disconnect(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"session": h.wallet.Disconnect()})
}

// SwitchNetwork asks the wallet to move to the target network. The client
// re-reads the session to learn whether it worked.
// POST /api/v1/wallet/switch-network
func (h *WalletHandler) SwitchNetwork(c *gin.Context) {
	session, err := h.wallet.SwitchNetwork(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}
