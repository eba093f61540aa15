package middleware

import (
	"github.com/gin-gonic/gin"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/interfaces/http/response"
)

// AccountKey holds the connected account once the gate has admitted a request
const AccountKey = "account"

// SessionSource exposes the current wallet session
type SessionSource interface {
	Session() entities.WalletSession
}

// NetworkGate admits contract interactions only for a connected wallet on the
// target network. A wrong chain is a view state, not an error: the response
// carries the network-warning payload the client renders instead.
func NetworkGate(sessions SessionSource, network entities.Network) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Session()
		if !session.Connected || session.Address == nil {
			response.Error(c, domainerrors.NotConnected())
			c.Abort()
			return
		}

		if !session.IsCorrectNetwork {
			appErr := domainerrors.WrongNetwork(network.Name)
			_ = c.Error(appErr)
			response.State(c, appErr.Status, string(entities.ViewNetworkWarning), gin.H{
				"code":          appErr.Code,
				"message":       appErr.Message,
				"session":       session,
				"targetNetwork": network,
			})
			return
		}

		c.Set(AccountKey, *session.Address)
		c.Next()
	}
}
