package main

import (
	"github.com/gin-gonic/gin"

	"tbond.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	walletHandler    *handlers.WalletHandler
	tokenHandler     *handlers.TokenHandler
	mintHandler      *handlers.MintHandler
	dashboardHandler *handlers.DashboardHandler
	networkGate      gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Wallet routes (always available)
		wallet := v1.Group("/wallet")
		{
			wallet.GET("", d.walletHandler.GetSession)
			wallet.POST("/connect", d.walletHandler.Connect)
			wallet.POST("/disconnect", d.walletHandler.Disconnect)
			wallet.POST("/switch-network", d.walletHandler.SwitchNetwork)
		}

		// The dashboard renders the connect and network-warning states itself
		v1.GET("/dashboard", d.dashboardHandler.GetDashboard)

		// Contract interactions (connected wallet on the target network)
		gated := v1.Group("")
		gated.Use(d.networkGate)
		{
			gated.GET("/balance", d.mintHandler.CheckBalance)
			gated.GET("/stablecoin/balance", d.tokenHandler.GetStablecoinBalance)
			gated.GET("/tokens", d.tokenHandler.ListTokens)
			gated.GET("/tokens/:id", d.tokenHandler.GetToken)
			gated.POST("/mint/quote", d.mintHandler.Quote)
			gated.POST("/mint", d.mintHandler.Mint)
		}
	}
}
