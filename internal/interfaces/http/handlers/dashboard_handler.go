package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/interfaces/http/response"
	"tbond.backend/internal/usecases"
)

type dashboardService interface {
	BuildDashboard(ctx context.Context, selected *uint64) (*entities.DashboardView, error)
}

// DashboardHandler serves the composed main screen
type DashboardHandler struct {
	dashboard dashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *usecases.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard returns the view for the current session
// GET /api/v1/dashboard?selected=ID
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var selected *uint64
	if raw := c.Query("selected"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid selected token id"))
			return
		}
		selected = &id
	}

	view, err := h.dashboard.BuildDashboard(c.Request.Context(), selected)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
