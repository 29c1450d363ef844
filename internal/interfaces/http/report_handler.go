package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lotes-api/internal/application/analytics"
)

// ReportHandler maneja las peticiones HTTP del tablero (protegido).
type ReportHandler struct {
	uc *analytics.DashboardUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *analytics.DashboardUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Resumen del tablero (stock, valor a costo, utilidad del mes)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.GetDashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
