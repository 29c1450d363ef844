package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/profitshare"
)

// ProfitShareHandler maneja las peticiones HTTP de repartos de utilidades
// (protegido; la ejecución es solo para admin).
type ProfitShareHandler struct {
	uc    *profitshare.ShareUseCase
	pdfUC *profitshare.PDFUseCase
}

// NewProfitShareHandler construye el handler.
func NewProfitShareHandler(uc *profitshare.ShareUseCase, pdfUC *profitshare.PDFUseCase) *ProfitShareHandler {
	return &ProfitShareHandler{uc: uc, pdfUC: pdfUC}
}

// Execute godoc
// @Summary      Ejecutar el reparto de un mes (una sola vez por mes)
// @Tags         profit-shares
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExecuteShareRequest  true  "Mes y año"
// @Success      201   {object}  dto.ProfitShareResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/profit-shares [post]
func (h *ProfitShareHandler) Execute(c *fiber.Ctx) error {
	var in dto.ExecuteShareRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Execute(c.UserContext(), in.Month, in.Year)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener reparto por ID
// @Tags         profit-shares
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del reparto"
// @Success      200  {object}  dto.ProfitShareResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profit-shares/{id} [get]
func (h *ProfitShareHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByMonth godoc
// @Summary      Obtener el reparto de un mes concreto
// @Tags         profit-shares
// @Security     Bearer
// @Produce      json
// @Param        month  query  int  true  "Mes (1-12)"
// @Param        year   query  int  true  "Año"
// @Success      200  {object}  dto.ProfitShareResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profit-shares/by-month [get]
func (h *ProfitShareHandler) GetByMonth(c *fiber.Ctx) error {
	month := c.QueryInt("month", 0)
	year := c.QueryInt("year", 0)
	out, err := h.uc.GetByMonthYear(c.UserContext(), month, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar repartos ejecutados
// @Tags         profit-shares
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProfitShareListResponse
// @Router       /api/profit-shares [get]
func (h *ProfitShareHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar el acta de reparto en PDF
// @Tags         profit-shares
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del reparto"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profit-shares/{id}/pdf [get]
func (h *ProfitShareHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	pdfBytes, filename, err := h.pdfUC.DownloadSharePDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
