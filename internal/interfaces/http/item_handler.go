package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
)

// ItemHandler maneja las peticiones HTTP de ítems y sus reportes (protegido).
type ItemHandler struct {
	uc      *usecase.ItemUseCase
	ledger  *inventory.LedgerUseCase
	reports *inventory.ReportUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, ledger *inventory.LedgerUseCase, reports *inventory.ReportUseCase) *ItemHandler {
	return &ItemHandler{uc: uc, ledger: ledger, reports: reports}
}

// Create godoc
// @Summary      Registrar ítem
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Nombre único del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return respondCode(c, fiber.StatusBadRequest, CodeInvalidBody)
	}
	out, err := h.uc.Register(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar o buscar ítems por nombre
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Subcadena del nombre"
// @Param        limit   query  int     false  "Máximo 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondCode(c, fiber.StatusBadRequest, CodeValidation)
	}
	out, err := h.uc.List(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem con su agregado
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ítem sin movimientos
// @Tags         items
// @Security     Bearer
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Movements godoc
// @Summary      Movimientos vigentes del ítem
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "Máximo 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [get]
func (h *ItemHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondCode(c, fiber.StatusBadRequest, CodeValidation)
	}
	page.Normalize()
	list, err := h.ledger.ListMovementsByItem(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, dto.FromMovement(m))
	}
	out.Page.Count = len(out.Items)
	return c.JSON(out)
}

// Reconciliation godoc
// @Summary      Recalcular el agregado desde los movimientos
// @Description  Compara store/release/total_count persistidos con la suma de los efectos vigentes.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/reconciliation [get]
func (h *ItemHandler) Reconciliation(c *fiber.Ctx) error {
	rep, err := h.reports.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ItemID:     rep.ItemID,
		Stored:     dto.FromAggregate(rep.Stored),
		Recomputed: dto.FromAggregate(rep.Recomputed),
		Movements:  rep.Movements,
		Drift:      rep.Drift,
		Details:    rep.Details,
		CheckedAt:  rep.CheckedAt,
	})
}

// KardexPDF godoc
// @Summary      Kardex del ítem en PDF
// @Tags         items
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/kardex.pdf [get]
func (h *ItemHandler) KardexPDF(c *fiber.Ctx) error {
	out, err := h.reports.KardexPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="kardex-`+c.Params("id")+`.pdf"`)
	return c.Send(out)
}
