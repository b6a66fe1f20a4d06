package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// HeaderIdempotencyKey permite reintentar un POST de movimiento sin duplicarlo.
const HeaderIdempotencyKey = "Idempotency-Key"

// InventoryHandler maneja las peticiones HTTP de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// CreateMovement godoc
// @Summary      Registrar movimiento (entrada o salida)
// @Description  Aplica el efecto al ítem en una sola transacción. Una salida que deje el total en negativo se rechaza y no persiste nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave para reintentos seguros"
// @Param        body             body    dto.CreateMovementRequest  true   "item_id, classification, quantity, unit_price, memo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return respondCode(c, fiber.StatusBadRequest, CodeInvalidBody)
	}
	out, err := h.uc.CreateMovement(c.UserContext(), inventory.CreateMovementInput{
		ItemID:         in.ItemID,
		Classification: in.Classification,
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		Memo:           in.Memo,
		ActorID:        GetUserID(c),
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(out))
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.uc.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(out))
}

// UpdateMovement godoc
// @Summary      Editar movimiento
// @Description  Revierte el efecto vigente y aplica el nuevo. Si el nuevo efecto deja el total en negativo se restaura el estado previo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "classification, quantity, unit_price, memo"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [put]
func (h *InventoryHandler) UpdateMovement(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return respondCode(c, fiber.StatusBadRequest, CodeInvalidBody)
	}
	out, err := h.uc.UpdateMovement(c.UserContext(), inventory.UpdateMovementInput{
		EntryID:        c.Params("id"),
		Classification: in.Classification,
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		Memo:           in.Memo,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(out))
}

// DeleteMovement godoc
// @Summary      Eliminar movimiento
// @Description  Revierte el efecto vigente. Se rechaza si el total del ítem quedaría negativo.
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) DeleteMovement(c *fiber.Ctx) error {
	if err := h.uc.DeleteMovement(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History godoc
// @Summary      Historial de efectos aplicados de un movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {array}   dto.HistoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	list, err := h.uc.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.HistoryRecordResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.FromHistory(r))
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Resumen de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MovementStatsResponse
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	s, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementStatsResponse{
		Count:        s.Count,
		StoreCount:   s.StoreCount,
		ReleaseCount: s.ReleaseCount,
		StoreValue:   s.StoreValue,
		ReleaseValue: s.ReleaseValue,
	})
}
