package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/motordesk/dealer-api/internal/application/deals"
	"github.com/motordesk/dealer-api/internal/application/dto"
)

// DealHandler handles the sale-level operations around issuance: settlement,
// payments and lifecycle moves.
type DealHandler struct {
	uc *deals.DealUseCase
}

// NewDealHandler builds the handler.
func NewDealHandler(uc *deals.DealUseCase) *DealHandler {
	return &DealHandler{uc: uc}
}

func (h *DealHandler) dealer(c *fiber.Ctx) (string, error) {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return "", c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	return dealerID, nil
}

// GetSettlement returns the live financial picture of a sale.
// GET /api/sales/:id/settlement
func (h *DealHandler) GetSettlement(c *fiber.Ctx) error {
	dealerID, err := h.dealer(c)
	if dealerID == "" {
		return err
	}
	s, err := h.uc.GetSettlement(c.Context(), dealerID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// RecordPayment appends a payment entry to a sale.
// POST /api/sales/:id/payments
func (h *DealHandler) RecordPayment(c *fiber.Ctx) error {
	dealerID, err := h.dealer(c)
	if dealerID == "" {
		return err
	}
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := h.uc.RecordPayment(c.Context(), dealerID, c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// ReversePayment flags a payment entry as reversed.
// POST /api/sales/:id/payments/:paymentId/reverse
func (h *DealHandler) ReversePayment(c *fiber.Ctx) error {
	dealerID, err := h.dealer(c)
	if dealerID == "" {
		return err
	}
	if err := h.uc.ReversePayment(c.Context(), dealerID, c.Params("id"), c.Params("paymentId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkDelivered moves an invoiced sale to DELIVERED.
// POST /api/sales/:id/deliver
func (h *DealHandler) MarkDelivered(c *fiber.Ctx) error {
	dealerID, err := h.dealer(c)
	if dealerID == "" {
		return err
	}
	if err := h.uc.MarkDelivered(c.Context(), dealerID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkCompleted moves a delivered sale to COMPLETED.
// POST /api/sales/:id/complete
func (h *DealHandler) MarkCompleted(c *fiber.Ctx) error {
	dealerID, err := h.dealer(c)
	if dealerID == "" {
		return err
	}
	if err := h.uc.MarkCompleted(c.Context(), dealerID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cancel cancels a sale from any non-terminal state.
// POST /api/sales/:id/cancel
func (h *DealHandler) Cancel(c *fiber.Ctx) error {
	dealerID, err := h.dealer(c)
	if dealerID == "" {
		return err
	}
	var in dto.CancelDealRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := h.uc.Cancel(c.Context(), dealerID, c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
