package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/motordesk/dealer-api/internal/application/dto"
	"github.com/motordesk/dealer-api/internal/application/invoicing"
)

// DocumentHandler serves issued documents: the staff reads, voiding and the
// public share-token view.
type DocumentHandler struct {
	uc *invoicing.DocumentUseCase
}

// NewDocumentHandler builds the handler.
func NewDocumentHandler(uc *invoicing.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// GetPublic serves a document to anyone holding a live share token. No
// session required; an expired or unknown token is a plain 404.
// GET /api/public/documents/:token
func (h *DocumentHandler) GetPublic(c *fiber.Ctx) error {
	doc, err := h.uc.GetByShareToken(c.Context(), c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// GetByID is the staff read of one document.
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	doc, err := h.uc.GetByID(c.Context(), dealerID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// ListBySale lists every document ever issued for a sale, voided included.
// GET /api/sales/:id/documents
func (h *DocumentHandler) ListBySale(c *fiber.Ctx) error {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	docs, err := h.uc.ListByDeal(c.Context(), dealerID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

// Void marks a document VOID. Voiding an invoice reopens the sale so a
// corrected invoice can be issued fresh.
// POST /api/documents/:id/void
func (h *DocumentHandler) Void(c *fiber.Ctx) error {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.VoidDocumentRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	doc, err := h.uc.Void(c.Context(), dealerID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}
