package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/motordesk/dealer-api/internal/application/dto"
	"github.com/motordesk/dealer-api/internal/application/invoicing"
)

// InvoiceHandler handles invoice and deposit receipt issuance (protected).
type InvoiceHandler struct {
	invoices *invoicing.IssueInvoiceUseCase
	receipts *invoicing.DepositReceiptUseCase
}

// NewInvoiceHandler builds the handler.
func NewInvoiceHandler(invoices *invoicing.IssueInvoiceUseCase, receipts *invoicing.DepositReceiptUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, receipts: receipts}
}

// IssueInvoice issues the invoice for a sale.
// POST /api/sales/:id/invoice
func (h *InvoiceHandler) IssueInvoice(c *fiber.Ctx) error {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	dealID := c.Params("id")
	if dealID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sale id required"})
	}
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	resp, err := h.invoices.IssueInvoice(c.Context(), dealerID, dealID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// IssueReceipt takes a deposit and issues the deposit receipt.
// POST /api/sales/:id/deposit-receipt
func (h *InvoiceHandler) IssueReceipt(c *fiber.Ctx) error {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	dealID := c.Params("id")
	if dealID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sale id required"})
	}
	var in dto.IssueReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	resp, err := h.receipts.IssueReceipt(c.Context(), dealerID, dealID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignReceipt stamps buyer/seller signatures on a deposit receipt.
// POST /api/documents/:id/signatures
func (h *InvoiceHandler) SignReceipt(c *fiber.Ctx) error {
	dealerID := GetDealerID(c)
	if dealerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	docID := c.Params("id")
	if docID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "document id required"})
	}
	var in dto.SignReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	resp, err := h.receipts.RecordSignatures(c.Context(), dealerID, docID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
