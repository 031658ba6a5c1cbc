package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/motordesk/dealer-api/internal/application/deals"
	"github.com/motordesk/dealer-api/internal/application/invoicing"
)

// RouterDeps are the router dependencies.
type RouterDeps struct {
	DealUC     *deals.DealUseCase
	InvoiceUC  *invoicing.IssueInvoiceUseCase
	ReceiptUC  *invoicing.DepositReceiptUseCase
	DocumentUC *invoicing.DocumentUseCase
	JWTSecret  string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Public share view: no session, the token in the path is the credential.
	documentHandler := NewDocumentHandler(deps.DocumentUC)
	api.Get("/public/documents/:token", documentHandler.GetPublic)

	// Staff routes (Bearer token required).
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	dealHandler := NewDealHandler(deps.DealUC)
	sales := protected.Group("/sales")
	sales.Get("/:id/settlement", dealHandler.GetSettlement)
	sales.Post("/:id/payments", dealHandler.RecordPayment)
	sales.Post("/:id/payments/:paymentId/reverse", dealHandler.ReversePayment)
	sales.Post("/:id/deliver", dealHandler.MarkDelivered)
	sales.Post("/:id/complete", dealHandler.MarkCompleted)
	sales.Post("/:id/cancel", dealHandler.Cancel)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.ReceiptUC)
	sales.Post("/:id/invoice", invoiceHandler.IssueInvoice)
	sales.Post("/:id/deposit-receipt", invoiceHandler.IssueReceipt)
	sales.Get("/:id/documents", documentHandler.ListBySale)

	documents := protected.Group("/documents")
	documents.Get("/:id", documentHandler.GetByID)
	documents.Post("/:id/signatures", invoiceHandler.SignReceipt)
	// Voiding is restricted: sales staff cannot erase issued paperwork.
	documents.Post("/:id/void", RequireRole("admin", "accounts"), documentHandler.Void)
}
