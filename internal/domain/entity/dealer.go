package entity

import "time"

// Dealer is the selling entity: letterhead, registration numbers, bank
// details and per-document-type number prefixes.
type Dealer struct {
	ID           string
	Name         string
	TradingName  string
	AddressLine1 string
	AddressLine2 string
	Town         string
	Postcode     string
	Phone        string
	Email        string

	VATNumber     string
	CompanyNumber string

	BankName      string
	SortCode      string
	AccountNumber string

	LogoKey string // object key in file storage; signed URL issued per document view

	InvoicePrefix string // e.g. "INV-"
	ReceiptPrefix string // e.g. "DR-"

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TermsTemplate is one block of terms text, selected by buyer category and
// sale channel. Distance consumer sales carry different cancellation rights
// than in-person or business sales.
type TermsTemplate struct {
	ID            string
	DealerID      string
	BuyerCategory BuyerCategory
	Channel       SaleChannel
	Body          string
}
