package repository

import (
	"context"

	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// VehicleRepository is the read-only port to the stock records.
type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
}

// DealerRepository supplies letterhead data and the terms text templates.
type DealerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Dealer, error)
	// GetTermsText returns the terms body for the buyer category and sale
	// channel, falling back to the dealer's default template when no exact
	// match exists.
	GetTermsText(ctx context.Context, dealerID string, category entity.BuyerCategory, channel entity.SaleChannel) (string, error)
}

// CustomerRepository is the read-only port to buyer contacts.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// ServiceRecordRepository is the optional service-history lookup; documents
// are annotated with whatever it returns.
type ServiceRecordRepository interface {
	ListByVehicle(ctx context.Context, vehicleID string) ([]entity.ServiceRecord, error)
}
