package deal

import (
	"fmt"

	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// Transition validates a lifecycle move. It returns ErrConflict when the move
// is illegal from the current status; it never mutates the deal.
func Transition(current, target entity.DealStatus) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, target)
	}
	if !current.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot move deal from %s to %s", domain.ErrConflict, current, target)
	}
	return nil
}

// InvoiceGuards is everything the invoicing preconditions look at. The
// deposit receipt is the latest non-void one for the deal, nil when none was
// ever issued.
type InvoiceGuards struct {
	Deal           *entity.Deal
	Vehicle        *entity.Vehicle
	DepositReceipt *entity.SalesDocument
}

// CheckInvoiceGuards enforces every precondition for {DRAFT|DEPOSIT_TAKEN} →
// INVOICED. All guards must hold; the first failure is returned as a
// structured error naming the field and how to fix it, and nothing is
// mutated. Idempotent re-issuance against an already invoiced deal is handled
// by the caller before these guards run.
func CheckInvoiceGuards(g InvoiceGuards) error {
	d := g.Deal

	if d.Status == entity.DealStatusCancelled || d.Status == entity.DealStatusCompleted {
		return fmt.Errorf("%w: deal is %s and can no longer be invoiced", domain.ErrConflict, d.Status)
	}
	if err := Transition(d.Status, entity.DealStatusInvoiced); err != nil {
		return err
	}

	if d.CustomerID == "" {
		return domain.NewPrecondition("customerId", "attach a buyer to the deal before invoicing")
	}
	// Zero is a valid agreed price; only an unset price blocks invoicing.
	if d.VehiclePrice == nil {
		return domain.NewPrecondition("vehiclePrice", "agree and record a vehicle sale price")
	}

	// Acquisition provenance feeds the regulatory stock book; an invoice
	// without it cannot be reported.
	v := g.Vehicle
	if v == nil || v.AcquisitionPrice == nil {
		return domain.NewPrecondition("vehicle.acquisitionPrice", "record the net acquisition (SIV) price on the vehicle")
	}
	if v.AcquisitionDate == nil {
		return domain.NewPrecondition("vehicle.acquisitionDate", "record the date the vehicle was acquired")
	}
	if v.SupplierName == "" {
		return domain.NewPrecondition("vehicle.supplierName", "record who the vehicle was acquired from")
	}

	// In-person deals with a deposit receipt need both wet signatures before
	// the invoice can issue. Distance sales are exempt.
	if g.DepositReceipt != nil && d.Channel != entity.ChannelDistance {
		if g.DepositReceipt.BuyerSignedAt == nil {
			return domain.NewPrecondition("depositReceipt.buyerSignature", "capture the buyer's signature on the deposit receipt")
		}
		if g.DepositReceipt.SellerSignedAt == nil {
			return domain.NewPrecondition("depositReceipt.sellerSignature", "capture the seller's signature on the deposit receipt")
		}
	}
	return nil
}
