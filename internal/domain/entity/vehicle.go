package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle is the stock record being sold. Acquisition fields feed the
// regulatory stock book and gate invoicing: a vehicle cannot be invoiced
// without its net acquisition price (SIV), acquisition date and supplier.
type Vehicle struct {
	ID              string
	DealerID        string
	Registration    string
	VIN             string
	Make            string
	Model           string
	Derivative      string
	Colour          string
	Mileage         int
	FirstRegistered *time.Time

	AcquisitionPrice *decimal.Decimal // SIV, net; nil = unknown
	AcquisitionDate  *time.Time
	SupplierName     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Description returns the display line used on documents, e.g.
// "2019 BMW 320d M Sport".
func (v *Vehicle) Description() string {
	year := ""
	if v.FirstRegistered != nil {
		year = v.FirstRegistered.Format("2006") + " "
	}
	s := year + v.Make + " " + v.Model
	if v.Derivative != "" {
		s += " " + v.Derivative
	}
	return s
}

// ServiceRecord is one service-history entry, used only to annotate issued
// documents when available.
type ServiceRecord struct {
	ID          string
	VehicleID   string
	Date        time.Time
	Odometer    int
	Description string
	Garage      string
}
