package entity

import "time"

// Customer is a buyer contact record.
type Customer struct {
	ID           string
	DealerID     string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	Town         string
	Postcode     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name used on documents.
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}

// Address returns the single-line address used on documents.
func (c *Customer) Address() string {
	parts := []string{c.AddressLine1, c.AddressLine2, c.Town, c.Postcode}
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
