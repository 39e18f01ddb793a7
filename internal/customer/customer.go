package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultCountry = "India"

type Address struct {
	Street  string
	City    string
	State   string
	Pincode string
	Country string
}

// BankDetails are the customer's own account details printed on invoices.
type BankDetails struct {
	AccountNumber string
	IFSC          string
	BankName      string
	Branch        string
}

// Customer is a billed party. Address.State decides the GST split.
type Customer struct {
	ID          uuid.UUID
	Name        string
	CompanyName string
	Email       string
	Phone       string
	GSTIN       string
	Address     Address
	Bank        BankDetails
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// DisplayName prefers the company name.
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}

	return c.Name
}

func (c *Customer) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.GSTIN = strings.ToUpper(strings.TrimSpace(c.GSTIN))
	c.Address.Street = strings.TrimSpace(c.Address.Street)
	c.Address.City = strings.TrimSpace(c.Address.City)
	c.Address.State = strings.TrimSpace(c.Address.State)
	c.Address.Pincode = strings.TrimSpace(c.Address.Pincode)
	c.Address.Country = strings.TrimSpace(c.Address.Country)
	c.Bank.IFSC = strings.ToUpper(strings.TrimSpace(c.Bank.IFSC))

	if c.Address.Country == "" {
		c.Address.Country = DefaultCountry
	}
}
