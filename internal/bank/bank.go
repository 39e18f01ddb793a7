package bank

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountSavings AccountType = "savings"
	AccountCurrent AccountType = "current"
)

func (t AccountType) Valid() bool {
	return t == AccountSavings || t == AccountCurrent
}

// Account is a bank account printed on invoices. Company accounts receive
// payments; customer accounts are the payer's.
// At most one account per owner and kind is the default.
type Account struct {
	ID                uuid.UUID
	AccountHolderName string
	AccountNumber     string
	IFSC              string
	BankName          string
	Branch            string
	AccountType       AccountType
	IsDefault         bool
	IsCompanyAccount  bool
	CustomerID        *uuid.UUID
	CreatedBy         uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

func (a *Account) normalize() {
	a.AccountHolderName = strings.TrimSpace(a.AccountHolderName)
	a.AccountNumber = strings.TrimSpace(a.AccountNumber)
	a.IFSC = strings.ToUpper(strings.TrimSpace(a.IFSC))
	a.BankName = strings.TrimSpace(a.BankName)
	a.Branch = strings.TrimSpace(a.Branch)

	if a.AccountType == "" {
		a.AccountType = AccountCurrent
	}
}
