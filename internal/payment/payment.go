package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode is how a payment was received.
type Mode string

const (
	ModeOnline       Mode = "online"
	ModeOffline      Mode = "offline"
	ModeBankTransfer Mode = "bank-transfer"
	ModeUPI          Mode = "upi"
	ModeCheque       Mode = "cheque"
	ModeCash         Mode = "cash"
)

// Modes lists every accepted payment mode.
var Modes = []Mode{ModeOnline, ModeOffline, ModeBankTransfer, ModeUPI, ModeCheque, ModeCash}

func (m Mode) Valid() bool {
	for _, mode := range Modes {
		if m == mode {
			return true
		}
	}

	return false
}

// Payment is money received against one invoice.
type Payment struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Mode          Mode
	TransactionID string
	Notes         string
	ReceivedBy    uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
