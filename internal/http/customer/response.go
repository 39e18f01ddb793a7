package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/customer"
)

type customerResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	CompanyName string     `json:"company_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	GSTIN       string     `json:"gstin,omitempty"`
	Address     addressDTO `json:"address"`
	Bank        bankDTO    `json:"bank_details"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		GSTIN:       c.GSTIN,
		Address:     addressDTO(c.Address),
		Bank:        bankDTO(c.Bank),
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toResponseList(cs []*customer.Customer) []customerResponse {
	resp := make([]customerResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	return resp
}
