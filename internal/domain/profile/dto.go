package profile

import "github.com/shopspring/decimal"

// UpdateCustomerRequest is the customer profile update payload
type UpdateCustomerRequest struct {
	Phone string `json:"phone" validate:"omitempty,min=5,max=32"`
	City  string `json:"city" validate:"omitempty,min=2,max=80"`
}

// UpdateMechanicRequest is the mechanic profile update payload
type UpdateMechanicRequest struct {
	ShopName    string          `json:"shop_name" validate:"required,min=2,max=120"`
	Bio         string          `json:"bio" validate:"max=2000"`
	Specialties []string        `json:"specialties" validate:"max=20,dive,min=2,max=60"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	City        string          `json:"city" validate:"required,min=2,max=80"`
}

// ListMechanicsQuery carries the mechanic search filters
type ListMechanicsQuery struct {
	City      string
	Specialty string
	Limit     int
	Offset    int
}
