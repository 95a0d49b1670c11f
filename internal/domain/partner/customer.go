package partner

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer is a party goods are sold to
type Customer struct {
	shared.BaseAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Phone             string          `gorm:"type:varchar(50);index"`
	Email             string          `gorm:"type:varchar(200)"`
	Address           string          `gorm:"type:text"`
	LifetimePurchases decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes             string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name string, at time.Time) (*Customer, error) {
	if err := validatePartyName(name); err != nil {
		return nil, err
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		Name:              strings.TrimSpace(name),
		LifetimePurchases: decimal.Zero,
	}, nil
}

// SetContact sets the customer's contact details
func (c *Customer) SetContact(phone, email, address string, at time.Time) {
	c.Phone = phone
	c.Email = email
	c.Address = address
	c.Touch(at)
}

// RecordPurchase adds a delivered and paid order's total to the lifetime figure
func (c *Customer) RecordPurchase(amount decimal.Decimal, at time.Time) error {
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase amount cannot be negative")
	}
	c.LifetimePurchases = c.LifetimePurchases.Add(amount)
	c.Touch(at)
	c.IncrementVersion()
	return nil
}
