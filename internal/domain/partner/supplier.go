package partner

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Supplier is a party goods are bought from
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	ContactName   string          `gorm:"type:varchar(100)"`
	Phone         string          `gorm:"type:varchar(50);index"`
	Email         string          `gorm:"type:varchar(200)"`
	Address       string          `gorm:"type:text"`
	TotalSupplied decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name string, at time.Time) (*Supplier, error) {
	if err := validatePartyName(name); err != nil {
		return nil, err
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		Name:              strings.TrimSpace(name),
		TotalSupplied:     decimal.Zero,
	}, nil
}

// SetContact sets the supplier's contact details
func (s *Supplier) SetContact(contactName, phone, email, address string, at time.Time) {
	s.ContactName = contactName
	s.Phone = phone
	s.Email = email
	s.Address = address
	s.Touch(at)
}

// RecordSupply adds a completed purchase's value to the running total
func (s *Supplier) RecordSupply(amount decimal.Decimal, at time.Time) error {
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Supplied amount cannot be negative")
	}
	s.TotalSupplied = s.TotalSupplied.Add(amount)
	s.Touch(at)
	s.IncrementVersion()
	return nil
}

func validatePartyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Name cannot exceed 200 characters")
	}
	return nil
}
