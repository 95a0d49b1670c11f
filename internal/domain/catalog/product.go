package catalog

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the status is a known value
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product represents a tradable good in the catalog.
// Its identity and code are fixed once movements reference it; prices,
// threshold and descriptive fields stay editable.
type Product struct {
	shared.BaseAggregateRoot
	Code              string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	BuyingPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(code, name, unit string, at time.Time) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		Code:              strings.ToUpper(code),
		Name:              name,
		Unit:              unit,
		BuyingPrice:       decimal.Zero,
		SellingPrice:      decimal.Zero,
		LowStockThreshold: decimal.Zero,
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product, at))

	return product, nil
}

// Rename updates the product's descriptive fields
func (p *Product) Rename(name, description, unit string, at time.Time) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateUnit(unit); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.Unit = unit
	p.Touch(at)
	p.IncrementVersion()

	return nil
}

// SetPrices sets both buying and selling prices
func (p *Product) SetPrices(buyingPrice, sellingPrice decimal.Decimal, at time.Time) error {
	if buyingPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Buying price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Selling price cannot be negative")
	}

	oldBuying := p.BuyingPrice
	oldSelling := p.SellingPrice

	p.BuyingPrice = buyingPrice
	p.SellingPrice = sellingPrice
	p.Touch(at)
	p.IncrementVersion()

	if !oldBuying.Equal(buyingPrice) || !oldSelling.Equal(sellingPrice) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldBuying, oldSelling, at))
	}

	return nil
}

// SetLowStockThreshold sets the quantity at or below which a low stock alert is raised.
// Zero disables low stock alerts; out of stock alerts are always raised.
func (p *Product) SetLowStockThreshold(threshold decimal.Decimal, at time.Time) error {
	if threshold.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Low stock threshold cannot be negative")
	}

	p.LowStockThreshold = threshold
	p.Touch(at)
	p.IncrementVersion()

	return nil
}

// Activate activates the product
func (p *Product) Activate(at time.Time) error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError(shared.CodeInvalidState, "Product is already active")
	}

	p.Status = ProductStatusActive
	p.Touch(at)
	p.IncrementVersion()

	return nil
}

// Deactivate deactivates the product. Inactive products cannot be bought or sold.
func (p *Product) Deactivate(at time.Time) error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError(shared.CodeInvalidState, "Product is already inactive")
	}

	p.Status = ProductStatusInactive
	p.Touch(at)
	p.IncrementVersion()

	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// EnsureTradable returns an error if the product cannot take part in a purchase or order
func (p *Product) EnsureTradable() error {
	if !p.IsActive() {
		return shared.NewDomainError(shared.CodeInvalidState, "Product "+p.Code+" is inactive")
	}
	return nil
}

// CanDelete reports whether the product may be removed given its on-hand and reserved stock
func (p *Product) CanDelete(quantity, reserved decimal.Decimal) error {
	if !quantity.IsZero() || !reserved.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidState, "Product can only be deleted when its stock is zero")
	}
	return nil
}

// GetProfitMargin returns the profit margin percentage
// Returns 0 if buying price is zero
func (p *Product) GetProfitMargin() decimal.Decimal {
	if p.BuyingPrice.IsZero() {
		return decimal.Zero
	}
	profit := p.SellingPrice.Sub(p.BuyingPrice)
	return profit.Div(p.BuyingPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError(shared.CodeInvalidInput, "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit cannot exceed 20 characters")
	}
	return nil
}
