package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// progression is the forward path; cancelled sits outside it
var progression = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusReady:      3,
	OrderStatusShipped:    4,
	OrderStatusDelivered:  5,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := progression[s]
	return ok || s == OrderStatusCancelled
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for delivered and cancelled
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether target is reachable from s. Orders only
// move forward, may skip intermediate states, and can be cancelled while
// pending or confirmed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusConfirmed
	}
	from, ok := progression[s]
	if !ok {
		return false
	}
	to, ok := progression[target]
	if !ok {
		return false
	}
	return to > from
}

// FulfillmentType is how the goods reach the customer
type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

// IsValid checks if the fulfillment type is valid
func (f FulfillmentType) IsValid() bool {
	return f == FulfillmentPickup || f == FulfillmentDelivery
}

// PaymentState summarises how much of an order has been paid
type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "unpaid"
	PaymentStatePartial  PaymentState = "partial"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
)

// DerivePaymentState computes the payment state from the completed amount
// paid. Nothing paid is unpaid even when the total is zero.
func DerivePaymentState(amountPaid, total decimal.Decimal) PaymentState {
	switch {
	case !amountPaid.IsPositive():
		return PaymentStateUnpaid
	case amountPaid.GreaterThanOrEqual(total):
		return PaymentStatePaid
	default:
		return PaymentStatePartial
	}
}

// OrderItem is one product line on an order. CostPrice is snapshotted when
// stock is deducted and stays nil before that.
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Total     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CostPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

func newOrderItem(orderID, productID uuid.UUID, quantity, unitPrice decimal.Decimal, at time.Time) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	item := &OrderItem{
		BaseEntity: shared.NewBaseEntity(at),
		OrderID:    orderID,
		ProductID:  productID,
	}
	if err := item.setLine(quantity, unitPrice); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *OrderItem) setLine(quantity, unitPrice decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.Total = quantity.Mul(unitPrice).Round(4)
	return nil
}

// Margin returns line profit once the cost price is known
func (i *OrderItem) Margin() (decimal.Decimal, bool) {
	if i.CostPrice == nil {
		return decimal.Zero, false
	}
	return i.Total.Sub(i.Quantity.Mul(*i.CostPrice)).Round(4), true
}

// Order is the aggregate root for a customer order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	FulfillmentType  FulfillmentType `gorm:"type:varchar(20);not null"`
	DeliveryAddress  string          `gorm:"type:text"`
	Status           OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus    PaymentState    `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryFee      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID"`
	StockDeducted    bool            `gorm:"not null;default:false"`
	CustomerCredited bool            `gorm:"not null;default:false"`
	ConfirmedAt      *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string    `gorm:"type:varchar(500)"`
	Notes            string    `gorm:"type:text"`
	CreatedBy        uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// GenerateOrderNumber builds a human-facing order number
func GenerateOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "ORD-" + at.Format("20060102") + "-" + suffix
}

// NewOrder creates an empty pending order
func NewOrder(orderNumber string, customerID uuid.UUID, fulfillment FulfillmentType, deliveryAddress string, actorID uuid.UUID, at time.Time) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer ID cannot be empty")
	}
	if !fulfillment.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid fulfillment type")
	}
	if fulfillment == FulfillmentDelivery && strings.TrimSpace(deliveryAddress) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delivery orders require an address")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		FulfillmentType:   fulfillment,
		DeliveryAddress:   deliveryAddress,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStateUnpaid,
		Subtotal:          decimal.Zero,
		DiscountAmount:    decimal.Zero,
		DeliveryFee:       decimal.Zero,
		TotalAmount:       decimal.Zero,
		AmountPaid:        decimal.Zero,
		Items:             make([]OrderItem, 0),
		CreatedBy:         actorID,
	}, nil
}

func (o *Order) ensurePending(action string) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot %s an order in %s status", action, o.Status))
	}
	return nil
}

// FindItem returns the line with the given ID
func (o *Order) FindItem(itemID uuid.UUID) (*OrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx], nil
		}
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "Order item not found")
}

// AddItem appends a line. Only pending orders take new lines, one per product.
func (o *Order) AddItem(productID uuid.UUID, quantity, unitPrice decimal.Decimal, at time.Time) (*OrderItem, error) {
	if err := o.ensurePending("add items to"); err != nil {
		return nil, err
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product already exists in order, update quantity instead")
		}
	}

	item, err := newOrderItem(o.ID, productID, quantity, unitPrice, at)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	if err := o.RecomputeTotals(); err != nil {
		o.Items = o.Items[:len(o.Items)-1]
		_ = o.RecomputeTotals()
		return nil, err
	}
	o.Touch(at)
	return item, nil
}

// UpdateItem changes a pending line and returns the quantity it had before
func (o *Order) UpdateItem(itemID uuid.UUID, quantity, unitPrice decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if err := o.ensurePending("edit items of"); err != nil {
		return decimal.Zero, err
	}
	item, err := o.FindItem(itemID)
	if err != nil {
		return decimal.Zero, err
	}

	oldQuantity, oldPrice := item.Quantity, item.UnitPrice
	if err := item.setLine(quantity, unitPrice); err != nil {
		return decimal.Zero, err
	}
	if err := o.RecomputeTotals(); err != nil {
		_ = item.setLine(oldQuantity, oldPrice)
		_ = o.RecomputeTotals()
		return decimal.Zero, err
	}
	item.Touch(at)
	o.Touch(at)
	return oldQuantity, nil
}

// RemoveItem drops a pending line and returns it
func (o *Order) RemoveItem(itemID uuid.UUID, at time.Time) (*OrderItem, error) {
	if err := o.ensurePending("remove items from"); err != nil {
		return nil, err
	}
	for idx := range o.Items {
		if o.Items[idx].ID != itemID {
			continue
		}
		removed := o.Items[idx]
		remaining := make([]OrderItem, 0, len(o.Items)-1)
		remaining = append(remaining, o.Items[:idx]...)
		remaining = append(remaining, o.Items[idx+1:]...)

		previous := o.Items
		o.Items = remaining
		if err := o.RecomputeTotals(); err != nil {
			o.Items = previous
			_ = o.RecomputeTotals()
			return nil, err
		}
		o.Touch(at)
		return &removed, nil
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "Order item not found")
}

// SetCharges sets the discount and delivery fee of a pending order
func (o *Order) SetCharges(discount, deliveryFee decimal.Decimal, at time.Time) error {
	if err := o.ensurePending("change charges of"); err != nil {
		return err
	}
	if discount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Discount cannot be negative")
	}
	if deliveryFee.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Delivery fee cannot be negative")
	}

	oldDiscount, oldFee := o.DiscountAmount, o.DeliveryFee
	o.DiscountAmount = discount
	o.DeliveryFee = deliveryFee
	if err := o.RecomputeTotals(); err != nil {
		o.DiscountAmount, o.DeliveryFee = oldDiscount, oldFee
		_ = o.RecomputeTotals()
		return err
	}
	o.Touch(at)
	return nil
}

// RecomputeTotals derives subtotal and total from the lines and charges:
// subtotal = sum of line totals, total = subtotal - discount + delivery fee.
// The payment state is re-derived against the new total.
func (o *Order) RecomputeTotals() error {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Total)
	}
	total := subtotal.Sub(o.DiscountAmount).Add(o.DeliveryFee)
	if total.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Discount cannot exceed the order value")
	}
	o.Subtotal = subtotal
	o.TotalAmount = total
	o.PaymentStatus = DerivePaymentState(o.AmountPaid, o.TotalAmount)
	return nil
}

// TransitionTo moves the order to target. Stock and customer side effects
// are applied by the caller in the same transaction. Confirming an already
// confirmed order is a no-op.
func (o *Order) TransitionTo(target OrderStatus, reason string, at time.Time) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid order status")
	}
	if o.IsRepeatedConfirm(target) {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	if target == OrderStatusCancelled && strings.TrimSpace(reason) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cancel reason is required")
	}
	if target != OrderStatusCancelled && o.Status == OrderStatusPending && len(o.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot confirm an order without items")
	}

	from := o.Status
	o.Status = target
	switch target {
	case OrderStatusCancelled:
		o.CancelledAt = &at
		o.CancelReason = reason
	case OrderStatusDelivered:
		o.DeliveredAt = &at
	}
	if o.ConfirmedAt == nil && target != OrderStatusCancelled {
		o.ConfirmedAt = &at
	}
	o.Touch(at)
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, reason, at))
	return nil
}

// IsRepeatedConfirm reports whether target re-confirms a confirmed order
func (o *Order) IsRepeatedConfirm(target OrderStatus) bool {
	return target == OrderStatusConfirmed && o.Status == OrderStatusConfirmed
}

// NeedsStockDeduction reports whether moving to target must consume the
// order's reservations. It happens once, on the first step past pending.
func (o *Order) NeedsStockDeduction(target OrderStatus) bool {
	return !o.StockDeducted && o.Status == OrderStatusPending && target != OrderStatusCancelled
}

// MarkStockDeducted records that reservations were turned into sales
func (o *Order) MarkStockDeducted() {
	o.StockDeducted = true
}

// HoldsReservations reports whether the order's lines are still reserved
func (o *Order) HoldsReservations() bool {
	return o.Status == OrderStatusPending && !o.StockDeducted
}

// SnapshotCost stores the average cost a line was sold at
func (o *Order) SnapshotCost(itemID uuid.UUID, cost decimal.Decimal) error {
	item, err := o.FindItem(itemID)
	if err != nil {
		return err
	}
	c := cost
	item.CostPrice = &c
	return nil
}

// Outstanding returns what is still owed on the order
func (o *Order) Outstanding() decimal.Decimal {
	return o.TotalAmount.Sub(o.AmountPaid)
}

// EnsureAcceptsPayment checks a new payment of amount may be recorded
func (o *Order) EnsureAcceptsPayment(amount decimal.Decimal) error {
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot record payment on a cancelled order")
	}
	if o.PaymentStatus == PaymentStatePaid {
		return shared.NewDomainError(shared.CodeInvalidState, "Order is already paid")
	}
	if amount.GreaterThan(o.Outstanding()) {
		return shared.NewDomainError(shared.CodeAmountExceedsBalance,
			fmt.Sprintf("Amount %s exceeds outstanding balance %s", amount.StringFixed(2), o.Outstanding().StringFixed(2)))
	}
	return nil
}

// ApplyAmountPaid sets the completed amount paid and re-derives the payment state
func (o *Order) ApplyAmountPaid(amountPaid decimal.Decimal, at time.Time) {
	o.AmountPaid = amountPaid
	o.PaymentStatus = DerivePaymentState(o.AmountPaid, o.TotalAmount)
	o.Touch(at)
}

// ShouldCreditCustomer reports whether the order's value is due to be added
// to the customer's lifetime purchases
func (o *Order) ShouldCreditCustomer() bool {
	return o.Status == OrderStatusDelivered && o.PaymentStatus == PaymentStatePaid && !o.CustomerCredited
}

// MarkCustomerCredited records that the customer's lifetime total includes this order
func (o *Order) MarkCustomerCredited() {
	o.CustomerCredited = true
}

// CanDelete returns an error unless the order is pending or cancelled
func (o *Order) CanDelete() error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot delete order in %s status", o.Status))
	}
	return nil
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Quantity)
	}
	return total
}
