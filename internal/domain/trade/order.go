package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Pricing constants
var (
	FreeShippingThreshold = decimal.NewFromInt(50)
	StandardShipping      = decimal.NewFromFloat(9.99)
	TaxRate               = decimal.NewFromFloat(0.08)
)

// OrderItem is a purchased line. Name, image and price are snapshots taken
// from the catalog when the order is placed.
type OrderItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int
	Size      string
	Color     string
}

// NewOrderItem creates a validated order line
func NewOrderItem(productID uuid.UUID, name, image string, price decimal.Decimal, quantity int, size, color string) (OrderItem, error) {
	if productID == uuid.Nil {
		return OrderItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return OrderItem{}, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return OrderItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if price.IsNegative() {
		return OrderItem{}, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return OrderItem{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      name,
		Image:     image,
		Price:     price,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}, nil
}

// Amount is price × quantity
func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is the delivery address copied onto the order
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (a ShippingAddress) validate() error {
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.Country) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Shipping address requires street, city and country")
	}
	return nil
}

// PaymentResult is the confirmation returned by the payment provider
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// Order is a placed purchase.
// It is the aggregate root for checkout, payment and fulfilment
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentResult   *PaymentResult
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	Status          OrderStatus
	IsDelivered     bool
	DeliveredAt     *time.Time
}

// NewOrder creates a pending order and computes its prices
func NewOrder(userID uuid.UUID, items []OrderItem, address ShippingAddress, paymentMethod string) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "No order items")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
	}
	if err := address.validate(); err != nil {
		return nil, err
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is required")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             append([]OrderItem{}, items...),
		ShippingAddress:   address,
		PaymentMethod:     paymentMethod,
		Status:            OrderStatusPending,
	}
	order.recalculateTotals()

	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

// MarkPaid records a successful payment. A pending order moves to processing.
func (o *Order) MarkPaid(result PaymentResult) error {
	if o.IsPaid {
		return shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled order")
	}

	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &result
	if o.Status == OrderStatusPending {
		o.Status = OrderStatusProcessing
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// UpdateStatus moves the order along the fulfilment lifecycle
func (o *Order) UpdateStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid order status: %s", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}

	previous := o.Status
	now := time.Now()
	o.Status = target
	if target == OrderStatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	if target == OrderStatusCancelled {
		o.AddDomainEvent(NewOrderCancelledEvent(o, previous))
	} else {
		o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	}

	return nil
}

// IsOwnedBy reports whether the order belongs to the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsCancelled reports whether the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// ItemCount returns the number of lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity sums the quantities of all lines
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o *Order) recalculateTotals() {
	o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice = CalculatePrices(o.Items)
}

// CalculatePrices returns items, shipping, tax and total prices for the
// given lines. Shipping is free above the threshold; tax is rounded to cents.
func CalculatePrices(items []OrderItem) (itemsPrice, shipping, tax, total decimal.Decimal) {
	itemsPrice = decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Amount())
	}
	itemsPrice = itemsPrice.Round(2)

	shipping = StandardShipping
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax = itemsPrice.Mul(TaxRate).Round(2)
	total = itemsPrice.Add(shipping).Add(tax)
	return itemsPrice, shipping, tax, total
}
