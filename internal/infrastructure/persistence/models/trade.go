package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	UserID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Items           []OrderItemModel      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress trade.ShippingAddress `gorm:"type:text;serializer:json"`
	PaymentMethod   string                `gorm:"type:varchar(50);not null"`
	PaymentResult   *trade.PaymentResult  `gorm:"type:text;serializer:json"`
	ItemsPrice      decimal.Decimal       `gorm:"type:decimal(10,2);not null;default:0"`
	TaxPrice        decimal.Decimal       `gorm:"type:decimal(10,2);not null;default:0"`
	ShippingPrice   decimal.Decimal       `gorm:"type:decimal(10,2);not null;default:0"`
	TotalPrice      decimal.Decimal       `gorm:"type:decimal(10,2);not null;default:0"`
	IsPaid          bool                  `gorm:"not null;default:false;index"`
	PaidAt          *time.Time
	Status          string `gorm:"type:varchar(20);not null;default:'pending';index"`
	IsDelivered     bool   `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Image     string          `gorm:"type:varchar(500)"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	Size      string          `gorm:"type:varchar(20)"`
	Color     string          `gorm:"type:varchar(50)"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	items := make([]trade.OrderItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = trade.OrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		}
	}

	return &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             items,
		ShippingAddress:   m.ShippingAddress,
		PaymentMethod:     m.PaymentMethod,
		PaymentResult:     m.PaymentResult,
		ItemsPrice:        m.ItemsPrice,
		TaxPrice:          m.TaxPrice,
		ShippingPrice:     m.ShippingPrice,
		TotalPrice:        m.TotalPrice,
		IsPaid:            m.IsPaid,
		PaidAt:            m.PaidAt,
		Status:            trade.OrderStatus(m.Status),
		IsDelivered:       m.IsDelivered,
		DeliveredAt:       m.DeliveredAt,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.ShippingAddress = o.ShippingAddress
	m.PaymentMethod = o.PaymentMethod
	m.PaymentResult = o.PaymentResult
	m.ItemsPrice = o.ItemsPrice
	m.TaxPrice = o.TaxPrice
	m.ShippingPrice = o.ShippingPrice
	m.TotalPrice = o.TotalPrice
	m.IsPaid = o.IsPaid
	m.PaidAt = o.PaidAt
	m.Status = string(o.Status)
	m.IsDelivered = o.IsDelivered
	m.DeliveredAt = o.DeliveredAt

	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:        item.ID,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Position:  i,
		}
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// AllModels lists every model for AutoMigrate, parents first
func AllModels() []any {
	return []any{&ProductModel{}, &UserModel{}, &OrderModel{}, &OrderItemModel{}}
}
