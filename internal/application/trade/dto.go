package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/trade"
)

// Actor identifies the caller of an order operation
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// OrderLineInput is one requested order line. Price and name are never taken
// from the client.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     string
}

// ShippingAddressInput is the delivery address of a new order
type ShippingAddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// CreateOrderRequest represents a checkout request
type CreateOrderRequest struct {
	Items           []OrderLineInput
	ShippingAddress ShippingAddressInput
	PaymentMethod   string
}

// PayOrderRequest carries the payment provider confirmation
type PayOrderRequest struct {
	ID           string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// ListOrdersRequest filters the admin order listing
type ListOrdersRequest struct {
	Status string
	Page   int
	Limit  int
}

// OrderItemResponse is an order line in API responses
type OrderItemResponse struct {
	ID       uuid.UUID `json:"_id"`
	Product  uuid.UUID `json:"product"`
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Size     string    `json:"size,omitempty"`
	Color    string    `json:"color,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID             `json:"_id"`
	User            uuid.UUID             `json:"user"`
	OrderItems      []OrderItemResponse   `json:"orderItems"`
	ShippingAddress trade.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	PaymentResult   *trade.PaymentResult  `json:"paymentResult,omitempty"`
	ItemsPrice      float64               `json:"itemsPrice"`
	TaxPrice        float64               `json:"taxPrice"`
	ShippingPrice   float64               `json:"shippingPrice"`
	TotalPrice      float64               `json:"totalPrice"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	Status          string                `json:"status"`
	IsDelivered     bool                  `json:"isDelivered"`
	DeliveredAt     *time.Time            `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// ListOrdersResult is one page of the admin order listing
type ListOrdersResult struct {
	Orders []OrderResponse `json:"orders"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
	Total  int64           `json:"total"`
}

// OrderStatsResponse is the admin dashboard summary
type OrderStatsResponse struct {
	TotalOrders    int64            `json:"totalOrders"`
	PaidOrders     int64            `json:"paidOrders"`
	TotalRevenue   float64          `json:"totalRevenue"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	TotalProducts  int64            `json:"totalProducts"`
	TotalUsers     int64            `json:"totalUsers"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:       item.ID,
			Product:  item.ProductID,
			Name:     item.Name,
			Image:    item.Image,
			Price:    item.Price.InexactFloat64(),
			Quantity: item.Quantity,
			Size:     item.Size,
			Color:    item.Color,
		}
	}

	return OrderResponse{
		ID:              o.ID,
		User:            o.UserID,
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentResult:   o.PaymentResult,
		ItemsPrice:      o.ItemsPrice.InexactFloat64(),
		TaxPrice:        o.TaxPrice.InexactFloat64(),
		ShippingPrice:   o.ShippingPrice.InexactFloat64(),
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		Status:          string(o.Status),
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain Orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
