package handler

import (
	"github.com/google/uuid"
	tradeapp "github.com/marvelstore/backend/internal/application/trade"
	"github.com/marvelstore/backend/internal/domain/shared"
)

// CreateOrderRequest is the body of POST /api/orders. Prices and names are
// looked up server side; anything the client sends for them is ignored.
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}

// ShippingAddressRequest is the delivery address of a new order
type ShippingAddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country" binding:"required"`
}

func (r CreateOrderRequest) toRequest() (tradeapp.CreateOrderRequest, error) {
	items := make([]tradeapp.OrderLineInput, 0, len(r.OrderItems))
	for _, item := range r.OrderItems {
		productID, err := uuid.Parse(item.Product)
		if err != nil {
			return tradeapp.CreateOrderRequest{}, shared.NewDomainError("INVALID_ID", "Invalid product id")
		}
		items = append(items, tradeapp.OrderLineInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return tradeapp.CreateOrderRequest{
		Items: items,
		ShippingAddress: tradeapp.ShippingAddressInput{
			Street:  r.ShippingAddress.Street,
			City:    r.ShippingAddress.City,
			State:   r.ShippingAddress.State,
			ZipCode: r.ShippingAddress.ZipCode,
			Country: r.ShippingAddress.Country,
		},
		PaymentMethod: r.PaymentMethod,
	}, nil
}

// PayOrderRequest is the payment provider confirmation forwarded by the client
type PayOrderRequest struct {
	ID           string `json:"id" binding:"required"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address" binding:"omitempty,email"`
}

// UpdateStatusRequest is the body of PUT /api/orders/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus"`
}

// ListOrdersQuery is the admin order listing query string
type ListOrdersQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
