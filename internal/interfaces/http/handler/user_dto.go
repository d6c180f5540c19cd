package handler

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	identityapp "github.com/marvelstore/backend/internal/application/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
)

// RegisterRequest is the body of POST /api/users/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the body of POST /api/users/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body of PUT /api/users/profile. Empty fields
// keep the stored value.
type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
	Avatar   string `json:"avatar"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

// AddToCartRequest is the body of POST /api/users/cart
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=999"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// UpdateCartItemRequest is the body of PUT /api/users/cart/:productId
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999"`
}

// WishlistRequest is the body of POST /api/users/wishlist
type WishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// AddressRequest is the body of POST /api/users/addresses
type AddressRequest struct {
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country" binding:"required"`
	IsDefault bool   `json:"isDefault"`
}

// MergeCartRequest carries a guest cart kept by the client before login
type MergeCartRequest struct {
	Items []GuestCartLine `json:"items" binding:"dive"`
}

// GuestCartLine is one guest cart line. Clients send the product either as
// the populated product object, as its id string, or as productId.
type GuestCartLine struct {
	Product   json.RawMessage `json:"product"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity" binding:"omitempty,min=1,max=999"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
}

// productID resolves the product reference of a guest line
func (l GuestCartLine) productID() (uuid.UUID, error) {
	ref := strings.TrimSpace(l.ProductID)
	if ref == "" && len(l.Product) > 0 {
		var asString string
		var asObject struct {
			ID string `json:"_id"`
		}
		switch {
		case json.Unmarshal(l.Product, &asString) == nil:
			ref = asString
		case json.Unmarshal(l.Product, &asObject) == nil:
			ref = asObject.ID
		}
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_ID", "Invalid product id")
	}
	return id, nil
}

func (r MergeCartRequest) toInputs() ([]identityapp.CartLineInput, error) {
	lines := make([]identityapp.CartLineInput, 0, len(r.Items))
	for _, item := range r.Items {
		id, err := item.productID()
		if err != nil {
			return nil, err
		}
		lines = append(lines, identityapp.CartLineInput{
			ProductID: id,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return lines, nil
}
