package identity

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	"github.com/marvelstore/backend/internal/domain/identity"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by register, login and profile update
type AuthResult struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Avatar string    `json:"avatar"`
	Token  string    `json:"token"`
}

// UpdateProfileInput carries profile changes. Empty fields keep the current value.
type UpdateProfileInput struct {
	Name     string
	Email    string
	Avatar   string
	Password string
}

// CartLineInput is one cart line sent by the client
type CartLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     string
}

// AddressInput is a new saved address
type AddressInput struct {
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

// CartLineResponse is a cart line with its product resolved. Product is null
// when the product no longer exists.
type CartLineResponse struct {
	ID       uuid.UUID                   `json:"_id"`
	Product  *catalogapp.ProductResponse `json:"product"`
	Quantity int                         `json:"quantity"`
	Size     string                      `json:"size"`
	Color    string                      `json:"color"`
}

// AddressResponse is a saved address in API responses
type AddressResponse struct {
	ID        uuid.UUID `json:"_id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"isDefault"`
}

// ProfileResponse is the authenticated user's own document with cart and
// wishlist resolved
type ProfileResponse struct {
	ID        uuid.UUID                     `json:"_id"`
	Name      string                        `json:"name"`
	Email     string                        `json:"email"`
	Role      string                        `json:"role"`
	Avatar    string                        `json:"avatar"`
	Cart      []CartLineResponse            `json:"cart"`
	Wishlist  []*catalogapp.ProductResponse `json:"wishlist"`
	Addresses []AddressResponse             `json:"addresses"`
	CreatedAt time.Time                     `json:"createdAt"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

// UserResponse is a user in the admin listing. It never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// ToAddressResponses converts domain addresses
func ToAddressResponses(addresses []identity.Address) []AddressResponse {
	result := make([]AddressResponse, len(addresses))
	for i, a := range addresses {
		result[i] = AddressResponse{
			ID:        a.ID,
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			ZipCode:   a.ZipCode,
			Country:   a.Country,
			IsDefault: a.IsDefault,
		}
	}
	return result
}

func toAuthResult(u *identity.User, token string) *AuthResult {
	return &AuthResult{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Avatar: u.Avatar,
		Token:  token,
	}
}
