package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the access level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Password cost for bcrypt
const bcryptCost = 12

// Password length bounds
const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

// MaxCartQuantity caps the quantity of a single cart line
const MaxCartQuantity = 999

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// CartItem is one cart line. A line is keyed by the (product, size, color)
// triple; ID addresses the line in update/remove calls.
type CartItem struct {
	ID        uuid.UUID `json:"_id"`
	ProductID uuid.UUID `json:"product"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

func (c CartItem) matches(productID uuid.UUID, size, color string) bool {
	return c.ProductID == productID && c.Size == size && c.Color == color
}

// Address is a saved shipping address
type Address struct {
	ID        uuid.UUID `json:"_id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"isDefault"`
}

// User represents a store customer or administrator.
// It is the aggregate root for account, cart, wishlist and address operations
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Avatar       string
	Cart         []CartItem
	Wishlist     []uuid.UUID
	Addresses    []Address
}

// NewUser creates a new user with the default role
func NewUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              RoleUser,
		Cart:              make([]CartItem, 0),
		Wishlist:          make([]uuid.UUID, 0),
		Addresses:         make([]Address, 0),
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.touch()

	return nil
}

// UpdateProfile overwrites name, email and avatar. Empty values keep the
// current ones.
func (u *User) UpdateProfile(name, email, avatar string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name != "" {
		if err := validateName(name); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if len(avatar) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}

	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if avatar != "" {
		u.Avatar = avatar
	}
	u.touch()

	return nil
}

// SetRole changes the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Invalid role: "+string(role))
	}
	u.Role = role
	u.touch()
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var errQuantityTooLarge = shared.NewDomainError("INVALID_QUANTITY",
	fmt.Sprintf("Quantity cannot exceed %d", MaxCartQuantity))

// AddToCart adds qty units of a product variant. A line with the same
// (product, size, color) triple gets its quantity increased instead of
// a new line being created.
func (u *User) AddToCart(productID uuid.UUID, qty int, size, color string) (CartItem, error) {
	if productID == uuid.Nil {
		return CartItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if qty < 1 {
		return CartItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	if qty > MaxCartQuantity {
		return CartItem{}, errQuantityTooLarge
	}

	for i := range u.Cart {
		if u.Cart[i].matches(productID, size, color) {
			if u.Cart[i].Quantity > MaxCartQuantity-qty {
				return CartItem{}, errQuantityTooLarge
			}
			u.Cart[i].Quantity += qty
			u.touch()
			return u.Cart[i], nil
		}
	}

	item := CartItem{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		Size:      size,
		Color:     color,
	}
	u.Cart = append(u.Cart, item)
	u.touch()

	return item, nil
}

// UpdateCartItem sets the quantity of a cart line. Unknown lines are
// ignored and reported with false.
func (u *User) UpdateCartItem(lineID uuid.UUID, qty int) (bool, error) {
	if qty < 1 {
		return false, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if qty > MaxCartQuantity {
		return false, errQuantityTooLarge
	}
	for i := range u.Cart {
		if u.Cart[i].ID == lineID {
			u.Cart[i].Quantity = qty
			u.touch()
			return true, nil
		}
	}
	return false, nil
}

// RemoveCartItem drops a cart line by its ID
func (u *User) RemoveCartItem(lineID uuid.UUID) bool {
	for i := range u.Cart {
		if u.Cart[i].ID == lineID {
			u.Cart = append(u.Cart[:i:i], u.Cart[i+1:]...)
			u.touch()
			return true
		}
	}
	return false
}

// MergeCart folds guest cart lines into the account cart
func (u *User) MergeCart(lines []CartItem) error {
	for _, line := range lines {
		if _, err := u.AddToCart(line.ProductID, line.Quantity, line.Size, line.Color); err != nil {
			return err
		}
	}
	return nil
}

// ClearCart empties the cart
func (u *User) ClearCart() {
	u.Cart = make([]CartItem, 0)
	u.touch()
}

// CartProductIDs returns the distinct product IDs referenced by the cart
func (u *User) CartProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(u.Cart))
	ids := make([]uuid.UUID, 0, len(u.Cart))
	for _, item := range u.Cart {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// AddToWishlist adds a product once
func (u *User) AddToWishlist(productID uuid.UUID) bool {
	if u.InWishlist(productID) {
		return false
	}
	u.Wishlist = append(u.Wishlist, productID)
	u.touch()
	return true
}

// RemoveFromWishlist removes a product from the wishlist
func (u *User) RemoveFromWishlist(productID uuid.UUID) bool {
	for i, id := range u.Wishlist {
		if id == productID {
			u.Wishlist = append(u.Wishlist[:i:i], u.Wishlist[i+1:]...)
			u.touch()
			return true
		}
	}
	return false
}

// InWishlist reports whether the product is wishlisted
func (u *User) InWishlist(productID uuid.UUID) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// AddAddress appends an address. The first address always becomes the
// default; a new default clears the flag on the others.
func (u *User) AddAddress(addr Address) (Address, error) {
	addr.Street = strings.TrimSpace(addr.Street)
	addr.City = strings.TrimSpace(addr.City)
	addr.Country = strings.TrimSpace(addr.Country)
	if addr.Street == "" || addr.City == "" || addr.Country == "" {
		return Address{}, shared.NewDomainError("INVALID_ADDRESS", "Street, city and country are required")
	}

	addr.ID = uuid.New()
	if len(u.Addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		for i := range u.Addresses {
			u.Addresses[i].IsDefault = false
		}
	}
	u.Addresses = append(u.Addresses, addr)
	u.touch()

	return addr, nil
}

// DefaultAddress returns the default address, if any
func (u *User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
