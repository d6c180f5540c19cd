package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AccountService handles profile, cart, wishlist and address operations
// on the authenticated user's own account
type AccountService struct {
	userRepo    identity.UserRepository
	productRepo catalog.ProductRepository
	jwtService  *auth.JWTService
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		userRepo:    userRepo,
		productRepo: productRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// GetProfile returns the user with cart and wishlist resolved
func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := append(user.CartProductIDs(), user.Wishlist...)
	products, err := s.resolveProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Avatar:    user.Avatar,
		Cart:      cartLines(user.Cart, products),
		Wishlist:  wishlistEntries(user.Wishlist, products),
		Addresses: ToAddressResponses(user.Addresses),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// UpdateProfile changes name, email, avatar and optionally the password,
// then issues a fresh token
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*AuthResult, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if email != "" && email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already in use")
		}
	}

	if err := user.UpdateProfile(input.Name, email, input.Avatar); err != nil {
		return nil, err
	}
	if input.Password != "" {
		if err := user.SetPassword(input.Password); err != nil {
			return nil, err
		}
	}

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate authentication token")
	}

	return toAuthResult(user, token.Token), nil
}

// AddToCart adds a product variant to the cart and returns the resolved cart.
// Quantity defaults to 1.
func (s *AccountService) AddToCart(ctx context.Context, userID uuid.UUID, input CartLineInput) ([]CartLineResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	if _, err := user.AddToCart(input.ProductID, qty, input.Size, input.Color); err != nil {
		return nil, err
	}

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return s.resolvedCart(ctx, user)
}

// UpdateCartItem sets the quantity of a cart line. An unknown line leaves
// the cart unchanged.
func (s *AccountService) UpdateCartItem(ctx context.Context, userID, lineID uuid.UUID, quantity int) ([]CartLineResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed, err := user.UpdateCartItem(lineID, quantity)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.saveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.resolvedCart(ctx, user)
}

// RemoveCartItem drops a cart line
func (s *AccountService) RemoveCartItem(ctx context.Context, userID, lineID uuid.UUID) ([]CartLineResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.RemoveCartItem(lineID) {
		if err := s.saveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.resolvedCart(ctx, user)
}

// MergeGuestCart folds a guest cart into the account cart. Lines whose
// product no longer exists are skipped.
func (s *AccountService) MergeGuestCart(ctx context.Context, userID uuid.UUID, lines []CartLineInput) ([]CartLineResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return s.resolvedCart(ctx, user)
	}

	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.resolveProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]identity.CartItem, 0, len(lines))
	skipped := 0
	for _, l := range lines {
		if _, ok := products[l.ProductID]; !ok {
			skipped++
			continue
		}
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, identity.CartItem{ProductID: l.ProductID, Quantity: qty, Size: l.Size, Color: l.Color})
	}

	if err := user.MergeCart(items); err != nil {
		return nil, err
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Guest cart merged",
		zap.String("user_id", userID.String()),
		zap.Int("merged", len(items)),
		zap.Int("skipped", skipped))

	return s.resolvedCart(ctx, user)
}

// AddToWishlist adds a product once and returns the resolved wishlist
func (s *AccountService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) ([]*catalogapp.ProductResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if user.AddToWishlist(productID) {
		if err := s.saveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.resolvedWishlist(ctx, user)
}

// RemoveFromWishlist removes a product and returns the resolved wishlist
func (s *AccountService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) ([]*catalogapp.ProductResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.RemoveFromWishlist(productID) {
		if err := s.saveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.resolvedWishlist(ctx, user)
}

// AddAddress saves an address and returns the address list
func (s *AccountService) AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) ([]AddressResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := user.AddAddress(identity.Address{
		Street:    input.Street,
		City:      input.City,
		State:     input.State,
		ZipCode:   input.ZipCode,
		Country:   input.Country,
		IsDefault: input.IsDefault,
	}); err != nil {
		return nil, err
	}

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return ToAddressResponses(user.Addresses), nil
}

// ListUsers returns every account for the admin listing
func (s *AccountService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	result := make([]UserResponse, len(users))
	for i := range users {
		result[i] = ToUserResponse(&users[i])
	}
	return result, nil
}

func (s *AccountService) findUser(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AccountService) saveUser(ctx context.Context, user *identity.User) error {
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError("ALREADY_EXISTS", "Email is already in use")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	user.ClearDomainEvents()
	return nil
}

func (s *AccountService) resolveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	result := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

func (s *AccountService) resolvedCart(ctx context.Context, user *identity.User) ([]CartLineResponse, error) {
	products, err := s.resolveProducts(ctx, user.CartProductIDs())
	if err != nil {
		return nil, err
	}
	return cartLines(user.Cart, products), nil
}

func (s *AccountService) resolvedWishlist(ctx context.Context, user *identity.User) ([]*catalogapp.ProductResponse, error) {
	products, err := s.resolveProducts(ctx, user.Wishlist)
	if err != nil {
		return nil, err
	}
	return wishlistEntries(user.Wishlist, products), nil
}

func cartLines(cart []identity.CartItem, products map[uuid.UUID]*catalog.Product) []CartLineResponse {
	lines := make([]CartLineResponse, len(cart))
	for i, item := range cart {
		lines[i] = CartLineResponse{
			ID:       item.ID,
			Product:  productOrNil(products, item.ProductID),
			Quantity: item.Quantity,
			Size:     item.Size,
			Color:    item.Color,
		}
	}
	return lines
}

func wishlistEntries(ids []uuid.UUID, products map[uuid.UUID]*catalog.Product) []*catalogapp.ProductResponse {
	entries := make([]*catalogapp.ProductResponse, len(ids))
	for i, id := range ids {
		entries[i] = productOrNil(products, id)
	}
	return entries
}

func productOrNil(products map[uuid.UUID]*catalog.Product, id uuid.UUID) *catalogapp.ProductResponse {
	p, ok := products[id]
	if !ok {
		return nil
	}
	resp := catalogapp.ToProductResponse(p)
	return &resp
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
