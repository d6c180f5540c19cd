package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/marvelstore/backend/internal/application/identity"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"github.com/marvelstore/backend/internal/interfaces/http/middleware"
)

// UserHandler handles account, session, cart, wishlist and address endpoints
type UserHandler struct {
	BaseHandler
	authService    *identityapp.AuthService
	accountService *identityapp.AccountService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *identityapp.AuthService, accountService *identityapp.AccountService) *UserHandler {
	return &UserHandler{
		authService:    authService,
		accountService: accountService,
	}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, result)
}

// Logout handles POST /api/users/logout. The presented token is revoked.
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.MessageResponse{Message: "Logged out successfully"})
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.accountService.GetProfile(c.Request.Context(), sessionUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, profile)
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.accountService.UpdateProfile(c.Request.Context(), sessionUserID(c), identityapp.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Avatar:   req.Avatar,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, result)
}

// AddToCart handles POST /api/users/cart
func (h *UserHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidID, "Invalid product id")
		return
	}

	cart, err := h.accountService.AddToCart(c.Request.Context(), sessionUserID(c), identityapp.CartLineInput{
		ProductID: productID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, cart)
}

// MergeCart handles POST /api/users/cart/merge
func (h *UserHandler) MergeCart(c *gin.Context) {
	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}
	lines, err := req.toInputs()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	cart, err := h.accountService.MergeGuestCart(c.Request.Context(), sessionUserID(c), lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, cart)
}

// UpdateCartItem handles PUT /api/users/cart/:productId. The path segment is
// the cart line id.
func (h *UserHandler) UpdateCartItem(c *gin.Context) {
	lineID, ok := h.pathID(c, "productId", "cart item")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	cart, err := h.accountService.UpdateCartItem(c.Request.Context(), sessionUserID(c), lineID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, cart)
}

// RemoveCartItem handles DELETE /api/users/cart/:productId
func (h *UserHandler) RemoveCartItem(c *gin.Context) {
	lineID, ok := h.pathID(c, "productId", "cart item")
	if !ok {
		return
	}

	cart, err := h.accountService.RemoveCartItem(c.Request.Context(), sessionUserID(c), lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, cart)
}

// AddToWishlist handles POST /api/users/wishlist
func (h *UserHandler) AddToWishlist(c *gin.Context) {
	var req WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidID, "Invalid product id")
		return
	}

	wishlist, err := h.accountService.AddToWishlist(c.Request.Context(), sessionUserID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, wishlist)
}

// RemoveFromWishlist handles DELETE /api/users/wishlist/:productId
func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	productID, ok := h.pathID(c, "productId", "product")
	if !ok {
		return
	}

	wishlist, err := h.accountService.RemoveFromWishlist(c.Request.Context(), sessionUserID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, wishlist)
}

// AddAddress handles POST /api/users/addresses
func (h *UserHandler) AddAddress(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	addresses, err := h.accountService.AddAddress(c.Request.Context(), sessionUserID(c), identityapp.AddressInput{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, addresses)
}

// ListUsers handles GET /api/users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.accountService.ListUsers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, users)
}
