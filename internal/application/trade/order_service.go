package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// Paging defaults for the admin order listing
const (
	defaultOrderPageLimit = 20
	maxOrderPageLimit     = 100
)

const msgOrderForbidden = "Not authorized to view this order"

// OrderService handles checkout, payment and fulfilment
type OrderService struct {
	orderRepo      trade.OrderRepository
	productRepo    catalog.ProductRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for order events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder places an order for the user. Every line is priced from the
// catalog and its stock reserved; a failure releases the reservations made so far.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "No order items")
	}

	items := make([]trade.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product not found: %s", line.ProductID))
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if !product.IsActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("Product %s is no longer available", product.Name))
		}

		item, err := trade.NewOrderItem(product.ID, product.Name, product.PrimaryImageURL(), product.Price, line.Quantity, line.Size, line.Color)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	order, err := trade.NewOrder(userID, items, trade.ShippingAddress{
		Street:  req.ShippingAddress.Street,
		City:    req.ShippingAddress.City,
		State:   req.ShippingAddress.State,
		ZipCode: req.ShippingAddress.ZipCode,
		Country: req.ShippingAddress.Country,
	}, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reserveStock(ctx, order.Items)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.releaseStock(ctx, reserved)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.clearCart(ctx, userID)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("items", order.ItemCount()),
		zap.String("total", order.TotalPrice.StringFixed(2)))

	s.publish(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrder returns an order to its owner or an admin
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !order.IsOwnedBy(actor.UserID) {
		return nil, shared.NewDomainError("UNAUTHORIZED", msgOrderForbidden)
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// MyOrders returns the user's orders, newest first
func (s *OrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return ToOrderResponses(orders), nil
}

// ListOrders returns one page of all orders, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, req ListOrdersRequest) (*ListOrdersResult, error) {
	filter := trade.OrderFilter{Page: req.Page, Limit: req.Limit}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultOrderPageLimit
	}
	if filter.Limit > maxOrderPageLimit {
		filter.Limit = maxOrderPageLimit
	}
	if req.Status != "" {
		status := trade.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Invalid order status: "+req.Status)
		}
		filter.Status = &status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &ListOrdersResult{
		Orders: ToOrderResponses(orders),
		Page:   filter.Page,
		Pages:  shared.TotalPages(total, filter.Limit),
		Total:  total,
	}, nil
}

// PayOrder records the payment confirmation. Owner or admin only.
func (s *OrderService) PayOrder(ctx context.Context, actor Actor, id uuid.UUID, req PayOrderRequest) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !order.IsOwnedBy(actor.UserID) {
		return nil, shared.NewDomainError("UNAUTHORIZED", msgOrderForbidden)
	}

	if err := order.MarkPaid(trade.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order paid",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_id", req.ID))

	s.publish(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling returns the
// reserved stock to the catalog.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.UpdateStatus(trade.OrderStatus(status)); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if order.IsCancelled() {
		s.releaseStock(ctx, order.Items)
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", status))

	s.publish(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// Stats returns the admin dashboard summary
func (s *OrderService) Stats(ctx context.Context) (*OrderStatsResponse, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	byStatus := make(map[string]int64, len(trade.OrderStatuses))
	for _, st := range trade.OrderStatuses {
		byStatus[string(st)] = stats.StatusCounts[st]
	}

	return &OrderStatsResponse{
		TotalOrders:    stats.TotalOrders,
		PaidOrders:     stats.PaidOrders,
		TotalRevenue:   stats.TotalRevenue.Round(2).InexactFloat64(),
		OrdersByStatus: byStatus,
		TotalProducts:  totalProducts,
		TotalUsers:     totalUsers,
	}, nil
}

func (s *OrderService) findOrder(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

// reserveStock decrements stock line by line and returns the reserved lines.
// On failure the earlier reservations are released.
func (s *OrderService) reserveStock(ctx context.Context, items []trade.OrderItem) ([]trade.OrderItem, error) {
	reserved := make([]trade.OrderItem, 0, len(items))
	for _, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseStock(ctx, reserved)
			if errors.Is(err, shared.ErrInsufficientStock) {
				return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock for %s", item.Name))
			}
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product not found: %s", item.ProductID))
			}
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

func (s *OrderService) releaseStock(ctx context.Context, items []trade.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to release reserved stock",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// clearCart empties the buyer's cart. The order already exists, so failures
// are only logged.
func (s *OrderService) clearCart(ctx context.Context, userID uuid.UUID) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load user to clear cart", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	user.ClearCart()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Warn("Failed to clear cart after order", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, order); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}
