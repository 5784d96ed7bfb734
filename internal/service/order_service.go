package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bistro/internal/errors"
	"bistro/internal/events"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// OrderLine is one normalized order line from a client request.
type OrderLine struct {
	MenuItemID uint
	Quantity   int
}

// CreateOrderInput holds a normalized order request.
type CreateOrderInput struct {
	// UserID is the owner: the authenticated caller or, without auth, the body's userId.
	UserID    uint
	Admin     bool
	AddressID *uint
	Items     []OrderLine
}

// OrderService handles order placement, tracking and administration.
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uint, status string) (*model.Order, error)
	GetOrder(ctx context.Context, actor Actor, orderID uint) (*model.Order, error)
	ListMyOrders(ctx context.Context, actor Actor) ([]model.Order, error)
	ListUserOrders(ctx context.Context, actor Actor, userID uint) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	DeleteOrder(ctx context.Context, orderID uint) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	menuRepo    repository.MenuRepository
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
	log         *zap.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuRepository,
	addressRepo repository.AddressRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	log *zap.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{
		orderRepo:   orderRepo,
		menuRepo:    menuRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		log:         log,
	}
}

// ClampQuantity bounds q into [MinItemQuantity, MaxItemQuantity].
func ClampQuantity(q int) int {
	if q < model.MinItemQuantity {
		return model.MinItemQuantity
	}
	if q > model.MaxItemQuantity {
		return model.MaxItemQuantity
	}
	return q
}

// CreateOrder validates every referenced menu item, then writes the order
// header and all lines in one transaction.
func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if in.UserID == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "user identity is required")
	}
	if len(in.Items) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "order must contain at least one item")
	}

	if _, err := s.userRepo.FindByID(ctx, in.UserID); err != nil {
		return nil, lookupErr(err, "user")
	}

	ids := make([]uint, 0, len(in.Items))
	seen := make(map[uint]struct{}, len(in.Items))
	for _, line := range in.Items {
		if line.MenuItemID == 0 {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "menuItemId must be a positive integer")
		}
		if _, dup := seen[line.MenuItemID]; dup {
			continue
		}
		seen[line.MenuItemID] = struct{}{}
		ids = append(ids, line.MenuItemID)
	}

	found, err := s.menuRepo.FindItemsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	prices := make(map[uint]decimal.Decimal, len(found))
	for _, item := range found {
		prices[item.ID] = item.Price
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &errors.InvalidMenuItemsError{MissingIDs: missing}
	}

	if in.AddressID != nil {
		addr, err := s.addressRepo.FindByID(ctx, *in.AddressID)
		if err != nil {
			return nil, lookupErr(err, "address")
		}
		if addr.UserID != in.UserID && !in.Admin {
			return nil, errors.Wrap(errors.ErrNotFound, "address not found")
		}
	}

	order := &model.Order{
		UserID:    in.UserID,
		AddressID: in.AddressID,
		Status:    model.OrderStatusPending,
		Items:     make([]model.OrderItem, 0, len(in.Items)),
	}
	total := decimal.Zero
	for _, line := range in.Items {
		qty := ClampQuantity(line.Quantity)
		price := prices[line.MenuItemID]
		order.Items = append(order.Items, model.OrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   qty,
			UnitPrice:  price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	order.Total = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	created, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	s.log.Info("order created",
		zap.Uint("order_id", created.ID),
		zap.Uint("user_id", created.UserID),
		zap.Int("lines", len(created.Items)),
		zap.String("total", created.Total.StringFixed(2)))
	s.publish(ctx, events.OrderCreated, events.NewOrderEvent(created, ""))

	return created, nil
}

// UpdateStatus sets any allowed status; there is no transition ordering.
func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, orderID uint, status string) (*model.Order, error) {
	target := model.OrderStatus(status)
	if !target.Valid() {
		return nil, &errors.InvalidStatusError{Status: status, Allowed: model.AllowedStatusStrings()}
	}

	order, prev, err := s.orderRepo.UpdateStatus(ctx, orderID, target, actor.UserID)
	if err != nil {
		return nil, lookupErr(err, "order")
	}

	s.log.Info("order status updated",
		zap.Uint("order_id", orderID),
		zap.String("from", string(prev)),
		zap.String("to", string(target)),
		zap.Uint("changed_by", actor.UserID))
	s.publish(ctx, events.OrderStatusChanged, events.NewOrderEvent(order, prev))

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	if !actor.Owns(order.UserID) {
		return nil, errors.Wrap(errors.ErrNotFound, "order not found")
	}
	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, actor Actor) ([]model.Order, error) {
	if actor.UserID == 0 {
		return nil, errors.ErrUnauthorized
	}
	orders, err := s.orderRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListUserOrders is allowed for the user themself or an admin.
func (s *orderService) ListUserOrders(ctx context.Context, actor Actor, userID uint) ([]model.Order, error) {
	if !actor.Owns(userID) {
		return nil, errors.Wrap(errors.ErrForbidden, "you can only view your own orders")
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return lookupErr(err, "order")
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return lookupErr(err, "order")
	}
	s.log.Info("order deleted", zap.Uint("order_id", orderID))
	s.publish(ctx, events.OrderDeleted, events.NewOrderEvent(order, ""))
	return nil
}

func (s *orderService) publish(ctx context.Context, key string, ev events.OrderEvent) {
	if err := s.publisher.Publish(ctx, key, ev); err != nil {
		s.log.Warn("publish order event failed",
			zap.String("routing_key", key),
			zap.Uint("order_id", ev.OrderID),
			zap.Error(err))
	}
}
