package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	"github.com/pratyek/grocery-app/internal/domain/orderref"
	"github.com/pratyek/grocery-app/internal/infra/events"
	"github.com/pratyek/grocery-app/internal/metrics"
	repo "github.com/pratyek/grocery-app/internal/repository"
	"github.com/pratyek/grocery-app/internal/validator"
)

const (
	createOrderAttempts = 3
	idempotencyTTL      = 24 * time.Hour
	maxIdempotencyKey   = 255
	maxListLimit        = 100
)

type OrderLineInput struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int64
}

type DeliveryDetails struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type CreateOrderInput struct {
	Lines          []OrderLineInput
	Delivery       DeliveryDetails
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderRef        string            `json:"orderId"`
	UserID          int64             `json:"userId"`
	Username        string            `json:"username"`
	Products        []OrderItemOutput `json:"products"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	Status          string            `json:"status"`
	DeliveryDetails DeliveryDetails   `json:"deliveryDetails"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}
	return OrderOutput{
		ID:          o.ID,
		OrderRef:    o.OrderRef,
		UserID:      o.UserID,
		Username:    o.Username,
		Products:    items,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		DeliveryDetails: DeliveryDetails{
			Address: o.DeliveryAddress,
			Phone:   o.DeliveryPhone,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type ListOrdersInput struct {
	Status string
	Limit  int
	Offset int
}

func (in ListOrdersInput) filter() (repo.OrderListFilter, error) {
	f := repo.OrderListFilter{Limit: in.Limit, Offset: in.Offset}
	if in.Status != "" {
		s, ok := model.ParseOrderStatus(in.Status)
		if !ok {
			return f, NewValidationError("status", "Invalid status value")
		}
		f.Status = string(s)
	}
	if in.Limit < 0 || in.Limit > maxListLimit {
		return f, NewValidationError("limit", fmt.Sprintf("limit must be between 0 and %d", maxListLimit))
	}
	if in.Offset < 0 {
		return f, NewValidationError("offset", "offset must be >= 0")
	}
	return f, nil
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	users     repo.UserRepository
	carts     CartService
	refs      orderref.Generator
	idem      repo.IdempotencyStore
	publisher events.Publisher
	now       func() time.Time
	log       zerolog.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	users repo.UserRepository,
	carts CartService,
	refs orderref.Generator,
	idem repo.IdempotencyStore,
	publisher events.Publisher,
	log zerolog.Logger,
) *OrderUsecase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderUsecase{
		tx:        tx,
		orders:    orders,
		users:     users,
		carts:     carts,
		refs:      refs,
		idem:      idem,
		publisher: publisher,
		now:       time.Now,
		log:       log,
	}
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, actor auth.Actor, in CreateOrderInput) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, NewAuthenticationError("authentication required")
	}

	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return OrderOutput{}, NewInternalError(err)
	}
	if user == nil {
		return OrderOutput{}, NewNotFoundError("User not found")
	}

	if field, err := validator.ValidateDelivery(in.Delivery.Address, in.Delivery.Phone); err != nil {
		return OrderOutput{}, NewValidationError(field, err.Error())
	}
	lines := make([]validator.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, validator.OrderLine{ProductID: l.ProductID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	if err := validator.ValidateOrderLines(lines); err != nil {
		return OrderOutput{}, NewValidationError("products", err.Error())
	}

	idemKey, err := u.acquireIdempotency(ctx, actor.UserID, in.IdempotencyKey)
	if err != nil {
		return OrderOutput{}, err
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(l.Quantity)))
		items = append(items, model.OrderItem{
			ProductID:           l.ProductID,
			ProductNameSnapshot: strings.TrimSpace(l.Name),
			UnitPriceSnapshot:   l.Price,
			Quantity:            l.Quantity,
		})
	}

	var order model.Order
	for attempt := 1; ; attempt++ {
		order = model.Order{
			OrderRef:        u.refs.Next(u.now()),
			UserID:          user.ID,
			Username:        user.Username,
			Status:          model.OrderStatusPending,
			TotalAmount:     total.Round(2),
			DeliveryAddress: strings.TrimSpace(in.Delivery.Address),
			DeliveryPhone:   strings.TrimSpace(in.Delivery.Phone),
			Items:           append([]model.OrderItem(nil), items...),
		}

		err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return r.Orders().Create(ctx, &order)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, repo.ErrConflict) || attempt == createOrderAttempts {
			u.releaseIdempotency(ctx, idemKey)
			return OrderOutput{}, NewInternalError(err)
		}
		u.log.Warn().Str("order_ref", order.OrderRef).Int("attempt", attempt).Msg("order reference collision, retrying")
	}

	metrics.OrdersCreatedTotal.Inc()
	u.publish(ctx, events.TypeOrderCreated, order)
	u.log.Info().
		Int64("order_id", order.ID).
		Str("order_ref", order.OrderRef).
		Int64("user_id", order.UserID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order created")

	return toOrderOutput(order), nil
}

type CheckoutInput struct {
	Delivery       DeliveryDetails
	IdempotencyKey string
}

// Checkout places an order from the owner's cart and then empties it.
func (u *OrderUsecase) Checkout(ctx context.Context, actor auth.Actor, owner CartOwner, in CheckoutInput) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, NewAuthenticationError("authentication required")
	}

	view, err := u.carts.Get(ctx, owner)
	if err != nil {
		return OrderOutput{}, err
	}
	if len(view.Items) == 0 {
		return OrderOutput{}, NewValidationError("cart", "Cart is empty")
	}

	lines := make([]OrderLineInput, 0, len(view.Items))
	for _, l := range view.Items {
		lines = append(lines, OrderLineInput{ProductID: l.ProductID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}

	out, err := u.CreateOrder(ctx, actor, CreateOrderInput{
		Lines:          lines,
		Delivery:       in.Delivery,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if _, err := u.carts.Clear(ctx, owner); err != nil {
		u.log.Error().Err(err).Str("order_ref", out.OrderRef).Msg("clear cart after checkout failed")
	}
	return out, nil
}

// ListOrders returns the actor's own orders, or every order for an admin.
func (u *OrderUsecase) ListOrders(ctx context.Context, actor auth.Actor, in ListOrdersInput) ([]OrderOutput, error) {
	if !actor.Authenticated() {
		return nil, NewAuthenticationError("authentication required")
	}
	f, err := in.filter()
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		uid := actor.UserID
		f.UserID = &uid
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return nil, NewInternalError(err)
	}

	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o))
	}
	return out, nil
}

// acquireIdempotency returns the stored key, or "" when the request carries none.
func (u *OrderUsecase) acquireIdempotency(ctx context.Context, userID int64, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || u.idem == nil {
		return "", nil
	}
	if len(key) > maxIdempotencyKey {
		return "", NewValidationError("X-Idempotency-Key", "idempotency key too long")
	}

	stored := fmt.Sprintf("order:%d:%s", userID, key)
	ok, err := u.idem.Acquire(ctx, stored, idempotencyTTL)
	if err != nil {
		return "", NewInternalError(err)
	}
	if !ok {
		return "", NewConflictError("X-Idempotency-Key", "Order already submitted")
	}
	return stored, nil
}

// releaseIdempotency frees a key whose order was never written.
func (u *OrderUsecase) releaseIdempotency(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := u.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		u.log.Warn().Err(err).Str("key", key).Msg("idempotency key release failed")
	}
}

func (u *OrderUsecase) publish(ctx context.Context, typ string, o model.Order) {
	publishOrderEvent(ctx, u.publisher, u.log, typ, o, u.now())
}

func publishOrderEvent(ctx context.Context, p events.Publisher, log zerolog.Logger, typ string, o model.Order, at time.Time) {
	err := p.Publish(ctx, events.Event{
		Type:       typ,
		OrderID:    o.ID,
		OrderRef:   o.OrderRef,
		UserID:     o.UserID,
		Status:     string(o.Status),
		Total:      o.TotalAmount,
		OccurredAt: at.UTC(),
	})
	if err != nil {
		log.Debug().Err(err).Str("type", typ).Str("order_ref", o.OrderRef).Msg("order event not fully published")
	}
}
