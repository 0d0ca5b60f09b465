package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	"github.com/pratyek/grocery-app/internal/infra/events"
	"github.com/pratyek/grocery-app/internal/metrics"
	"github.com/pratyek/grocery-app/internal/notification"
	"github.com/pratyek/grocery-app/internal/report"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

// Notifier is satisfied by notification.Dispatcher and notification.Queue.
type Notifier interface {
	Notify(ctx context.Context, sc notification.StatusChange) bool
}

// Pairs allowed in strict mode. Same-to-same is always allowed.
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusInProgress, model.OrderStatusDelivered},
	model.OrderStatusInProgress: {model.OrderStatusDelivered},
}

func transitionAllowed(from, to model.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type UpdateStatusOutput struct {
	Order                 OrderOutput
	NotificationAttempted bool
}

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	users     repo.UserRepository
	notifier  Notifier
	publisher events.Publisher
	strict    bool
	now       func() time.Time
	log       zerolog.Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	users repo.UserRepository,
	notifier Notifier,
	publisher events.Publisher,
	strict bool,
	log zerolog.Logger,
) *AdminOrderUsecase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AdminOrderUsecase{
		tx:        tx,
		orders:    orders,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		strict:    strict,
		now:       time.Now,
		log:       log,
	}
}

// List is the admin order board: every owner, newest first.
func (u *AdminOrderUsecase) List(ctx context.Context, actor auth.Actor, in ListOrdersInput) ([]OrderOutput, error) {
	if !actor.IsAdmin() {
		return nil, NewAuthorizationError("Admin access required")
	}
	f, err := in.filter()
	if err != nil {
		return nil, err
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

// Export writes every order matching status as an xlsx workbook.
func (u *AdminOrderUsecase) Export(ctx context.Context, actor auth.Actor, status string, w io.Writer) error {
	if !actor.IsAdmin() {
		return NewAuthorizationError("Admin access required")
	}
	f, err := ListOrdersInput{Status: status}.filter()
	if err != nil {
		return err
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return NewInternalError(err)
	}
	if err := report.WriteOrdersXLSX(w, orders); err != nil {
		return NewInternalError(err)
	}
	return nil
}

// UpdateStatus writes the status and, when it actually changed, records an
// audit row, publishes an event and notifies the owner once.
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor auth.Actor, orderID int64, status string) (UpdateStatusOutput, error) {
	// role first, whatever the status value
	if !actor.IsAdmin() {
		return UpdateStatusOutput{}, NewAuthorizationError("Admin access required")
	}
	newStatus, ok := model.ParseOrderStatus(status)
	if !ok {
		return UpdateStatusOutput{}, NewValidationError("status", "Invalid status value")
	}
	if orderID <= 0 {
		return UpdateStatusOutput{}, NewNotFoundError("Order not found")
	}

	var (
		updated model.Order
		before  model.OrderStatus
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		before = o.Status
		if u.strict && !transitionAllowed(before, newStatus) {
			return NewValidationError("status", "Cannot change status from "+string(before)+" to "+string(newStatus))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			return err
		}

		if before != newStatus {
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actor.UserID,
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   auditJSON(map[string]string{"status": string(before)}),
				AfterJSON:    auditJSON(map[string]string{"status": string(newStatus)}),
				CreatedAt:    u.now(),
			}); err != nil {
				return err
			}
		}

		updated, err = r.Orders().FindByID(ctx, orderID)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return UpdateStatusOutput{}, NewNotFoundError("Order not found")
	}
	if ue, ok := AsError(err); ok {
		return UpdateStatusOutput{}, ue
	}
	if err != nil {
		return UpdateStatusOutput{}, NewInternalError(err)
	}

	out := UpdateStatusOutput{Order: toOrderOutput(updated)}
	if before == newStatus {
		return out, nil
	}

	metrics.OrderStatusUpdatesTotal.WithLabelValues(string(newStatus)).Inc()
	publishOrderEvent(ctx, u.publisher, u.log, events.TypeOrderStatusChanged, updated, u.now())
	u.log.Info().
		Int64("order_id", orderID).
		Str("from", string(before)).
		Str("to", string(newStatus)).
		Int64("actor_id", actor.UserID).
		Msg("order status changed")

	out.NotificationAttempted = u.notifyOwner(ctx, updated)
	return out, nil
}

// notifyOwner reports whether the notifier was invoked, not whether the
// mail went out.
func (u *AdminOrderUsecase) notifyOwner(ctx context.Context, o model.Order) bool {
	owner, err := u.users.FindByID(ctx, o.UserID)
	if err != nil {
		u.log.Warn().Err(err).Int64("user_id", o.UserID).Str("order_ref", o.OrderRef).Msg("owner lookup failed, skipping notification")
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		return false
	}
	if owner == nil || owner.Email == "" {
		u.log.Warn().Int64("user_id", o.UserID).Str("order_ref", o.OrderRef).Msg("owner has no e-mail, skipping notification")
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		return false
	}

	u.notifier.Notify(ctx, notification.StatusChange{
		Email:    owner.Email,
		Name:     owner.Username,
		OrderRef: o.OrderRef,
		Status:   string(o.Status),
	})
	return true
}
