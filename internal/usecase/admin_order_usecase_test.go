package usecase

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	"github.com/pratyek/grocery-app/internal/infra/events"
	"github.com/pratyek/grocery-app/internal/notification"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

type adminFixture struct {
	tx        *txManagerMock
	orders    *orderRepoMock
	audit     *auditRepoMock
	users     *userRepoMock
	notifier  *notifierMock
	publisher *publisherMock
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		orders:    new(orderRepoMock),
		audit:     new(auditRepoMock),
		users:     new(userRepoMock),
		notifier:  new(notifierMock),
		publisher: new(publisherMock),
	}
	f.tx = &txManagerMock{repos: &txReposMock{orders: f.orders, auditLogs: f.audit}}
	f.tx.On("WithinTx", mock.Anything).Return()
	return f
}

func (f *adminFixture) usecase(strict bool) *AdminOrderUsecase {
	return NewAdminOrderUsecase(f.tx, f.orders, f.users, f.notifier, f.publisher, strict, zerolog.Nop())
}

var admin = auth.Actor{UserID: 1, Role: model.RoleAdmin}

func orderWithStatus(s model.OrderStatus) model.Order {
	return model.Order{
		ID:          42,
		OrderRef:    "ORD-20240301-AAAAAAAAAAAA",
		UserID:      7,
		Username:    "asha",
		Status:      s,
		TotalAmount: decimal.NewFromInt(400),
	}
}

// expectStatusWrite returns from on the locked read and to on the re-read
// after the write.
func (f *adminFixture) expectStatusWrite(from, to model.OrderStatus) {
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(42)).Return(orderWithStatus(from), nil).Once()
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(orderWithStatus(to), nil).Once()
	f.orders.On("UpdateStatus", mock.Anything, int64(42), to).Return(nil).Once()
}

func TestUpdateStatus_NonAdminRejectedForEveryValue(t *testing.T) {
	f := newAdminFixture()
	uc := f.usecase(false)

	for _, s := range []string{"Pending", "In Progress", "Delivered", "Shipped", ""} {
		_, err := uc.UpdateStatus(context.Background(), buyer, 42, s)
		assert.Equal(t, KindAuthorization, KindOf(err), s)
	}
	f.orders.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newAdminFixture()

	_, err := f.usecase(false).UpdateStatus(context.Background(), admin, 42, "Shipped")
	ue, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, ue.Kind)
	assert.Equal(t, "status", ue.Field)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	f := newAdminFixture()
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	_, err := f.usecase(false).UpdateStatus(context.Background(), admin, 99, "Delivered")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateStatus_SameStatusDoesNotNotify(t *testing.T) {
	f := newAdminFixture()
	f.expectStatusWrite(model.OrderStatusPending, model.OrderStatusPending)

	out, err := f.usecase(false).UpdateStatus(context.Background(), admin, 42, "Pending")
	require.NoError(t, err)

	assert.False(t, out.NotificationAttempted)
	assert.Equal(t, "Pending", out.Order.Status)
	f.orders.AssertCalled(t, "UpdateStatus", mock.Anything, int64(42), model.OrderStatusPending)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUpdateStatus_ChangeNotifiesOnce(t *testing.T) {
	f := newAdminFixture()
	f.expectStatusWrite(model.OrderStatusPending, model.OrderStatusInProgress)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == 42 &&
			l.ActorUserID == 1 &&
			l.BeforeJSON == `{"status":"Pending"}` &&
			l.AfterJSON == `{"status":"In Progress"}`
	})).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.TypeOrderStatusChanged && e.Status == "In Progress"
	})).Return(nil).Once()
	f.users.On("FindByID", mock.Anything, int64(7)).Return(buyerUser(), nil)
	f.notifier.On("Notify", mock.Anything, notification.StatusChange{
		Email:    "asha@example.com",
		Name:     "asha",
		OrderRef: "ORD-20240301-AAAAAAAAAAAA",
		Status:   "In Progress",
	}).Return(false).Once()

	out, err := f.usecase(false).UpdateStatus(context.Background(), admin, 42, "In Progress")
	require.NoError(t, err)

	// attempted even though delivery failed
	assert.True(t, out.NotificationAttempted)
	assert.Equal(t, "In Progress", out.Order.Status)
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	f.audit.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestUpdateStatus_OwnerWithoutEmailSkipsNotification(t *testing.T) {
	f := newAdminFixture()
	f.expectStatusWrite(model.OrderStatusInProgress, model.OrderStatusDelivered)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Username: "asha"}, nil)

	out, err := f.usecase(false).UpdateStatus(context.Background(), admin, 42, "Delivered")
	require.NoError(t, err)
	assert.False(t, out.NotificationAttempted)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestUpdateStatus_BackwardsAllowedByDefault(t *testing.T) {
	f := newAdminFixture()
	f.expectStatusWrite(model.OrderStatusDelivered, model.OrderStatusPending)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).Return(buyerUser(), nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(true)

	out, err := f.usecase(false).UpdateStatus(context.Background(), admin, 42, "Pending")
	require.NoError(t, err)
	assert.True(t, out.NotificationAttempted)
}

func TestUpdateStatus_StrictRejectsBackwards(t *testing.T) {
	f := newAdminFixture()
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(42)).Return(orderWithStatus(model.OrderStatusDelivered), nil)

	_, err := f.usecase(true).UpdateStatus(context.Background(), admin, 42, "Pending")
	ue, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, ue.Kind)
	assert.Equal(t, "Cannot change status from Delivered to Pending", ue.Message)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateStatus_StrictChecksStatusReadInsideTx(t *testing.T) {
	f := newAdminFixture()
	// the only status read is the locked one under the transaction
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(42)).Return(orderWithStatus(model.OrderStatusDelivered), nil).Once()

	_, err := f.usecase(true).UpdateStatus(context.Background(), admin, 42, "In Progress")
	assert.Equal(t, KindValidation, KindOf(err))
	f.tx.AssertCalled(t, "WithinTx", mock.Anything)
	f.orders.AssertNumberOfCalls(t, "FindByIDForUpdate", 1)
	f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_StrictAllowsForward(t *testing.T) {
	f := newAdminFixture()
	f.expectStatusWrite(model.OrderStatusPending, model.OrderStatusDelivered)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(7)).Return(buyerUser(), nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(true)

	out, err := f.usecase(true).UpdateStatus(context.Background(), admin, 42, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, "Delivered", out.Order.Status)
}

func TestTransitionAllowed(t *testing.T) {
	p, ip, d := model.OrderStatusPending, model.OrderStatusInProgress, model.OrderStatusDelivered

	assert.True(t, transitionAllowed(p, ip))
	assert.True(t, transitionAllowed(p, d))
	assert.True(t, transitionAllowed(ip, d))
	assert.True(t, transitionAllowed(d, d))
	assert.False(t, transitionAllowed(ip, p))
	assert.False(t, transitionAllowed(d, ip))
}

func TestAdminList_AndExport(t *testing.T) {
	f := newAdminFixture()
	uc := f.usecase(false)

	_, err := uc.List(context.Background(), buyer, ListOrdersInput{})
	assert.Equal(t, KindAuthorization, KindOf(err))

	f.orders.On("List", mock.Anything, repo.OrderListFilter{}).Return([]model.Order{orderWithStatus(model.OrderStatusPending)}, nil)

	out, err := uc.List(context.Background(), admin, ListOrdersInput{})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	var buf bytes.Buffer
	require.NoError(t, uc.Export(context.Background(), admin, "", &buf))
	assert.NotZero(t, buf.Len())

	assert.Equal(t, KindAuthorization, KindOf(uc.Export(context.Background(), buyer, "", &buf)))
}
