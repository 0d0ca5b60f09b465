package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pratyek/grocery-app/internal/domain/cart"
	"github.com/pratyek/grocery-app/internal/domain/model"
	"github.com/pratyek/grocery-app/internal/infra/events"
	"github.com/pratyek/grocery-app/internal/notification"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

// txManagerMock runs fn directly on fixed repos.
type txManagerMock struct {
	mock.Mock
	repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.repos)
}

type txReposMock struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	products  repo.ProductRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposMock) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposMock) Carts() repo.CartRepository         { return r.carts }
func (r *txReposMock) Products() repo.ProductRepository   { return r.products }
func (r *txReposMock) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).([]model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil {
		order.ID = 100
		order.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	}
	return args.Error(0)
}

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *cartRepoMock) ReplaceItems(ctx context.Context, cartID int64, items []model.CartItem) error {
	args := m.Called(ctx, cartID, items)
	return args.Error(0)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	l, _ := args.Get(0).([]model.AuditLog)
	return l, args.Error(1)
}

type sessionStoreMock struct{ mock.Mock }

func (m *sessionStoreMock) Load(ctx context.Context, sid string) ([]cart.Line, error) {
	args := m.Called(ctx, sid)
	l, _ := args.Get(0).([]cart.Line)
	return l, args.Error(1)
}

func (m *sessionStoreMock) Save(ctx context.Context, sid string, lines []cart.Line) error {
	args := m.Called(ctx, sid, lines)
	return args.Error(0)
}

func (m *sessionStoreMock) Delete(ctx context.Context, sid string) error {
	args := m.Called(ctx, sid)
	return args.Error(0)
}

type idempotencyMock struct{ mock.Mock }

func (m *idempotencyMock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *idempotencyMock) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type notifierMock struct{ mock.Mock }

func (m *notifierMock) Notify(ctx context.Context, sc notification.StatusChange) bool {
	args := m.Called(ctx, sc)
	return args.Bool(0)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type cartServiceMock struct{ mock.Mock }

func (m *cartServiceMock) view(args mock.Arguments) (CartView, error) {
	v, _ := args.Get(0).(CartView)
	return v, args.Error(1)
}

func (m *cartServiceMock) Get(ctx context.Context, owner CartOwner) (CartView, error) {
	return m.view(m.Called(ctx, owner))
}

func (m *cartServiceMock) AddItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error) {
	return m.view(m.Called(ctx, owner, productID))
}

func (m *cartServiceMock) RemoveItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error) {
	return m.view(m.Called(ctx, owner, productID))
}

func (m *cartServiceMock) ChangeQuantity(ctx context.Context, owner CartOwner, productID int64, delta int64) (CartView, error) {
	return m.view(m.Called(ctx, owner, productID, delta))
}

func (m *cartServiceMock) Clear(ctx context.Context, owner CartOwner) (CartView, error) {
	return m.view(m.Called(ctx, owner))
}

type hasherMock struct{ mock.Mock }

func (m *hasherMock) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *hasherMock) Verify(plain string, hashed string) bool {
	args := m.Called(plain, hashed)
	return args.Bool(0)
}

type tokenIssuerMock struct{ mock.Mock }

func (m *tokenIssuerMock) Issue(user model.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// seqRefs hands out fixed references in order.
type seqRefs struct {
	refs []string
	i    int
}

func (g *seqRefs) Next(time.Time) string {
	r := g.refs[g.i%len(g.refs)]
	g.i++
	return r
}
