package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/domain/cart"
	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

// CartOwner identifies a cart. The session variant reads SessionID, the
// server variant reads UserID.
type CartOwner struct {
	SessionID string
	UserID    int64
}

type CartView struct {
	Items []cart.Line     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

func newCartView(c *cart.Cart) CartView {
	return CartView{Items: c.Lines(), Total: c.Total(), Count: c.Count()}
}

// CartService is implemented by SessionCartService and PersistentCartService.
// Only one of them is wired at start-up.
type CartService interface {
	Get(ctx context.Context, owner CartOwner) (CartView, error)
	AddItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error)
	RemoveItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error)
	ChangeQuantity(ctx context.Context, owner CartOwner, productID int64, delta int64) (CartView, error)
	Clear(ctx context.Context, owner CartOwner) (CartView, error)
}

func findProduct(ctx context.Context, products repo.ProductRepository, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewValidationError("productId", "invalid product id")
	}
	p, err := products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewNotFoundError("Product not found")
	}
	if err != nil {
		return model.Product{}, NewInternalError(err)
	}
	return p, nil
}

// ---- session variant

// SessionCartService serializes load, mutate and save per session within
// one process. Across replicas sharing Redis the last write wins.
type SessionCartService struct {
	store    repo.CartSessionStore
	products repo.ProductRepository
	locks    keyedMutex
}

func NewSessionCartService(store repo.CartSessionStore, products repo.ProductRepository) *SessionCartService {
	return &SessionCartService{store: store, products: products}
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (s *SessionCartService) load(ctx context.Context, owner CartOwner) (*cart.Cart, error) {
	if strings.TrimSpace(owner.SessionID) == "" {
		return nil, NewValidationError("cart_sid", "cart session is missing")
	}
	lines, err := s.store.Load(ctx, owner.SessionID)
	if err != nil {
		return nil, NewInternalError(err)
	}
	return cart.New(lines...), nil
}

func (s *SessionCartService) save(ctx context.Context, owner CartOwner, c *cart.Cart) (CartView, error) {
	if err := s.store.Save(ctx, owner.SessionID, c.Lines()); err != nil {
		return CartView{}, NewInternalError(err)
	}
	return newCartView(c), nil
}

func (s *SessionCartService) Get(ctx context.Context, owner CartOwner) (CartView, error) {
	c, err := s.load(ctx, owner)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c), nil
}

func (s *SessionCartService) AddItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error) {
	defer s.locks.lock(owner.SessionID)()

	c, err := s.load(ctx, owner)
	if err != nil {
		return CartView{}, err
	}
	p, err := findProduct(ctx, s.products, productID)
	if err != nil {
		return CartView{}, err
	}
	c.AddItem(p)
	return s.save(ctx, owner, c)
}

func (s *SessionCartService) RemoveItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error) {
	defer s.locks.lock(owner.SessionID)()

	c, err := s.load(ctx, owner)
	if err != nil {
		return CartView{}, err
	}
	c.RemoveItem(productID)
	return s.save(ctx, owner, c)
}

func (s *SessionCartService) ChangeQuantity(ctx context.Context, owner CartOwner, productID int64, delta int64) (CartView, error) {
	defer s.locks.lock(owner.SessionID)()

	c, err := s.load(ctx, owner)
	if err != nil {
		return CartView{}, err
	}
	c.ChangeQuantity(productID, delta)
	return s.save(ctx, owner, c)
}

func (s *SessionCartService) Clear(ctx context.Context, owner CartOwner) (CartView, error) {
	if strings.TrimSpace(owner.SessionID) == "" {
		return CartView{}, NewValidationError("cart_sid", "cart session is missing")
	}
	defer s.locks.lock(owner.SessionID)()

	if err := s.store.Delete(ctx, owner.SessionID); err != nil {
		return CartView{}, NewInternalError(err)
	}
	return newCartView(cart.New()), nil
}

// ---- server variant

type PersistentCartService struct {
	tx repo.TransactionManager
}

func NewPersistentCartService(tx repo.TransactionManager) *PersistentCartService {
	return &PersistentCartService{tx: tx}
}

// mutate runs fn on the locked cart and stores the result. A nil fn only reads.
func (s *PersistentCartService) mutate(ctx context.Context, owner CartOwner, fn func(r repo.TxRepos, c *cart.Cart) error) (CartView, error) {
	if owner.UserID <= 0 {
		return CartView{}, NewAuthenticationError("authentication required")
	}

	var view CartView
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		row, err := r.Carts().GetOrCreateByUserID(ctx, owner.UserID)
		if err != nil {
			return NewInternalError(err)
		}
		items, err := r.Carts().ListItems(ctx, row.ID)
		if err != nil {
			return NewInternalError(err)
		}

		c := cart.New(linesFromItems(items)...)
		if fn != nil {
			if err := fn(r, c); err != nil {
				return err
			}
			if err := r.Carts().ReplaceItems(ctx, row.ID, itemsFromLines(c.Lines())); err != nil {
				return NewInternalError(err)
			}
		}
		view = newCartView(c)
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return CartView{}, err
		}
		return CartView{}, NewInternalError(err)
	}
	return view, nil
}

func (s *PersistentCartService) Get(ctx context.Context, owner CartOwner) (CartView, error) {
	return s.mutate(ctx, owner, nil)
}

func (s *PersistentCartService) AddItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error) {
	return s.mutate(ctx, owner, func(r repo.TxRepos, c *cart.Cart) error {
		p, err := findProduct(ctx, r.Products(), productID)
		if err != nil {
			return err
		}
		c.AddItem(p)
		return nil
	})
}

func (s *PersistentCartService) RemoveItem(ctx context.Context, owner CartOwner, productID int64) (CartView, error) {
	return s.mutate(ctx, owner, func(_ repo.TxRepos, c *cart.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

func (s *PersistentCartService) ChangeQuantity(ctx context.Context, owner CartOwner, productID int64, delta int64) (CartView, error) {
	return s.mutate(ctx, owner, func(_ repo.TxRepos, c *cart.Cart) error {
		c.ChangeQuantity(productID, delta)
		return nil
	})
}

func (s *PersistentCartService) Clear(ctx context.Context, owner CartOwner) (CartView, error) {
	return s.mutate(ctx, owner, func(_ repo.TxRepos, c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

func linesFromItems(items []model.CartItem) []cart.Line {
	lines := make([]cart.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, cart.Line{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Image:     it.ImageSnapshot,
			Quantity:  it.Quantity,
		})
	}
	return lines
}

func itemsFromLines(lines []cart.Line) []model.CartItem {
	items := make([]model.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.CartItem{
			ProductID:           l.ProductID,
			ProductNameSnapshot: l.Name,
			UnitPriceSnapshot:   l.Price,
			ImageSnapshot:       l.Image,
			Quantity:            l.Quantity,
		})
	}
	return items
}
