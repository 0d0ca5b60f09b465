package repository

import (
	"context"

	"gorm.io/gorm"

	repo "github.com/pratyek/grocery-app/internal/repository"
)

type txReposGorm struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	products  repo.ProductRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposGorm) Carts() repo.CartRepository         { return r.carts }
func (r *txReposGorm) Products() repo.ProductRepository   { return r.products }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// rebuild every repository on the tx handle
		r := &txReposGorm{
			orders:    NewOrderGormRepository(tx),
			carts:     NewCartGormRepository(tx),
			products:  NewProductGormRepository(tx),
			auditLogs: NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
