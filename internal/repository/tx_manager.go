package repository

import "context"

// Repositories bound to one transaction.
type TxRepos interface {
	Orders() OrderRepository
	Carts() CartRepository
	Products() ProductRepository
	AuditLogs() AuditLogRepository
}

// Hides begin/commit/rollback from usecases. fn returning an error rolls back.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
