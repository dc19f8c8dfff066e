package repository

import "context"

// 同じトランザクションに乗ったリポジトリ群
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Products() ProductRepository
	Users() UserRepository
	AuditLogs() AuditLogRepository
}

// fnがnilを返したときだけcommitする
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
