package repositories

import (
	"context"
	"database/sql"
)

// SQLExecutor позволяет выполнять запросы как через *sql.DB, так и через *sql.Tx.
// Методы репозиториев, участвующие в транзакциях сервисного слоя, принимают его явно.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
