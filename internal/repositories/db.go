package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier returns tx when set and db otherwise.
func querier(db *sql.DB, tx *sql.Tx) DBTX {
	if tx != nil {
		return tx
	}
	return db
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
