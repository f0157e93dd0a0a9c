package storeinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smart-task-tracker/internal/usecase/repository"
)

// ストアドライバ名
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options は Open に渡す接続設定。
type Options struct {
	Driver  string
	DSN     string
	Timeout time.Duration
}

// Migrator はスキーマを適用できるストア。
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Open は Driver に応じたストアを開く。
func Open(ctx context.Context, opts Options) (repository.Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, opts.DSN, opts.Timeout)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", opts.Driver)
	}
}

// Migrate は s が Migrator であればスキーマを適用する。メモリストアでは何もしない。
func Migrate(ctx context.Context, s repository.Store) error {
	m, ok := s.(Migrator)
	if !ok {
		return nil
	}
	return m.Migrate(ctx)
}

type boundFunc func(context.Context) (context.Context, context.CancelFunc)

// withStoreTimeout は d が正のときだけ期限付きのコンテキストを返す。
func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// noTimeout はトランザクション内で使う。期限は Atomic 側で一度だけ設定する。
func noTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}

// expectAffected は 1 行も更新されなかった場合に notFound を返す。
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// nullIfEmpty は空文字を NULL として書き込む。
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
