//go:build integration
// +build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	storeinfra "smart-task-tracker/internal/infrastructure/store"
)

// TestPool は InitTestDB で初期化される。
// 同じパッケージの統合テストで 1 つのプールを共有する。
var TestPool *pgxpool.Pool

// SetupTestDB は統合テスト用のプールを返す。
// TestMain で初期化されていなければ即座に失敗する。
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if TestPool == nil {
		t.Fatalf("TestPool is nil: ensure TestMain initialized it (go test -tags=integration ./... with DB_TEST_DSN)")
	}
	return TestPool
}

// ResetTables は tasks と projects を空にする。
func ResetTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	if _, err := db.Exec(context.Background(), "TRUNCATE TABLE tasks, projects"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// WaitForDB はデータベースが接続可能になるまで待つ。
func WaitForDB(ctx context.Context, dsn string, timeout time.Duration) (*pgxpool.Pool, error) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = pool.Ping(pctx)
			cancel()
			if err == nil {
				return pool, nil
			}
			pool.Close()
		}
		time.Sleep(300 * time.Millisecond)
	}
	return nil, fmt.Errorf("timeout waiting for db")
}

// InitTestDB は DB_TEST_DSN に接続してスキーマを適用し、m を実行する。
// TestMain から os.Exit(testutil.InitTestDB(m)) の形で呼ぶ。
func InitTestDB(m *testing.M) int {
	dsn := os.Getenv("DB_TEST_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_TEST_DSN is required")
		return 2
	}

	ctx := context.Background()

	pool, err := WaitForDB(ctx, dsn, 30*time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db not ready:", err)
		return 1
	}
	TestPool = pool

	if err := storeinfra.NewPostgresStore(pool, 0).Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "apply schema failed:", err)
		TestPool.Close()
		return 1
	}

	code := m.Run()

	TestPool.Close()
	return code
}
