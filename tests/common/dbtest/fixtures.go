//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/tests/common/builder"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// inserts the coupon described by b and returns its generated id
func CreateTestCoupon(t *testing.T, db sqlc.DBTX, b *builder.CouponBuilder) int64 {
	t.Helper()

	id, err := sqlc.New().CreateCoupon(context.Background(), db, b.BuildCreateParams())
	require.NoError(t, err)
	return id
}

func CountIssuances(t *testing.T, db sqlc.DBTX, couponID int64) int {
	t.Helper()

	n, err := sqlc.New().CountCouponIssues(context.Background(), db, couponID)
	require.NoError(t, err)
	return int(n)
}

func IssuedQuantity(t *testing.T, db sqlc.DBTX, couponID int64) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT issued_quantity FROM coupons WHERE id = $1", couponID).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables; identities keep advancing so cached ids never collide
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
