package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"coupon-issuer/internal/infra/readstore"
	"coupon-issuer/internal/infra/repository"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/pkg/pgconv"
	"coupon-issuer/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const setLockTimeout = `SELECT set_config('lock_timeout', $1, true)`

const defaultBackoffBase = 50 * time.Millisecond

type PostgresUoW struct {
	pool        *pgxpool.Pool
	q           *sqlc.Queries
	maxRetries  int
	lockTimeout time.Duration
	backoffBase time.Duration
}

func NewPostgresUoW(pool *pgxpool.Pool, q *sqlc.Queries, cfg config.IssueConfig) shared.UnitOfWork {
	base := cfg.TxBackoffBase
	if base <= 0 {
		base = defaultBackoffBase
	}
	return &PostgresUoW{
		pool:        pool,
		q:           q,
		maxRetries:  cfg.TxMaxRetries,
		lockTimeout: cfg.TxLockTimeout,
		backoffBase: base,
	}
}

// ReadCommitted is enough: the coupon row lock serializes issuers of the same coupon.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{uow: u, dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, shared.ErrTransactionBegin)
		}

		err = u.applyLockTimeout(ctx, pgxTx)
		if err == nil {
			err = fn(ctx, &pgTx{dbtx: pgxTx, uow: u})
		}
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, shared.ErrTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !isRetryableError(err) {
			return err
		}
		if attempt == u.maxRetries {
			slog.Error("transaction failed after max retries",
				"attempts", attempt+1,
				"error", err.Error())
			return errs.Mark(err, shared.ErrMaxRetriesExceeded)
		}

		waitTime := calculateBackoff(attempt, u.backoffBase)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return shared.ErrMaxRetriesExceeded
}

func (u *PostgresUoW) applyLockTimeout(ctx context.Context, tx pgx.Tx) error {
	if u.lockTimeout <= 0 {
		return nil
	}
	ms := strconv.FormatInt(u.lockTimeout.Milliseconds(), 10) + "ms"
	if _, err := tx.Exec(ctx, setLockTimeout, ms); err != nil {
		return errs.Wrap(err, "failed to set lock_timeout")
	}
	return nil
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- high bit masked above
	return int64(uval) % n
}

// Lock wait timeouts are retried like serialization failures; the row is only briefly held.
func isRetryableError(err error) bool {
	return pgconv.HasCode(err,
		pgconv.CodeSerializationFailure,
		pgconv.CodeDeadlockDetected,
		pgconv.CodeLockNotAvailable,
	)
}

type pgTx struct {
	dbtx sqlc.DBTX
	uow  *PostgresUoW

	// Lazy-initialized repositories
	couponRepo   shared.CouponRepository
	issuanceRepo shared.IssuanceRepository
}

func (t *pgTx) Coupons() shared.CouponRepository {
	if t.couponRepo == nil {
		t.couponRepo = repository.NewCouponRepository(t.uow.q, t.dbtx)
	}
	return t.couponRepo
}

func (t *pgTx) Issuances() shared.IssuanceRepository {
	if t.issuanceRepo == nil {
		t.issuanceRepo = repository.NewCouponIssueRepository(t.uow.q, t.dbtx)
	}
	return t.issuanceRepo
}

type commandReads struct {
	uow  *PostgresUoW
	dbtx sqlc.DBTX

	couponStore *readstore.CouponReadStore
}

func (r *commandReads) CouponByID(ctx context.Context, id int64) (*shared.CouponSnapshot, error) {
	if r.couponStore == nil {
		r.couponStore = readstore.NewCouponReadStore(r.uow.q, r.dbtx)
	}
	return r.couponStore.FindByID(ctx, id)
}
