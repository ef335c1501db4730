//go:build unit

package uowtest

import (
	"context"
	"sort"
	"sync"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgconn"
)

type issuanceKey struct {
	couponID int64
	userID   int64
}

// MemoryUoW is an in-memory UnitOfWork. Transactions run one at a time, which is
// what the coupon row lock gives the real store for a single coupon. Writes are
// staged and only applied when fn succeeds.
type MemoryUoW struct {
	txMu sync.Mutex

	mu        sync.Mutex
	coupons   map[int64]coupon.Params
	issuances map[issuanceKey]*coupon.Issuance
	nextID    int64

	maxRetries int
	// Conflicts makes the next n transaction attempts fail with a serialization failure.
	Conflicts int
	// ForceUniqueViolation makes issuance inserts fail as if a concurrent commit won.
	ForceUniqueViolation bool
	// AfterCommit runs after a successful commit, before Within returns.
	AfterCommit func()
	// Attempts counts transaction attempts.
	Attempts int
}

func NewMemoryUoW(maxRetries int) *MemoryUoW {
	return &MemoryUoW{
		coupons:    map[int64]coupon.Params{},
		issuances:  map[issuanceKey]*coupon.Issuance{},
		maxRetries: maxRetries,
	}
}

func (u *MemoryUoW) PutCoupon(c *coupon.Coupon) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.coupons[c.ID()] = coupon.Params{
		ID:                 c.ID(),
		Title:              c.Title(),
		CouponType:         c.Type().String(),
		TotalQuantity:      c.TotalQuantity(),
		IssuedQuantity:     c.IssuedQuantity(),
		DiscountAmount:     c.Discount().Amount(),
		MinAvailableAmount: c.Discount().MinAvailableAmount(),
		DateIssueStart:     c.Window().Start(),
		DateIssueEnd:       c.Window().End(),
		CreatedAt:          c.CreatedAt(),
		UpdatedAt:          c.UpdatedAt(),
	}
}

// PutCouponParams stores p without domain validation, like a hand-edited row.
func (u *MemoryUoW) PutCouponParams(p coupon.Params) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.coupons[p.ID] = p
}

func (u *MemoryUoW) IssuedQuantity(couponID int64) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.coupons[couponID].IssuedQuantity
}

func (u *MemoryUoW) IssuanceCount(couponID int64) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for k := range u.issuances {
		if k.couponID == couponID {
			n++
		}
	}
	return n
}

// IssuedUsers returns user ids in insertion order.
func (u *MemoryUoW) IssuedUsers(couponID int64) []int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	type rec struct {
		id     int64
		userID int64
	}
	var recs []rec
	for k, v := range u.issuances {
		if k.couponID == couponID {
			recs = append(recs, rec{id: v.ID(), userID: k.userID})
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })
	users := make([]int64, len(recs))
	for i, r := range recs {
		users[i] = r.userID
	}
	return users
}

func (u *MemoryUoW) HasIssuance(couponID, userID int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.issuances[issuanceKey{couponID: couponID, userID: userID}]
	return ok
}

func (u *MemoryUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()

	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		u.mu.Lock()
		u.Attempts++
		conflict := u.Conflicts > 0
		if conflict {
			u.Conflicts--
		}
		u.mu.Unlock()

		tx := &memoryTx{uow: u, staged: map[int64]int{}}
		err := fn(ctx, tx)
		if err == nil && conflict {
			err = &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		}
		if err == nil {
			u.commit(tx)
			if u.AfterCommit != nil {
				u.AfterCommit()
			}
			return nil
		}

		var pgErr *pgconn.PgError
		if !errs.As(err, &pgErr) || pgErr.Code != "40001" {
			return err
		}
		if attempt == u.maxRetries {
			return errs.Mark(err, shared.ErrMaxRetriesExceeded)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return shared.ErrMaxRetriesExceeded
}

func (u *MemoryUoW) CommandReads() shared.CommandReads {
	return &memoryReads{uow: u}
}

func (u *MemoryUoW) commit(tx *memoryTx) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for id, issued := range tx.staged {
		p := u.coupons[id]
		p.IssuedQuantity = issued
		u.coupons[id] = p
	}
	for _, i := range tx.inserts {
		u.nextID++
		u.issuances[issuanceKey{couponID: i.CouponID(), userID: i.UserID()}] =
			coupon.ReconstructIssuance(u.nextID, i.CouponID(), i.UserID(), i.DateIssued(), nil, false)
	}
}

type memoryTx struct {
	uow     *MemoryUoW
	staged  map[int64]int
	inserts []*coupon.Issuance
}

func (t *memoryTx) Coupons() shared.CouponRepository     { return (*memoryCoupons)(t) }
func (t *memoryTx) Issuances() shared.IssuanceRepository { return (*memoryIssuances)(t) }

type memoryCoupons memoryTx

func (r *memoryCoupons) FindByIDForUpdate(_ context.Context, id int64) (*coupon.Coupon, error) {
	r.uow.mu.Lock()
	p, ok := r.uow.coupons[id]
	r.uow.mu.Unlock()
	if !ok {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	if issued, ok := r.staged[id]; ok {
		p.IssuedQuantity = issued
	}
	c, err := coupon.NewCoupon(p)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert coupon row", err, infra.KindInvalidData)
	}
	return c, nil
}

func (r *memoryCoupons) UpdateIssuedQuantity(_ context.Context, c *coupon.Coupon) error {
	r.staged[c.ID()] = c.IssuedQuantity()
	return nil
}

type memoryIssuances memoryTx

func (r *memoryIssuances) FindByCouponAndUser(_ context.Context, couponID, userID int64) (*coupon.Issuance, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if i, ok := r.uow.issuances[issuanceKey{couponID: couponID, userID: userID}]; ok {
		return i, nil
	}
	for _, i := range r.inserts {
		if i.CouponID() == couponID && i.UserID() == userID {
			return i, nil
		}
	}
	return nil, nil
}

func (r *memoryIssuances) Create(_ context.Context, issuance *coupon.Issuance) (int64, error) {
	if r.uow.ForceUniqueViolation {
		return 0, infra.WrapRepoErr("coupon already issued to user", &pgconn.PgError{Code: "23505"}, infra.KindDuplicateKey)
	}
	r.inserts = append(r.inserts, issuance)
	return int64(len(r.inserts)), nil
}

type memoryReads struct {
	uow *MemoryUoW
}

func (r *memoryReads) CouponByID(_ context.Context, id int64) (*shared.CouponSnapshot, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	p, ok := r.uow.coupons[id]
	if !ok {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	if _, err := coupon.NewType(p.CouponType); err != nil {
		return nil, infra.WrapRepoErr("coupon row has unknown type "+p.CouponType, err, infra.KindInvalidData)
	}
	return &shared.CouponSnapshot{
		ID:                 p.ID,
		Title:              p.Title,
		CouponType:         p.CouponType,
		TotalQuantity:      p.TotalQuantity,
		IssuedQuantity:     p.IssuedQuantity,
		DiscountAmount:     p.DiscountAmount,
		MinAvailableAmount: p.MinAvailableAmount,
		DateIssueStart:     p.DateIssueStart,
		DateIssueEnd:       p.DateIssueEnd,
	}, nil
}
