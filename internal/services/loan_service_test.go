package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca/internal/models"
)

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(15 * time.Hour) }
}

func TestReserve_LastCopyThenUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.loans.now = fixedClock("2026-10-15")
	ctx := context.Background()

	env.seedBook(t, 5, 1)
	env.seedUser(t, 9)
	env.seedUser(t, 3)

	loan, err := env.loans.Reserve(ctx, 5, 9)
	require.NoError(t, err)

	assert.Equal(t, 0, env.stockOf(t, 5))
	assert.Equal(t, int64(5), loan.BookID)
	assert.Equal(t, "2026-10-15", loan.LoanedOn.Format(time.DateOnly))
	assert.Equal(t, "2026-10-22", loan.DueOn.Format(time.DateOnly))
	assert.Nil(t, loan.ReturnedOn)

	var link models.UserLoan
	require.NoError(t, env.db.First(&link, "fk_id_emprestimo = ?", loan.ID).Error)
	assert.Equal(t, int64(9), link.UserID)

	open, err := env.loans.ListOpenByUser(ctx, 9)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, loan.ID, open[0].LoanID)
	assert.Equal(t, "2026-10-22", open[0].DueOn.Format(time.DateOnly))

	_, err = env.loans.Reserve(ctx, 5, 3)
	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.Equal(t, 0, env.stockOf(t, 5))
	assert.Equal(t, int64(1), env.count(t, &models.Loan{}))
}

func TestReserve_ZeroStockWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, 1, 0)
	env.seedUser(t, 1)

	_, err := env.loans.Reserve(context.Background(), 1, 1)

	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.Equal(t, 0, env.stockOf(t, 1))
	assert.Zero(t, env.count(t, &models.Loan{}))
	assert.Zero(t, env.count(t, &models.UserLoan{}))
}

func TestReserve_NoStockRow(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1)

	_, err := env.loans.Reserve(context.Background(), 404, 1)

	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.Zero(t, env.count(t, &models.Loan{}))
}

func TestReserve_UnknownUserRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, 1, 2)

	_, err := env.loans.Reserve(context.Background(), 1, 777)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBookUnavailable)
	assert.Equal(t, 2, env.stockOf(t, 1), "stock must be restored by the rollback")
	assert.Zero(t, env.count(t, &models.Loan{}))
}

func TestReserve_ConcurrentNeverOversells(t *testing.T) {
	const users = 20
	env := newTestEnvWithPool(t, 10)
	env.seedBook(t, 1, 3)
	for id := int64(1); id <= users; id++ {
		env.seedUser(t, id)
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		ok, refused int
	)
	start := make(chan struct{})
	for id := int64(1); id <= users; id++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start
			_, err := env.loans.Reserve(context.Background(), 1, userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, ErrBookUnavailable):
				refused++
			}
		}(id)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, users-3, refused)
	assert.Equal(t, 0, env.stockOf(t, 1))
	assert.Equal(t, int64(3), env.count(t, &models.Loan{}))
}

func TestReturn_RestocksAndClosesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.loans.now = fixedClock("2026-10-15")
	ctx := context.Background()
	env.seedBook(t, 1, 1)
	env.seedUser(t, 1)

	loan, err := env.loans.Reserve(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 0, env.stockOf(t, 1))

	env.loans.now = fixedClock("2026-10-18")
	returned, err := env.loans.Return(ctx, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedOn)
	assert.Equal(t, "2026-10-18", returned.ReturnedOn.Format(time.DateOnly))
	assert.Equal(t, 1, env.stockOf(t, 1))

	var stored models.Loan
	require.NoError(t, env.db.First(&stored, "id_emprestimo = ?", loan.ID).Error)
	require.NotNil(t, stored.ReturnedOn)
	assert.Equal(t, "2026-10-18", stored.ReturnedOn.Format(time.DateOnly))

	_, err = env.loans.Return(ctx, loan.ID)
	assert.ErrorIs(t, err, ErrLoanAlreadyReturned)
	assert.Equal(t, 1, env.stockOf(t, 1), "a second return must not restock")

	open, err := env.loans.ListOpenByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestReturn_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.loans.Return(context.Background(), 42)

	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestListOpenByUser_OnlyOwnOpenLoans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBook(t, 1, 5)
	env.seedBook(t, 2, 5)
	env.seedUser(t, 1)
	env.seedUser(t, 2)

	first, err := env.loans.Reserve(ctx, 1, 1)
	require.NoError(t, err)
	second, err := env.loans.Reserve(ctx, 2, 1)
	require.NoError(t, err)
	_, err = env.loans.Reserve(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.loans.Return(ctx, first.ID)
	require.NoError(t, err)

	open, err := env.loans.ListOpenByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].LoanID)
	assert.Equal(t, int64(2), open[0].BookID)
	assert.Equal(t, "Livro", open[0].BookTitle)
	assert.Nil(t, open[0].ReturnedOn)
}

func TestNewLoanService_DefaultsPeriod(t *testing.T) {
	s := NewLoanService(nil, nil, nil, 0, nil).(*loanService)
	assert.Equal(t, DefaultLoanPeriodDays, s.periodDays)
}
