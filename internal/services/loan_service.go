package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"biblioteca/internal/models"
	"biblioteca/internal/repositories"
)

// DefaultLoanPeriodDays is how long a borrower may keep a book.
const DefaultLoanPeriodDays = 7

// LoanService runs the reserve/return lifecycle of a loan.
type LoanService interface {
	Reserve(ctx context.Context, bookID, userID int64) (*models.Loan, error)
	Return(ctx context.Context, loanID int64) (*models.Loan, error)
	ListOpenByUser(ctx context.Context, userID int64) ([]repositories.OpenLoan, error)
}

type loanService struct {
	db         *gorm.DB
	stockRepo  repositories.StockRepository
	loanRepo   repositories.LoanRepository
	periodDays int
	now        func() time.Time
	log        *slog.Logger
}

func NewLoanService(
	db *gorm.DB,
	stockRepo repositories.StockRepository,
	loanRepo repositories.LoanRepository,
	periodDays int,
	log *slog.Logger,
) LoanService {
	if periodDays <= 0 {
		periodDays = DefaultLoanPeriodDays
	}
	return &loanService{
		db:         db,
		stockRepo:  stockRepo,
		loanRepo:   loanRepo,
		periodDays: periodDays,
		now:        time.Now,
		log:        log,
	}
}

// today returns the current calendar day at midnight UTC.
func (s *loanService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ─── Reserve ──────────────────────────────────────────────────────────────────

// Reserve lends one copy of a book to a user.
//
// Steps (all in one transaction):
//  1. Take one copy off the shelf with a conditional decrement (quantity > 0).
//     No affected row means the book is unavailable and nothing was written.
//  2. Insert the loan, due periodDays after today.
//  3. Link the loan to the user.
//
// The user id is not checked here; a dangling id fails on the foreign key and
// rolls the whole reservation back.
func (s *loanService) Reserve(ctx context.Context, bookID, userID int64) (*models.Loan, error) {
	var loan *models.Loan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.stockRepo.DecrementIfAvailable(tx, bookID)
		if err != nil {
			s.log.Error("reserve: stock decrement failed", "book_id", bookID, "err", err)
			return fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			s.log.Warn("reserve: book unavailable", "book_id", bookID, "user_id", userID)
			return ErrBookUnavailable
		}

		start := s.today()
		l := &models.Loan{
			BookID:   bookID,
			LoanedOn: start,
			DueOn:    start.AddDate(0, 0, s.periodDays),
		}
		if err := s.loanRepo.Create(tx, l); err != nil {
			s.log.Error("reserve: insert loan failed", "book_id", bookID, "err", err)
			return fmt.Errorf("insert loan: %w", err)
		}
		if err := s.loanRepo.LinkUser(tx, userID, l.ID); err != nil {
			s.log.Error("reserve: link user failed", "loan_id", l.ID, "user_id", userID, "err", err)
			return fmt.Errorf("link loan to user: %w", err)
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("book reserved", "loan_id", loan.ID, "book_id", bookID, "user_id", userID, "due", loan.DueOn.Format(time.DateOnly))
	return loan, nil
}

// ─── Return ───────────────────────────────────────────────────────────────────

// Return closes an open loan and puts the copy back on the shelf.
//
// Steps (all in one transaction):
//  1. Lock the loan row (FOR UPDATE).
//  2. Refuse a loan that is already closed; stock is left untouched.
//  3. Set the return date, guarded on it still being NULL.
//  4. Increment the book's stock.
func (s *loanService) Return(ctx context.Context, loanID int64) (*models.Loan, error) {
	var loan *models.Loan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := s.loanRepo.GetByIDForUpdate(tx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return fmt.Errorf("load loan: %w", err)
		}
		if !l.IsOpen() {
			s.log.Warn("return: loan already returned", "loan_id", loanID, "returned_on", l.ReturnedOn.Format(time.DateOnly))
			return ErrLoanAlreadyReturned
		}

		today := s.today()
		closed, err := s.loanRepo.MarkReturned(tx, loanID, today)
		if err != nil {
			s.log.Error("return: mark returned failed", "loan_id", loanID, "err", err)
			return fmt.Errorf("mark loan returned: %w", err)
		}
		if !closed {
			return ErrLoanAlreadyReturned
		}

		if err := s.stockRepo.Increment(tx, l.BookID); err != nil {
			s.log.Error("return: stock increment failed", "loan_id", loanID, "book_id", l.BookID, "err", err)
			return fmt.Errorf("increment stock for book %d: %w", l.BookID, err)
		}

		l.ReturnedOn = &today
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("book returned", "loan_id", loan.ID, "book_id", loan.BookID)
	return loan, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// ListOpenByUser returns the loans a user still has to give back, soonest due first.
func (s *loanService) ListOpenByUser(ctx context.Context, userID int64) ([]repositories.OpenLoan, error) {
	loans, err := s.loanRepo.ListOpenByUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list open loans for user %d: %w", userID, err)
	}
	return loans, nil
}
