package repositories

import (
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"biblioteca/internal/models"
)

// Every method takes an optional *gorm.DB. Pass the transaction handle to take
// part in a caller's transaction, or nil to run on the repository's own pool.

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id int64) (*models.Book, error)
	LinkAuthor(db *gorm.DB, bookID, authorID int64) error
	LinkCategory(db *gorm.DB, bookID, categoryID int64) error
	AuthorNames(db *gorm.DB, bookIDs []int64) (map[int64][]string, error)
	CategoryNames(db *gorm.DB, bookIDs []int64) (map[int64][]string, error)
}

type AuthorRepository interface {
	GetOrCreate(db *gorm.DB, name string) (int64, error)
}

type CategoryRepository interface {
	GetOrCreate(db *gorm.DB, name string) (int64, error)
}

type StockRepository interface {
	Create(db *gorm.DB, stock *models.Stock) error
	GetByBook(db *gorm.DB, bookID int64) (*models.Stock, error)
	DecrementIfAvailable(db *gorm.DB, bookID int64) (bool, error)
	Increment(db *gorm.DB, bookID int64) error
}

type LoanRepository interface {
	Create(db *gorm.DB, loan *models.Loan) error
	LinkUser(db *gorm.DB, userID, loanID int64) error
	GetByIDForUpdate(db *gorm.DB, id int64) (*models.Loan, error)
	MarkReturned(db *gorm.DB, id int64, returnedOn time.Time) (bool, error)
	ListOpenByUser(db *gorm.DB, userID int64) ([]OpenLoan, error)
	CountOpenByUser(db *gorm.DB, userID int64) (int64, error)
}

type UserRepository interface {
	List(db *gorm.DB) ([]models.User, error)
	GetByID(db *gorm.DB, id int64) (*models.User, error)
	GetByUsername(db *gorm.DB, username string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	UpdateProfile(db *gorm.DB, id int64, user *models.User) error
	Delete(db *gorm.DB, id int64) (bool, error)
	UnlinkLoans(db *gorm.DB, userID int64) error
}

// OpenLoan is the borrower-facing projection of a loan that has not been returned.
type OpenLoan struct {
	LoanID     int64
	BookID     int64
	BookTitle  string
	Cover      []byte
	DueOn      time.Time
	ReturnedOn *time.Time
}

// IsUniqueViolation reports whether err came from a unique index. gorm
// translates it to ErrDuplicatedKey when TranslateError is on; the raw driver
// errors are checked as well for handles opened without translation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
