package services

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"biblioteca/internal/config"
	"biblioteca/internal/database"
	"biblioteca/internal/models"
	"biblioteca/internal/repositories"
)

type testEnv struct {
	db      *gorm.DB
	catalog CatalogService
	loans   *loanService
	users   UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithPool(t, 1)
}

// newTestEnvWithPool opens the store with maxOpen connections so transactions
// from different goroutines can overlap.
func newTestEnvWithPool(t *testing.T, maxOpen int) *testEnv {
	t.Helper()

	db, err := database.Open(config.Config{
		DBDriver:        config.DriverSQLite,
		DatabaseURL:     filepath.Join(t.TempDir(), "biblioteca.db"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxOpen,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bookRepo := repositories.NewBookRepository(db)
	stockRepo := repositories.NewStockRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	userRepo := repositories.NewUserRepository(db)

	return &testEnv{
		db: db,
		catalog: NewCatalogService(db, bookRepo,
			repositories.NewAuthorRepository(db),
			repositories.NewCategoryRepository(db),
			stockRepo, log),
		loans: NewLoanService(db, stockRepo, loanRepo, DefaultLoanPeriodDays, log).(*loanService),
		users: NewUserService(db, userRepo, loanRepo, log),
	}
}

// seedBook inserts a book with a fixed id and the given shelf quantity.
func (e *testEnv) seedBook(t *testing.T, id int64, quantity int) {
	t.Helper()
	require.NoError(t, e.db.Omit("Stock").Create(&models.Book{ID: id, Title: "Livro"}).Error)
	require.NoError(t, e.db.Create(&models.Stock{BookID: id, Quantity: quantity}).Error)
}

func (e *testEnv) seedUser(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.User{ID: id, Username: fmt.Sprintf("user%d", id), PasswordHash: "x"}).Error)
}

func (e *testEnv) stockOf(t *testing.T, bookID int64) int {
	t.Helper()
	var s models.Stock
	require.NoError(t, e.db.First(&s, "fk_id_livro = ?", bookID).Error)
	return s.Quantity
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
