package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biblioteca/internal/models"
)

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(book).Error
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Preload("Stock").Order("id_livro").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id int64) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.Preload("Stock").First(&book, "id_livro = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) LinkAuthor(db *gorm.DB, bookID, authorID int64) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(&models.AuthorBook{BookID: bookID, AuthorID: authorID}).Error
}

func (r *bookRepository) LinkCategory(db *gorm.DB, bookID, categoryID int64) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(&models.BookCategory{BookID: bookID, CategoryID: categoryID}).Error
}

type bookName struct {
	BookID int64
	Name   string
}

func (r *bookRepository) AuthorNames(db *gorm.DB, bookIDs []int64) (map[int64][]string, error) {
	if db == nil {
		db = r.db
	}
	if len(bookIDs) == 0 {
		return map[int64][]string{}, nil
	}
	var rows []bookName
	err := db.Table("autor_livro").
		Select("autor_livro.fk_id_livro AS book_id, autor.nome AS name").
		Joins("JOIN autor ON autor.id_autor = autor_livro.fk_id_autor").
		Where("autor_livro.fk_id_livro IN ?", bookIDs).
		Order("autor.nome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return groupNames(rows), nil
}

func (r *bookRepository) CategoryNames(db *gorm.DB, bookIDs []int64) (map[int64][]string, error) {
	if db == nil {
		db = r.db
	}
	if len(bookIDs) == 0 {
		return map[int64][]string{}, nil
	}
	var rows []bookName
	err := db.Table("livro_categoria").
		Select("livro_categoria.fk_id_livros AS book_id, categoria.nome_categoria AS name").
		Joins("JOIN categoria ON categoria.id_categoria = livro_categoria.fk_id_categoria").
		Where("livro_categoria.fk_id_livros IN ?", bookIDs).
		Order("categoria.nome_categoria").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return groupNames(rows), nil
}

func groupNames(rows []bookName) map[int64][]string {
	out := make(map[int64][]string, len(rows))
	for _, row := range rows {
		out[row.BookID] = append(out[row.BookID], row.Name)
	}
	return out
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

// GetOrCreate looks the author up by name and inserts it only when absent.
// Two concurrent inserts of the same new name collide on uniq_autor_nome; the
// loser's insert is a no-op and it re-reads the winner's row.
func (r *authorRepository) GetOrCreate(db *gorm.DB, name string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var existing models.Author
	err := db.Where("nome = ?", name).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	author := models.Author{Name: name}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "nome"}}, DoNothing: true}).Create(&author)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 && author.ID != 0 {
		return author.ID, nil
	}
	if err := db.Where("nome = ?", name).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetOrCreate(db *gorm.DB, name string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var existing models.Category
	err := db.Where("nome_categoria = ?", name).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	category := models.Category{Name: name}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "nome_categoria"}}, DoNothing: true}).Create(&category)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 && category.ID != 0 {
		return category.ID, nil
	}
	if err := db.Where("nome_categoria = ?", name).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Create(db *gorm.DB, stock *models.Stock) error {
	if db == nil {
		db = r.db
	}
	return db.Create(stock).Error
}

func (r *stockRepository) GetByBook(db *gorm.DB, bookID int64) (*models.Stock, error) {
	if db == nil {
		db = r.db
	}
	var stock models.Stock
	if err := db.First(&stock, "fk_id_livro = ?", bookID).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// DecrementIfAvailable takes one copy off the shelf in a single conditional
// UPDATE. It reports false when the book has no stock row or none left.
func (r *stockRepository) DecrementIfAvailable(db *gorm.DB, bookID int64) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Stock{}).
		Where("fk_id_livro = ? AND quantidade_estoque > 0", bookID).
		UpdateColumn("quantidade_estoque", gorm.Expr("quantidade_estoque - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *stockRepository) Increment(db *gorm.DB, bookID int64) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Stock{}).
		Where("fk_id_livro = ?", bookID).
		UpdateColumn("quantidade_estoque", gorm.Expr("quantidade_estoque + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
