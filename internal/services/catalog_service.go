package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"biblioteca/internal/models"
	"biblioteca/internal/repositories"
)

// CatalogService lists, shows and creates books with their authors, category and stock.
type CatalogService interface {
	ListBooks(ctx context.Context) ([]BookDetails, error)
	GetBook(ctx context.Context, id int64) (*BookDetails, error)
	CreateBook(ctx context.Context, in CreateBookInput) (*models.Book, error)
}

// BookDetails is a book with its associated names and shelf quantity attached.
type BookDetails struct {
	models.Book
	Authors    []string
	Categories []string
	Quantity   int
}

// Category returns the first associated category, or "" when the book has none.
func (b BookDetails) Category() string {
	if len(b.Categories) == 0 {
		return ""
	}
	return b.Categories[0]
}

type CreateBookInput struct {
	Title           string
	Description     string
	PublicationYear int
	PageCount       int
	Category        string
	Author          string
	StockQuantity   int
	Cover           []byte
}

type catalogService struct {
	db           *gorm.DB
	bookRepo     repositories.BookRepository
	authorRepo   repositories.AuthorRepository
	categoryRepo repositories.CategoryRepository
	stockRepo    repositories.StockRepository
	log          *slog.Logger
}

func NewCatalogService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	authorRepo repositories.AuthorRepository,
	categoryRepo repositories.CategoryRepository,
	stockRepo repositories.StockRepository,
	log *slog.Logger,
) CatalogService {
	return &catalogService{
		db:           db,
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		stockRepo:    stockRepo,
		log:          log,
	}
}

func (s *catalogService) ListBooks(ctx context.Context) ([]BookDetails, error) {
	db := s.db.WithContext(ctx)
	books, err := s.bookRepo.List(db)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return s.attachNames(db, books)
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*BookDetails, error) {
	db := s.db.WithContext(ctx)
	book, err := s.bookRepo.GetByID(db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	details, err := s.attachNames(db, []models.Book{*book})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *catalogService) attachNames(db *gorm.DB, books []models.Book) ([]BookDetails, error) {
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	authors, err := s.bookRepo.AuthorNames(db, ids)
	if err != nil {
		return nil, fmt.Errorf("load author names: %w", err)
	}
	categories, err := s.bookRepo.CategoryNames(db, ids)
	if err != nil {
		return nil, fmt.Errorf("load category names: %w", err)
	}

	out := make([]BookDetails, len(books))
	for i, b := range books {
		d := BookDetails{
			Book:       b,
			Authors:    authors[b.ID],
			Categories: categories[b.ID],
		}
		if b.Stock != nil {
			d.Quantity = b.Stock.Quantity
		}
		if d.Authors == nil {
			d.Authors = []string{}
		}
		out[i] = d
	}
	return out, nil
}

// CreateBook stores the book, its stock row and its author/category links in one
// transaction. Author and category are resolved by name and created on first use.
func (s *catalogService) CreateBook(ctx context.Context, in CreateBookInput) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.Author == "" || in.Category == "" || in.StockQuantity < 0 {
		return nil, ErrInvalidBook
	}

	book := &models.Book{
		Title:           in.Title,
		Description:     in.Description,
		PublicationYear: in.PublicationYear,
		PageCount:       in.PageCount,
		Cover:           in.Cover,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bookRepo.Create(tx, book); err != nil {
			s.log.Error("create book: insert book", "title", in.Title, "err", err)
			return fmt.Errorf("insert book: %w", err)
		}
		if err := s.stockRepo.Create(tx, &models.Stock{BookID: book.ID, Quantity: in.StockQuantity}); err != nil {
			s.log.Error("create book: insert stock", "book_id", book.ID, "err", err)
			return fmt.Errorf("insert stock: %w", err)
		}

		authorID, err := s.authorRepo.GetOrCreate(tx, in.Author)
		if err != nil {
			s.log.Error("create book: resolve author", "author", in.Author, "err", err)
			return fmt.Errorf("resolve author %q: %w", in.Author, err)
		}
		if err := s.bookRepo.LinkAuthor(tx, book.ID, authorID); err != nil {
			return fmt.Errorf("link author: %w", err)
		}

		categoryID, err := s.categoryRepo.GetOrCreate(tx, in.Category)
		if err != nil {
			s.log.Error("create book: resolve category", "category", in.Category, "err", err)
			return fmt.Errorf("resolve category %q: %w", in.Category, err)
		}
		if err := s.bookRepo.LinkCategory(tx, book.ID, categoryID); err != nil {
			return fmt.Errorf("link category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("book created", "book_id", book.ID, "title", book.Title, "stock", in.StockQuantity)
	return book, nil
}
