package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biblioteca/internal/models"
)

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(db *gorm.DB, loan *models.Loan) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(loan).Error
}

func (r *loanRepository) LinkUser(db *gorm.DB, userID, loanID int64) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(&models.UserLoan{UserID: userID, LoanID: loanID}).Error
}

func (r *loanRepository) GetByIDForUpdate(db *gorm.DB, id int64) (*models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loan models.Loan
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, "id_emprestimo = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkReturned closes the loan only if it is still open, and reports whether it did.
func (r *loanRepository) MarkReturned(db *gorm.DB, id int64, returnedOn time.Time) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Loan{}).
		Where("id_emprestimo = ? AND data_devolucao IS NULL", id).
		UpdateColumn("data_devolucao", returnedOn)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *loanRepository) ListOpenByUser(db *gorm.DB, userID int64) ([]OpenLoan, error) {
	if db == nil {
		db = r.db
	}
	var rows []OpenLoan
	err := db.Table("emprestimos").
		Select(`emprestimos.id_emprestimo AS loan_id,
			livro.id_livro AS book_id,
			livro.nome_livro AS book_title,
			livro.foto_capa AS cover,
			emprestimos.data_prevista_devolucao AS due_on,
			emprestimos.data_devolucao AS returned_on`).
		Joins("JOIN usuario_emprestimos ON emprestimos.id_emprestimo = usuario_emprestimos.fk_id_emprestimo").
		Joins("JOIN livro ON emprestimos.fk_id_livro = livro.id_livro").
		Where("usuario_emprestimos.fk_id_usuario = ? AND emprestimos.data_devolucao IS NULL", userID).
		Order("emprestimos.data_prevista_devolucao, emprestimos.id_emprestimo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *loanRepository) CountOpenByUser(db *gorm.DB, userID int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Loan{}).
		Joins("JOIN usuario_emprestimos ON emprestimos.id_emprestimo = usuario_emprestimos.fk_id_emprestimo").
		Where("usuario_emprestimos.fk_id_usuario = ? AND emprestimos.data_devolucao IS NULL", userID).
		Count(&n).Error
	return n, err
}
