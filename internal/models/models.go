package models

import (
	"time"
)

// Table and column names follow the legacy MySQL schema the frontend was built against.

type Book struct {
	ID              int64  `gorm:"column:id_livro;primaryKey;autoIncrement" json:"id_livro"`
	Title           string `gorm:"column:nome_livro;size:255;not null" json:"nome_livro"`
	Description     string `gorm:"column:descricao;type:text" json:"descricao"`
	PublicationYear int    `gorm:"column:ano_publicacao" json:"ano_publicacao"`
	PageCount       int    `gorm:"column:quantidade_paginas" json:"quantidade_paginas"`
	Cover           []byte `gorm:"column:foto_capa" json:"-"`
	Stock           *Stock `gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Book) TableName() string { return "livro" }

type Author struct {
	ID   int64  `gorm:"column:id_autor;primaryKey;autoIncrement" json:"id_autor"`
	Name string `gorm:"column:nome;size:255;not null;uniqueIndex:uniq_autor_nome" json:"nome"`
}

func (Author) TableName() string { return "autor" }

type Category struct {
	ID   int64  `gorm:"column:id_categoria;primaryKey;autoIncrement" json:"id_categoria"`
	Name string `gorm:"column:nome_categoria;size:255;not null;uniqueIndex:uniq_categoria_nome" json:"nome_categoria"`
}

func (Category) TableName() string { return "categoria" }

// Stock holds the number of copies of a book currently on the shelf.
type Stock struct {
	ID       int64 `gorm:"column:id_estoque;primaryKey;autoIncrement" json:"id_estoque"`
	BookID   int64 `gorm:"column:fk_id_livro;not null;uniqueIndex:uniq_estoque_livro" json:"fk_id_livro"`
	Quantity int   `gorm:"column:quantidade_estoque;not null;default:0;check:chk_estoque_nao_negativo,quantidade_estoque >= 0" json:"quantidade_estoque"`
}

func (Stock) TableName() string { return "estoque" }

// Loan is open while ReturnedOn is nil.
type Loan struct {
	ID         int64      `gorm:"column:id_emprestimo;primaryKey;autoIncrement" json:"id_emprestimo"`
	BookID     int64      `gorm:"column:fk_id_livro;not null;index" json:"fk_id_livro"`
	Book       Book       `gorm:"foreignKey:BookID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	LoanedOn   time.Time  `gorm:"column:data_emprestimo;type:date;not null" json:"data_emprestimo"`
	DueOn      time.Time  `gorm:"column:data_prevista_devolucao;type:date;not null" json:"data_prevista_devolucao"`
	ReturnedOn *time.Time `gorm:"column:data_devolucao;type:date;index" json:"data_devolucao"`
}

func (Loan) TableName() string { return "emprestimos" }

func (l *Loan) IsOpen() bool { return l.ReturnedOn == nil }

type User struct {
	ID           int64  `gorm:"column:id_usuario;primaryKey;autoIncrement" json:"id_usuario"`
	Username     string `gorm:"column:nome_usuario;size:120;not null;uniqueIndex:uniq_usuario_nome" json:"nome_usuario"`
	Email        string `gorm:"column:email;size:255" json:"email"`
	PasswordHash string `gorm:"column:senha;size:255;not null" json:"-"`
	Phone        string `gorm:"column:telefone;size:40" json:"telefone"`
	PostalCode   string `gorm:"column:cep;size:20" json:"cep"`
	Street       string `gorm:"column:rua;size:255" json:"rua"`
	City         string `gorm:"column:cidade;size:120" json:"cidade"`
	State        string `gorm:"column:estado;size:60" json:"estado"`
	District     string `gorm:"column:bairro;size:120" json:"bairro"`
	Number       string `gorm:"column:numero;size:20" json:"numero"`
}

func (User) TableName() string { return "usuario" }

// UserLoan links a loan to the user who borrowed it.
type UserLoan struct {
	UserID int64 `gorm:"column:fk_id_usuario;primaryKey"`
	User   User  `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	LoanID int64 `gorm:"column:fk_id_emprestimo;primaryKey;uniqueIndex:uniq_usuario_emprestimo"`
	Loan   Loan  `gorm:"foreignKey:LoanID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (UserLoan) TableName() string { return "usuario_emprestimos" }

type AuthorBook struct {
	BookID   int64  `gorm:"column:fk_id_livro;primaryKey"`
	Book     Book   `gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE;"`
	AuthorID int64  `gorm:"column:fk_id_autor;primaryKey"`
	Author   Author `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:RESTRICT;"`
}

func (AuthorBook) TableName() string { return "autor_livro" }

type BookCategory struct {
	BookID     int64    `gorm:"column:fk_id_livros;primaryKey"`
	Book       Book     `gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE;"`
	CategoryID int64    `gorm:"column:fk_id_categoria;primaryKey"`
	Category   Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:RESTRICT;"`
}

func (BookCategory) TableName() string { return "livro_categoria" }

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Book{},
		&Author{},
		&Category{},
		&Stock{},
		&User{},
		&Loan{},
		&UserLoan{},
		&AuthorBook{},
		&BookCategory{},
	}
}
