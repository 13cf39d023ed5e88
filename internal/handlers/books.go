package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioteca/internal/cover"
	"biblioteca/internal/services"
)

type bookResponse struct {
	ID              int64    `json:"id_livro"`
	Title           string   `json:"nome_livro"`
	Description     string   `json:"descricao"`
	PublicationYear int      `json:"ano_publicacao"`
	PageCount       int      `json:"quantidade_paginas"`
	Cover           *string  `json:"foto_capa"`
	Category        string   `json:"categoria"`
	Authors         []string `json:"autores"`
	Quantity        int      `json:"quantidade_estoque"`
}

func newBookResponse(b services.BookDetails) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		PublicationYear: b.PublicationYear,
		PageCount:       b.PageCount,
		Cover:           coverURI(b.Cover),
		Category:        b.Category(),
		Authors:         b.Authors,
		Quantity:        b.Quantity,
	}
}

// coverURI yields nil for books without a cover so the field serializes as null.
func coverURI(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	s := cover.Encode(raw)
	return &s
}

func (h *LibraryHandler) listBooks(c *gin.Context) {
	books, err := h.catalog.ListBooks(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Erro ao buscar livros")
		return
	}
	out := make([]bookResponse, len(books))
	for i, b := range books {
		out[i] = newBookResponse(b)
	}
	c.JSON(http.StatusOK, gin.H{"livros": out})
}

func (h *LibraryHandler) showBook(c *gin.Context) {
	id, ok := h.bindID(c, "do livro")
	if !ok {
		return
	}
	book, err := h.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Erro ao buscar o livro")
		return
	}
	c.JSON(http.StatusOK, newBookResponse(*book))
}

// Field names match what the existing frontend posts.
type createBookRequest struct {
	Title           string `json:"nomeLivro" binding:"required,notblank"`
	Description     string `json:"descricao"`
	PublicationYear int    `json:"anoPublicacao"`
	PageCount       int    `json:"quantidade_paginas" binding:"gte=0"`
	Category        string `json:"categoria_principal" binding:"required,notblank"`
	Author          string `json:"autores" binding:"required,notblank"`
	StockQuantity   int    `json:"quantidade_estoque" binding:"gte=0"`
	Cover           string `json:"foto_capa"`
}

func (h *LibraryHandler) createBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": bindMessage(err)})
		return
	}
	raw, err := cover.Decode(req.Cover)
	if err != nil {
		h.fail(c, err, "Erro ao criar livro")
		return
	}

	book, err := h.catalog.CreateBook(c.Request.Context(), services.CreateBookInput{
		Title:           req.Title,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		PageCount:       req.PageCount,
		Category:        req.Category,
		Author:          req.Author,
		StockQuantity:   req.StockQuantity,
		Cover:           raw,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidBook) {
			h.fail(c, err, "Erro ao criar livro")
			return
		}
		h.log.Error("create book failed", "err", err, "req_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Erro ao criar livro", "detalhes": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mensagem": "Livro criado com sucesso", "id_livro": book.ID})
}
