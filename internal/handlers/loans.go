package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"biblioteca/internal/models"
	"biblioteca/internal/repositories"
)

// Loan dates travel as plain calendar days.
const dateLayout = time.DateOnly

type loanResponse struct {
	ID         int64   `json:"id_emprestimo"`
	BookID     int64   `json:"id_livro"`
	LoanedOn   string  `json:"data_emprestimo"`
	DueOn      string  `json:"data_prevista_devolucao"`
	ReturnedOn *string `json:"data_devolucao"`
}

func newLoanResponse(l *models.Loan) loanResponse {
	return loanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		LoanedOn:   l.LoanedOn.Format(dateLayout),
		DueOn:      l.DueOn.Format(dateLayout),
		ReturnedOn: formatDay(l.ReturnedOn),
	}
}

type openLoanResponse struct {
	ID         int64   `json:"id_emprestimo"`
	BookID     int64   `json:"id_livro"`
	BookTitle  string  `json:"nome_livro"`
	Cover      *string `json:"foto_capa"`
	DueOn      string  `json:"data_prevista_devolucao"`
	ReturnedOn *string `json:"data_devolucao"`
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func (h *LibraryHandler) listOpenLoans(c *gin.Context) {
	userID, ok := h.bindID(c, "do usuário")
	if !ok {
		return
	}
	loans, err := h.loans.ListOpenByUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Erro ao buscar os dados do empréstimo")
		return
	}
	out := make([]openLoanResponse, len(loans))
	for i, l := range loans {
		out[i] = newOpenLoanResponse(l)
	}
	c.JSON(http.StatusOK, gin.H{"dados": out})
}

func newOpenLoanResponse(l repositories.OpenLoan) openLoanResponse {
	return openLoanResponse{
		ID:         l.LoanID,
		BookID:     l.BookID,
		BookTitle:  l.BookTitle,
		Cover:      coverURI(l.Cover),
		DueOn:      l.DueOn.Format(dateLayout),
		ReturnedOn: formatDay(l.ReturnedOn),
	}
}

type reserveRequest struct {
	UserID flexibleID `json:"usuarioId" binding:"required,gt=0"`
}

// flexibleID takes the id as a JSON number or a numeric string. Older frontend
// builds post it as a string.
type flexibleID int64

func (u *flexibleID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("usuarioId: %w", err)
		}
		*u = flexibleID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*u = flexibleID(n)
	return nil
}

func (h *LibraryHandler) reserveBook(c *gin.Context) {
	bookID, ok := h.bindID(c, "do livro")
	if !ok {
		return
	}
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": bindMessage(err)})
		return
	}

	loan, err := h.loans.Reserve(c.Request.Context(), bookID, int64(req.UserID))
	if err != nil {
		h.fail(c, err, "Erro ao reservar livro")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"mensagem":   "Livro reservado com sucesso.",
		"emprestimo": newLoanResponse(loan),
	})
}

func (h *LibraryHandler) returnLoan(c *gin.Context) {
	loanID, ok := h.bindID(c, "do empréstimo")
	if !ok {
		return
	}
	if _, err := h.loans.Return(c.Request.Context(), loanID); err != nil {
		h.fail(c, err, "Erro ao devolver livro")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensagem": "Livro devolvido com sucesso."})
}
