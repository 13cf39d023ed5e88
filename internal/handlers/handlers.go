package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"biblioteca/internal/cover"
	"biblioteca/internal/database"
	"biblioteca/internal/services"
)

// Deps is everything the HTTP layer needs from the rest of the process.
type Deps struct {
	Catalog services.CatalogService
	Loans   services.LoanService
	Users   services.UserService
	DB      *gorm.DB
	Log     *slog.Logger
}

type LibraryHandler struct {
	catalog services.CatalogService
	loans   services.LoanService
	users   services.UserService
	db      *gorm.DB
	log     *slog.Logger
}

// NewRouter builds a gin engine with the standard middleware chain and every route mounted.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(d.Log))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	registerValidators()
	h := &LibraryHandler{
		catalog: d.Catalog,
		loans:   d.Loans,
		users:   d.Users,
		db:      d.DB,
		log:     d.Log,
	}

	r.GET("/health", h.health)

	// Catalog
	r.GET("/livros", h.listBooks)
	r.GET("/livros/:id", h.showBook)
	r.POST("/livros", h.createBook)

	// Loans
	r.POST("/livros/:id/reservar", h.reserveBook)
	r.POST("/emprestimos/:id/devolver", h.returnLoan)
	r.GET("/emprestimos/:id", h.listOpenLoans)

	// Users
	r.GET("/usuarios", h.listUsers)
	r.POST("/usuarios", h.createUser)
	r.POST("/usuarios/login", h.login)
	r.GET("/usuarios/:id", h.showUser)
	r.PUT("/usuarios/:id", h.updateUser)
	r.DELETE("/usuarios/:id", h.deleteUser)
}

func (h *LibraryHandler) health(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), h.db); err != nil {
		h.log.Error("health: store ping failed", "err", err, "req_id", c.GetString(requestIDKey))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "indisponivel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type idParam struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// bindID reads the :id path segment and answers 400 when it is not a positive integer.
func (h *LibraryHandler) bindID(c *gin.Context, what string) (int64, bool) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID " + what + " inválido"})
		return 0, false
	}
	return p.ID, true
}

// ─── Error Mapping ────────────────────────────────────────────────────────────

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrInvalidBook, http.StatusBadRequest, "Dados do livro inválidos"},
	{services.ErrInvalidUser, http.StatusBadRequest, "Dados do usuário inválidos"},
	{cover.ErrInvalid, http.StatusBadRequest, "Foto de capa inválida"},
	{services.ErrBookUnavailable, http.StatusBadRequest, "Livro indisponível no estoque."},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Nome de usuário ou senha incorretos"},
	{services.ErrBookNotFound, http.StatusNotFound, "Livro não encontrado"},
	{services.ErrLoanNotFound, http.StatusNotFound, "Empréstimo não encontrado."},
	{services.ErrUserNotFound, http.StatusNotFound, "Usuário não encontrado"},
	{services.ErrLoanAlreadyReturned, http.StatusConflict, "Empréstimo já devolvido."},
	{services.ErrUsernameTaken, http.StatusConflict, "Nome de usuário já está em uso"},
	{services.ErrUserHasOpenLoans, http.StatusConflict, "Usuário possui empréstimos em aberto"},
}

// fail writes the error body for err. Unknown errors are logged and answered
// with the generic fallback message so store details never reach the client.
func (h *LibraryHandler) fail(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, gin.H{"erro": m.message})
			return
		}
	}
	h.log.Error(fallback, "err", err, "req_id", c.GetString(requestIDKey))
	c.JSON(http.StatusInternalServerError, gin.H{"erro": fallback})
}
