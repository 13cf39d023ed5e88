package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioteca/internal/services"
)

type userProfileRequest struct {
	Username   string `json:"nome_usuario" binding:"required,notblank"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"telefone"`
	PostalCode string `json:"cep"`
	Street     string `json:"rua"`
	City       string `json:"cidade"`
	State      string `json:"estado"`
	District   string `json:"bairro"`
	Number     string `json:"numero"`
}

func (r userProfileRequest) input() services.UserInput {
	return services.UserInput{
		Username:   r.Username,
		Email:      r.Email,
		Phone:      r.Phone,
		PostalCode: r.PostalCode,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		District:   r.District,
		Number:     r.Number,
	}
}

type createUserRequest struct {
	userProfileRequest
	Password string `json:"senha" binding:"required,notblank"`
}

type loginRequest struct {
	Username string `json:"nome_usuario" binding:"required,notblank"`
	Password string `json:"senha" binding:"required"`
}

func (h *LibraryHandler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Erro ao buscar os usuários")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dados": users})
}

func (h *LibraryHandler) showUser(c *gin.Context) {
	id, ok := h.bindID(c, "do usuário")
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Erro ao buscar o usuário")
		return
	}
	c.JSON(http.StatusOK, gin.H{"usuario": user})
}

func (h *LibraryHandler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": bindMessage(err)})
		return
	}
	in := req.input()
	in.Password = req.Password

	user, err := h.users.CreateUser(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Erro ao criar usuário")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Usuário criado com sucesso", "id_usuario": user.ID})
}

func (h *LibraryHandler) updateUser(c *gin.Context) {
	id, ok := h.bindID(c, "do usuário")
	if !ok {
		return
	}
	var req userProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": bindMessage(err)})
		return
	}
	if err := h.users.UpdateUser(c.Request.Context(), id, req.input()); err != nil {
		h.fail(c, err, "Erro ao atualizar usuário")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuário atualizado com sucesso"})
}

func (h *LibraryHandler) deleteUser(c *gin.Context) {
	id, ok := h.bindID(c, "do usuário")
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Erro ao deletar usuário")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuário deletado com sucesso"})
}

func (h *LibraryHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "Todos os campos são obrigatórios"})
		return
	}
	user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err, "Erro ao buscar o usuário")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login bem-sucedido",
		"usuario": gin.H{
			"id_usuario":   user.ID,
			"nome_usuario": user.Username,
		},
	})
}
