package controllers

import (
	"net/http"
	"strconv"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		FullName   string `json:"fullName" binding:"required"`
		NIP        string `json:"nip" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required,min=6"`
		Role       string `json:"role"`
		Department string `json:"department"`
		Position   string `json:"position"`
		Phone      string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if !models.ValidRole(in.Role) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid role"})
		return
	}

	u := &models.User{
		ID:         uuid.NewString(),
		FullName:   in.FullName,
		NIP:        in.NIP,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
		Position:   in.Position,
		Phone:      in.Phone,
		IsActive:   true,
	}
	if err := u.SetPassword(in.Password); err != nil {
		httpError(c, err)
		return
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		httpError(c, err)
		return
	}

	uc.App.Hub.Broadcast("user:created", u)
	c.JSON(http.StatusCreated, u)
}

// ListUsers ?q=&page=&size=
func (uc *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (uc *UserController) GetUser(c *gin.Context) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	var in struct {
		FullName   *string `json:"fullName"`
		Role       *string `json:"role"`
		Department *string `json:"department"`
		Position   *string `json:"position"`
		Phone      *string `json:"phone"`
		IsActive   *bool   `json:"isActive"`
		Password   *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = *in.FullName
	}
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid role"})
			return
		}
		fields["role"] = *in.Role
	}
	if in.Department != nil {
		fields["department"] = *in.Department
	}
	if in.Position != nil {
		fields["position"] = *in.Position
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.Password != nil {
		var tmp models.User
		if err := tmp.SetPassword(*in.Password); err != nil {
			httpError(c, err)
			return
		}
		fields["password"] = tmp.Password
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}

	u, err := uc.Repo.UpdateUser(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString("userID") {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}
	if err := uc.Repo.DeleteUser(c.Request.Context(), id); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "user removed"})
}
