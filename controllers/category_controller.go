package controllers

import (
	"net/http"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryController struct{ *Srv }

func NewCategoryController(s *Srv) *CategoryController { return &CategoryController{Srv: s} }

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var in struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	cat := &models.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   c.GetString("userID"),
	}
	if err := cc.Repo.CreateCategory(c.Request.Context(), cat); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	cats, err := cc.Repo.ListCategories(c.Request.Context())
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": cats})
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	cat, err := cc.Repo.FindCategoryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	var in struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}

	cat, err := cc.Repo.UpdateCategory(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	if err := cc.Repo.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "category removed"})
}
