// controllers/item_controller.go
package controllers

import (
	"net/http"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/db"
	"office_equipment_borrowing/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

func (ic *ItemController) CreateItem(c *gin.Context) {
	var in struct {
		Name           string `json:"name" binding:"required"`
		Description    string `json:"description"`
		CategoryID     string `json:"categoryId" binding:"required"`
		SerialNumber   string `json:"serialNumber" binding:"required"`
		Quantity       int    `json:"quantity"`
		Condition      string `json:"condition"`
		Location       string `json:"location"`
		Image          string `json:"image"`
		Specifications string `json:"specifications"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	it := &models.Item{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		CategoryID:     in.CategoryID,
		SerialNumber:   in.SerialNumber,
		Quantity:       in.Quantity,
		Condition:      in.Condition,
		Location:       in.Location,
		Image:          in.Image,
		Specifications: in.Specifications,
		IsAvailable:    true,
		CreatedBy:      c.GetString("userID"),
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (ic *ItemController) ListItems(c *gin.Context) {
	items, err := ic.Repo.ListItems(c.Request.Context())
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// UpdateItem 改总量时可借数按差值联动（夹在 0 和新总量之间）
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in struct {
		Name           *string `json:"name"`
		Description    *string `json:"description"`
		CategoryID     *string `json:"categoryId"`
		SerialNumber   *string `json:"serialNumber"`
		Quantity       *int    `json:"quantity"`
		Condition      *string `json:"condition"`
		Location       *string `json:"location"`
		Image          *string `json:"image"`
		Specifications *string `json:"specifications"`
		IsAvailable    *bool   `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), db.UpdateItemInput{
		Name:           in.Name,
		Description:    in.Description,
		CategoryID:     in.CategoryID,
		SerialNumber:   in.SerialNumber,
		Quantity:       in.Quantity,
		Condition:      in.Condition,
		Location:       in.Location,
		Image:          in.Image,
		Specifications: in.Specifications,
		IsAvailable:    in.IsAvailable,
	})
	if err != nil {
		httpError(c, err)
		return
	}

	ic.Repo.RecordActivity(c.Request.Context(), models.ActivityLog{
		UserID:     c.GetString("userID"),
		Action:     "Update item: " + it.Name,
		EntityType: "item",
		EntityID:   &it.ID,
	})
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	if err := ic.Repo.DeleteItem(c.Request.Context(), id); err != nil {
		httpError(c, err)
		return
	}

	entityID := id
	ic.Repo.RecordActivity(c.Request.Context(), models.ActivityLog{
		UserID:     c.GetString("userID"),
		Action:     "Delete item",
		EntityType: "item",
		EntityID:   &entityID,
	})
	c.JSON(http.StatusOK, app.H{"message": "item removed"})
}
