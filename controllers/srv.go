package controllers

import (
	"errors"
	"log"
	"net/http"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/db"
	"office_equipment_borrowing/models"

	"github.com/gin-gonic/gin"
)

// Srv 控制器共享的依赖
type Srv struct {
	App  *app.App
	Repo *db.Repo
}

func GetSrv(a *app.App) *Srv {
	return &Srv{App: a, Repo: a.Repo}
}

func currentUser(c *gin.Context) *models.User {
	v, _ := c.Get("user")
	u, _ := v.(*models.User)
	return u
}

// httpError 业务错误映射到 4xx，其余回滚后按 500 处理，只打日志不重试
func httpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrItemNotFound),
		errors.Is(err, db.ErrCategoryNotFound),
		errors.Is(err, db.ErrBorrowingNotFound),
		errors.Is(err, db.ErrNotificationNotFound),
		errors.Is(err, db.ErrUserNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrRoleNotAllowed),
		errors.Is(err, db.ErrNotOwner):
		c.JSON(http.StatusForbidden, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrInvalidState),
		errors.Is(err, db.ErrInvalidQuantity),
		errors.Is(err, db.ErrReturnAlreadyApproved),
		errors.Is(err, db.ErrCategoryInUse),
		errors.Is(err, db.ErrSerialTaken),
		errors.Is(err, db.ErrUserExists):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		log.Printf("server error: %v", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "server error"})
	}
}
