package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ActivityLogController struct{ *Srv }

func NewActivityLogController(s *Srv) *ActivityLogController {
	return &ActivityLogController{Srv: s}
}

// ListLogs ?userId=&page=&size=
func (lc *ActivityLogController) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	res, err := lc.Repo.ListActivityLogs(c.Request.Context(), c.Query("userId"), page, size)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
