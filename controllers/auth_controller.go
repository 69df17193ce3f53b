package controllers

import (
	"net/http"
	"time"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// Login 邮箱或 NIP + 密码
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByIdentifier(c.Request.Context(), in.Identifier)
	if err != nil || !u.ComparePassword(in.Password) {
		// 查无此人和密码错误对外一个说法
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	if !u.IsActive {
		c.JSON(http.StatusUnauthorized, app.H{"error": "account is disabled"})
		return
	}

	token, err := app.SignToken(ac.App.Config, u, time.Now())
	if err != nil {
		httpError(c, err)
		return
	}

	_ = ac.Repo.TouchUserLogin(c.Request.Context(), u.ID)
	ac.Repo.RecordActivity(c.Request.Context(), models.ActivityLog{
		UserID:     u.ID,
		Action:     "User login",
		EntityType: "user",
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	c.JSON(http.StatusOK, app.H{
		"user":  u,
		"token": token,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (ac *AuthController) UpdateTheme(c *gin.Context) {
	var in struct {
		ThemePreference string `json:"themePreference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.ThemePreference != "light" && in.ThemePreference != "dark" {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid theme preference"})
		return
	}

	u, err := ac.Repo.UpdateUser(c.Request.Context(), c.GetString("userID"),
		map[string]any{"theme_preference": in.ThemePreference})
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Logout 把当前 token 的 jti 拉黑到它自然过期为止
func (ac *AuthController) Logout(c *gin.Context) {
	jti := c.GetString("jti")
	if jti != "" {
		_ = ac.App.Revoked().Revoke(c.Request.Context(), jti, ac.App.Config.TokenTTL)
	}

	ac.Repo.RecordActivity(c.Request.Context(), models.ActivityLog{
		UserID:     c.GetString("userID"),
		Action:     "User logout",
		EntityType: "user",
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, app.H{"message": "logged out"})
}
