package routes

import (
	"time"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/controllers"
	"office_equipment_borrowing/models"
	"office_equipment_borrowing/ws"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	userCtl := controllers.NewUserController(s)
	catCtl := controllers.NewCategoryController(s)
	itemCtl := controllers.NewItemController(s)
	borrowCtl := controllers.NewBorrowingController(s)
	notifCtl := controllers.NewNotificationController(s)
	reportCtl := controllers.NewReportController(s)
	logCtl := controllers.NewActivityLogController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a)
	adminMW := app.RoleRequired(models.RoleAdmin)
	staffMW := app.RoleRequired(models.RoleAdmin, models.RoleOfficer)
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 认证
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.GET("/me", authCtl.Me)
		authed.PUT("/theme", authCtl.UpdateTheme)
		authed.POST("/logout", authCtl.Logout)
	}

	// ------------------------------
	// WebSocket  ?token=
	// ------------------------------
	r.GET("/ws", ws.Serve(a.Hub, func(token string) (string, error) {
		claims, err := app.ParseToken(a.Config, token)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}))

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.POST("", userCtl.CreateUser)
		users.GET("", userCtl.ListUsers) // ?q=&page=&size=
		users.GET("/:id", userCtl.GetUser)
		users.PUT("/:id", userCtl.UpdateUser)
		users.DELETE("/:id", userCtl.DeleteUser)
	}

	// ------------------------------
	// 分类
	// ------------------------------
	cats := r.Group("/api/categories", authMW, seenMW)
	{
		cats.GET("", catCtl.ListCategories)
		cats.GET("/:id", catCtl.GetCategory)
	}
	catsAdmin := r.Group("/api/categories", authMW, staffMW)
	{
		catsAdmin.POST("", catCtl.CreateCategory)
		catsAdmin.PUT("/:id", catCtl.UpdateCategory)
		catsAdmin.DELETE("/:id", catCtl.DeleteCategory)
	}

	// ------------------------------
	// 物品（库存台账）
	// ------------------------------
	items := r.Group("/api/items", authMW, seenMW)
	{
		items.GET("", itemCtl.ListItems)
		items.GET("/:id", itemCtl.GetItem)
	}
	itemsStaff := r.Group("/api/items", authMW, staffMW)
	{
		itemsStaff.POST("", itemCtl.CreateItem)
		itemsStaff.PUT("/:id", itemCtl.UpdateItem)
	}
	itemsAdmin := r.Group("/api/items", authMW, adminMW)
	{
		itemsAdmin.DELETE("/:id", itemCtl.DeleteItem)
	}

	// ------------------------------
	// 借还流程
	// 角色规则（officer 审批、借用人发起归还）在 Repo 的状态机里再查一遍，
	// 这里的中间件只是第一道闸
	// ------------------------------
	borrow := r.Group("/api/borrowings", authMW, seenMW)
	{
		borrow.GET("/stats/dashboard", staffMW, reportCtl.Dashboard)
		borrow.GET("/user/history", borrowCtl.MyHistory)

		borrow.POST("", borrowCtl.CreateBorrowing)
		borrow.GET("", borrowCtl.ListBorrowings)
		borrow.GET("/:id", borrowCtl.GetBorrowing)

		borrow.PUT("/:id/approve", borrowCtl.ApproveBorrowing)
		borrow.PUT("/:id/reject", borrowCtl.RejectBorrowing)
		borrow.PUT("/:id/borrow", borrowCtl.MarkBorrowed)
		borrow.PUT("/:id/return-request", borrowCtl.RequestReturn)
		borrow.PUT("/:id/approve-return", borrowCtl.ApproveReturn)
	}

	// ------------------------------
	// 通知
	// ------------------------------
	notif := r.Group("/api/notifications", authMW, seenMW)
	{
		notif.GET("/unread-count", notifCtl.UnreadCount)
		notif.PUT("/mark-all-read", notifCtl.MarkAllRead)

		notif.GET("", notifCtl.ListNotifications)
		notif.PUT("/:id/read", notifCtl.MarkRead)
		notif.DELETE("/:id", notifCtl.DeleteNotification)
	}

	// ------------------------------
	// 报表与审计（staff / admin）
	// ------------------------------
	reports := r.Group("/api/reports", authMW, staffMW)
	{
		reports.GET("/borrowings/export", reportCtl.ExportBorrowings)
	}
	logs := r.Group("/api/activity-logs", authMW, adminMW)
	{
		logs.GET("", logCtl.ListLogs)
	}
}
