package main

import (
	"context"
	"log"
	"os"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/config"
	"office_equipment_borrowing/routes"
	"office_equipment_borrowing/workers"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	// 逾期提醒后台扫描
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workers.NewOverdueNotifier(application.Repo, application.Config.OverdueSweepEvery).Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
