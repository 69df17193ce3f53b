package app

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"office_equipment_borrowing/db"
	"office_equipment_borrowing/session"
	"office_equipment_borrowing/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Hub    *ws.Hub
	Repo   *db.Repo
	Config Config

	revoked *session.RevokedStore
}

// Config 从环境变量读取
type Config struct {
	RedisAddr string
	RedisPwd  string
	WebOrigin string

	JWTSecret string
	TokenTTL  time.Duration

	// 首个管理员，用户表为空时种进去
	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminNIP      string

	OverdueSweepEvery time.Duration
}

func (a *App) Revoked() *session.RevokedStore { return a.revoked }

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- 实时推送 ---
	hub := ws.NewHub()

	repo := db.NewRepo(dbConn, hub)

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Hub: hub, Repo: repo, Config: cfg,
		revoked: session.NewRevokedStore(rdb),
	}

	BootstrapFirstAdmin(context.Background(), cfg, repo)
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(get("TOKEN_TTL_SECONDS", "")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	sweep := time.Hour
	if sec, err := strconv.Atoi(get("OVERDUE_SWEEP_SECONDS", "")); err == nil && sec > 0 {
		sweep = time.Duration(sec) * time.Second
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return Config{
		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),
		WebOrigin: get("WEB_ORIGIN", "http://localhost:5173"),

		JWTSecret: secret,
		TokenTTL:  ttl,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     get("ADMIN_NAME", "Administrator"),
		AdminNIP:      get("ADMIN_NIP", "000000"),

		OverdueSweepEvery: sweep,
	}
}
