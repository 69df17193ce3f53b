package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv 先读 .env，线上环境直接用系统环境变量
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
}
