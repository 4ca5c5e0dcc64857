package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT   string
	DB_URL string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	CLERK_WEBHOOK_SECRET string
	CLERK_ISSUER         string
	CLERK_JWT_SECRET     string

	APP_URL string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")

	CLERK_WEBHOOK_SECRET = mustEnv("CLERK_WEBHOOK_SECRET")

	// Session tokens are verified either against the Clerk issuer's JWKS
	// (production) or with a shared HMAC secret (local dev). One of the
	// two must be configured.
	CLERK_ISSUER = getEnv("CLERK_ISSUER", "")
	CLERK_JWT_SECRET = getEnv("CLERK_JWT_SECRET", "")
	if CLERK_ISSUER == "" && CLERK_JWT_SECRET == "" {
		log.Fatal("Missing CLERK_ISSUER or CLERK_JWT_SECRET (set one)")
	}

	APP_URL = getEnv("APP_URL", "http://localhost:3000")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
